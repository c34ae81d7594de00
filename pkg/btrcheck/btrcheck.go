// Validates that a root directory follows the logical directory convention
package btrcheck

import (
	"fmt"
	"os"

	"github.com/function61/btrbackup/pkg/btrname"
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/btrbackup/pkg/subvolume"
	"github.com/function61/gokit/logex"
)

type ViolationKind string

const (
	RootMissing            ViolationKind = "RootMissing"
	RootNotDirectory       ViolationKind = "RootNotDirectory"
	LogicalDirNotDirectory ViolationKind = "LogicalDirNotDirectory"
	NotASubvolume          ViolationKind = "NotASubvolume"
	InvalidSubvolumeName   ViolationKind = "InvalidSubvolumeName"
	MissingActive          ViolationKind = "MissingActive"
	ReadFailed             ViolationKind = "ReadFailed"
)

type Violation struct {
	Kind ViolationKind
	Path string
	Err  error // only for ReadFailed
}

func (v Violation) String() string {
	switch v.Kind {
	case RootMissing:
		return fmt.Sprintf("Path %s does not exist.", v.Path)
	case RootNotDirectory, LogicalDirNotDirectory:
		return fmt.Sprintf("Path %s is not a directory.", v.Path)
	case NotASubvolume:
		return fmt.Sprintf("Only subvolumes allowed in logical directories: %s", v.Path)
	case InvalidSubvolumeName:
		return fmt.Sprintf("Invalid subvolume name: %s", v.Path)
	case MissingActive:
		return fmt.Sprintf("Logical directory %s has no %s subvolume.", v.Path, btrname.Active)
	case ReadFailed:
		return fmt.Sprintf("Unable to inspect %s: %v", v.Path, v.Err)
	default:
		return fmt.Sprintf("%s: %s", v.Kind, v.Path)
	}
}

// returns every violation found (empty slice means the structure is valid). a problem
// in one logical directory never stops checking of the others.
func Validate(root string, subvolumes subvolume.Provider) []Violation {
	stat, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Violation{{Kind: RootMissing, Path: root}}
		}

		return []Violation{{Kind: ReadFailed, Path: root, Err: err}}
	}

	if !stat.IsDir() {
		return []Violation{{Kind: RootNotDirectory, Path: root}}
	}

	tree, err := layout.Scan(root)
	if err != nil {
		return []Violation{{Kind: ReadFailed, Path: root, Err: err}}
	}

	violations := []Violation{}

	for _, stray := range tree.Strays {
		violations = append(violations, Violation{Kind: LogicalDirNotDirectory, Path: stray.Path})
	}

	for _, dir := range tree.Dirs {
		violations = append(violations, validateLogicalDir(dir, subvolumes)...)
	}

	return violations
}

func validateLogicalDir(dir layout.LogicalDir, subvolumes subvolume.Provider) []Violation {
	if dir.ReadErr != nil {
		return []Violation{{Kind: ReadFailed, Path: dir.Path, Err: dir.ReadErr}}
	}

	violations := []Violation{}

	for _, child := range dir.Children {
		isSubvolume, err := subvolumes.IsSubvolume(child.Path)
		switch {
		case err != nil:
			violations = append(violations, Violation{Kind: ReadFailed, Path: child.Path, Err: err})
		case !isSubvolume:
			violations = append(violations, Violation{Kind: NotASubvolume, Path: child.Path})
		case !btrname.IsValidSubvolumeName(child.Name):
			violations = append(violations, Violation{Kind: InvalidSubvolumeName, Path: child.Path})
		}
	}

	if _, hasActive := dir.Active(); !hasActive {
		violations = append(violations, Violation{Kind: MissingActive, Path: dir.Path})
	}

	return violations
}

func Report(violations []Violation, logl *logex.Leveled) {
	for _, violation := range violations {
		logl.Error.Println(violation.String())
	}
}
