// Creates read-only, timestamp-named snapshots of "active" across logical directories
package btrsnapshot

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/function61/btrbackup/pkg/btrname"
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/btrbackup/pkg/subvolume"
	"github.com/function61/gokit/logex"
	"github.com/samber/lo"
)

type PreconditionKind string

const (
	NoMatch       PreconditionKind = "NoMatch"
	MissingActive PreconditionKind = "MissingActive"
	NameCollision PreconditionKind = "NameCollision"
)

// a precondition failed, and therefore nothing was mutated
type PreconditionError struct {
	Kind  PreconditionKind
	Paths []string
}

func (p *PreconditionError) Error() string {
	switch p.Kind {
	case NoMatch:
		return "no logical directories matched"
	case MissingActive:
		return fmt.Sprintf("active subvolume missing in: %s", strings.Join(p.Paths, ", "))
	case NameCollision:
		return fmt.Sprintf("snapshot already exists: %s", strings.Join(p.Paths, ", "))
	default:
		return string(p.Kind)
	}
}

type Result struct {
	Name    string   // shared by every snapshot of the batch
	Created []string // paths
}

// either every logical directory gets a snapshot with the same name, or (if any of
// the preconditions fail) none does. failures of individual creations don't stop the
// rest and aren't rolled back; they're returned as *subvolume.BatchError.
func Create(
	dirs []layout.LogicalDir,
	now time.Time,
	subvolumes subvolume.Provider,
	logl *logex.Leveled,
) (*Result, error) {
	name := btrname.Format(now)

	if err := checkPreconditions(dirs, name, subvolumes); err != nil {
		return nil, err
	}

	result := &Result{
		Name:    name,
		Created: []string{},
	}

	failures := []subvolume.ItemFailure{}

	for _, dir := range dirs {
		active, _ := dir.Active()
		dst := filepath.Join(dir.Path, name)

		logl.Debug.Printf("Creating snapshot from %s to %s", active.Path, dst)

		if err := subvolumes.CreateSnapshot(active.Path, dst, true); err != nil {
			logl.Error.Printf("Snapshot of %s failed: %v", dir.Name, err)

			failures = append(failures, subvolume.ItemFailure{Path: dst, Err: err})
			continue
		}

		logl.Info.Printf("Created snapshot %s", dst)

		result.Created = append(result.Created, dst)
	}

	return result, subvolume.NewBatchError("snapshot", failures)
}

func checkPreconditions(dirs []layout.LogicalDir, name string, subvolumes subvolume.Provider) error {
	if len(dirs) == 0 {
		return &PreconditionError{Kind: NoMatch}
	}

	withoutActive := []layout.LogicalDir{}
	for _, dir := range dirs {
		hasActive, err := hasActiveSubvolume(dir, subvolumes)
		if err != nil {
			return err
		}

		if !hasActive {
			withoutActive = append(withoutActive, dir)
		}
	}

	if len(withoutActive) > 0 {
		return &PreconditionError{
			Kind:  MissingActive,
			Paths: lo.Map(withoutActive, func(dir layout.LogicalDir, _ int) string { return dir.Path }),
		}
	}

	colliding := lo.Filter(dirs, func(dir layout.LogicalDir, _ int) bool {
		return dir.Has(name)
	})
	if len(colliding) > 0 {
		return &PreconditionError{
			Kind: NameCollision,
			Paths: lo.Map(colliding, func(dir layout.LogicalDir, _ int) string {
				return filepath.Join(dir.Path, name)
			}),
		}
	}

	return nil
}

// "active" must be a subvolume. a plain file by that name doesn't count.
func hasActiveSubvolume(dir layout.LogicalDir, subvolumes subvolume.Provider) (bool, error) {
	active, hasActive := dir.Active()
	if !hasActive {
		return false, nil
	}

	isSubvolume, err := subvolumes.IsSubvolume(active.Path)
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", active.Path, err)
	}

	return isSubvolume, nil
}
