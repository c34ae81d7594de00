// In-memory model of the on-disk convention: <root>/<logical dir>/{active,<snapshot>...}
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/function61/btrbackup/pkg/btrname"
	"github.com/samber/lo"
)

type Entry struct {
	Name  string
	Path  string
	IsDir bool
}

type Snapshot struct {
	Name      string
	Path      string
	Timestamp time.Time
}

type LogicalDir struct {
	Name     string
	Path     string
	Children []Entry // sorted by name
	ReadErr  error   // non-nil if children could not be listed
}

type Tree struct {
	Root   string
	Dirs   []LogicalDir // sorted by name
	Strays []Entry      // non-directories directly under root
}

// reads root and the immediate children of every directory in it. nothing deeper is
// looked at: contents of subvolumes are none of our business.
func Scan(root string) (*Tree, error) {
	rootEntries, err := readEntries(root)
	if err != nil {
		return nil, err
	}

	tree := &Tree{
		Root:   root,
		Dirs:   []LogicalDir{},
		Strays: []Entry{},
	}

	for _, entry := range rootEntries {
		if !entry.IsDir {
			tree.Strays = append(tree.Strays, entry)
			continue
		}

		children, err := readEntries(entry.Path)

		tree.Dirs = append(tree.Dirs, LogicalDir{
			Name:     entry.Name,
			Path:     entry.Path,
			Children: children,
			ReadErr:  err,
		})
	}

	return tree, nil
}

// non-nil if children of any of the dirs could not be listed
func ReadErrors(dirs []LogicalDir) error {
	errs := []error{}
	for _, dir := range dirs {
		if dir.ReadErr != nil {
			errs = append(errs, dir.ReadErr)
		}
	}

	return errors.Join(errs...)
}

func (l LogicalDir) Has(name string) bool {
	return lo.ContainsBy(l.Children, func(child Entry) bool { return child.Name == name })
}

func (l LogicalDir) Active() (Entry, bool) {
	return lo.Find(l.Children, func(child Entry) bool { return btrname.IsActive(child.Name) })
}

// children named like snapshots, newest first
func (l LogicalDir) Snapshots() []Snapshot {
	snapshots := []Snapshot{}

	for _, child := range l.Children {
		ts, isSnapshot := btrname.Parse(child.Name)
		if !isSnapshot {
			continue
		}

		snapshots = append(snapshots, Snapshot{
			Name:      child.Name,
			Path:      child.Path,
			Timestamp: ts,
		})
	}

	SortNewestFirst(snapshots)

	return snapshots
}

// children that are neither active nor snapshots (i.e. structure violations)
func (l LogicalDir) Others() []Entry {
	return lo.Filter(l.Children, func(child Entry, _ int) bool {
		return !btrname.IsValidSubvolumeName(child.Name)
	})
}

// active first, then snapshots newest first, then anything unexpected
func (l LogicalDir) DisplayOrder() []string {
	names := []string{}

	if active, has := l.Active(); has {
		names = append(names, active.Name)
	}

	for _, snapshot := range l.Snapshots() {
		names = append(names, snapshot.Name)
	}

	others := lo.Map(l.Others(), func(other Entry, _ int) string { return other.Name })
	sort.Sort(sort.Reverse(sort.StringSlice(others)))

	return append(names, others...)
}

// ties (same instant, different offset) are broken by name so order is deterministic
func SortNewestFirst(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		if cmp := btrname.Compare(snapshots[i].Timestamp, snapshots[j].Timestamp); cmp != 0 {
			return cmp > 0
		}

		return snapshots[i].Name > snapshots[j].Name
	})
}

func readEntries(dir string) ([]Entry, error) {
	dentries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	// os.ReadDir() already sorts by filename
	return lo.Map(dentries, func(dentry os.DirEntry, _ int) Entry {
		return Entry{
			Name:  dentry.Name(),
			Path:  filepath.Join(dir, dentry.Name()),
			IsDir: dentry.IsDir(),
		}
	}), nil
}
