// Retention: keep the N latest snapshots of each logical directory, remove the rest
package btrprune

import (
	"fmt"
	"io"

	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/btrbackup/pkg/subvolume"
	"github.com/function61/gokit/logex"
)

type Policy struct {
	KeepLatest int
}

func (p Policy) Validate() error {
	if p.KeepLatest < 0 {
		return fmt.Errorf("keep latest must be non-negative; got %d", p.KeepLatest)
	}

	return nil
}

type DirPlan struct {
	Dir     layout.LogicalDir
	Keep    []layout.Snapshot // newest first
	Remove  []layout.Snapshot // newest first
	Skipped []layout.Entry    // neither active nor snapshot. never touched
}

type Plan struct {
	Dirs []DirPlan
}

// outcome of one (maybe would-be) removal
type Removal struct {
	Path string
	Err  error
}

func ComputePlan(dirs []layout.LogicalDir, policy Policy) *Plan {
	plan := &Plan{
		Dirs: []DirPlan{},
	}

	for _, dir := range dirs {
		snapshots := dir.Snapshots()

		keepCount := max(0, min(policy.KeepLatest, len(snapshots)))

		plan.Dirs = append(plan.Dirs, DirPlan{
			Dir:     dir,
			Keep:    snapshots[:keepCount],
			Remove:  snapshots[keepCount:],
			Skipped: dir.Others(),
		})
	}

	return plan
}

func (p *Plan) Removals() []layout.Snapshot {
	removals := []layout.Snapshot{}
	for _, dir := range p.Dirs {
		removals = append(removals, dir.Remove...)
	}
	return removals
}

func ExplainPlan(plan *Plan, output io.Writer) {
	for _, dir := range plan.Dirs {
		for _, snapshot := range dir.Remove {
			fmt.Fprintf(output, "%s will be removed\n", snapshot.Path)
		}
	}
}

// best-effort: every removal is attempted even if earlier ones failed
func ExecutePlan(plan *Plan, subvolumes subvolume.Provider, logl *logex.Leveled) []Removal {
	removals := []Removal{}

	for _, snapshot := range plan.Removals() {
		logl.Debug.Printf("Deleting subvolume %s", snapshot.Path)

		err := subvolumes.DeleteSubvolume(snapshot.Path)
		if err != nil {
			logl.Error.Printf("Removing %s failed: %v", snapshot.Path, err)
		} else {
			logl.Info.Printf("Removed %s", snapshot.Path)
		}

		removals = append(removals, Removal{
			Path: snapshot.Path,
			Err:  err,
		})
	}

	return removals
}

// reports what will be removed, and removes it unless dryRun. nothing is removed if any
// of the dirs could not be read. returned removals are
// would-be removals in dry run mode. error is *subvolume.BatchError if any removal failed.
func Prune(
	dirs []layout.LogicalDir,
	policy Policy,
	dryRun bool,
	subvolumes subvolume.Provider,
	report io.Writer,
	logl *logex.Leveled,
) ([]Removal, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	// unreadable dir would look like one without snapshots
	if err := layout.ReadErrors(dirs); err != nil {
		return nil, fmt.Errorf("not removing anything: %w", err)
	}

	plan := ComputePlan(dirs, policy)

	for _, dir := range plan.Dirs {
		for _, skipped := range dir.Skipped {
			logl.Info.Printf("Not a snapshot, leaving alone: %s", skipped.Path)
		}

		logl.Debug.Printf("%s: keeping %d, removing %d", dir.Dir.Name, len(dir.Keep), len(dir.Remove))
	}

	ExplainPlan(plan, report)

	if dryRun {
		removals := []Removal{}
		for _, snapshot := range plan.Removals() {
			removals = append(removals, Removal{Path: snapshot.Path})
		}

		return removals, nil
	}

	removals := ExecutePlan(plan, subvolumes, logl)

	failures := []subvolume.ItemFailure{}
	for _, removal := range removals {
		if removal.Err != nil {
			failures = append(failures, subvolume.ItemFailure{Path: removal.Path, Err: removal.Err})
		}
	}

	return removals, subvolume.NewBatchError("delete", failures)
}
