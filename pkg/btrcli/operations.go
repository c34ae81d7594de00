package btrcli

import (
	"errors"
	"fmt"

	"github.com/function61/btrbackup/pkg/btrcheck"
	"github.com/function61/btrbackup/pkg/btrgraph"
	"github.com/function61/btrbackup/pkg/btrprune"
	"github.com/function61/btrbackup/pkg/btrsnapshot"
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/samber/lo"
)

var errNoLogicalDirs = errors.New("no logical directories found")

// closed set of things a single invocation can do. see execute()
type operation interface {
	isOperation()
}

type checkOp struct{}

type listOp struct {
	selector string
	count    bool
	all      bool
	table    bool // human-friendly table instead of tab-separated lines
}

type snapshotOp struct {
	selector string
}

type removeOp struct {
	selector   string
	keepLatest int
	dryRun     bool
}

type graphOp struct{}

type initOp struct {
	logicalDir string
	mountPath  string // optional
}

func (checkOp) isOperation()    {}
func (listOp) isOperation()     {}
func (snapshotOp) isOperation() {}
func (removeOp) isOperation()   {}
func (graphOp) isOperation()    {}
func (initOp) isOperation()     {}

func execute(op operation, wd *workdir) error {
	switch op := op.(type) {
	case checkOp:
		return check(wd)
	case listOp:
		return list(op, wd)
	case snapshotOp:
		return snapshot(op, wd)
	case removeOp:
		return remove(op, wd)
	case graphOp:
		return graph(wd)
	case initOp:
		return initLogicalDir(op, wd)
	default:
		return fmt.Errorf("unsupported operation: %T", op)
	}
}

func check(wd *workdir) error {
	violations := btrcheck.Validate(wd.root, wd.subvolumes)
	if len(violations) > 0 {
		btrcheck.Report(violations, wd.logl)

		return fmt.Errorf("structure check failed: %d violation(s)", len(violations))
	}

	wd.logl.Info.Printf("Structure of %s is valid", wd.root)

	return nil
}

func snapshot(op snapshotOp, wd *workdir) error {
	dirs, err := wd.selectDirs(op.selector)
	if err != nil {
		return err
	}

	result, err := btrsnapshot.Create(dirs, wd.now(), wd.subvolumes, wd.logl)
	if err != nil {
		return err
	}

	wd.logl.Info.Printf("Created %d snapshot(s) named %s", len(result.Created), result.Name)

	return nil
}

func remove(op removeOp, wd *workdir) error {
	dirs, err := wd.selectDirs(op.selector)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		return errNoLogicalDirs
	}

	removals, err := btrprune.Prune(dirs, btrprune.Policy{KeepLatest: op.keepLatest}, op.dryRun, wd.subvolumes, wd.out, wd.logl)
	if err != nil {
		return err
	}

	if op.dryRun {
		wd.logl.Info.Printf("Dry run: would remove %d snapshot(s)", len(removals))
	} else {
		wd.logl.Info.Printf("Removed %d snapshot(s)", len(removals))
	}

	return nil
}

func graph(wd *workdir) error {
	tree, err := layout.Scan(wd.root)
	if err != nil {
		return err
	}

	branches := lo.Map(tree.Dirs, func(dir layout.LogicalDir, _ int) btrgraph.Branch {
		return btrgraph.Branch{
			Name:     dir.Name,
			Children: dir.DisplayOrder(),
		}
	})

	_, err = fmt.Fprintln(wd.out, btrgraph.Render(branches))
	return err
}
