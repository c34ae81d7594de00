package btrcli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/function61/btrbackup/pkg/btrmetrics"
	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/btrbackup/pkg/mount"
	"github.com/function61/btrbackup/pkg/subvolume"
	"github.com/function61/gokit/logex"
)

// the directory holding logical directories, with its device mounted for the
// lifetime of one operation
type workdir struct {
	root       string
	dev        string
	devIsDir   bool // no mount was made, root lives on the directory given as --dev
	subvolumes subvolume.Provider
	out        io.Writer
	now        func() time.Time
	logl       *logex.Leveled
}

// mounts the device to a temporary directory, runs fn and unmounts on every exit path
func withWorkdir(opts GlobalOptions, out io.Writer, logl *logex.Leveled, fn func(wd *workdir) error) (err error) {
	devStat, err := os.Stat(opts.Dev)
	if err != nil {
		return fmt.Errorf("device: %w", err)
	}

	base := opts.Dev

	if !devStat.IsDir() {
		mnt, errMount := mount.Device(opts.Dev, "btrfs", logl)
		if errMount != nil {
			return errMount
		}
		defer func() {
			if errRelease := mnt.Release(); errRelease != nil {
				if err == nil {
					err = errRelease
				} else { // operation error takes precedence
					logl.Error.Printf("cleanup: %v", errRelease)
				}
			}
		}()

		base = mnt.Path
	}

	root := filepath.Join(base, opts.Chdir)

	logl.Debug.Printf("working directory %s", root)

	subvolumes, err := subvolume.ForRoot(base, logl)
	if err != nil {
		return err
	}

	wd := &workdir{
		root:       root,
		dev:        opts.Dev,
		devIsDir:   devStat.IsDir(),
		subvolumes: subvolumes,
		out:        out,
		now:        time.Now,
		logl:       logl,
	}

	if err := fn(wd); err != nil {
		return err
	}

	if opts.MetricsTextfile != "" {
		return writeMetrics(wd, opts.MetricsTextfile)
	}

	return nil
}

func writeMetrics(wd *workdir, path string) error {
	tree, err := layout.Scan(wd.root)
	if err != nil {
		return err
	}

	if err := btrmetrics.WriteTextfile(path, tree.Dirs); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	wd.logl.Debug.Printf("wrote metrics to %s", path)

	return nil
}

func (w *workdir) selectDirs(selector string) ([]layout.LogicalDir, error) {
	tree, err := layout.Scan(w.root)
	if err != nil {
		return nil, err
	}

	return layout.Select(tree.Dirs, selector)
}
