package subvolume

// you can use Directory when the root is not on btrfs (or in tests). every directory
// counts as a subvolume and snapshots are full copies, so the same structure logic
// works regardless of whether copy-on-write is actually available.

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

func Directory() Provider {
	return &directoryProvider{}
}

type directoryProvider struct{}

func (d *directoryProvider) IsSubvolume(path string) (bool, error) {
	stat, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return stat.IsDir(), nil
}

func (d *directoryProvider) CreateSubvolume(path string) error {
	return os.Mkdir(path, 0755)
}

func (d *directoryProvider) CreateSnapshot(src string, dst string, readOnly bool) error {
	isDir, err := d.IsSubvolume(src)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("snapshot source %s is not a subvolume", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("snapshot destination %s already exists", dst)
	}

	if err := copyTree(src, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	if readOnly {
		return os.Chmod(dst, 0555)
	}

	return nil
}

func (d *directoryProvider) DeleteSubvolume(path string) error {
	isDir, err := d.IsSubvolume(path)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("%s is not a subvolume", path)
	}

	// read-only snapshot top dir would make removing its children fail
	if err := os.Chmod(path, 0755); err != nil {
		return err
	}

	return os.RemoveAll(path)
}

func (d *directoryProvider) SubvolumeID(path string) (uint64, error) {
	return 0, errors.New("subvolume IDs are not available for plain directories")
}

func copyTree(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case entry.IsDir():
			return os.Mkdir(target, 0755)
		case entry.Type()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, target)
		case entry.Type().IsRegular():
			return copyFile(path, target)
		default: // sockets, devices etc. are skipped
			return nil
		}
	})
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, stat.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
