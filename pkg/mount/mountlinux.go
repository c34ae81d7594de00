//go:build linux

// must exclude from non-Linux builds due to mount(2), umount(2)

package mount

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/function61/gokit/logex"
	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

// mounts dev at a fresh temporary directory. caller must Release() on every exit path.
func Device(dev string, fsType string, logl *logex.Leveled) (*Mount, error) {
	mountPath := filepath.Join(os.TempDir(), randomMountDirName())

	if err := os.Mkdir(mountPath, 0700); err != nil {
		return nil, fmt.Errorf("failed to make directory %s for mount: %w", mountPath, err)
	}

	if err := unix.Mount(dev, mountPath, fsType, 0, ""); err != nil {
		if errRemove := os.Remove(mountPath); errRemove != nil {
			logl.Error.Printf("cleanup: removing mount path: %v", errRemove)
		}

		return nil, fmt.Errorf("failed to mount %s device to %s: %w", dev, mountPath, err)
	}

	logl.Debug.Printf("Mounted %s at %s", dev, mountPath)

	return &Mount{
		Device: dev,
		Path:   mountPath,
	}, nil
}

func (m *Mount) Release() error {
	if err := unix.Unmount(m.Path, 0); err != nil {
		return fmt.Errorf("unmounting %s failed: %w", m.Path, err)
	}

	if err := os.Remove(m.Path); err != nil {
		return fmt.Errorf("failed to remove mount path: %w", err)
	}

	return nil
}

// mounts a single btrfs subvolume of dev at target. this mount outlives the process.
func Subvolume(dev string, target string, subvolID uint64) error {
	if err := unix.Mount(dev, target, "btrfs", 0, fmt.Sprintf("subvolid=%d", subvolID)); err != nil {
		return fmt.Errorf("failed to mount subvolume %d of %s to %s: %w", subvolID, dev, target, err)
	}

	return nil
}

func IsMountPoint(path string) (bool, error) {
	procSelf, err := procfs.Self()
	if err != nil {
		return false, err
	}

	mounts, err := procSelf.MountStats()
	if err != nil {
		return false, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	return isMountPointOf(absPath, mounts), nil
}
