package btrcli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/function61/btrbackup/pkg/btrname"
	"github.com/function61/btrbackup/pkg/mount"
	"github.com/function61/gokit/fileexists"
)

// creates <root>/<logical dir>/active, optionally mounting the new active subvolume
func initLogicalDir(op initOp, wd *workdir) error {
	if !isPlainName(op.logicalDir) {
		return fmt.Errorf("logical directory name must be a single path component; got %q", op.logicalDir)
	}

	// mount needs a device; nothing was mounted if --dev is a directory
	if op.mountPath != "" && wd.devIsDir {
		return errors.New("--mount-path requires --dev to be a btrfs device")
	}

	logicalDirPath := filepath.Join(wd.root, op.logicalDir)

	wd.logl.Debug.Printf("Initializing logical directory %s", logicalDirPath)

	exists, err := fileexists.Exists(logicalDirPath)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("logical directory already exists: %s", logicalDirPath)
	}

	if err := os.Mkdir(logicalDirPath, 0755); err != nil {
		return err
	}

	activePath := filepath.Join(logicalDirPath, btrname.Active)

	if err := wd.subvolumes.CreateSubvolume(activePath); err != nil {
		return err
	}

	wd.logl.Info.Printf("Logical directory %s initialized", logicalDirPath)

	if op.mountPath == "" {
		return nil
	}

	return mountActive(activePath, op.mountPath, wd)
}

// the mount outlives this process (it's the whole point)
func mountActive(activePath string, mountPath string, wd *workdir) error {
	if err := os.MkdirAll(mountPath, 0755); err != nil {
		return err
	}

	isMountPoint, err := mount.IsMountPoint(mountPath)
	if err != nil {
		return err
	}

	if isMountPoint {
		return fmt.Errorf("something is already mounted at %s", mountPath)
	}

	subvolID, err := wd.subvolumes.SubvolumeID(activePath)
	if err != nil {
		return err
	}

	wd.logl.Debug.Printf("Subvolume ID for %s is %d", activePath, subvolID)

	if err := mount.Subvolume(wd.dev, mountPath, subvolID); err != nil {
		return err
	}

	wd.logl.Info.Printf("Mounted %s at %s", activePath, mountPath)

	return nil
}

func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsRune(name, '/')
}
