// Scoped mounting of a btrfs device for the duration of one operation
package mount

import (
	"path/filepath"
	"strings"

	"github.com/function61/gokit/cryptorandombytes"
	"github.com/prometheus/procfs"
)

type Mount struct {
	Device string
	Path   string // temporary mount point, removed on Release()
}

func randomMountDirName() string {
	return "btrbackup-" + cryptorandombytes.Hex(4)
}

func mountForPath(path string, mounts []*procfs.Mount) *procfs.Mount {
	var longestMatchingMount *procfs.Mount = nil

	for _, mount := range mounts {
		if !isPathWithin(path, mount.Mount) || (longestMatchingMount != nil && len(mount.Mount) <= len(longestMatchingMount.Mount)) {
			continue
		}

		longestMatchingMount = mount
	}

	return longestMatchingMount
}

// "/home" contains "/home/x" but not "/homework"
func isPathWithin(path string, dir string) bool {
	if dir == "/" || path == dir {
		return strings.HasPrefix(path, dir)
	}

	return strings.HasPrefix(path, dir+"/")
}

func isMountPointOf(path string, mounts []*procfs.Mount) bool {
	mount := mountForPath(filepath.Clean(path), mounts)

	return mount != nil && mount.Mount == filepath.Clean(path)
}
