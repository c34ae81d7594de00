// Copy-on-write subvolume primitives (create, snapshot, delete) behind a backend-neutral
// interface. The btrfs backend does the real work, the directory backend lets the same
// logic run on plain directories (tests, non-btrfs roots).
package subvolume

type Provider interface {
	IsSubvolume(path string) (bool, error)
	CreateSubvolume(path string) error
	CreateSnapshot(src string, dst string, readOnly bool) error
	DeleteSubvolume(path string) error
	SubvolumeID(path string) (uint64, error)
}
