//go:build linux

package subvolume

import (
	"github.com/function61/gokit/logex"
)

// picks btrfs if root lives on btrfs, otherwise falls back to plain directories
func ForRoot(root string, logl *logex.Leveled) (Provider, error) {
	isBtrfs, err := IsBtrfs(root)
	if err != nil {
		return nil, err
	}

	if !isBtrfs {
		logl.Info.Printf(
			"%s is not on btrfs; treating plain directories as subvolumes",
			root)

		return Directory(), nil
	}

	return Btrfs(logl), nil
}
