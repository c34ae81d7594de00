//go:build !linux

package subvolume

import (
	"github.com/function61/gokit/logex"
)

func ForRoot(root string, logl *logex.Leveled) (Provider, error) {
	logl.Info.Printf(
		"btrfs is only supported on Linux; treating plain directories under %s as subvolumes",
		root)

	return Directory(), nil
}
