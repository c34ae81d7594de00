//go:build !linux

package mount

import (
	"errors"

	"github.com/function61/gokit/logex"
)

var errNotSupported = errors.New("mounting is only supported on Linux")

func Device(dev string, fsType string, logl *logex.Leveled) (*Mount, error) {
	return nil, errNotSupported
}

func (m *Mount) Release() error {
	return errNotSupported
}

func Subvolume(dev string, target string, subvolID uint64) error {
	return errNotSupported
}

func IsMountPoint(path string) (bool, error) {
	return false, nil
}
