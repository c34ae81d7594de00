//go:build linux

package subvolume

// subvolumes on Linux using btrfs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/function61/gokit/logex"
	"golang.org/x/sys/unix"
)

const (
	// every btrfs subvolume root has this inode number (BTRFS_FIRST_FREE_OBJECTID)
	btrfsSubvolumeRootInode = 256
)

type commandRunner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	//nolint:gosec // ok
	return exec.Command(name, args...).CombinedOutput()
}

func Btrfs(logl *logex.Leveled) Provider {
	return &btrfsProvider{
		run: execRunner,
		log: logl,
	}
}

type btrfsProvider struct {
	run commandRunner
	log *logex.Leveled
}

func (b *btrfsProvider) IsSubvolume(path string) (bool, error) {
	stat, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	if !stat.IsDir() {
		return false, nil
	}

	sys, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return false, errors.New("IsSubvolume: unable to read inode")
	}

	if sys.Ino != btrfsSubvolumeRootInode {
		return false, nil
	}

	// inode 256 on some other filesystem is just a coincidence
	return IsBtrfs(path)
}

func (b *btrfsProvider) CreateSubvolume(path string) error {
	return b.btrfs("subvolume", "create", path)
}

func (b *btrfsProvider) CreateSnapshot(src string, dst string, readOnly bool) error {
	args := []string{"subvolume", "snapshot"}
	if readOnly {
		args = append(args, "-r")
	}

	return b.btrfs(append(args, src, dst)...)
}

func (b *btrfsProvider) DeleteSubvolume(path string) error {
	return b.btrfs("subvolume", "delete", path)
}

func (b *btrfsProvider) SubvolumeID(path string) (uint64, error) {
	output, err := b.run("btrfs", "inspect-internal", "rootid", path)
	if err != nil {
		return 0, fmt.Errorf(
			"btrfs inspect-internal rootid failed: %s, output: %s",
			err.Error(),
			output)
	}

	return parseRootidOutput(output)
}

func (b *btrfsProvider) btrfs(args ...string) error {
	b.log.Debug.Printf("btrfs %s", strings.Join(args, " "))

	output, err := b.run("btrfs", args...)
	if err != nil {
		return fmt.Errorf(
			"btrfs %s failed: %s, output: %s",
			strings.Join(args[0:2], " "),
			err.Error(),
			strings.TrimSpace(string(output)))
	}

	return nil
}

// see test for output example
func parseRootidOutput(output []byte) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected rootid output: %q", output)
	}

	return id, nil
}

func IsBtrfs(path string) (bool, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return false, fmt.Errorf("statfs %s: %w", path, err)
	}

	return uint32(stat.Type) == uint32(unix.BTRFS_SUPER_MAGIC), nil
}
