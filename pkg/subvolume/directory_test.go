package subvolume

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestDirectorySnapshotLifecycle(t *testing.T) {
	root := t.TempDir()
	subvols := Directory()

	active := filepath.Join(root, "active")
	snap := filepath.Join(root, "2024-01-01T00:00:00+00:00")

	assert.Ok(t, subvols.CreateSubvolume(active))
	assert.Ok(t, os.WriteFile(filepath.Join(active, "hello.txt"), []byte("hello"), 0644))
	assert.Ok(t, os.Mkdir(filepath.Join(active, "sub"), 0755))
	assert.Ok(t, os.WriteFile(filepath.Join(active, "sub", "world.txt"), []byte("world"), 0644))

	assert.Ok(t, subvols.CreateSnapshot(active, snap, true))

	content, err := os.ReadFile(filepath.Join(snap, "sub", "world.txt"))
	assert.Ok(t, err)
	assert.EqualString(t, string(content), "world")

	stat, err := os.Stat(snap)
	assert.Ok(t, err)
	assert.Assert(t, stat.Mode().Perm() == 0555)

	isSubvol, err := subvols.IsSubvolume(snap)
	assert.Ok(t, err)
	assert.Assert(t, isSubvol)

	// snapshot must never overwrite
	assert.EqualString(
		t,
		subvols.CreateSnapshot(active, snap, true).Error(),
		"snapshot destination "+snap+" already exists")

	assert.Ok(t, subvols.DeleteSubvolume(snap))

	_, err = os.Stat(snap)
	assert.Assert(t, os.IsNotExist(err))
}

func TestDirectoryIsSubvolume(t *testing.T) {
	root := t.TempDir()
	subvols := Directory()

	file := filepath.Join(root, "notes.txt")
	assert.Ok(t, os.WriteFile(file, []byte("x"), 0644))

	isSubvol, err := subvols.IsSubvolume(file)
	assert.Ok(t, err)
	assert.Assert(t, !isSubvol)

	isSubvol, err = subvols.IsSubvolume(filepath.Join(root, "missing"))
	assert.Ok(t, err)
	assert.Assert(t, !isSubvol)

	assert.EqualString(t, subvols.DeleteSubvolume(file).Error(), file+" is not a subvolume")
}

func TestDirectorySnapshotOfPlainFile(t *testing.T) {
	root := t.TempDir()
	subvols := Directory()

	active := filepath.Join(root, "active")
	snap := filepath.Join(root, "2024-01-01T00:00:00+00:00")
	assert.Ok(t, os.WriteFile(active, []byte("x"), 0644))

	assert.EqualString(t, subvols.CreateSnapshot(active, snap, true).Error(), "snapshot source "+active+" is not a subvolume")

	_, err := os.Lstat(snap)
	assert.Assert(t, os.IsNotExist(err))
}

func TestBatchError(t *testing.T) {
	assert.Assert(t, NewBatchError("delete", nil) == nil)

	errBusy := errors.New("device or resource busy")

	err := NewBatchError("delete", []ItemFailure{
		{Path: "/x/a/2024-01-01T00:00:00+00:00", Err: errBusy},
	})

	assert.EqualString(t, err.Error(), "delete failed for 1 item(s): /x/a/2024-01-01T00:00:00+00:00: device or resource busy")
	assert.Assert(t, errors.Is(err, errBusy))
}
