//go:build linux

package subvolume

import (
	"errors"
	"strings"
	"testing"

	"github.com/function61/gokit/assert"
	"github.com/function61/gokit/logex"
)

type recordingRunner struct {
	invocations []string
	output      []byte
	err         error
}

func (r *recordingRunner) run(name string, args ...string) ([]byte, error) {
	r.invocations = append(r.invocations, name+" "+strings.Join(args, " "))
	return r.output, r.err
}

func newTestBtrfs(runner *recordingRunner) *btrfsProvider {
	return &btrfsProvider{
		run: runner.run,
		log: logex.Levels(logex.Discard),
	}
}

func TestBtrfsCommandLines(t *testing.T) {
	runner := &recordingRunner{}
	btrfs := newTestBtrfs(runner)

	assert.Ok(t, btrfs.CreateSubvolume("/mnt/x/photos/active"))
	assert.Ok(t, btrfs.CreateSnapshot("/mnt/x/photos/active", "/mnt/x/photos/2024-01-01T00:00:00+00:00", true))
	assert.Ok(t, btrfs.CreateSnapshot("/mnt/x/photos/active", "/mnt/x/photos/scratch", false))
	assert.Ok(t, btrfs.DeleteSubvolume("/mnt/x/photos/2024-01-01T00:00:00+00:00"))

	assert.EqualString(t, strings.Join(runner.invocations, "\n"), `btrfs subvolume create /mnt/x/photos/active
btrfs subvolume snapshot -r /mnt/x/photos/active /mnt/x/photos/2024-01-01T00:00:00+00:00
btrfs subvolume snapshot /mnt/x/photos/active /mnt/x/photos/scratch
btrfs subvolume delete /mnt/x/photos/2024-01-01T00:00:00+00:00`)
}

func TestBtrfsErrorIncludesOutput(t *testing.T) {
	btrfs := newTestBtrfs(&recordingRunner{
		output: []byte("ERROR: cannot delete '/mnt/x/photos/active': Operation not permitted\n"),
		err:    errors.New("exit status 1"),
	})

	assert.EqualString(
		t,
		btrfs.DeleteSubvolume("/mnt/x/photos/active").Error(),
		"btrfs subvolume delete failed: exit status 1, output: ERROR: cannot delete '/mnt/x/photos/active': Operation not permitted")
}

func TestSubvolumeID(t *testing.T) {
	runner := &recordingRunner{output: []byte("257\n")}

	id, err := newTestBtrfs(runner).SubvolumeID("/mnt/x/photos/active")
	assert.Ok(t, err)
	assert.Assert(t, id == 257)
	assert.EqualString(t, runner.invocations[0], "btrfs inspect-internal rootid /mnt/x/photos/active")
}

func TestParseRootidOutput(t *testing.T) {
	id, err := parseRootidOutput([]byte("5\n"))
	assert.Ok(t, err)
	assert.Assert(t, id == 5)

	_, err = parseRootidOutput([]byte("ERROR: not a btrfs filesystem\n"))
	assert.EqualString(t, err.Error(), `unexpected rootid output: "ERROR: not a btrfs filesystem\n"`)
}

func TestIsSubvolumeOfMissingPath(t *testing.T) {
	isSubvol, err := newTestBtrfs(&recordingRunner{}).IsSubvolume(t.TempDir() + "/does-not-exist")
	assert.Ok(t, err)
	assert.Assert(t, !isSubvol)
}
