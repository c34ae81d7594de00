package btrprune

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/function61/btrbackup/pkg/layout"
	"github.com/function61/btrbackup/pkg/subvolume"
	"github.com/function61/gokit/assert"
	"github.com/function61/gokit/logex"
)

const (
	s1 = "2024-01-01T00:00:00+00:00"
	s2 = "2024-01-02T00:00:00+00:00"
	s3 = "2024-01-03T00:00:00+00:00"
)

func TestComputePlan(t *testing.T) {
	dirs := []layout.LogicalDir{
		{
			Name: "photos",
			Children: []layout.Entry{
				{Name: s1, Path: "/x/photos/" + s1},
				{Name: s2, Path: "/x/photos/" + s2},
				{Name: s3, Path: "/x/photos/" + s3},
				{Name: "active", Path: "/x/photos/active"},
			},
		},
	}

	tcs := []struct {
		keepLatest int
		keep       string
		remove     string
	}{
		{0, "", s3 + "," + s2 + "," + s1},
		{1, s3, s2 + "," + s1},
		{2, s3 + "," + s2, s1},
		{3, s3 + "," + s2 + "," + s1, ""},
		{10, s3 + "," + s2 + "," + s1, ""},
	}

	for _, tc := range tcs {
		tc := tc // pin
		t.Run(fmt.Sprintf("keep %d", tc.keepLatest), func(t *testing.T) {
			plan := ComputePlan(dirs, Policy{KeepLatest: tc.keepLatest})

			assert.Assert(t, len(plan.Dirs) == 1)
			assert.EqualString(t, names(plan.Dirs[0].Keep), tc.keep)
			assert.EqualString(t, names(plan.Dirs[0].Remove), tc.remove)
		})
	}
}

func TestPrune(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"music/active",
		"music/"+s1,
		"photos/active",
		"photos/"+s1,
		"photos/"+s2,
		"photos/"+s3,
		"photos/lost+found")

	report := &bytes.Buffer{}

	removals, err := Prune(scan(t, root), Policy{KeepLatest: 1}, false, subvolume.Directory(), report, logex.Levels(logex.Discard))
	assert.Ok(t, err)
	assert.Assert(t, len(removals) == 2)

	assert.EqualString(t, report.String(), filepath.Join(root, "photos", s2)+" will be removed\n"+filepath.Join(root, "photos", s1)+" will be removed\n")

	assert.EqualString(t, children(t, root, "music"), s1+",active")
	// active and non-snapshot entries are never removed
	assert.EqualString(t, children(t, root, "photos"), s3+",active,lost+found")
}

func TestPruneKeepZeroRemovesAllSnapshots(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "photos/active", "photos/"+s1, "photos/"+s2)

	_, err := Prune(scan(t, root), Policy{KeepLatest: 0}, false, subvolume.Directory(), &bytes.Buffer{}, logex.Levels(logex.Discard))
	assert.Ok(t, err)

	assert.EqualString(t, children(t, root, "photos"), "active")
}

func TestDryRunRemovesNothing(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "photos/active", "photos/"+s1, "photos/"+s2, "photos/"+s3)

	report := &bytes.Buffer{}

	removals, err := Prune(scan(t, root), Policy{KeepLatest: 1}, true, subvolume.Directory(), report, logex.Levels(logex.Discard))
	assert.Ok(t, err)
	assert.Assert(t, len(removals) == 2)
	assert.EqualString(t, removals[0].Path, filepath.Join(root, "photos", s2))

	assert.Assert(t, strings.Count(report.String(), "will be removed") == 2)
	assert.EqualString(t, children(t, root, "photos"), s1+","+s2+","+s3+",active")
}

func TestFailedRemovalDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "photos/active", "photos/"+s1, "photos/"+s2, "photos/"+s3)

	subvols := &failingProvider{
		Provider: subvolume.Directory(),
		failFor:  filepath.Join(root, "photos", s2),
	}

	removals, err := Prune(scan(t, root), Policy{KeepLatest: 0}, false, subvols, &bytes.Buffer{}, logex.Levels(logex.Discard))
	assert.Assert(t, len(removals) == 3)

	var batchErr *subvolume.BatchError
	assert.Assert(t, errors.As(err, &batchErr))
	assert.Assert(t, len(batchErr.Failures) == 1)
	assert.EqualString(t, batchErr.Failures[0].Path, filepath.Join(root, "photos", s2))

	assert.EqualString(t, children(t, root, "photos"), s2+",active")
}

func TestUnreadableDirRemovesNothing(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "photos/active", "photos/"+s1, "photos/"+s2)

	dirs := append(scan(t, root), layout.LogicalDir{
		Name:    "secret",
		Path:    filepath.Join(root, "secret"),
		ReadErr: errors.New("reading secret: permission denied"),
	})

	report := &bytes.Buffer{}

	removals, err := Prune(dirs, Policy{KeepLatest: 0}, false, subvolume.Directory(), report, logex.Levels(logex.Discard))
	assert.EqualString(t, err.Error(), "not removing anything: reading secret: permission denied")
	assert.Assert(t, len(removals) == 0)
	assert.EqualString(t, report.String(), "")

	assert.EqualString(t, children(t, root, "photos"), s1+","+s2+",active")
}

func TestNegativeKeepLatest(t *testing.T) {
	_, err := Prune(nil, Policy{KeepLatest: -1}, true, subvolume.Directory(), &bytes.Buffer{}, logex.Levels(logex.Discard))
	assert.EqualString(t, err.Error(), "keep latest must be non-negative; got -1")
}

type failingProvider struct {
	subvolume.Provider
	failFor string
}

func (f *failingProvider) DeleteSubvolume(path string) error {
	if path == f.failFor {
		return errors.New("Device or resource busy")
	}

	return f.Provider.DeleteSubvolume(path)
}

func names(snapshots []layout.Snapshot) string {
	items := []string{}
	for _, snapshot := range snapshots {
		items = append(items, snapshot.Name)
	}
	return strings.Join(items, ",")
}

func scan(t *testing.T, root string) []layout.LogicalDir {
	t.Helper()

	tree, err := layout.Scan(root)
	assert.Ok(t, err)

	return tree.Dirs
}

func children(t *testing.T, root string, dir string) string {
	t.Helper()

	dentries, err := os.ReadDir(filepath.Join(root, dir))
	assert.Ok(t, err)

	items := []string{}
	for _, dentry := range dentries {
		items = append(items, dentry.Name())
	}
	return strings.Join(items, ",")
}

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()

	for _, path := range paths {
		assert.Ok(t, os.MkdirAll(filepath.Join(root, path), 0755))
	}
}
