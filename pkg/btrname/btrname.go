// Subvolume naming rules: the writable "active" subvolume and timestamp-named snapshots
package btrname

import (
	"time"
)

const (
	Active = "active"

	// local offset is part of the name, e.g. "2024-01-01T13:37:00+02:00"
	SnapshotLayout = "2006-01-02T15:04:05-07:00"
)

func IsActive(name string) bool {
	return name == Active
}

// returns false if name is not a snapshot name. the name must be in canonical form
// (zero padded, seconds precision, "±HH:MM" offset), because order of snapshot names
// as strings and order of their instants must agree
func Parse(name string) (time.Time, bool) {
	ts, err := time.Parse(SnapshotLayout, name)
	if err != nil {
		return time.Time{}, false
	}

	// time.Parse() is lenient about e.g. single-digit hours. "-00:00" is also rejected
	// here because it formats back as "+00:00"
	if ts.Format(SnapshotLayout) != name {
		return time.Time{}, false
	}

	return ts, true
}

func IsSnapshot(name string) bool {
	_, ok := Parse(name)
	return ok
}

// names allowed directly under a logical directory
func IsValidSubvolumeName(name string) bool {
	return IsActive(name) || IsSnapshot(name)
}

// compares instants, not wall clock fields, so differing offsets are handled correctly
func Compare(a time.Time, b time.Time) int {
	return a.Compare(b)
}

// the only place where snapshot names are minted. callers pass time.Now() (in local
// time, so the name carries the local offset)
func Format(ts time.Time) string {
	return ts.Truncate(time.Second).Format(SnapshotLayout)
}
