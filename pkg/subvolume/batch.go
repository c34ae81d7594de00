package subvolume

import (
	"fmt"
	"strings"
)

// one failed create/delete inside a batch. siblings of a failed item are still attempted.
type ItemFailure struct {
	Path string
	Err  error
}

type BatchError struct {
	Op       string // "snapshot" | "delete"
	Failures []ItemFailure
}

func (b *BatchError) Error() string {
	items := []string{}
	for _, failure := range b.Failures {
		items = append(items, fmt.Sprintf("%s: %v", failure.Path, failure.Err))
	}

	return fmt.Sprintf("%s failed for %d item(s): %s", b.Op, len(b.Failures), strings.Join(items, "; "))
}

func (b *BatchError) Unwrap() []error {
	errs := []error{}
	for _, failure := range b.Failures {
		errs = append(errs, failure.Err)
	}
	return errs
}

// returns nil if there were no failures, so callers can return it as-is
func NewBatchError(op string, failures []ItemFailure) error {
	if len(failures) == 0 {
		return nil
	}

	return &BatchError{
		Op:       op,
		Failures: failures,
	}
}
