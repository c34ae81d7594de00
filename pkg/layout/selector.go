package layout

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/samber/lo"
)

const SelectAll = "*"

// shell glob against logical dir names: "*", "photo?", "[a-c]*", "{photos,music}"
func Select(dirs []LogicalDir, pattern string) ([]LogicalDir, error) {
	if pattern == "" {
		pattern = SelectAll
	}

	// no separators: logical dir names are a single path component
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid logical directory selector %q: %w", pattern, err)
	}

	return lo.Filter(dirs, func(dir LogicalDir, _ int) bool {
		return matcher.Match(dir.Name)
	}), nil
}
