// Renders logical directories and their subvolumes as a box-drawing tree
package btrgraph

import (
	"strings"
	"unicode/utf8"
)

const (
	trunk     = "┃"
	forkRight = "┣━━"
	turnDown  = "━━┓"
	turnRight = "┗━━"
)

type Branch struct {
	Name     string
	Children []string // rendered in given order
}

// ┃
// ┣━━ music ━━┓
// ┃           ┗━━ active
// ┃
// ┗━━ photos ━━┓
//              ┣━━ active
//              ┗━━ 2024-01-01T00:00:00+00:00
//
// output depends only on input (byte-for-byte), so it's safe to diff/golden test.
func Render(branches []Branch) string {
	out := &strings.Builder{}

	for idx, branch := range branches {
		renderBranch(out, branch, idx == len(branches)-1)
	}

	return out.String()
}

func renderBranch(out *strings.Builder, branch Branch, last bool) {
	header := forkRight
	// children of the last branch don't need the trunk to continue on their left
	childPrefix := trunk
	if last {
		header = turnRight
		childPrefix = ""
	}

	out.WriteString(trunk + "\n")
	out.WriteString(header + " " + branch.Name + " " + turnDown + "\n")

	// children's glyphs start at the same column as the header's turnDown corner
	padding := strings.Repeat(" ", width(header+" "+branch.Name+" "+turnDown)-1-width(childPrefix))

	for idx, child := range branch.Children {
		glyph := forkRight
		if idx == len(branch.Children)-1 {
			glyph = turnRight
		}

		out.WriteString(childPrefix + padding + glyph + " " + child + "\n")
	}
}

// in code points, not bytes
func width(s string) int {
	return utf8.RuneCountInString(s)
}
