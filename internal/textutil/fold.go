package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldTitle returns the case-folded, whitespace-trimmed form of a title used
// for identity comparison. A new Caser is created per call because cases.Caser
// is not safe for concurrent use.
func FoldTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// SameTitle reports whether two titles are equal under case folding.
func SameTitle(a, b string) bool {
	return FoldTitle(a) == FoldTitle(b)
}
