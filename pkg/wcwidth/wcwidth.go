// Package wcwidth provides utilities for determining the column width of
// characters when displayed on a monospace grid, such as a terminal or the
// ASCII-art of a grid table.
package wcwidth

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// OfRune returns the column width of a rune.
func OfRune(r rune) int {
	return runewidth.RuneWidth(r)
}

// Of returns the column width of a string, assuming no soft line breaks.
func Of(s string) (w int) {
	for _, r := range s {
		w += OfRune(r)
	}
	return w
}

// Pad pads s with trailing spaces so that it is at least width columns wide.
// It never trims.
func Pad(s string, width int) string {
	if w := Of(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// MaxOfLines returns the width of the widest line in lines.
func MaxOfLines(lines []string) int {
	max := 0
	for _, line := range lines {
		if w := Of(line); w > max {
			max = w
		}
	}
	return max
}
