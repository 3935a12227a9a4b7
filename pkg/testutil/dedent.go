package testutil

import "strings"

// Dedent removes a leading newline from text, and the longest run of leading
// whitespace common to all its non-blank lines. Lines made only of whitespace
// become empty.
//
// It lets a multi-line raw string start on the line after the opening
// backquote, indented along with the code around it:
//
//	want := Dedent(`
//		+---+
//		| a |
//		+---+
//		`)
func Dedent(text string) string {
	lines := strings.Split(strings.TrimPrefix(text, "\n"), "\n")
	var margin string
	found := false
	for i, line := range lines {
		rest := strings.TrimLeft(line, " \t")
		if rest == "" {
			lines[i] = ""
			continue
		}
		indent := line[:len(line)-len(rest)]
		if !found {
			margin, found = indent, true
		} else {
			margin = commonPrefix(margin, indent)
		}
	}
	if margin == "" {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
