package gridtable

import "strings"

// Escapes the characters that could be read as dividers when the text is put
// inside a grid table.
func escapeDividers(s string) string {
	if !strings.ContainsAny(s, "|+") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '|' || s[i] == '+' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// Reverses escapeDividers. A backslash only escapes a following divider
// character; in particular, "\\" is not an escape sequence here.
func unescapeDividers(s string) string {
	if !strings.Contains(s, `\|`) && !strings.Contains(s, `\+`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '|' || s[i+1] == '+') {
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
