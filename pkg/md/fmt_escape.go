package md

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	backquoteRunRegexp = regexp.MustCompile("`+")
	tildeRunRegexp     = regexp.MustCompile("~+")
)

// Returns the set of lengths of the matches of pattern in pieces.
func runLengths(pieces []string, pattern *regexp.Regexp) map[int]bool {
	lens := make(map[int]bool)
	for _, piece := range pieces {
		for _, run := range pattern.FindAllString(piece, -1) {
			lens[len(run)] = true
		}
	}
	return lens
}

// Returns the fences of a fenced code block. Backquotes are used unless the
// info string contains one. The fence is longer than any run of the fence
// character in the content.
func codeFences(info string, lines []string) (start, end string) {
	ch, runRegexp := "`", backquoteRunRegexp
	if strings.Contains(info, "`") {
		ch, runRegexp = "~", tildeRunRegexp
	}
	n := 3
	for l := range runLengths(lines, runRegexp) {
		n = max(n, l+1)
	}
	fence := strings.Repeat(ch, n)
	if ch == "~" && strings.HasPrefix(info, "~") {
		return fence + " " + escapeCodeFenceInfo(info), fence
	}
	return fence + escapeCodeFenceInfo(info), fence
}

// The info string only supports backslash escapes and character references,
// and can't contain newlines.
func escapeCodeFenceInfo(s string) string {
	if !strings.ContainsAny(s, "\\\n&") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\':
			sb.WriteString(`\\`)
		case s[i] == '\n':
			sb.WriteString("&NewLine;")
		case s[i] == '&' && leadingCharRef(s[i:]) != "":
			sb.WriteString(`\&`)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

var (
	// Text that is a thematic break, possibly after prepending dash bullet
	// markers. Leading whitespace is already escaped and "*" is always
	// backslash-escaped, so neither is considered.
	thematicBreakLookalike = regexp.MustCompile(`^((?:-[ \t]*)+|(?:_[ \t]*)+)$`)
	// Dash bullet markers at the end of the output.
	trailingDashes = regexp.MustCompile(`(?:- *)*$`)
	// ATX heading and ordered list openers, when followed by whitespace or the
	// end of the line.
	atxHeadingOpenerLookalike  = regexp.MustCompile(`^#{1,6}`)
	orderedListOpenerLookalike = regexp.MustCompile(`^([0-9]{1,9})([.)])`)
)

// Escapes text at the start of a line so that it can't start a block.
func (c *FmtCodec) escapeStartOfLine(s string, startOfParagraph, endOfLine bool) string {
	s = escapeLeadingSpaceTab(s)
	openerEnds := func(tail string) bool {
		return startsWithSpaceOrTab(tail) || tail == "" && endOfLine
	}
	switch s[0] {
	case '+', '>':
		// "+" can also start a grid table.
		return `\` + s
	case '-':
		if tail := s[1:]; startsWithSpaceOrTab(tail) || tail == "" && startOfParagraph && endOfLine {
			return `\` + s
		}
	case '#':
		if hashes := atxHeadingOpenerLookalike.FindString(s); hashes != "" && openerEnds(s[len(hashes):]) {
			return `\` + s
		}
	}
	if strings.HasPrefix(s, "~~~") {
		return `\` + s
	}
	if m := orderedListOpenerLookalike.FindStringSubmatch(s); m != nil {
		number, punct, tail := m[1], m[2], s[len(m[0]):]
		// Only lists starting with 1 can interrupt a paragraph.
		if openerEnds(tail) && (startOfParagraph || strings.TrimLeft(number, "0") == "1") {
			return number + `\` + punct + tail
		}
		return s
	}
	if endOfLine && thematicBreakLookalike.MatchString(s) {
		line := s
		if startOfParagraph && s[0] == '-' {
			// Dash bullet markers written just before can join the text to
			// form a thematic break.
			line = trailingDashes.FindString(c.sb.String()) + line
		}
		if thematicBreakRegexp.MatchString(line) {
			return `\` + s
		}
	}
	return s
}

// Reports whether inline raw HTML at the start of a line would be parsed as
// the start of an HTML block.
func canStartHTMLBlock(s string, startOfParagraph bool) bool {
	if !strings.HasPrefix(s, "<") {
		return false
	}
	for _, re := range htmlBlockStarts {
		if re.MatchString(s) {
			return true
		}
	}
	// HTML blocks of the last kind can't interrupt a paragraph.
	return startOfParagraph && htmlBlockStart7.MatchString(s)
}

var spaceTabRefs = map[byte]string{' ': "&#32;", '\t': "&Tab;"}

func escapeLeadingSpaceTab(s string) string {
	if ref, ok := spaceTabRefs[s[0]]; ok {
		return ref + s[1:]
	}
	return s
}

func escapeTrailingSpaceTab(s string) string {
	if ref, ok := spaceTabRefs[s[len(s)-1]]; ok {
		return s[:len(s)-1] + ref
	}
	return s
}

func startsWithSpaceOrTab(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}

func endsWithSpaceOrTab(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}

func numericRef(r rune) string { return "&#" + strconv.Itoa(int(r)) + ";" }

func escapeNewLines(s string) string { return strings.ReplaceAll(s, "\n", "&NewLine;") }

const asciiControl = "\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f"

const forbiddenInRawLinkDest = asciiControl + " "

// Formats the part of a link or image after the text, from "(" to ")".
func formatLinkTail(dest, title string) string {
	var d string
	switch {
	case strings.ContainsAny(dest, forbiddenInRawLinkDest) || !balancedParens(dest):
		// Angle-bracketed destinations allow spaces and unbalanced parens,
		// but not newlines.
		d = "<" + escapeNewLines(escapeAmpersandBackslash(dest, "<>")) + ">"
	case dest == "" && title != "":
		d = "<>"
	default:
		d = escapeAmpersandBackslash(dest, "")
		if strings.HasPrefix(d, "<") {
			// Would start an angle-bracketed destination.
			d = `\` + d
		}
	}
	if title != "" {
		d += " " + escapeNewLines(wrapAndEscapeLinkTitle(title))
	}
	return "(" + d + ")"
}

func balancedParens(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}

var titleDelims = []struct{ open, close, special string }{
	{`"`, `"`, `"`}, {`'`, `'`, `'`}, {"(", ")", "()"},
}

// Wraps a link title in the delimiters that need the fewest escapes.
func wrapAndEscapeLinkTitle(title string) string {
	best, bestCount := 0, -1
	for i, d := range titleDelims {
		n := 0
		for j := 0; j < len(d.special); j++ {
			n += strings.Count(title, d.special[j:j+1])
		}
		if n == 0 {
			return d.open + escapeAmpersandBackslash(title, "") + d.close
		}
		if bestCount == -1 || n < bestCount {
			best, bestCount = i, n
		}
	}
	d := titleDelims[best]
	return d.open + escapeAmpersandBackslash(title, d.special) + d.close
}

// Backslash-escapes backslashes, ampersands starting a character reference,
// and bytes in set.
func escapeAmpersandBackslash(s, set string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || strings.IndexByte(set, s[i]) >= 0 || leadingCharRef(s[i:]) != "" {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func escapeText(s string) string {
	if !strings.ContainsAny(s, "[]*_`\\&<~|\u00A0") {
		return s
	}
	var sb strings.Builder
	for i, r := range s {
		switch r {
		case '[', ']', '*', '`', '\\', '~', '|', '<':
			// "<" can start raw HTML or an autolink.
			sb.WriteByte('\\')
		case '_':
			// Underscores inside a word can't delimit emphasis.
			if !isWord(utf8.DecodeLastRuneInString(s[:i])) || !isWord(utf8.DecodeRuneInString(s[i+1:])) {
				sb.WriteByte('\\')
			}
		case '&':
			// Inline markup can't occur inside a character reference, so it is
			// enough to look ahead within s.
			if leadingCharRef(s[i:]) != "" {
				sb.WriteByte('\\')
			}
		case '\u00A0':
			sb.WriteString("&nbsp;")
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const forbiddenInAutolink = asciiControl + "& <>"

// Autolinks support character references but not backslash escapes.
// Characters that can't appear in them are written as references.
func escapeAutolink(s string) string {
	if !strings.ContainsAny(s, forbiddenInAutolink) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch b := s[i]; {
		case b <= ' ':
			sb.WriteString(numericRef(rune(b)))
		case b == '&' && leadingCharRef(s[i:]) != "":
			sb.WriteString("&amp;")
		case b == '<':
			sb.WriteString("&lt;")
		case b == '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
