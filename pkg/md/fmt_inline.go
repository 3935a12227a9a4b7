package md

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A segment is a unit of formatted inline content.
type segment struct {
	typ  segmentType
	text string
}

type segmentType uint

const (
	segText segmentType = iota
	// Text whose whitespace is significant, like code spans and link tails.
	// It is never reflowed.
	segTextNoReflow
	segHTML
	segNewLine
	segHardLineBreak
	segLinkOrImageStart
	segLinkOrImageEnd
)

// Converts inline Op's to segments. Text is escaped so that it parses back to
// the same Op's.
func (c *FmtCodec) buildSegments(ops []InlineOp) []segment {
	b := segmentBuilder{c: c, ops: ops}
	for i := range ops {
		b.op(i)
	}
	return b.segs
}

type segmentBuilder struct {
	c    *FmtCodec
	ops  []InlineOp
	segs []segment
	// Nesting depth of emphasis and strong emphasis.
	emphasis int
}

func (b *segmentBuilder) add(typ segmentType, text string) {
	b.segs = append(b.segs, segment{typ, text})
}

func (b *segmentBuilder) text(s string) {
	if s != "" {
		b.add(segText, s)
	}
}

// Reports whether ops[i] exists and satisfies pred.
func (b *segmentBuilder) is(i int, pred func(InlineOp) bool) bool {
	return 0 <= i && i < len(b.ops) && pred(b.ops[i])
}

func (b *segmentBuilder) op(i int) {
	op := b.ops[i]
	switch op.Type {
	case OpText:
		b.textOp(i)
	case OpRawHTML:
		b.add(segHTML, op.Text)
	case OpNewLine:
		if b.is(i-1, isEmphasisStart) || b.is(i+1, isEmphasisEnd) {
			b.text("&NewLine;")
		} else {
			b.add(segNewLine, op.Text)
		}
	case OpCodeSpan:
		b.add(segTextNoReflow, codeSpan(op.Text))
	case OpEmphasisStart:
		b.openEmphasis(i, "*")
	case OpStrongEmphasisStart:
		b.openEmphasis(i, "**")
	case OpEmphasisEnd:
		b.text("*")
		b.emphasis--
	case OpStrongEmphasisEnd:
		b.text("**")
		b.emphasis--
	case OpStrikethroughStart, OpStrikethroughEnd:
		b.text("~~")
	case OpCheckbox:
		b.text("[" + op.Text + "] ")
	case OpLinkStart:
		b.add(segLinkOrImageStart, "")
		b.text("[")
	case OpLinkEnd:
		b.text("]")
		b.add(segTextNoReflow, formatLinkTail(op.Dest, op.Text))
		b.add(segLinkOrImageEnd, "")
	case OpImage:
		b.add(segLinkOrImageStart, "")
		b.text("![")
		b.text(escapeNewLines(escapeText(op.Alt)))
		b.text("]")
		b.add(segTextNoReflow, formatLinkTail(op.Dest, op.Text))
		b.add(segLinkOrImageEnd, "")
	case OpAutolink:
		b.text("<")
		if op.Dest == "mailto:"+op.Text {
			// Email autolinks can't contain ";", so character references
			// would break them.
			b.text(op.Text)
		} else {
			b.text(escapeAutolink(op.Text))
		}
		b.text(">")
	case OpHardLineBreak:
		b.add(segHardLineBreak, "")
	}
}

// Writes an OpText. Characters next to emphasis delimiters that would change
// whether the delimiters can open or close are written as character
// references.
func (b *segmentBuilder) textOp(i int) {
	text := b.ops[i].Text
	if b.is(i-1, isEmphasisStart) {
		// An opener can't be followed by whitespace.
		if r, l := utf8.DecodeRuneInString(text); l > 0 && unicode.IsSpace(r) {
			b.text(numericRef(r))
			text = text[l:]
		}
	} else if i > 1 && b.is(i-1, isEmphasisEnd) && outputHasPunct(b.ops[i-2], true) {
		// A closer preceded by punctuation can't be followed by a word
		// character.
		if r, l := utf8.DecodeRuneInString(text); isWord(r, l) {
			b.text(numericRef(r))
			text = text[l:]
		}
	}

	var suffix string
	switch {
	case strings.HasSuffix(text, "!") && b.is(i+1, isLinkStart):
		text, suffix = text[:len(text)-1], `\!`
	case b.is(i+1, isEmphasisEnd):
		// A closer can't be preceded by whitespace.
		if r, l := utf8.DecodeLastRuneInString(text); l > 0 && unicode.IsSpace(r) {
			text, suffix = text[:len(text)-l], numericRef(r)
		}
	case b.is(i+1, isEmphasisStart) && i+2 < len(b.ops) && outputHasPunct(b.ops[i+2], false):
		// An opener followed by punctuation can't be preceded by a word
		// character.
		if r, l := utf8.DecodeLastRuneInString(text); isWord(r, l) {
			text, suffix = text[:len(text)-l], numericRef(r)
		}
	}
	b.text(escapeText(text))
	b.text(suffix)
}

func (b *segmentBuilder) openEmphasis(i int, delim string) {
	b.text(delim)
	b.emphasis++
	if b.emphasis >= 2 {
		b.c.setUnsupported().NestedEmphasisOrStrongEmphasis = true
	}
	if b.is(i-1, isEmphasisEnd) {
		b.c.setUnsupported().ConsecutiveEmphasisOrStrongEmphasis = true
	}
}

// Wraps the content of a code span in the shortest backquote run that does
// not occur in it.
func codeSpan(text string) string {
	runs := runLengths([]string{text}, backquoteRunRegexp)
	n := 1
	for runs[n] {
		n++
	}
	delim := strings.Repeat("`", n)
	// The content is never empty. One space of padding is stripped when
	// parsing, so add it when the content starts or ends with a backquote, or
	// has a space at both ends.
	first, last := text[0], text[len(text)-1]
	if first == '`' || last == '`' || first == ' ' && last == ' ' && strings.Trim(text, " ") != "" {
		return delim + " " + text + " " + delim
	}
	return delim + text + delim
}

var atxHeadingCloserLookalike = regexp.MustCompile(`#+$`)

func (c *FmtCodec) writeHeadingSegments(segs []segment) {
	for i, seg := range segs {
		switch seg.typ {
		case segText:
			text := seg.text
			if i == 0 {
				text = escapeLeadingSpaceTab(text)
			}
			if i == len(segs)-1 {
				text = escapeHeadingEnd(text, i == 0)
			}
			c.write(text)
		case segHTML, segTextNoReflow:
			// Neither can contain newlines inside a heading.
			c.write(seg.text)
		case segNewLine:
			c.write("&NewLine;")
		}
	}
}

// Escapes the end of a heading's content, so that trailing whitespace is kept
// and a trailing run of "#" is not parsed as a closing sequence.
func escapeHeadingEnd(text string, only bool) string {
	text = escapeTrailingSpaceTab(text)
	hashes := atxHeadingCloserLookalike.FindString(text)
	if hashes == "" {
		return text
	}
	if head := text[:len(text)-len(hashes)]; endsWithSpaceOrTab(head) || head == "" && only {
		return head + `\` + hashes
	}
	return text
}

// Reports whether segs[i] is at the start of an output line.
func startsLine(segs []segment, i int) bool {
	return i == 0 || segs[i-1].typ == segNewLine && (i == 1 || segs[i-2].typ != segNewLine)
}

// Reports whether segs[i] is at the end of an output line.
func endsLine(segs []segment, i int) bool {
	return i == len(segs)-1 || segs[i+1].typ == segNewLine
}

// Writes a paragraph, keeping its line breaks.
func (c *FmtCodec) writeParagraphSegments(segs []segment) {
	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		switch seg.typ {
		case segText:
			text := seg.text
			end := endsLine(segs, i)
			// Trailing whitespace is escaped first, so that text like "- - - "
			// is no longer a thematic break when the start is checked.
			if end {
				text = escapeTrailingSpaceTab(text)
			}
			if startsLine(segs, i) {
				text = c.escapeStartOfLine(text, i == 0, end)
			}
			c.write(text)
		case segHTML:
			if c.writeRawHTML(segs, i) {
				i++
			}
		case segTextNoReflow:
			c.write(seg.text)
		case segNewLine:
			if i == 0 || i == len(segs)-1 || segs[i-1].typ == segNewLine {
				c.write("&NewLine;")
			} else {
				c.finishLine()
				c.startLine()
			}
		case segHardLineBreak:
			c.write(`\`)
		}
	}
}

// Writes the inline raw HTML in segs[i], which may span several lines. It
// returns true if it has also written the newline following it.
func (c *FmtCodec) writeRawHTML(segs []segment, i int) bool {
	lines := strings.Split(segs[i].text, "\n")
	if startsLine(segs, i) && canStartHTMLBlock(lines[0], i == 0) {
		switch {
		case i > 0:
			// Indentation stops an HTML block from starting, and can't start
			// an indented code block inside a paragraph.
			c.write("    ")
		case len(lines) == 1 && i+1 < len(segs) && segs[i+1].typ == segNewLine:
			// At the start of a paragraph, escaping the following newline is
			// the only way found to keep this inline.
			c.write(lines[0] + "&NewLine;")
			return true
		}
	}
	c.write(lines[0])
	for _, line := range lines[1:] {
		c.finishLine()
		c.startLine()
		c.write(line)
	}
	return false
}

// Strikethrough follows the same flanking rules as emphasis.

func isEmphasisStart(op InlineOp) bool {
	return op.Type == OpEmphasisStart || op.Type == OpStrongEmphasisStart ||
		op.Type == OpStrikethroughStart
}

func isEmphasisEnd(op InlineOp) bool {
	return op.Type == OpEmphasisEnd || op.Type == OpStrongEmphasisEnd ||
		op.Type == OpStrikethroughEnd
}

func isLinkStart(op InlineOp) bool { return op.Type == OpLinkStart }

// Reports whether the output of op starts, or ends if atEnd is true, with
// punctuation. Whitespace counts, since it is written as a character
// reference.
func outputHasPunct(op InlineOp, atEnd bool) bool {
	if op.Type != OpText {
		return true
	}
	decode := utf8.DecodeRuneInString
	if atEnd {
		decode = utf8.DecodeLastRuneInString
	}
	r, l := decode(op.Text)
	return l > 0 && unicode.IsSpace(r) || isUnicodePunct(r)
}

// Takes the result of utf8.Decode*, and returns whether the character is
// non-empty and a "word" character for the purpose of emphasis parsing.
func isWord(r rune, l int) bool {
	return l > 0 && !unicode.IsSpace(r) && !isUnicodePunct(r)
}
