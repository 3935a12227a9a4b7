package md

import (
	"regexp"
	"strings"

	"src.mdgrid.dev/pkg/wcwidth"
)

var whitespaceRunRegexp = regexp.MustCompile(`[ \t\n]+`)

// A span is a piece of a reflowed paragraph that is never broken across
// lines. Adjacent spans are joined with a space or a line break.
type span struct {
	text string
	// Whether the span ends with a hard line break, written as a backslash at
	// the end of text.
	hardBreak bool
}

// Splits segments into spans at whitespace. Links and images are kept in
// one span, with their internal whitespace collapsed.
func splitSpans(segs []segment) []span {
	var spans []span
	var cur strings.Builder
	flush := func(hardBreak bool) {
		if cur.Len() > 0 {
			spans = append(spans, span{cur.String(), hardBreak})
			cur.Reset()
		}
	}
	linkOrImage := 0
	for _, seg := range segs {
		switch seg.typ {
		case segText:
			words := whitespaceRunRegexp.Split(seg.text, -1)
			if linkOrImage == 0 {
				for i, word := range words {
					if i > 0 {
						flush(false)
					}
					cur.WriteString(word)
				}
				break
			}
			if words[0] == "" && strings.HasSuffix(cur.String(), " ") {
				words = words[1:]
			}
			cur.WriteString(strings.Join(words, " "))
		case segTextNoReflow:
			cur.WriteString(seg.text)
		case segHTML:
			// Collapsing whitespace may change attribute values, but keeps
			// the span on one line.
			cur.WriteString(whitespaceRunRegexp.ReplaceAllLiteralString(seg.text, " "))
		case segNewLine:
			if linkOrImage == 0 {
				flush(false)
			} else if !strings.HasSuffix(cur.String(), " ") {
				cur.WriteByte(' ')
			}
		case segHardLineBreak:
			if linkOrImage > 0 {
				cur.WriteString("<br />")
			} else {
				cur.WriteByte('\\')
				flush(true)
			}
		case segLinkOrImageStart:
			linkOrImage++
		case segLinkOrImageEnd:
			linkOrImage--
		}
	}
	flush(false)
	return spans
}

// Writes a paragraph, filling lines with spans up to maxWidth columns,
// including the markers of containers.
func (c *FmtCodec) writeParagraphReflow(segs []segment, maxWidth int) {
	spans := splitSpans(segs)
	if len(spans) == 0 {
		// An escaped newline is the only way to write an empty paragraph.
		c.write("&NewLine;")
		return
	}
	for _, ct := range c.containers {
		maxWidth -= len(ct.marker)
	}

	f := &lineFiller{c: c, width: maxWidth, first: true}
	for i, s := range spans {
		f.add(s.text)
		if s.hardBreak {
			f.breakLine()
			if i == len(spans)-1 {
				// A backslash at the end of a paragraph is literal. An escaped
				// newline after it keeps the hard line break.
				f.line.WriteString("&NewLine;")
			}
		}
	}
	if f.line.Len() > 0 {
		f.flush()
	}
}

type lineFiller struct {
	c     *FmtCodec
	width int
	line  strings.Builder
	// Display width of line.
	lineWidth int
	// Whether line is the first line of the paragraph.
	first bool
}

func (f *lineFiller) add(s string) {
	w := wcwidth.Of(s)
	if f.line.Len() > 0 {
		if f.fits(s, w) {
			f.line.WriteByte(' ')
			f.line.WriteString(s)
			f.lineWidth += 1 + w
			return
		}
		f.breakLine()
	}
	f.line.WriteString(s)
	f.lineWidth = w
}

// Reports whether s, w columns wide, fits on the current line after a space.
// Escaping the start of the line may add a backslash, since a line never
// starts with whitespace; a line that fills the width exactly fits only if
// it needs no escaping.
func (f *lineFiller) fits(s string, w int) bool {
	switch n := f.lineWidth + 1 + w; {
	case n < f.width:
		return true
	case n == f.width:
		line := f.line.String() + " " + s
		return f.c.escapeStartOfLine(line, f.first, true) == line
	}
	return false
}

// Writes the current line, without the final newline.
func (f *lineFiller) flush() {
	text := f.c.escapeStartOfLine(f.line.String(), f.first, true)
	if canStartHTMLBlock(text, f.first) {
		if f.first {
			text = "&NewLine;" + text
		} else {
			text = "    " + text
		}
	}
	if !f.first {
		f.c.startLine()
	}
	f.c.write(text)
}

func (f *lineFiller) breakLine() {
	f.flush()
	f.c.finishLine()
	f.line.Reset()
	f.lineWidth = 0
	f.first = false
}
