package md

import (
	"strconv"
	"strings"

	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/wcwidth"
)

// FmtCodec is a codec that formats Markdown in a specific style.
//
// The formatted text uses the following style:
//
//   - Blocks are separated by a blank line, except inside tight lists.
//
//   - Thematic breaks use "***" where possible, falling back to "---" if using
//     the former is problematic.
//
//   - Code blocks are always fenced, never indented.
//
//   - Code fences use backquotes (like "```") wherever possible, falling back
//     to "~~~" if using the former is problematic.
//
//   - Continuation markers of container blocks are never omitted.
//
//   - Bullet lists use "-" as markers where possible, falling back to "*" if
//     using the former is problematic. Ordered lists use "X." where possible,
//     falling back to "X)".
//
//   - Bullet lists and ordered lists are indented 4 spaces where possible.
//
//   - Emphasis uses "*", strong emphasis uses "**" and strikethrough uses "~~".
//
//   - Hard line break always uses an explicit "\".
//
//   - Tables are grid tables laid out with gridtable.Render. GFM pipe tables
//     are converted to grid tables, except inside container blocks, where grid
//     tables are not recognized.
//
//   - Frontmatter is written verbatim.
type FmtCodec struct {
	// Width to reflow paragraphs to. Zero disables reflowing.
	Width int
	// Options for laying out tables. If Table.Width is zero, Width is used
	// when it is set.
	Table gridtable.Options

	sb strings.Builder

	unsupported *FmtUnsupported

	// Open container blocks, outermost first.
	containers stack[*fmtContainer]
	// Output length when the innermost container was opened. A container
	// that ends at the same length is empty and needs a blank line to survive.
	containerStart int

	// Punctuation of the list that ended with the previous Op, or 0. Two
	// adjacent lists of the same type must use different punctuation.
	poppedListPunct rune
	lastOpType      OpType
}

// FmtUnsupported contains information about use of unsupported features.
type FmtUnsupported struct {
	// Input contains emphasis or strong emphasis nested in another emphasis or
	// strong emphasis (not necessarily of the same type).
	NestedEmphasisOrStrongEmphasis bool
	// Input contains emphasis or strong emphasis that follows immediately after
	// another emphasis or strong emphasis (not necessarily of the same type).
	ConsecutiveEmphasisOrStrongEmphasis bool
	// Input contains a grid table inside a container block.
	TableInContainer bool
}

func (u *FmtUnsupported) merge(v *FmtUnsupported) {
	u.NestedEmphasisOrStrongEmphasis = u.NestedEmphasisOrStrongEmphasis || v.NestedEmphasisOrStrongEmphasis
	u.ConsecutiveEmphasisOrStrongEmphasis = u.ConsecutiveEmphasisOrStrongEmphasis || v.ConsecutiveEmphasisOrStrongEmphasis
	u.TableInContainer = u.TableInContainer || v.TableInContainer
}

func (c *FmtCodec) String() string { return c.sb.String() }

// Unsupported returns information about use of unsupported features that may
// make the output incorrect. It returns nil if there is no use of unsupported
// features.
func (c *FmtCodec) Unsupported() *FmtUnsupported { return c.unsupported }

func (c *FmtCodec) setUnsupported() *FmtUnsupported {
	if c.unsupported == nil {
		c.unsupported = &FmtUnsupported{}
	}
	return c.unsupported
}

func (c *FmtCodec) Do(op Op) {
	if c.sb.Len() > 0 && c.needsBlankLine(op.Type) {
		c.writeLine("")
	}
	var popped rune
	switch op.Type {
	case OpThematicBreak:
		c.thematicBreak()
	case OpHeading:
		c.startLine()
		c.write(strings.Repeat("#", op.Number) + " ")
		c.writeHeadingSegments(c.buildSegments(op.Content))
		c.finishLine()
	case OpParagraph:
		c.startLine()
		if segs := c.buildSegments(op.Content); c.Width > 0 {
			c.writeParagraphReflow(segs, c.Width)
		} else {
			c.writeParagraphSegments(segs)
		}
		c.finishLine()
	case OpCodeBlock:
		start, end := codeFences(op.Info, op.Lines)
		c.writeLines(start, op.Lines, end)
	case OpHTMLBlock:
		c.htmlBlock(op.Lines)
	case OpFrontmatter:
		c.writeLines("---", op.Lines, "---")
	case OpTable:
		if len(c.containers) > 0 {
			if op.Pipe {
				c.writePipeTable(op.Table)
				break
			}
			c.setUnsupported().TableInContainer = true
		}
		c.writeGridTable(op.Table)
	case OpBlockquoteStart:
		c.containerStart = c.sb.Len()
		c.containers.push(&fmtContainer{typ: fmtBlockquote, marker: "> "})
	case OpBlockquoteEnd:
		if c.containerStart == c.sb.Len() {
			c.writeLine("")
		}
		c.containers.pop()
	case OpBulletListStart:
		c.containers.push(&fmtContainer{typ: fmtBulletItem,
			punct: pickPunct('-', '*', c.poppedListPunct), tight: op.Tight})
	case OpOrderedListStart:
		c.containers.push(&fmtContainer{typ: fmtOrderedItem,
			punct: pickPunct('.', ')', c.poppedListPunct), number: op.Number, tight: op.Tight})
	case OpBulletListEnd, OpOrderedListEnd:
		popped = c.containers.pop().punct
	case OpListItemStart:
		c.containerStart = c.sb.Len()
		ct := c.containers.peek()
		ct.marker = ct.startMarker()
	case OpListItemEnd:
		c.endListItem()
	}
	c.poppedListPunct = popped
	c.lastOpType = op.Type
}

// Reports whether a blank line is needed before the output of an Op of type
// t.
func (c *FmtCodec) needsBlankLine(t OpType) bool {
	last := c.lastOpType
	switch t {
	case OpThematicBreak, OpHeading, OpCodeBlock, OpHTMLBlock, OpParagraph,
		OpTable, OpFrontmatter,
		OpBlockquoteStart, OpBulletListStart, OpOrderedListStart:
		if last == OpBlockquoteStart || last == OpListItemStart {
			// First block of a container.
			return false
		}
		return len(c.containers) == 0 || !c.containers.peek().tight
	case OpListItemStart:
		if last == OpBulletListStart || last == OpOrderedListStart {
			// First item of a list.
			return false
		}
		return !c.containers.peek().tight
	}
	return false
}

func (c *FmtCodec) thematicBreak() {
	if len(c.containers) > 0 && strings.TrimSpace(c.containers.peek().marker) == "*" {
		// "***" would absorb a pending "*" marker.
		c.writeLine("---")
		return
	}
	c.writeLine("***")
}

func (c *FmtCodec) htmlBlock(lines []string) {
	if c.lastOpType == OpListItemStart && strings.HasPrefix(lines[0], " ") {
		// Leading spaces on the marker line would change the item's content
		// indentation. Start the block on the next line, after a marker with
		// exactly one trailing space.
		ct := c.containers.peek()
		ct.marker = strings.TrimRight(ct.marker, " ") + " "
		c.writeLine("")
	}
	for _, line := range lines {
		c.writeLine(line)
	}
}

// Largest list item number CommonMark allows (9 digits).
const maxListNumber = 999999999

func (c *FmtCodec) endListItem() {
	if c.containerStart == c.sb.Len() {
		// An empty item is written as a line of markers. Three identical bullet
		// markers in a row would form a thematic break, and only "-" is ever
		// used three times in a row, so switch the innermost of those.
		for i := 2; i < len(c.containers); i++ {
			if allDashBullets(c.containers[i-2 : i+1]) {
				ct := c.containers[i]
				ct.punct = pickPunct('-', '*', ct.punct)
				ct.marker = ct.startMarker()
			}
		}
		c.writeLine("")
	}
	ct := c.containers.peek()
	ct.marker = ""
	if ct.number < maxListNumber {
		ct.number++
	}
}

func allDashBullets(containers []*fmtContainer) bool {
	for _, ct := range containers {
		if ct.marker != "-   " {
			return false
		}
	}
	return true
}

func (c *FmtCodec) write(s string) { c.sb.WriteString(s) }

// Writes the markers of all open containers.
func (c *FmtCodec) startLine() {
	for _, ct := range c.containers {
		c.write(ct.useMarker())
	}
}

func (c *FmtCodec) finishLine() { c.write("\n") }

// Writes a whole line. A blank line still carries the container markers,
// without their trailing spaces.
func (c *FmtCodec) writeLine(s string) {
	if s == "" {
		var markers strings.Builder
		for _, ct := range c.containers {
			markers.WriteString(ct.useMarker())
		}
		c.write(strings.TrimRight(markers.String(), " ") + "\n")
		return
	}
	c.startLine()
	c.write(s + "\n")
}

func (c *FmtCodec) writeLines(first string, lines []string, last string) {
	c.writeLine(first)
	for _, line := range lines {
		c.writeLine(line)
	}
	c.writeLine(last)
}

type fmtContainer struct {
	typ    fmtContainerType
	punct  rune   // punctuation of list markers
	number int    // number of the next ordered list item
	marker string // marker to write on the next line
	tight  bool
}

type fmtContainerType uint

const (
	fmtBlockquote fmtContainerType = iota
	fmtBulletItem
	fmtOrderedItem
)

// Returns the marker for the first line of a list item, padded to 4 columns
// where possible.
func (ct *fmtContainer) startMarker() string {
	if ct.typ == fmtBulletItem {
		return string(ct.punct) + "   "
	}
	m := strconv.Itoa(ct.number) + string(ct.punct) + " "
	return m + strings.Repeat(" ", max(0, 4-len(m)))
}

// Returns the marker for the current line. After the first line of a list
// item, the marker becomes indentation of the same width.
func (ct *fmtContainer) useMarker() string {
	m := ct.marker
	if ct.typ != fmtBlockquote {
		ct.marker = strings.Repeat(" ", wcwidth.Of(m))
	}
	return m
}

func pickPunct(def, alt, banned rune) rune {
	if def != banned {
		return def
	}
	return alt
}
