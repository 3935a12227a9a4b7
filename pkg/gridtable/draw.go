package gridtable

import (
	"bytes"
	"strings"

	"src.mdgrid.dev/pkg/wcwidth"
)

type drawSegment struct {
	grid bool
	text string
}

// String draws the table. The result has no trailing newline.
func (l *Layout) String() string {
	n, k := len(l.grid), l.NumCols()
	if n == 0 || k == 0 {
		return ""
	}
	for _, c := range l.cells {
		c.skipped, c.next = 0, 0
	}
	var lines []string
	for r := 0; r <= n; r++ {
		lines = append(lines, l.border(r))
		if r == n {
			break
		}
		for i := 0; i < l.Heights[r]; i++ {
			lines = append(lines, l.content(r))
		}
	}
	return strings.Join(lines, "\n")
}

// Reports whether the grid line above row b is drawn with '='.
func (l *Layout) heavy(b int) bool {
	n, h, f := len(l.grid), l.header, l.footer
	switch b {
	case 0:
		return h == 0 && f > 0
	case n:
		return (h > 0 && f > 0 && h+f == n) || (h == n && f == 0) || (f == n && h == 0)
	default:
		return b == h || b == n-f
	}
}

// Draws the grid line above row b; b may be the number of rows for the
// bottom border.
func (l *Layout) border(b int) string {
	n, k := len(l.grid), l.NumCols()
	rule := byte('-')
	if l.heavy(b) {
		rule = '='
	}
	var segs []drawSegment
	if b == n {
		for _, w := range l.Widths {
			segs = append(segs, drawSegment{true, strings.Repeat(string(rule), w+2)})
		}
	} else {
		for x := 0; x < k; {
			o := l.cells[l.cells[l.grid[b][x]].owner]
			span := o.colSpan - (x - o.col)
			w := spanWidth(l.Widths, x, span)
			if o.row < b {
				// A row span crossing the grid line continues its content.
				segs = append(segs, drawSegment{false, " " + wcwidth.Pad(o.nextLine(), w) + " "})
			} else {
				segs = append(segs, drawSegment{true, gridSegment(rule, w+2, o.cell)})
			}
			x += span
		}
	}

	var sb strings.Builder
	end := func(seg drawSegment) byte {
		switch {
		case b == 0 || b == n:
			return '+'
		case seg.grid:
			return l.opts.HLineEnds
		default:
			return '|'
		}
	}
	sb.WriteByte(end(segs[0]))
	for i, seg := range segs {
		if i > 0 {
			if seg.grid || segs[i-1].grid {
				sb.WriteByte('+')
			} else {
				sb.WriteByte('|')
			}
		}
		sb.WriteString(seg.text)
	}
	sb.WriteByte(end(segs[len(segs)-1]))
	return sb.String()
}

// Draws one content line of row r.
func (l *Layout) content(r int) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for x := 0; x < l.NumCols(); {
		o := l.cells[l.cells[l.grid[r][x]].owner]
		span := o.colSpan - (x - o.col)
		sb.WriteByte(' ')
		sb.WriteString(wcwidth.Pad(o.nextLine(), spanWidth(l.Widths, x, span)))
		sb.WriteString(" |")
		x += span
	}
	return sb.String()
}

// Returns a grid segment of length n (at least 3) carrying the alignment
// markers of c.
func gridSegment(rule byte, n int, c *Cell) string {
	b := bytes.Repeat([]byte{rule}, n)
	if c == nil {
		return string(b)
	}
	switch c.Align {
	case AlignLeft:
		b[0] = ':'
	case AlignRight:
		b[n-1] = ':'
	case AlignCenter:
		b[0], b[n-1] = ':', ':'
	case AlignJustify:
		b[0], b[n-1] = '>', '<'
	}
	switch c.VAlign {
	case VAlignTop:
		b[n/2] = '^'
	case VAlignMiddle:
		b[n/2] = 'x'
	case VAlignBottom:
		b[n/2] = 'v'
	}
	return string(b)
}
