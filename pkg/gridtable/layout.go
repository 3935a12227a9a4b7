package gridtable

import (
	"sort"
	"strings"

	"src.mdgrid.dev/pkg/wcwidth"
)

// Options controls the layout of grid tables.
type Options struct {
	// Target width of the table, including the borders.
	Width int
	// Minimum width of the content of a column when wrapping text.
	MinCellWidth int
	// The character at both ends of interior grid lines, '|' or '+'.
	HLineEnds byte
}

// DefaultOptions returns the default Options.
func DefaultOptions() Options {
	return Options{Width: 120, MinCellWidth: 12, HLineEnds: '|'}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.MinCellWidth <= 0 {
		o.MinCellWidth = d.MinCellWidth
	}
	if o.HLineEnds != '|' && o.HLineEnds != '+' {
		o.HLineEnds = d.HLineEnds
	}
	return o
}

// CellRenderer renders the content of a cell as Markdown, wrapping text to
// the given width where possible.
type CellRenderer func(c *Cell, width int) string

// Render lays out a table and draws it as a grid table.
func Render(t *Table, opts Options, render CellRenderer) string {
	return NewLayout(t, opts, render).String()
}

// A cell in the layout grid. Cells that occupy more than one slot of the grid
// own the other slots through placeholders.
type lcell struct {
	// The cell of the table. Nil for padding cells and placeholders.
	cell *Cell
	// Id of the owning cell; an owner has its own id.
	owner    int
	row, col int
	rowSpan  int
	colSpan  int

	lines  []string
	width  int
	height int

	// State when drawing.
	skip    int
	skipped int
	next    int
}

func (c *lcell) nextLine() string {
	if c.skipped < c.skip {
		c.skipped++
		return ""
	}
	if c.next < len(c.lines) {
		c.next++
		return c.lines[c.next-1]
	}
	return ""
}

// Layout is the computed geometry of a grid table.
type Layout struct {
	opts   Options
	header int
	footer int

	cells []*lcell
	// Ids of the cells occupying each slot, indexed by row and column.
	grid [][]int

	// Column widths after the first rendering pass.
	FirstPass []int
	// Final column widths, excluding padding.
	Widths []int
	// Row heights in lines.
	Heights []int
}

// NewLayout computes the layout of a table.
func NewLayout(t *Table, opts Options, render CellRenderer) *Layout {
	opts = opts.withDefaults()
	rows, header, footer := t.Rows()
	l := &Layout{opts: opts, header: header, footer: footer}
	l.materialize(rows)
	k := l.NumCols()
	if k == 0 {
		return l
	}

	nominal := distribute(max(opts.Width-(3*k+1), 0), k)
	for i := range nominal {
		nominal[i] = max(nominal[i], opts.MinCellWidth)
	}
	l.renderCells(nominal, render)
	l.Widths = make([]int, k)
	l.widen()
	l.FirstPass = append([]int(nil), l.Widths...)
	l.renderCells(l.Widths, render)
	l.widen()
	l.computeHeights()
	return l
}

// NumCols returns the number of columns.
func (l *Layout) NumCols() int {
	if len(l.grid) == 0 {
		return 0
	}
	return len(l.grid[0])
}

// Places the cells of each row in the grid, creating placeholders for spans
// and padding cells for slots no cell covers.
func (l *Layout) materialize(rows []*Row) {
	n := len(rows)
	occupied := make([]map[int]int, n)
	for i := range occupied {
		occupied[i] = map[int]int{}
	}
	k := 0
	for r, row := range rows {
		x := 0
		for _, cell := range row.Cells() {
			for _, ok := occupied[r][x]; ok; _, ok = occupied[r][x] {
				x++
			}
			rowSpan := min(max(cell.RowSpan, 1), n-r)
			colSpan := max(cell.ColSpan, 1)
			id := len(l.cells)
			l.cells = append(l.cells, &lcell{cell: cell, owner: id,
				row: r, col: x, rowSpan: rowSpan, colSpan: colSpan})
			for i := r; i < r+rowSpan; i++ {
				for j := x; j < x+colSpan; j++ {
					slot := id
					if i != r || j != x {
						slot = len(l.cells)
						l.cells = append(l.cells, &lcell{owner: id, row: i, col: j,
							rowSpan: 1, colSpan: 1})
					}
					occupied[i][j] = slot
				}
			}
			x += colSpan
			k = max(k, x)
		}
		for x := range occupied[r] {
			k = max(k, x+1)
		}
	}
	occupied = l.dropCoveredRows(occupied, k)

	l.grid = make([][]int, len(occupied))
	for r := range l.grid {
		l.grid[r] = make([]int, k)
		for x := 0; x < k; x++ {
			id, ok := occupied[r][x]
			if !ok {
				id = len(l.cells)
				l.cells = append(l.cells, &lcell{owner: id, row: r, col: x,
					rowSpan: 1, colSpan: 1})
			}
			l.grid[r][x] = id
		}
	}
}

// Drops rows in which no cell starts. No grid line can be drawn above such a
// row, so it would merge into the row above when parsed back. The row spans
// covering a dropped row shrink by one, and the sections shrink with it.
func (l *Layout) dropCoveredRows(occupied []map[int]int, k int) []map[int]int {
	n := len(occupied)
	starts := make([]bool, n)
	for r, slots := range occupied {
		// Empty slots get padding cells, which start in this row.
		starts[r] = len(slots) < k
		for _, id := range slots {
			if l.cells[id].owner == id {
				starts[r] = true
			}
		}
	}
	newRow := make([]int, n+1)
	var kept []map[int]int
	header, footer := 0, 0
	for r, slots := range occupied {
		newRow[r] = len(kept)
		if !starts[r] {
			continue
		}
		kept = append(kept, slots)
		if r < l.header {
			header++
		} else if r >= n-l.footer {
			footer++
		}
	}
	if len(kept) == n {
		return occupied
	}
	newRow[n] = len(kept)
	for id, c := range l.cells {
		if c.owner == id {
			c.rowSpan = newRow[c.row+c.rowSpan] - newRow[c.row]
		}
		c.row = newRow[c.row]
	}
	l.header, l.footer = header, footer
	return kept
}

// Returns the owners, which are the cells that have content or are padding.
func (l *Layout) owners() []*lcell {
	var owners []*lcell
	for id, c := range l.cells {
		if c.owner == id {
			owners = append(owners, c)
		}
	}
	return owners
}

func (l *Layout) renderCells(widths []int, render CellRenderer) {
	for _, c := range l.owners() {
		if c.cell == nil {
			continue
		}
		text := strings.TrimRight(render(c.cell, spanWidth(widths, c.col, c.colSpan)), "\n")
		if text == "" {
			c.lines = nil
		} else {
			c.lines = strings.Split(escapeDividers(text), "\n")
		}
		c.width = wcwidth.MaxOfLines(c.lines)
		c.height = len(c.lines)
	}
}

// Widens the columns so that every cell fits. Single-column cells are
// considered first; cells spanning more columns then distribute what they
// still lack over their columns.
func (l *Layout) widen() {
	owners := l.owners()
	sort.SliceStable(owners, func(i, j int) bool {
		return owners[i].colSpan < owners[j].colSpan
	})
	for _, c := range owners {
		if c.colSpan == 1 {
			l.Widths[c.col] = max(l.Widths[c.col], c.width, minWidth(c.cell))
			continue
		}
		deficit := c.width - spanWidth(l.Widths, c.col, c.colSpan)
		if deficit > 0 {
			for i, d := range distribute(deficit, c.colSpan) {
				l.Widths[c.col+i] += d
			}
		}
	}
}

// Returns the smallest content width of a single-column cell. A grid segment
// is 2 wider than the column; when markers take both of its ends and the
// middle, a width of 2 leaves room for one rule character, which tells a
// heavy line from a light one.
func minWidth(c *Cell) int {
	if c == nil || c.VAlign == VAlignUnset {
		return 1
	}
	if c.Align == AlignCenter || c.Align == AlignJustify {
		return 2
	}
	return 1
}

func (l *Layout) computeHeights() {
	l.Heights = make([]int, len(l.grid))
	for _, c := range l.owners() {
		if c.rowSpan == 1 {
			l.Heights[c.row] = max(l.Heights[c.row], c.height)
			continue
		}
		for i, h := range distribute(max(c.height-(c.rowSpan-1), 0), c.rowSpan) {
			l.Heights[c.row+i] = max(l.Heights[c.row+i], h)
		}
	}
	for i := range l.Heights {
		l.Heights[i] = max(l.Heights[i], 1)
	}
	// Vertical alignment.
	for _, c := range l.owners() {
		if c.cell == nil {
			continue
		}
		avail := c.rowSpan - 1
		for i := c.row; i < c.row+c.rowSpan; i++ {
			avail += l.Heights[i]
		}
		switch c.cell.VAlign {
		case VAlignMiddle:
			c.skip = (avail - c.height) / 2
		case VAlignBottom:
			c.skip = avail - c.height
		}
		c.skip = max(c.skip, 0)
	}
}

// Distributes n evenly over k slots, giving the remainder to the last slot.
func distribute(n, k int) []int {
	if k <= 0 {
		return nil
	}
	shares := make([]int, k)
	for i := range shares {
		shares[i] = n / k
	}
	shares[k-1] += n % k
	return shares
}

// Returns the content width of span columns starting at col, including the
// space taken by the dividers between them.
func spanWidth(widths []int, col, span int) int {
	w := 3 * (span - 1)
	for _, cw := range widths[col : col+span] {
		w += cw
	}
	return w
}
