package gridtable

import (
	"sort"

	"github.com/yuin/goldmark/ast"
)

// Builds the table tree from a resolved table. The content of each cell is
// parsed with parse.
func build(rt *rtable, parse func(src []byte) *ast.Document) *Table {
	t := NewTable()
	n := len(rt.rows)
	addSection := func(part Part, from, to int) {
		if from >= to {
			return
		}
		s := NewSection(part)
		for _, rrow := range rt.rows[from:to] {
			row := NewRow()
			for _, rc := range rrow {
				row.AppendChild(row, buildCell(rc, rt.cols, parse))
			}
			s.AppendChild(s, row)
		}
		t.AppendChild(t, s)
	}
	addSection(Header, 0, rt.header)
	addSection(Body, rt.header, n-rt.footer)
	addSection(Footer, n-rt.footer, n)
	return t
}

func buildCell(rc *rcell, cols []int, parse func([]byte) *ast.Document) *Cell {
	c := NewCell()
	c.RowSpan = rc.endBand - rc.startBand + 1
	c.ColSpan = sort.SearchInts(cols, rc.right) - sort.SearchInts(cols, rc.left)
	c.Align = rc.align
	c.VAlign = rc.valign
	c.Source = []byte(reflow(rc.lines))
	if parse != nil {
		c.Doc = parse(c.Source)
	}
	return c
}
