// Package gridtable implements grid tables for goldmark.
//
// A grid table is drawn with '+', '-', '=' and '|', and its cells can span
// rows and columns and hold any Markdown, including other grid tables. The
// package parses grid tables into Table nodes, renders them as HTML, and lays
// them out again as text with Render.
package gridtable

import (
	"fmt"
	"strconv"

	"github.com/yuin/goldmark/ast"
)

// Align is the horizontal alignment of a cell.
type Align int

// Possible values of Align.
const (
	AlignUnset Align = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignJustify
)

var alignNames = [...]string{"", "left", "center", "right", "justify"}

func (a Align) String() string {
	if a < 0 || int(a) >= len(alignNames) {
		return fmt.Sprintf("Align(%d)", int(a))
	}
	return alignNames[a]
}

// VAlign is the vertical alignment of a cell.
type VAlign int

// Possible values of VAlign.
const (
	VAlignUnset VAlign = iota
	VAlignTop
	VAlignMiddle
	VAlignBottom
)

var valignNames = [...]string{"", "top", "middle", "bottom"}

func (v VAlign) String() string {
	if v < 0 || int(v) >= len(valignNames) {
		return fmt.Sprintf("VAlign(%d)", int(v))
	}
	return valignNames[v]
}

// Node kinds of grid tables.
var (
	KindTable  = ast.NewNodeKind("GridTable")
	KindHeader = ast.NewNodeKind("GridTableHeader")
	KindBody   = ast.NewNodeKind("GridTableBody")
	KindFooter = ast.NewNodeKind("GridTableFooter")
	KindRow    = ast.NewNodeKind("GridTableRow")
	KindCell   = ast.NewNodeKind("GridTableCell")
)

// Table is the root of a grid table. Its children are Section nodes, or Row
// nodes when the table was built without sections; such rows count as body
// rows.
type Table struct {
	ast.BaseBlock
	// Source lines still to be consumed by the block parser.
	pending int
}

// NewTable returns a new empty Table.
func NewTable() *Table { return &Table{} }

// Kind implements ast.Node.
func (t *Table) Kind() ast.NodeKind { return KindTable }

// IsRaw implements ast.Node. The lines of a Table are its source; they are not
// parsed as inline content.
func (t *Table) IsRaw() bool { return true }

// Dump implements ast.Node.
func (t *Table) Dump(source []byte, level int) {
	ast.DumpHelper(t, source, level, nil, nil)
}

// Rows returns all rows of the table in order, along with the number of
// header rows at the start and footer rows at the end.
func (t *Table) Rows() (rows []*Row, header, footer int) {
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *Section:
			n := 0
			for r := c.FirstChild(); r != nil; r = r.NextSibling() {
				if row, ok := r.(*Row); ok {
					rows = append(rows, row)
					n++
				}
			}
			switch c.Part {
			case Header:
				header += n
			case Footer:
				footer += n
			}
		case *Row:
			rows = append(rows, c)
		}
	}
	return rows, header, footer
}

// Part identifies a section of a table.
type Part int

// Possible values of Part.
const (
	Body Part = iota
	Header
	Footer
)

// Section groups the header, body or footer rows of a table.
type Section struct {
	ast.BaseBlock
	Part Part
}

// NewSection returns a new empty Section.
func NewSection(p Part) *Section { return &Section{Part: p} }

// Kind implements ast.Node.
func (s *Section) Kind() ast.NodeKind {
	switch s.Part {
	case Header:
		return KindHeader
	case Footer:
		return KindFooter
	default:
		return KindBody
	}
}

// Dump implements ast.Node.
func (s *Section) Dump(source []byte, level int) {
	ast.DumpHelper(s, source, level, nil, nil)
}

// Row is one row of a table. It only contains the cells that start in it;
// slots covered by row spans from above are not represented.
type Row struct {
	ast.BaseBlock
}

// NewRow returns a new empty Row.
func NewRow() *Row { return &Row{} }

// Kind implements ast.Node.
func (r *Row) Kind() ast.NodeKind { return KindRow }

// Dump implements ast.Node.
func (r *Row) Dump(source []byte, level int) {
	ast.DumpHelper(r, source, level, nil, nil)
}

// Cells returns the cells of the row.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for c := r.FirstChild(); c != nil; c = c.NextSibling() {
		if cell, ok := c.(*Cell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

// Cell is a table cell. Its content is a separate document parsed from Source;
// the document is not attached to the cell as children, since the positions
// in it refer to Source rather than the source of the outer document.
type Cell struct {
	ast.BaseBlock
	RowSpan int
	ColSpan int
	Align   Align
	VAlign  VAlign
	Doc     *ast.Document
	Source  []byte
}

// NewCell returns a new Cell with spans of 1 and no content.
func NewCell() *Cell {
	return &Cell{RowSpan: 1, ColSpan: 1, Doc: ast.NewDocument()}
}

// Kind implements ast.Node.
func (c *Cell) Kind() ast.NodeKind { return KindCell }

// Dump implements ast.Node.
func (c *Cell) Dump(source []byte, level int) {
	kv := map[string]string{
		"RowSpan": strconv.Itoa(c.RowSpan),
		"ColSpan": strconv.Itoa(c.ColSpan),
	}
	if c.Align != AlignUnset {
		kv["Align"] = c.Align.String()
	}
	if c.VAlign != VAlignUnset {
		kv["VAlign"] = c.VAlign.String()
	}
	ast.DumpHelper(c, source, level, kv, func(level int) {
		if c.Doc != nil {
			c.Doc.Dump(c.Source, level)
		}
	})
}
