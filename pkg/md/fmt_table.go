package md

import (
	"strings"

	"src.mdgrid.dev/pkg/gridtable"
)

func (c *FmtCodec) writeGridTable(t *gridtable.Table) {
	opts := c.Table
	if opts.Width <= 0 && c.Width > 0 {
		opts.Width = c.Width
	}
	for _, line := range strings.Split(gridtable.Render(t, opts, c.renderCell), "\n") {
		c.writeLine(line)
	}
}

// Formats the content of a grid table cell with a nested FmtCodec, reflowing
// paragraphs to the width of the cell.
func (c *FmtCodec) renderCell(cell *gridtable.Cell, width int) string {
	inner := &FmtCodec{Width: width, Table: c.Table}
	inner.Table.Width = width
	RenderNode(cell.Doc, cell.Source, inner)
	if inner.unsupported != nil {
		c.setUnsupported().merge(inner.unsupported)
	}
	return inner.String()
}

var pipeDelims = map[gridtable.Align]string{
	gridtable.AlignUnset:  "---",
	gridtable.AlignLeft:   ":--",
	gridtable.AlignRight:  "--:",
	gridtable.AlignCenter: ":-:",
}

// Writes a table as a GFM pipe table. Only tables with inline content and a
// single header row, like the ones converted from pipe tables, can be written
// this way.
func (c *FmtCodec) writePipeTable(t *gridtable.Table) {
	rows, header, _ := t.Rows()
	ncols := 0
	for _, row := range rows {
		ncols = max(ncols, len(row.Cells()))
	}
	for i, row := range rows {
		texts := make([]string, ncols)
		for j, cell := range row.Cells() {
			texts[j] = c.pipeCell(cell)
		}
		c.writeLine(strings.TrimRight("| "+strings.Join(texts, " | "), " ") + " |")
		if i == header-1 {
			delims := make([]string, ncols)
			for j := range delims {
				delims[j] = pipeDelims[gridtable.AlignUnset]
				if cells := row.Cells(); j < len(cells) {
					if d, ok := pipeDelims[cells[j].Align]; ok {
						delims[j] = d
					}
				}
			}
			c.writeLine("| " + strings.Join(delims, " | ") + " |")
		}
	}
}

func (c *FmtCodec) pipeCell(cell *gridtable.Cell) string {
	inner := &FmtCodec{}
	RenderNode(cell.Doc, cell.Source, inner)
	if inner.unsupported != nil {
		c.setUnsupported().merge(inner.unsupported)
	}
	return escapePipes(strings.TrimRight(inner.String(), "\n"))
}

// Escapes the pipes that are not already escaped. Escaped pipes are also
// recognized inside code spans in a pipe table.
func escapePipes(s string) string {
	var sb strings.Builder
	backslashes := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			backslashes++
		case '|':
			if backslashes%2 == 0 {
				sb.WriteByte('\\')
			}
			backslashes = 0
		default:
			backslashes = 0
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
