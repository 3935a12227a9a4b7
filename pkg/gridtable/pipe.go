package gridtable

import (
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
)

var pipeAligns = map[extast.Alignment]Align{
	extast.AlignLeft:   AlignLeft,
	extast.AlignRight:  AlignRight,
	extast.AlignCenter: AlignCenter,
}

// FromPipeTable converts a GFM pipe table to a grid table. The header row of
// the pipe table becomes the header section. The content of each cell is
// parsed again with p, so the result shares no nodes with t.
func FromPipeTable(t *extast.Table, source []byte, p parser.Parser) *Table {
	b := &tableParser{p}
	table := NewTable()
	var body *Section
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var s *Section
		if _, ok := r.(*extast.TableHeader); ok {
			s = NewSection(Header)
			table.AppendChild(table, s)
		} else {
			if body == nil {
				body = NewSection(Body)
				table.AppendChild(table, body)
			}
			s = body
		}
		row := NewRow()
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			tc, ok := c.(*extast.TableCell)
			if !ok {
				continue
			}
			cell := NewCell()
			cell.Align = pipeAligns[tc.Alignment]
			var src []byte
			lines := tc.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				src = append(src, seg.Value(source)...)
			}
			cell.Source = unescapePipes(src)
			cell.Doc = b.parseCell(cell.Source)
			row.AppendChild(row, cell)
		}
		s.AppendChild(s, row)
	}
	return table
}

// Removes the backslashes that escape pipes in the cells of a pipe table. A
// backslash that is itself escaped is kept.
func unescapePipes(src []byte) []byte {
	var out []byte
	backslashes := 0
	for _, b := range src {
		switch b {
		case '\\':
			backslashes++
		case '|':
			if backslashes%2 == 1 {
				out = out[:len(out)-1]
			}
			backslashes = 0
		default:
			backslashes = 0
		}
		out = append(out, b)
	}
	return out
}
