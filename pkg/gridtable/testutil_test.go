package gridtable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"src.mdgrid.dev/pkg/testutil"
	"src.mdgrid.dev/pkg/wcwidth"
)

var (
	dedent = testutil.Dedent
	md     = goldmark.New(goldmark.WithExtensions(New()))
)

func parseDoc(src string) (ast.Node, parser.Context) {
	pc := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader([]byte(src)), parser.WithContext(pc))
	return doc, pc
}

func tables(doc ast.Node) []*Table {
	var ts []*Table
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*Table); ok && entering {
			ts = append(ts, t)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return ts
}

func mustParseTable(t *testing.T, src string) *Table {
	t.Helper()
	doc, pc := parseDoc(src)
	ts := tables(doc)
	if len(ts) != 1 {
		t.Fatalf("got %d tables, want 1; rejections: %v", len(ts), Rejections(pc))
	}
	return ts[0]
}

// Renders a cell as its source.
func sourceCell(c *Cell, width int) string {
	return string(c.Source)
}

// Renders a cell by wrapping the words of its source.
func wrapCell(c *Cell, width int) string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(string(c.Source)) {
		switch {
		case line == "":
			line = word
		case wcwidth.Of(line)+1+wcwidth.Of(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Describes the structure of a table, one row per line.
func describe(t *Table) string {
	rows, header, footer := t.Rows()
	var sb strings.Builder
	for i, row := range rows {
		switch {
		case i < header:
			sb.WriteString("header:")
		case i >= len(rows)-footer:
			sb.WriteString("footer:")
		default:
			sb.WriteString("body:")
		}
		for _, c := range row.Cells() {
			sb.WriteString(" [" + strings.ReplaceAll(string(c.Source), "\n", `\n`))
			if c.RowSpan != 1 {
				fmt.Fprintf(&sb, " rs=%d", c.RowSpan)
			}
			if c.ColSpan != 1 {
				fmt.Fprintf(&sb, " cs=%d", c.ColSpan)
			}
			if c.Align != AlignUnset {
				fmt.Fprintf(&sb, " %s", c.Align)
			}
			if c.VAlign != VAlignUnset {
				fmt.Fprintf(&sb, " %s", c.VAlign)
			}
			sb.WriteString("]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Builds a table programmatically. Each row is a list of cell sources.
func tableOf(header, footer int, rows ...[]string) *Table {
	t := NewTable()
	n := len(rows)
	add := func(part Part, from, to int) {
		if from >= to {
			return
		}
		s := NewSection(part)
		for _, cells := range rows[from:to] {
			row := NewRow()
			for _, src := range cells {
				c := NewCell()
				c.Source = []byte(src)
				row.AppendChild(row, c)
			}
			s.AppendChild(s, row)
		}
		t.AppendChild(t, s)
	}
	add(Header, 0, header)
	add(Body, header, n-footer)
	add(Footer, n-footer, n)
	return t
}
