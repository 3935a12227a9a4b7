package md

import (
	"fmt"
	"strings"
)

// TraceCodec is a Codec that records all the Op's passed to its Do method.
type TraceCodec struct{ strings.Builder }

func (c *TraceCodec) Do(op Op) {
	if c.Len() > 0 {
		c.WriteByte('\n')
	}
	c.WriteString(op.Type.String())
	if op.Number != 0 {
		fmt.Fprintf(c, " Number=%d", op.Number)
	}
	if op.Info != "" {
		fmt.Fprintf(c, " Info=%q", op.Info)
	}
	if op.Tight {
		c.WriteString(" Tight")
	}
	if op.Pipe {
		c.WriteString(" Pipe")
	}
	for _, line := range op.Lines {
		c.WriteString("\n  ")
		c.WriteString(line)
	}
	c.writeInlineOps(op.Content, "  ")
	if op.Table != nil {
		rows, header, footer := op.Table.Rows()
		for i, row := range rows {
			part := "Body"
			if i < header {
				part = "Header"
			} else if i >= len(rows)-footer {
				part = "Footer"
			}
			fmt.Fprintf(c, "\n  Row %s", part)
			for _, cell := range row.Cells() {
				c.WriteString("\n    Cell")
				if cell.RowSpan > 1 {
					fmt.Fprintf(c, " RowSpan=%d", cell.RowSpan)
				}
				if cell.ColSpan > 1 {
					fmt.Fprintf(c, " ColSpan=%d", cell.ColSpan)
				}
				if cell.Align != 0 {
					fmt.Fprintf(c, " Align=%s", cell.Align)
				}
				if cell.VAlign != 0 {
					fmt.Fprintf(c, " VAlign=%s", cell.VAlign)
				}
				var inner TraceCodec
				RenderNode(cell.Doc, cell.Source, &inner)
				if inner.Len() > 0 {
					c.WriteString("\n      ")
					c.WriteString(strings.ReplaceAll(inner.String(), "\n", "\n      "))
				}
			}
		}
	}
}

func (c *TraceCodec) writeInlineOps(ops []InlineOp, indent string) {
	for _, inlineOp := range ops {
		c.WriteString("\n" + indent)
		c.WriteString(inlineOp.Type.String())
		if inlineOp.Text != "" {
			fmt.Fprintf(c, " Text=%q", inlineOp.Text)
		}
		if inlineOp.Dest != "" {
			fmt.Fprintf(c, " Dest=%q", inlineOp.Dest)
		}
		if inlineOp.Alt != "" {
			fmt.Fprintf(c, " Alt=%q", inlineOp.Alt)
		}
	}
}
