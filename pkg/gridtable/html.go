package gridtable

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// HTMLRenderer renders grid tables as HTML tables.
type HTMLRenderer struct {
	r renderer.Renderer
}

// NewHTMLRenderer returns a new HTMLRenderer. The content of cells is
// rendered with r, which is normally the renderer that the returned
// HTMLRenderer is added to.
func NewHTMLRenderer(r renderer.Renderer) renderer.NodeRenderer {
	return &HTMLRenderer{r}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (h *HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindTable, h.renderTable)
	reg.Register(KindHeader, h.renderSection)
	reg.Register(KindBody, h.renderSection)
	reg.Register(KindFooter, h.renderSection)
	reg.Register(KindRow, h.renderRow)
	reg.Register(KindCell, h.renderCell)
}

func (h *HTMLRenderer) renderTable(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.WriteString("<table>\n")
	} else {
		w.WriteString("</table>\n")
	}
	return ast.WalkContinue, nil
}

var sectionTags = map[Part]string{Header: "thead", Body: "tbody", Footer: "tfoot"}

func (h *HTMLRenderer) renderSection(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	tag := sectionTags[n.(*Section).Part]
	if entering {
		fmt.Fprintf(w, "<%s>\n", tag)
	} else {
		fmt.Fprintf(w, "</%s>\n", tag)
	}
	return ast.WalkContinue, nil
}

func (h *HTMLRenderer) renderRow(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		w.WriteString("<tr>\n")
	} else {
		w.WriteString("</tr>\n")
	}
	return ast.WalkContinue, nil
}

func (h *HTMLRenderer) renderCell(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	c := n.(*Cell)
	tag := "td"
	if s, ok := c.Parent().Parent().(*Section); ok && s.Part == Header {
		tag = "th"
	}
	fmt.Fprintf(w, "<%s", tag)
	if c.ColSpan > 1 {
		fmt.Fprintf(w, ` colspan="%d"`, c.ColSpan)
	}
	if c.RowSpan > 1 {
		fmt.Fprintf(w, ` rowspan="%d"`, c.RowSpan)
	}
	if c.Align != AlignUnset {
		fmt.Fprintf(w, ` align="%s"`, c.Align)
	}
	if c.VAlign != VAlignUnset {
		fmt.Fprintf(w, ` valign="%s"`, c.VAlign)
	}
	w.WriteString(">")
	if c.Doc != nil && c.Doc.HasChildren() {
		w.WriteString("\n")
		if err := h.r.Render(w, c.Source, c.Doc); err != nil {
			return ast.WalkStop, err
		}
	}
	fmt.Fprintf(w, "</%s>\n", tag)
	return ast.WalkSkipChildren, nil
}
