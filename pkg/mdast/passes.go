package mdast

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"src.mdgrid.dev/pkg/gridtable"
)

// SanitizeHeadings moves images out of headings, each into its own paragraph
// following the heading. Headings left without content are removed.
func SanitizeHeadings(doc ast.Node, source []byte) {
	for _, h := range collect(doc, source, isKind(ast.KindHeading)) {
		heading := h.node
		parent := heading.Parent()
		after := heading
		for c := heading.FirstChild(); c != nil; {
			next := c.NextSibling()
			if img, ok := c.(*ast.Image); ok {
				heading.RemoveChild(heading, img)
				para := ast.NewParagraph()
				para.AppendChild(para, img)
				parent.InsertAfter(parent, after, para)
				after = para
			}
			c = next
		}
		if !heading.HasChildren() {
			parent.RemoveChild(parent, heading)
		}
	}
}

// SanitizeLinks rewrites links whose only content is a single emphasis,
// strong emphasis or strikethrough, so that the formatting wraps the link
// instead. Trailing whitespace of the link text is moved after the
// formatting.
func SanitizeLinks(doc ast.Node, source []byte) {
	for _, l := range collect(doc, source, isKind(ast.KindLink)) {
		link := l.node
		format := link.FirstChild()
		if format == nil || format != link.LastChild() || !isFormat(format) {
			continue
		}
		parent := link.Parent()
		parent.ReplaceChild(parent, link, format)
		for c := format.FirstChild(); c != nil; {
			next := c.NextSibling()
			link.AppendChild(link, c)
			c = next
		}
		format.AppendChild(format, link)

		if t := lastText(link); t != nil {
			trimmed := t.Segment.TrimRightSpace(l.source)
			if trimmed.Len() != t.Segment.Len() {
				t.Segment = trimmed
				parent.InsertAfter(parent, format, ast.NewString([]byte(" ")))
			}
		}
	}
}

func isFormat(n ast.Node) bool {
	switch n.(type) {
	case *ast.Emphasis, *extast.Strikethrough:
		return true
	}
	return false
}

func lastText(n ast.Node) *ast.Text {
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t
		}
		if t := lastText(c); t != nil {
			return t
		}
	}
	return nil
}

// RobustTables replaces GFM pipe tables with equivalent grid tables, using p
// to parse the content of cells. Only pipe tables that are direct children of
// a document are replaced, since grid tables are not recognized inside
// container blocks. Documents of grid table cells are included.
func RobustTables(doc ast.Node, source []byte, p parser.Parser) {
	for _, t := range collect(doc, source, isKind(extast.KindTable)) {
		pipe := t.node.(*extast.Table)
		parent := pipe.Parent()
		if parent == nil || parent.Kind() != ast.KindDocument {
			continue
		}
		parent.ReplaceChild(parent, pipe, gridtable.FromPipeTable(pipe, t.source, p))
	}
}

func isKind(k ast.NodeKind) func(ast.Node) bool {
	return func(n ast.Node) bool { return n.Kind() == k }
}

// Dereference resolves the link and image references in grid table cells
// against the definitions of the enclosing documents, using p to parse the
// content of cells again. Cells are parsed while their table is, before the
// definitions that follow the table are known, and on their own, so such
// references are otherwise left as literal text. Definitions of an enclosing
// document take precedence over those of a cell.
func Dereference(doc ast.Node, source []byte, p parser.Parser) {
	pc := parser.NewContext()
	p.Parse(text.NewReader(source), parser.WithContext(pc))
	dereference(doc, pc.References(), p)
}

func dereference(n ast.Node, refs []parser.Reference, p parser.Parser) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		cell, ok := c.(*gridtable.Cell)
		if !ok {
			dereference(c, refs, p)
			continue
		}
		pc := parser.NewContext()
		for _, ref := range refs {
			pc.AddReference(ref)
		}
		doc, ok := p.Parse(text.NewReader(cell.Source), parser.WithContext(pc)).(*ast.Document)
		if !ok {
			continue
		}
		cell.Doc = doc
		dereference(doc, pc.References(), p)
	}
}
