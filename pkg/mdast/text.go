package mdast

import (
	"bytes"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/md"
)

// SanitizeTextAndFormats normalizes the text and formatting of inline
// content, so that it survives a round trip through Markdown:
//
//   - Adjacent formats of the same kind are merged and empty ones removed.
//   - Chains of nested formats and links are ordered from the outside in as
//     strikethrough, strong emphasis, emphasis and link.
//   - Whitespace at the edges of a format is moved out of it, and a space is
//     put between a format and a word next to it.
//   - Adjacent texts are merged. Whitespace is trimmed at the start of
//     paragraphs, at the end of inline content and before hard line breaks.
//   - Trailing hard line breaks are removed, and so are paragraphs left
//     empty.
//
// Texts are replaced with raw strings holding their decoded content, with
// line breaks as separate empty texts. Code spans, images, autolinks and raw
// HTML are left alone.
func SanitizeTextAndFormats(doc ast.Node, source []byte) {
	normalizeTexts(doc, source)
	eachParent(doc, collapseFormats)
	prune(doc)
	eachParent(doc, sortFormats)
	// Sorting can put formats of the same kind next to each other.
	eachParent(doc, collapseFormats)
	eachParent(doc, moveWhitespace)
	eachParent(doc, cleanupTexts)
	prune(doc)
	eachParent(doc, sortFormats)
	splitLines(doc)
}

func opaque(n ast.Node) bool {
	switch n.(type) {
	case *ast.CodeSpan, *ast.Image, *ast.AutoLink, *ast.RawHTML:
		return true
	}
	return false
}

// Calls fn with the children of n and of each descendant of n in preorder,
// replacing them with what fn returns. Documents of grid table cells are
// included. Opaque nodes are not entered.
func eachParent(n ast.Node, fn func(parent ast.Node, kids []ast.Node) []ast.Node) {
	if cell, ok := n.(*gridtable.Cell); ok && cell.Doc != nil {
		eachParent(cell.Doc, fn)
	}
	if !n.HasChildren() || opaque(n) {
		return
	}
	setChildren(n, fn(n, children(n)))
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		eachParent(c, fn)
	}
}

func children(n ast.Node) []ast.Node {
	kids := make([]ast.Node, 0, n.ChildCount())
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		kids = append(kids, c)
	}
	return kids
}

func setChildren(n ast.Node, kids []ast.Node) {
	n.RemoveChildren(n)
	for _, c := range kids {
		n.AppendChild(n, c)
	}
}

func newString(s string) *ast.String {
	str := ast.NewString([]byte(s))
	str.SetRaw(true)
	return str
}

func newBreak(hard bool) *ast.Text {
	t := ast.NewTextSegment(text.NewSegment(0, 0))
	if hard {
		t.SetHardLineBreak(true)
	} else {
		t.SetSoftLineBreak(true)
	}
	return t
}

func isHardBreak(n ast.Node) bool {
	t, ok := n.(*ast.Text)
	return ok && t.HardLineBreak()
}

// Replaces texts with raw strings. A soft line break becomes a trailing
// newline in the string, a hard one an empty text after it.
func normalizeTexts(doc ast.Node, source []byte) {
	var found []located
	Walk(doc, source, func(n ast.Node, source []byte, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if opaque(n) {
			return ast.WalkSkipChildren, nil
		}
		switch n.(type) {
		case *ast.Text, *ast.String:
			found = append(found, located{n, source})
		}
		return ast.WalkContinue, nil
	})
	for _, l := range found {
		switch n := l.node.(type) {
		case *ast.String:
			if !n.IsRaw() && !n.IsCode() {
				n.Value = []byte(md.DecodeText(n.Value))
				n.SetRaw(true)
			}
		case *ast.Text:
			value := string(n.Segment.Value(l.source))
			if !n.IsRaw() {
				value = md.DecodeText([]byte(value))
			}
			if n.SoftLineBreak() && !n.HardLineBreak() {
				value += "\n"
			}
			s := newString(value)
			parent := n.Parent()
			parent.ReplaceChild(parent, n, s)
			if n.HardLineBreak() {
				parent.InsertAfter(parent, s, newBreak(true))
			}
		}
	}
}

// Turns newlines in strings back into soft line breaks.
func splitLines(doc ast.Node) {
	var found []*ast.String
	Walk(doc, nil, func(n ast.Node, _ []byte, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if opaque(n) {
			return ast.WalkSkipChildren, nil
		}
		if s, ok := n.(*ast.String); ok && !s.IsCode() && bytes.IndexByte(s.Value, '\n') >= 0 {
			found = append(found, s)
		}
		return ast.WalkContinue, nil
	})
	for _, s := range found {
		lines := strings.Split(string(s.Value), "\n")
		parent := s.Parent()
		s.Value = []byte(strings.TrimRight(lines[0], " \t"))
		after := ast.Node(s)
		for i, line := range lines[1:] {
			brk := newBreak(false)
			parent.InsertAfter(parent, after, brk)
			after = brk
			line = strings.TrimLeft(line, " \t")
			if i < len(lines)-2 {
				line = strings.TrimRight(line, " \t")
			}
			if line != "" {
				str := newString(line)
				parent.InsertAfter(parent, after, str)
				after = str
			}
		}
	}
}

func sameFormat(a, b ast.Node) bool {
	switch a := a.(type) {
	case *ast.Emphasis:
		b, ok := b.(*ast.Emphasis)
		return ok && a.Level == b.Level
	case *extast.Strikethrough:
		_, ok := b.(*extast.Strikethrough)
		return ok
	}
	return false
}

func collapseFormats(_ ast.Node, kids []ast.Node) []ast.Node {
	for i := 0; i < len(kids); i++ {
		n := kids[i]
		if !isFormat(n) {
			continue
		}
		for i+1 < len(kids) && sameFormat(n, kids[i+1]) {
			for _, c := range children(kids[i+1]) {
				n.AppendChild(n, c)
			}
			kids = slices.Delete(kids, i+1, i+2)
		}
		if !n.HasChildren() {
			kids = slices.Delete(kids, i, i+1)
			// The previous node may now be followed by one it merges with.
			i = max(i-2, -1)
		}
	}
	return kids
}

// Removes empty strings, and formats and paragraphs left without content.
// Reports whether n itself should be removed.
func prune(n ast.Node) bool {
	if s, ok := n.(*ast.String); ok {
		return len(s.Value) == 0
	}
	if cell, ok := n.(*gridtable.Cell); ok && cell.Doc != nil {
		prune(cell.Doc)
	}
	if opaque(n) {
		return false
	}
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		if prune(c) {
			n.RemoveChild(n, c)
		}
		c = next
	}
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Emphasis, *extast.Strikethrough:
		return !n.HasChildren()
	}
	return false
}

func formatOrder(n ast.Node) int {
	switch n := n.(type) {
	case *extast.Strikethrough:
		return 0
	case *ast.Emphasis:
		if n.Level == 2 {
			return 1
		}
		return 2
	case *ast.Link:
		return 3
	}
	return -1
}

// Reorders chains of formats and links, where each node of the chain is the
// only child of the previous one.
func sortFormats(_ ast.Node, kids []ast.Node) []ast.Node {
	for i, n := range kids {
		var chain []ast.Node
		for n != nil && formatOrder(n) >= 0 {
			chain = append(chain, n)
			if n.ChildCount() == 1 {
				n = n.FirstChild()
			} else {
				n = nil
			}
		}
		if len(chain) < 2 {
			continue
		}
		inner := children(chain[len(chain)-1])
		sorted := slices.Clone(chain)
		sort.SliceStable(sorted, func(a, b int) bool {
			return formatOrder(sorted[a]) < formatOrder(sorted[b])
		})
		for _, n := range chain {
			n.RemoveChildren(n)
		}
		for j := 0; j+1 < len(sorted); j++ {
			sorted[j].AppendChild(sorted[j], sorted[j+1])
		}
		setChildren(sorted[len(sorted)-1], inner)
		kids[i] = sorted[0]
	}
	return kids
}

// Whether a space is needed between a format and the text next to it, given
// the rune of the text that touches the format.
func needsSpace(r rune) bool {
	return r != utf8.RuneError && !unicode.IsSpace(r) && !util.IsPunctRune(r)
}

func moveWhitespace(parent ast.Node, kids []ast.Node) []ast.Node {
	for i := 0; i < len(kids); i++ {
		n := kids[i]
		if !isFormat(n) {
			continue
		}
		inner := children(n)

		if k := len(inner); k > 0 {
			if last, ok := inner[k-1].(*ast.String); ok {
				v := string(last.Value)
				trimmed := strings.TrimRightFunc(v, unicode.IsSpace)
				if trimmed == "" {
					inner = inner[:k-1]
				}
				if trimmed != v {
					space := newString(v[len(trimmed):])
					if len(inner) == 0 {
						kids[i] = space
						continue
					}
					last.Value = []byte(trimmed)
					kids = slices.Insert(kids, i+1, ast.Node(space))
				}
			}
		}

		if len(inner) > 0 {
			if first, ok := inner[0].(*ast.String); ok {
				v := string(first.Value)
				trimmed := strings.TrimLeftFunc(v, unicode.IsSpace)
				if trimmed != v {
					first.Value = []byte(trimmed)
					if trimmed == "" {
						inner = inner[1:]
					}
					// Leading whitespace of a nested format is dropped.
					if !isFormat(parent) {
						space := newString(v[:len(v)-len(trimmed)])
						kids = slices.Insert(kids, i, ast.Node(space))
						i++
					}
				}
			}
		}
		setChildren(n, inner)

		if i > 0 {
			if prev, ok := kids[i-1].(*ast.String); ok {
				if r, _ := utf8.DecodeLastRune(prev.Value); needsSpace(r) {
					prev.Value = append(slices.Clip(prev.Value), ' ')
				}
			}
		}
		if len(inner) > 0 && i+1 < len(kids) {
			if next, ok := kids[i+1].(*ast.String); ok {
				if r, _ := utf8.DecodeRune(next.Value); needsSpace(r) {
					next.Value = append([]byte{' '}, next.Value...)
				}
			}
		}
	}
	return kids
}

func cleanupTexts(parent ast.Node, kids []ast.Node) []ast.Node {
	_, isPara := parent.(*ast.Paragraph)
	if _, ok := parent.(*ast.TextBlock); ok {
		isPara = true
	}
	for i := 0; i < len(kids); i++ {
		switch n := kids[i].(type) {
		case *ast.String:
			for i+1 < len(kids) {
				next, ok := kids[i+1].(*ast.String)
				if !ok {
					break
				}
				n.Value = append(slices.Clip(n.Value), next.Value...)
				kids = slices.Delete(kids, i+1, i+2)
			}
			if i == len(kids)-1 || isHardBreak(kids[i+1]) {
				n.Value = bytes.TrimRightFunc(n.Value, unicode.IsSpace)
			}
			if i == 0 && isPara {
				n.Value = bytes.TrimLeftFunc(n.Value, unicode.IsSpace)
			}
			if len(n.Value) == 0 {
				kids = slices.Delete(kids, i, i+1)
				i = max(i-2, -1)
			}
		case *ast.Text:
			if n.HardLineBreak() && i == len(kids)-1 {
				kids = slices.Delete(kids, i, i+1)
				i = max(i-2, -1)
			}
		}
	}
	return kids
}
