package md

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"src.mdgrid.dev/pkg/frontmatter"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[md] ")

// Turns a goldmark tree into Op's.
type walker struct {
	source []byte
	codec  Codec
}

func (w *walker) do(op Op) { w.codec.Do(op) }

func (w *walker) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *walker) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Document:
		w.children(n)
	case *ast.Paragraph, *ast.TextBlock:
		w.do(Op{Type: OpParagraph, Content: w.inlines(n)})
	case *ast.Heading:
		w.do(Op{Type: OpHeading, Number: n.Level, Content: w.inlines(n)})
	case *ast.ThematicBreak:
		w.do(Op{Type: OpThematicBreak})
	case *ast.CodeBlock:
		w.do(Op{Type: OpCodeBlock, Lines: w.lines(n.Lines())})
	case *ast.FencedCodeBlock:
		var info string
		if n.Info != nil {
			info = DecodeText(n.Info.Segment.Value(w.source))
		}
		w.do(Op{Type: OpCodeBlock, Info: info, Lines: w.lines(n.Lines())})
	case *ast.HTMLBlock:
		lines := w.lines(n.Lines())
		if n.HasClosure() {
			lines = append(lines, trimNewline(n.ClosureLine.Value(w.source)))
		}
		w.do(Op{Type: OpHTMLBlock, Lines: lines})
	case *ast.Blockquote:
		w.do(Op{Type: OpBlockquoteStart})
		w.children(n)
		w.do(Op{Type: OpBlockquoteEnd})
	case *ast.List:
		if n.IsOrdered() {
			w.do(Op{Type: OpOrderedListStart, Number: n.Start, Tight: n.IsTight})
		} else {
			w.do(Op{Type: OpBulletListStart, Tight: n.IsTight})
		}
		w.children(n)
		if n.IsOrdered() {
			w.do(Op{Type: OpOrderedListEnd})
		} else {
			w.do(Op{Type: OpBulletListEnd})
		}
	case *ast.ListItem:
		w.do(Op{Type: OpListItemStart})
		w.children(n)
		w.do(Op{Type: OpListItemEnd})
	case *gridtable.Table:
		w.do(Op{Type: OpTable, Table: n})
	case *extast.Table:
		table := gridtable.FromPipeTable(n, w.source, Default().Parser())
		w.do(Op{Type: OpTable, Table: table, Pipe: true})
	case *frontmatter.Matter:
		payload := strings.TrimSuffix(string(n.Payload), "\n")
		var lines []string
		if payload != "" {
			lines = strings.Split(payload, "\n")
		}
		w.do(Op{Type: OpFrontmatter, Lines: lines})
	default:
		logger.Printf("unsupported block node %v", n.Kind())
		w.children(n)
	}
}

func (w *walker) lines(segs *text.Segments) []string {
	lines := make([]string, segs.Len())
	for i := range lines {
		seg := segs.At(i)
		lines[i] = trimNewline(seg.Value(w.source))
	}
	return lines
}

func trimNewline(line []byte) string {
	return strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
}

func (w *walker) inlines(n ast.Node) []InlineOp {
	var ops []InlineOp
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		ops = w.inline(ops, c)
	}
	return ops
}

// Appends text, merging it with the last op if that is also text.
func appendText(ops []InlineOp, text string) []InlineOp {
	if text == "" {
		return ops
	}
	if len(ops) > 0 && ops[len(ops)-1].Type == OpText {
		ops[len(ops)-1].Text += text
		return ops
	}
	return append(ops, InlineOp{Type: OpText, Text: text})
}

func (w *walker) inline(ops []InlineOp, n ast.Node) []InlineOp {
	switch n := n.(type) {
	case *ast.Text:
		ops = appendText(ops, DecodeText(n.Segment.Value(w.source)))
		if n.HardLineBreak() {
			ops = append(ops, InlineOp{Type: OpHardLineBreak}, InlineOp{Type: OpNewLine})
		} else if n.SoftLineBreak() {
			ops = append(ops, InlineOp{Type: OpNewLine})
		}
	case *ast.String:
		ops = appendText(ops, string(n.Value))
	case *ast.CodeSpan:
		ops = append(ops, InlineOp{Type: OpCodeSpan, Text: w.codeSpanText(n)})
	case *ast.Emphasis:
		start, end := OpEmphasisStart, OpEmphasisEnd
		if n.Level == 2 {
			start, end = OpStrongEmphasisStart, OpStrongEmphasisEnd
		}
		ops = append(ops, InlineOp{Type: start})
		ops = append(ops, w.inlines(n)...)
		ops = append(ops, InlineOp{Type: end})
	case *extast.Strikethrough:
		ops = append(ops, InlineOp{Type: OpStrikethroughStart})
		ops = append(ops, w.inlines(n)...)
		ops = append(ops, InlineOp{Type: OpStrikethroughEnd})
	case *ast.Link:
		ops = append(ops, InlineOp{Type: OpLinkStart})
		ops = append(ops, w.inlines(n)...)
		ops = append(ops, InlineOp{Type: OpLinkEnd,
			Dest: DecodeText(n.Destination), Text: DecodeText(n.Title)})
	case *ast.Image:
		ops = append(ops, InlineOp{Type: OpImage,
			Dest: DecodeText(n.Destination), Text: DecodeText(n.Title),
			Alt: w.plainText(n)})
	case *ast.AutoLink:
		label := string(n.Label(w.source))
		dest := label
		if n.AutoLinkType == ast.AutoLinkEmail {
			dest = "mailto:" + label
		}
		ops = append(ops, InlineOp{Type: OpAutolink, Text: label, Dest: dest})
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(w.source))
		}
		ops = append(ops, InlineOp{Type: OpRawHTML, Text: sb.String()})
	case *extast.TaskCheckBox:
		mark := " "
		if n.IsChecked {
			mark = "x"
		}
		ops = append(ops, InlineOp{Type: OpCheckbox, Text: mark})
	default:
		logger.Printf("unsupported inline node %v", n.Kind())
		ops = append(ops, w.inlines(n)...)
	}
	return ops
}

func (w *walker) codeSpanText(n *ast.CodeSpan) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(w.source))
		case *ast.String:
			buf.Write(c.Value)
		}
	}
	return strings.ReplaceAll(buf.String(), "\n", " ")
}

// Returns the plain text of the content of a node, used for image
// descriptions.
func (w *walker) plainText(n ast.Node) string {
	var sb strings.Builder
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				sb.WriteString(DecodeText(c.Segment.Value(w.source)))
				if c.SoftLineBreak() || c.HardLineBreak() {
					sb.WriteByte('\n')
				}
			case *ast.String:
				sb.Write(c.Value)
			case *ast.CodeSpan:
				sb.WriteString(w.codeSpanText(c))
			default:
				visit(c)
			}
		}
	}
	visit(n)
	return sb.String()
}
