package mdast

import (
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark/ast"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/md"
)

// Node is a node of an MDAST tree, the Markdown syntax tree format of the
// unified ecosystem. Only the fields relevant to the node's type are set.
//
// Grid tables use the types gridTable, gtHeader, gtBody, gtFooter, gtRow and
// gtCell. Frontmatter uses the type yaml.
type Node struct {
	Type     string  `json:"type"`
	Children []*Node `json:"children,omitempty"`
	Value    string  `json:"value,omitempty"`

	Depth   int    `json:"depth,omitempty"`
	Ordered bool   `json:"ordered,omitempty"`
	Start   *int   `json:"start,omitempty"`
	Spread  bool   `json:"spread,omitempty"`
	Checked *bool  `json:"checked,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Meta    string `json:"meta,omitempty"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Alt     string `json:"alt,omitempty"`

	// A string for cells, and a slice with one string or nil per column for
	// pipe tables.
	Align   any    `json:"align,omitempty"`
	VAlign  string `json:"valign,omitempty"`
	RowSpan int    `json:"rowSpan,omitempty"`
	ColSpan int    `json:"colSpan,omitempty"`
}

// ToJSON converts a parsed tree to MDAST, encoded as indented JSON.
func ToJSON(doc ast.Node, source []byte) ([]byte, error) {
	return json.MarshalIndent(ToMDAST(doc, source), "", "  ")
}

// ToMDAST converts a parsed tree to MDAST.
func ToMDAST(doc ast.Node, source []byte) *Node {
	var c Codec
	md.RenderNode(doc, source, &c)
	return c.Root()
}

// Codec is an md.Codec that builds an MDAST tree.
type Codec struct {
	root *Node
	// Open container blocks, starting with root.
	blocks []*Node
}

// Root returns the root node of the tree built so far.
func (c *Codec) Root() *Node {
	if c.root == nil {
		c.root = &Node{Type: "root"}
		c.blocks = []*Node{c.root}
	}
	return c.root
}

func (c *Codec) top() *Node {
	c.Root()
	return c.blocks[len(c.blocks)-1]
}

func (c *Codec) add(n *Node) {
	top := c.top()
	top.Children = append(top.Children, n)
}

func (c *Codec) push(n *Node) {
	c.add(n)
	c.blocks = append(c.blocks, n)
}

func (c *Codec) pop() {
	if len(c.blocks) > 1 {
		c.blocks = c.blocks[:len(c.blocks)-1]
	}
}

func (c *Codec) Do(op md.Op) {
	switch op.Type {
	case md.OpThematicBreak:
		c.add(&Node{Type: "thematicBreak"})
	case md.OpHeading:
		children, _ := inlines(op.Content)
		c.add(&Node{Type: "heading", Depth: op.Number, Children: children})
	case md.OpParagraph:
		children, checked := inlines(op.Content)
		if top := c.top(); checked != nil && top.Type == "listItem" {
			top.Checked = checked
		}
		c.add(&Node{Type: "paragraph", Children: children})
	case md.OpCodeBlock:
		lang, meta, _ := strings.Cut(op.Info, " ")
		c.add(&Node{Type: "code", Lang: lang, Meta: strings.TrimSpace(meta),
			Value: strings.Join(op.Lines, "\n")})
	case md.OpHTMLBlock:
		c.add(&Node{Type: "html", Value: strings.Join(op.Lines, "\n")})
	case md.OpFrontmatter:
		c.add(&Node{Type: "yaml", Value: strings.Join(op.Lines, "\n")})
	case md.OpTable:
		if op.Pipe {
			c.add(pipeTable(op.Table))
		} else {
			c.add(gridTable(op.Table))
		}
	case md.OpBlockquoteStart:
		c.push(&Node{Type: "blockquote"})
	case md.OpBulletListStart:
		c.push(&Node{Type: "list", Spread: !op.Tight})
	case md.OpOrderedListStart:
		start := op.Number
		c.push(&Node{Type: "list", Ordered: true, Start: &start, Spread: !op.Tight})
	case md.OpListItemStart:
		c.push(&Node{Type: "listItem", Spread: c.top().Spread})
	case md.OpBlockquoteEnd, md.OpBulletListEnd, md.OpOrderedListEnd, md.OpListItemEnd:
		c.pop()
	}
}

// Builds phrasing content. The second return value is the state of the task
// list checkbox, if there is one.
func inlines(ops []md.InlineOp) ([]*Node, *bool) {
	root := &Node{}
	stack := []*Node{root}
	var checked *bool
	add := func(n *Node) {
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}
	push := func(n *Node) {
		add(n)
		stack = append(stack, n)
	}
	pop := func() *Node {
		n := stack[len(stack)-1]
		if len(stack) > 1 {
			stack = stack[:len(stack)-1]
		}
		return n
	}
	addText := func(s string) {
		top := stack[len(stack)-1]
		if n := len(top.Children); n > 0 && top.Children[n-1].Type == "text" {
			top.Children[n-1].Value += s
			return
		}
		add(&Node{Type: "text", Value: s})
	}

	for i, op := range ops {
		switch op.Type {
		case md.OpText:
			addText(op.Text)
		case md.OpNewLine:
			// Already represented by the break node.
			if i > 0 && ops[i-1].Type == md.OpHardLineBreak {
				continue
			}
			addText("\n")
		case md.OpHardLineBreak:
			add(&Node{Type: "break"})
		case md.OpCodeSpan:
			add(&Node{Type: "inlineCode", Value: op.Text})
		case md.OpRawHTML:
			add(&Node{Type: "html", Value: op.Text})
		case md.OpEmphasisStart:
			push(&Node{Type: "emphasis"})
		case md.OpStrongEmphasisStart:
			push(&Node{Type: "strong"})
		case md.OpStrikethroughStart:
			push(&Node{Type: "delete"})
		case md.OpLinkStart:
			push(&Node{Type: "link"})
		case md.OpEmphasisEnd, md.OpStrongEmphasisEnd, md.OpStrikethroughEnd:
			pop()
		case md.OpLinkEnd:
			link := pop()
			link.URL, link.Title = op.Dest, op.Text
		case md.OpImage:
			add(&Node{Type: "image", URL: op.Dest, Title: op.Text, Alt: op.Alt})
		case md.OpAutolink:
			add(&Node{Type: "link", URL: op.Dest,
				Children: []*Node{{Type: "text", Value: op.Text}}})
		case md.OpCheckbox:
			b := op.Text == "x"
			checked = &b
		}
	}
	return root.Children, checked
}

func cellContent(cell *gridtable.Cell) []*Node {
	return ToMDAST(cell.Doc, cell.Source).Children
}

func gridTable(t *gridtable.Table) *Node {
	table := &Node{Type: "gridTable"}
	rows, header, footer := t.Rows()
	var section *Node
	for i, row := range rows {
		typ := "gtBody"
		if i < header {
			typ = "gtHeader"
		} else if i >= len(rows)-footer {
			typ = "gtFooter"
		}
		if section == nil || section.Type != typ {
			section = &Node{Type: typ}
			table.Children = append(table.Children, section)
		}
		r := &Node{Type: "gtRow"}
		for _, cell := range row.Cells() {
			r.Children = append(r.Children, &Node{
				Type:     "gtCell",
				Children: cellContent(cell),
				RowSpan:  cell.RowSpan,
				ColSpan:  cell.ColSpan,
				Align:    alignValue(cell.Align),
				VAlign:   cell.VAlign.String(),
			})
		}
		section.Children = append(section.Children, r)
	}
	return table
}

func pipeTable(t *gridtable.Table) *Node {
	table := &Node{Type: "table"}
	rows, _, _ := t.Rows()
	for i, row := range rows {
		r := &Node{Type: "tableRow"}
		var aligns []any
		for _, cell := range row.Cells() {
			content := cellContent(cell)
			if len(content) == 1 && content[0].Type == "paragraph" {
				content = content[0].Children
			}
			r.Children = append(r.Children, &Node{Type: "tableCell", Children: content})
			aligns = append(aligns, alignValue(cell.Align))
		}
		if i == 0 {
			table.Align = aligns
		}
		table.Children = append(table.Children, r)
	}
	return table
}

// Returns nil for AlignUnset, so that it is encoded as null or omitted.
func alignValue(a gridtable.Align) any {
	if a == gridtable.AlignUnset {
		return nil
	}
	return a.String()
}
