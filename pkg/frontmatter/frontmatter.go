// Package frontmatter implements YAML frontmatter for goldmark.
//
// Frontmatter is a block of YAML fenced by two "---" lines. The opening fence
// must be at column 1, either at the start of the document or after a blank
// line. The YAML must be a mapping; anything else is parsed as ordinary
// Markdown. Empty frontmatter is only recognized at the start of a document.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
	"src.mdgrid.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[frontmatter] ")

// ErrNotMap is returned when the payload of frontmatter is not a mapping.
var ErrNotMap = errors.New("frontmatter is not a mapping")

// KindMatter is the kind of Matter nodes.
var KindMatter = ast.NewNodeKind("Matter")

// Matter is a frontmatter block.
type Matter struct {
	ast.BaseBlock
	// The text between the fences, including the final newline.
	Payload []byte
	// The decoded payload.
	Data map[string]any

	pending int
}

// Kind implements ast.Node.
func (m *Matter) Kind() ast.NodeKind { return KindMatter }

// IsRaw implements ast.Node.
func (m *Matter) IsRaw() bool { return true }

// Dump implements ast.Node.
func (m *Matter) Dump(source []byte, level int) {
	ast.DumpHelper(m, source, level, map[string]string{
		"Payload": fmt.Sprintf("%q", m.Payload)}, nil)
}

// Decode decodes a frontmatter payload. An empty payload decodes to an empty
// map.
func Decode(payload []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, ErrNotMap
	}
}

type matterParser struct{}

// NewParser returns a BlockParser that parses frontmatter.
func NewParser() parser.BlockParser { return matterParser{} }

func (matterParser) Trigger() []byte { return []byte{'-'} }

func isFence(line []byte) bool {
	return string(util.TrimRightSpace(line)) == "---"
}

func (matterParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	if parent.Kind() != ast.KindDocument {
		return nil, parser.NoChildren
	}
	line, segment := reader.PeekLine()
	if pc.BlockOffset() != 0 || segment.Padding != 0 || !isFence(line) {
		return nil, parser.NoChildren
	}
	src := reader.Source()
	start := segment.Start
	if !afterBlankLine(src, start) {
		return nil, parser.NoChildren
	}

	// Find the closing fence.
	payloadStart := start + len(line)
	nlines := 1
	for i := payloadStart; i < len(src); {
		next := len(src)
		if j := bytes.IndexByte(src[i:], '\n'); j >= 0 {
			next = i + j + 1
		}
		nlines++
		if isFence(src[i:next]) {
			payload := src[payloadStart:i]
			if start > 0 && util.IsBlank(payload) {
				// Two thematic breaks.
				return nil, parser.NoChildren
			}
			data, err := Decode(payload)
			if err != nil {
				logger.Printf("not frontmatter at offset %d: %v", start, err)
				return nil, parser.NoChildren
			}
			m := &Matter{Payload: payload, Data: data, pending: nlines - 1}
			m.Lines().Append(text.NewSegment(payloadStart, i))
			return m, parser.NoChildren
		}
		i = next
	}
	return nil, parser.NoChildren
}

// Reports whether the line starting at pos is at the start of src or follows
// a blank line.
func afterBlankLine(src []byte, pos int) bool {
	if pos == 0 {
		return true
	}
	if src[pos-1] != '\n' {
		return false
	}
	prev := src[:pos-1]
	if i := bytes.LastIndexByte(prev, '\n'); i >= 0 {
		prev = prev[i+1:]
	}
	return util.IsBlank(prev)
}

func (matterParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	m := node.(*Matter)
	if m.pending == 0 {
		return parser.Close
	}
	m.pending--
	_, segment := reader.PeekLine()
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (matterParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (matterParser) CanInterruptParagraph() bool { return false }

func (matterParser) CanAcceptIndentedLine() bool { return false }

type htmlRenderer struct{}

// NewHTMLRenderer returns a NodeRenderer that renders frontmatter as nothing.
func NewHTMLRenderer() renderer.NodeRenderer { return htmlRenderer{} }

func (htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMatter, func(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
		return ast.WalkSkipChildren, nil
	})
}

// Extension adds frontmatter to a goldmark.Markdown.
type Extension struct{}

// New returns a new frontmatter Extension.
func New() *Extension { return &Extension{} }

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewParser(), 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewHTMLRenderer(), 500)))
}

// Get returns the frontmatter of a document, or nil if it has none.
func Get(doc ast.Node) *Matter {
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if m, ok := c.(*Matter); ok {
			return m
		}
	}
	return nil
}
