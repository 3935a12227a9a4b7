package gridtable

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"src.mdgrid.dev/pkg/diag"
	"src.mdgrid.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[gridtable] ")

// Rejection records a block that looked like a grid table but could not be
// parsed as one. Such blocks are parsed as ordinary Markdown instead.
type Rejection struct {
	// Byte range of the block in the source.
	diag.Ranging
	// 1-based line number of the first line of the block.
	Line int
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("grid table at line %d: %v", r.Line, r.Err)
}

var rejectionsKey = parser.NewContextKey()

// Rejections returns the blocks rejected while parsing with the given context.
func Rejections(pc parser.Context) []Rejection {
	rs, _ := pc.Get(rejectionsKey).([]Rejection)
	return rs
}

func addRejection(pc parser.Context, r Rejection) {
	pc.Set(rejectionsKey, append(Rejections(pc), r))
}

type tableParser struct {
	p parser.Parser
}

// NewParser returns a BlockParser that parses grid tables. The content of
// each cell is parsed with p, which is normally the parser that the returned
// BlockParser is added to.
func NewParser(p parser.Parser) parser.BlockParser {
	return &tableParser{p}
}

func (b *tableParser) Trigger() []byte {
	return []byte{'+'}
}

func (b *tableParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if pc.BlockOffset() != 0 || segment.Padding != 0 || len(line) == 0 || line[0] != '+' {
		return nil, parser.NoChildren
	}
	src := reader.Source()
	start := segment.Start
	if start > 0 && src[start-1] != '\n' {
		// Not at column 1 of the source, for example inside a block quote.
		return nil, parser.NoChildren
	}
	if !isPureGridLine(string(util.TrimRightSpace(line))) {
		return nil, parser.NoChildren
	}
	if rs := Rejections(pc); len(rs) > 0 && start < rs[len(rs)-1].To {
		// Part of a block already rejected.
		return nil, parser.NoChildren
	}

	var lines []string
	var segments []text.Segment
	end := start
	for end < len(src) && (src[end] == '+' || src[end] == '|') {
		next := len(src)
		stop := len(src)
		if i := bytes.IndexByte(src[end:], '\n'); i >= 0 {
			stop = end + i
			next = stop + 1
		}
		lines = append(lines, string(src[end:stop]))
		segments = append(segments, text.NewSegment(end, next))
		end = next
	}

	t, err := b.parseTable(lines)
	if err != nil {
		rg := diag.Ranging{From: start, To: end}
		r := Rejection{Ranging: rg, Line: rg.Line(src), Err: err}
		logger.Println(r)
		addRejection(pc, r)
		return nil, parser.NoChildren
	}
	for _, seg := range segments {
		t.Lines().Append(seg)
	}
	t.pending = len(lines) - 1
	return t, parser.NoChildren
}

func (b *tableParser) parseTable(lines []string) (*Table, error) {
	tlines, cols, err := tokenize(lines)
	if err != nil {
		return nil, err
	}
	rt, err := resolve(tlines, cols)
	if err != nil {
		return nil, err
	}
	return build(rt, b.parseCell), nil
}

func (b *tableParser) parseCell(src []byte) *ast.Document {
	doc, ok := b.p.Parse(text.NewReader(src)).(*ast.Document)
	if !ok {
		return ast.NewDocument()
	}
	return doc
}

func (b *tableParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	t := node.(*Table)
	if t.pending == 0 {
		return parser.Close
	}
	t.pending--
	_, segment := reader.PeekLine()
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *tableParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *tableParser) CanInterruptParagraph() bool { return true }

func (b *tableParser) CanAcceptIndentedLine() bool { return false }

// Extension adds grid tables to a goldmark.Markdown.
type Extension struct{}

// New returns a new grid table Extension.
func New() *Extension { return &Extension{} }

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(NewParser(m.Parser()), 90)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewHTMLRenderer(m.Renderer()), 500)))
}
