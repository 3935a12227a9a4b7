package gridtable

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"src.mdgrid.dev/pkg/wcwidth"
)

// Errors that make a candidate block fall back to ordinary Markdown.
var (
	ErrTooFewLines = errors.New("a grid table needs at least 3 lines")
	ErrNotGridLine = errors.New("line is not part of a grid table")
	ErrUnclosedRow = errors.New("cell is not closed")
	ErrNoCells     = errors.New("grid table has no cells")
)

type tokenKind int

const (
	gridToken tokenKind = iota
	contentToken
)

// A token is one segment of a line between two dividers. Positions are
// display columns, with the first divider of the line at column 0.
type token struct {
	kind  tokenKind
	left  int
	right int
	// The divider closing the segment, '|' or '+'.
	end byte

	// Only for grid tokens.
	heavy  bool
	align  Align
	valign VAlign

	// Only for content tokens.
	text string
}

type tokenLine struct {
	tokens []token
	// Whether the line contains any grid token.
	grid bool
	// Whether the line contains only grid tokens.
	pure bool
}

type tokenizerState int

const (
	stateSegmentStart tokenizerState = iota
	stateGridRun
	stateContent
	stateEscape
)

type tokenizer struct {
	// Known column positions, sorted.
	cols []int

	state   tokenizerState
	col     int
	segLeft int
	buf     strings.Builder
	line    tokenLine
}

func newTokenizer() *tokenizer {
	return &tokenizer{cols: []int{0}}
}

// Tokenizes the lines of a grid table candidate. It returns the tokens of each
// line and the final set of known columns.
func tokenize(lines []string) ([]tokenLine, []int, error) {
	if len(lines) < 3 {
		return nil, nil, ErrTooFewLines
	}
	t := newTokenizer()
	tlines := make([]tokenLine, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || (line[0] != '+' && line[0] != '|') {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, ErrNotGridLine)
		}
		t.startLine()
		for _, r := range line[1:] {
			t.step(r)
		}
		tl, err := t.endLine()
		if i == 0 && (err != nil || !tl.pure) {
			return nil, nil, fmt.Errorf("line 1: %w", ErrNotGridLine)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		tlines[i] = tl
	}
	return tlines, t.cols, nil
}

func (t *tokenizer) startLine() {
	t.state = stateSegmentStart
	t.col = 1
	t.segLeft = 0
	t.line = tokenLine{pure: true}
}

func (t *tokenizer) step(r rune) {
	x := t.col
	t.col += wcwidth.OfRune(r)
	switch t.state {
	case stateSegmentStart:
		t.buf.Reset()
		if strings.ContainsRune("-=:>", r) {
			t.state = stateGridRun
			t.buf.WriteRune(r)
			return
		}
		t.state = stateContent
		t.content(r, x)
	case stateGridRun:
		if r == '|' || r == '+' {
			if g, ok := parseGridSegment(t.buf.String()); ok {
				g.left, g.right, g.end = t.segLeft, x, byte(r)
				t.emit(g)
				t.addCol(x)
				return
			}
			t.state = stateContent
			t.content(r, x)
			return
		}
		if strings.ContainsRune("-=:<>^vxX", r) {
			t.buf.WriteRune(r)
			return
		}
		t.state = stateContent
		t.content(r, x)
	case stateContent:
		t.content(r, x)
	case stateEscape:
		t.state = stateContent
		if r == '|' || r == '+' {
			t.buf.WriteRune(r)
			return
		}
		t.content(r, x)
	}
}

func (t *tokenizer) content(r rune, x int) {
	switch {
	case r == '\\':
		t.buf.WriteRune(r)
		t.state = stateEscape
	case (r == '|' || r == '+') && t.isCol(x):
		t.emit(token{kind: contentToken,
			left: t.segLeft, right: x, end: byte(r), text: t.buf.String()})
	default:
		t.buf.WriteRune(r)
	}
}

func (t *tokenizer) emit(tok token) {
	t.line.tokens = append(t.line.tokens, tok)
	if tok.kind == gridToken {
		t.line.grid = true
	} else {
		t.line.pure = false
	}
	t.segLeft = tok.right
	t.state = stateSegmentStart
}

func (t *tokenizer) endLine() (tokenLine, error) {
	if t.state != stateSegmentStart {
		return tokenLine{}, ErrUnclosedRow
	}
	if len(t.line.tokens) == 0 {
		return tokenLine{}, ErrNotGridLine
	}
	return t.line, nil
}

func (t *tokenizer) isCol(x int) bool {
	i := sort.SearchInts(t.cols, x)
	return i < len(t.cols) && t.cols[i] == x
}

func (t *tokenizer) addCol(x int) {
	i := sort.SearchInts(t.cols, x)
	if i < len(t.cols) && t.cols[i] == x {
		return
	}
	t.cols = append(t.cols, 0)
	copy(t.cols[i+1:], t.cols[i:])
	t.cols[i] = x
}

// Parses the text of a grid segment, without the enclosing dividers.
func parseGridSegment(s string) (token, bool) {
	n := len(s)
	if n == 0 {
		return token{}, false
	}
	first, last := s[0], s[n-1]
	if strings.IndexByte("-=:>", first) < 0 || strings.IndexByte("-=:<", last) < 0 {
		return token{}, false
	}
	if n > 2 && strings.Trim(s[1:n-1], "-=^vxX") != "" {
		return token{}, false
	}
	hasRule := strings.ContainsAny(s, "-=")
	if !hasRule && !(n >= 2 && (first == ':' || first == '>') && (last == ':' || last == '<')) {
		return token{}, false
	}

	tok := token{kind: gridToken, heavy: strings.Contains(s, "=")}
	if n >= 2 {
		switch {
		case first == ':' && last == ':':
			tok.align = AlignCenter
		case first == ':':
			tok.align = AlignLeft
		case last == ':':
			tok.align = AlignRight
		case first == '>' && last == '<':
			tok.align = AlignJustify
		case first == '>':
			tok.align = AlignLeft
		case last == '<':
			tok.align = AlignRight
		}
	}
	switch {
	case strings.Contains(s, "^"):
		tok.valign = VAlignTop
	case strings.Contains(s, "v"):
		tok.valign = VAlignBottom
	case strings.ContainsAny(s, "xX"):
		tok.valign = VAlignMiddle
	}
	return tok, true
}

// Reports whether line consists of a leading '+' followed only by grid
// segments.
func isPureGridLine(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < 2 || line[0] != '+' {
		return false
	}
	t := newTokenizer()
	t.startLine()
	for _, r := range line[1:] {
		t.step(r)
		if t.state == stateContent || t.state == stateEscape {
			return false
		}
	}
	tl, err := t.endLine()
	return err == nil && tl.pure
}
