package gridtable

import (
	"sort"
	"strings"
)

// A resolved cell, before its content is parsed.
type rcell struct {
	left, right int
	// Range of bands (rows) the cell covers, inclusive.
	startBand, endBand int
	lines              []string
	align              Align
	valign             VAlign
}

// A resolved table.
type rtable struct {
	// Cells that start in each band, ordered by their left column.
	rows   [][]*rcell
	cols   []int
	header int
	footer int
}

// Resolves the tokens of a grid table into cells, rows and sections.
func resolve(lines []tokenLine, cols []int) (*rtable, error) {
	var (
		open     = map[int]*rcell{}
		all      []*rcell
		band     int
		hasCells bool
		// Grid tokens of the last line with grid tokens, by left column; they
		// carry the alignment markers for cells opening below them.
		markers = map[int]token{}
		heavies []int
	)
	// The first line is always a pure grid line.
	for _, tok := range lines[0].tokens {
		markers[tok.left] = tok
	}
	if anyHeavy(lines[0].tokens) {
		heavies = append(heavies, 0)
	}

	openCell := func(tok token) {
		c := &rcell{left: tok.left, right: tok.right, startBand: band,
			lines: []string{tok.text}}
		if m, ok := markers[tok.left]; ok {
			c.align, c.valign = m.align, m.valign
		}
		open[tok.left] = c
		all = append(all, c)
	}

	// Adds the content tokens of a line to the open cells, opening new cells
	// as needed. Only content lines may open new cells.
	addContent := func(toks []token, mayOpen bool) {
		for i := 0; i < len(toks); i++ {
			tok := toks[i]
			if tok.kind != contentToken {
				continue
			}
			if c, ok := open[tok.left]; ok {
				text := tok.text
				// The line may have dividers inside the cell at known columns
				// introduced by other rows; join the pieces back.
				for tok.right < c.right && i+1 < len(toks) &&
					toks[i+1].kind == contentToken && toks[i+1].left == tok.right {
					text += string(tok.end)
					i++
					tok = toks[i]
					text += tok.text
				}
				c.lines = append(c.lines, text)
				continue
			}
			if c := enclosing(open, tok.left); c != nil {
				// Best effort: the divider was not one of the cell's.
				divider := byte('|')
				if i > 0 {
					divider = toks[i-1].end
				}
				last := len(c.lines) - 1
				c.lines[last] += string(divider) + tok.text
				continue
			}
			if mayOpen {
				openCell(tok)
			}
		}
	}

	for _, line := range lines[1:] {
		if !line.grid {
			addContent(line.tokens, true)
			hasCells = true
			continue
		}
		// Close every open cell whose whole range is covered by grid tokens.
		for left, c := range open {
			if covered(line.tokens, c.left, c.right) {
				c.endBand = band
				delete(open, left)
			}
		}
		if hasCells {
			band++
			hasCells = false
		}
		heavy := false
		markers = map[int]token{}
		for _, tok := range line.tokens {
			if tok.kind == gridToken {
				markers[tok.left] = tok
				heavy = heavy || tok.heavy
			}
		}
		if heavy {
			heavies = append(heavies, band)
		}
		// Content on a grid line continues row spans.
		addContent(line.tokens, false)
	}

	if len(open) > 0 {
		return nil, ErrUnclosedRow
	}
	if len(all) == 0 {
		return nil, ErrNoCells
	}

	t := &rtable{rows: make([][]*rcell, band), cols: cols}
	for _, c := range all {
		t.rows[c.startBand] = append(t.rows[c.startBand], c)
	}
	for _, row := range t.rows {
		sort.Slice(row, func(i, j int) bool { return row[i].left < row[j].left })
	}
	t.header, t.footer = sections(dedupInts(heavies), band)
	return t, nil
}

// Returns the open cell whose range strictly contains x.
func enclosing(open map[int]*rcell, x int) *rcell {
	for _, c := range open {
		if c.left < x && x < c.right {
			return c
		}
	}
	return nil
}

// Reports whether the grid tokens among toks cover [left, right].
func covered(toks []token, left, right int) bool {
	reach := left
	for _, tok := range toks {
		if tok.kind == gridToken && tok.left <= reach && reach < tok.right {
			reach = tok.right
		}
	}
	return reach >= right
}

func anyHeavy(toks []token) bool {
	for _, tok := range toks {
		if tok.heavy {
			return true
		}
	}
	return false
}

func dedupInts(a []int) []int {
	var out []int
	for _, x := range a {
		if len(out) == 0 || out[len(out)-1] != x {
			out = append(out, x)
		}
	}
	return out
}

// Infers the number of header and footer rows from the positions of heavy
// grid lines, given as the number of rows above each of them.
//
// An interior heavy line ends the header; a second one starts the footer. A
// heavy top border turns the first interior heavy line into the start of the
// footer instead. A heavy bottom border marks a table made only of sections:
// with one interior heavy line, the rows below it are the footer; with none,
// all rows are the header, or the footer if the top border is heavy too.
func sections(heavies []int, n int) (header, footer int) {
	top, bottom := false, false
	var interior []int
	for _, h := range heavies {
		switch {
		case h == 0:
			top = true
		case h == n:
			bottom = true
		default:
			interior = append(interior, h)
		}
	}
	switch {
	case top:
		if len(interior) > 0 {
			return 0, n - interior[0]
		}
		if bottom {
			return 0, n
		}
		return 0, 0
	case len(interior) == 0:
		if bottom {
			return n, 0
		}
		return 0, 0
	case len(interior) == 1:
		if bottom {
			return interior[0], n - interior[0]
		}
		return interior[0], 0
	default:
		return interior[0], n - interior[1]
	}
}

// Reflows the lines of a multi-line cell into Markdown source.
func reflow(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	// Leading blank lines come from vertically aligned cells.
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " "))
		if indent == -1 || n < indent {
			indent = n
		}
	}
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if indent > 0 {
			if len(line) >= indent {
				line = line[indent:]
			} else {
				line = ""
			}
		}
		sb.WriteString(unescapeDividers(strings.TrimRight(line, " \t")))
	}
	return sb.String()
}
