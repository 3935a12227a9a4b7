package gridtable

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "src.mdgrid.dev/pkg/tt"
)

func grid(align Align, valign VAlign, heavy bool) token {
	return token{kind: gridToken, align: align, valign: valign, heavy: heavy}
}

func TestParseGridSegment(t *testing.T) {
	Test(t, parseGridSegment,
		Args("---").Rets(grid(AlignUnset, VAlignUnset, false), true),
		Args("===").Rets(grid(AlignUnset, VAlignUnset, true), true),
		Args("-").Rets(grid(AlignUnset, VAlignUnset, false), true),
		Args(":--").Rets(grid(AlignLeft, VAlignUnset, false), true),
		Args("--:").Rets(grid(AlignRight, VAlignUnset, false), true),
		Args(":-:").Rets(grid(AlignCenter, VAlignUnset, false), true),
		Args(">-<").Rets(grid(AlignJustify, VAlignUnset, false), true),
		Args(">--").Rets(grid(AlignLeft, VAlignUnset, false), true),
		Args("--<").Rets(grid(AlignRight, VAlignUnset, false), true),
		Args(":=:").Rets(grid(AlignCenter, VAlignUnset, true), true),
		Args("-^-").Rets(grid(AlignUnset, VAlignTop, false), true),
		Args("-v-").Rets(grid(AlignUnset, VAlignBottom, false), true),
		Args("-x-").Rets(grid(AlignUnset, VAlignMiddle, false), true),
		Args("-X-").Rets(grid(AlignUnset, VAlignMiddle, false), true),
		Args(":x:").Rets(grid(AlignCenter, VAlignMiddle, false), true),
		Args("><").Rets(grid(AlignJustify, VAlignUnset, false), true),

		Args("").Rets(token{}, false),
		Args(":").Rets(token{}, false),
		Args(">").Rets(token{}, false),
		Args("abc").Rets(token{}, false),
		Args("-a-").Rets(token{}, false),
		Args("-:-").Rets(token{}, false),
		Args("^-").Rets(token{}, false),
		Args("-x").Rets(token{}, false),
	)
}

var tokenizeTests = []struct {
	name      string
	lines     []string
	wantLines []tokenLine
	wantCols  []int
}{
	{
		name:  "simple table",
		lines: []string{"+---+----+", "| a | bc |", "+===+----+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 4, end: '+'},
				{kind: gridToken, left: 4, right: 9, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 4, end: '|', text: " a "},
				{kind: contentToken, left: 4, right: 9, end: '|', text: " bc "},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 4, end: '+', heavy: true},
				{kind: gridToken, left: 4, right: 9, end: '+'},
			}},
		},
		wantCols: []int{0, 4, 9},
	},
	{
		name:  "divider at unknown column is literal",
		lines: []string{"+-------+", "| a|b+c |", "+-------+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 8, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 8, end: '|', text: " a|b+c "},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 8, end: '+'},
			}},
		},
		wantCols: []int{0, 8},
	},
	{
		name:  "escaped divider at known column is literal",
		lines: []string{"+--+--+", `|a\|b |`, "+-----+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 3, end: '+'},
				{kind: gridToken, left: 3, right: 6, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 6, end: '|', text: `a\|b `},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 6, end: '+'},
			}},
		},
		wantCols: []int{0, 3, 6},
	},
	{
		name:  "partial grid line",
		lines: []string{"+---+---+", "| a | b |", "|   +---|", "+---+---+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 4, end: '+'},
				{kind: gridToken, left: 4, right: 8, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 4, end: '|', text: " a "},
				{kind: contentToken, left: 4, right: 8, end: '|', text: " b "},
			}},
			{grid: true, tokens: []token{
				{kind: contentToken, left: 0, right: 4, end: '+', text: "   "},
				{kind: gridToken, left: 4, right: 8, end: '|'},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 4, end: '+'},
				{kind: gridToken, left: 4, right: 8, end: '+'},
			}},
		},
		wantCols: []int{0, 4, 8},
	},
	{
		name:  "grid-like content is content",
		lines: []string{"+-----+", "| --> |", "+-----+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 6, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 6, end: '|', text: " --> "},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 6, end: '+'},
			}},
		},
		wantCols: []int{0, 6},
	},
	{
		name:  "wide characters",
		lines: []string{"+----+", "| 好 |", "+----+"},
		wantLines: []tokenLine{
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 5, end: '+'},
			}},
			{tokens: []token{
				{kind: contentToken, left: 0, right: 5, end: '|', text: " 好 "},
			}},
			{grid: true, pure: true, tokens: []token{
				{kind: gridToken, left: 0, right: 5, end: '+'},
			}},
		},
		wantCols: []int{0, 5},
	},
}

func TestTokenize(t *testing.T) {
	for _, test := range tokenizeTests {
		t.Run(test.name, func(t *testing.T) {
			lines, cols, err := tokenize(test.lines)
			if err != nil {
				t.Fatalf("got error %v", err)
			}
			if diff := cmp.Diff(test.wantLines, lines,
				cmp.AllowUnexported(token{}, tokenLine{})); diff != "" {
				t.Errorf("tokens (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantCols, cols); diff != "" {
				t.Errorf("columns (-want +got):\n%s", diff)
			}
		})
	}
}

var tokenizeErrorTests = []struct {
	name    string
	lines   []string
	wantErr error
}{
	{"too few lines", []string{"+---+", "| a |"}, ErrTooFewLines},
	{"first line not grid", []string{"| a |", "+---+", "+---+"}, ErrNotGridLine},
	{"first line has content", []string{"+-a-+", "| a |", "+---+"}, ErrNotGridLine},
	{"line with other start", []string{"+---+", "x a |", "+---+"}, ErrNotGridLine},
	{"empty line", []string{"+---+", "", "+---+"}, ErrNotGridLine},
	{"unclosed content", []string{"+---+", "| a", "+---+"}, ErrUnclosedRow},
	{"unclosed grid run", []string{"+---+", "| a |", "+---"}, ErrUnclosedRow},
	{"escaped closing divider", []string{"+---+", `| a\|`, "+---+"}, ErrUnclosedRow},
	{"lone divider", []string{"+---+", "|", "+---+"}, ErrNotGridLine},
}

func TestTokenize_Errors(t *testing.T) {
	for _, test := range tokenizeErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := tokenize(test.lines)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("got error %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestIsPureGridLine(t *testing.T) {
	Test(t, isPureGridLine,
		Args("+---+").Rets(true),
		Args("+:-x-:+===+  ").Rets(true),
		Args("+").Rets(false),
		Args("+ item").Rets(false),
		Args("+-- a").Rets(false),
		Args("|---|").Rets(false),
		Args("+---").Rets(false),
	)
}
