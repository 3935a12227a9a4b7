package md_test

import (
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"src.mdgrid.dev/pkg/gridtable"
	. "src.mdgrid.dev/pkg/md"
	"src.mdgrid.dev/pkg/testutil"
)

var dedent = testutil.Dedent

type testCase struct {
	Name     string
	Markdown string
}

var fmtTestCases = []testCase{
	{"ATX heading", "# Heading\n\nparagraph *em* **strong** `code`\n"},
	{"setext heading", "Setext\n======\n"},
	{"block quote", "> quote\n> more\n"},
	{"tight bullet list", "- a\n- b\n- c\n"},
	{"loose bullet list", "- a\n\n- b\n"},
	{"nested tight lists", "- a\n  - b\n  - c\n- d\n"},
	{"ordered list", "1. one\n2. two\n"},
	{"ordered list with start", "3) x\n4) y\n"},
	{"plus bullets", "+ plus list\n"},
	{"fenced code block", "```go\nfmt.Println()\n```\n"},
	{"indented code block", "    indented code\n"},
	{"code block in tight list", "- a\n  ```\n  x\n  ```\n- b\n"},
	{"HTML block", "<div>\nhtml\n</div>\n"},
	{"link and image", "[link](http://example.com \"title\") and ![img](a.png)\n"},
	{"autolinks", "<http://example.com> and <me@example.com>\n"},
	{"hard line break", "a\\\nb\n"},
	{"soft line break", "a\nb\n"},
	{"strikethrough", "~~strike~~ text\n"},
	{"task list", "- [ ] todo\n- [x] done\n"},
	{"thematic break", "***\n"},
	{"escapes and entities", "text with \\* escaped and &amp; entity\n"},
	{"pipe in text", "a | b\n"},
	{"tilde in text", "a ~ b\n"},
	{"plus at start of line", "a\n\\+---+\n"},
	{"grid table", dedent(`
		+---+---+
		| a | b |
		+===+===+
		| c | d |
		+---+---+
		`)},
	{"grid table with blocks", dedent(`
		+-----------+--------+
		| - x       | # head |
		| - y       |        |
		+-----------+--------+
		| ` + "```" + `       | *em*   |
		| a|b       |        |
		| ` + "```" + `       |        |
		+-----------+--------+
		`)},
	{"frontmatter", "---\ntitle: x\n---\n\n# Hi\n"},
}

func TestFmtPreservesHTMLRender(t *testing.T) {
	for _, tc := range fmtTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			testFmtPreservesHTMLRender(t, tc.Markdown)
		})
	}
}

func TestReflowFmtPreservesHTMLRenderModuloWhitespaces(t *testing.T) {
	for _, tc := range fmtTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			testReflowFmtPreservesHTMLRenderModuloWhitespaces(t, tc.Markdown, 80)
		})
	}
}

func TestFmtIsIdempotent(t *testing.T) {
	for _, tc := range fmtTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			formatted := formatAndSkipIfUnsupported(t, tc.Markdown, 0)
			again := formatAndSkipIfUnsupported(t, formatted, 0)
			if diff := cmp.Diff(formatted, again); diff != "" {
				t.Errorf("formatting again changes output (-first +second):\n%s", diff)
			}
		})
	}
}

func FuzzFmtPreservesHTMLRender(f *testing.F) {
	for _, tc := range fmtTestCases {
		f.Add(tc.Markdown)
	}
	f.Fuzz(testFmtPreservesHTMLRender)
}

func FuzzReflowFmtPreservesHTMLRenderModuleWhitespaces(f *testing.F) {
	for _, tc := range fmtTestCases {
		f.Add(tc.Markdown, 20)
		f.Add(tc.Markdown, 80)
	}
	f.Fuzz(testReflowFmtPreservesHTMLRenderModuloWhitespaces)
}

var fmtOutputTests = []struct {
	name  string
	codec *FmtCodec
	in    string
	want  string
}{
	{
		name:  "tight list keeps no blank lines",
		codec: &FmtCodec{},
		in:    "* a\n* b\n",
		want:  "-   a\n-   b\n",
	},
	{
		name:  "loose list gets blank lines",
		codec: &FmtCodec{},
		in:    "* a\n\n* b\n",
		want:  "-   a\n\n-   b\n",
	},
	{
		name:  "pipe table becomes grid table",
		codec: &FmtCodec{},
		in:    "| a | b |\n|---|:-:|\n| c | d |\n",
		want: dedent(`
			+---+:-:+
			| a | b |
			|===+:=:|
			| c | d |
			+---+---+
			`),
	},
	{
		name:  "pipe table in list stays pipe table",
		codec: &FmtCodec{},
		in:    "- item\n\n  | a | b |\n  |---|--:|\n  | `x\\|y` |\n",
		want:  "-   item\n\n    | a | b |\n    | --- | --: |\n    | `x\\|y` | |\n",
	},
	{
		name:  "grid table cells are reflowed",
		codec: &FmtCodec{Table: gridtable.Options{Width: 25, MinCellWidth: 5}},
		in: dedent(`
			+-----------------------------------+---+
			| lorem ipsum dolor sit amet elit   | b |
			+-----------------------------------+---+
			`),
		// (25 - 7) split over 2 columns is 9 and 9.
		want: dedent(`
			+----------+---+
			| lorem    | b |
			| ipsum    |   |
			| dolor    |   |
			| sit amet |   |
			| elit     |   |
			+----------+---+
			`),
	},
	{
		name:  "dividers in cells are escaped",
		codec: &FmtCodec{},
		in: dedent(`
			+-------+
			| a\|b  |
			+-------+
			`),
		want: dedent(`
			+-------+
			| a\\|b |
			+-------+
			`),
	},
	{
		name:  "frontmatter is kept verbatim",
		codec: &FmtCodec{},
		in:    "---\nb:   2\na: [1,2]\n---\ntext\n",
		want:  "---\nb:   2\na: [1,2]\n---\n\ntext\n",
	},
	{
		name:  "leading plus is escaped",
		codec: &FmtCodec{},
		in:    "\\+---+\n",
		want:  "\\+---+\n",
	},
}

func TestFmtOutput(t *testing.T) {
	for _, test := range fmtOutputTests {
		t.Run(test.name, func(t *testing.T) {
			got := RenderString(test.in, test.codec)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFmtUnsupported(t *testing.T) {
	codec := &FmtCodec{}
	RenderString("***a* b**\n", codec)
	if u := codec.Unsupported(); u == nil || !u.NestedEmphasisOrStrongEmphasis {
		t.Errorf("got unsupported %v, want NestedEmphasisOrStrongEmphasis", u)
	}
}

func testFmtPreservesHTMLRender(t *testing.T, original string) {
	t.Helper()
	testFmtPreservesHTMLRenderModulo(t, original, 0, nil)
}

var (
	paragraph         = regexp.MustCompile(`(?s)<p>.*?</p>`)
	whitespaceRun     = regexp.MustCompile(`[ \t\n]+`)
	brWithWhitespaces = regexp.MustCompile(`[ \t\n]*<br />[ \t\n]*`)
)

func testReflowFmtPreservesHTMLRenderModuloWhitespaces(t *testing.T, original string, w int) {
	t.Helper()
	if w <= 0 {
		t.Skip("width <= 0")
	}
	testFmtPreservesHTMLRenderModulo(t, original, w, func(html string) string {
		// Coalesce whitespaces in each paragraph.
		return paragraph.ReplaceAllStringFunc(html, func(p string) string {
			body := strings.Trim(p[3:len(p)-4], " \t\n")
			// Convert each whitespace run to a single space.
			body = whitespaceRun.ReplaceAllLiteralString(body, " ")
			// Remove whitespaces around <br />.
			body = brWithWhitespaces.ReplaceAllLiteralString(body, "<br />")
			return "<p>" + body + "</p>"
		})
	})
}

const hr = "================"

func testFmtPreservesHTMLRenderModulo(t *testing.T, original string, w int, processHTML func(string) string) {
	t.Helper()
	formatted := formatAndSkipIfUnsupported(t, original, w)
	originalRender := mustToHTML(t, original)
	formattedRender := mustToHTML(t, formatted)
	if processHTML != nil {
		originalRender = processHTML(originalRender)
		formattedRender = processHTML(formattedRender)
	}
	if formattedRender != originalRender {
		t.Errorf("original:\n%s\nformatted:\n%s\n"+
			"markdown diff (-original +formatted):\n%s"+
			"HTML diff (-original +formatted):\n%s"+
			"ops diff (-original +formatted):\n%s",
			hr+"\n"+original+hr, hr+"\n"+formatted+hr,
			cmp.Diff(original, formatted),
			cmp.Diff(originalRender, formattedRender),
			cmp.Diff(RenderString(original, &TraceCodec{}), RenderString(formatted, &TraceCodec{})))
	}
}

func mustToHTML(t *testing.T, md string) string {
	t.Helper()
	html, err := ToHTML(md)
	if err != nil {
		t.Fatalf("ToHTML(%q) returns error %v", md, err)
	}
	return html
}

func formatAndSkipIfUnsupported(t *testing.T, original string, w int) string {
	t.Helper()
	if !utf8.ValidString(original) {
		t.Skipf("input is not valid UTF-8")
	}
	if strings.Contains(original, "\t") {
		t.Skipf("input contains tab")
	}
	if hasPipeTable(original) {
		t.Skipf("input contains pipe table")
	}
	codec := &FmtCodec{Width: w}
	formatted := RenderString(original, codec)
	if u := codec.Unsupported(); u != nil {
		t.Skipf("input uses unsupported feature: %v", u)
	}
	return formatted
}

// Pipe tables are converted to grid tables, which render differently.
func hasPipeTable(md string) bool {
	return strings.Contains(RenderString(md, &TraceCodec{}), " Pipe")
}
