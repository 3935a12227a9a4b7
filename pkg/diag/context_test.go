package diag

import (
	"strings"
	"testing"

	"src.mdgrid.dev/pkg/testutil"
)

var dedent = testutil.Dedent

// Replaces the terminal escape sequences around culprits and messages with
// ASCII brackets, so that expected output is readable.
func useBracketMarkers(t *testing.T) {
	testutil.Set(t, &culpritStart, "<")
	testutil.Set(t, &culpritEnd, ">")
	testutil.Set(t, &messageStart, "{")
	testutil.Set(t, &messageEnd, "}")
}

var contextTests = []struct {
	Name    string
	Context *Context
	Indent  string

	WantShow        string
	WantShowCompact string
}{
	{
		Name:    "single-line culprit",
		Context: contextInParen("[test]", "text (bad)"),
		Indent:  "_",

		WantShow: dedent(`
			[test]:1:6:
			_text <(bad)>`),
		WantShowCompact: "[test]:1:6: text <(bad)>",
	},
	{
		Name:    "multi-line culprit",
		Context: contextInParen("[test]", "text (bad\nbad)\nmore"),
		Indent:  "_",

		WantShow: dedent(`
			[test]:1:6:
			_text <(bad>
			_<bad)>`),
		WantShowCompact: dedent(`
			[test]:1:6: text <(bad>
			_            <bad)>`),
	},
	{
		Name: "trailing newline in culprit is removed",
		//                             012345678 9
		Context: NewContext("[test]", "text bad\n", Ranging{5, 9}),
		Indent:  "_",

		WantShow: dedent(`
			[test]:1:6:
			_text <bad>`),
		WantShowCompact: "[test]:1:6: text <bad>",
	},
	{
		Name: "empty culprit",
		//                             012345
		Context: NewContext("[test]", "text x", Ranging{5, 5}),

		WantShow: dedent(`
			[test]:1:6:
			text <^>x`),
		WantShowCompact: "[test]:1:6: text <^>x",
	},
	{
		Name:    "culprit on a later line",
		Context: contextInParen("[test]", "one\ntwo (x)"),

		WantShow: dedent(`
			[test]:2:5:
			two <(x)>`),
		WantShowCompact: "[test]:2:5: two <(x)>",
	},
	{
		Name:            "unknown culprit range",
		Context:         NewContext("[test]", "text", Ranging{-1, -1}),
		WantShow:        "[test], unknown position",
		WantShowCompact: "[test], unknown position",
	},
	{
		Name:            "invalid culprit range",
		Context:         NewContext("[test]", "text", Ranging{2, 1}),
		WantShow:        "[test], invalid position 2-1",
		WantShowCompact: "[test], invalid position 2-1",
	},
}

func TestContext(t *testing.T) {
	useBracketMarkers(t)
	for _, test := range contextTests {
		t.Run(test.Name, func(t *testing.T) {
			gotShow := test.Context.Show(test.Indent)
			if gotShow != test.WantShow {
				t.Errorf("Show() -> %q, want %q", gotShow, test.WantShow)
			}
			gotShowCompact := test.Context.ShowCompact(test.Indent)
			if gotShowCompact != test.WantShowCompact {
				t.Errorf("ShowCompact() -> %q, want %q",
					gotShowCompact, test.WantShowCompact)
			}
		})
	}
}

// Returns a Context with the given name and source, and a range for the part
// between ( and ).
func contextInParen(name, src string) *Context {
	return NewContext(name, src,
		Ranging{strings.Index(src, "("), strings.Index(src, ")") + 1})
}
