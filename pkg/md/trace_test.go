package md_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "src.mdgrid.dev/pkg/md"
)

var traceTests = []struct {
	name string
	in   string
	want string
}{
	{
		name: "heading and task list",
		in:   "# Title\n\n- [x] a *b*\n",
		want: `
			OpHeading Number=1
			  OpText Text="Title"
			OpBulletListStart Tight
			OpListItemStart
			OpParagraph
			  OpCheckbox Text="x"
			  OpText Text="a "
			  OpEmphasisStart
			  OpText Text="b"
			  OpEmphasisEnd
			OpListItemEnd
			OpBulletListEnd
			`,
	},
	{
		name: "inline text is decoded",
		in:   "&amp;\\* [x](/u \"t\") <a@b.c>\\\nb\n",
		want: `
			OpParagraph
			  OpText Text="&* "
			  OpLinkStart
			  OpText Text="x"
			  OpLinkEnd Text="t" Dest="/u"
			  OpText Text=" "
			  OpAutolink Text="a@b.c" Dest="mailto:a@b.c"
			  OpHardLineBreak
			  OpNewLine
			  OpText Text="b"
			`,
	},
	{
		name: "grid table",
		in: dedent(`
			+---+---+
			| a     |
			+---+---+
			| b | c |
			+---+---+
			`),
		want: `
			OpTable
			  Row Body
			    Cell ColSpan=2
			      OpParagraph
			        OpText Text="a"
			  Row Body
			    Cell
			      OpParagraph
			        OpText Text="b"
			    Cell
			      OpParagraph
			        OpText Text="c"
			`,
	},
	{
		name: "pipe table",
		in:   "| a | b |\n|---|:-:|\n| c |\n",
		want: `
			OpTable Pipe
			  Row Header
			    Cell
			      OpParagraph
			        OpText Text="a"
			    Cell Align=center
			      OpParagraph
			        OpText Text="b"
			  Row Body
			    Cell
			      OpParagraph
			        OpText Text="c"
			    Cell
			`,
	},
	{
		name: "frontmatter",
		in:   "---\nk: v\n---\n",
		want: `
			OpFrontmatter
			  k: v
			`,
	},
}

func TestTraceCodec(t *testing.T) {
	for _, tc := range traceTests {
		t.Run(tc.name, func(t *testing.T) {
			got := RenderString(tc.in, &TraceCodec{})
			want := strings.TrimSuffix(dedent(tc.want), "\n")
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
