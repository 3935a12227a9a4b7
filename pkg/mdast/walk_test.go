package mdast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark/ast"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/md"
)

var walkSource = []byte("a\n\n+---+\n| b |\n+---+\n\nc\n")

func texts(stopAt string, skipCells bool) []string {
	var got []string
	Walk(md.Parse(walkSource), walkSource,
		func(n ast.Node, source []byte, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			if _, ok := n.(*gridtable.Cell); ok && skipCells {
				return ast.WalkSkipChildren, nil
			}
			if t, ok := n.(*ast.Text); ok {
				s := string(t.Segment.Value(source))
				got = append(got, s)
				if s == stopAt {
					return ast.WalkStop, nil
				}
			}
			return ast.WalkContinue, nil
		})
	return got
}

func TestWalk(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b", "c"}, texts("", false)); diff != "" {
		t.Errorf("descending into cells (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts("b", false)); diff != "" {
		t.Errorf("stopping in a cell (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, texts("", true)); diff != "" {
		t.Errorf("skipping cells (-want +got):\n%s", diff)
	}
}
