package diag

import (
	"testing"

	"src.mdgrid.dev/pkg/tt"
)

type rejection struct {
	Ranging
	Line int
}

func TestEmbeddingRangingImplementsRanger(t *testing.T) {
	var r Ranger = rejection{Ranging{6, 12}, 3}
	if got := r.Range(); got != (Ranging{6, 12}) {
		t.Errorf("Range() = %v, want {6 12}", got)
	}
	ctx := NewContext("a.md", "text\n\n+---+\n", r)
	if line, col := ctx.Position(); line != 3 || col != 1 {
		t.Errorf("Position() = %d, %d, want 3, 1", line, col)
	}
}

func TestWhole(t *testing.T) {
	if got := Whole("+---+\n"); got != (Ranging{0, 6}) {
		t.Errorf("Whole(string) = %v, want {0 6}", got)
	}
	if got := Whole([]byte{}); got != (Ranging{0, 0}) {
		t.Errorf("Whole([]byte) = %v, want {0 0}", got)
	}
}

func line(from int, source string) int {
	return Ranging{From: from, To: len(source)}.Line([]byte(source))
}

func TestRanging_Line(t *testing.T) {
	tt.Test(t, line,
		tt.Args(0, "").Rets(1),
		tt.Args(0, "+---+\n").Rets(1),
		tt.Args(6, "text\n\n+---+\n").Rets(3),
		tt.Args(5, "text\n").Rets(2),
	)
}
