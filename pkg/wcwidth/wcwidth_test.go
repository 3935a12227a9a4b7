package wcwidth

import (
	"testing"

	"src.mdgrid.dev/pkg/tt"
)

var Args = tt.Args

func TestOf(t *testing.T) {
	tt.Test(t, Of,
		Args("\u0301").Rets(0), // Combining acute accent
		Args("a").Rets(1),
		Args("Ω").Rets(1),
		Args("好").Rets(2),
		Args("か").Rets(2),

		Args("abc").Rets(3),
		Args("你好").Rets(4),
		Args("a好b").Rets(4),
	)
}

func TestPad(t *testing.T) {
	tt.Test(t, Pad,
		Args("abc", 5).Rets("abc  "),
		Args("abc", 2).Rets("abc"),
		Args("你好", 6).Rets("你好  "),
	)
}

func TestMaxOfLines(t *testing.T) {
	tt.Test(t, MaxOfLines,
		Args([]string{"a", "abc", "ab"}).Rets(3),
		Args([]string{"你好", "abc"}).Rets(4),
		Args([]string(nil)).Rets(0),
	)
}
