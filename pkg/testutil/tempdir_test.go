package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"src.mdgrid.dev/pkg/must"
)

// Runs cleanups on demand, so that tests can observe their effect.
type cleanups []func()

func (c *cleanups) Cleanup(fn func()) { *c = append(*c, fn) }

func (c *cleanups) run() {
	for i := len(*c) - 1; i >= 0; i-- {
		(*c)[i]()
	}
}

func wd() string {
	return must.OK1(filepath.EvalSymlinks(must.OK1(os.Getwd())))
}

func TestTempDir(t *testing.T) {
	var c cleanups
	dir := TempDir(&c)
	if resolved := must.OK1(filepath.EvalSymlinks(dir)); resolved != dir {
		t.Errorf("TempDir returned %q, which resolves to %q", dir, resolved)
	}
	must.WriteFile(filepath.Join(dir, "d", "a.md"), "# a\n")

	c.run()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("%q still exists after cleanup", dir)
	}
}

func TestInTempDir(t *testing.T) {
	original := wd()
	var c cleanups
	dir := InTempDir(&c)
	defer c.run()
	if got := wd(); got != dir {
		t.Errorf("working directory is %q, want %q", got, dir)
	}

	c.run()
	c = nil
	if got := wd(); got != original {
		t.Errorf("working directory restored to %q, want %q", got, original)
	}
}

func TestApplyDir(t *testing.T) {
	InTempDir(t)

	ApplyDir(Dir{
		"a.md": "+---+\n| a |\n+---+\n",
		"docs": Dir{
			"b.md":   "# b\n",
			"nested": Dir{"c.md": "c\n"},
		},
	})
	// Existing directories are fine.
	ApplyDir(Dir{"docs": Dir{"d.md": "d\n"}})

	for name, want := range map[string]string{
		"a.md":             "+---+\n| a |\n+---+\n",
		"docs/b.md":        "# b\n",
		"docs/nested/c.md": "c\n",
		"docs/d.md":        "d\n",
	} {
		if got := must.ReadFileString(name); got != want {
			t.Errorf("%s is %q, want %q", name, got, want)
		}
	}
}
