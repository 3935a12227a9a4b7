package progtest

import (
	"errors"

	"src.mdgrid.dev/pkg/prog"
)

// RunOnTerminal is not supported on Windows.
func RunOnTerminal(p prog.Program, args ...string) (exit int, stdout, stderr string, err error) {
	return 0, "", "", errors.New("pseudo terminals are not supported on Windows")
}
