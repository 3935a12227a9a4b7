//go:build !windows

package progtest

import (
	"io"
	"os"
	"strings"

	"github.com/creack/pty"
	"src.mdgrid.dev/pkg/must"
	"src.mdgrid.dev/pkg/prog"
)

// RunOnTerminal is like Run, but connects stdin and stdout to a pseudo
// terminal. The "\r\n" line endings written by the terminal are turned back
// into "\n". It returns an error if no pseudo terminal can be opened.
func RunOnTerminal(p prog.Program, args ...string) (exit int, stdout, stderr string, err error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return 0, "", "", err
	}
	r2, w2 := must.Pipe()

	outCh := make(chan string, 1)
	go func() {
		// Reading fails with EIO once the terminal side is closed; everything
		// read until then is the output.
		b, _ := io.ReadAll(ptmx)
		ptmx.Close()
		outCh <- strings.ReplaceAll(string(b), "\r\n", "\n")
	}()
	errCh := readAllAsync(r2)

	exit = prog.Run([3]*os.File{tty, tty, w2}, append([]string{"mdgrid"}, args...), p)
	tty.Close()
	w2.Close()
	return exit, <-outCh, <-errCh, nil
}
