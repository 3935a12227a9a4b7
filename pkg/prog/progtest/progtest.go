// Package progtest contains utilities for testing programs built with package
// prog.
package progtest

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"src.mdgrid.dev/pkg/must"
	"src.mdgrid.dev/pkg/prog"
)

// Case is a test case for Test, built with That and its methods.
type Case struct {
	args     []string
	stdin    string
	terminal bool
	want     result
}

type result struct {
	exit           int
	stdout, stderr output
}

type output struct {
	content  string
	contains bool
}

func (o output) matches(s string) bool {
	if o.contains {
		return strings.Contains(s, o.content)
	}
	return o.content == s
}

// That returns a new Case that runs the program with the given arguments.
// Unless further refined, the Case expects the program to exit with 0 and
// write nothing.
func That(args ...string) Case {
	return Case{args: args}
}

// WithStdin returns an altered Case that feeds the given string to the
// program's stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// OnTerminal returns an altered Case that connects the program's stdin and
// stdout to a pseudo terminal. Any stdin set with WithStdin is ignored. The
// Case is skipped where pseudo terminals are not available.
func (c Case) OnTerminal() Case {
	c.terminal = true
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that expects the program to exit with the
// given code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that expects the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{s, false}
	return c
}

// WritesStdoutContaining returns an altered Case that expects the program to
// write text containing the given string to stdout.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{s, true}
	return c
}

// WritesStderr returns an altered Case that expects the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{s, false}
	return c
}

// WritesStderrContaining returns an altered Case that expects the program to
// write text containing the given string to stderr.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{s, true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			var exit int
			var stdout, stderr string
			if c.terminal {
				var err error
				exit, stdout, stderr, err = RunOnTerminal(p, c.args...)
				if err != nil {
					t.Skipf("no pseudo terminal: %v", err)
				}
			} else {
				exit, stdout, stderr = Run(p, c.stdin, c.args...)
			}
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			if !c.want.stdout.matches(stdout) {
				t.Errorf("got stdout %q, want %s", stdout, c.want.stdout)
			}
			if !c.want.stderr.matches(stderr) {
				t.Errorf("got stderr %q, want %s", stderr, c.want.stderr)
			}
		})
	}
}

func (o output) String() string {
	if o.contains {
		return fmt.Sprintf("containing %q", o.content)
	}
	return fmt.Sprintf("%q", o.content)
}

// Run runs a program with the given stdin and arguments, and returns its exit
// status, stdout and stderr. The program name is prepended to args.
func Run(p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	r0, w0 := must.Pipe()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()

	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	// Read stdout and stderr concurrently, so that the program doesn't block
	// on a full pipe.
	outCh := readAllAsync(r1)
	errCh := readAllAsync(r2)

	exit = prog.Run([3]*os.File{r0, w1, w2}, append([]string{"mdgrid"}, args...), p)
	w1.Close()
	w2.Close()
	r0.Close()
	return exit, <-outCh, <-errCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- must.ReadString(r)
	}()
	return ch
}
