package main

import (
	"fmt"
	"os"

	"src.mdgrid.dev/pkg/diag"
	"src.mdgrid.dev/pkg/md"
	"src.mdgrid.dev/pkg/prog"
)

// Reports blocks that look like grid tables but can't be parsed as such.
type lintProgram struct {
	lint bool
}

func (p *lintProgram) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.lint, "lint", false, "report malformed grid tables")
}

func (p *lintProgram) Run(fds [3]*os.File, args []string) error {
	if !p.lint {
		return prog.ErrNextProgram
	}
	inputs, err := readInputs(fds[0], args)
	found := false
	for _, in := range inputs {
		for _, r := range md.Lint(in.source) {
			found = true
			e := &diag.Error{
				Type:    "malformed grid table",
				Message: r.Err.Error(),
				Context: *diag.NewContext(in.name, string(in.source), r),
			}
			if isTerminal(fds[1]) {
				diag.ShowError(fds[1], e)
			} else {
				fmt.Fprintln(fds[1], e.Error())
			}
		}
	}
	if err != nil {
		return err
	}
	if found {
		return prog.Exit(1)
	}
	return nil
}
