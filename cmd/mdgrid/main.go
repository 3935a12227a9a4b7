// Command mdgrid formats Markdown documents that use grid tables.
//
// By default it formats the named files, or stdin if no file is named. Other
// flags select a different output, run a linter, or run a language server.
// Run "mdgrid -help" for a list of flags.
package main

import (
	"os"

	"src.mdgrid.dev/pkg/lsp"
	"src.mdgrid.dev/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args, program()))
}

func program() prog.Program {
	return prog.Composite(
		&prog.VersionProgram{}, &lsp.Program{},
		&lintProgram{}, &convertProgram{}, &fmtProgram{})
}
