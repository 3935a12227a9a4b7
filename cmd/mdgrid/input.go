package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/yuin/goldmark/ast"
	"src.mdgrid.dev/pkg/errutil"
	"src.mdgrid.dev/pkg/md"
	"src.mdgrid.dev/pkg/mdast"
	"src.mdgrid.dev/pkg/prog"
)

const stdinName = "<stdin>"

type input struct {
	name   string
	source []byte
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Reads the named files, or stdin if there are no names. Files that can't be
// read are skipped, and the errors are combined in the returned error.
func readInputs(stdin *os.File, names []string) ([]input, error) {
	if len(names) == 0 {
		if isTerminal(stdin) {
			return nil, prog.BadUsage("no input files, and stdin is a terminal")
		}
		source, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", stdinName, err)
		}
		return []input{{stdinName, source}}, nil
	}
	var inputs []input
	var errs []error
	for _, name := range names {
		source, err := os.ReadFile(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		inputs = append(inputs, input{name, source})
	}
	return inputs, errutil.Multi(errs...)
}

func parse(in input, sanitize bool) ast.Node {
	doc := md.Parse(in.source)
	if sanitize {
		p := md.Default().Parser()
		mdast.Dereference(doc, in.source, p)
		mdast.SanitizeHeadings(doc, in.source)
		mdast.SanitizeLinks(doc, in.source)
		mdast.SanitizeTextAndFormats(doc, in.source)
		mdast.RobustTables(doc, in.source, p)
	}
	return doc
}
