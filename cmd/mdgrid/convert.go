package main

import (
	"fmt"
	"os"

	"src.mdgrid.dev/pkg/errutil"
	"src.mdgrid.dev/pkg/md"
	"src.mdgrid.dev/pkg/mdast"
	"src.mdgrid.dev/pkg/prog"
)

// Converts Markdown to HTML, an Op trace or MDAST JSON.
type convertProgram struct {
	html, trace bool
	json        *bool
	sanitize    *bool
}

func (p *convertProgram) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.html, "html", false, "convert to HTML")
	fs.BoolVar(&p.trace, "trace", false, "show the internal Op's of the formatter")
	p.json = fs.JSON()
	p.sanitize = fs.Sanitize()
}

func (p *convertProgram) Run(fds [3]*os.File, args []string) error {
	n := 0
	for _, b := range []bool{p.html, p.trace, *p.json} {
		if b {
			n++
		}
	}
	switch n {
	case 0:
		return prog.ErrNextProgram
	case 1:
	default:
		return prog.BadUsage("-html, -trace and -json are mutually exclusive")
	}

	inputs, err := readInputs(fds[0], args)
	errs := []error{err}
	for _, in := range inputs {
		doc := parse(in, *p.sanitize)
		switch {
		case p.html:
			errs = append(errs, md.Default().Renderer().Render(fds[1], in.source, doc))
		case p.trace:
			var trace md.TraceCodec
			md.RenderNode(doc, in.source, &trace)
			fmt.Fprintln(fds[1], trace.String())
		default:
			json, err := mdast.ToJSON(doc, in.source)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", in.name, err))
				continue
			}
			fds[1].Write(append(json, '\n'))
		}
	}
	return errutil.Multi(errs...)
}
