package main

import (
	"fmt"
	"os"

	"src.mdgrid.dev/pkg/errutil"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/md"
	"src.mdgrid.dev/pkg/prog"
)

// Formats Markdown. This is the default subprogram.
type fmtProgram struct {
	overwrite, list bool
	width           int
	layout          *gridtable.Options
	sanitize        *bool
}

func (p *fmtProgram) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.overwrite, "w", false, "write result to source files")
	fs.BoolVar(&p.list, "l", false, "list files whose formatting differs")
	fs.IntVar(&p.width, "width", 0, "if > 0, reflow paragraphs to width")
	p.layout = fs.Layout()
	p.sanitize = fs.Sanitize()
}

func (p *fmtProgram) Run(fds [3]*os.File, args []string) error {
	if p.overwrite && len(args) == 0 {
		return prog.BadUsage("-w requires file arguments")
	}
	inputs, err := readInputs(fds[0], args)
	errs := []error{err}
	for _, in := range inputs {
		codec := &md.FmtCodec{Width: p.width, Table: *p.layout}
		md.RenderNode(parse(in, *p.sanitize), in.source, codec)
		if u := codec.Unsupported(); u != nil {
			errs = append(errs, unsupportedError(in.name, u))
			continue
		}
		formatted := codec.String()
		changed := formatted != string(in.source)
		if p.list && changed {
			fmt.Fprintln(fds[1], in.name)
		}
		if p.overwrite {
			if changed {
				errs = append(errs, os.WriteFile(in.name, []byte(formatted), 0644))
			}
		} else if !p.list {
			fds[1].WriteString(formatted)
		}
	}
	return errutil.Multi(errs...)
}

func unsupportedError(name string, u *md.FmtUnsupported) error {
	var errs []error
	if u.NestedEmphasisOrStrongEmphasis {
		errs = append(errs, fmt.Errorf("%s contains nested emphasis or strong emphasis", name))
	}
	if u.ConsecutiveEmphasisOrStrongEmphasis {
		errs = append(errs, fmt.Errorf("%s contains consecutive emphasis or strong emphasis", name))
	}
	if u.TableInContainer {
		errs = append(errs, fmt.Errorf("%s contains a grid table inside a container block", name))
	}
	return errutil.Multi(errs...)
}
