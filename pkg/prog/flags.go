package prog

import (
	"flag"

	"src.mdgrid.dev/pkg/gridtable"
)

// FlagSet wraps a *flag.FlagSet. Besides the usual methods, it provides
// methods for registering flags shared by several subprograms; each of them
// registers its flags the first time it is called, and returns the same
// value on subsequent calls.
type FlagSet struct {
	*flag.FlagSet
	layout   *gridtable.Options
	json     *bool
	sanitize *bool
}

// Layout registers flags for laying out grid tables. The returned Options
// starts out as gridtable.DefaultOptions.
func (fs *FlagSet) Layout() *gridtable.Options {
	if fs.layout == nil {
		opts := gridtable.DefaultOptions()
		fs.IntVar(&opts.Width, "table-width", opts.Width,
			"Width to lay out grid tables to")
		fs.IntVar(&opts.MinCellWidth, "min-cell-width", opts.MinCellWidth,
			"Minimal width of the content of grid table cells")
		fs.layout = &opts
	}
	return fs.layout
}

// JSON registers the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false, "Show the output in JSON")
		fs.json = &json
	}
	return fs.json
}

// Sanitize registers the -sanitize flag.
func (fs *FlagSet) Sanitize() *bool {
	if fs.sanitize == nil {
		var sanitize bool
		fs.BoolVar(&sanitize, "sanitize", false,
			"Rewrite headings, links and pipe tables before output")
		fs.sanitize = &sanitize
	}
	return fs.sanitize
}
