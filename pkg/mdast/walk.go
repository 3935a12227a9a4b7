// Package mdast inspects and rewrites Markdown trees parsed by package md.
//
// The cells of grid tables hold their own documents, parsed from their own
// sources. The functions in this package descend into these documents, so that
// a tree with nested tables can be treated as a single tree.
package mdast

import (
	"github.com/yuin/goldmark/ast"
	"src.mdgrid.dev/pkg/gridtable"
)

// Walker is called by Walk for each node, both when entering and leaving it.
// The source is the one that the segments of n refer to.
type Walker func(n ast.Node, source []byte, entering bool) (ast.WalkStatus, error)

// Walk traverses the tree rooted at n depth-first. The document of a grid
// table cell is visited after entering the cell and before its children, if
// any.
//
// The walker may rewrite the tree below the node it is entering, but not the
// siblings of that node.
func Walk(n ast.Node, source []byte, fn Walker) error {
	_, err := walk(n, source, fn)
	return err
}

func walk(n ast.Node, source []byte, fn Walker) (ast.WalkStatus, error) {
	status, err := fn(n, source, true)
	if err != nil || status == ast.WalkStop {
		return ast.WalkStop, err
	}
	if status != ast.WalkSkipChildren {
		if cell, ok := n.(*gridtable.Cell); ok && cell.Doc != nil {
			if st, err := walk(cell.Doc, cell.Source, fn); err != nil || st == ast.WalkStop {
				return ast.WalkStop, err
			}
		}
		for c := n.FirstChild(); c != nil; {
			next := c.NextSibling()
			if st, err := walk(c, source, fn); err != nil || st == ast.WalkStop {
				return ast.WalkStop, err
			}
			c = next
		}
	}
	status, err = fn(n, source, false)
	if err != nil || status == ast.WalkStop {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

type located struct {
	node   ast.Node
	source []byte
}

// Collects all nodes for which pred returns true. Passes use this to avoid
// rewriting the tree while walking it.
func collect(n ast.Node, source []byte, pred func(ast.Node) bool) []located {
	var found []located
	Walk(n, source, func(n ast.Node, source []byte, entering bool) (ast.WalkStatus, error) {
		if entering && pred(n) {
			found = append(found, located{n, source})
		}
		return ast.WalkContinue, nil
	})
	return found
}
