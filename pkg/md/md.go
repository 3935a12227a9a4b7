// Package md formats and inspects Markdown.
//
// Markdown is parsed with goldmark, extended with GFM tables, strikethrough
// and task lists, grid tables and YAML frontmatter. The parsed tree is turned
// into a stream of Op's and passed to a Codec, which builds an output from
// them. This package implements two codecs: FmtCodec, which formats Markdown
// in a fixed style, and TraceCodec, which records the Op's for debugging.
package md

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"src.mdgrid.dev/pkg/frontmatter"
	"src.mdgrid.dev/pkg/gridtable"
)

// New returns a new goldmark.Markdown with all the extensions supported by
// this package.
func New() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table, extension.Strikethrough, extension.TaskList,
			gridtable.New(), frontmatter.New()),
		goldmark.WithRendererOptions(html.WithUnsafe()))
}

var (
	defaultMarkdown     goldmark.Markdown
	defaultMarkdownOnce sync.Once
)

// Default returns a shared goldmark.Markdown built with New.
func Default() goldmark.Markdown {
	defaultMarkdownOnce.Do(func() { defaultMarkdown = New() })
	return defaultMarkdown
}

// Parse parses Markdown with the default goldmark.Markdown.
func Parse(source []byte) ast.Node {
	return Default().Parser().Parse(text.NewReader(source))
}

// Lint parses Markdown and returns the blocks that look like grid tables but
// were rejected, in source order. Blocks inside cells of grid tables are not
// checked.
func Lint(source []byte) []gridtable.Rejection {
	pc := parser.NewContext()
	Default().Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	return gridtable.Rejections(pc)
}

// ToHTML converts Markdown to HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	err := Default().Convert([]byte(source), &buf)
	return buf.String(), err
}

// Codec is used to render output.
type Codec interface {
	Do(Op)
}

// StringerCodec is a Codec that builds a string.
type StringerCodec interface {
	Codec
	String() string
}

// Render parses Markdown and renders it with a Codec.
func Render(text string, codec Codec) {
	source := []byte(text)
	RenderNode(Parse(source), source, codec)
}

// RenderString is like Render, but returns the output of the StringerCodec.
func RenderString(text string, codec StringerCodec) string {
	Render(text, codec)
	return codec.String()
}

// RenderNode renders a parsed tree with a Codec. The tree is not modified.
func RenderNode(n ast.Node, source []byte, codec Codec) {
	w := &walker{source, codec}
	w.block(n)
}
