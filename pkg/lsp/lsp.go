// Package lsp implements a language server for Markdown with grid tables.
//
// The server keeps the content of open documents, reports blocks that look
// like grid tables but cannot be parsed as such, and formats documents.
package lsp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/prog"
)

// Program is the LSP subprogram. It serves on stdin and stdout and formats
// grid tables with the layout flags.
type Program struct {
	run    bool
	layout *gridtable.Options
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "lsp", false, "run language server instead of formatting")
	p.layout = fs.Layout()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	<-Serve(ctx, stdio{fds[0], fds[1]}, *p.layout).DisconnectNotify()
	return nil
}

// Serve starts a language server speaking JSON-RPC with LSP framing over
// rwc. Grid tables are formatted with the given layout options. The server
// stops when the returned connection is closed or rwc reaches EOF.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, layout gridtable.Options) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, handler(newServer(layout)))
}

// Joins stdin and stdout into one stream. Closing it closes both.
type stdio struct {
	io.ReadCloser
	out io.WriteCloser
}

func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	inErr := s.ReadCloser.Close()
	if err := s.out.Close(); err != nil {
		return err
	}
	return inErr
}
