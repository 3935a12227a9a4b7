package lsp

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/md"
	. "src.mdgrid.dev/pkg/tt"
)

type client struct {
	*jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) client {
	ctx := context.Background()
	clientSide, serverSide := net.Pipe()
	serverConn := Serve(ctx, serverSide, gridtable.DefaultOptions())
	diags := make(chan lsp.PublishDiagnosticsParams, 10)
	clientConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
				var params lsp.PublishDiagnosticsParams
				if err := json.Unmarshal(*req.Params, &params); err == nil {
					diags <- params
				}
			}
			return nil, nil
		}))
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return client{clientConn, diags}
}

func (c client) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if err := c.Call(context.Background(), method, params, result); err != nil {
		t.Fatalf("call %s: %v", method, err)
	}
}

func (c client) notify(t *testing.T, method string, params any) {
	t.Helper()
	if err := c.Notify(context.Background(), method, params); err != nil {
		t.Fatalf("notify %s: %v", method, err)
	}
}

func (c client) nextDiags(t *testing.T) lsp.PublishDiagnosticsParams {
	t.Helper()
	select {
	case d := <-c.diags:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return lsp.PublishDiagnosticsParams{}
	}
}

const uri = lsp.DocumentURI("file:///a.md")

var badTable = "# a\n\n+---+\n| a\n+---+\n\n* b\n"

func TestServer(t *testing.T) {
	c := setup(t)

	var init lsp.InitializeResult
	c.call(t, "initialize", lsp.InitializeParams{}, &init)
	if !init.Capabilities.DocumentFormattingProvider {
		t.Errorf("server does not advertise formatting")
	}

	c.notify(t, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: badTable}})
	wantDiags := lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: []lsp.Diagnostic{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 2, Character: 0},
			End:   lsp.Position{Line: 5, Character: 0}},
		Severity: lsp.Warning,
		Source:   "gridtable",
		Message:  gridtable.ErrUnclosedRow.Error(),
	}}}
	if diff := cmp.Diff(wantDiags, c.nextDiags(t)); diff != "" {
		t.Errorf("diagnostics after didOpen (-want +got):\n%s", diff)
	}

	var edits []lsp.TextEdit
	c.call(t, "textDocument/formatting", lsp.DocumentFormattingParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}}, &edits)
	formatted := md.RenderString(badTable, &md.FmtCodec{Table: gridtable.DefaultOptions()})
	wantEdits := []lsp.TextEdit{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 0, Character: 0},
			End:   lsp.Position{Line: 7, Character: 0}},
		NewText: formatted,
	}}
	if diff := cmp.Diff(wantEdits, edits); diff != "" {
		t.Errorf("formatting edits (-want +got):\n%s", diff)
	}

	c.notify(t, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: formatted}}})
	if d := c.nextDiags(t); len(d.Diagnostics) != 0 {
		t.Errorf("got diagnostics %v after formatting, want none", d.Diagnostics)
	}

	c.call(t, "textDocument/formatting", lsp.DocumentFormattingParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}}, &edits)
	if len(edits) != 0 {
		t.Errorf("got edits %v for formatted document, want none", edits)
	}

	c.notify(t, "textDocument/didClose", lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}})
	if d := c.nextDiags(t); d.URI != uri || len(d.Diagnostics) != 0 {
		t.Errorf("got %v after didClose, want empty diagnostics", d)
	}
}

// A connection that only records notifications.
type notifyConn struct {
	jsonrpc2.JSONRPC2
	diags chan lsp.PublishDiagnosticsParams
}

func (c *notifyConn) Notify(_ context.Context, _ string, params any, _ ...jsonrpc2.CallOption) error {
	c.diags <- params.(lsp.PublishDiagnosticsParams)
	return nil
}

func (c *notifyConn) noMoreDiags(t *testing.T) {
	t.Helper()
	select {
	case d := <-c.diags:
		t.Errorf("got unexpected diagnostics %v", d)
	default:
	}
}

func TestServer_StaleDiagnosticsAreDropped(t *testing.T) {
	ctx := context.Background()
	s := newServer(gridtable.DefaultOptions())
	conn := &notifyConn{diags: make(chan lsp.PublishDiagnosticsParams, 10)}

	old := s.setContent(uri, badTable)
	newer := s.setContent(uri, "ok\n")
	s.publishDiagnostics(ctx, conn, uri, newer, "ok\n")
	if d := <-conn.diags; len(d.Diagnostics) != 0 {
		t.Errorf("got diagnostics %v for the newer version, want none", d.Diagnostics)
	}
	// Finishing later than the newer version must not overwrite it.
	s.publishDiagnostics(ctx, conn, uri, old, badTable)
	conn.noMoreDiags(t)

	params, _ := json.Marshal(lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri}})
	if _, err := s.didClose(ctx, conn, params); err != nil {
		t.Fatal(err)
	}
	select {
	case d := <-conn.diags:
		if len(d.Diagnostics) != 0 {
			t.Errorf("got %v after didClose, want empty diagnostics", d)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
	}
	s.publishDiagnostics(ctx, conn, uri, newer, "ok\n")
	conn.noMoreDiags(t)
}

func TestServer_UnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.Call(context.Background(), "textDocument/hover", nil, nil)
	if rpcErr, ok := err.(*jsonrpc2.Error); !ok || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestLSPPositionFromIdx(t *testing.T) {
	Test(t, Fn("lspPositionFromIdx", lspPositionFromIdx),
		Args("ab\ncd", 4).Rets(lsp.Position{Line: 1, Character: 1}),
		Args("a\r\nb", 3).Rets(lsp.Position{Line: 1, Character: 0}),
		Args("好😀x", 7).Rets(lsp.Position{Line: 0, Character: 3}),
		Args("ab", 2).Rets(lsp.Position{Line: 0, Character: 2}),
	)
}
