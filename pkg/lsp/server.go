package lsp

import (
	"context"
	"encoding/json"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.mdgrid.dev/pkg/diag"
	"src.mdgrid.dev/pkg/gridtable"
	"src.mdgrid.dev/pkg/logutil"
	"src.mdgrid.dev/pkg/md"
)

var logger = logutil.GetLogger("[lsp] ")

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	layout gridtable.Options

	// Diagnostics are published from separate goroutines, so content is
	// protected by a mutex.
	mu      sync.Mutex
	content map[lsp.DocumentURI]string
	// Bumped on every open, change and close of a document. Diagnostics of an
	// older version are never published.
	versions map[lsp.DocumentURI]int

	publishMu sync.Mutex
}

func newServer(layout gridtable.Options) *server {
	return &server{layout: layout,
		content:  make(map[lsp.DocumentURI]string),
		versions: make(map[lsp.DocumentURI]int)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":              s.initialize,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/formatting": s.formatting,

		"shutdown": noop,
		// Required by spec.
		"initialized": noop,
		// Called by clients even when server doesn't advertise support:
		// https://microsoft.github.io/language-server-protocol/specification#workspace_didChangeWatchedFiles
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Handler implementations. These are all called synchronously.

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			DocumentFormattingProvider: true,
		},
	}, nil
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	version := s.setContent(uri, content)
	go s.publishDiagnostics(ctx, conn, uri, version, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// ContentChanges includes full text since the server is only advertised to
	// support that; see the initialize method.
	uri, content := params.TextDocument.URI, params.ContentChanges[0].Text
	version := s.setContent(uri, content)
	go s.publishDiagnostics(ctx, conn, uri, version, content)
	return nil, nil
}

func (s *server) didClose(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.content, uri)
	s.versions[uri]++
	version := s.versions[uri]
	s.mu.Unlock()
	// Clear diagnostics of the closed document.
	go s.publish(ctx, conn, uri, version, []lsp.Diagnostic{})
	return nil, nil
}

func (s *server) formatting(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DocumentFormattingParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	s.mu.Lock()
	content, ok := s.content[params.TextDocument.URI]
	s.mu.Unlock()
	if !ok {
		return []lsp.TextEdit{}, nil
	}
	return formattingEdits(content, s.layout), nil
}

// Stores the content of a document and returns its new version.
func (s *server) setContent(uri lsp.DocumentURI, content string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[uri] = content
	s.versions[uri]++
	return s.versions[uri]
}

// Returns a single edit that replaces the whole document, or no edits if the
// document is already formatted or uses unsupported features.
func formattingEdits(content string, layout gridtable.Options) []lsp.TextEdit {
	codec := &md.FmtCodec{Table: layout}
	formatted := md.RenderString(content, codec)
	if u := codec.Unsupported(); u != nil {
		logger.Printf("not formatting document with unsupported features: %+v", *u)
		return []lsp.TextEdit{}
	}
	if formatted == content {
		return []lsp.TextEdit{}
	}
	return []lsp.TextEdit{{
		Range:   lspRangeFromRange(content, diag.Whole(content)),
		NewText: formatted,
	}}
}

func (s *server) publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, version int, content string) {
	s.publish(ctx, conn, uri, version, diagnostics(content))
}

// Publishes diagnostics for a version of a document, unless the document has
// changed since. Publishing is serialized, so a client never sees older
// diagnostics after newer ones.
func (s *server) publish(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, version int, diags []lsp.Diagnostic) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.mu.Lock()
	current := s.versions[uri] == version
	s.mu.Unlock()
	if !current {
		logger.Printf("dropping diagnostics of %s version %d", uri, version)
		return
	}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diags}); err != nil {
		logger.Println("publishing diagnostics:", err)
	}
}

func diagnostics(content string) []lsp.Diagnostic {
	rejections := md.Lint([]byte(content))
	diags := make([]lsp.Diagnostic, len(rejections))
	for i, r := range rejections {
		diags[i] = lsp.Diagnostic{
			Range:    lspRangeFromRange(content, r),
			Severity: lsp.Warning,
			Source:   "gridtable",
			Message:  r.Err.Error(),
		}
	}
	return diags
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if lastCR {
				// Ignore \n if it's part of a \r\n sequence
			} else {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// Encoded in UTF-16 with one unit
			p.Character++
		default:
			// Encoded in UTF-16 with two units
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
