// Package lsp implements a language server for lexi source files. It reports lexical errors as
// diagnostics and answers hover, definition, references and document symbol requests based on
// the scanned tokens and symbol table.
//
// The server communicates over the base protocol using the utf-8 position encoding.
// https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification/
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/teleivo/lexi/internal/version"
	"github.com/teleivo/lexi/lsp/internal/diagnostic"
	"github.com/teleivo/lexi/lsp/internal/hover"
	"github.com/teleivo/lexi/lsp/internal/navigate"
	"github.com/teleivo/lexi/lsp/internal/rpc"
)

// Config configures the language server.
type Config struct {
	Debug bool      // enable debug logging
	In    io.Reader // input for client messages
	Out   io.Writer // output for server messages
	Log   io.Writer // output for logs, discarded if nil
}

// Server is a language server reading client messages from its input and writing responses and
// notifications to its output.
type Server struct {
	in        io.Reader
	out       *rpc.Writer
	logger    *slog.Logger
	state     state
	documents map[rpc.DocumentURI]*document
}

type state int

const (
	uninitialized state = iota
	initialized
	shuttingDown
)

// New creates a language server.
func New(cfg Config) (*Server, error) {
	if cfg.In == nil {
		return nil, errors.New("no input configured")
	}
	if cfg.Out == nil {
		return nil, errors.New("no output configured")
	}
	log := cfg.Log
	if log == nil {
		log = io.Discard
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	srv := &Server{
		in:        cfg.In,
		out:       rpc.NewWriter(cfg.Out),
		logger:    slog.New(slog.NewTextHandler(log, &slog.HandlerOptions{Level: level})),
		documents: make(map[rpc.DocumentURI]*document),
	}
	return srv, nil
}

// Start serves client messages until the input ends, the client sends the exit notification or
// the context is done. It returns an error if reading the input or writing to the output fails.
func (srv *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.serve()
	}()

	select {
	case <-ctx.Done():
		srv.logger.Debug("shutting down", "cause", context.Cause(ctx))
		return nil
	case err := <-errc:
		return err
	}
}

func (srv *Server) serve() error {
	s := rpc.NewScanner(srv.in)
	for s.Scan() {
		srv.logger.Debug("received", "msg", s.Text())

		exit, err := srv.handle(s.Bytes())
		if err != nil {
			return err
		}
		if exit {
			srv.logger.Debug("exit")
			return nil
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}
	return nil
}

// handle handles a single message. It reports whether the server should exit. Errors are only
// returned if the server cannot write to its output.
func (srv *Server) handle(content []byte) (bool, error) {
	var msg rpc.Message
	if err := json.Unmarshal(content, &msg); err != nil {
		srv.logger.Debug("invalid JSON", "err", err)
		return false, srv.write(rpc.ErrorResponse(nil, rpc.ParseError, "invalid JSON"))
	}

	if msg.Method == "exit" {
		return true, nil
	}

	switch srv.state {
	case uninitialized:
		if msg.Method == "initialize" {
			srv.state = initialized
			return false, srv.respond(msg.ID, initializeResult())
		}
		if msg.IsRequest() {
			return false, srv.write(rpc.ErrorResponse(msg.ID, rpc.ServerNotInitialized, "server not initialized"))
		}
		srv.logger.Debug("dropping notification before initialize", "method", msg.Method)
		return false, nil
	case shuttingDown:
		if msg.IsRequest() {
			return false, srv.write(rpc.ErrorResponse(msg.ID, rpc.InvalidRequest, "server is shutting down"))
		}
		srv.logger.Debug("dropping notification after shutdown", "method", msg.Method)
		return false, nil
	}

	if msg.IsRequest() {
		return false, srv.handleRequest(msg)
	}
	return false, srv.handleNotification(msg)
}

func initializeResult() rpc.InitializeResult {
	return rpc.InitializeResult{
		Capabilities: rpc.ServerCapabilities{
			DefinitionProvider:     true,
			DocumentSymbolProvider: true,
			HoverProvider:          true,
			PositionEncoding:       "utf-8",
			ReferencesProvider:     true,
			TextDocumentSync:       rpc.SyncIncremental,
		},
		ServerInfo: rpc.ServerInfo{
			Name:    "lexils",
			Version: version.Version(),
		},
	}
}

func (srv *Server) handleRequest(msg rpc.Message) error {
	switch msg.Method {
	case "initialize":
		return srv.write(rpc.ErrorResponse(msg.ID, rpc.InvalidRequest, "server already initialized"))
	case "shutdown":
		srv.state = shuttingDown
		return srv.respond(msg.ID, nil)
	case "textDocument/hover":
		var params rpc.TextDocumentPositionParams
		if err := decode(msg, &params); err != nil {
			return srv.invalidParams(msg, err)
		}
		doc, ok := srv.document(params.TextDocument.URI)
		if !ok {
			return srv.respond(msg.ID, nil)
		}
		pos := doc.file.TokenPosition(params.Position)
		return srv.respond(msg.ID, hover.Info(doc.file, doc.result, pos))
	case "textDocument/definition":
		var params rpc.TextDocumentPositionParams
		if err := decode(msg, &params); err != nil {
			return srv.invalidParams(msg, err)
		}
		doc, ok := srv.document(params.TextDocument.URI)
		if !ok {
			return srv.respond(msg.ID, nil)
		}
		pos := doc.file.TokenPosition(params.Position)
		return srv.respond(msg.ID, navigate.Definition(doc.file, doc.result, doc.uri, pos))
	case "textDocument/references":
		var params rpc.ReferenceParams
		if err := decode(msg, &params); err != nil {
			return srv.invalidParams(msg, err)
		}
		doc, ok := srv.document(params.TextDocument.URI)
		if !ok {
			return srv.respond(msg.ID, nil)
		}
		pos := doc.file.TokenPosition(params.Position)
		return srv.respond(msg.ID, navigate.References(doc.file, doc.result, doc.uri, pos, params.Context.IncludeDeclaration))
	case "textDocument/documentSymbol":
		var params rpc.DocumentSymbolParams
		if err := decode(msg, &params); err != nil {
			return srv.invalidParams(msg, err)
		}
		doc, ok := srv.document(params.TextDocument.URI)
		if !ok {
			return srv.respond(msg.ID, nil)
		}
		return srv.respond(msg.ID, navigate.DocumentSymbols(doc.file, doc.result))
	default:
		return srv.write(rpc.ErrorResponse(msg.ID, rpc.MethodNotFound, "method not found"))
	}
}

func (srv *Server) handleNotification(msg rpc.Message) error {
	switch msg.Method {
	case "initialized":
	case "textDocument/didOpen":
		var params rpc.DidOpenTextDocumentParams
		if err := decode(msg, &params); err != nil {
			srv.logger.Error("invalid params", "method", msg.Method, "err", err)
			return nil
		}
		doc := newDocument(params.TextDocument)
		srv.documents[doc.uri] = doc
		return srv.publishDiagnostics(doc)
	case "textDocument/didChange":
		var params rpc.DidChangeTextDocumentParams
		if err := decode(msg, &params); err != nil {
			srv.logger.Error("invalid params", "method", msg.Method, "err", err)
			return nil
		}
		doc, ok := srv.document(params.TextDocument.URI)
		if !ok {
			return nil
		}
		if err := doc.apply(params.TextDocument.Version, params.ContentChanges); err != nil {
			srv.logger.Error("failed to apply changes", "uri", doc.uri, "version", params.TextDocument.Version, "err", err)
			return nil
		}
		return srv.publishDiagnostics(doc)
	case "textDocument/didClose":
		var params rpc.DidCloseTextDocumentParams
		if err := decode(msg, &params); err != nil {
			srv.logger.Error("invalid params", "method", msg.Method, "err", err)
			return nil
		}
		delete(srv.documents, params.TextDocument.URI)
	case "textDocument/didSave":
	default:
		srv.logger.Debug("dropping unknown notification", "method", msg.Method)
	}
	return nil
}

func (srv *Server) document(uri rpc.DocumentURI) (*document, bool) {
	doc, ok := srv.documents[uri]
	if !ok {
		srv.logger.Warn("document is not open", "uri", uri)
	}
	return doc, ok
}

func (srv *Server) publishDiagnostics(doc *document) error {
	params := diagnostic.Compute(doc.file, doc.result, doc.uri, doc.version)
	msg, err := rpc.Notification("textDocument/publishDiagnostics", params)
	if err != nil {
		return err
	}
	srv.logger.Debug("publish diagnostics", "uri", doc.uri, "version", doc.version, "count", len(params.Diagnostics))
	return srv.write(msg)
}

func (srv *Server) respond(id *rpc.ID, result any) error {
	msg, err := rpc.Response(id, result)
	if err != nil {
		srv.logger.Error("failed to create response", "id", id, "err", err)
		return srv.write(rpc.ErrorResponse(id, rpc.InternalError, err.Error()))
	}
	return srv.write(msg)
}

func (srv *Server) invalidParams(msg rpc.Message, err error) error {
	srv.logger.Debug("invalid params", "method", msg.Method, "id", msg.ID, "err", err)
	return srv.write(rpc.ErrorResponse(msg.ID, rpc.InvalidParams, "invalid params"))
}

func (srv *Server) write(msg rpc.Message) error {
	if err := srv.out.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func decode(msg rpc.Message, v any) error {
	if msg.Params == nil {
		return errors.New("missing params")
	}
	return json.Unmarshal(*msg.Params, v)
}
