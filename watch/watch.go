// Package watch provides a file watcher that re-scans a source file whenever it changes.
//
// Every scan is written as a report. Optionally, the latest report is served via HTTP together
// with an SSE endpoint that notifies connected browsers about new scans.
package watch

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teleivo/lexi"
	"github.com/teleivo/lexi/report"
)

// Config configures a Watcher.
type Config struct {
	File   string        // source file to scan
	Port   string        // HTTP server port, empty disables the server (use "0" for a random available port)
	Format report.Format // format of the reports written to Stdout
	Debug  bool          // enable debug logging
	Stdout io.Writer     // output for reports and status messages
	Stderr io.Writer     // output for error logging
}

// Watcher watches a source file for changes and writes a report of every scan.
type Watcher struct {
	file   string
	format report.Format
	stdout io.Writer
	logger *slog.Logger
	server *http.Server

	mu      sync.Mutex
	result  lexi.Result
	scans   int
	changed chan struct{} // closed and replaced after every scan

	shutdown chan struct{}
	clients  sync.WaitGroup
}

//go:embed index.html
var indexHTML []byte

// New creates a Watcher for the given source file.
func New(cfg Config) (*Watcher, error) {
	_, err := os.Stat(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("file error: %v", err)
	}
	file, err := filepath.Abs(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("file error: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cfg.Stderr, &slog.HandlerOptions{Level: level}))
	wa := &Watcher{
		file:     file,
		format:   cfg.Format,
		stdout:   cfg.Stdout,
		logger:   logger,
		changed:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}

	if cfg.Port != "" {
		addr, err := netip.ParseAddrPort("127.0.0.1:" + cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q, must be in range 1-65535", cfg.Port)
		}
		wa.server = &http.Server{
			Addr:        addr.String(),
			Handler:     wa.handler(),
			ReadTimeout: 3 * time.Second,
			IdleTimeout: 120 * time.Second,
		}
	}
	return wa, nil
}

func (wa *Watcher) handler() http.Handler {
	handler := http.NewServeMux()
	handler.HandleFunc("GET /{$}", wa.handleIndex)
	handler.HandleFunc("GET /events", wa.handleEvents)
	handler.HandleFunc("GET /report", wa.handleReport)
	return handler
}

// Watch scans the file, then re-scans it on every change until the context is cancelled. It
// serves the latest report via HTTP if a port was configured.
func (wa *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %v", err)
	}
	defer fw.Close()
	// editors often save by replacing the file which drops watches on the file itself
	if err := fw.Add(filepath.Dir(wa.file)); err != nil {
		return fmt.Errorf("failed to watch %q: %v", wa.file, err)
	}

	if err := wa.scan(); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	if wa.server != nil {
		ln, err := net.Listen("tcp", wa.server.Addr)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(wa.stdout, "watching on http://%s\n", ln.Addr())

		go func() {
			if err := wa.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			wa.stop()
			return nil
		case err := <-serveErr:
			return err
		case event, ok := <-fw.Events:
			if !ok {
				wa.stop()
				return nil
			}
			if event.Name != wa.file || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			wa.logger.Debug("change detected", "op", event.Op.String())
			if err := wa.scan(); err != nil {
				wa.logger.Error("failed to scan", "file", wa.file, "error", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				wa.stop()
				return nil
			}
			wa.logger.Error("file watcher failed", "error", err)
		}
	}
}

func (wa *Watcher) stop() {
	close(wa.shutdown)
	if wa.server == nil {
		return
	}

	wa.logger.Debug("shutting down, notifying clients")
	wa.clients.Wait() // no timeout: localhost flushes complete nearly instantly
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := wa.server.Shutdown(ctxTimeout); err != nil && !errors.Is(err, context.Canceled) {
		wa.logger.Error("failed to shutdown", "error", err)
	}
}

// scan scans the file, writes the report and notifies clients about the new result.
func (wa *Watcher) scan() error {
	src, err := os.ReadFile(wa.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	result := lexi.Scan(src, lexi.WithLogger(wa.logger))
	if err := report.Write(wa.stdout, result, wa.format); err != nil {
		return err
	}

	wa.mu.Lock()
	wa.result = result
	wa.scans++
	close(wa.changed)
	wa.changed = make(chan struct{})
	scans := wa.scans
	wa.mu.Unlock()

	wa.logger.Debug("scanned", "file", wa.file, "scan", scans, "tokens", len(result.Tokens), "errors", len(result.Errors))
	return nil
}

// latest returns the latest scan result, the number of scans and a channel that is closed on the
// next scan.
func (wa *Watcher) latest() (lexi.Result, int, <-chan struct{}) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	return wa.result, wa.scans, wa.changed
}

func (wa *Watcher) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, err := w.Write(indexHTML)
	if err != nil {
		wa.logger.Error("failed to write index.html", "error", err)
	}
}

var contentTypes = map[report.Format]string{
	report.Text: "text/plain; charset=utf-8",
	report.JSON: "application/json",
	report.CBOR: "application/cbor",
}

func (wa *Watcher) handleReport(w http.ResponseWriter, r *http.Request) {
	format := report.Text
	if name := r.URL.Query().Get("format"); name != "" {
		var err error
		format, err = report.NewFormat(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, _, _ := wa.latest()
	var buf bytes.Buffer
	if err := report.Write(&buf, result, format); err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = fmt.Fprint(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if _, err := w.Write(buf.Bytes()); err != nil {
		wa.logger.Error("failed to write report", "error", err)
	}
}

func (wa *Watcher) handleEvents(w http.ResponseWriter, r *http.Request) {
	wa.clients.Add(1)
	defer wa.clients.Done()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	wa.logger.Debug("client connected")

	keepAliveTicker := time.NewTicker(15 * time.Second)
	defer keepAliveTicker.Stop()

	_, scans, changed := wa.latest()
	_, _ = fmt.Fprintf(w, "data: %d\nretry: 5000\n\n", scans)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			wa.logger.Debug("client disconnected")
			return
		case <-wa.shutdown:
			_, _ = fmt.Fprint(w, "event: close\ndata: shutdown\n\n")
			flusher.Flush()
			wa.logger.Debug("closing connection to client")
			return
		case <-keepAliveTicker.C:
			_, _ = w.Write([]byte(": keep-alive\n"))
			wa.logger.Debug("sent keep-alive")
			flusher.Flush()
		case <-changed:
			_, scans, changed = wa.latest()
			wa.logger.Debug("notifying client", "scan", scans)
			_, _ = fmt.Fprintf(w, "data: %d\nretry: 5000\n\n", scans)
			flusher.Flush()
		}
	}
}
