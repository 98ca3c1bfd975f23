// Package remote runs comma repair behind a local HTTP endpoint and talks to
// such an endpoint from a separate process.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// ContentType is the only content type exchanged with the server.
const ContentType = "text/plain; charset=utf-8"

// DefaultMaxBody is the largest request body the server accepts.
const DefaultMaxBody = 16 << 20

const shutdownTimeout = 5 * time.Second

// Handshake kinds.
const (
	KindStarted = "started"
	KindError   = "error"
)

// Handshake is the single JSON line a server prints when it starts.
type Handshake struct {
	Kind  string `json:"kind"`
	Addr  string `json:"addr,omitempty"`
	Host  string `json:"host,omitempty"`
	Port  int    `json:"port,omitempty"`
	Error string `json:"error,omitempty"`
}

// Server repairs POSTed text.
type Server struct {
	// Host and Port to listen on. Port 0 picks a free port.
	Host string
	Port int

	// Grammar used by every repair.
	Grammar comma.Grammar

	// MaxBody limits request size. Zero means DefaultMaxBody.
	MaxBody int64

	Logger *log.Logger
}

// NewServer creates a server with the default grammar.
func NewServer(host string, port int) *Server {
	return &Server{
		Host:    host,
		Port:    port,
		Grammar: comma.DefaultGrammar(),
		MaxBody: DefaultMaxBody,
		Logger:  logging.Default(),
	}
}

// Run listens, writes the handshake line to out, and serves until ctx is
// cancelled. A listen failure is reported both as an error handshake and as
// the returned error.
func (s *Server) Run(ctx context.Context, out io.Writer) error {
	logger := s.logger()

	listener, err := net.Listen("tcp", net.JoinHostPort(s.Host, strconv.Itoa(s.Port)))
	if err != nil {
		_ = writeHandshake(out, Handshake{Kind: KindError, Error: err.Error()})
		return fmt.Errorf("listen: %w", err)
	}

	addr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		_ = listener.Close()
		return fmt.Errorf("listen: unexpected address %s", listener.Addr())
	}
	hs := Handshake{
		Kind: KindStarted,
		Addr: net.JoinHostPort(s.Host, strconv.Itoa(addr.Port)),
		Host: s.Host,
		Port: addr.Port,
	}
	if err := writeHandshake(out, hs); err != nil {
		_ = listener.Close()
		return err
	}
	logger.Info("server started", logging.FieldAddr, hs.Addr)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped", logging.FieldAddr, hs.Addr)
	return nil
}

// Handler returns the HTTP handler. Any path is accepted. Each request gets
// its own engine and a logger scoped to the caller's address.
func (s *Server) Handler() http.Handler {
	maxBody := s.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	repair := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromContext(r.Context())

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "only POST is allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		buf := textbuf.New(body)
		engine := comma.New(oracle.NewTokenizer(), s.Grammar, comma.WithLogger(logger))
		result, err := engine.Repair(comma.Request{Buffer: buf})
		if err != nil {
			logger.Error("repair failed", logging.FieldError, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Debug("repaired request", logging.FieldEdits, len(result.Edits), logging.FieldBytes, len(body))

		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped := s.logger().With(logging.FieldAddr, r.RemoteAddr)
		repair.ServeHTTP(w, r.WithContext(logging.WithLogger(r.Context(), scoped)))
	})
}

func (s *Server) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Default()
}

func writeHandshake(out io.Writer, hs Handshake) error {
	line, err := json.Marshal(hs)
	if err != nil {
		return fmt.Errorf("encode handshake: %w", err)
	}
	if _, err := out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write handshake: %w", err)
	}
	return nil
}
