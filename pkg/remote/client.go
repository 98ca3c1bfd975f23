package remote

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/internal/logging"
)

// Client errors.
var (
	ErrNotReady       = errors.New("remote server is not running")
	ErrAlreadyStarted = errors.New("remote server already started")
	ErrBadHandshake   = errors.New("invalid server handshake")
	ErrUnavailable    = errors.New("remote server unavailable")
	ErrBadStatus      = errors.New("unexpected response status")
	ErrBadContentType = errors.New("unexpected response content type")
)

// DefaultTimeout bounds the handshake and each request.
const DefaultTimeout = 10 * time.Second

// stopGrace is how long Stop waits after an interrupt before killing.
const stopGrace = time.Second

// Client owns one server process and the address it listens on.
type Client struct {
	// Executable is the jsoncomma binary to run.
	Executable string

	// Timeout bounds the handshake and each Fix call.
	Timeout time.Duration

	// Stderr receives the server's log output. Nil discards it.
	Stderr io.Writer

	Logger *log.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan error
	info   *Handshake
	http   *http.Client
}

// NewClient creates a client for the given executable. Nothing runs until Start.
func NewClient(executable string) *Client {
	return &Client{
		Executable: executable,
		Timeout:    DefaultTimeout,
		Logger:     logging.Default(),
	}
}

// Connect creates a client for a server that is already listening on addr.
// Stop on such a client only forgets the address.
func Connect(addr string) *Client {
	client := NewClient("")
	client.info = &Handshake{Kind: KindStarted, Addr: addr}
	return client
}

// Start spawns the server and waits for its handshake line.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.info != nil {
		return ErrAlreadyStarted
	}

	//nolint:gosec // The executable comes from trusted configuration.
	cmd := exec.Command(c.Executable, "server", "--host", "localhost", "--port", "0")
	cmd.Stderr = c.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("start %s: %w", c.Executable, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.Executable, err)
	}

	exited := make(chan error, 1)
	lines := make(chan []byte, 1)
	go func() {
		reader := bufio.NewReader(stdout)
		line, _ := reader.ReadBytes('\n')
		lines <- line
		// Keep the pipe drained so the server never blocks on stdout.
		_, _ = io.Copy(io.Discard, reader)
		exited <- cmd.Wait()
	}()

	timer := time.NewTimer(c.timeout())
	defer timer.Stop()

	var line []byte
	select {
	case line = <-lines:
	case <-timer.C:
		kill(cmd, exited)
		return fmt.Errorf("%w: no handshake after %s", ErrBadHandshake, c.timeout())
	case <-ctx.Done():
		kill(cmd, exited)
		return ctx.Err()
	}

	info, err := parseHandshake(line)
	if err != nil {
		kill(cmd, exited)
		return err
	}

	c.cmd = cmd
	c.exited = exited
	c.info = info
	c.logger().Debug("remote server started", logging.FieldAddr, info.Addr, logging.FieldExecutable, c.Executable)
	return nil
}

// Stop interrupts the server, waits up to a second, then kills it.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd, exited := c.cmd, c.exited
	c.cmd, c.exited, c.info = nil, nil, nil
	if cmd == nil {
		return nil
	}

	if runtime.GOOS == "windows" || cmd.Process.Signal(os.Interrupt) != nil {
		kill(cmd, exited)
		return nil
	}

	select {
	case <-exited:
	case <-time.After(stopGrace):
		c.logger().Warn("remote server did not stop, killing it", logging.FieldExecutable, cmd.Path)
		kill(cmd, exited)
	}
	return nil
}

// IsReady reports whether the client has a server address to talk to.
func (c *Client) IsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info != nil
}

// Addr returns the server address, or "" when not ready.
func (c *Client) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.info == nil {
		return ""
	}
	return c.info.Addr
}

// Fix sends text to the server and returns the repaired text. Failures never
// fall back to the input: callers keep their original text on error.
func (c *Client) Fix(ctx context.Context, text []byte) ([]byte, error) {
	addr := c.Addr()
	if addr == "" {
		return nil, ErrNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/", bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrBadStatus, resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); got != ContentType {
		return nil, fmt.Errorf("%w: got %q, expected %q", ErrBadContentType, got, ContentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, nil
}

func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c.http
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Default()
}

func parseHandshake(line []byte) (*Handshake, error) {
	var info Handshake
	if err := json.Unmarshal(bytes.TrimSpace(line), &info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadHandshake, err)
	}
	if info.Kind == KindError {
		return nil, fmt.Errorf("%w: server failed: %s", ErrBadHandshake, info.Error)
	}
	switch {
	case info.Addr == "":
		return nil, fmt.Errorf("%w: missing addr", ErrBadHandshake)
	case info.Host == "":
		return nil, fmt.Errorf("%w: missing host", ErrBadHandshake)
	case info.Port == 0:
		return nil, fmt.Errorf("%w: missing port", ErrBadHandshake)
	}
	return &info, nil
}

func kill(cmd *exec.Cmd, exited <-chan error) {
	_ = cmd.Process.Kill()
	<-exited
}
