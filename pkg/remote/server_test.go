package remote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/remote"
)

func quietServer() *remote.Server {
	srv := remote.NewServer("localhost", 0)
	srv.Logger = log.New(io.Discard)
	return srv
}

func TestHandler(t *testing.T) {
	t.Parallel()

	srv := quietServer()
	srv.MaxBody = 64
	handler := srv.Handler()

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "repairs text", method: http.MethodPost, body: `[{"a":1,}{"b":2}]`, wantStatus: http.StatusOK, wantBody: `[{"a":1},{"b":2}]`},
		{name: "valid text unchanged", method: http.MethodPost, body: `{"a": [1, 2]}`, wantStatus: http.StatusOK, wantBody: `{"a": [1, 2]}`},
		{name: "empty body", method: http.MethodPost, body: ``, wantStatus: http.StatusOK, wantBody: ``},
		{name: "get rejected", method: http.MethodGet, wantStatus: http.StatusMethodNotAllowed},
		{name: "body too large", method: http.MethodPost, body: strings.Repeat(" ", 65), wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, remote.ContentType, rec.Header().Get("Content-Type"))
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

// syncBuffer is a bytes.Buffer safe to read while the server writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestServerRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- quietServer().Run(ctx, out)
	}()

	require.Eventually(t, func() bool {
		return strings.HasSuffix(out.String(), "\n")
	}, 5*time.Second, 10*time.Millisecond)

	var hs remote.Handshake
	require.NoError(t, json.Unmarshal([]byte(out.String()), &hs))
	assert.Equal(t, remote.KindStarted, hs.Kind)
	assert.Equal(t, "localhost", hs.Host)
	assert.NotZero(t, hs.Port)
	assert.NotEmpty(t, hs.Addr)

	client := remote.Connect(hs.Addr)
	fixed, err := client.Fix(context.Background(), []byte(`["a" "b",]`))
	require.NoError(t, err)
	assert.Equal(t, `["a", "b"]`, string(fixed))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerRunListenError(t *testing.T) {
	t.Parallel()

	srv := quietServer()
	srv.Port = -1

	var out bytes.Buffer
	err := srv.Run(context.Background(), &out)
	require.Error(t, err)

	var hs remote.Handshake
	require.NoError(t, json.Unmarshal(out.Bytes(), &hs))
	assert.Equal(t, remote.KindError, hs.Kind)
	assert.NotEmpty(t, hs.Error)
}
