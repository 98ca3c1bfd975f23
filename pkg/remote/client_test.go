package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/remote"
)

func TestClientFix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
		want    string
	}{
		{
			name: "ok",
			handler: func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				w.Header().Set("Content-Type", remote.ContentType)
				_, _ = w.Write(append(body, '!'))
			},
			want: "[1]!",
		},
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", http.StatusInternalServerError)
			},
			wantErr: remote.ErrBadStatus,
		},
		{
			name: "bad content type",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte("[1]"))
			},
			wantErr: remote.ErrBadContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			client := remote.Connect(ts.Listener.Addr().String())
			require.True(t, client.IsReady())

			got, err := client.Fix(context.Background(), []byte("[1]"))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestClientUnavailable(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.Listener.Addr().String()
	ts.Close()

	_, err := remote.Connect(addr).Fix(context.Background(), []byte("[]"))
	require.ErrorIs(t, err, remote.ErrUnavailable)
}

func TestClientNotReady(t *testing.T) {
	t.Parallel()

	client := remote.NewClient("jsoncomma")
	assert.False(t, client.IsReady())
	assert.Empty(t, client.Addr())

	_, err := client.Fix(context.Background(), []byte("[]"))
	require.ErrorIs(t, err, remote.ErrNotReady)
	require.NoError(t, client.Stop())
}

// fakeServer writes an executable script that prints line and then waits.
func fakeServer(t *testing.T, line string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	path := filepath.Join(t.TempDir(), "jsoncomma")
	script := "#!/bin/sh\necho '" + line + "'\nexec sleep 30\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

//nolint:paralleltest // Spawning freshly written scripts races with parallel forks.
func TestClientLifecycle(t *testing.T) {
	exe := fakeServer(t, `{"kind":"started","addr":"localhost:4567","host":"localhost","port":4567}`)

	client := remote.NewClient(exe)
	client.Logger = log.New(io.Discard)

	require.NoError(t, client.Start(context.Background()))
	assert.True(t, client.IsReady())
	assert.Equal(t, "localhost:4567", client.Addr())
	require.ErrorIs(t, client.Start(context.Background()), remote.ErrAlreadyStarted)

	require.NoError(t, client.Stop())
	assert.False(t, client.IsReady())
	require.NoError(t, client.Stop())
}

//nolint:paralleltest // Spawning freshly written scripts races with parallel forks.
func TestClientBadHandshake(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "not json", line: "hello"},
		{name: "error kind", line: `{"kind":"error","error":"address in use"}`},
		{name: "missing port", line: `{"kind":"started","addr":"localhost:1","host":"localhost"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := remote.NewClient(fakeServer(t, tt.line))
			client.Logger = log.New(io.Discard)

			err := client.Start(context.Background())
			require.ErrorIs(t, err, remote.ErrBadHandshake)
			assert.False(t, client.IsReady())
		})
	}
}
