package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api/notehandler"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/counters"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/noteid"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/notestore"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend, err := storage.NewFileBackend(t.TempDir(), log)
	require.NoError(t, err)
	usage, err := counters.Load(t.Context(), backend, log)
	require.NoError(t, err)

	ids := noteid.DefaultGenerator()
	handler := notehandler.NewHandler(notestore.NewMemoryStore(ids, log), ids, usage, log)
	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, server *httptest.Server, stdin string, tty bool, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	d := deps{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		client: server.Client(),
		isTTY:  func() bool { return tty },
		readPass: func(prompt string, w io.Writer) ([]byte, error) {
			_, _ = io.WriteString(w, prompt)
			return []byte(stdin), nil
		},
	}
	err := newApp(d).Run(append([]string{"notecli", "--server", server.URL}, args...))
	return stdout.String(), err
}

func TestCreateAndOpen(t *testing.T) {
	server := newTestServer(t)

	out, err := run(t, server, "hello\n", false, "create")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, server.URL+"/n/"))
	assert.Contains(t, link, "#")

	out, err = run(t, server, "", false, "open", link)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = run(t, server, "", false, "open", link)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or already read")

	out, err = run(t, server, "", false, "stats")
	require.NoError(t, err)
	assert.Equal(t, "created: 1\nread: 1\nstored: 0\n", out)
}

func TestCreate_HiddenPrompt(t *testing.T) {
	server := newTestServer(t)

	out, err := run(t, server, "typed secret", true, "create", "--origin", "https://notes.example.com")
	require.NoError(t, err)
	link := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(link, "https://notes.example.com/n/"))

	// The link points at another origin; open it against the test server.
	out, err = run(t, server, "", false, "open", link)
	require.NoError(t, err)
	assert.Equal(t, "typed secret", out)
}

func TestCreate_Empty(t *testing.T) {
	server := newTestServer(t)

	_, err := run(t, server, "", false, "create")
	assert.Error(t, err)
}

func TestOpen_InvalidLink(t *testing.T) {
	server := newTestServer(t)

	_, err := run(t, server, "", false, "open", server.URL+"/n/abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid link")

	_, err = run(t, server, "", false, "open")
	assert.Error(t, err)
}
