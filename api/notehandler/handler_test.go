package notehandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/counters"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/cryptoutils"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/noteid"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/notestore"
)

type fakeUsage struct {
	mu      sync.Mutex
	created int64
	read    int64
}

func (u *fakeUsage) RecordCreated() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.created++
}

func (u *fakeUsage) RecordRead() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.read++
}

func (u *fakeUsage) Totals() counters.Totals {
	u.mu.Lock()
	defer u.mu.Unlock()
	return counters.Totals{TotalCreated: u.created, TotalRead: u.read}
}

// MockNoteStore implements interfaces.NoteStore for testing
type MockNoteStore struct {
	mock.Mock
}

func (m *MockNoteStore) Put(ctx context.Context, envelope string) (interfaces.NoteID, error) {
	args := m.Called(ctx, envelope)
	return args.Get(0).(interfaces.NoteID), args.Error(1)
}

func (m *MockNoteStore) TakeOnce(ctx context.Context, id interfaces.NoteID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockNoteStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockNoteStore) Name() string { return "mock" }
func (m *MockNoteStore) Close() error { return nil }

type failingBackend struct{}

func (failingBackend) Fetch(ctx context.Context, key interfaces.RecordKey) ([]byte, error) {
	return nil, interfaces.ErrBackendUnavailable
}

func (failingBackend) Store(ctx context.Context, key interfaces.RecordKey, data []byte) error {
	return errors.New("disk full")
}

func (failingBackend) Available(ctx context.Context) bool { return false }
func (failingBackend) Name() string                      { return "failing" }
func (failingBackend) LocationURI() string               { return "failing://" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(store interfaces.NoteStore, usage UsageRecorder) *chi.Mux {
	handler := NewHandler(store, noteid.DefaultGenerator(), usage, testLogger())
	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return mux
}

func newMemoryMux() (*chi.Mux, *notestore.MemoryStore, *fakeUsage) {
	store := notestore.NewMemoryStore(noteid.DefaultGenerator(), testLogger())
	usage := &fakeUsage{}
	return newTestMux(store, usage), store, usage
}

func serve(mux http.Handler, method, path, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w.Result()
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
}

func assertError(t *testing.T, resp *http.Response, status int, msg string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var errResp api.ErrorResponse
	decodeBody(t, resp, &errResp)
	assert.Equal(t, msg, errResp.Error)
}

func TestNoteLifecycle(t *testing.T) {
	mux, _, usage := newMemoryMux()

	env, key, err := cryptoutils.Encrypt([]byte("hello"), nil)
	require.NoError(t, err)

	body, err := json.Marshal(api.CreateNoteRequest{EncryptedPayload: env.String()})
	require.NoError(t, err)

	resp := serve(mux, http.MethodPost, "/notes", string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var created api.CreateNoteResponse
	decodeBody(t, resp, &created)
	assert.Len(t, created.ID, noteid.DefaultLength)

	resp = serve(mux, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var read api.ReadNoteResponse
	decodeBody(t, resp, &read)
	assert.Equal(t, env.String(), read.EncryptedPayload)

	parsed, err := cryptoutils.ParseEnvelope(read.EncryptedPayload)
	require.NoError(t, err)
	plaintext, err := cryptoutils.Decrypt(parsed, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))

	// Second read is indistinguishable from a note that never existed.
	resp = serve(mux, http.MethodGet, "/notes/"+created.ID, "")
	assertError(t, resp, http.StatusNotFound, api.ErrMsgNoteNotFound)

	assert.Equal(t, counters.Totals{TotalCreated: 1, TotalRead: 1}, usage.Totals())
}

func TestHandleCreateNote_InvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{name: "empty body", body: "", msg: api.ErrMsgInvalidJSON},
		{name: "not json", body: "encryptedPayload=abc", msg: api.ErrMsgInvalidJSON},
		{name: "array", body: `["abc"]`, msg: api.ErrMsgInvalidJSON},
		{name: "missing payload", body: `{}`, msg: api.ErrMsgPayloadRequired},
		{name: "empty payload", body: `{"encryptedPayload":""}`, msg: api.ErrMsgPayloadRequired},
		{name: "null payload", body: `{"encryptedPayload":null}`, msg: api.ErrMsgPayloadRequired},
		{name: "numeric payload", body: `{"encryptedPayload":42}`, msg: api.ErrMsgPayloadRequired},
		{name: "object payload", body: `{"encryptedPayload":{"a":1}}`, msg: api.ErrMsgPayloadRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, store, usage := newMemoryMux()

			resp := serve(mux, http.MethodPost, "/notes", tt.body)
			assertError(t, resp, http.StatusBadRequest, tt.msg)

			count, err := store.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
			assert.Zero(t, usage.Totals().TotalCreated)
		})
	}
}

func TestHandleCreateNote_TooLarge(t *testing.T) {
	mux, store, _ := newMemoryMux()

	body := `{"encryptedPayload":"` + strings.Repeat("a", api.MaxRequestBodyBytes) + `"}`
	resp := serve(mux, http.MethodPost, "/notes", body)
	assertError(t, resp, http.StatusRequestEntityTooLarge, api.ErrMsgPayloadTooLarge)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandleCreateNote_StoreFailure(t *testing.T) {
	store := &MockNoteStore{}
	store.On("Put", mock.Anything, "nonce.ct").Return(interfaces.NoteID(""), notestore.ErrIdentifierExhausted)
	usage := &fakeUsage{}

	resp := serve(newTestMux(store, usage), http.MethodPost, "/notes", `{"encryptedPayload":"nonce.ct"}`)
	assertError(t, resp, http.StatusInternalServerError, api.ErrMsgInternal)

	assert.Zero(t, usage.Totals().TotalCreated)
	store.AssertExpectations(t)
}

func TestHandleReadNote_NotFoundIsUniform(t *testing.T) {
	mux, _, usage := newMemoryMux()

	for _, id := range []string{
		"0123456789abcdef", // well-formed, never issued
		"short",
		"UPPERCASEIDENTIF",
		"0123456789abcdef0",
	} {
		t.Run(id, func(t *testing.T) {
			resp := serve(mux, http.MethodGet, "/notes/"+id, "")
			assertError(t, resp, http.StatusNotFound, api.ErrMsgNoteNotFound)
		})
	}
	assert.Zero(t, usage.Totals().TotalRead)
}

func TestHandleReadNote_MalformedIDNeverReachesStore(t *testing.T) {
	store := &MockNoteStore{}
	resp := serve(newTestMux(store, &fakeUsage{}), http.MethodGet, "/notes/not-an-id", "")
	assertError(t, resp, http.StatusNotFound, api.ErrMsgNoteNotFound)
	store.AssertNotCalled(t, "TakeOnce", mock.Anything, mock.Anything)
}

func TestHandleReadNote_StoreFailure(t *testing.T) {
	id := interfaces.NoteID("0123456789abcdef")
	store := &MockNoteStore{}
	store.On("TakeOnce", mock.Anything, id).Return("", errors.New("connection reset"))

	resp := serve(newTestMux(store, &fakeUsage{}), http.MethodGet, "/notes/"+id.String(), "")
	assertError(t, resp, http.StatusInternalServerError, api.ErrMsgInternal)
	store.AssertExpectations(t)
}

func TestHandleStats(t *testing.T) {
	mux, _, _ := newMemoryMux()

	var ids []string
	for i := 0; i < 3; i++ {
		resp := serve(mux, http.MethodPost, "/notes", `{"encryptedPayload":"nonce.ct"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var created api.CreateNoteResponse
		decodeBody(t, resp, &created)
		ids = append(ids, created.ID)
	}

	resp := serve(mux, http.MethodGet, "/notes/"+ids[0], "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = serve(mux, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var stats api.StatsResponse
	decodeBody(t, resp, &stats)
	assert.Equal(t, api.StatsResponse{TotalCreated: 3, TotalRead: 1, CurrentlyStored: 2}, stats)
}

func TestHandleStats_CountFailure(t *testing.T) {
	store := &MockNoteStore{}
	store.On("Count", mock.Anything).Return(0, errors.New("database is locked"))

	resp := serve(newTestMux(store, &fakeUsage{}), http.MethodGet, "/stats", "")
	assertError(t, resp, http.StatusInternalServerError, api.ErrMsgInternal)
}

func TestCounterFaultDoesNotAffectResponses(t *testing.T) {
	usage, err := counters.Load(context.Background(), failingBackend{}, testLogger())
	require.NoError(t, err)
	require.Error(t, usage.Flush(context.Background()))

	store := notestore.NewMemoryStore(noteid.DefaultGenerator(), testLogger())
	mux := newTestMux(store, usage)

	resp := serve(mux, http.MethodPost, "/notes", `{"encryptedPayload":"nonce.ct"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created api.CreateNoteResponse
	decodeBody(t, resp, &created)

	resp = serve(mux, http.MethodGet, "/notes/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, counters.Totals{TotalCreated: 1, TotalRead: 1}, usage.Totals())
}

func TestConcurrentReadsHaveOneWinner(t *testing.T) {
	mux, _, usage := newMemoryMux()

	resp := serve(mux, http.MethodPost, "/notes", `{"encryptedPayload":"nonce.ct"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created api.CreateNoteResponse
	decodeBody(t, resp, &created)

	const readers = 20
	statuses := make(chan int, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := serve(mux, http.MethodGet, "/notes/"+created.ID, "")
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[int]int{}
	for status := range statuses {
		counts[status]++
	}
	assert.Equal(t, map[int]int{http.StatusOK: 1, http.StatusNotFound: readers - 1}, counts)
	assert.Equal(t, int64(1), usage.Totals().TotalRead)
}

func TestHandleReadNote_IDFromEarlierLength(t *testing.T) {
	// Issued while the server ran with a shorter id length.
	id := interfaces.NoteID("k3v9q0x2mz")
	store := &MockNoteStore{}
	store.On("TakeOnce", mock.Anything, id).Return("nonce.ct", nil)
	usage := &fakeUsage{}

	resp := serve(newTestMux(store, usage), http.MethodGet, "/notes/"+id.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.ReadNoteResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "nonce.ct", body.EncryptedPayload)
	assert.Equal(t, int64(1), usage.Totals().TotalRead)
	store.AssertExpectations(t)
}
