package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer_ExposesCollectors(t *testing.T) {
	ms, err := New("")
	require.NoError(t, err)

	NotesCreated.Inc()

	w := httptest.NewRecorder()
	ms.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "myprivatenote_notes_created_total")
	assert.Contains(t, string(body), "myprivatenote_build_info")
}

func TestMetricsServer_MultipleInstances(t *testing.T) {
	_, err := New("")
	require.NoError(t, err)
	_, err = New("")
	require.NoError(t, err)
}
