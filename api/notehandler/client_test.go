package notehandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

func TestClient(t *testing.T) {
	mux, _, _ := newMemoryMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL+"/", server.Client())

	id, err := client.CreateNote(ctx, "nonce.ciphertext")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &api.StatsResponse{TotalCreated: 1, CurrentlyStored: 1}, stats)

	envelope, err := client.ReadNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "nonce.ciphertext", envelope)

	_, err = client.ReadNote(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrNoteNotFound)
}

func TestClient_StatusError(t *testing.T) {
	mux, _, _ := newMemoryMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, nil)

	_, err := client.CreateNote(context.Background(), "")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, api.ErrMsgPayloadRequired, statusErr.Message)
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).Stats(context.Background())
	assert.Error(t, err)
}
