package notehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

// StatusError is returned by Client for unexpected HTTP responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a note service. It only ever transmits envelopes and
// identifiers; keys stay with the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL
// (e.g. "https://notes.example.com"). A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// CreateNote stores envelope and returns the identifier assigned by the server.
func (c *Client) CreateNote(ctx context.Context, envelope string) (interfaces.NoteID, error) {
	body, err := json.Marshal(api.CreateNoteRequest{EncryptedPayload: envelope})
	if err != nil {
		return "", fmt.Errorf("could not encode request: %w", err)
	}

	var resp api.CreateNoteResponse
	if err := c.do(ctx, http.MethodPost, "/notes", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("could not parse create response: empty id")
	}
	return interfaces.NoteID(resp.ID), nil
}

// ReadNote takes the note with the given id. Returns interfaces.ErrNoteNotFound
// if the note does not exist or was already read.
func (c *Client) ReadNote(ctx context.Context, id interfaces.NoteID) (string, error) {
	var resp api.ReadNoteResponse
	err := c.do(ctx, http.MethodGet, "/notes/"+url.PathEscape(id.String()), nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.EncryptedPayload, nil
}

// Stats retrieves the service usage totals.
func (c *Client) Stats(ctx context.Context) (*api.StatsResponse, error) {
	var resp api.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("could not initialize request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet && strings.HasPrefix(path, "/notes/") {
		return interfaces.ErrNoteNotFound
	}
	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		_ = json.Unmarshal(respBody, &errResp)
		return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}
