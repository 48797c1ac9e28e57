package api

// CreateNoteRequest is the body of POST /notes. EncryptedPayload is the
// envelope text produced by the client; the server stores it verbatim.
type CreateNoteRequest struct {
	EncryptedPayload string `json:"encryptedPayload"`
}

// CreateNoteResponse carries the identifier of the stored note.
type CreateNoteResponse struct {
	ID string `json:"id"`
}

// ReadNoteResponse is returned exactly once per note.
type ReadNoteResponse struct {
	EncryptedPayload string `json:"encryptedPayload"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	TotalCreated    int64 `json:"totalCreated"`
	TotalRead       int64 `json:"totalRead"`
	CurrentlyStored int   `json:"currentlyStored"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error messages shared by the handler and its clients.
const (
	ErrMsgPayloadRequired = "encryptedPayload is required"
	ErrMsgInvalidJSON     = "request body must be a JSON object"
	ErrMsgPayloadTooLarge = "request body too large"
	ErrMsgNoteNotFound    = "note not found or already read"
	ErrMsgInternal        = "internal server error"
)

// MaxRequestBodyBytes bounds the size of a create request body.
const MaxRequestBodyBytes = 1 << 20
