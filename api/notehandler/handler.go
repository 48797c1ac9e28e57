package notehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/api"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/counters"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/metrics"
)

// UsageRecorder receives create and read events. Implementations must not
// block; they are called on the request path after the store has committed.
type UsageRecorder interface {
	RecordCreated()
	RecordRead()
	Totals() counters.Totals
}

// Handler processes HTTP requests for the note service.
type Handler struct {
	store interfaces.NoteStore
	ids   interfaces.IDGenerator
	usage UsageRecorder
	log   *slog.Logger
}

// NewHandler creates a new HTTP request handler for the note service.
//
// Parameters:
//   - store: where envelopes are kept until their first read
//   - ids: used to reject identifiers that cannot have been issued
//   - usage: usage totals, updated best-effort after each create and read
//   - log: Structured logger for operational insights
func NewHandler(store interfaces.NoteStore, ids interfaces.IDGenerator, usage UsageRecorder, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		ids:   ids,
		usage: usage,
		log:   log,
	}
}

// RegisterRoutes configures the HTTP router with the note endpoints:
//   - POST /notes - Store an envelope
//   - GET /notes/{id} - Take a note, destroying it
//   - GET /stats - Usage totals
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/notes", h.HandleCreateNote)
	r.Get("/notes/{id}", h.HandleReadNote)
	r.Get("/stats", h.HandleStats)
}

// HandleCreateNote stores the posted envelope under a fresh identifier.
//
// Status codes:
//   - 200 OK: note stored, body is api.CreateNoteResponse
//   - 400 Bad Request: body is not JSON or encryptedPayload is missing, empty or not a string
//   - 413 Request Entity Too Large: body exceeds api.MaxRequestBodyBytes
//   - 500 Internal Server Error: the store failed
func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.MaxRequestBodyBytes)

	var req api.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status, msg := decodeErrorResponse(err)
		h.log.Debug("Rejected create request", "err", err, slog.Int("status", status))
		writeError(w, status, msg)
		return
	}

	if req.EncryptedPayload == "" {
		writeError(w, http.StatusBadRequest, api.ErrMsgPayloadRequired)
		return
	}

	id, err := h.store.Put(r.Context(), req.EncryptedPayload)
	if err != nil {
		h.log.Error("Failed to store note", "err", err, slog.String("store", h.store.Name()))
		writeError(w, http.StatusInternalServerError, api.ErrMsgInternal)
		return
	}

	metrics.NotesCreated.Inc()
	h.usage.RecordCreated()

	h.log.Debug("Stored note", slog.String("id", id.Short()), slog.Int("size", len(req.EncryptedPayload)))

	writeJSON(w, http.StatusOK, api.CreateNoteResponse{ID: id.String()})
}

// HandleReadNote returns the envelope stored under the path identifier and
// deletes it in the same step.
//
// Status codes:
//   - 200 OK: body is api.ReadNoteResponse
//   - 404 Not Found: the note never existed, was already read, or the id is malformed
//   - 500 Internal Server Error: the store failed
func (h *Handler) HandleReadNote(w http.ResponseWriter, r *http.Request) {
	id := interfaces.NoteID(r.PathValue("id"))

	if !h.ids.Valid(id) {
		metrics.NoteReadMisses.Inc()
		writeError(w, http.StatusNotFound, api.ErrMsgNoteNotFound)
		return
	}

	envelope, err := h.store.TakeOnce(r.Context(), id)
	if errors.Is(err, interfaces.ErrNoteNotFound) {
		metrics.NoteReadMisses.Inc()
		writeError(w, http.StatusNotFound, api.ErrMsgNoteNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to take note", "err", err,
			slog.String("id", id.Short()),
			slog.String("store", h.store.Name()))
		writeError(w, http.StatusInternalServerError, api.ErrMsgInternal)
		return
	}

	metrics.NotesRead.Inc()
	h.usage.RecordRead()

	h.log.Debug("Handed out note", slog.String("id", id.Short()))

	writeJSON(w, http.StatusOK, api.ReadNoteResponse{EncryptedPayload: envelope})
}

// HandleStats reports usage totals and the number of notes currently stored.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Count(r.Context())
	if err != nil {
		h.log.Error("Failed to count notes", "err", err, slog.String("store", h.store.Name()))
		writeError(w, http.StatusInternalServerError, api.ErrMsgInternal)
		return
	}

	totals := h.usage.Totals()
	writeJSON(w, http.StatusOK, api.StatsResponse{
		TotalCreated:    totals.TotalCreated,
		TotalRead:       totals.TotalRead,
		CurrentlyStored: stored,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

func decodeErrorResponse(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, api.ErrMsgPayloadTooLarge
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "encryptedPayload" {
		return http.StatusBadRequest, api.ErrMsgPayloadRequired
	}
	return http.StatusBadRequest, api.ErrMsgInvalidJSON
}
