package interfaces

import (
	"context"
	"errors"
)

// NoteID identifies a stored note. It is generated server-side and carries no
// information about the note's content or key.
type NoteID string

// String returns the identifier text.
func (id NoteID) String() string {
	return string(id)
}

// Short returns a prefix suitable for logs; full ids are never logged.
func (id NoteID) Short() string {
	if len(id) <= 4 {
		return string(id)
	}
	return string(id[:4]) + "…"
}

// ErrNoteNotFound covers both "never existed" and "already read". Callers must
// not be able to tell the two apart.
var ErrNoteNotFound = errors.New("note not found")

// NoteStore holds note envelopes until their first successful read.
type NoteStore interface {
	// Put stores envelope under a freshly generated identifier.
	Put(ctx context.Context, envelope string) (NoteID, error)

	// TakeOnce removes and returns the envelope stored under id in a single
	// atomic step. Of any number of concurrent callers for one id, exactly one
	// receives the envelope; the rest, and every later caller, get ErrNoteNotFound.
	TakeOnce(ctx context.Context, id NoteID) (string, error)

	// Count returns the number of notes currently stored.
	Count(ctx context.Context) (int, error)

	// Name returns identifier for logging.
	Name() string

	Close() error
}

// IDGenerator produces unguessable note identifiers.
type IDGenerator interface {
	Next() (NoteID, error)
	Valid(id NoteID) bool
}
