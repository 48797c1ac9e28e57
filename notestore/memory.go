package notestore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

// MemoryStore keeps notes in a process-local map. Unread notes live until the
// process exits.
type MemoryStore struct {
	mu    sync.Mutex
	notes map[interfaces.NoteID]string

	ids interfaces.IDGenerator
	log *slog.Logger
}

var _ interfaces.NoteStore = (*MemoryStore)(nil)

func NewMemoryStore(ids interfaces.IDGenerator, log *slog.Logger) *MemoryStore {
	return &MemoryStore{
		notes: make(map[interfaces.NoteID]string),
		ids:   ids,
		log:   log,
	}
}

// Put stores envelope under a new identifier, drawing again if the identifier
// is already taken.
func (s *MemoryStore) Put(ctx context.Context, envelope string) (interfaces.NoteID, error) {
	return putWithRetry(ctx, s.ids, s.log, func(id interfaces.NoteID) (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, taken := s.notes[id]; taken {
			return false, nil
		}
		s.notes[id] = envelope
		return true, nil
	})
}

// TakeOnce looks up and deletes the note under one lock hold.
func (s *MemoryStore) TakeOnce(ctx context.Context, id interfaces.NoteID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	envelope, ok := s.notes[id]
	if !ok {
		return "", interfaces.ErrNoteNotFound
	}
	delete(s.notes, id)
	return envelope, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes), nil
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) Close() error {
	return nil
}
