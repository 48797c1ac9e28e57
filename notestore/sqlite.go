package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

// SQLiteStore keeps notes in a SQLite database so that unread notes survive
// restarts. Takes run on the single writer connection as one
// DELETE ... RETURNING statement.
type SQLiteStore struct {
	db  *DB
	ids interfaces.IDGenerator
	log *slog.Logger
}

var _ interfaces.NoteStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dbPath, or a private in-memory database
// for MemoryDBPath.
func NewSQLiteStore(dbPath string, ids interfaces.IDGenerator, log *slog.Logger) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite note store: %w", err)
	}
	return &SQLiteStore{db: db, ids: ids, log: log}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, envelope string) (interfaces.NoteID, error) {
	return putWithRetry(ctx, s.ids, s.log, func(id interfaces.NoteID) (bool, error) {
		res, err := s.db.Writer.ExecContext(ctx,
			`INSERT OR IGNORE INTO notes (id, envelope) VALUES (?, ?)`,
			id.String(), envelope)
		if err != nil {
			return false, fmt.Errorf("failed to insert note: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to insert note: %w", err)
		}
		return n == 1, nil
	})
}

func (s *SQLiteStore) TakeOnce(ctx context.Context, id interfaces.NoteID) (string, error) {
	var envelope string
	err := s.db.Writer.QueryRowContext(ctx,
		`DELETE FROM notes WHERE id = ? RETURNING envelope`,
		id.String()).Scan(&envelope)
	if errors.Is(err, sql.ErrNoRows) {
		return "", interfaces.ErrNoteNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to take note: %w", err)
	}
	return envelope, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Name() string {
	return "sqlite"
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
