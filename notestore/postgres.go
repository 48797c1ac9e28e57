package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id VARCHAR(64) PRIMARY KEY,
	envelope TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// PostgresStore keeps notes in PostgreSQL, for deployments running several
// server replicas against one database.
type PostgresStore struct {
	db  *sql.DB
	ids interfaces.IDGenerator
	log *slog.Logger
}

var _ interfaces.NoteStore = (*PostgresStore)(nil)

// NewPostgresStore connects using a lib/pq connection string or postgres:// URL
// and creates the notes table if needed.
func NewPostgresStore(ctx context.Context, connString string, ids interfaces.IDGenerator, log *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &PostgresStore{db: db, ids: ids, log: log}, nil
}

func (s *PostgresStore) Put(ctx context.Context, envelope string) (interfaces.NoteID, error) {
	return putWithRetry(ctx, s.ids, s.log, func(id interfaces.NoteID) (bool, error) {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO notes (id, envelope) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
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

// TakeOnce relies on row locking: of concurrent deletes for one id only the
// first returns a row.
func (s *PostgresStore) TakeOnce(ctx context.Context, id interfaces.NoteID) (string, error) {
	var envelope string
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM notes WHERE id = $1 RETURNING envelope`,
		id.String()).Scan(&envelope)
	if errors.Is(err, sql.ErrNoRows) {
		return "", interfaces.ErrNoteNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to take note: %w", err)
	}
	return envelope, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Name() string {
	return "postgres"
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
