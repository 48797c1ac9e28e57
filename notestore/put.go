package notestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
)

// MaxPutAttempts bounds how many identifiers Put draws before giving up.
const MaxPutAttempts = 8

// ErrIdentifierExhausted is returned when every drawn identifier collided with
// a stored note. With a healthy generator this does not happen.
var ErrIdentifierExhausted = errors.New("could not allocate a unique note identifier")

// insertFunc attempts to store under id and reports false if id is taken.
type insertFunc func(id interfaces.NoteID) (bool, error)

func putWithRetry(ctx context.Context, ids interfaces.IDGenerator, log *slog.Logger, insert insertFunc) (interfaces.NoteID, error) {
	for attempt := 1; attempt <= MaxPutAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, err := ids.Next()
		if err != nil {
			return "", fmt.Errorf("failed to generate note id: %w", err)
		}

		inserted, err := insert(id)
		if err != nil {
			return "", err
		}
		if inserted {
			return id, nil
		}

		log.Warn("Note identifier collision, drawing again",
			slog.String("id", id.Short()),
			slog.Int("attempt", attempt))
	}
	return "", ErrIdentifierExhausted
}
