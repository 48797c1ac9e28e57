// Package counters tracks process-wide usage totals (notes created and notes
// read) and persists them as a single record in a storage backend.
//
// Increments are atomic in memory and never block the caller. A background
// persister writes the whole record after each change; several changes that
// arrive while a write is in flight are coalesced into one follow-up write.
// Persistence failures are logged and counted, never returned to requests.
package counters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/interfaces"
	"github.com/itcouldbejimmy-lgtm/myprivatenote/metrics"
)

// RecordKey is the storage key of the persisted totals.
const RecordKey interfaces.RecordKey = "stats.json"

// ErrStorageFault wraps any failure to read or write the persisted record.
var ErrStorageFault = errors.New("usage counter storage fault")

// Totals is the persisted record.
type Totals struct {
	TotalCreated int64 `json:"totalCreated"`
	TotalRead    int64 `json:"totalRead"`
}

// Counter holds the live totals.
type Counter struct {
	created atomic.Int64
	read    atomic.Int64

	// dirty holds at most one pending persist request.
	dirty chan struct{}

	// persistMu keeps Run and Flush from writing concurrently.
	persistMu sync.Mutex

	// unmerged is set while the stored record has never been read. The live
	// totals are then deltas on top of it and must not replace it. Guarded by
	// persistMu.
	unmerged bool

	backend interfaces.StorageBackend
	log     *slog.Logger
}

// Load reads the persisted totals from backend. A missing record is created
// with zero totals. An unreadable or unparsable record yields zero totals and
// a warning; neither stops the service.
func Load(ctx context.Context, backend interfaces.StorageBackend, log *slog.Logger) (*Counter, error) {
	if backend == nil {
		return nil, errors.New("counters: nil storage backend")
	}

	c := &Counter{
		dirty:   make(chan struct{}, 1),
		backend: backend,
		log:     log,
	}

	data, err := backend.Fetch(ctx, RecordKey)
	switch {
	case errors.Is(err, interfaces.ErrContentNotFound):
		log.Info("No usage counter record found, starting from zero",
			slog.String("backend", backend.Name()))
		// A failure here is logged and counted by persist.
		_ = c.Flush(ctx)
	case err != nil:
		c.unmerged = true
		c.fault("Failed to read usage counters, counting from zero until the record can be read", fmt.Errorf("%w: %w", ErrStorageFault, err))
	default:
		var totals Totals
		if err := json.Unmarshal(data, &totals); err != nil {
			log.Warn("Usage counter record is unparsable, starting from zero",
				slog.String("backend", backend.Name()),
				"err", err)
			break
		}
		c.created.Store(max(totals.TotalCreated, 0))
		c.read.Store(max(totals.TotalRead, 0))
	}

	return c, nil
}

// RecordCreated counts one created note.
func (c *Counter) RecordCreated() {
	c.created.Inc()
	c.markDirty()
}

// RecordRead counts one successfully read note.
func (c *Counter) RecordRead() {
	c.read.Inc()
	c.markDirty()
}

// Totals returns a snapshot of the current totals.
func (c *Counter) Totals() Totals {
	return Totals{
		TotalCreated: c.created.Load(),
		TotalRead:    c.read.Load(),
	}
}

// Run persists the totals whenever they change until ctx is cancelled.
// Callers should Flush after Run returns to write the final totals.
func (c *Counter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.dirty:
			_ = c.persist(ctx)
		}
	}
}

// Flush writes the current totals synchronously.
func (c *Counter) Flush(ctx context.Context) error {
	return c.persist(ctx)
}

func (c *Counter) markDirty() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

func (c *Counter) persist(ctx context.Context) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if c.unmerged {
		if err := c.mergeStored(ctx); err != nil {
			err = fmt.Errorf("%w: %w", ErrStorageFault, err)
			c.fault("Usage counter record still unreadable, not overwriting it", err)
			return err
		}
	}

	data, err := json.Marshal(c.Totals())
	if err != nil {
		return fmt.Errorf("failed to encode usage counters: %w", err)
	}

	if err := c.backend.Store(ctx, RecordKey, data); err != nil {
		err = fmt.Errorf("%w: %w", ErrStorageFault, err)
		c.fault("Failed to persist usage counters", err)
		return err
	}
	return nil
}

// mergeStored adds the stored totals to the live ones once the record that
// could not be read at startup becomes readable.
func (c *Counter) mergeStored(ctx context.Context) error {
	data, err := c.backend.Fetch(ctx, RecordKey)
	switch {
	case errors.Is(err, interfaces.ErrContentNotFound):
	case err != nil:
		return err
	default:
		var stored Totals
		if err := json.Unmarshal(data, &stored); err != nil {
			c.log.Warn("Usage counter record is unparsable, replacing it",
				slog.String("backend", c.backend.Name()),
				"err", err)
			break
		}
		c.created.Add(max(stored.TotalCreated, 0))
		c.read.Add(max(stored.TotalRead, 0))
	}

	c.unmerged = false
	return nil
}

func (c *Counter) fault(msg string, err error) {
	metrics.CounterPersistFailures.Inc()
	c.log.Warn(msg,
		slog.String("backend", c.backend.Name()),
		"err", err)
}
