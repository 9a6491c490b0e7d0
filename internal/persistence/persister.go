// Package persistence keeps the durable copy of the timesheet aggregate in step
// with the in-memory store.
//
// Saves are best-effort. A failed save is logged and counted; the in-memory state
// is not rolled back, so durable storage may lag until the next successful save.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/store"
)

type RepositoryAPI interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type Persister struct {
	repo    RepositoryAPI
	key     string
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	lastSaved uint64
	failures  atomic.Int64
}

func NewPersister(repo RepositoryAPI, key string, timeout time.Duration, logger *slog.Logger) *Persister {
	if key == "" {
		key = internal.DefaultStorageKey
	}
	return &Persister{
		repo:    repo,
		key:     key,
		timeout: timeout,
		logger:  logger,
	}
}

// Load replaces the store contents with the persisted blob. A missing key yields an
// empty store; an unreadable blob is an error so that it is never overwritten.
func (p *Persister) Load(ctx context.Context, s *store.Store) error {
	ctx, cancel := internal.WithTimeout(ctx, p.timeout)
	defer cancel()

	data, err := p.repo.Get(ctx, p.key)
	if err != nil {
		return fmt.Errorf("load %q: %w", p.key, err)
	}
	if err := s.Decode(data); err != nil {
		return fmt.Errorf("load %q: %w", p.key, err)
	}

	snap := s.Snapshot()
	p.logger.Info("timesheet data loaded",
		"key", p.key,
		"users", len(snap.Users),
		"projects", len(snap.Projects),
		"entries", len(snap.Entries))
	return nil
}

// Save writes data unless a newer version has already been written.
func (p *Persister) Save(ctx context.Context, version uint64, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version <= p.lastSaved {
		p.logger.Debug("skipping stale snapshot", "version", version, "last_saved", p.lastSaved)
		return nil
	}

	ctx, cancel := internal.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.repo.Put(ctx, p.key, data); err != nil {
		p.failures.Add(1)
		return fmt.Errorf("save %q version %d: %w", p.key, version, err)
	}
	p.lastSaved = version
	return nil
}

func (p *Persister) HandleStoreChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.StoreChangedEvent)
	if !ok {
		p.logger.Error("invalid event type for store changed handler", "event_type", event.EventType())
		return fmt.Errorf("expected StoreChangedEvent, got %T", event)
	}

	if err := p.Save(ctx, changed.Version, changed.Snapshot); err != nil {
		p.logger.Error("failed to persist timesheet data",
			"error", err,
			"version", changed.Version,
			"failures", p.failures.Load(),
			"event_id", changed.EventID())
		return nil
	}

	p.logger.Debug("timesheet data persisted", "version", changed.Version, "bytes", len(changed.Snapshot))
	return nil
}

func (p *Persister) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeStoreChanged, p.HandleStoreChanged)

	p.logger.Info("persistence event handlers registered",
		"handlers", []string{events.EventTypeStoreChanged})
}

func (p *Persister) LastSavedVersion() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSaved
}

func (p *Persister) Failures() int64 {
	return p.failures.Load()
}
