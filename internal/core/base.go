package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"axis.io/contentops/internal/metrics"
	"axis.io/contentops/internal/store"
)

const (
	defaultGenerationTimeout = 60 * time.Second
	persistTimeout           = 5 * time.Second
)

// Options carries the collaborators shared by every state container.
type Options struct {
	// Persister receives a snapshot after every mutation. Nil keeps state in
	// memory only.
	Persister store.Persister
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	// BaseContext parents every generation call; cancel it to abandon
	// in-flight requests at shutdown.
	BaseContext       context.Context
	GenerationTimeout time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
	// NewID overrides id generation in tests.
	NewID func() string
}

// storeBase holds the plumbing shared by the state containers: snapshot
// persistence and tracking of background generation calls.
type storeBase struct {
	key       string
	persister store.Persister
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	ctx       context.Context
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
	wg        sync.WaitGroup
}

func newStoreBase(key string, opts Options) *storeBase {
	b := &storeBase{
		key:       key,
		persister: opts.Persister,
		logger:    opts.Logger.With().Str("component", key).Logger(),
		metrics:   opts.Metrics,
		ctx:       opts.BaseContext,
		timeout:   opts.GenerationTimeout,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if b.ctx == nil {
		b.ctx = context.Background()
	}
	if b.timeout <= 0 {
		b.timeout = defaultGenerationTimeout
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = newUUID
	}
	return b
}

// save writes v as the container's snapshot. Callers hold the container lock
// so snapshots land in mutation order. Failures are logged; in-memory state
// stays authoritative.
func (b *storeBase) save(v any) {
	if b.persister == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to encode snapshot")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := b.persister.SaveSnapshot(ctx, b.key, payload); err != nil {
		b.logger.Error().Err(err).Msg("Failed to persist snapshot")
	}
}

// load decodes the stored snapshot into v. It reports false when nothing has
// been stored yet.
func (b *storeBase) load(v any) (bool, error) {
	if b.persister == nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	payload, err := b.persister.LoadSnapshot(ctx, b.key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("failed to decode %s snapshot: %w", b.key, err)
	}
	return true, nil
}

// async runs fn on its own goroutine with a bounded context and returns a
// Pending that closes when fn returns.
func (b *storeBase) async(fn func(ctx context.Context)) Pending {
	done := make(chan struct{})
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(done)
		ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
		defer cancel()
		fn(ctx)
	}()
	return done
}

// Wait blocks until every background call started by the container has
// settled.
func (b *storeBase) Wait() {
	b.wg.Wait()
}
