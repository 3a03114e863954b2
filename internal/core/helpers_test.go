package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"axis.io/contentops/internal/store"
)

// fakeGenerator answers with the configured funcs. A nil func behaves like
// the offline generator.
type fakeGenerator struct {
	chatTurn func(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error)
	strategy func(ctx context.Context, req StrategyRequest) (map[SectionID]string, error)
	section  func(ctx context.Context, req SectionRequest) (string, error)
	calendar func(ctx context.Context, req CalendarRequest) ([]CardDescriptor, error)
	field    func(ctx context.Context, req FieldRequest) (string, error)
}

func (g *fakeGenerator) ChatTurn(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error) {
	if g.chatTurn == nil {
		return "", ErrGenerationDisabled
	}
	return g.chatTurn(ctx, req, onChunk)
}

func (g *fakeGenerator) Strategy(ctx context.Context, req StrategyRequest) (map[SectionID]string, error) {
	if g.strategy == nil {
		return nil, ErrGenerationDisabled
	}
	return g.strategy(ctx, req)
}

func (g *fakeGenerator) Section(ctx context.Context, req SectionRequest) (string, error) {
	if g.section == nil {
		return "", ErrGenerationDisabled
	}
	return g.section(ctx, req)
}

func (g *fakeGenerator) Calendar(ctx context.Context, req CalendarRequest) ([]CardDescriptor, error) {
	if g.calendar == nil {
		return nil, ErrGenerationDisabled
	}
	return g.calendar(ctx, req)
}

func (g *fakeGenerator) Field(ctx context.Context, req FieldRequest) (string, error) {
	if g.field == nil {
		return "", ErrGenerationDisabled
	}
	return g.field(ctx, req)
}

// memPersister is an in-memory store.Persister.
type memPersister struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMemPersister() *memPersister {
	return &memPersister{data: make(map[string][]byte)}
}

func (p *memPersister) SaveSnapshot(_ context.Context, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = append([]byte(nil), payload...)
	p.saves++
	return nil
}

func (p *memPersister) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	payload, ok := p.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return payload, nil
}

// testNow is a Wednesday.
var testNow = time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC)

func testOptions(p store.Persister) Options {
	var n atomic.Int64
	opts := Options{
		Logger:            zerolog.Nop(),
		GenerationTimeout: 5 * time.Second,
		Now:               func() time.Time { return testNow },
		NewID:             func() string { return fmt.Sprintf("id-%d", n.Add(1)) },
	}
	if p != nil {
		opts.Persister = p
	}
	return opts
}

func newTestWorkspace(t *testing.T, gen Generator) *Workspace {
	t.Helper()
	if gen == nil {
		gen = &fakeGenerator{}
	}
	ws := NewWorkspace(gen, testOptions(nil))
	t.Cleanup(ws.Wait)
	return ws
}

func addTestBrand(t *testing.T, ws *Workspace, name string) Brand {
	t.Helper()
	b, ok := ws.Brands.AddBrand(NewBrand{Name: name, Description: name + " makes things."})
	require.True(t, ok)
	return b
}

// await fails the test if p does not settle in time.
func await(t *testing.T, p Pending) {
	t.Helper()
	require.NotNil(t, p)
	select {
	case <-p:
	case <-time.After(5 * time.Second):
		t.Fatal("pending operation did not settle")
	}
}

func settled(p Pending) bool {
	select {
	case <-p:
		return true
	default:
		return false
	}
}
