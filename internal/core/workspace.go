package core

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Workspace wires the state containers together and hosts the operations
// that span more than one of them.
type Workspace struct {
	Brands     *BrandRegistry
	Chat       *ChatEngine
	Strategies *StrategyStore
	Calendar   *CalendarStore
	Navigation *NavigationGate
}

func NewWorkspace(gen Generator, opts Options) *Workspace {
	gen = Instrument(gen, opts.Metrics)
	brands := NewBrandRegistry(opts)
	chat := NewChatEngine(brands, gen, opts)
	strategies := NewStrategyStore(brands, chat, gen, opts)
	return &Workspace{
		Brands:     brands,
		Chat:       chat,
		Strategies: strategies,
		Calendar:   NewCalendarStore(brands, strategies, gen, opts),
		Navigation: NewNavigationGate(opts),
	}
}

// Load restores every container from its snapshot. Brands load first since
// strategy repair reads brand names.
func (w *Workspace) Load() error {
	if err := w.Brands.Load(); err != nil {
		return fmt.Errorf("failed to load brands: %w", err)
	}
	var g errgroup.Group
	g.Go(func() error {
		if err := w.Chat.Load(); err != nil {
			return fmt.Errorf("failed to load chat sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := w.Strategies.Load(); err != nil {
			return fmt.Errorf("failed to load strategies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := w.Calendar.Load(); err != nil {
			return fmt.Errorf("failed to load calendar: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := w.Navigation.Load(); err != nil {
			return fmt.Errorf("failed to load navigation: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// GenerateStrategy starts strategy generation for an existing brand.
func (w *Workspace) GenerateStrategy(brandID string) (Pending, bool) {
	brand, ok := w.Brands.Brand(brandID)
	if !ok {
		return nil, false
	}
	return w.Strategies.GenerateStrategy(brandID, brand.Name)
}

// ApproveStrategy approves the brand's strategy and then unlocks the
// calendar tab.
func (w *Workspace) ApproveStrategy(brandID string) bool {
	if !w.Strategies.ApproveStrategy(brandID) {
		return false
	}
	w.Navigation.UnlockTab(TabCalendar)
	return true
}

// DeleteBrand removes the brand together with its conversation, strategy
// and cards.
func (w *Workspace) DeleteBrand(id string) bool {
	if !w.Brands.DeleteBrand(id) {
		return false
	}
	w.Chat.Forget(id)
	w.Strategies.Forget(id)
	w.Calendar.Forget(id)
	return true
}

// Wait blocks until every background generation call has settled.
func (w *Workspace) Wait() {
	w.Chat.Wait()
	w.Strategies.Wait()
	w.Calendar.Wait()
}
