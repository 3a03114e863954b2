package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StrategyLookup exposes strategy documents to other containers.
type StrategyLookup interface {
	Strategy(brandID string) (BrandStrategy, bool)
}

type strategySnapshot struct {
	Strategies map[string]BrandStrategy `json:"strategies"`
}

// StrategyStore owns one strategy document per brand.
type StrategyStore struct {
	*storeBase

	brands   BrandLookup
	sessions SessionLookup
	gen      Generator

	mu         sync.Mutex
	strategies map[string]BrandStrategy
	// tokens identify the generateStrategy call that owns a placeholder, so
	// a stale response cannot overwrite a newer document.
	tokens       map[string]uint64
	regenerating map[string]Pending
}

func NewStrategyStore(brands BrandLookup, sessions SessionLookup, gen Generator, opts Options) *StrategyStore {
	return &StrategyStore{
		storeBase:    newStoreBase("strategies", opts),
		brands:       brands,
		sessions:     sessions,
		gen:          gen,
		strategies:   make(map[string]BrandStrategy),
		tokens:       make(map[string]uint64),
		regenerating: make(map[string]Pending),
	}
}

// Load restores persisted strategies. Documents that were still generating
// or regenerating when saved are completed with fallback content, since no
// request from a previous process can settle them.
func (s *StrategyStore) Load() error {
	var snap strategySnapshot
	found, err := s.load(&snap)
	if err != nil || !found {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies = make(map[string]BrandStrategy, len(snap.Strategies))
	repaired := 0
	for id, st := range snap.Strategies {
		if s.repair(&st) {
			repaired++
		}
		s.strategies[id] = st
	}
	if repaired > 0 {
		s.persistLocked()
	}
	s.logger.Info().Int("strategies", len(s.strategies)).Int("repaired", repaired).Msg("Loaded strategies")
	return nil
}

func (s *StrategyStore) repair(st *BrandStrategy) bool {
	name := "Your brand"
	if b, ok := s.brands.Brand(st.BrandID); ok {
		name = b.Name
	}
	changed := false
	if st.Status == StatusGenerating {
		st.Status = StatusDraft
		changed = true
	}
	st.Sections = normalizeSections(st.Sections, name)
	for i, sec := range st.Sections {
		if sec.Content == generatingSentinel || sec.Content == regeneratingSentinel {
			st.Sections[i].Content = fallbackSection(name, sec.ID)
			changed = true
		}
	}
	return changed
}

// normalizeSections returns the ten sections in canonical order, filling
// any that are missing with fallback content.
func normalizeSections(in []StrategySection, brandName string) []StrategySection {
	out := make([]StrategySection, len(sectionOrder))
	for i, meta := range sectionOrder {
		out[i] = StrategySection{ID: meta.ID, Title: meta.Title, Content: fallbackSection(brandName, meta.ID)}
		for _, sec := range in {
			if sec.ID == meta.ID {
				out[i].Content = sec.Content
				break
			}
		}
	}
	return out
}

func (s *StrategyStore) persistLocked() {
	s.save(strategySnapshot{Strategies: s.strategies})
}

func (s *StrategyStore) Strategy(brandID string) (BrandStrategy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.strategies[brandID]
	if !ok {
		return BrandStrategy{}, false
	}
	return st.clone(), true
}

// Themes returns the brand's content themes derived from its pillars.
func (s *StrategyStore) Themes(brandID string) []Theme {
	st, ok := s.Strategy(brandID)
	if !ok {
		return ThemesForStrategy(nil)
	}
	return ThemesForStrategy(&st)
}

func (s *StrategyStore) setLocked(st BrandStrategy) {
	next := make(map[string]BrandStrategy, len(s.strategies)+1)
	for k, v := range s.strategies {
		next[k] = v
	}
	next[st.BrandID] = st
	s.strategies = next
	s.persistLocked()
}

// importStrategy installs a document as-is. Used by seeding.
func (s *StrategyStore) importStrategy(st BrandStrategy) {
	name := "Your brand"
	if b, ok := s.brands.Brand(st.BrandID); ok {
		name = b.Name
	}
	st.Sections = normalizeSections(st.Sections, name)
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[st.BrandID]++
	s.setLocked(st)
}

// Forget drops the brand's strategy. Generation results still in flight are
// discarded when they settle.
func (s *StrategyStore) Forget(brandID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[brandID]++
	if _, ok := s.strategies[brandID]; !ok {
		return
	}
	next := make(map[string]BrandStrategy, len(s.strategies))
	for k, v := range s.strategies {
		if k != brandID {
			next[k] = v
		}
	}
	s.strategies = next
	s.persistLocked()
}

func (s *StrategyStore) chatHistory(brandID string) string {
	if s.sessions == nil {
		return ""
	}
	session := s.sessions.Session(brandID)
	lines := make([]string, 0, len(session.Messages))
	for _, m := range session.Messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// GenerateStrategy creates a placeholder document in the generating state and
// requests the full content. It does nothing if the brand already has a
// strategy or the brand is unknown. When the request fails the document is
// filled with locally synthesized content, so it always ends up as a draft.
func (s *StrategyStore) GenerateStrategy(brandID, brandName string) (Pending, bool) {
	b, ok := s.brands.Brand(brandID)
	if !ok {
		return nil, false
	}
	description := b.Description
	if brandName == "" {
		brandName = b.Name
	}
	history := s.chatHistory(brandID)

	s.mu.Lock()
	if _, exists := s.strategies[brandID]; exists {
		s.mu.Unlock()
		s.metrics.RecordRejected("strategy", "exists")
		return nil, false
	}
	placeholder := BrandStrategy{
		BrandID:   brandID,
		Status:    StatusGenerating,
		Sections:  make([]StrategySection, len(sectionOrder)),
		CreatedAt: s.now(),
	}
	for i, meta := range sectionOrder {
		placeholder.Sections[i] = StrategySection{ID: meta.ID, Title: meta.Title, Content: generatingSentinel}
	}
	s.tokens[brandID]++
	token := s.tokens[brandID]
	s.setLocked(placeholder)
	s.mu.Unlock()

	s.logger.Info().Str("brand_id", brandID).Msg("Generating strategy")

	req := StrategyRequest{BrandName: brandName, BrandDescription: description, ChatHistory: history}
	return s.async(func(ctx context.Context) {
		content, err := s.gen.Strategy(ctx, req)
		if err != nil {
			s.logger.Error().Err(err).Str("brand_id", brandID).Msg("Strategy generation failed, using fallback content")
			s.metrics.RecordFallback("strategy")
			content = fallbackStrategy(brandName)
		}

		sections := make([]StrategySection, len(sectionOrder))
		for i, meta := range sectionOrder {
			text := strings.TrimSpace(content[meta.ID])
			if text == "" {
				text = fallbackSection(brandName, meta.ID)
			}
			sections[i] = StrategySection{ID: meta.ID, Title: meta.Title, Content: text}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.strategies[brandID]
		if !ok || s.tokens[brandID] != token {
			return
		}
		current.Sections = sections
		if current.Status == StatusGenerating {
			current.Status = StatusDraft
		}
		s.setLocked(current)
	}), true
}

// UpdateSection overwrites one section and returns the strategy to draft.
// Rejected while the initial generation is still running.
func (s *StrategyStore) UpdateSection(brandID string, id SectionID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.strategies[brandID]
	if !ok {
		return false
	}
	if st.Status == StatusGenerating {
		s.metrics.RecordRejected("section", "generating")
		return false
	}
	next := st.clone()
	found := false
	for i := range next.Sections {
		if next.Sections[i].ID == id {
			next.Sections[i].Content = content
			found = true
		}
	}
	if !found {
		return false
	}
	next.Status = StatusDraft
	s.setLocked(next)
	return true
}

func regenerationKey(brandID string, id SectionID) string {
	return brandID + "/" + string(id)
}

// RegenerateSection replaces one section with a freshly generated version.
// The section shows a transient sentinel while the request is in flight and
// gets its previous content back if the request fails. A second call for the
// same section while one is in flight joins it: it returns the pending
// request and false.
func (s *StrategyStore) RegenerateSection(brandID string, id SectionID) (Pending, bool) {
	key := regenerationKey(brandID, id)

	s.mu.Lock()
	if p, busy := s.regenerating[key]; busy {
		s.mu.Unlock()
		s.metrics.RecordRejected("section", "in_flight")
		return p, false
	}
	st, ok := s.strategies[brandID]
	if !ok || st.Status == StatusGenerating {
		s.mu.Unlock()
		return nil, false
	}
	section, ok := st.Section(id)
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	original := section.Content
	token := s.tokens[brandID]

	next := st.clone()
	for i := range next.Sections {
		if next.Sections[i].ID == id {
			next.Sections[i].Content = regeneratingSentinel
		}
	}
	s.setLocked(next)

	done := make(chan struct{})
	s.regenerating[key] = done
	s.mu.Unlock()

	name, description := "Brand", ""
	if b, ok := s.brands.Brand(brandID); ok {
		name, description = b.Name, b.Description
	}
	req := SectionRequest{
		BrandName:        name,
		BrandDescription: description,
		Section:          id,
		Title:            section.Title,
		CurrentContent:   original,
	}

	s.async(func(ctx context.Context) {
		defer close(done)
		fresh, err := s.gen.Section(ctx, req)
		fresh = strings.TrimSpace(fresh)
		if err != nil {
			s.logger.Error().Err(err).Str("brand_id", brandID).Str("section", string(id)).Msg("Section regeneration failed, restoring content")
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.regenerating, key)
		current, ok := s.strategies[brandID]
		if !ok || s.tokens[brandID] != token {
			return
		}
		sec, ok := current.Section(id)
		if !ok || sec.Content != regeneratingSentinel {
			// Edited while in flight; the edit wins.
			return
		}
		next := current.clone()
		for i := range next.Sections {
			if next.Sections[i].ID != id {
				continue
			}
			if err != nil || fresh == "" {
				next.Sections[i].Content = original
			} else {
				next.Sections[i].Content = fresh
			}
		}
		if err == nil && fresh != "" {
			next.Status = StatusDraft
		}
		s.setLocked(next)
	})
	return done, true
}

// ApproveStrategy marks the brand's strategy approved. A strategy that is
// still generating cannot be approved.
func (s *StrategyStore) ApproveStrategy(brandID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.strategies[brandID]
	if !ok {
		return false
	}
	if st.Status == StatusGenerating {
		s.metrics.RecordRejected("strategy", "generating")
		return false
	}
	next := st.clone()
	next.Status = StatusApproved
	s.setLocked(next)
	s.logger.Info().Str("brand_id", brandID).Msg("Strategy approved")
	return true
}

// Text renders the strategy as markdown for use as generation context.
func (st BrandStrategy) Text() string {
	var b strings.Builder
	for _, sec := range st.Sections {
		if sec.Content == generatingSentinel || sec.Content == regeneratingSentinel {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", sec.Title, sec.Content)
	}
	return strings.TrimSpace(b.String())
}
