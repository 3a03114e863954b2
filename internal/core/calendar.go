package core

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// fieldErrorText is returned in place of generated content when the
// generation service fails.
const fieldErrorText = "Error generating content. Please try again."

type calendarSnapshot struct {
	Cards map[string][]ContentCard `json:"cards"`
	View  ViewState                `json:"view"`
}

// NewCard is the input to AddCard. Status is derived, never supplied.
type NewCard struct {
	Date            string        `json:"date"`
	Time            string        `json:"time"`
	Format          ContentFormat `json:"format"`
	Platform        Platform      `json:"platform"`
	Theme           string        `json:"theme"`
	Title           string        `json:"title"`
	Hook            string        `json:"hook,omitempty"`
	Narrative       string        `json:"narrative,omitempty"`
	ProductionGuide string        `json:"production_guide,omitempty"`
	Prompts         string        `json:"prompts,omitempty"`
	Caption         string        `json:"caption,omitempty"`
}

// CardUpdate carries a partial update; nil fields are left alone.
type CardUpdate struct {
	Date            *string        `json:"date,omitempty"`
	Time            *string        `json:"time,omitempty"`
	Format          *ContentFormat `json:"format,omitempty"`
	Platform        *Platform      `json:"platform,omitempty"`
	Theme           *string        `json:"theme,omitempty"`
	Title           *string        `json:"title,omitempty"`
	Hook            *string        `json:"hook,omitempty"`
	Narrative       *string        `json:"narrative,omitempty"`
	ProductionGuide *string        `json:"production_guide,omitempty"`
	Prompts         *string        `json:"prompts,omitempty"`
	Caption         *string        `json:"caption,omitempty"`
}

// FieldResult is the outcome of generating one card field. Failed results
// carry a user-visible error text in Content.
type FieldResult struct {
	Field   GeneratableField `json:"field"`
	Content string           `json:"content"`
	Failed  bool             `json:"failed,omitempty"`
}

// CalendarStore owns every brand's content cards and the shared calendar view.
type CalendarStore struct {
	*storeBase

	brands     BrandLookup
	strategies StrategyLookup
	gen        Generator

	mu         sync.Mutex
	cards      map[string][]ContentCard
	view       ViewState
	generating map[string]bool
	tokens     map[string]uint64

	fields singleflight.Group
}

func NewCalendarStore(brands BrandLookup, strategies StrategyLookup, gen Generator, opts Options) *CalendarStore {
	s := &CalendarStore{
		storeBase:  newStoreBase("calendar", opts),
		brands:     brands,
		strategies: strategies,
		gen:        gen,
		cards:      make(map[string][]ContentCard),
		generating: make(map[string]bool),
		tokens:     make(map[string]uint64),
	}
	s.view = ViewState{
		View:        ViewWeek,
		CurrentDate: FormatDate(s.now()),
		Settings:    DefaultCalendarSettings(),
	}
	return s
}

func (s *CalendarStore) Load() error {
	var snap calendarSnapshot
	found, err := s.load(&snap)
	if err != nil || !found {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = make(map[string][]ContentCard, len(snap.Cards))
	for brandID, cards := range snap.Cards {
		for i := range cards {
			cards[i].Status = ComputeStatus(cards[i])
		}
		sortCards(cards)
		s.cards[brandID] = cards
	}
	if snap.View.View.Valid() {
		s.view.View = snap.View.View
	}
	if _, ok := ParseDate(snap.View.CurrentDate); ok {
		s.view.CurrentDate = snap.View.CurrentDate
	}
	if snap.View.Settings.Valid() {
		s.view.Settings = snap.View.Settings
	}
	s.logger.Info().Int("brands", len(s.cards)).Msg("Loaded calendar")
	return nil
}

func (s *CalendarStore) persistLocked() {
	s.save(calendarSnapshot{Cards: s.cards, View: s.view})
}

func sortCards(cards []ContentCard) {
	slices.SortStableFunc(cards, func(a, b ContentCard) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Time, b.Time)
	})
}

// setCardsLocked publishes a new card list for the brand.
func (s *CalendarStore) setCardsLocked(brandID string, cards []ContentCard) {
	sortCards(cards)
	next := make(map[string][]ContentCard, len(s.cards)+1)
	for k, v := range s.cards {
		next[k] = v
	}
	if len(cards) == 0 {
		delete(next, brandID)
	} else {
		next[brandID] = cards
	}
	s.cards = next
	s.persistLocked()
}

func (s *CalendarStore) findLocked(brandID, cardID string) (int, bool) {
	for i, c := range s.cards[brandID] {
		if c.ID == cardID {
			return i, true
		}
	}
	return -1, false
}

// Cards returns the brand's cards sorted by date then time.
func (s *CalendarStore) Cards(brandID string) []ContentCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cards[brandID])
}

// CardsForDate returns the brand's cards scheduled on date, sorted by time.
func (s *CalendarStore) CardsForDate(brandID, date string) []ContentCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ContentCard
	for _, c := range s.cards[brandID] {
		if c.Date == date {
			out = append(out, c)
		}
	}
	return out
}

func (s *CalendarStore) Card(brandID, cardID string) (ContentCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(brandID, cardID)
	if !ok {
		return ContentCard{}, false
	}
	return s.cards[brandID][i], true
}

// Themes returns the brand's current theme set.
func (s *CalendarStore) Themes(brandID string) []Theme {
	if s.strategies == nil {
		return ThemesForStrategy(nil)
	}
	st, ok := s.strategies.Strategy(brandID)
	if !ok {
		return ThemesForStrategy(nil)
	}
	return ThemesForStrategy(&st)
}

func (s *CalendarStore) IsGenerating(brandID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating[brandID]
}

// Forget drops the brand's cards. Generation still in flight for the brand
// is discarded when it settles.
func (s *CalendarStore) Forget(brandID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[brandID]++
	delete(s.generating, brandID)
	if _, ok := s.cards[brandID]; ok {
		s.setCardsLocked(brandID, nil)
	}
}

// GenerateCalendar fills the two-week window around the current view date
// with planned cards. Cards outside the window are kept. If the generation
// service fails, or returns nothing usable, a deterministic local schedule
// is used instead. Rejected while the brand is already generating.
func (s *CalendarStore) GenerateCalendar(brandID string) (Pending, bool) {
	brand, ok := s.brands.Brand(brandID)
	if !ok {
		return nil, false
	}
	themes := s.Themes(brandID)
	strategyText := ""
	if s.strategies != nil {
		if st, ok := s.strategies.Strategy(brandID); ok {
			strategyText = st.Text()
		}
	}

	s.mu.Lock()
	if s.generating[brandID] {
		s.mu.Unlock()
		s.metrics.RecordRejected("calendar", "in_flight")
		return nil, false
	}
	current, _ := ParseDate(s.view.CurrentDate)
	settings := s.view.Settings
	s.generating[brandID] = true
	token := s.tokens[brandID]
	s.mu.Unlock()

	startDate, endDate := GenerationWindow(current)
	req := CalendarRequest{
		BrandName:        brand.Name,
		BrandDescription: brand.Description,
		Strategy:         strategyText,
		StartDate:        startDate,
		EndDate:          endDate,
		PostsPerDay:      settings.PostsPerDay,
		DaysPerWeek:      settings.DaysPerWeek,
		Themes:           themes,
	}
	s.logger.Info().Str("brand_id", brandID).Str("start", startDate).Str("end", endDate).Msg("Generating calendar")

	return s.async(func(ctx context.Context) {
		var fresh []ContentCard
		descriptors, err := s.gen.Calendar(ctx, req)
		if err == nil {
			fresh = s.materialize(brandID, descriptors, themes, startDate, endDate)
		}
		if len(fresh) == 0 {
			if err != nil {
				s.logger.Error().Err(err).Str("brand_id", brandID).Msg("Calendar generation failed, using local schedule")
			} else {
				s.logger.Warn().Str("brand_id", brandID).Msg("Calendar generation returned no usable cards, using local schedule")
			}
			s.metrics.RecordFallback("calendar")
			fresh = mockCalendar(brandID, current, settings, themes, s.newID)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.tokens[brandID] != token {
			return
		}
		delete(s.generating, brandID)
		kept := make([]ContentCard, 0, len(s.cards[brandID])+len(fresh))
		for _, c := range s.cards[brandID] {
			if c.Date < startDate || c.Date > endDate {
				kept = append(kept, c)
			}
		}
		s.setCardsLocked(brandID, append(kept, fresh...))
	}), true
}

// materialize turns descriptors into plan cards. Descriptors dated outside
// the window are dropped; other invalid attributes are replaced with
// defaults.
func (s *CalendarStore) materialize(brandID string, descriptors []CardDescriptor, themes []Theme, startDate, endDate string) []ContentCard {
	cards := make([]ContentCard, 0, len(descriptors))
	for i, d := range descriptors {
		if _, ok := ParseDate(d.Date); !ok || d.Date < startDate || d.Date > endDate {
			continue
		}
		card := ContentCard{
			ID:       s.newID(),
			BrandID:  brandID,
			Date:     d.Date,
			Time:     d.Time,
			Format:   d.Format,
			Platform: d.Platform,
			Theme:    d.Theme,
			Title:    strings.TrimSpace(d.Title),
			Status:   CardPlan,
		}
		if !ValidClock(card.Time) {
			card.Time = postingTimes[i%len(postingTimes)]
		}
		if !card.Format.Valid() {
			card.Format = FormatSinglePost
		}
		if !card.Platform.Valid() {
			card.Platform = PlatformInstagram
		}
		if !hasTheme(themes, card.Theme) {
			card.Theme = themes[i%len(themes)].ID
		}
		if card.Title == "" {
			card.Title = themeLabel(themes, card.Theme)
		}
		cards = append(cards, card)
	}
	return cards
}

// MoveCard reschedules a card to newDate. Nothing else changes.
func (s *CalendarStore) MoveCard(brandID, cardID, newDate string) bool {
	if _, ok := ParseDate(newDate); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(brandID, cardID)
	if !ok {
		return false
	}
	next := slices.Clone(s.cards[brandID])
	next[i].Date = newDate
	s.setCardsLocked(brandID, next)
	return true
}

func validCardShape(date, clock string, format ContentFormat, platform Platform) bool {
	if _, ok := ParseDate(date); !ok {
		return false
	}
	return ValidClock(clock) && format.Valid() && platform.Valid()
}

// AddCard inserts a card for an existing brand. The theme must belong to the
// brand's current theme set.
func (s *CalendarStore) AddCard(brandID string, in NewCard) (ContentCard, bool) {
	if _, ok := s.brands.Brand(brandID); !ok {
		return ContentCard{}, false
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || !validCardShape(in.Date, in.Time, in.Format, in.Platform) {
		return ContentCard{}, false
	}
	if !hasTheme(s.Themes(brandID), in.Theme) {
		return ContentCard{}, false
	}
	card := ContentCard{
		ID:              s.newID(),
		BrandID:         brandID,
		Date:            in.Date,
		Time:            in.Time,
		Format:          in.Format,
		Platform:        in.Platform,
		Theme:           in.Theme,
		Title:           title,
		Hook:            in.Hook,
		Narrative:       in.Narrative,
		ProductionGuide: in.ProductionGuide,
		Prompts:         in.Prompts,
		Caption:         in.Caption,
	}
	card.Status = ComputeStatus(card)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCardsLocked(brandID, append(slices.Clone(s.cards[brandID]), card))
	return card, true
}

func (s *CalendarStore) DeleteCard(brandID, cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(brandID, cardID)
	if !ok {
		return false
	}
	s.setCardsLocked(brandID, slices.Delete(slices.Clone(s.cards[brandID]), i, i+1))
	return true
}

func applyCardUpdate(c *ContentCard, upd CardUpdate) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Date, upd.Date)
	set(&c.Time, upd.Time)
	set(&c.Theme, upd.Theme)
	set(&c.Hook, upd.Hook)
	set(&c.Narrative, upd.Narrative)
	set(&c.ProductionGuide, upd.ProductionGuide)
	set(&c.Prompts, upd.Prompts)
	set(&c.Caption, upd.Caption)
	if upd.Title != nil {
		c.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Format != nil {
		c.Format = *upd.Format
	}
	if upd.Platform != nil {
		c.Platform = *upd.Platform
	}
}

// UpdateCard merges upd into the card and recomputes its status. An update
// that would leave the card malformed is rejected as a whole. A theme that
// has since disappeared from the brand's theme set is kept as-is, but a new
// theme value must be current.
func (s *CalendarStore) UpdateCard(brandID, cardID string, upd CardUpdate) (ContentCard, bool) {
	var themes []Theme
	if upd.Theme != nil {
		themes = s.Themes(brandID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(brandID, cardID)
	if !ok {
		return ContentCard{}, false
	}
	card := s.cards[brandID][i]
	original := card.Theme
	applyCardUpdate(&card, upd)
	if card.Title == "" || !validCardShape(card.Date, card.Time, card.Format, card.Platform) {
		return ContentCard{}, false
	}
	if upd.Theme != nil && card.Theme != original && !hasTheme(themes, card.Theme) {
		return ContentCard{}, false
	}
	card.ID, card.BrandID = cardID, brandID
	card.Status = ComputeStatus(card)

	next := slices.Clone(s.cards[brandID])
	next[i] = card
	s.setCardsLocked(brandID, next)
	return card, true
}

// DuplicateCard copies a card under a new id with a "(copy)" title suffix.
// The copy starts over at the beginning of the pipeline, so its generated
// fields are cleared and its status is plan.
func (s *CalendarStore) DuplicateCard(brandID, cardID string) (ContentCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.findLocked(brandID, cardID)
	if !ok {
		return ContentCard{}, false
	}
	dup := s.cards[brandID][i]
	dup.ID = s.newID()
	dup.Title += " (copy)"
	for _, f := range GeneratableFields {
		f.Set(&dup, "")
	}
	dup.Status = CardPlan
	s.setCardsLocked(brandID, append(slices.Clone(s.cards[brandID]), dup))
	return dup, true
}

// GenerateField produces text for one field of a card without storing it.
// Failures come back as a result with Failed set and an error text as its
// content. Identical concurrent requests share one generation call. It
// reports false when the card does not exist or the field is unknown.
func (s *CalendarStore) GenerateField(ctx context.Context, brandID, cardID string, field GeneratableField) (FieldResult, bool) {
	if !field.Valid() {
		return FieldResult{}, false
	}
	card, ok := s.Card(brandID, cardID)
	if !ok {
		return FieldResult{}, false
	}
	return s.generateField(ctx, card, field)
}

func (s *CalendarStore) generateField(ctx context.Context, card ContentCard, field GeneratableField) (FieldResult, bool) {
	name, description := "Brand", ""
	if b, ok := s.brands.Brand(card.BrandID); ok {
		name, description = b.Name, b.Description
	}
	themes := s.Themes(card.BrandID)
	key := card.BrandID + "/" + card.ID + "/" + string(field)

	// Every caller holds the WaitGroup until the shared call has settled.
	s.wg.Add(1)
	ch := s.fields.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		req := FieldRequest{BrandName: name, BrandDescription: description, Card: card, Field: field}
		text, err := s.gen.Field(callCtx, req)
		text = strings.TrimSpace(text)
		switch {
		case errors.Is(err, ErrGenerationDisabled):
			s.metrics.RecordFallback("field")
			return FieldResult{Field: field, Content: mockField(card, field, themes)}, nil
		case err != nil:
			s.logger.Error().Err(err).Str("card_id", card.ID).Str("field", string(field)).Msg("Field generation failed")
			return FieldResult{Field: field, Content: fieldErrorText, Failed: true}, nil
		case text == "":
			return FieldResult{Field: field, Content: fieldErrorText, Failed: true}, nil
		}
		return FieldResult{Field: field, Content: text}, nil
	})

	select {
	case res := <-ch:
		s.wg.Done()
		if res.Shared {
			s.metrics.RecordRejected("field", "joined")
		}
		return res.Val.(FieldResult), true
	case <-ctx.Done():
		go func() {
			<-ch
			s.wg.Done()
		}()
		return FieldResult{Field: field, Content: fieldErrorText, Failed: true}, true
	}
}

// FillField generates a field and stores it on the card. Failed results are
// returned but not stored.
func (s *CalendarStore) FillField(ctx context.Context, brandID, cardID string, field GeneratableField) (ContentCard, FieldResult, bool) {
	res, ok := s.GenerateField(ctx, brandID, cardID, field)
	if !ok {
		return ContentCard{}, FieldResult{}, false
	}
	if res.Failed {
		card, ok := s.Card(brandID, cardID)
		return card, res, ok
	}
	card, ok := s.setField(brandID, cardID, field, res.Content)
	return card, res, ok
}

func (s *CalendarStore) setField(brandID, cardID string, field GeneratableField, value string) (ContentCard, bool) {
	var upd CardUpdate
	switch field {
	case FieldHook:
		upd.Hook = &value
	case FieldNarrative:
		upd.Narrative = &value
	case FieldProductionGuide:
		upd.ProductionGuide = &value
	case FieldPrompts:
		upd.Prompts = &value
	case FieldCaption:
		upd.Caption = &value
	}
	return s.UpdateCard(brandID, cardID, upd)
}

// GenerateAllFields fills every empty generatable field in pipeline order.
// Each request sees the fields filled before it. Fields that fail are
// reported and left empty.
func (s *CalendarStore) GenerateAllFields(ctx context.Context, brandID, cardID string) (ContentCard, []FieldResult, bool) {
	card, ok := s.Card(brandID, cardID)
	if !ok {
		return ContentCard{}, nil, false
	}
	var results []FieldResult
	for _, field := range GeneratableFields {
		if field.Get(card) != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		res, _ := s.generateField(ctx, card, field)
		results = append(results, res)
		if res.Failed {
			continue
		}
		updated, ok := s.setField(brandID, cardID, field, res.Content)
		if !ok {
			// Deleted while generating.
			return ContentCard{}, results, false
		}
		card = updated
	}
	return card, results, true
}

// View returns the shared calendar view state.
func (s *CalendarStore) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *CalendarStore) setViewLocked(v ViewState) ViewState {
	s.view = v
	s.persistLocked()
	return v
}

func (s *CalendarStore) SetView(view CalendarView) (ViewState, bool) {
	if !view.Valid() {
		return ViewState{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.View = view
	return s.setViewLocked(v), true
}

func (s *CalendarStore) SetCurrentDate(date string) (ViewState, bool) {
	if _, ok := ParseDate(date); !ok {
		return ViewState{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.CurrentDate = date
	return s.setViewLocked(v), true
}

func (s *CalendarStore) navigate(dir int) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	current, ok := ParseDate(v.CurrentDate)
	if !ok {
		current = civilDate(s.now())
	}
	v.CurrentDate = FormatDate(step(v.View, current, dir))
	return s.setViewLocked(v)
}

// NavigateForward moves one week or one month ahead, depending on the view.
func (s *CalendarStore) NavigateForward() ViewState { return s.navigate(1) }

func (s *CalendarStore) NavigateBackward() ViewState { return s.navigate(-1) }

func (s *CalendarStore) GoToToday() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.CurrentDate = FormatDate(s.now())
	return s.setViewLocked(v)
}

// UpdateSettings merges the given cadence settings. Out-of-range values
// reject the whole update.
func (s *CalendarStore) UpdateSettings(upd SettingsUpdate) (CalendarSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.view.Settings
	if upd.PostsPerDay != nil {
		next.PostsPerDay = *upd.PostsPerDay
	}
	if upd.DaysPerWeek != nil {
		next.DaysPerWeek = *upd.DaysPerWeek
	}
	if !next.Valid() {
		return CalendarSettings{}, false
	}
	v := s.view
	v.Settings = next
	s.setViewLocked(v)
	return next, true
}
