package core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedSections(prefix string) map[SectionID]string {
	out := make(map[SectionID]string)
	for _, id := range SectionIDs() {
		out[id] = fmt.Sprintf("%s %s", prefix, id)
	}
	return out
}

func TestStrategyStore_GenerateStrategy(t *testing.T) {
	release := make(chan struct{})
	var got StrategyRequest
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			return "Thanks!", nil
		},
		strategy: func(_ context.Context, req StrategyRequest) (map[SectionID]string, error) {
			got = req
			<-release
			return generatedSections("generated"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)
	cp, _ := ws.Chat.SendMessage(b.ID, "We roast coffee")
	await(t, cp)

	p, ok := ws.GenerateStrategy(b.ID)
	require.True(t, ok)

	st, ok := ws.Strategies.Strategy(b.ID)
	require.True(t, ok)
	assert.Equal(t, StatusGenerating, st.Status)
	require.Len(t, st.Sections, 10)
	for _, sec := range st.Sections {
		assert.Equal(t, generatingSentinel, sec.Content)
	}

	close(release)
	await(t, p)

	st, _ = ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusDraft, st.Status)
	for i, sec := range st.Sections {
		assert.Equal(t, sectionOrder[i].ID, sec.ID)
		assert.Equal(t, sectionOrder[i].Title, sec.Title)
		assert.Equal(t, "generated "+string(sec.ID), sec.Content)
	}
	assert.Equal(t, "Acme", got.BrandName)
	assert.Contains(t, got.ChatHistory, "user: We roast coffee")
}

func TestStrategyStore_GenerateStrategyIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			calls.Add(1)
			return generatedSections("first"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")

	p, ok := ws.GenerateStrategy(b.ID)
	require.True(t, ok)
	_, ok = ws.GenerateStrategy(b.ID)
	assert.False(t, ok, "a placeholder already counts as a strategy")
	await(t, p)

	_, ok = ws.GenerateStrategy(b.ID)
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStrategyStore_GenerateStrategyFallback(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return nil, errors.New("boom")
		},
	})
	b := addTestBrand(t, ws, "Acme")

	p, ok := ws.GenerateStrategy(b.ID)
	require.True(t, ok)
	await(t, p)

	st, _ := ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusDraft, st.Status)
	require.Len(t, st.Sections, 10)
	summary, _ := st.Section(SectionBrandSummary)
	assert.Contains(t, summary.Content, "Acme")
	for _, sec := range st.Sections {
		assert.NotEmpty(t, sec.Content)
		assert.NotEqual(t, generatingSentinel, sec.Content)
	}

	themes := ws.Strategies.Themes(b.ID)
	assert.Equal(t, []string{"product-showcase", "education-tips", "use-cases-inspiration", "community-ugc", "behind-the-scenes"}, themeIDs(themes))
}

func TestStrategyStore_PartialResponseIsCompleted(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return map[SectionID]string{SectionBrandSummary: "Only this", SectionKPIs: "  "}, nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)

	st, _ := ws.Strategies.Strategy(b.ID)
	summary, _ := st.Section(SectionBrandSummary)
	assert.Equal(t, "Only this", summary.Content)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, fallbackSection("Acme", SectionKPIs), kpis.Content)
}

func TestStrategyStore_UpdateSectionRevertsApproval(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return generatedSections("v1"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)
	require.True(t, ws.ApproveStrategy(b.ID))

	require.True(t, ws.Strategies.UpdateSection(b.ID, SectionKPIs, "New KPIs"))
	st, _ := ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusDraft, st.Status)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, "New KPIs", kpis.Content)

	assert.False(t, ws.Strategies.UpdateSection(b.ID, "unknown", "x"))
	assert.False(t, ws.Strategies.UpdateSection("missing", SectionKPIs, "x"))
}

func TestStrategyStore_RegenerateSection(t *testing.T) {
	release := make(chan struct{})
	var got SectionRequest
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return generatedSections("v1"), nil
		},
		section: func(_ context.Context, req SectionRequest) (string, error) {
			got = req
			<-release
			return "fresh tone", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)
	ws.ApproveStrategy(b.ID)

	rp, ok := ws.Strategies.RegenerateSection(b.ID, SectionToneOfVoice)
	require.True(t, ok)
	st, _ := ws.Strategies.Strategy(b.ID)
	tone, _ := st.Section(SectionToneOfVoice)
	assert.Equal(t, regeneratingSentinel, tone.Content)

	close(release)
	await(t, rp)

	st, _ = ws.Strategies.Strategy(b.ID)
	tone, _ = st.Section(SectionToneOfVoice)
	assert.Equal(t, "fresh tone", tone.Content)
	assert.Equal(t, StatusDraft, st.Status)
	assert.Equal(t, "v1 tone-of-voice", got.CurrentContent)
	assert.Equal(t, "Tone of Voice", got.Title)
	for _, sec := range st.Sections {
		assert.NotEqual(t, regeneratingSentinel, sec.Content)
	}
}

func TestStrategyStore_RegenerateSectionFailureRestores(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return generatedSections("v1"), nil
		},
		section: func(context.Context, SectionRequest) (string, error) {
			return "", errors.New("timeout")
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)
	ws.ApproveStrategy(b.ID)

	rp, ok := ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	require.True(t, ok)
	await(t, rp)

	st, _ := ws.Strategies.Strategy(b.ID)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, "v1 kpis", kpis.Content)
	assert.Equal(t, StatusApproved, st.Status, "a failed regeneration changes nothing")
}

func TestStrategyStore_OverlappingRegenerate(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return generatedSections("v1"), nil
		},
		section: func(context.Context, SectionRequest) (string, error) {
			calls.Add(1)
			<-release
			return "v2", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)

	first, ok := ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	require.True(t, ok)
	second, ok := ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	assert.False(t, ok)
	require.NotNil(t, second)

	other, ok := ws.Strategies.RegenerateSection(b.ID, SectionFormatMix)
	assert.True(t, ok, "other sections regenerate independently")

	close(release)
	await(t, first)
	await(t, second)
	await(t, other)

	assert.Equal(t, int32(2), calls.Load())
	st, _ := ws.Strategies.Strategy(b.ID)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, "v2", kpis.Content)
}

func TestStrategyStore_EditDuringRegenerationWins(t *testing.T) {
	release := make(chan struct{})
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			return generatedSections("v1"), nil
		},
		section: func(context.Context, SectionRequest) (string, error) {
			<-release
			return "generated", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)

	rp, _ := ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	require.True(t, ws.Strategies.UpdateSection(b.ID, SectionKPIs, "typed by hand"))
	close(release)
	await(t, rp)

	st, _ := ws.Strategies.Strategy(b.ID)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, "typed by hand", kpis.Content)
}

func TestStrategyStore_RegenerateRejected(t *testing.T) {
	release := make(chan struct{})
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			<-release
			return generatedSections("v1"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")

	rp, ok := ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	assert.False(t, ok)
	assert.Nil(t, rp, "no strategy yet")

	p, _ := ws.GenerateStrategy(b.ID)
	rp, ok = ws.Strategies.RegenerateSection(b.ID, SectionKPIs)
	assert.False(t, ok)
	assert.Nil(t, rp, "still generating")

	close(release)
	await(t, p)
	rp, ok = ws.Strategies.RegenerateSection(b.ID, "unknown")
	assert.False(t, ok)
	assert.Nil(t, rp)
}

func TestStrategyStore_ApproveUnlocksCalendar(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	b := addTestBrand(t, ws, "Acme")
	assert.False(t, ws.ApproveStrategy(b.ID))
	assert.False(t, ws.Navigation.IsUnlocked(TabCalendar))

	p, _ := ws.GenerateStrategy(b.ID)
	await(t, p)
	require.True(t, ws.ApproveStrategy(b.ID))

	st, _ := ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusApproved, st.Status)
	assert.True(t, ws.Navigation.IsUnlocked(TabCalendar))
}

func TestStrategyStore_DeletedBrandDropsResult(t *testing.T) {
	release := make(chan struct{})
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			<-release
			return generatedSections("late"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, _ := ws.GenerateStrategy(b.ID)

	require.True(t, ws.DeleteBrand(b.ID))
	close(release)
	await(t, p)

	_, ok := ws.Strategies.Strategy(b.ID)
	assert.False(t, ok)
}

func TestStrategyStore_EditsRejectedWhileGenerating(t *testing.T) {
	release := make(chan struct{})
	ws := newTestWorkspace(t, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			<-release
			return generatedSections("v1"), nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	p, ok := ws.GenerateStrategy(b.ID)
	require.True(t, ok)

	assert.False(t, ws.Strategies.UpdateSection(b.ID, SectionKPIs, "my kpis"))
	assert.False(t, ws.ApproveStrategy(b.ID))
	assert.False(t, ws.Navigation.IsUnlocked(TabCalendar))
	st, _ := ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusGenerating, st.Status)

	close(release)
	await(t, p)

	st, _ = ws.Strategies.Strategy(b.ID)
	assert.Equal(t, StatusDraft, st.Status)
	kpis, _ := st.Section(SectionKPIs)
	assert.Equal(t, "v1 kpis", kpis.Content)

	require.True(t, ws.Strategies.UpdateSection(b.ID, SectionKPIs, "my kpis"))
	require.True(t, ws.ApproveStrategy(b.ID))
}

func TestStrategyStore_GenerateRequiresBrand(t *testing.T) {
	s := NewStrategyStore(NewBrandRegistry(testOptions(nil)), nil, &fakeGenerator{}, testOptions(nil))
	p, ok := s.GenerateStrategy("ghost", "Ghost")
	assert.False(t, ok)
	assert.Nil(t, p)
	_, ok = s.Strategy("ghost")
	assert.False(t, ok)
}

func TestStrategyStore_ForgetBeforeGenerateInvalidatesToken(t *testing.T) {
	s := NewStrategyStore(NewBrandRegistry(testOptions(nil)), nil, &fakeGenerator{}, testOptions(nil))
	s.Forget("b1")
	s.Forget("b1")
	assert.Equal(t, uint64(2), s.tokens["b1"])
}

func TestStrategyStore_LoadRepairsInterruptedGeneration(t *testing.T) {
	p := newMemPersister()
	opts := testOptions(p)
	brands := NewBrandRegistry(opts)
	b, _ := brands.AddBrand(NewBrand{Name: "Acme"})

	release := make(chan struct{})
	s := NewStrategyStore(brands, nil, &fakeGenerator{
		strategy: func(context.Context, StrategyRequest) (map[SectionID]string, error) {
			<-release
			return nil, errors.New("never")
		},
	}, opts)
	pending, _ := s.GenerateStrategy(b.ID, b.Name)

	restored := NewStrategyStore(brands, nil, &fakeGenerator{}, testOptions(p))
	require.NoError(t, restored.Load())
	st, ok := restored.Strategy(b.ID)
	require.True(t, ok)
	assert.Equal(t, StatusDraft, st.Status)
	for _, sec := range st.Sections {
		assert.Equal(t, fallbackSection("Acme", sec.ID), sec.Content)
	}

	close(release)
	await(t, pending)
	s.Wait()
}

func TestBrandStrategy_Text(t *testing.T) {
	st := BrandStrategy{Sections: []StrategySection{
		{ID: SectionBrandSummary, Title: "Brand Summary", Content: "We make coffee."},
		{ID: SectionKPIs, Title: "KPIs", Content: regeneratingSentinel},
	}}
	assert.Equal(t, "## Brand Summary\nWe make coffee.", st.Text())
}
