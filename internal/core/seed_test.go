package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixture(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)
	require.Len(t, f.Brands, 1)

	fb := f.Brands[0]
	assert.Equal(t, "seed-coff-ai", fb.ID)
	assert.Equal(t, "Coff AI", fb.Name)
	require.NotNil(t, fb.Strategy)
	assert.Equal(t, StatusApproved, fb.Strategy.Status)
	assert.Len(t, fb.Strategy.Sections, 10)
	require.NotNil(t, fb.Chat)
	assert.True(t, fb.Chat.StrategyReady)
}

func TestParseFixture_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing name":   "brands:\n  - id: x\n",
		"bad section":    "brands:\n  - id: x\n    name: X\n    strategy:\n      sections:\n        slogan: hi\n",
		"bad status":     "brands:\n  - id: x\n    name: X\n    strategy:\n      status: generating\n",
		"bad chat mode":  "brands:\n  - id: x\n    name: X\n    chat:\n      mode: turbo\n",
		"malformed yaml": "brands: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixture([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseFixture_DefaultsToDraft(t *testing.T) {
	f, err := ParseFixture([]byte("brands:\n  - id: x\n    name: X\n    strategy:\n      sections:\n        kpis: Grow\n"))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, f.Brands[0].Strategy.Status)
}

func TestWorkspace_Seed(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	f, err := DefaultFixture()
	require.NoError(t, err)

	ws.Seed(f)
	ws.Seed(f)

	brands := ws.Brands.Brands()
	require.Len(t, brands, 1, "seeding twice replaces records")
	assert.Equal(t, "CA", brands[0].Initials)

	st, ok := ws.Strategies.Strategy("seed-coff-ai")
	require.True(t, ok)
	assert.Equal(t, StatusApproved, st.Status)
	assert.Equal(t,
		[]string{"ai-creation-showcase", "creator-education", "use-cases-inspiration", "community-ugc", "product-innovation"},
		themeIDs(ws.Calendar.Themes("seed-coff-ai")))

	s := ws.Chat.Session("seed-coff-ai")
	assert.Equal(t, ModeFullAuto, s.Mode)
	assert.Len(t, s.Messages, 5)
	assert.True(t, ws.Navigation.IsUnlocked(TabCalendar))

	p, ok := ws.Calendar.GenerateCalendar("seed-coff-ai")
	require.True(t, ok)
	await(t, p)
	for _, c := range ws.Calendar.Cards("seed-coff-ai") {
		assert.Contains(t, themeIDs(ws.Calendar.Themes("seed-coff-ai")), c.Theme)
	}
}
