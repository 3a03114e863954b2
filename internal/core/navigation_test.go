package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationGate(t *testing.T) {
	g := NewNavigationGate(testOptions(nil))
	assert.Equal(t, NavigationState{ActiveTab: TabStrategy, UnlockedTabs: []Tab{TabStrategy}}, g.State())

	assert.True(t, g.SetActiveTab(TabPublish), "locked tabs can still be selected")
	assert.Equal(t, TabPublish, g.State().ActiveTab)
	assert.False(t, g.SetActiveTab("settings"))

	assert.True(t, g.UnlockTab(TabCalendar))
	assert.True(t, g.UnlockTab(TabCalendar))
	assert.Equal(t, []Tab{TabStrategy, TabCalendar}, g.State().UnlockedTabs)
	assert.False(t, g.UnlockTab("settings"))
	assert.False(t, g.IsUnlocked(TabAnalytics))
}

func TestNavigationGate_Persistence(t *testing.T) {
	p := newMemPersister()
	g := NewNavigationGate(testOptions(p))
	g.UnlockTab(TabCalendar)
	g.SetActiveTab(TabCalendar)

	restored := NewNavigationGate(testOptions(p))
	require.NoError(t, restored.Load())
	assert.Equal(t, g.State(), restored.State())
}
