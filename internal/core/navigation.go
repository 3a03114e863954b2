package core

import (
	"slices"
	"sync"
)

type Tab string

const (
	TabStrategy      Tab = "strategy"
	TabCalendar      Tab = "calendar"
	TabProduction    Tab = "production"
	TabPublish       Tab = "publish"
	TabAnalytics     Tab = "analytics"
	TabAdvertising   Tab = "advertising"
	TabAdPerformance Tab = "ad-performance"
)

var Tabs = []Tab{TabStrategy, TabCalendar, TabProduction, TabPublish, TabAnalytics, TabAdvertising, TabAdPerformance}

func (t Tab) Valid() bool {
	return slices.Contains(Tabs, t)
}

type NavigationState struct {
	ActiveTab    Tab   `json:"active_tab"`
	UnlockedTabs []Tab `json:"unlocked_tabs"`
}

// NavigationGate tracks the active tab and which tabs have been unlocked.
// The unlocked set only grows. Whether a locked tab may be shown is decided
// by the client.
type NavigationGate struct {
	*storeBase

	mu    sync.Mutex
	state NavigationState
}

func NewNavigationGate(opts Options) *NavigationGate {
	return &NavigationGate{
		storeBase: newStoreBase("navigation", opts),
		state:     NavigationState{ActiveTab: TabStrategy, UnlockedTabs: []Tab{TabStrategy}},
	}
}

func (g *NavigationGate) Load() error {
	var snap NavigationState
	found, err := g.load(&snap)
	if err != nil || !found {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if snap.ActiveTab.Valid() {
		g.state.ActiveTab = snap.ActiveTab
	}
	for _, t := range snap.UnlockedTabs {
		if t.Valid() && !slices.Contains(g.state.UnlockedTabs, t) {
			g.state.UnlockedTabs = append(g.state.UnlockedTabs, t)
		}
	}
	return nil
}

func (g *NavigationGate) State() NavigationState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return NavigationState{ActiveTab: g.state.ActiveTab, UnlockedTabs: slices.Clone(g.state.UnlockedTabs)}
}

// SetActiveTab selects any known tab, locked or not.
func (g *NavigationGate) SetActiveTab(tab Tab) bool {
	if !tab.Valid() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = NavigationState{ActiveTab: tab, UnlockedTabs: g.state.UnlockedTabs}
	g.save(g.state)
	return true
}

// UnlockTab adds tab to the unlocked set. Unlocking an unlocked tab is a
// no-op.
func (g *NavigationGate) UnlockTab(tab Tab) bool {
	if !tab.Valid() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if slices.Contains(g.state.UnlockedTabs, tab) {
		return true
	}
	g.state = NavigationState{
		ActiveTab:    g.state.ActiveTab,
		UnlockedTabs: append(slices.Clone(g.state.UnlockedTabs), tab),
	}
	g.save(g.state)
	g.logger.Info().Str("tab", string(tab)).Msg("Tab unlocked")
	return true
}

func (g *NavigationGate) IsUnlocked(tab Tab) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Contains(g.state.UnlockedTabs, tab)
}
