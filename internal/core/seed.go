package core

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/coff-ai.yaml
var defaultFixture []byte

// Fixture describes brands to preload, optionally with a strategy and a
// chat session each.
type Fixture struct {
	Brands []FixtureBrand `yaml:"brands"`
}

type FixtureBrand struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	WebsiteURL  string           `yaml:"website_url"`
	Strategy    *FixtureStrategy `yaml:"strategy"`
	Chat        *FixtureChat     `yaml:"chat"`
}

type FixtureStrategy struct {
	Status   StrategyStatus       `yaml:"status"`
	Sections map[SectionID]string `yaml:"sections"`
}

type FixtureChat struct {
	Mode          ChatMode         `yaml:"mode"`
	StrategyReady bool             `yaml:"strategy_ready"`
	Messages      []FixtureMessage `yaml:"messages"`
}

type FixtureMessage struct {
	Role    Role   `yaml:"role"`
	Content string `yaml:"content"`
}

// DefaultFixture returns the built-in pilot brand fixture.
func DefaultFixture() (Fixture, error) {
	return ParseFixture(defaultFixture)
}

// ParseFixture decodes and validates a YAML fixture.
func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, b := range f.Brands {
		if strings.TrimSpace(b.ID) == "" || strings.TrimSpace(b.Name) == "" {
			return Fixture{}, fmt.Errorf("fixture brand %d: id and name are required", i)
		}
		if b.Strategy != nil {
			for id := range b.Strategy.Sections {
				if !id.Valid() {
					return Fixture{}, fmt.Errorf("fixture brand %s: unknown section %q", b.ID, id)
				}
			}
			switch b.Strategy.Status {
			case "":
				f.Brands[i].Strategy.Status = StatusDraft
			case StatusDraft, StatusApproved:
			default:
				return Fixture{}, fmt.Errorf("fixture brand %s: invalid strategy status %q", b.ID, b.Strategy.Status)
			}
		}
		if b.Chat != nil && !b.Chat.Mode.Valid() {
			return Fixture{}, fmt.Errorf("fixture brand %s: invalid chat mode %q", b.ID, b.Chat.Mode)
		}
	}
	return f, nil
}

// Seed installs the fixture, replacing any existing records with the same
// brand ids. An approved strategy also unlocks the calendar tab.
func (w *Workspace) Seed(f Fixture) {
	for _, fb := range f.Brands {
		w.Brands.importBrand(Brand{
			ID:          fb.ID,
			Name:        fb.Name,
			Description: strings.TrimSpace(fb.Description),
			WebsiteURL:  fb.WebsiteURL,
		})

		if fb.Chat != nil {
			session := ChatSession{Mode: fb.Chat.Mode, StrategyReady: fb.Chat.StrategyReady}
			for _, m := range fb.Chat.Messages {
				session.Messages = append(session.Messages, w.Chat.newMessage(m.Role, m.Content, nil))
			}
			w.Chat.importSession(fb.ID, session)
		}

		if fb.Strategy != nil {
			st := BrandStrategy{BrandID: fb.ID, Status: fb.Strategy.Status}
			for _, meta := range sectionOrder {
				if content, ok := fb.Strategy.Sections[meta.ID]; ok {
					st.Sections = append(st.Sections, StrategySection{ID: meta.ID, Title: meta.Title, Content: content})
				}
			}
			w.Strategies.importStrategy(st)
			if st.Status == StatusApproved {
				w.Navigation.UnlockTab(TabCalendar)
			}
		}
	}
}
