package core

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiHistory(t *testing.T) {
	msgs := []ChatTurnMessage{
		{Role: RoleAssistant, Content: "Welcome!"},
		{Role: RoleUser, Content: "We sell coffee."},
		{Role: RoleAssistant, Content: "Great."},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleAssistant, Content: "Who buys it?"},
		{Role: RoleUser, Content: "Students."},
	}
	history, last, err := geminiHistory(msgs)
	require.NoError(t, err)

	require.Len(t, history, 2, "the leading assistant turn is dropped")
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("Great."), genai.Text("Who buys it?")}, history[1].Parts)
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, []genai.Part{genai.Text("Students.")}, last.Parts)
}

func TestGeminiHistory_Errors(t *testing.T) {
	_, _, err := geminiHistory([]ChatTurnMessage{{Role: RoleAssistant, Content: "Welcome!"}})
	assert.Error(t, err)

	_, _, err = geminiHistory([]ChatTurnMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	assert.Error(t, err)
}

func TestChatSystemPrompt(t *testing.T) {
	manual := chatSystemPrompt(ChatTurnRequest{BrandName: "Acme", BrandDescription: "Roasters", Mode: ModeManual})
	assert.Contains(t, manual, `"Acme"`)
	assert.Contains(t, manual, "Brand description: Roasters")
	assert.Contains(t, manual, "one question at a time")
	assert.Contains(t, manual, StrategyReadyMarker)

	auto := chatSystemPrompt(ChatTurnRequest{BrandName: "Acme", Mode: ModeFullAuto})
	assert.NotContains(t, auto, "Brand description")
	assert.Contains(t, auto, StrategyReadyMarker)
}

func TestCalendarPrompt(t *testing.T) {
	prompt := calendarPrompt(CalendarRequest{
		BrandName:   "Acme",
		Strategy:    "## KPIs\nGrow",
		StartDate:   "2025-03-10",
		EndDate:     "2025-03-23",
		PostsPerDay: 2,
		DaysPerWeek: 5,
		Themes:      DefaultThemes[:2],
	})
	assert.Contains(t, prompt, "from 2025-03-10 to 2025-03-23")
	assert.Contains(t, prompt, "2 posts per weekday, no weekend posts")
	assert.Contains(t, prompt, "ai-innovation, coffee-education")
	assert.Contains(t, prompt, "## KPIs")
}

func TestCadenceInstruction(t *testing.T) {
	assert.Contains(t, cadenceInstruction(3, 6), "1 post on Saturday")
	assert.Contains(t, cadenceInstruction(3, 7), "weekends")
}

func TestCalendarSchema(t *testing.T) {
	schema := calendarSchema(DefaultThemes)
	card := schema.Properties["cards"].Items
	require.NotNil(t, card)
	assert.Equal(t, themeIDs(DefaultThemes), card.Properties["theme"].Enum)
	assert.Equal(t, []string{"reel", "carousel", "single-post", "story"}, card.Properties["format"].Enum)
	assert.Len(t, card.Required, 6)
}

func TestFieldPrompt(t *testing.T) {
	prompt := fieldPrompt(FieldRequest{
		BrandName: "Acme",
		Card:      ContentCard{Title: "Latte art", Theme: "lifestyle", Format: FormatReel, Platform: PlatformTikTok, Date: "2025-03-12"},
		Field:     FieldHook,
	})
	assert.Contains(t, prompt, "Title: Latte art")
	assert.Contains(t, prompt, "Platform: tiktok")
}
