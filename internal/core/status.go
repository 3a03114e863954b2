package core

type CardStatus string

const (
	CardPlan       CardStatus = "plan"
	CardStory      CardStatus = "story"
	CardPrompt     CardStatus = "prompt"
	CardProduction CardStatus = "production"
	CardCaption    CardStatus = "caption"
	CardReady      CardStatus = "ready"
)

// StatusPipeline lists the production stages in order.
var StatusPipeline = []CardStatus{CardPlan, CardStory, CardPrompt, CardProduction, CardCaption, CardReady}

// StatusLabels are the display names of the stages.
var StatusLabels = map[CardStatus]string{
	CardPlan:       "Plan",
	CardStory:      "Story",
	CardPrompt:     "Prompt",
	CardProduction: "Production",
	CardCaption:    "Caption",
	CardReady:      "Ready",
}

// GeneratableField names one of the five text fields of a card that the
// generation service can fill.
type GeneratableField string

const (
	FieldHook            GeneratableField = "hook"
	FieldNarrative       GeneratableField = "narrative"
	FieldProductionGuide GeneratableField = "productionGuide"
	FieldPrompts         GeneratableField = "prompts"
	FieldCaption         GeneratableField = "caption"
)

// GeneratableFields is in pipeline order.
var GeneratableFields = []GeneratableField{FieldHook, FieldNarrative, FieldPrompts, FieldProductionGuide, FieldCaption}

var FieldLabels = map[GeneratableField]string{
	FieldHook:            "Hook",
	FieldNarrative:       "Story / Narrative",
	FieldProductionGuide: "Production Guide",
	FieldPrompts:         "Prompts",
	FieldCaption:         "Caption & Hashtags",
}

func (f GeneratableField) Valid() bool {
	_, ok := FieldLabels[f]
	return ok
}

// Get returns the card's value for field.
func (f GeneratableField) Get(c ContentCard) string {
	switch f {
	case FieldHook:
		return c.Hook
	case FieldNarrative:
		return c.Narrative
	case FieldProductionGuide:
		return c.ProductionGuide
	case FieldPrompts:
		return c.Prompts
	case FieldCaption:
		return c.Caption
	}
	return ""
}

// Set writes value into the card's field. Status is not touched.
func (f GeneratableField) Set(c *ContentCard, value string) {
	switch f {
	case FieldHook:
		c.Hook = value
	case FieldNarrative:
		c.Narrative = value
	case FieldProductionGuide:
		c.ProductionGuide = value
	case FieldPrompts:
		c.Prompts = value
	case FieldCaption:
		c.Caption = value
	}
}

// ComputeStatus derives a card's pipeline stage from which generated fields
// are present. Fields are checked from the end of the pipeline backwards and
// the first one present wins; earlier fields are not required, so a card
// with only a caption is "ready".
func ComputeStatus(c ContentCard) CardStatus {
	switch {
	case c.Caption != "":
		return CardReady
	case c.ProductionGuide != "":
		return CardCaption
	case c.Prompts != "":
		return CardProduction
	case c.Narrative != "":
		return CardPrompt
	case c.Hook != "":
		return CardStory
	default:
		return CardPlan
	}
}
