package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name string
		card ContentCard
		want CardStatus
	}{
		{"empty", ContentCard{}, CardPlan},
		{"hook only", ContentCard{Hook: "h"}, CardStory},
		{"narrative", ContentCard{Hook: "h", Narrative: "n"}, CardPrompt},
		{"prompts", ContentCard{Hook: "h", Narrative: "n", Prompts: "p"}, CardProduction},
		{"production guide", ContentCard{Prompts: "p", ProductionGuide: "g"}, CardCaption},
		{"caption only", ContentCard{Caption: "c"}, CardReady},
		{"everything", ContentCard{Hook: "h", Narrative: "n", Prompts: "p", ProductionGuide: "g", Caption: "c"}, CardReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.card))
		})
	}
}

func TestGeneratableField_GetSet(t *testing.T) {
	var c ContentCard
	for _, f := range GeneratableFields {
		f.Set(&c, string(f))
	}
	for _, f := range GeneratableFields {
		assert.Equal(t, string(f), f.Get(c))
	}
	assert.Equal(t, "productionGuide", c.ProductionGuide)
	assert.False(t, GeneratableField("title").Valid())
	assert.Len(t, StatusPipeline, 6)
}
