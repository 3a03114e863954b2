package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"axis.io/contentops/internal/config"
)

const defaultModelName = "gemini-1.5-flash-latest"

var fieldInstructions = map[GeneratableField]string{
	FieldHook:            "Write a compelling hook/opening line for this social media post. It should grab attention immediately and make people stop scrolling. 1-2 sentences max. Can include emoji.",
	FieldNarrative:       "Write the story/narrative structure for this social media post. Describe the content flow: what to show, in what order, and how to build engagement. 2-3 paragraphs.",
	FieldProductionGuide: "Write a production guide for creating this content. Include bullet points about: filming setup, lighting, camera angles, editing style, music suggestions, and any special effects needed.",
	FieldPrompts:         "Write an AI/creative prompt that could be used to generate or guide the creation of this content. Include target audience context, key messages, and style directions.",
	FieldCaption:         "Write a complete social media caption for this post. Include: engaging text (2-3 paragraphs), a call-to-action, and 5-10 relevant hashtags. Match the platform's style.",
}

var sectionDescriptions = map[SectionID]string{
	SectionBrandSummary:       "Brand summary with mission, vision, and values.",
	SectionMarketOverview:     "Market overview with market size, key trends, and opportunity. Use bold stats.",
	SectionCompetitorAnalysis: "Competitor analysis with direct and indirect competitors, and the brand's edge.",
	SectionTargetAudience:     "Target audience with 2-3 detailed personas including age, income, behavior, and pain points.",
	SectionPlatformStrategy:   "Platform strategy with 3-4 platforms, priority levels, content approach, and posting targets.",
	SectionContentPillars:     "5 content pillars, each as a bold numbered heading like **1. Name** (30%) followed by a description.",
	SectionToneOfVoice:        "Tone of voice guidelines with attributes, do's and don'ts.",
	SectionPostingSchedule:    "Weekly posting schedule as a markdown table with days and platforms, plus best posting times.",
	SectionFormatMix:          "Content format distribution with percentages and descriptions.",
	SectionKPIs:               "KPIs organized into Growth, Engagement, Conversion, and Brand categories with specific monthly targets.",
}

// LLMService is the Gemini-backed Generator.
type LLMService struct {
	client    *genai.Client
	modelName string
	logger    zerolog.Logger
}

func NewLLMService(ctx context.Context, logger zerolog.Logger) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.AppConfig.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	modelName := config.AppConfig.GeminiModel
	if modelName == "" {
		modelName = defaultModelName
	}
	return &LLMService{
		client:    client,
		modelName: modelName,
		logger:    logger.With().Str("component", "llm").Logger(),
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing GenAI client")
		} else {
			s.logger.Info().Msg("GenAI client closed")
		}
	}
}

func brandContext(description string) string {
	if description == "" {
		return ""
	}
	return "Brand description: " + description
}

func chatSystemPrompt(req ChatTurnRequest) string {
	if req.Mode == ModeManual {
		return fmt.Sprintf(`You are a social media strategist assistant for the brand "%s".
%s

You are guiding the user through a step-by-step questionnaire to build their social media strategy. Ask one question at a time about:
1. Industry/niche
2. Target audience
3. Preferred platforms
4. Brand tone of voice
5. Primary social media goals

After each answer, acknowledge it briefly and ask the next question. After all 5 questions are answered, summarize the inputs and say the strategy is ready. Include this exact phrase: "Your social media strategy is ready!"

Keep responses concise and professional. Use markdown formatting.`, req.BrandName, brandContext(req.BrandDescription))
	}
	return fmt.Sprintf(`You are an expert social media strategist and brand consultant. You are creating a comprehensive social media strategy for the brand "%s".
%s

Guide the conversation naturally. After the user describes their brand:
- First, acknowledge and analyze what they shared
- Then share your research findings and strategy outline
- Finally, present the complete strategy

When you've gathered enough information and completed the analysis, include this exact phrase: "Your social media strategy is ready!"

Use markdown formatting. Be detailed but concise.`, req.BrandName, brandContext(req.BrandDescription))
}

// geminiHistory converts a conversation into Gemini chat history plus the
// final user turn. Gemini requires the history to open with a user turn and
// to alternate roles, so leading assistant messages are dropped and
// consecutive messages from the same role are merged.
func geminiHistory(msgs []ChatTurnMessage) ([]*genai.Content, *genai.Content, error) {
	var contents []*genai.Content
	for _, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		if len(contents) == 0 && role == "model" {
			continue
		}
		if m.Content == "" {
			continue
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, genai.Text(m.Content))
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("conversation has no user message")
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, nil, errors.New("last message in history is not from 'user'")
	}
	return contents[:len(contents)-1], last, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

func (s *LLMService) ChatTurn(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error) {
	history, last, err := geminiHistory(req.Messages)
	if err != nil {
		return "", err
	}
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(chatSystemPrompt(req))}}

	cs := model.StartChat()
	cs.History = history

	var reply strings.Builder
	iter := cs.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("gemini chat stream failed: %w", err)
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		reply.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if reply.Len() == 0 {
		return "", errors.New("gemini returned an empty chat reply")
	}
	return reply.String(), nil
}

// generateJSON runs a single prompt with a JSON response schema and decodes
// the result into out.
func (s *LLMService) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	model := s.client.GenerativeModel(s.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return fmt.Errorf("gemini request failed: %w", err)
	}
	text := responseText(resp)
	if text == "" {
		return errors.New("gemini returned an empty response")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode gemini response: %w", err)
	}
	return nil
}

func strategySchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(sectionOrder))
	required := make([]string, 0, len(sectionOrder))
	for _, meta := range sectionOrder {
		props[string(meta.ID)] = &genai.Schema{
			Type:        genai.TypeString,
			Description: sectionDescriptions[meta.ID] + " Use markdown formatting.",
		}
		required = append(required, string(meta.ID))
	}
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func contentSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"content": {Type: genai.TypeString, Description: description},
		},
		Required: []string{"content"},
	}
}

func strategyPrompt(req StrategyRequest) string {
	chatContext := ""
	if req.ChatHistory != "" {
		chatContext = "\n\nChat conversation for context:\n" + req.ChatHistory
	}
	return fmt.Sprintf(`You are an expert social media strategist. Create a comprehensive social media strategy for the brand "%s".

%s
%s

Generate detailed, actionable content for all 10 strategy sections. Use markdown formatting with bold text, bullet points, and tables where appropriate. Make the content specific to this brand, not generic.`,
		req.BrandName, brandContext(req.BrandDescription), chatContext)
}

func (s *LLMService) Strategy(ctx context.Context, req StrategyRequest) (map[SectionID]string, error) {
	var raw map[string]string
	if err := s.generateJSON(ctx, strategyPrompt(req), strategySchema(), &raw); err != nil {
		return nil, err
	}
	out := make(map[SectionID]string, len(raw))
	for k, v := range raw {
		if id := SectionID(k); id.Valid() {
			out[id] = v
		}
	}
	return out, nil
}

func sectionPrompt(req SectionRequest) string {
	return fmt.Sprintf(`You are an expert social media strategist working on the strategy for the brand "%s".
%s

Regenerate ONLY the "%s" section. The current content is:
%s

Create a fresh, different version of this section with a new angle or approach. Keep the same quality and depth. %s Use markdown formatting.`,
		req.BrandName, brandContext(req.BrandDescription), req.Title, req.CurrentContent, sectionDescriptions[req.Section])
}

func (s *LLMService) Section(ctx context.Context, req SectionRequest) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := s.generateJSON(ctx, sectionPrompt(req), contentSchema("The new section content in markdown"), &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func cadenceInstruction(postsPerDay, daysPerWeek int) string {
	switch daysPerWeek {
	case 5:
		return fmt.Sprintf("Schedule %d posts per weekday, no weekend posts.", postsPerDay)
	case 6:
		return fmt.Sprintf("Schedule %d posts per weekday, 1 post on Saturday, none on Sunday.", postsPerDay)
	default:
		return fmt.Sprintf("Schedule %d posts per weekday and 1-2 posts on weekends.", postsPerDay)
	}
}

func calendarPrompt(req CalendarRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a social media content planner for %q.\n", req.BrandName)
	if req.BrandDescription != "" {
		fmt.Fprintf(&b, "Brand description: %s\n", req.BrandDescription)
	}
	if req.Strategy != "" {
		fmt.Fprintf(&b, "Brand strategy context: %s\n", req.Strategy)
	}
	fmt.Fprintf(&b, "\nGenerate a content calendar from %s to %s.\n", req.StartDate, req.EndDate)
	fmt.Fprintf(&b, "- %s\n", cadenceInstruction(req.PostsPerDay, req.DaysPerWeek))
	b.WriteString("- Distribute posts across different platforms and formats.\n")
	fmt.Fprintf(&b, "- Use ONLY these content theme slugs for the theme field: %s.\n", strings.Join(themeIDs(req.Themes), ", "))
	labels := make([]string, len(req.Themes))
	for i, t := range req.Themes {
		labels[i] = t.Label
	}
	fmt.Fprintf(&b, "- Theme labels for context: %s.\n", strings.Join(labels, ", "))
	b.WriteString("- Vary posting times between 08:00 and 20:00.\n")
	b.WriteString("- Create catchy, specific titles for each post.\n\n")
	b.WriteString("Make the content calendar varied, strategic, and aligned with the brand.")
	return b.String()
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func calendarSchema(themes []Theme) *genai.Schema {
	card := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":     {Type: genai.TypeString, Description: "ISO date string YYYY-MM-DD"},
			"time":     {Type: genai.TypeString, Description: "Posting time HH:mm"},
			"format":   {Type: genai.TypeString, Enum: enumOf(Formats)},
			"platform": {Type: genai.TypeString, Enum: enumOf(Platforms)},
			"theme":    {Type: genai.TypeString, Enum: themeIDs(themes), Description: "Content theme/pillar slug from strategy"},
			"title":    {Type: genai.TypeString, Description: "Short, catchy content title"},
		},
		Required: []string{"date", "time", "format", "platform", "theme", "title"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"cards": {Type: genai.TypeArray, Items: card},
		},
		Required: []string{"cards"},
	}
}

func (s *LLMService) Calendar(ctx context.Context, req CalendarRequest) ([]CardDescriptor, error) {
	var out struct {
		Cards []CardDescriptor `json:"cards"`
	}
	if err := s.generateJSON(ctx, calendarPrompt(req), calendarSchema(req.Themes), &out); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

func fieldPrompt(req FieldRequest) string {
	instruction, ok := fieldInstructions[req.Field]
	if !ok {
		instruction = fmt.Sprintf("Generate content for the %q field of this social media post.", req.Field)
	}
	return fmt.Sprintf(`You are a social media content writer for "%s".
%s

Content card context:
- Title: %s
- Theme: %s
- Format: %s
- Platform: %s
- Date: %s

%s`, req.BrandName, brandContext(req.BrandDescription),
		req.Card.Title, req.Card.Theme, req.Card.Format, req.Card.Platform, req.Card.Date, instruction)
}

func (s *LLMService) Field(ctx context.Context, req FieldRequest) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := s.generateJSON(ctx, fieldPrompt(req), contentSchema("The generated content for this field"), &out); err != nil {
		return "", err
	}
	return out.Content, nil
}
