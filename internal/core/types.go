package core

import "time"

// Pending is closed once the asynchronous half of an operation has settled
// and its result has been reconciled into the store.
type Pending <-chan struct{}

type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WebsiteURL  string    `json:"website_url"`
	Initials    string    `json:"initials"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Chat ---

type ChatMode string

const (
	ModeFullAuto ChatMode = "full-auto"
	ModeManual   ChatMode = "manual"
)

func (m ChatMode) Valid() bool {
	return m == ModeFullAuto || m == ModeManual
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type MessageOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Options   []MessageOption `json:"options,omitempty"` // only on the trailing assistant message
}

type ChatSession struct {
	Mode          ChatMode  `json:"mode"` // "" until a mode is chosen
	Messages      []Message `json:"messages"`
	StrategyReady bool      `json:"strategy_ready"`
	IsTyping      bool      `json:"is_typing"`
}

func (s ChatSession) clone() ChatSession {
	msgs := make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		if m.Options != nil {
			m.Options = append([]MessageOption(nil), m.Options...)
		}
		msgs[i] = m
	}
	s.Messages = msgs
	return s
}

// --- Strategy ---

type SectionID string

const (
	SectionBrandSummary       SectionID = "brand-summary"
	SectionMarketOverview     SectionID = "market-overview"
	SectionCompetitorAnalysis SectionID = "competitor-analysis"
	SectionTargetAudience     SectionID = "target-audience"
	SectionPlatformStrategy   SectionID = "platform-strategy"
	SectionContentPillars     SectionID = "content-pillars"
	SectionToneOfVoice        SectionID = "tone-of-voice"
	SectionPostingSchedule    SectionID = "posting-schedule"
	SectionFormatMix          SectionID = "format-mix"
	SectionKPIs               SectionID = "kpis"
)

type sectionMeta struct {
	ID    SectionID
	Title string
}

// sectionOrder is the canonical order of the ten strategy sections.
var sectionOrder = []sectionMeta{
	{SectionBrandSummary, "Brand Summary"},
	{SectionMarketOverview, "Market Overview"},
	{SectionCompetitorAnalysis, "Competitor Analysis"},
	{SectionTargetAudience, "Target Audience"},
	{SectionPlatformStrategy, "Platform Strategy"},
	{SectionContentPillars, "Content Pillars"},
	{SectionToneOfVoice, "Tone of Voice"},
	{SectionPostingSchedule, "Posting Schedule"},
	{SectionFormatMix, "Format Mix"},
	{SectionKPIs, "KPIs"},
}

// SectionIDs returns the ten section identifiers in canonical order.
func SectionIDs() []SectionID {
	ids := make([]SectionID, len(sectionOrder))
	for i, m := range sectionOrder {
		ids[i] = m.ID
	}
	return ids
}

func (id SectionID) Valid() bool {
	_, ok := sectionTitle(id)
	return ok
}

func sectionTitle(id SectionID) (string, bool) {
	for _, m := range sectionOrder {
		if m.ID == id {
			return m.Title, true
		}
	}
	return "", false
}

type StrategyStatus string

const (
	StatusDraft      StrategyStatus = "draft"
	StatusGenerating StrategyStatus = "generating"
	StatusApproved   StrategyStatus = "approved"
)

const (
	generatingSentinel   = "Generating..."
	regeneratingSentinel = "Regenerating..."
)

type StrategySection struct {
	ID      SectionID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"` // markdown
}

type BrandStrategy struct {
	BrandID   string            `json:"brand_id"`
	Status    StrategyStatus    `json:"status"`
	Sections  []StrategySection `json:"sections"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s BrandStrategy) clone() BrandStrategy {
	s.Sections = append([]StrategySection(nil), s.Sections...)
	return s
}

// Section returns the section with the given id.
func (s BrandStrategy) Section(id SectionID) (StrategySection, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return StrategySection{}, false
}

// --- Calendar ---

type ContentFormat string

const (
	FormatReel       ContentFormat = "reel"
	FormatCarousel   ContentFormat = "carousel"
	FormatSinglePost ContentFormat = "single-post"
	FormatStory      ContentFormat = "story"
)

var Formats = []ContentFormat{FormatReel, FormatCarousel, FormatSinglePost, FormatStory}

var FormatLabels = map[ContentFormat]string{
	FormatReel:       "Reel",
	FormatCarousel:   "Carousel",
	FormatSinglePost: "Single Post",
	FormatStory:      "Story",
}

func (f ContentFormat) Valid() bool {
	_, ok := FormatLabels[f]
	return ok
}

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTikTok    Platform = "tiktok"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformPinterest Platform = "pinterest"
	PlatformX         Platform = "x"
)

var Platforms = []Platform{PlatformInstagram, PlatformFacebook, PlatformTikTok, PlatformLinkedIn, PlatformPinterest, PlatformX}

var PlatformLabels = map[Platform]string{
	PlatformInstagram: "Instagram",
	PlatformFacebook:  "Facebook",
	PlatformTikTok:    "TikTok",
	PlatformLinkedIn:  "LinkedIn",
	PlatformPinterest: "Pinterest",
	PlatformX:         "X",
}

func (p Platform) Valid() bool {
	_, ok := PlatformLabels[p]
	return ok
}

type ContentCard struct {
	ID              string        `json:"id"`
	BrandID         string        `json:"brand_id"`
	Date            string        `json:"date"` // YYYY-MM-DD
	Time            string        `json:"time"` // HH:MM
	Format          ContentFormat `json:"format"`
	Platform        Platform      `json:"platform"`
	Theme           string        `json:"theme"`
	Title           string        `json:"title"`
	Status          CardStatus    `json:"status"`
	Hook            string        `json:"hook,omitempty"`
	Narrative       string        `json:"narrative,omitempty"`
	ProductionGuide string        `json:"production_guide,omitempty"`
	Prompts         string        `json:"prompts,omitempty"`
	Caption         string        `json:"caption,omitempty"`
}

// Theme is one content pillar a card can be classified under.
type Theme struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Percentage int    `json:"percentage,omitempty"`
}
