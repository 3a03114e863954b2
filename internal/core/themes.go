package core

import (
	"regexp"
	"strconv"
	"strings"

	"axis.io/contentops/internal/utils"
)

// DefaultThemes is used whenever a brand's content pillars yield no themes.
var DefaultThemes = []Theme{
	{ID: "ai-innovation", Label: "AI & Innovation"},
	{ID: "coffee-education", Label: "Coffee Education"},
	{ID: "lifestyle", Label: "Lifestyle & Aesthetics"},
	{ID: "community", Label: "Community & UGC"},
	{ID: "behind-the-scenes", Label: "Behind the Scenes"},
}

// pillarHeading matches "**3. Use Cases & Inspiration** (20%)"; the
// percentage is optional.
var pillarHeading = regexp.MustCompile(`^\s*\*\*\s*(\d+)\.\s*(.+?)\s*\*\*\s*(?:[-:–—]\s*)?(?:\(?\s*(\d{1,3})\s*%\s*\)?)?`)

// ParseContentPillars extracts themes from a content-pillars section. Lines
// that do not look like a numbered bold heading are ignored, so malformed
// text simply produces fewer themes. Duplicate slugs keep the first label.
func ParseContentPillars(markdown string) []Theme {
	var themes []Theme
	seen := make(map[string]bool)
	for _, line := range strings.Split(markdown, "\n") {
		m := pillarHeading.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(m[2])
		id := utils.Slugify(label)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		theme := Theme{ID: id, Label: label}
		if m[3] != "" {
			theme.Percentage, _ = strconv.Atoi(m[3])
		}
		themes = append(themes, theme)
	}
	return themes
}

// ThemesForStrategy returns the themes derived from the strategy's content
// pillars, or DefaultThemes when there is no strategy or nothing parses.
func ThemesForStrategy(strategy *BrandStrategy) []Theme {
	if strategy != nil {
		if sec, ok := strategy.Section(SectionContentPillars); ok {
			if themes := ParseContentPillars(sec.Content); len(themes) > 0 {
				return themes
			}
		}
	}
	return append([]Theme(nil), DefaultThemes...)
}

func themeIDs(themes []Theme) []string {
	ids := make([]string, len(themes))
	for i, t := range themes {
		ids[i] = t.ID
	}
	return ids
}

func hasTheme(themes []Theme, id string) bool {
	for _, t := range themes {
		if t.ID == id {
			return true
		}
	}
	return false
}

func themeLabel(themes []Theme, id string) string {
	for _, t := range themes {
		if t.ID == id {
			return t.Label
		}
	}
	return id
}

// CardView is a card as presented to readers. Orphaned is set when the
// card's theme is no longer part of the brand's theme set, which happens
// after the content pillars are edited. Such cards are kept unchanged.
type CardView struct {
	ContentCard
	StatusLabel string `json:"status_label"`
	Orphaned    bool   `json:"orphaned"`
}

func AnnotateCards(cards []ContentCard, themes []Theme) []CardView {
	out := make([]CardView, len(cards))
	for i, c := range cards {
		out[i] = CardView{
			ContentCard: c,
			StatusLabel: StatusLabels[c.Status],
			Orphaned:    !hasTheme(themes, c.Theme),
		}
	}
	return out
}
