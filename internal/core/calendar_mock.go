package core

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
)

var postingTimes = []string{"08:00", "10:30", "12:00", "14:30", "17:00", "19:00"}

var mockPlatforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformLinkedIn, PlatformX}

var mockTitles = map[string][]string{
	"ai-innovation": {
		"How AI Picks Your Perfect Brew",
		"The Algorithm Behind Your Morning Cup",
		"AI Taste Profiling: How It Works",
		"Future of Coffee: AI Predictions",
		"Smart Brewing 101",
	},
	"coffee-education": {
		"Single Origin vs Blend: The Debate",
		"Water Temperature Matters More Than You Think",
		"5 Brewing Methods Compared",
		"Understanding Coffee Flavor Notes",
		"The Journey from Bean to Cup",
	},
	"lifestyle": {
		"Morning Routine: The Perfect Start",
		"Your Workspace, Your Coffee",
		"Weekend Brewing Vibes",
		"Coffee & Productivity: The Link",
		"Aesthetic Latte Art Moments",
	},
	"community": {
		"Your Brew Stories: This Week",
		"Fan Favorite Recipes Roundup",
		"Community Pick of the Week",
		"Meet Our Top Home Baristas",
		"Share Your Coff AI Moment",
	},
	"behind-the-scenes": {
		"Inside Our Roasting Process",
		"How We Source Our Beans",
		"Team Tasting Session",
		"Building the AI: Dev Diary",
		"Sustainability in Action",
	},
}

// genericTitles are used for themes parsed from a strategy; %s is the theme
// label.
var genericTitles = []string{
	"%s: 3 Things to Know",
	"%s, Explained in 60 Seconds",
	"Why %s Matters This Week",
	"%s: Myths vs Facts",
	"Your Questions About %s",
}

var mockHooks = map[string][]string{
	"ai-innovation": {
		"What if your coffee knew exactly how you like it? ☕🤖",
		"We trained an AI on 10,000 flavor profiles. Here's what it found.",
		"Stop guessing. Let AI find your perfect brew.",
	},
	"coffee-education": {
		"You've been brewing your coffee wrong. Here's the fix.",
		"Water temperature can make or break your cup. Here's why.",
		"Think all espresso tastes the same? Think again.",
	},
	"lifestyle": {
		"The morning ritual that changed everything.",
		"Your desk setup is incomplete without this.",
		"POV: The perfect Sunday morning brew.",
	},
	"community": {
		"This barista's latte art will blow your mind 🎨",
		"You asked, we answered: your top 5 brew questions.",
		"Our community's most creative coffee recipes this week.",
	},
	"behind-the-scenes": {
		"Ever wonder what happens before the beans reach your cup?",
		"A day in the life at the Coff AI roastery.",
		"The team tried 47 blends to find this one.",
	},
}

var genericHooks = []string{
	"Most people get %s wrong. Here's the fix.",
	"Stop scrolling: this changes how you think about %s.",
	"We asked our community about %s. The answers surprised us.",
}

var mockNarratives = map[string][]string{
	"ai-innovation": {
		"Walk through how our AI taste-matching algorithm works. Start with the user filling out a quick flavor preference quiz, then show the AI analyzing patterns across thousands of coffee profiles. End with the personalized recommendation reveal.",
		"Compare traditional cupping scores with our AI predictions. Show a split-screen of a professional cupper vs. our algorithm rating the same 5 coffees. Highlight where they agree and where AI found surprising matches.",
	},
	"coffee-education": {
		"Break down the 4 main brewing methods (pour-over, French press, espresso, cold brew) with side-by-side comparisons. Focus on grind size, water temp, and extraction time. End with a 'which one is right for you' decision framework.",
		"Deep dive into single-origin vs. blend. Start with where beans are sourced, show the roasting differences, then do a taste comparison. Keep it accessible and free of jargon.",
	},
	"lifestyle": {
		"Document the perfect morning routine: wake up, grind fresh beans, brew with intention. Capture the aesthetic of steam rising and sunlight through the window. Tie it back to productivity and mindfulness.",
		"Show 3 different workspace setups and the coffee that fits each vibe: minimalist desk + black coffee, cozy home office + latte, standing desk + cold brew. Make viewers tag their setup.",
	},
	"community": {
		"Feature 3 community members and their unique coffee rituals. Quick interview style: what they brew, how they brew it, and what coffee means to them. End with a CTA to share your own.",
		"Compile the best user-submitted latte art from the past month. Show the progression from beginner attempts to pro-level designs. Encourage everyone to keep practicing.",
	},
	"behind-the-scenes": {
		"Follow a bag of beans from the farm to the roastery. Show the sourcing relationship, quality checks, sample roasting, and the final packaging. Emphasize sustainability and fair trade.",
		"Take viewers through a team tasting session. Show the setup, the blind tasting process, everyone's reactions, and the final scores. Reveal which blend won and announce it as next month's special.",
	},
}

var genericNarratives = []string{
	"Open with the most common question people ask about %s. Answer it in three quick beats, each with a visual example. Close by inviting viewers to share their own experience in the comments.",
	"Tell a short before/after story about %s. Start with the problem, show the turning point, and end on the result. Keep every scene under five seconds.",
}

var mockProductionGuides = []string{
	"• Shoot in natural lighting (golden hour preferred)\n• Use vertical format (9:16) for Reels/TikTok\n• Include B-roll of product preparation\n• Add text overlays for key points\n• Background music: lo-fi or acoustic",
	"• Film in the studio with ring light setup\n• Multiple angles: overhead, 45°, close-up\n• Capture detail shots in slow motion\n• Use brand color palette in graphics\n• Duration: 30-60 seconds",
	"• User-generated style, casual and authentic\n• Phone camera is fine (adds authenticity)\n• Include face-to-camera segments\n• Add captions/subtitles\n• Keep transitions simple and clean",
}

var mockPrompts = []string{
	"Create a visually engaging post about [topic]. Use warm, inviting tones. Include a strong opening hook, 3 key points, and end with a question to drive engagement. Target audience: enthusiasts aged 25-40.",
	"Generate a storytelling post that connects [topic] to everyday life. Use conversational language, include specific details that make it relatable, and end with a clear call-to-action.",
	"Write an educational post about [topic] that's accessible to beginners. Break complex concepts into simple analogies. Include one surprising fact. End with a 'try this at home' suggestion.",
}

var mockCaptions = map[string][]string{
	"ai-innovation": {
		"The future of coffee is personal. Our AI doesn't just recommend, it learns your palate. ☕✨\n\nWhat's your go-to brew? Drop it below and let's see if our AI agrees 👇\n\n#CoffAI #AIcoffee #PersonalizedCoffee #CoffeeTech #SmartBrewing #FutureOfCoffee #CoffeeLovers",
		"We asked our AI to predict the next big coffee trend. The answer surprised even us. 🤖☕\n\nSwipe to see the full breakdown →\n\n#CoffeeTrends #AIpredictions #CoffAI #CoffeeInnovation #TechMeetsCoffee",
	},
	"coffee-education": {
		"Your water temperature matters more than your beans. Yes, really. 🌡️☕\n\nHere's the perfect temp for every brewing method (save this!):\n→ Pour-over: 195-205°F\n→ French Press: 200°F\n→ Cold Brew: Room temp\n→ Espresso: 195-200°F\n\n#CoffeeEducation #BrewingTips #CoffeeScience #HomeBarista #CoffeeFacts",
		"Single origin or blend? Here's how to actually choose. ☕\n\nSingle origin = unique, terroir-driven flavors\nBlend = balanced, consistent, complex\n\nNeither is better. It's about what YOU enjoy.\n\n#CoffeeKnowledge #SingleOrigin #CoffeeBlend #CoffAI #CoffeeGuide",
	},
	"lifestyle": {
		"The best mornings start before the world wakes up. ☀️☕\n\nGrind. Brew. Breathe. The ritual matters as much as the cup.\n\nHow do you start your mornings? ☕👇\n\n#MorningRitual #CoffeeRoutine #SlowMorning #CoffeeMoments #MindfulBrewing",
		"Your workspace, your rules. Your coffee, your way. 💻☕\n\nTag someone who needs to upgrade their desk setup ☕✨\n\n#WorkFromHome #CoffeeAndWork #DeskSetup #CoffeeAesthetic #ProductivityTips",
	},
	"community": {
		"This week's community spotlight goes to @coffeelover2026 for this INCREDIBLE latte art! 🎨☕\n\nWant to be featured? Tag us in your best coffee moment!\n\n#CoffAICommunity #LatteArt #CoffeeCommunity #HomeBarista #CoffeeCreatives",
		"You asked, we answered! Here are your TOP 5 brewing questions this week ☕\n\nSwipe through for the answers → Which one surprised you most?\n\n#CoffeeQA #AskCoffAI #CoffeeTips #CommunityQuestions #CoffeeAnswers",
	},
	"behind-the-scenes": {
		"From farm to cup, here's what happens before your coffee reaches you. 🌱→☕\n\nEvery bag has a story. This is ours.\n\n#BehindTheScenes #CoffeeJourney #FarmToCup #Sustainability #CoffAI #EthicalCoffee",
		"47 blends. Countless hours. One perfect cup. ☕\n\nTake a peek at our team's tasting session. This is how we find your next favorite.\n\n#TeamCoffAI #CoffeeTasting #BTS #Roastery #CoffeeProcess",
	},
}

var genericCaptions = []string{
	"Everything you wanted to know about %s, in one post. ✨\n\nSave this for later and share it with someone who needs it 👇\n\n#Tips #HowTo #LearnOnSocial #DailyInspiration",
	"Real talk about %s. What would you add? 💬\n\nDrop your thoughts below and we'll feature the best ones next week.\n\n#Community #Conversation #BehindTheBrand #ShareYourStory",
}

func seedFor(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// postsForDay returns how many posts the mock schedule puts on weekday
// index day (0 is Monday). Weekdays carry the configured cadence; Saturday
// and Sunday get one post when the settings include them.
func postsForDay(settings CalendarSettings, day int) int {
	switch {
	case day < 5:
		return settings.PostsPerDay
	case day < settings.DaysPerWeek:
		return 1
	default:
		return 0
	}
}

func mockTitle(rng *rand.Rand, theme Theme) string {
	if titles, ok := mockTitles[theme.ID]; ok {
		return titles[rng.IntN(len(titles))]
	}
	return fmt.Sprintf(genericTitles[rng.IntN(len(genericTitles))], theme.Label)
}

// mockCalendar builds a deterministic two-week schedule starting on the
// Monday of start's week. The same brand and window always produce the same
// schedule apart from card ids.
func mockCalendar(brandID string, start time.Time, settings CalendarSettings, themes []Theme, newID func() string) []ContentCard {
	if len(themes) == 0 {
		themes = DefaultThemes
	}
	if !settings.Valid() {
		settings = DefaultCalendarSettings()
	}
	weekStart := StartOfWeek(start)
	rng := rand.New(rand.NewPCG(seedFor(brandID, FormatDate(weekStart)), 0x636f6e74656e74))

	var cards []ContentCard
	for day := 0; day < 7*generationWeeks; day++ {
		date := FormatDate(weekStart.AddDate(0, 0, day))
		n := postsForDay(settings, day%7)
		slots := rng.Perm(len(postingTimes))
		for post := 0; post < n; post++ {
			theme := themes[rng.IntN(len(themes))]
			cards = append(cards, ContentCard{
				ID:       newID(),
				BrandID:  brandID,
				Date:     date,
				Time:     postingTimes[slots[post%len(slots)]],
				Format:   Formats[rng.IntN(len(Formats))],
				Platform: mockPlatforms[rng.IntN(len(mockPlatforms))],
				Theme:    theme.ID,
				Title:    mockTitle(rng, theme),
				Status:   CardPlan,
			})
		}
	}
	sortCards(cards)
	return cards
}

func pick(options []string, seed uint64) string {
	return options[seed%uint64(len(options))]
}

// mockField returns canned content for one card field. The choice is stable
// for a given card and field.
func mockField(card ContentCard, field GeneratableField, themes []Theme) string {
	seed := seedFor(card.ID, string(field))
	label := themeLabel(themes, card.Theme)
	generic := func(templates []string) string {
		return fmt.Sprintf(pick(templates, seed), strings.ToLower(label))
	}
	switch field {
	case FieldHook:
		if opts, ok := mockHooks[card.Theme]; ok {
			return pick(opts, seed)
		}
		return generic(genericHooks)
	case FieldNarrative:
		if opts, ok := mockNarratives[card.Theme]; ok {
			return pick(opts, seed)
		}
		return generic(genericNarratives)
	case FieldProductionGuide:
		return pick(mockProductionGuides, seed)
	case FieldPrompts:
		return strings.ReplaceAll(pick(mockPrompts, seed), "[topic]", card.Title)
	case FieldCaption:
		if opts, ok := mockCaptions[card.Theme]; ok {
			return pick(opts, seed)
		}
		return generic(genericCaptions)
	}
	return ""
}
