package core

import "fmt"

// fallbackStrategy synthesizes a complete strategy document locally. It is
// deterministic in brandName and never touches the network.
func fallbackStrategy(brandName string) map[SectionID]string {
	n := brandName
	if n == "" {
		n = "Your brand"
	}
	return map[SectionID]string{
		SectionBrandSummary: fmt.Sprintf("**%s** helps its customers get more done with less effort, and social media is where that story gets told every day.\n\n"+
			"**Mission:** Make %s the first name people think of in its category.\n"+
			"**Vision:** A community that creates, shares, and recommends %s on its own.\n"+
			"**Values:** Clarity, Craft, Consistency, Community.", n, n, n),

		SectionMarketOverview: fmt.Sprintf("Short-form video remains the **#1 content format** across every major platform, and audiences increasingly discover brands through creators rather than ads.\n\n"+
			"**Key Trends:**\n- Vertical video dominates reach on Instagram, TikTok and YouTube Shorts\n- Educational content outperforms promotional content on saves and shares\n- Small brands win by showing process and personality\n- Social search is replacing web search for younger audiences\n\n"+
			"**Opportunity:** %s can own a clear, useful voice in its niche by publishing consistently and answering the questions its audience already asks.", n),

		SectionCompetitorAnalysis: fmt.Sprintf("**Direct Competitors:**\n- **Category leaders** with large budgets and polished but impersonal feeds.\n- **Challenger brands** that grow quickly with creator partnerships.\n\n"+
			"**Indirect Competitors:**\n- **Creators and educators** who answer the same questions for free.\n- **General-purpose tools** that cover the use case as a side feature.\n\n"+
			"**%s's Edge:** A focused product, a human voice, and the ability to move faster than larger competitors.", n),

		SectionTargetAudience: "**Primary Persona: \"The Busy Professional\"**\n- Age: 25–40\n- Behavior: Scrolls during commutes and breaks, saves useful posts for later\n- Pain Point: Wants results without spending hours learning a new tool\n\n" +
			"**Secondary Persona: \"The Enthusiast\"**\n- Age: 20–35\n- Behavior: Comments, shares, and experiments with new products early\n- Pain Point: Looking for inspiration and insider tips\n\n" +
			"**Tertiary Persona: \"The Small Business Owner\"**\n- Age: 28–50\n- Behavior: Runs their own marketing, values practical how-tos\n- Pain Point: Limited time and budget for content",

		SectionPlatformStrategy: "**Primary Platforms:**\n\n" +
			"**Instagram** (Priority: High)\n- Reels for reach, carousels for education, stories for community\n- Target: 4–5 posts/week\n\n" +
			"**TikTok** (Priority: High)\n- Fast, native, trend-aware videos\n- Target: 5–7 videos/week\n\n" +
			"**LinkedIn** (Priority: Medium)\n- Founder stories, industry insight, case studies\n- Target: 2–3 posts/week\n\n" +
			"**X** (Priority: Medium)\n- Product updates, quick tips, conversation\n- Target: 3–5 posts/week",

		SectionContentPillars: fmt.Sprintf("**1. Product Showcase** (30%%)\nShow %s in action: before/after reveals, demos, and results.\n\n"+
			"**2. Education & Tips** (25%%)\nHow-tos, tutorials, and practical advice that earn saves and shares.\n\n"+
			"**3. Use Cases & Inspiration** (20%%)\nReal-world applications that help people picture themselves using %s.\n\n"+
			"**4. Community & UGC** (15%%)\nCustomer stories, spotlights, and challenges that build social proof.\n\n"+
			"**5. Behind the Scenes** (10%%)\nThe team, the process, and what's coming next.", n, n),

		SectionToneOfVoice: "**Brand Voice:** Confident, warm, and useful.\n\n" +
			"**Tone Attributes:**\n- **Helpful**: every post leaves the reader with something\n- **Human**: plain language, real people, no jargon\n- **Upbeat**: celebrates progress and curiosity\n\n" +
			"**Do's:**\n- Lead with the benefit\n- Show, don't tell\n- Reply to comments quickly\n\n" +
			"**Don'ts:**\n- Don't over-promise\n- Don't chase every trend\n- Don't talk down to beginners",

		SectionPostingSchedule: "**Weekly Posting Cadence:**\n\n" +
			"| Day | Instagram | TikTok | LinkedIn | X |\n|-----|-----------|--------|----------|---|\n" +
			"| Mon | Reel (Showcase) | Video (Quick Tip) | Insight | Thread |\n" +
			"| Tue | Carousel (Tutorial) | Video (Trend) | — | Update |\n" +
			"| Wed | Stories (Q&A) | Video (Use Case) | Case Study | Tip |\n" +
			"| Thu | Single Post (Spotlight) | Video (Before/After) | — | Conversation |\n" +
			"| Fri | Reel (Challenge) | Video (Fun) | Team Story | Recap |\n\n" +
			"**Best Posting Times:**\n- Instagram: 9:00 AM, 12:30 PM, 7:00 PM\n- TikTok: 8:00 AM, 12:00 PM, 8:00 PM\n- LinkedIn: 8:00 AM, 12:00 PM\n- X: 9:00 AM, 1:00 PM, 5:00 PM",

		SectionFormatMix: "**Content Format Distribution:**\n\n" +
			"**Short-form Video**: 40%\n**Carousels / Slides**: 25%\n**Single Image Posts**: 15%\n**Stories**: 15%\n**Live / Interactive**: 5%\n\n" +
			"**Ratio Target:** 50% value-driven, 30% engagement-driven, 20% promotional.",

		SectionKPIs: fmt.Sprintf("**Growth KPIs (Monthly Targets):**\n- Followers: +10–15%% month-over-month on primary platforms\n- Total reach: 250K+ impressions/month by month 3\n\n"+
			"**Engagement KPIs:**\n- Engagement rate: 4%%+ (Instagram), 6%%+ (TikTok)\n- Save/share rate: 3%%+ per post\n\n"+
			"**Conversion KPIs:**\n- Link clicks from social: 2,000+/month\n- Social-attributed signups: 200+/month\n\n"+
			"**Brand KPIs:**\n- Mentions of %s: +10%% monthly\n- Sentiment: 85%%+ positive", n),
	}
}

// fallbackSection returns the locally synthesized content for one section.
func fallbackSection(brandName string, id SectionID) string {
	return fallbackStrategy(brandName)[id]
}
