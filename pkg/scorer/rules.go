package scorer

import "regexp"

// Rules holds the pattern tables the scorer matches against. They are
// injected so tests can substitute smaller fixtures; DefaultRules returns
// the production set.
type Rules struct {
	// URL path fragments that mark opinion/editorial content.
	OpinionURLPatterns []string
	// Title substrings that mark opinion content.
	OpinionTitlePatterns []string
	// Sensationalism keywords and phrases, matched case-insensitively.
	SensationalKeywords []string
	// Clickbait numeric-heading patterns.
	ClickbaitPatterns []*regexp.Regexp
	// All-caps abbreviations that are not shouting.
	CapsAllowlist map[string]bool

	// Summary signal tables.
	AttributionPatterns []*regexp.Regexp
	QuotePattern        *regexp.Regexp
	NumberPatterns      []*regexp.Regexp
	DatePatterns        []*regexp.Regexp
	HedgingPhrases      []string
	OpinionPhrases      []*regexp.Regexp
	ImperativePatterns  []*regexp.Regexp
	VaguePatterns       []*regexp.Regexp
	EmotionalWords      []string
	RhetoricalPatterns  []*regexp.Regexp
	AbsolutistPatterns  []*regexp.Regexp
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() *Rules {
	return &Rules{
		OpinionURLPatterns: []string{
			"/opinion/", "/opinions/", "/editorial/", "/editorials/",
			"/columnist/", "/columnists/", "/blog/", "/blogs/",
			"/commentary/", "/op-ed/", "/perspective/", "/analysis/",
			"/letter-to-editor/", "/letters/",
		},

		OpinionTitlePatterns: []string{
			"opinion:", "editorial:", "commentary:", "op-ed:",
			"column:", "analysis:", "perspective:",
			"letter to the editor", "| opinion", "- opinion",
		},

		SensationalKeywords: []string{
			// Urgency and shock
			"breaking:", "breaking news:", "shocking", "bombshell",
			"explosive", "stunning", "jaw-dropping", "mind-blowing",
			"unbelievable", "incredible",
			// Conflict exaggeration
			"slams", "destroys", "eviscerates", "obliterates", "demolishes",
			"annihilates", "blasts", "rips", "torches", "schools", "owns",
			"wrecks", "crushes",
			// Clickbait phrases
			"you won't believe", "what happened next", "this one trick",
			"doctors hate", "the truth about",
			"what they don't want you to know", "goes viral",
			"the internet is", "twitter reacts", "everyone is talking about",
			"is breaking the internet",
			// Emotional manipulation
			"outrage", "fury", "meltdown", "chaos", "firestorm",
			"backlash erupts", "nightmare", "disaster",
		},

		ClickbaitPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\d+\s+(reasons?|ways?|things?|facts?|secrets?|tricks?|tips?|signs?|mistakes?)`),
			regexp.MustCompile(`(?i)^top\s+\d+`),
			regexp.MustCompile(`(?i)^\d+\s+.+\s+that\s+will`),
		},

		CapsAllowlist: map[string]bool{
			"US": true, "USA": true, "UK": true, "EU": true, "UN": true,
			"NATO": true, "FBI": true, "CIA": true, "NASA": true,
			"CEO": true, "CFO": true, "CTO": true, "GDP": true, "IPO": true,
			"AI": true, "NFL": true, "NBA": true, "MLB": true,
			"COVID": true, "WHO": true, "CDC": true, "FDA": true,
			"EPA": true, "IRS": true, "DOJ": true, "DOD": true,
		},

		AttributionPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bsaid\s+[A-Z]`),
			regexp.MustCompile(`(?i)\baccording to\b`),
			regexp.MustCompile(`(?i)\b(confirmed|announced|stated|reported)\s+by\b`),
			regexp.MustCompile(`(?i)\bofficials\s+(said|confirmed|announced)\b`),
			regexp.MustCompile(`(?i)\bspokesperson\s+said\b`),
		},

		QuotePattern: regexp.MustCompile(`["\x{201c}][^"\x{201d}]{10,}["\x{201d}]`),

		NumberPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\$[\d,]+(\.\d+)?(\s*(million|billion|trillion))?`),
			regexp.MustCompile(`\b\d+(\.\d+)?%`),
			regexp.MustCompile(`\b\d{1,3}(,\d{3})+\b`),
		},

		DatePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
			regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d`),
			regexp.MustCompile(`\blast\s+(week|month|year)\b`),
			regexp.MustCompile(`\b(yesterday|today|tomorrow)\b`),
			regexp.MustCompile(`\bsince\s+\d{4}\b`),
		},

		HedgingPhrases: []string{
			"allegedly", "reportedly", "unconfirmed", "suspected", "appears to",
		},

		OpinionPhrases: []*regexp.Regexp{
			regexp.MustCompile(`\bi think\b`),
			regexp.MustCompile(`\bi believe\b`),
			regexp.MustCompile(`\bin my view\b`),
			regexp.MustCompile(`\bin my opinion\b`),
			regexp.MustCompile(`\bwe must\b`),
			regexp.MustCompile(`\bwe should\b`),
			regexp.MustCompile(`\bwe need to\b`),
			regexp.MustCompile(`\bit's clear that\b`),
			regexp.MustCompile(`\bobviously\b`),
		},

		ImperativePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\b(should|must|need to|have to|ought to)\s+\w+`),
		},

		VaguePatterns: []*regexp.Regexp{
			regexp.MustCompile(`\bcritics\s+(say|argue|claim|believe)\b`),
			regexp.MustCompile(`\bsome\s+(say|argue|claim|believe)\b`),
			regexp.MustCompile(`\bmany\s+(say|argue|claim|believe)\b`),
			regexp.MustCompile(`\bexperts\s+(say|argue|claim|believe)\b`),
			regexp.MustCompile(`\bsources\s+say\b`),
		},

		EmotionalWords: []string{
			"horrific", "horrifying", "disgusting", "outrageous", "shocking",
			"amazing", "incredible", "unbelievable", "terrifying", "devastating",
			"shameful", "despicable", "appalling", "hideous", "atrocious",
			"wonderful", "fantastic", "brilliant", "genius",
		},

		RhetoricalPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\?\s*$`),
			regexp.MustCompile(`but (is|are|was|were|will|can|should)\s+\w+.*\?`),
		},

		AbsolutistPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\balways\b`),
			regexp.MustCompile(`\bnever\b`),
			regexp.MustCompile(`\beveryone\b`),
			regexp.MustCompile(`\bnobody\b`),
			regexp.MustCompile(`\bproves\b`),
			regexp.MustCompile(`\bundeniable\b`),
			regexp.MustCompile(`\bunquestionable\b`),
		},
	}
}
