// Package scorer rates how factual or sensational an article's text looks.
// Scores run 0-100; higher means more objective. The score is built from
// independent deduction signals, each individually capped, then inverted.
package scorer

import (
	"strings"
	"sync/atomic"
	"unicode"
)

// Keyword is a user-defined filter keyword with a deduction weight.
type Keyword struct {
	Keyword string `json:"keyword"`
	Weight  int    `json:"weight"`
}

// Scorer computes objectivity scores for articles. The custom keyword
// list is held behind an atomic pointer so a refresh run can swap it in
// while other goroutines keep scoring against the previous list.
type Scorer struct {
	rules  *Rules
	custom atomic.Pointer[[]Keyword]
}

// New creates a scorer with the given rule tables. Nil rules means DefaultRules.
func New(rules *Rules, custom []Keyword) *Scorer {
	if rules == nil {
		rules = DefaultRules()
	}
	s := &Scorer{rules: rules}
	s.SetKeywords(custom)
	return s
}

// SetKeywords replaces the custom keyword list. Safe for concurrent use
// with Score and Analyze.
func (s *Scorer) SetKeywords(custom []Keyword) {
	normalized := normalizeKeywords(custom)
	s.custom.Store(&normalized)
}

func normalizeKeywords(custom []Keyword) []Keyword {
	out := make([]Keyword, 0, len(custom))
	for _, kw := range custom {
		k := strings.ToLower(strings.TrimSpace(kw.Keyword))
		if k == "" {
			continue
		}
		w := kw.Weight
		if w == 0 {
			w = 10
		}
		out = append(out, Keyword{Keyword: k, Weight: w})
	}
	return out
}

// Score rates an article from 0 (sensational) to 100 (factual).
// factualRating is the source feed's factual rating ("Very High", "High",
// "Mostly Factual", "Mixed"); unknown values are neutral. An empty summary
// skips all summary-dependent checks.
func (s *Scorer) Score(title, link, summary, factualRating string) int {
	deductions := 0

	deductions += s.opinionURL(link)
	deductions += s.opinionTitle(title)
	deductions += s.sensationalKeywords(title, summary)
	deductions += s.clickbait(title)
	deductions += s.excessivePunctuation(title)
	deductions += s.allCaps(title)
	deductions += s.customKeywords(title, summary)

	if summary != "" {
		deductions += s.summaryNegative(summary)

		bonus := s.summaryPositive(summary)
		deductions -= bonus
		if deductions < 0 {
			deductions = 0
		}
	}

	deductions -= factualModifier(factualRating)

	return clampScore(100 - deductions)
}

// Breakdown is the per-signal deduction detail behind a score.
type Breakdown struct {
	OpinionURL           int `json:"opinion_url"`
	OpinionTitle         int `json:"opinion_title"`
	SensationalKeywords  int `json:"sensational_keywords"`
	ClickbaitPatterns    int `json:"clickbait_patterns"`
	ExcessivePunctuation int `json:"excessive_punctuation"`
	AllCaps              int `json:"all_caps"`
	CustomKeywords       int `json:"custom_keywords"`
	SummaryNegative      int `json:"summary_negative"`
	SummaryPositiveBonus int `json:"summary_positive_bonus"`

	TotalDeductions int `json:"total_deductions"`
	TotalBonus      int `json:"total_bonus"`
	FinalScore      int `json:"final_score"`
}

// Analyze returns the detailed scoring breakdown for an article. Useful for
// understanding why an article was scored. The source factual-rating
// modifier is not part of the breakdown; it is a per-feed adjustment.
func (s *Scorer) Analyze(title, link, summary string) Breakdown {
	b := Breakdown{
		OpinionURL:           s.opinionURL(link),
		OpinionTitle:         s.opinionTitle(title),
		SensationalKeywords:  s.sensationalKeywords(title, summary),
		ClickbaitPatterns:    s.clickbait(title),
		ExcessivePunctuation: s.excessivePunctuation(title),
		AllCaps:              s.allCaps(title),
		CustomKeywords:       s.customKeywords(title, summary),
	}
	if summary != "" {
		b.SummaryNegative = s.summaryNegative(summary)
		b.SummaryPositiveBonus = s.summaryPositive(summary)
	}

	b.TotalDeductions = b.OpinionURL + b.OpinionTitle + b.SensationalKeywords +
		b.ClickbaitPatterns + b.ExcessivePunctuation + b.AllCaps +
		b.CustomKeywords + b.SummaryNegative
	b.TotalBonus = b.SummaryPositiveBonus

	net := b.TotalDeductions - b.TotalBonus
	if net < 0 {
		net = 0
	}
	b.FinalScore = clampScore(100 - net)
	return b
}

func (s *Scorer) opinionURL(link string) int {
	lower := strings.ToLower(link)
	for _, pattern := range s.rules.OpinionURLPatterns {
		if strings.Contains(lower, pattern) {
			return 40
		}
	}
	return 0
}

func (s *Scorer) opinionTitle(title string) int {
	lower := strings.ToLower(title)
	for _, pattern := range s.rules.OpinionTitlePatterns {
		if strings.Contains(lower, pattern) {
			return 35
		}
	}
	return 0
}

// Title hits weigh 15, summary-only hits 5, capped at 40 total.
func (s *Scorer) sensationalKeywords(title, summary string) int {
	titleLower := strings.ToLower(title)
	combined := titleLower + " " + strings.ToLower(summary)
	score := 0

	for _, keyword := range s.rules.SensationalKeywords {
		if !strings.Contains(combined, keyword) {
			continue
		}
		if strings.Contains(titleLower, keyword) {
			score += 15
		} else {
			score += 5
		}
	}

	if score > 40 {
		score = 40
	}
	return score
}

func (s *Scorer) clickbait(title string) int {
	for _, pattern := range s.rules.ClickbaitPatterns {
		if pattern.MatchString(title) {
			return 20
		}
	}
	return 0
}

func (s *Scorer) excessivePunctuation(title string) int {
	score := 0

	if strings.Contains(title, "!!") {
		score += 10
	} else if strings.Count(title, "!") > 1 {
		score += 5
	}

	if strings.Contains(title, "??") {
		score += 10
	} else if strings.Count(title, "?") > 2 {
		score += 5
	}

	if strings.Count(title, "...") > 1 {
		score += 5
	}

	if score > 15 {
		score = 15
	}
	return score
}

func (s *Scorer) allCaps(title string) int {
	capsWords := 0
	for _, word := range strings.Fields(title) {
		clean := stripPunct(word)
		if len(clean) >= 3 && isAllUpper(clean) && !s.rules.CapsAllowlist[clean] {
			capsWords++
		}
	}

	switch {
	case capsWords >= 3:
		return 15
	case capsWords >= 2:
		return 10
	case capsWords >= 1:
		return 5
	}
	return 0
}

func (s *Scorer) customKeywords(title, summary string) int {
	combined := strings.ToLower(title) + " " + strings.ToLower(summary)
	score := 0
	for _, kw := range *s.custom.Load() {
		if strings.Contains(combined, kw.Keyword) {
			score += kw.Weight
		}
	}
	if score > 30 {
		score = 30
	}
	return score
}

// summaryNegative scores editorial signals in the summary, capped at 25.
func (s *Scorer) summaryNegative(summary string) int {
	deductions := 0
	lower := strings.ToLower(summary)

	for _, pattern := range s.rules.OpinionPhrases {
		if pattern.MatchString(lower) {
			deductions += 10
			break
		}
	}

	for _, pattern := range s.rules.ImperativePatterns {
		if pattern.MatchString(lower) {
			deductions += 8
			break
		}
	}

	vague := 0
	for _, pattern := range s.rules.VaguePatterns {
		if pattern.MatchString(lower) {
			vague++
		}
	}
	if vague*5 > 10 {
		deductions += 10
	} else {
		deductions += vague * 5
	}

	for _, word := range s.rules.EmotionalWords {
		if strings.Contains(lower, word) {
			deductions += 5
			break
		}
	}

	for _, pattern := range s.rules.RhetoricalPatterns {
		if pattern.MatchString(lower) {
			deductions += 5
			break
		}
	}

	for _, pattern := range s.rules.AbsolutistPatterns {
		if pattern.MatchString(lower) {
			deductions += 5
			break
		}
	}

	if deductions > 25 {
		deductions = 25
	}
	return deductions
}

// summaryPositive scores journalistic signals in the summary, capped at 15.
func (s *Scorer) summaryPositive(summary string) int {
	bonus := 0
	lower := strings.ToLower(summary)

	for _, pattern := range s.rules.AttributionPatterns {
		if pattern.MatchString(summary) {
			bonus += 5
			break
		}
	}

	if s.rules.QuotePattern != nil && s.rules.QuotePattern.MatchString(summary) {
		bonus += 5
	}

	for _, pattern := range s.rules.NumberPatterns {
		if pattern.MatchString(summary) {
			bonus += 3
			break
		}
	}

	for _, pattern := range s.rules.DatePatterns {
		if pattern.MatchString(lower) {
			bonus += 3
			break
		}
	}

	for _, phrase := range s.rules.HedgingPhrases {
		if strings.Contains(lower, phrase) {
			bonus += 2
			break
		}
	}

	if bonus > 15 {
		bonus = 15
	}
	return bonus
}

// factualModifier converts a feed's factual rating into a deduction
// adjustment. Positive values reduce deductions.
func factualModifier(rating string) int {
	switch rating {
	case "Very High":
		return 5
	case "High":
		return 0
	case "Mostly Factual":
		return -5
	case "Mixed":
		return -10
	}
	return 0
}

func stripPunct(word string) string {
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAllUpper(word string) bool {
	hasLetter := false
	for _, r := range word {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
