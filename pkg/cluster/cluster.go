// Package cluster groups same-story articles across sources by keyword
// overlap between their titles.
package cluster

import (
	"regexp"
	"sort"
	"strings"

	"github.com/wirefeedr/wirefeedr/pkg/feed"
	"github.com/wirefeedr/wirefeedr/pkg/scorer"
)

// DefaultThreshold is the minimum Jaccard similarity for an article to join
// an existing cluster.
const DefaultThreshold = 0.3

// Cluster is a group of articles judged to cover the same story. Articles
// are ordered by composite score descending; the representative is the
// first. Clusters live for one display cycle and are never persisted.
type Cluster struct {
	Topic          string         `json:"topic"`
	Representative feed.Article   `json:"representative"`
	Articles       []feed.Article `json:"articles"`
	Count          int            `json:"count"`
	// Corroboration is the multi-source score bonus for this cluster size.
	Corroboration int `json:"corroboration"`
}

// IsCluster reports whether this is a real multi-article grouping rather
// than a single story.
func (c *Cluster) IsCluster() bool { return c.Count > 1 }

var wordRe = regexp.MustCompile(`\b[a-z]{3,}\b`)

// stopWords are dropped from title keywords before comparison. The list
// includes generic news-headline terms that would otherwise glue unrelated
// stories together.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true,
	"can": true, "need": true, "dare": true, "ought": true, "used": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "i": true, "you": true, "he": true, "she": true,
	"we": true, "they": true, "what": true, "which": true, "who": true,
	"whom": true, "how": true, "when": true, "where": true, "why": true,
	"all": true, "each": true, "every": true, "both": true, "few": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "nor": true, "not": true, "only": true, "own": true,
	"same": true, "so": true, "than": true, "too": true, "very": true,
	"just": true, "also": true, "now": true, "new": true, "says": true,
	"said": true, "after": true, "before": true, "over": true, "into": true,
	"about": true, "up": true, "out": true, "off": true, "down": true,
	"here": true, "there": true, "then": true, "once": true, "again": true,
	"news": true, "report": true, "reports": true, "update": true,
	"latest": true, "breaking": true,
}

// Keywords extracts the significant keyword set from a title: lowercase
// alphabetic tokens of at least three characters, stop words removed.
func Keywords(title string) map[string]bool {
	words := wordRe.FindAllString(strings.ToLower(title), -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if !stopWords[w] {
			set[w] = true
		}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, zero when either set is empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// working state for one cluster while grouping runs.
type building struct {
	articles []feed.Article
	keywords map[string]bool
}

// Group clusters articles greedily in input order: each article joins the
// best existing cluster whose cumulative keyword set is at least threshold
// similar, or starts a new one. The result depends on input order, which is
// the accepted trade for linear-ish speed; callers wanting reproducible
// output must supply a stably ordered list. threshold <= 0 uses
// DefaultThreshold.
func Group(articles []feed.Article, threshold float64) []Cluster {
	if len(articles) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var clusters []*building
	for _, article := range articles {
		keywords := Keywords(article.Title)

		var best *building
		bestSim := 0.0
		for _, c := range clusters {
			sim := Jaccard(keywords, c.keywords)
			if sim > bestSim && sim >= threshold {
				bestSim = sim
				best = c
			}
		}

		if best != nil {
			best.articles = append(best.articles, article)
			for w := range keywords {
				best.keywords[w] = true
			}
		} else {
			clusters = append(clusters, &building{
				articles: []feed.Article{article},
				keywords: keywords,
			})
		}
	}

	result := make([]Cluster, 0, len(clusters))
	for _, c := range clusters {
		result = append(result, finalize(c))
	}

	// Newest story first; articles without a timestamp sort last.
	sort.SliceStable(result, func(i, j int) bool {
		ti, tj := result[i].Representative.Published, result[j].Representative.Published
		if ti.IsZero() {
			return false
		}
		if tj.IsZero() {
			return true
		}
		return ti.After(tj)
	})

	return result
}

func finalize(c *building) Cluster {
	articles := make([]feed.Article, len(c.articles))
	copy(articles, c.articles)
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CompositeScore > articles[j].CompositeScore
	})

	return Cluster{
		Topic:          topicLabel(c.articles, articles[0].Title),
		Representative: articles[0],
		Articles:       articles,
		Count:          len(articles),
		Corroboration:  scorer.CorroborationBonus(len(articles)),
	}
}

// topicLabel names a cluster from the up-to-three keywords most frequent
// across member titles that appear in at least two of them, falling back to
// the top two keywords regardless of frequency, then "General". Frequency
// ties break by position in the representative title so the label is
// deterministic.
func topicLabel(members []feed.Article, repTitle string) string {
	counts := make(map[string]int)
	for _, a := range members {
		for w := range Keywords(a.Title) {
			counts[w]++
		}
	}
	if len(counts) == 0 {
		return "General"
	}

	order := keywordOrder(repTitle)
	keywords := make([]string, 0, len(counts))
	for w := range counts {
		keywords = append(keywords, w)
	}
	sort.Slice(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		pa, pb := order[a], order[b]
		if pa != pb {
			return pa < pb
		}
		return a < b
	})

	if len(keywords) > 3 {
		keywords = keywords[:3]
	}

	var shared []string
	for _, w := range keywords {
		if counts[w] > 1 {
			shared = append(shared, w)
		}
	}
	if len(shared) == 0 {
		shared = keywords
		if len(shared) > 2 {
			shared = shared[:2]
		}
	}
	if len(shared) == 0 {
		return "General"
	}

	for i, w := range shared {
		shared[i] = titleCase(w)
	}
	return strings.Join(shared, ", ")
}

// keywordOrder maps each keyword of a title to its first position, with
// unknown keywords ranked after all known ones.
func keywordOrder(title string) map[string]int {
	words := wordRe.FindAllString(strings.ToLower(title), -1)
	order := make(map[string]int, len(words))
	for i, w := range words {
		if stopWords[w] {
			continue
		}
		if _, seen := order[w]; !seen {
			order[w] = i - len(words) // negative so absent keywords (zero) rank last
		}
	}
	return order
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
