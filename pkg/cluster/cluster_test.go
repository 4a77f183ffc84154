package cluster

import (
	"reflect"
	"testing"
	"time"

	"github.com/wirefeedr/wirefeedr/pkg/feed"
)

func TestKeywords(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"Senate Passes Sweeping Climate Bill", []string{"senate", "passes", "sweeping", "climate", "bill"}},
		{"Breaking News: Up and Down", nil},
		{"AI is it", nil}, // all tokens under three letters or stop words
		{"", nil},
	}
	for _, tt := range tests {
		got := Keywords(tt.title)
		if len(got) != len(tt.want) {
			t.Errorf("Keywords(%q) = %v, want %v", tt.title, got, tt.want)
			continue
		}
		for _, w := range tt.want {
			if !got[w] {
				t.Errorf("Keywords(%q) missing %q", tt.title, w)
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	a := map[string]bool{"senate": true, "climate": true, "bill": true}
	b := map[string]bool{"climate": true, "bill": true, "vote": true}
	if got := Jaccard(a, b); got != 0.5 {
		t.Errorf("Jaccard = %v, want 0.5", got)
	}
	if got := Jaccard(a, nil); got != 0 {
		t.Errorf("Jaccard with empty set = %v, want 0", got)
	}
	if got := Jaccard(a, a); got != 1 {
		t.Errorf("Jaccard with itself = %v, want 1", got)
	}
}

func article(title string, composite int, published time.Time) feed.Article {
	return feed.Article{Title: title, CompositeScore: composite, Published: published}
}

func TestGroupStories(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	articles := []feed.Article{
		article("Senate Passes Sweeping Climate Bill", 90, base),
		article("Climate Bill Passes Senate Vote", 80, base.Add(time.Hour)),
		article("Local Bakery Wins Pie Contest", 60, base.Add(3*time.Hour)),
		article("Senate Climate Bill Heads To House", 70, base.Add(2*time.Hour)),
	}

	clusters := Group(articles, 0.3)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}

	// Bakery story is newer, so it sorts first.
	if clusters[0].Count != 1 || clusters[0].Representative.Title != "Local Bakery Wins Pie Contest" {
		t.Errorf("first cluster = %q (count %d), want bakery story", clusters[0].Representative.Title, clusters[0].Count)
	}
	if clusters[0].Topic != "Local, Bakery" {
		t.Errorf("singleton topic = %q, want %q", clusters[0].Topic, "Local, Bakery")
	}
	if clusters[0].Corroboration != 0 {
		t.Errorf("singleton corroboration = %d, want 0", clusters[0].Corroboration)
	}

	senate := clusters[1]
	if senate.Count != 3 {
		t.Fatalf("senate cluster count = %d, want 3", senate.Count)
	}
	if senate.Representative.CompositeScore != 90 {
		t.Errorf("representative score = %d, want highest (90)", senate.Representative.CompositeScore)
	}
	if senate.Topic != "Senate, Climate, Bill" {
		t.Errorf("senate topic = %q, want %q", senate.Topic, "Senate, Climate, Bill")
	}
	if senate.Corroboration != 5 {
		t.Errorf("senate corroboration = %d, want 5", senate.Corroboration)
	}
	for i := 1; i < len(senate.Articles); i++ {
		if senate.Articles[i-1].CompositeScore < senate.Articles[i].CompositeScore {
			t.Errorf("cluster articles not sorted by score: %v", senate.Articles)
		}
	}
	if !senate.IsCluster() || clusters[0].IsCluster() {
		t.Error("IsCluster mismatch")
	}
}

func TestGroupDeterministic(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	articles := []feed.Article{
		article("Senate Passes Sweeping Climate Bill", 90, base),
		article("Climate Bill Passes Senate Vote", 80, base),
		article("Markets Rally On Rate Cut Hopes", 75, base),
		article("Fed Rate Cut Hopes Lift Markets", 85, base),
	}

	first := Group(articles, 0.3)
	second := Group(articles, 0.3)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different clusterings")
	}
}

func TestGroupThresholdMonotonic(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	articles := []feed.Article{
		article("Senate Passes Sweeping Climate Bill", 90, base),
		article("Climate Bill Passes Senate Vote", 80, base),
		article("Senate Climate Bill Heads To House", 70, base),
		article("Local Bakery Wins Pie Contest", 60, base),
	}

	prev := 0
	for _, threshold := range []float64{0.1, 0.3, 0.6, 0.99} {
		n := len(Group(articles, threshold))
		if n < prev {
			t.Errorf("threshold %v produced %d clusters, fewer than %d at a lower threshold", threshold, n, prev)
		}
		prev = n
	}
	if got := len(Group(articles, 0.99)); got != 4 {
		t.Errorf("near-1 threshold produced %d clusters, want 4 singletons", got)
	}
}

func TestGroupEmptyAndEdge(t *testing.T) {
	if got := Group(nil, 0.3); got != nil {
		t.Errorf("Group(nil) = %v, want nil", got)
	}

	// Articles with no usable keywords each become their own cluster.
	clusters := Group([]feed.Article{
		article("Is It Up", 50, time.Time{}),
		article("So Now", 50, time.Time{}),
	}, 0.3)
	if len(clusters) != 2 {
		t.Fatalf("keyword-less articles: got %d clusters, want 2", len(clusters))
	}
	for _, c := range clusters {
		if c.Topic != "General" {
			t.Errorf("keyword-less topic = %q, want General", c.Topic)
		}
	}
}

func TestGroupZeroTimesSortLast(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	clusters := Group([]feed.Article{
		article("Local Bakery Wins Pie Contest", 60, time.Time{}),
		article("Markets Rally On Rate Cut Hopes", 75, base),
	}, 0.3)
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[1].Representative.Title != "Local Bakery Wins Pie Contest" {
		t.Errorf("zero-time cluster should sort last, got order %q then %q",
			clusters[0].Representative.Title, clusters[1].Representative.Title)
	}
}
