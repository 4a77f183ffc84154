package scorer

import (
	"math"
	"testing"

	"github.com/wirefeedr/wirefeedr/pkg/publisher"
)

func TestCompositeNilPublisherIdentity(t *testing.T) {
	for s := 0; s <= 100; s++ {
		if got := Composite(s, nil); got != s {
			t.Fatalf("Composite(%d, nil) = %d, want %d", s, got, s)
		}
	}
}

func TestCompositeNoReportingIdentity(t *testing.T) {
	src := &publisher.Source{Domain: "example.com"}
	if got := Composite(72, src); got != 72 {
		t.Errorf("Composite with unscorable record = %d, want 72", got)
	}
}

func TestCompositeBlend(t *testing.T) {
	tests := []struct {
		name    string
		article int
		src     *publisher.Source
		want    int
	}{
		// very-high + high-credibility publisher scores 100.
		{"strong publisher lifts weak article", 50, &publisher.Source{Reporting: "very-high", Credibility: "high-credibility"}, 70},
		// mixed publisher scores 45.
		{"weak publisher drags strong article", 100, &publisher.Source{Reporting: "mixed"}, 78},
		{"both perfect", 100, &publisher.Source{Reporting: "very-high", Credibility: "high-credibility"}, 100},
		{"both zero", 0, &publisher.Source{Reporting: "very-low", Credibility: "low-credibility"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Composite(tt.article, tt.src)
			if got != tt.want {
				t.Errorf("Composite(%d) = %d, want %d", tt.article, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("Composite out of range: %d", got)
			}
		})
	}
}

func TestArticleComponentRoundTrip(t *testing.T) {
	for pub := 0; pub <= 100; pub += 5 {
		for article := 0; article <= 100; article++ {
			composite := clampScore(int(math.Round(PublisherWeight*float64(pub) + ArticleWeight*float64(article))))
			derived := ArticleComponent(composite, pub)
			diff := derived - article
			if diff < -1 || diff > 1 {
				t.Fatalf("back-derivation drift: article=%d pub=%d composite=%d derived=%d",
					article, pub, composite, derived)
			}
		}
	}
}

func TestCorroborationBonus(t *testing.T) {
	tests := []struct {
		size, want int
	}{
		{0, 0}, {1, 0}, {2, 2}, {3, 5}, {4, 8}, {9, 8},
	}
	for _, tt := range tests {
		if got := CorroborationBonus(tt.size); got != tt.want {
			t.Errorf("CorroborationBonus(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
