package scorer

import (
	"math"

	"github.com/wirefeedr/wirefeedr/pkg/publisher"
)

// Composite weights: the blended score is 60% article analysis and 40%
// publisher reputation.
const (
	ArticleWeight   = 0.6
	PublisherWeight = 0.4
)

// Composite blends an article's objectivity score with its publisher's
// reputation score. When no publisher data exists the article score passes
// through unchanged.
func Composite(articleScore int, src *publisher.Source) int {
	pub, ok := publisher.Score(src)
	if !ok {
		return clampScore(articleScore)
	}
	blended := PublisherWeight*float64(pub) + ArticleWeight*float64(articleScore)
	return clampScore(int(math.Round(blended)))
}

// ArticleComponent back-derives the article-only score from a composite
// and its publisher score, inverting the Composite rounding within ±1.
func ArticleComponent(composite, publisherScore int) int {
	raw := (float64(composite) - PublisherWeight*float64(publisherScore)) / ArticleWeight
	return clampScore(int(math.Round(raw)))
}

// CorroborationBonus rewards stories reported by multiple sources.
func CorroborationBonus(clusterSize int) int {
	switch {
	case clusterSize >= 4:
		return 8
	case clusterSize >= 3:
		return 5
	case clusterSize >= 2:
		return 2
	}
	return 0
}
