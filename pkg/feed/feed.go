// Package feed defines the article and feed models and fetches RSS/Atom
// feeds into them.
package feed

import (
	"strings"
	"time"
)

// Feed is a subscribed RSS/Atom source.
type Feed struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	URL              string    `json:"url" db:"url"`
	Category         string    `json:"category" db:"category"`
	Bias             string    `json:"bias" db:"bias"`
	Factual          string    `json:"factual" db:"factual"`
	AuthorURLPattern string    `json:"author_url_pattern" db:"author_url_pattern"`
	Enabled          bool      `json:"enabled" db:"enabled"`
	LastFetched      time.Time `json:"last_fetched" db:"last_fetched"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Article is one scored article. The publisher fields are frozen at analysis
// time: the canonical dataset may change later, but the values that produced
// this article's score are kept with it.
type Article struct {
	ID        int64     `json:"id" db:"id"`
	FeedID    int64     `json:"feed_id" db:"feed_id"`
	Title     string    `json:"title" db:"title"`
	Link      string    `json:"link" db:"link"`
	Summary   string    `json:"summary" db:"summary"`
	Author    string    `json:"author" db:"author"`
	Published time.Time `json:"published" db:"published"`

	// Scores. ArticleScore is the text-only objectivity score,
	// PublisherScore the reputation score (nil without publisher data) and
	// CompositeScore the persisted 60/40 blend.
	ArticleScore   int  `json:"article_score" db:"article_score"`
	PublisherScore *int `json:"publisher_score" db:"publisher_score"`
	CompositeScore int  `json:"composite_score" db:"noise_score"`

	PublisherDomain string   `json:"publisher_domain" db:"publisher_domain"`
	PubBias         string   `json:"publisher_bias" db:"mbfc_bias"`
	PubReporting    string   `json:"publisher_reporting" db:"mbfc_reporting"`
	PubCredibility  string   `json:"publisher_credibility" db:"mbfc_credibility"`
	Flags           []string `json:"publisher_flags" db:"-"`
	FlagsRaw        string   `json:"-" db:"mbfc_flags"`

	Read     bool `json:"read" db:"is_read"`
	Hidden   bool `json:"hidden" db:"is_hidden"`
	Favorite bool `json:"favorite" db:"is_favorite"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Joined feed columns, populated by listing queries.
	FeedName string `json:"feed_name,omitempty" db:"feed_name"`
	Category string `json:"category,omitempty" db:"category"`
	Bias     string `json:"bias,omitempty" db:"bias"`
	Factual  string `json:"factual,omitempty" db:"factual"`
}

// EncodeFlags packs Flags into FlagsRaw for storage.
func (a *Article) EncodeFlags() {
	a.FlagsRaw = strings.Join(a.Flags, ",")
}

// DecodeFlags unpacks FlagsRaw into Flags after a read.
func (a *Article) DecodeFlags() {
	if a.FlagsRaw == "" {
		a.Flags = nil
		return
	}
	a.Flags = strings.Split(a.FlagsRaw, ",")
}
