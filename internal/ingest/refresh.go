// Package ingest runs the refresh pipeline: fetch enabled feeds, score
// every entry, keep the best of each fetch and persist them.
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/wirefeedr/wirefeedr/internal/store"
	"github.com/wirefeedr/wirefeedr/pkg/feed"
	"github.com/wirefeedr/wirefeedr/pkg/publisher"
	"github.com/wirefeedr/wirefeedr/pkg/scorer"
	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

// defaultConcurrency bounds how many feeds are fetched at once.
const defaultConcurrency = 4

// Stats summarizes one refresh run.
type Stats struct {
	Feeds    int
	Fetched  int
	Inserted int
	Failed   int
}

// Refresher fetches, scores and persists articles.
type Refresher struct {
	store       store.Store
	fetcher     *feed.Fetcher
	directory   *publisher.Directory
	scorer      *scorer.Scorer
	log         *log.Logger
	perFeedKeep int
	concurrency int
}

// NewRefresher wires the refresh pipeline. perFeedKeep <= 0 keeps every
// entry of a fetch.
func NewRefresher(s store.Store, fetcher *feed.Fetcher, dir *publisher.Directory, sc *scorer.Scorer, logger *log.Logger, perFeedKeep int) *Refresher {
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		store:       s,
		fetcher:     fetcher,
		directory:   dir,
		scorer:      sc,
		log:         logger,
		perFeedKeep: perFeedKeep,
		concurrency: defaultConcurrency,
	}
}

// SetConcurrency bounds how many feeds refresh at once.
func (r *Refresher) SetConcurrency(n int) {
	if n > 0 {
		r.concurrency = n
	}
}

// RefreshAll fetches every enabled feed concurrently. Individual feed
// failures are logged and counted, not fatal.
func (r *Refresher) RefreshAll(ctx context.Context) (Stats, error) {
	feeds, err := r.store.ListFeeds(ctx, true)
	if err != nil {
		return Stats{}, err
	}

	// User keywords apply to every article scored in this run.
	if kws, err := r.store.ListKeywords(ctx); err == nil {
		custom := make([]scorer.Keyword, len(kws))
		for i, kw := range kws {
			custom[i] = scorer.Keyword{Keyword: kw.Keyword, Weight: kw.Weight}
		}
		r.scorer.SetKeywords(custom)
	} else {
		r.log.Warn("load filter keywords", "err", err)
	}

	var (
		mu    sync.Mutex
		stats = Stats{Feeds: len(feeds)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, fd := range feeds {
		fd := fd
		g.Go(func() error {
			fetched, inserted, err := r.refreshFeed(gctx, fd)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				r.log.Warn("refresh feed", "feed", fd.Name, "err", err)
				return nil // keep going; a dead feed must not stop the run
			}
			stats.Fetched += fetched
			stats.Inserted += inserted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	r.log.Info("refresh done",
		"feeds", stats.Feeds, "fetched", stats.Fetched,
		"inserted", stats.Inserted, "failed", stats.Failed)
	return stats, nil
}

// RefreshFeed fetches and persists a single feed by ID.
func (r *Refresher) RefreshFeed(ctx context.Context, feedID int64) (Stats, error) {
	fd, err := r.store.GetFeed(ctx, feedID)
	if err != nil {
		return Stats{}, err
	}
	fetched, inserted, err := r.refreshFeed(ctx, *fd)
	if err != nil {
		return Stats{Feeds: 1, Failed: 1}, err
	}
	return Stats{Feeds: 1, Fetched: fetched, Inserted: inserted}, nil
}

func (r *Refresher) refreshFeed(ctx context.Context, fd feed.Feed) (fetched, inserted int, err error) {
	articles, err := r.fetcher.Fetch(ctx, fd)
	if err != nil {
		return 0, 0, err
	}
	fetched = len(articles)

	for i := range articles {
		r.Score(&articles[i], fd)
	}

	// Keep only the most objective entries of this fetch so low-effort
	// churn never reaches the database. The cut ranks on the article's
	// own score: a strong publisher must not carry weak writing past it.
	if r.perFeedKeep > 0 && len(articles) > r.perFeedKeep {
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].ArticleScore > articles[j].ArticleScore
		})
		articles = articles[:r.perFeedKeep]
	}

	inserted, err = r.store.InsertArticles(ctx, articles)
	if err != nil {
		return fetched, inserted, err
	}
	if err := r.store.TouchFeed(ctx, fd.ID, time.Now().UTC()); err != nil {
		r.log.Warn("touch feed", "feed", fd.Name, "err", err)
	}

	r.log.Debug("feed refreshed", "feed", fd.Name, "fetched", fetched, "kept", len(articles), "inserted", inserted)
	return fetched, inserted, nil
}

// Score fills an article's score and frozen publisher fields in place.
// The publisher data is copied onto the article so later dataset updates
// never rewrite history.
func (r *Refresher) Score(a *feed.Article, fd feed.Feed) {
	a.FeedID = fd.ID
	a.Author = trends.CleanAuthor(a.Author)
	a.PublisherDomain = r.directory.Normalize(a.Link)

	src := r.directory.Lookup(a.PublisherDomain)
	factual := fd.Factual
	if src != nil && src.Reporting != "" {
		factual = publisher.DisplayReporting(src.Reporting)
	}

	a.ArticleScore = r.scorer.Score(a.Title, a.Link, a.Summary, factual)
	a.CompositeScore = scorer.Composite(a.ArticleScore, src)

	if src != nil {
		if ps, ok := publisher.Score(src); ok {
			score := ps
			a.PublisherScore = &score
		}
		a.PubBias = publisher.DisplayBias(src.Bias)
		a.PubReporting = publisher.DisplayReporting(src.Reporting)
		a.PubCredibility = src.Credibility
		a.Flags = append([]string(nil), src.Questionable...)
	}
}
