// Package store persists feeds, scored articles, filter keywords and
// settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/wirefeedr/wirefeedr/pkg/feed"
	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

// historyLimit caps how many rows feed a trend window.
const historyLimit = 500

// historyAge caps how far back trend history reaches.
const historyAge = 90 * 24 * time.Hour

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ListOpts controls article listing. Zero values mean "no filter".
type ListOpts struct {
	FeedIDs       []int64
	Category      string
	UnreadOnly    bool
	FavoritesOnly bool
	IncludeHidden bool
	MinScore      int
	Since         time.Time
	Search        string
	// MaxPerSource caps articles per publisher domain after filtering,
	// so one prolific source cannot crowd out the rest.
	MaxPerSource int
	Limit        int
}

// Keyword is a user-defined penalty keyword.
type Keyword struct {
	ID      int64  `db:"id" json:"id"`
	Keyword string `db:"keyword" json:"keyword"`
	Weight  int    `db:"weight" json:"weight"`
}

// Store is the persistence interface.
type Store interface {
	UpsertFeed(ctx context.Context, f *feed.Feed) error
	ListFeeds(ctx context.Context, enabledOnly bool) ([]feed.Feed, error)
	GetFeed(ctx context.Context, id int64) (*feed.Feed, error)
	SetFeedEnabled(ctx context.Context, id int64, enabled bool) error
	TouchFeed(ctx context.Context, id int64, at time.Time) error
	DeleteFeed(ctx context.Context, id int64) error

	InsertArticles(ctx context.Context, articles []feed.Article) (int, error)
	GetArticle(ctx context.Context, id int64) (*feed.Article, error)
	ListArticles(ctx context.Context, opts ListOpts) ([]feed.Article, error)
	SetArticleRead(ctx context.Context, id int64, read bool) error
	SetArticleHidden(ctx context.Context, id int64, hidden bool) error
	SetArticleFavorite(ctx context.Context, id int64, favorite bool) error
	CountArticles(ctx context.Context) (int, error)

	PublisherHistory(ctx context.Context, domain string) ([]trends.Record, error)
	AuthorHistory(ctx context.Context, author string) ([]trends.Record, error)

	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	ListKeywords(ctx context.Context) ([]Keyword, error)
	AddKeyword(ctx context.Context, keyword string, weight int) error
	RemoveKeyword(ctx context.Context, keyword string) error

	GetSetting(ctx context.Context, key, fallback string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertFeed(ctx context.Context, f *feed.Feed) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feeds (name, url, category, bias, factual, author_url_pattern, enabled, last_fetched, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			bias = excluded.bias,
			factual = excluded.factual,
			author_url_pattern = excluded.author_url_pattern,
			enabled = excluded.enabled
	`, f.Name, f.URL, f.Category, f.Bias, f.Factual, f.AuthorURLPattern,
		f.Enabled, f.LastFetched, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert feed %s: %w", f.URL, err)
	}
	if f.ID == 0 {
		// The conflict path makes LastInsertId unreliable; resolve by URL.
		var id int64
		if err := s.db.GetContext(ctx, &id, "SELECT id FROM feeds WHERE url = ?", f.URL); err == nil {
			f.ID = id
		}
	}
	return nil
}

func (s *SQLiteStore) ListFeeds(ctx context.Context, enabledOnly bool) ([]feed.Feed, error) {
	query := "SELECT * FROM feeds"
	if enabledOnly {
		query += " WHERE enabled = 1"
	}
	query += " ORDER BY name"

	var feeds []feed.Feed
	if err := s.db.SelectContext(ctx, &feeds, query); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

func (s *SQLiteStore) GetFeed(ctx context.Context, id int64) (*feed.Feed, error) {
	var f feed.Feed
	err := s.db.GetContext(ctx, &f, "SELECT * FROM feeds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed %d: %w", id, err)
	}
	return &f, nil
}

func (s *SQLiteStore) SetFeedEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := s.db.ExecContext(ctx, "UPDATE feeds SET enabled = ? WHERE id = ?", enabled, id)
	if err != nil {
		return fmt.Errorf("set feed %d enabled: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) TouchFeed(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE feeds SET last_fetched = ? WHERE id = ?", at.UTC(), id)
	if err != nil {
		return fmt.Errorf("touch feed %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteFeed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete feed %d: %w", id, err)
	}
	return nil
}

// InsertArticles inserts new articles, skipping links already stored, and
// returns how many rows were actually added.
func (s *SQLiteStore) InsertArticles(ctx context.Context, articles []feed.Article) (int, error) {
	inserted := 0
	for i := range articles {
		a := &articles[i]
		a.EncodeFlags()
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO articles (feed_id, title, link, summary, author, published,
				article_score, publisher_score, noise_score,
				publisher_domain, mbfc_bias, mbfc_reporting, mbfc_credibility, mbfc_flags,
				created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(link) DO NOTHING
		`, a.FeedID, a.Title, a.Link, a.Summary, a.Author, a.Published,
			a.ArticleScore, a.PublisherScore, a.CompositeScore,
			a.PublisherDomain, a.PubBias, a.PubReporting, a.PubCredibility, a.FlagsRaw,
			a.CreatedAt)
		if err != nil {
			return inserted, fmt.Errorf("insert article %s: %w", a.Link, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

const articleColumns = `a.id, a.feed_id, a.title, a.link, a.summary, a.author, a.published,
	a.article_score, a.publisher_score, a.noise_score,
	a.publisher_domain, a.mbfc_bias, a.mbfc_reporting, a.mbfc_credibility, a.mbfc_flags,
	a.is_read, a.is_hidden, a.is_favorite, a.created_at,
	f.name AS feed_name, f.category, f.bias, f.factual`

func (s *SQLiteStore) GetArticle(ctx context.Context, id int64) (*feed.Article, error) {
	var a feed.Article
	err := s.db.GetContext(ctx, &a,
		"SELECT "+articleColumns+" FROM articles a JOIN feeds f ON f.id = a.feed_id WHERE a.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	a.DecodeFlags()
	return &a, nil
}

func (s *SQLiteStore) ListArticles(ctx context.Context, opts ListOpts) ([]feed.Article, error) {
	q := sq.Select(articleColumns).
		From("articles a").
		Join("feeds f ON f.id = a.feed_id").
		OrderBy("a.published DESC", "a.id DESC")

	if len(opts.FeedIDs) > 0 {
		q = q.Where(sq.Eq{"a.feed_id": opts.FeedIDs})
	}
	if opts.Category != "" {
		q = q.Where(sq.Eq{"f.category": opts.Category})
	}
	if opts.UnreadOnly {
		q = q.Where(sq.Eq{"a.is_read": false})
	}
	if opts.FavoritesOnly {
		q = q.Where(sq.Eq{"a.is_favorite": true})
	}
	if !opts.IncludeHidden {
		q = q.Where(sq.Eq{"a.is_hidden": false})
	}
	if opts.MinScore > 0 {
		q = q.Where(sq.GtOrEq{"a.noise_score": opts.MinScore})
	}
	if !opts.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"a.published": opts.Since})
	}
	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where(sq.Or{
			sq.Like{"a.title": like},
			sq.Like{"a.summary": like},
		})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}
	// Fetch extra rows when a per-source cap will trim the result.
	fetchLimit := limit
	if opts.MaxPerSource > 0 {
		fetchLimit = limit * 4
	}
	q = q.Limit(uint64(fetchLimit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	var articles []feed.Article
	if err := s.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	for i := range articles {
		articles[i].DecodeFlags()
	}

	if opts.MaxPerSource > 0 {
		articles = capPerSource(articles, opts.MaxPerSource)
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// capPerSource keeps at most n articles per publisher domain, preserving
// order. Articles without a domain fall back to their feed for grouping.
func capPerSource(articles []feed.Article, n int) []feed.Article {
	counts := make(map[string]int)
	out := articles[:0]
	for _, a := range articles {
		key := a.PublisherDomain
		if key == "" {
			key = fmt.Sprintf("feed:%d", a.FeedID)
		}
		if counts[key] >= n {
			continue
		}
		counts[key]++
		out = append(out, a)
	}
	return out
}

func (s *SQLiteStore) SetArticleRead(ctx context.Context, id int64, read bool) error {
	return s.setArticleFlag(ctx, id, "is_read", read)
}

func (s *SQLiteStore) SetArticleHidden(ctx context.Context, id int64, hidden bool) error {
	return s.setArticleFlag(ctx, id, "is_hidden", hidden)
}

func (s *SQLiteStore) SetArticleFavorite(ctx context.Context, id int64, favorite bool) error {
	return s.setArticleFlag(ctx, id, "is_favorite", favorite)
}

func (s *SQLiteStore) setArticleFlag(ctx context.Context, id int64, column string, value bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE articles SET "+column+" = ? WHERE id = ?", value, id)
	if err != nil {
		return fmt.Errorf("set article %d %s: %w", id, column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountArticles(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM articles"); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// PublisherHistory returns recent composite scores for one domain, or for
// all domains when domain is empty, newest first.
func (s *SQLiteStore) PublisherHistory(ctx context.Context, domain string) ([]trends.Record, error) {
	return s.history(ctx, "publisher_domain", domain)
}

// AuthorHistory is PublisherHistory keyed by author byline.
func (s *SQLiteStore) AuthorHistory(ctx context.Context, author string) ([]trends.Record, error) {
	return s.history(ctx, "author", author)
}

func (s *SQLiteStore) history(ctx context.Context, column, key string) ([]trends.Record, error) {
	q := sq.Select(column+" AS key", "noise_score AS score", "published").
		From("articles").
		Where(sq.NotEq{column: ""}).
		Where(sq.GtOrEq{"published": time.Now().UTC().Add(-historyAge)}).
		OrderBy("published DESC").
		Limit(historyLimit)
	if key != "" {
		q = q.Where(sq.Eq{column: key})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var records []trends.Record
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("%s history: %w", column, err)
	}
	return records, nil
}

// PurgeOlderThan deletes articles published before cutoff, keeping
// favorites.
func (s *SQLiteStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM articles WHERE published < ? AND is_favorite = 0", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge articles: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *SQLiteStore) ListKeywords(ctx context.Context) ([]Keyword, error) {
	var kws []Keyword
	if err := s.db.SelectContext(ctx, &kws, "SELECT * FROM filter_keywords ORDER BY keyword"); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return kws, nil
}

func (s *SQLiteStore) AddKeyword(ctx context.Context, keyword string, weight int) error {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return errors.New("empty keyword")
	}
	if weight <= 0 {
		weight = 10
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filter_keywords (keyword, weight) VALUES (?, ?)
		ON CONFLICT(keyword) DO UPDATE SET weight = excluded.weight
	`, keyword, weight)
	if err != nil {
		return fmt.Errorf("add keyword %s: %w", keyword, err)
	}
	return nil
}

func (s *SQLiteStore) RemoveKeyword(ctx context.Context, keyword string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM filter_keywords WHERE keyword = ?", strings.ToLower(strings.TrimSpace(keyword)))
	if err != nil {
		return fmt.Errorf("remove keyword %s: %w", keyword, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
