package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wirefeedr/wirefeedr/pkg/feed"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFeed(t *testing.T, s *SQLiteStore, name, url string) int64 {
	t.Helper()
	f := &feed.Feed{Name: name, URL: url, Category: "news", Enabled: true}
	if err := s.UpsertFeed(context.Background(), f); err != nil {
		t.Fatalf("upsert feed: %v", err)
	}
	if f.ID == 0 {
		t.Fatal("feed ID not populated")
	}
	return f.ID
}

func TestFeedCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedFeed(t, s, "NPR News", "https://feeds.npr.org/1001/rss.xml")

	// Upsert by URL updates in place.
	if err := s.UpsertFeed(ctx, &feed.Feed{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml", Enabled: true}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	feeds, err := s.ListFeeds(ctx, false)
	if err != nil {
		t.Fatalf("list feeds: %v", err)
	}
	if len(feeds) != 1 || feeds[0].Name != "NPR" {
		t.Fatalf("feeds = %+v, want single NPR entry", feeds)
	}

	if err := s.SetFeedEnabled(ctx, id, false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	enabled, err := s.ListFeeds(ctx, true)
	if err != nil {
		t.Fatalf("list enabled: %v", err)
	}
	if len(enabled) != 0 {
		t.Errorf("enabled feeds = %d, want 0 after disable", len(enabled))
	}

	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	if err := s.TouchFeed(ctx, id, at); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := s.GetFeed(ctx, id)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if !got.LastFetched.Equal(at) {
		t.Errorf("last_fetched = %v, want %v", got.LastFetched, at)
	}

	if err := s.DeleteFeed(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetFeed(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func testArticle(feedID int64, title, link, domain string, score int, published time.Time) feed.Article {
	pub := 80
	return feed.Article{
		FeedID:          feedID,
		Title:           title,
		Link:            link,
		Published:       published,
		ArticleScore:    score,
		PublisherScore:  &pub,
		CompositeScore:  score,
		PublisherDomain: domain,
		Flags:           []string{"Failed Fact Checks"},
	}
}

func TestInsertAndListArticles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedFeed(t, s, "AP", "https://example.com/ap.rss")
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	batch := []feed.Article{
		testArticle(id, "First", "https://apnews.com/1", "apnews.com", 90, base),
		testArticle(id, "Second", "https://apnews.com/2", "apnews.com", 40, base.Add(time.Hour)),
	}
	n, err := s.InsertArticles(ctx, batch)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}

	// Duplicate links are skipped, not errors.
	n, err = s.InsertArticles(ctx, batch)
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if n != 0 {
		t.Errorf("reinsert added %d rows, want 0", n)
	}

	all, err := s.ListArticles(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d articles, want 2", len(all))
	}
	if all[0].Title != "Second" {
		t.Errorf("newest first: got %q", all[0].Title)
	}
	if all[0].FeedName != "AP" || all[0].Category != "news" {
		t.Errorf("joined feed columns not populated: %+v", all[0])
	}
	if len(all[0].Flags) != 1 || all[0].Flags[0] != "Failed Fact Checks" {
		t.Errorf("flags round trip = %v", all[0].Flags)
	}
	if all[0].PublisherScore == nil || *all[0].PublisherScore != 80 {
		t.Errorf("publisher score round trip = %v", all[0].PublisherScore)
	}

	high, err := s.ListArticles(ctx, ListOpts{MinScore: 70})
	if err != nil {
		t.Fatalf("list min score: %v", err)
	}
	if len(high) != 1 || high[0].Title != "First" {
		t.Errorf("min score filter = %+v, want only First", high)
	}

	recent, err := s.ListArticles(ctx, ListOpts{Since: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].Title != "Second" {
		t.Errorf("since filter = %+v, want only Second", recent)
	}

	found, err := s.ListArticles(ctx, ListOpts{Search: "firs"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Title != "First" {
		t.Errorf("search = %+v, want only First", found)
	}
}

func TestArticleFlagsAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedFeed(t, s, "AP", "https://example.com/ap.rss")
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	if _, err := s.InsertArticles(ctx, []feed.Article{
		testArticle(id, "One", "https://apnews.com/1", "apnews.com", 90, base),
		testArticle(id, "Two", "https://apnews.com/2", "apnews.com", 80, base),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	all, _ := s.ListArticles(ctx, ListOpts{})

	if err := s.SetArticleRead(ctx, all[0].ID, true); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ := s.ListArticles(ctx, ListOpts{UnreadOnly: true})
	if len(unread) != 1 || unread[0].ID == all[0].ID {
		t.Errorf("unread filter = %+v", unread)
	}

	if err := s.SetArticleHidden(ctx, all[0].ID, true); err != nil {
		t.Fatalf("hide: %v", err)
	}
	visible, _ := s.ListArticles(ctx, ListOpts{})
	if len(visible) != 1 {
		t.Errorf("hidden filter left %d visible, want 1", len(visible))
	}
	withHidden, _ := s.ListArticles(ctx, ListOpts{IncludeHidden: true})
	if len(withHidden) != 2 {
		t.Errorf("IncludeHidden returned %d, want 2", len(withHidden))
	}

	if err := s.SetArticleFavorite(ctx, all[1].ID, true); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	favs, _ := s.ListArticles(ctx, ListOpts{FavoritesOnly: true})
	if len(favs) != 1 || favs[0].ID != all[1].ID {
		t.Errorf("favorites filter = %+v", favs)
	}

	if err := s.SetArticleRead(ctx, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("flag on missing article = %v, want ErrNotFound", err)
	}
}

func TestPerSourceCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedFeed(t, s, "Mixed", "https://example.com/mixed.rss")
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	var batch []feed.Article
	for i := 0; i < 5; i++ {
		batch = append(batch, testArticle(id, "Busy", "https://busy.com/"+string(rune('a'+i)), "busy.com", 80, base.Add(time.Duration(i)*time.Minute)))
	}
	batch = append(batch, testArticle(id, "Quiet", "https://quiet.org/1", "quiet.org", 80, base))
	if _, err := s.InsertArticles(ctx, batch); err != nil {
		t.Fatalf("insert: %v", err)
	}

	capped, err := s.ListArticles(ctx, ListOpts{MaxPerSource: 2})
	if err != nil {
		t.Fatalf("list capped: %v", err)
	}
	perDomain := make(map[string]int)
	for _, a := range capped {
		perDomain[a.PublisherDomain]++
	}
	if perDomain["busy.com"] != 2 || perDomain["quiet.org"] != 1 {
		t.Errorf("per-source counts = %v, want busy.com:2 quiet.org:1", perDomain)
	}
}

func TestHistoryAndPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedFeed(t, s, "AP", "https://example.com/ap.rss")
	now := time.Now().UTC()

	old := testArticle(id, "Old", "https://apnews.com/old", "apnews.com", 70, now.Add(-30*24*time.Hour))
	fresh := testArticle(id, "Fresh", "https://apnews.com/new", "apnews.com", 90, now.Add(-time.Hour))
	fav := testArticle(id, "Kept", "https://apnews.com/fav", "apnews.com", 85, now.Add(-30*24*time.Hour))
	fresh.Author = "Jane Doe"
	if _, err := s.InsertArticles(ctx, []feed.Article{old, fresh, fav}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	history, err := s.PublisherHistory(ctx, "apnews.com")
	if err != nil {
		t.Fatalf("publisher history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history rows = %d, want 3", len(history))
	}
	if history[0].Score != 90 || history[0].Key != "apnews.com" {
		t.Errorf("newest history row = %+v", history[0])
	}

	byAuthor, err := s.AuthorHistory(ctx, "Jane Doe")
	if err != nil {
		t.Fatalf("author history: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].Key != "Jane Doe" {
		t.Errorf("author history = %+v", byAuthor)
	}

	all, _ := s.ListArticles(ctx, ListOpts{})
	for _, a := range all {
		if a.Title == "Kept" {
			if err := s.SetArticleFavorite(ctx, a.ID, true); err != nil {
				t.Fatalf("favorite: %v", err)
			}
		}
	}

	purged, err := s.PurgeOlderThan(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d rows, want 1 (favorite survives)", purged)
	}
	if n, _ := s.CountArticles(ctx); n != 2 {
		t.Errorf("%d articles left, want 2", n)
	}
}

func TestKeywordsAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddKeyword(ctx, "  Crypto ", 0); err != nil {
		t.Fatalf("add keyword: %v", err)
	}
	if err := s.AddKeyword(ctx, "crypto", 15); err != nil {
		t.Fatalf("update keyword: %v", err)
	}
	kws, err := s.ListKeywords(ctx)
	if err != nil {
		t.Fatalf("list keywords: %v", err)
	}
	if len(kws) != 1 || kws[0].Keyword != "crypto" || kws[0].Weight != 15 {
		t.Errorf("keywords = %+v, want single crypto/15", kws)
	}
	if err := s.RemoveKeyword(ctx, "crypto"); err != nil {
		t.Fatalf("remove keyword: %v", err)
	}
	if err := s.RemoveKeyword(ctx, "crypto"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove missing keyword = %v, want ErrNotFound", err)
	}

	v, err := s.GetSetting(ctx, "min_score", "70")
	if err != nil || v != "70" {
		t.Errorf("unset setting = %q, %v; want fallback 70", v, err)
	}
	if err := s.SetSetting(ctx, "min_score", "80"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if v, _ := s.GetSetting(ctx, "min_score", "70"); v != "80" {
		t.Errorf("setting = %q, want 80", v)
	}
}
