package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wirefeedr/wirefeedr/internal/config"
	"github.com/wirefeedr/wirefeedr/internal/ingest"
	"github.com/wirefeedr/wirefeedr/internal/scheduler"
	"github.com/wirefeedr/wirefeedr/internal/store"
	"github.com/wirefeedr/wirefeedr/pkg/alert"
	"github.com/wirefeedr/wirefeedr/pkg/cluster"
	"github.com/wirefeedr/wirefeedr/pkg/feed"
	"github.com/wirefeedr/wirefeedr/pkg/publisher"
	"github.com/wirefeedr/wirefeedr/pkg/scorer"
	"github.com/wirefeedr/wirefeedr/pkg/server"
	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// app bundles everything a command needs.
type app struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	directory *publisher.Directory
	scorer    *scorer.Scorer
	refresher *ingest.Refresher
	log       *log.Logger
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	dir := publisher.NewDirectory()
	if n, err := dir.Load(cfg.Dataset.Path); err != nil {
		logger.Warn("load publisher dataset", "err", err)
	} else if n > 0 {
		logger.Debug("publisher dataset loaded", "sources", n)
	}

	sc := scorer.New(nil, nil)
	fetcher := feed.NewFetcher(cfg.Fetch.RequestsPerSecond)
	refresher := ingest.NewRefresher(db, fetcher, dir, sc, logger, cfg.Fetch.PerFeedKeep)
	refresher.SetConcurrency(cfg.Fetch.Concurrency)

	a := &app{
		cfg:       cfg,
		store:     db,
		directory: dir,
		scorer:    sc,
		refresher: refresher,
		log:       logger,
	}
	if err := a.seedFeeds(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error { return a.store.Close() }

// seedFeeds installs the configured feed set. Upserts are keyed by URL so
// reruns are harmless and user edits to name or category stick via config.
func (a *app) seedFeeds(ctx context.Context) error {
	for _, fc := range a.cfg.Feeds {
		f := &feed.Feed{
			Name:     fc.Name,
			URL:      fc.URL,
			Category: fc.Category,
			Bias:     fc.Bias,
			Factual:  fc.Factual,
			Enabled:  true,
		}
		if err := a.store.UpsertFeed(ctx, f); err != nil {
			return fmt.Errorf("seed feed %s: %w", fc.Name, err)
		}
	}
	return nil
}

func (a *app) defaultListOpts() store.ListOpts {
	return store.ListOpts{
		MinScore:     a.cfg.Filter.MinScore,
		Since:        time.Now().Add(-a.cfg.Filter.Recency()),
		MaxPerSource: a.cfg.Filter.MaxPerSource,
	}
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runFetch(feedID int64) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var stats ingest.Stats
	if feedID > 0 {
		stats, err = a.refresher.RefreshFeed(ctx, feedID)
	} else {
		stats, err = a.refresher.RefreshAll(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("fetched %d entries from %d feed(s), kept %d new article(s)\n",
		stats.Fetched, stats.Feeds, stats.Inserted)
	if stats.Failed > 0 {
		fmt.Printf("%d feed(s) failed, see log\n", stats.Failed)
	}
	return nil
}

func runArticles(jsonOutput bool, minScore, limit int, all bool, search string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.defaultListOpts()
	opts.Limit = limit
	opts.Search = search
	if minScore >= 0 {
		opts.MinScore = minScore
	}
	if all {
		opts.MinScore = 0
		opts.Since = time.Time{}
		opts.MaxPerSource = 0
	}

	articles, err := a.store.ListArticles(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(articles)
	}
	if len(articles) == 0 {
		fmt.Println("no articles (try: wirefeedr fetch)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tGRADE\tPUBLISHER\tTITLE")
	for _, art := range articles {
		pub := art.PublisherDomain
		if pub == "" {
			pub = art.FeedName
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			art.ID, art.CompositeScore, scorer.GradeFor(art.CompositeScore).Letter, pub, art.Title)
	}
	return w.Flush()
}

func runTopics(jsonOutput bool, threshold float64) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if threshold <= 0 {
		threshold = a.cfg.Filter.SimilarityThreshold
	}
	if !a.cfg.Filter.Clustering {
		// Above any possible similarity, so every story stands alone.
		threshold = 1.1
	}

	opts := a.defaultListOpts()
	opts.Limit = 500
	articles, err := a.store.ListArticles(context.Background(), opts)
	if err != nil {
		return err
	}

	clusters := cluster.Group(articles, threshold)
	if jsonOutput {
		return printJSON(clusters)
	}
	if len(clusters) == 0 {
		fmt.Println("no stories (try: wirefeedr fetch)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCES\tBONUS\tTOPIC\tBEST")
	for _, c := range clusters {
		fmt.Fprintf(w, "%d\t+%d\t%s\t%s\n",
			c.Count, c.Corroboration, c.Topic, c.Representative.Title)
	}
	return w.Flush()
}

func runTrends(jsonOutput, byAuthor bool, key string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	var history []trends.Record
	if byAuthor {
		history, err = a.store.AuthorHistory(ctx, key)
	} else {
		history, err = a.store.PublisherHistory(ctx, key)
	}
	if err != nil {
		return err
	}

	data := trends.Aggregate(history)
	if jsonOutput {
		return printJSON(data)
	}
	if len(data) == 0 {
		fmt.Println("no history yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSAMPLES\tAVG\tSTDDEV\tDIRECTION")
	for _, tr := range data {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\n",
			tr.Key, tr.Window.Count, tr.Window.Average, tr.Window.StdDev, tr.Direction)
	}
	return w.Flush()
}

func runAnomalies(jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	since := time.Now().Add(-a.cfg.Filter.Recency())
	anomalies, err := scheduler.DetectAnomalies(context.Background(), a.store, since)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(anomalies)
	}
	if len(anomalies) == 0 {
		fmt.Println("no anomalies in the current window")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tAVG\tPUBLISHER\tTITLE")
	for _, an := range anomalies {
		fmt.Fprintf(w, "%d\t%.0f\t%s\t%s\n", an.Score, an.Average, an.Domain, an.Title)
	}
	return w.Flush()
}

func runFeeds() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	feeds, err := a.store.ListFeeds(context.Background(), false)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENABLED\tCATEGORY\tNAME\tLAST FETCHED")
	for _, f := range feeds {
		last := "never"
		if !f.LastFetched.IsZero() {
			last = f.LastFetched.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%t\t%s\t%s\t%s\n", f.ID, f.Enabled, f.Category, f.Name, last)
	}
	return w.Flush()
}

func runInspect(title, link, summary string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	b := a.scorer.Analyze(title, link, summary)
	src := a.directory.Lookup(link)
	composite := scorer.Composite(b.FinalScore, src)

	fmt.Printf("article score:   %s\n", scorer.Level(b.FinalScore))
	if src != nil {
		if ps, ok := publisher.Score(src); ok {
			fmt.Printf("publisher score: %d (%s, %s reporting)\n",
				ps, src.Name, publisher.DisplayReporting(src.Reporting))
		}
	} else if link != "" {
		fmt.Println("publisher:       unknown, article score stands alone")
	}
	fmt.Printf("composite:       %s\n\n", scorer.Level(composite))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tPOINTS")
	fmt.Fprintf(w, "opinion url\t-%d\n", b.OpinionURL)
	fmt.Fprintf(w, "opinion title\t-%d\n", b.OpinionTitle)
	fmt.Fprintf(w, "sensational keywords\t-%d\n", b.SensationalKeywords)
	fmt.Fprintf(w, "clickbait patterns\t-%d\n", b.ClickbaitPatterns)
	fmt.Fprintf(w, "excessive punctuation\t-%d\n", b.ExcessivePunctuation)
	fmt.Fprintf(w, "all caps\t-%d\n", b.AllCaps)
	fmt.Fprintf(w, "custom keywords\t-%d\n", b.CustomKeywords)
	fmt.Fprintf(w, "summary signals\t-%d\n", b.SummaryNegative)
	fmt.Fprintf(w, "factual-language bonus\t+%d\n", b.SummaryPositiveBonus)
	return w.Flush()
}

func runKeywordsList() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	kws, err := a.store.ListKeywords(context.Background())
	if err != nil {
		return err
	}
	if len(kws) == 0 {
		fmt.Println("no keywords (add one: wirefeedr keywords add <keyword>)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tWEIGHT")
	for _, kw := range kws {
		fmt.Fprintf(w, "%s\t%d\n", kw.Keyword, kw.Weight)
	}
	return w.Flush()
}

func runKeywordsAdd(keyword string, weight int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.AddKeyword(context.Background(), keyword, weight); err != nil {
		return err
	}
	fmt.Printf("added %q with weight %d\n", keyword, weight)
	return nil
}

func runKeywordsRemove(keyword string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.RemoveKeyword(context.Background(), keyword); err != nil {
		return err
	}
	fmt.Printf("removed %q\n", keyword)
	return nil
}

func (a *app) serverOptions(port int) server.Options {
	if port == 0 {
		port = a.cfg.Server.Port
	}
	return server.Options{
		Port:                port,
		MinScore:            a.cfg.Filter.MinScore,
		Recency:             a.cfg.Filter.Recency(),
		MaxPerSource:        a.cfg.Filter.MaxPerSource,
		SimilarityThreshold: a.cfg.Filter.SimilarityThreshold,
	}
}

func runServe(port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.serverOptions(port)
	a.log.Info("server listening", "port", opts.Port)
	return server.New(a.store, a.refresher, opts).ListenAndServe()
}

func runDaemon(port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(a.store, a.refresher, buildAlertManager(a.cfg), a.log,
		a.cfg.Schedule.ParseRefreshInterval(), a.cfg.Schedule.Retention())

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error("scheduler", "err", err)
		}
	}()

	opts := a.serverOptions(port)
	a.log.Info("server listening", "port", opts.Port)
	return server.New(a.store, a.refresher, opts).ListenAndServe()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
