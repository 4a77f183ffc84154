// Package scheduler runs the periodic refresh loop: fetch and score feeds,
// purge expired articles and alert on credibility anomalies.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wirefeedr/wirefeedr/internal/ingest"
	"github.com/wirefeedr/wirefeedr/internal/store"
	"github.com/wirefeedr/wirefeedr/pkg/alert"
	"github.com/wirefeedr/wirefeedr/pkg/trends"
)

// Scheduler drives periodic refreshes.
type Scheduler struct {
	store     store.Store
	refresher *ingest.Refresher
	alertMgr  *alert.Manager
	log       *log.Logger
	interval  time.Duration
	retention time.Duration
}

// New creates a scheduler. Zero interval and retention get defaults.
func New(s store.Store, r *ingest.Refresher, alertMgr *alert.Manager, logger *log.Logger, interval, retention time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 180 * time.Minute
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		store:     s,
		refresher: r,
		alertMgr:  alertMgr,
		log:       logger,
		interval:  interval,
		retention: retention,
	}
}

// Run starts the loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start.
	s.cycle(ctx)
	s.log.Info("scheduler running", "interval", s.interval, "retention", s.retention)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	started := time.Now()

	if _, err := s.refresher.RefreshAll(ctx); err != nil {
		s.log.Error("refresh", "err", err)
	}

	purged, err := s.store.PurgeOlderThan(ctx, time.Now().Add(-s.retention))
	if err != nil {
		s.log.Error("purge", "err", err)
	} else if purged > 0 {
		s.log.Info("purged expired articles", "count", purged)
	}

	anomalies, err := DetectAnomalies(ctx, s.store, started.Add(-s.interval))
	if err != nil {
		s.log.Error("anomaly scan", "err", err)
		return
	}
	if len(anomalies) == 0 || s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	n := &alert.Notification{
		Title:     "Credibility anomalies",
		Body:      fmt.Sprintf("%d article(s) scored far below their publisher's average", len(anomalies)),
		Anomalies: anomalies,
	}
	if err := s.alertMgr.Broadcast(ctx, n); err != nil {
		s.log.Error("alert", "err", err)
	}
}

// DetectAnomalies scans articles published since the cutoff and flags those
// scoring well below their publisher's rolling window. Publishers with thin
// history never flag.
func DetectAnomalies(ctx context.Context, st store.Store, since time.Time) ([]trends.Anomaly, error) {
	recent, err := st.ListArticles(ctx, store.ListOpts{Since: since, IncludeHidden: true, Limit: 1000})
	if err != nil {
		return nil, err
	}

	windows := make(map[string]trends.Window)
	var out []trends.Anomaly
	for _, a := range recent {
		if a.PublisherDomain == "" {
			continue
		}
		w, ok := windows[a.PublisherDomain]
		if !ok {
			history, err := st.PublisherHistory(ctx, a.PublisherDomain)
			if err != nil {
				return nil, err
			}
			w = trends.Compute(history)
			windows[a.PublisherDomain] = w
		}
		if w.IsAnomaly(a.CompositeScore) {
			out = append(out, trends.Anomaly{
				Domain:    a.PublisherDomain,
				Title:     a.Title,
				Link:      a.Link,
				Score:     a.CompositeScore,
				Average:   w.Average,
				Published: a.Published,
			})
		}
	}
	return out, nil
}
