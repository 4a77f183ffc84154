package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Filter.MinScore != 70 {
		t.Errorf("default min score = %d, want 70", cfg.Filter.MinScore)
	}
	if cfg.Filter.Recency() != 24*time.Hour {
		t.Errorf("default recency = %v, want 24h", cfg.Filter.Recency())
	}
	if cfg.Schedule.ParseRefreshInterval() != 180*time.Minute {
		t.Errorf("default refresh = %v, want 180m", cfg.Schedule.ParseRefreshInterval())
	}
	if cfg.Schedule.Retention() != 7*24*time.Hour {
		t.Errorf("default retention = %v, want 168h", cfg.Schedule.Retention())
	}
	if len(cfg.Feeds) == 0 {
		t.Error("default config should seed feeds")
	}
	for _, f := range cfg.Feeds {
		if f.Name == "" || f.URL == "" {
			t.Errorf("seed feed missing name or url: %+v", f)
		}
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
database:
  path: /tmp/custom.db
schedule:
  refresh_interval: 30m
  retention_days: 3
filter:
  min_score: 55
server:
  port: 9999
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("WIREFEEDR_DB_PATH", "/tmp/env.db")
	t.Setenv("WIREFEEDR_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("env override lost: db path = %s", cfg.Database.Path)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("env override lost: port = %d", cfg.Server.Port)
	}
	if cfg.Filter.MinScore != 55 {
		t.Errorf("file value lost: min score = %d", cfg.Filter.MinScore)
	}
	if cfg.Schedule.ParseRefreshInterval() != 30*time.Minute {
		t.Errorf("file value lost: refresh = %v", cfg.Schedule.ParseRefreshInterval())
	}
	// Values absent from the file keep their defaults.
	if cfg.Filter.MaxPerSource != 10 {
		t.Errorf("default lost on partial file: max per source = %d", cfg.Filter.MaxPerSource)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("empty path should load defaults: %v", err)
	}
	if cfg.Server.Port == 0 {
		t.Error("defaults not applied for empty path")
	}
}
