package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Filter   FilterConfig   `yaml:"filter"`
	Feeds    []FeedConfig   `yaml:"feeds"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DatasetConfig points at the publisher reputation dataset.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig configures the background refresh loop.
type ScheduleConfig struct {
	RefreshInterval string `yaml:"refresh_interval"`
	RetentionDays   int    `yaml:"retention_days"`
}

// ParseRefreshInterval returns the refresh interval as time.Duration.
func (s ScheduleConfig) ParseRefreshInterval() time.Duration {
	d, err := time.ParseDuration(s.RefreshInterval)
	if err != nil {
		return 180 * time.Minute
	}
	return d
}

// Retention returns how long articles are kept before the purge.
func (s ScheduleConfig) Retention() time.Duration {
	days := s.RetentionDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// FetchConfig configures feed fetching.
type FetchConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// PerFeedKeep is how many top-scoring entries of each fetch survive.
	PerFeedKeep int `yaml:"per_feed_keep"`
	// Concurrency bounds how many feeds refresh at once.
	Concurrency int `yaml:"concurrency"`
}

// FilterConfig configures default article listing behavior.
type FilterConfig struct {
	MinScore            int     `yaml:"min_score"`
	RecencyHours        int     `yaml:"recency_hours"`
	MaxPerSource        int     `yaml:"max_per_source"`
	Clustering          bool    `yaml:"clustering"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// Recency returns the article recency window.
func (f FilterConfig) Recency() time.Duration {
	hours := f.RecencyHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// FeedConfig is a feed subscription seeded into the database on startup.
type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Bias     string `yaml:"bias"`
	Factual  string `yaml:"factual"`
}

// AlertsConfig configures anomaly alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults, including a starter set
// of wire-service and public-broadcaster feeds.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./wirefeedr.db"},
		Dataset:  DatasetConfig{Path: "./mbfc.json"},
		Schedule: ScheduleConfig{
			RefreshInterval: "180m",
			RetentionDays:   7,
		},
		Fetch: FetchConfig{
			RequestsPerSecond: 2,
			PerFeedKeep:       10,
			Concurrency:       4,
		},
		Filter: FilterConfig{
			MinScore:            70,
			RecencyHours:        24,
			MaxPerSource:        10,
			Clustering:          true,
			SimilarityThreshold: 0.3,
		},
		Feeds: []FeedConfig{
			{Name: "Associated Press", URL: "https://news.google.com/rss/search?q=allinurl:apnews.com&hl=en-US&gl=US&ceid=US:en", Category: "Wire", Bias: "Least Biased", Factual: "Very High"},
			{Name: "Reuters", URL: "https://news.google.com/rss/search?q=allinurl:reuters.com&hl=en-US&gl=US&ceid=US:en", Category: "Wire", Bias: "Least Biased", Factual: "Very High"},
			{Name: "NPR", URL: "https://feeds.npr.org/1001/rss.xml", Category: "Public", Bias: "Left-Center", Factual: "High"},
			{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/world/rss.xml", Category: "Public", Bias: "Left-Center", Factual: "High"},
			{Name: "The Guardian", URL: "https://www.theguardian.com/world/rss", Category: "Newspaper", Bias: "Left-Center", Factual: "Mostly Factual"},
			{Name: "PBS NewsHour", URL: "https://www.pbs.org/newshour/feeds/rss/headlines", Category: "Public", Bias: "Left-Center", Factual: "High"},
			{Name: "Wall Street Journal", URL: "https://feeds.content.dowjones.io/public/rss/RSSWorldNews", Category: "Newspaper", Bias: "Right-Center", Factual: "Mostly Factual"},
			{Name: "The Economist", URL: "https://www.economist.com/international/rss.xml", Category: "Magazine", Bias: "Least Biased", Factual: "High"},
		},
		Alerts: AlertsConfig{},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WIREFEEDR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("WIREFEEDR_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}
	if v := os.Getenv("WIREFEEDR_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
