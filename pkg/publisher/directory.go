// Package publisher resolves article URLs to publisher reputation records
// loaded from a static MBFC-style dataset keyed by domain.
package publisher

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// Source is one publisher entry in the reference dataset.
type Source struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain"`
	Bias         string   `json:"bias"`
	Reporting    string   `json:"reporting"`
	Credibility  string   `json:"credibility"`
	Questionable []string `json:"questionable"`
	URL          string   `json:"url"`
}

// datasetFile mirrors the on-disk JSON layout.
type datasetFile struct {
	Meta    map[string]any     `json:"_meta"`
	Aliases map[string]string  `json:"aliases"`
	Sources map[string]*Source `json:"sources"`
}

// snapshot is an immutable view of the loaded dataset. Reload swaps the
// whole snapshot so concurrent readers never see a partial load.
type snapshot struct {
	sources map[string]*Source
	aliases map[string]string
}

var emptySnapshot = &snapshot{
	sources: map[string]*Source{},
	aliases: map[string]string{},
}

// Directory answers publisher lookups against the loaded dataset.
// The zero value is usable and answers every lookup with nil.
type Directory struct {
	snap atomic.Pointer[snapshot]
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	d := &Directory{}
	d.snap.Store(emptySnapshot)
	return d
}

// Load reads a dataset file and swaps it in atomically. A missing file is
// not an error: the directory stays empty and every lookup returns nil.
func (d *Directory) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		d.snap.Store(emptySnapshot)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read publisher dataset %s: %w", path, err)
	}

	var file datasetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse publisher dataset %s: %w", path, err)
	}

	snap := &snapshot{
		sources: make(map[string]*Source, len(file.Sources)),
		aliases: make(map[string]string, len(file.Aliases)),
	}
	for domain, src := range file.Sources {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" || src == nil {
			continue
		}
		snap.sources[domain] = src
	}
	for from, to := range file.Aliases {
		snap.aliases[strings.ToLower(from)] = strings.ToLower(to)
	}

	d.snap.Store(snap)
	return len(snap.sources), nil
}

// LoadMap installs an in-memory dataset. Tests use this instead of a file.
func (d *Directory) LoadMap(sources map[string]*Source, aliases map[string]string) {
	snap := &snapshot{
		sources: make(map[string]*Source, len(sources)),
		aliases: make(map[string]string, len(aliases)),
	}
	for domain, src := range sources {
		snap.sources[strings.ToLower(domain)] = src
	}
	for from, to := range aliases {
		snap.aliases[strings.ToLower(from)] = strings.ToLower(to)
	}
	d.snap.Store(snap)
}

// Len returns the number of loaded sources.
func (d *Directory) Len() int {
	return len(d.current().sources)
}

func (d *Directory) current() *snapshot {
	if d == nil {
		return emptySnapshot
	}
	if snap := d.snap.Load(); snap != nil {
		return snap
	}
	return emptySnapshot
}

// Lookup finds the publisher record for an article URL. Resolution order:
// exact domain match, alias, then progressively stripping the leftmost
// hostname label while more than two remain. Returns nil when the URL is
// unparseable or no record matches.
func (d *Directory) Lookup(rawURL string) *Source {
	snap := d.current()
	if len(snap.sources) == 0 {
		return nil
	}

	domain := d.Normalize(rawURL)
	if domain == "" {
		return nil
	}

	if src := snap.match(domain); src != nil {
		return src
	}

	parts := strings.Split(domain, ".")
	for len(parts) > 2 {
		parts = parts[1:]
		if src := snap.match(strings.Join(parts, ".")); src != nil {
			return src
		}
	}
	return nil
}

func (s *snapshot) match(domain string) *Source {
	if src, ok := s.sources[domain]; ok {
		return src
	}
	if aliased, ok := s.aliases[domain]; ok {
		if src, ok := s.sources[aliased]; ok {
			return src
		}
	}
	return nil
}

// reportingBase maps a dataset reporting level to a base publisher score.
var reportingBase = map[string]int{
	"very-high":      95,
	"high":           80,
	"mostly-factual": 65,
	"mixed":          45,
	"low":            25,
	"very-low":       10,
}

// credibilityModifier adjusts the base score by the dataset credibility level.
var credibilityModifier = map[string]int{
	"high-credibility":   5,
	"medium-credibility": 0,
	"low-credibility":    -10,
}

// Score derives a 0-100 reputation score from a publisher record.
// Returns ok=false when the record is nil or carries no reporting level.
func Score(src *Source) (int, bool) {
	if src == nil {
		return 0, false
	}
	base, ok := reportingBase[strings.ToLower(strings.TrimSpace(src.Reporting))]
	if !ok {
		return 0, false
	}

	score := base + credibilityModifier[strings.ToLower(strings.TrimSpace(src.Credibility))]

	penalty := len(src.Questionable) * 5
	if penalty > 20 {
		penalty = 20
	}
	score -= penalty

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// biasDisplay maps dataset bias strings to display values.
var biasDisplay = map[string]string{
	"left":                     "Left",
	"left-center":              "Left-Center",
	"center":                   "Center",
	"right-center":             "Right-Center",
	"right":                    "Right",
	"pro-science":              "Center",
	"conspiracy-pseudoscience": "Right",
	"satire":                   "Center",
	"fake-news":                "Center",
}

// reportingDisplay maps dataset reporting strings to display values.
var reportingDisplay = map[string]string{
	"very-high":      "Very High",
	"high":           "High",
	"mostly-factual": "Mostly Factual",
	"mixed":          "Mixed",
	"low":            "Mixed",
	"very-low":       "Mixed",
}

// DisplayBias converts a dataset bias label to its display value.
func DisplayBias(bias string) string {
	return biasDisplay[strings.ToLower(strings.TrimSpace(bias))]
}

// DisplayReporting converts a dataset reporting label to its display value.
func DisplayReporting(reporting string) string {
	return reportingDisplay[strings.ToLower(strings.TrimSpace(reporting))]
}
