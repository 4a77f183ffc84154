// Package trends tracks rolling credibility statistics per publisher and
// per author, and flags articles whose score falls well below the history
// they are measured against.
package trends

import (
	"math"
	"sort"
	"time"
)

// MinSamples is the minimum history size before a window is trusted for
// anomaly detection or direction calls.
const MinSamples = 10

// recentN is how many of the newest scores feed the direction heuristic
// and the Recent slice.
const recentN = 5

// anomalyFloor is the minimum drop below average, in score points, for an
// article to count as anomalous even when history variance is tiny.
const anomalyFloor = 10.0

// Record is one scored article attributed to a key (publisher domain or
// author name).
type Record struct {
	Key       string    `json:"key"`
	Score     int       `json:"score"`
	Published time.Time `json:"published"`
}

// Direction summarizes where a window is heading.
type Direction string

const (
	DirectionUnknown   Direction = "unknown"
	DirectionStable    Direction = "stable"
	DirectionImproving Direction = "improving"
	DirectionDeclining Direction = "declining"
)

// Window is the rolling statistics over one key's history.
type Window struct {
	Count   int       `json:"count"`
	Average float64   `json:"average"`
	StdDev  float64   `json:"std_dev"`
	Recent  []int     `json:"recent"` // newest first, at most recentN
	First   time.Time `json:"first"`
	Last    time.Time `json:"last"`
}

// Trend pairs a key with its window and direction.
type Trend struct {
	Key       string    `json:"key"`
	Window    Window    `json:"window"`
	Direction Direction `json:"direction"`
}

// Compute builds a window from samples. Order does not matter; samples are
// sorted newest-first internally.
func Compute(samples []Record) Window {
	if len(samples) == 0 {
		return Window{}
	}

	sorted := make([]Record, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.After(sorted[j].Published)
	})

	sum := 0
	for _, s := range sorted {
		sum += s.Score
	}
	avg := float64(sum) / float64(len(sorted))

	variance := 0.0
	for _, s := range sorted {
		d := float64(s.Score) - avg
		variance += d * d
	}
	variance /= float64(len(sorted))

	n := recentN
	if n > len(sorted) {
		n = len(sorted)
	}
	recent := make([]int, n)
	for i := 0; i < n; i++ {
		recent[i] = sorted[i].Score
	}

	return Window{
		Count:   len(sorted),
		Average: avg,
		StdDev:  math.Sqrt(variance),
		Recent:  recent,
		First:   sorted[len(sorted)-1].Published,
		Last:    sorted[0].Published,
	}
}

// Sufficient reports whether the window has enough history to be trusted.
func (w Window) Sufficient() bool { return w.Count >= MinSamples }

// IsAnomaly reports whether score sits well below this window's average:
// more than one standard deviation under it, with a floor of anomalyFloor
// points so near-constant histories do not flag trivial dips. Windows with
// too little history never flag.
func (w Window) IsAnomaly(score int) bool {
	if !w.Sufficient() {
		return false
	}
	margin := w.StdDev
	if margin < anomalyFloor {
		margin = anomalyFloor
	}
	return float64(score) < w.Average-margin
}

// Direction compares the newest scores against the whole window. Less than
// MinSamples of history gives DirectionUnknown.
func (w Window) Direction() Direction {
	if !w.Sufficient() || len(w.Recent) == 0 {
		return DirectionUnknown
	}
	sum := 0
	for _, s := range w.Recent {
		sum += s
	}
	delta := float64(sum)/float64(len(w.Recent)) - w.Average
	switch {
	case delta > 3:
		return DirectionImproving
	case delta < -3:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}

// Aggregate groups records by key and computes a trend for each, ordered
// by sample count descending, then key for a stable listing.
func Aggregate(records []Record) []Trend {
	byKey := make(map[string][]Record)
	for _, r := range records {
		if r.Key == "" {
			continue
		}
		byKey[r.Key] = append(byKey[r.Key], r)
	}

	out := make([]Trend, 0, len(byKey))
	for key, samples := range byKey {
		w := Compute(samples)
		out = append(out, Trend{Key: key, Window: w, Direction: w.Direction()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Window.Count != out[j].Window.Count {
			return out[i].Window.Count > out[j].Window.Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Anomaly is a scored article flagged against its publisher's history.
type Anomaly struct {
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Score     int       `json:"score"`
	Average   float64   `json:"average"`
	Published time.Time `json:"published"`
}
