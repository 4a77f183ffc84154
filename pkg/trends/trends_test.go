package trends

import (
	"testing"
	"time"
)

func records(key string, scores ...int) []Record {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]Record, len(scores))
	for i, s := range scores {
		out[i] = Record{Key: key, Score: s, Published: base.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func TestComputeWindow(t *testing.T) {
	w := Compute(records("apnews.com", 80, 82, 84, 86, 88, 90))
	if w.Count != 6 {
		t.Fatalf("Count = %d, want 6", w.Count)
	}
	if w.Average != 85 {
		t.Errorf("Average = %v, want 85", w.Average)
	}
	// Newest first: scores were published oldest to newest.
	want := []int{90, 88, 86, 84, 82}
	if len(w.Recent) != len(want) {
		t.Fatalf("Recent = %v, want %v", w.Recent, want)
	}
	for i := range want {
		if w.Recent[i] != want[i] {
			t.Fatalf("Recent = %v, want %v", w.Recent, want)
		}
	}
	if !w.Last.After(w.First) {
		t.Errorf("Last %v not after First %v", w.Last, w.First)
	}
	if Compute(nil).Count != 0 {
		t.Error("empty input should give empty window")
	}
}

func TestIsAnomaly(t *testing.T) {
	// Ten samples averaging 80 with low variance: floor of 10 applies.
	steady := Compute(records("x", 80, 80, 80, 80, 80, 80, 80, 80, 80, 80))
	if steady.IsAnomaly(75) {
		t.Error("75 vs steady avg 80: floor should prevent flag")
	}
	if steady.IsAnomaly(70) {
		t.Error("70 is not strictly below 80-10")
	}
	if !steady.IsAnomaly(69) {
		t.Error("69 vs steady avg 80 should flag")
	}

	// Fewer than MinSamples never flags, no matter how low the score.
	thin := Compute(records("x", 90, 90, 90))
	if thin.IsAnomaly(0) {
		t.Error("window below MinSamples must not flag")
	}

	// High variance widens the margin beyond the floor.
	noisy := Compute(records("x", 40, 100, 40, 100, 40, 100, 40, 100, 40, 100))
	if noisy.StdDev != 30 {
		t.Fatalf("StdDev = %v, want 30", noisy.StdDev)
	}
	if noisy.IsAnomaly(45) { // avg 70, margin 30
		t.Error("45 vs noisy window should not flag")
	}
	if !noisy.IsAnomaly(39) {
		t.Error("39 vs noisy window should flag")
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   Direction
	}{
		{"thin history", []int{80, 90}, DirectionUnknown},
		{"flat", []int{80, 80, 80, 80, 80, 80, 80, 80, 80, 80}, DirectionStable},
		{"rising", []int{50, 50, 50, 50, 50, 90, 90, 90, 90, 90}, DirectionImproving},
		{"falling", []int{90, 90, 90, 90, 90, 50, 50, 50, 50, 50}, DirectionDeclining},
	}
	for _, tt := range tests {
		w := Compute(records("x", tt.scores...))
		if got := w.Direction(); got != tt.want {
			t.Errorf("%s: Direction = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	rows := append(records("apnews.com", 80, 82, 84), records("example.com", 50)...)
	rows = append(rows, Record{Key: "", Score: 10, Published: time.Now()})

	got := Aggregate(rows)
	if len(got) != 2 {
		t.Fatalf("got %d trends, want 2 (empty key dropped)", len(got))
	}
	if got[0].Key != "apnews.com" || got[0].Window.Count != 3 {
		t.Errorf("first trend = %+v, want apnews.com with 3 samples", got[0])
	}
	if got[0].Direction != DirectionUnknown {
		t.Errorf("3-sample trend direction = %q, want unknown", got[0].Direction)
	}
}

func TestCleanAuthor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"By Jane Doe", "Jane Doe"},
		{"by jane doe", "jane doe"},
		{"Jane Doe, Senior Correspondent", "Jane Doe"},
		{"Jane Doe and John Smith", "Jane Doe"},
		{"Jane Doe with John Smith", "Jane Doe"},
		{"Jane Doe & John Smith", "Jane Doe"},
		{"Jane Doe (Washington)", "Jane Doe"},
		{"Associated Press", ""},
		{"By Reuters", ""},
		{"Staff", ""},
		{"The Editorial Board", ""},
		{"J", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := CleanAuthor(tt.in); got != tt.want {
			t.Errorf("CleanAuthor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
