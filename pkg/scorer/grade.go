package scorer

import "fmt"

// Grade is a letter bucket for a score.
type Grade struct {
	Letter string
	Label  string
}

// grades ordered by max score ascending.
var grades = []struct {
	max   int
	grade Grade
}{
	{24, Grade{"F", "Slop"}},
	{44, Grade{"D", "Noise"}},
	{64, Grade{"C", "Weak"}},
	{84, Grade{"B", "Passable"}},
	{100, Grade{"A", "Solid"}},
}

// GradeFor buckets a 0-100 score into a letter grade.
func GradeFor(score int) Grade {
	for _, g := range grades {
		if score <= g.max {
			return g.grade
		}
	}
	return Grade{"F", "Slop"}
}

// Level renders a score with its label, e.g. "85 - Solid".
func Level(score int) string {
	return fmt.Sprintf("%d - %s", score, GradeFor(score).Label)
}
