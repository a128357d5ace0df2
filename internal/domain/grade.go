package domain

// Grade is the letter classification derived from a weighted score over
// Stats. It is computed, never stored.
type Grade struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

// Grade labels, best to worst.
const (
	LabelS     = "S"
	LabelAPlus = "+A"
	LabelA     = "A"
	LabelBPlus = "+B"
	LabelB     = "B"
	LabelCPlus = "+C"
	LabelC     = "C"
	LabelD     = "D"
)

// FieldWeight describes how one Stats field contributes to the score:
// count * Points, capped at Cap. A Cap <= 0 means the contribution is
// uncapped.
type FieldWeight struct {
	Points float64
	Cap    float64
}

// Weights is the scoring configuration, one weight per Stats field.
type Weights struct {
	Repos        FieldWeight
	Followers    FieldWeight
	Stars        FieldWeight
	PullRequests FieldWeight
	Commits      FieldWeight
	Issues       FieldWeight
}

// DefaultWeights returns the published scoring weights:
// repos 2pt (cap 50), followers 1pt (cap 50), stars 3pt (cap 75),
// PRs 5pt (cap 75), commits 0.5pt (cap 50), issues 2pt (cap 25).
// The maximum attainable score is 325.
func DefaultWeights() Weights {
	return Weights{
		Repos:        FieldWeight{Points: 2, Cap: 50},
		Followers:    FieldWeight{Points: 1, Cap: 50},
		Stars:        FieldWeight{Points: 3, Cap: 75},
		PullRequests: FieldWeight{Points: 5, Cap: 75},
		Commits:      FieldWeight{Points: 0.5, Cap: 50},
		Issues:       FieldWeight{Points: 2, Cap: 25},
	}
}

// thresholds maps the lowest score of each band to its label.
// Bands are closed at their lower bound: exactly 300 is S, exactly 25 is C.
var thresholds = []struct {
	min   int
	label string
}{
	{300, LabelS},
	{200, LabelAPlus},
	{150, LabelA},
	{100, LabelBPlus},
	{75, LabelB},
	{50, LabelCPlus},
	{25, LabelC},
	{0, LabelD},
}

// Score computes the weighted score for the given stats. Contributions are
// accumulated in float64 (commit points are fractional) and the total is
// truncated to an integer. A negative intermediate cannot occur with
// non-negative counts and weights, but is clamped to zero anyway so the
// function stays total under malformed input.
func Score(s Stats, w Weights) int {
	total := contribution(s.Repos, w.Repos) +
		contribution(s.Followers, w.Followers) +
		contribution(s.Stars, w.Stars) +
		contribution(s.PullRequests, w.PullRequests) +
		contribution(s.Commits, w.Commits) +
		contribution(s.Issues, w.Issues)
	if total < 0 {
		return 0
	}
	return int(total)
}

func contribution(count int, w FieldWeight) float64 {
	v := float64(count) * w.Points
	if w.Cap > 0 && v > w.Cap {
		return w.Cap
	}
	return v
}

// GradeFor maps stats to a grade. It is a pure, total function: every
// non-negative score falls into exactly one band.
func GradeFor(s Stats, w Weights) Grade {
	score := Score(s, w)
	return Grade{Score: score, Label: labelFor(score)}
}

func labelFor(score int) string {
	if score < 0 {
		score = 0
	}
	for _, t := range thresholds {
		if score >= t.min {
			return t.label
		}
	}
	return LabelD
}
