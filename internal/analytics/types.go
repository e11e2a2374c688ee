package analytics

import (
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
)

// Options selects the lookback windows and heat-map timezone for a profile
// computation. Zero values fall back to the UI defaults.
type Options struct {
	ContestWindowDays int            // 30, 90, 365 presets in the UI
	ProblemWindowDays int            // 7, 30, 90 presets in the UI
	Location          *time.Location // heat-map calendar timezone; nil = UTC
}

const (
	defaultContestWindowDays = 90
	defaultProblemWindowDays = 30
)

func (o Options) withDefaults() Options {
	if o.ContestWindowDays <= 0 {
		o.ContestWindowDays = defaultContestWindowDays
	}
	if o.ProblemWindowDays <= 0 {
		o.ProblemWindowDays = defaultProblemWindowDays
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// ContestRow is one contest in the windowed history, chart-ready. Delta is
// always derived from the two ratings; UnsolvedEstimate is the
// contiguous-letter heuristic, an estimate rather than an exact count.
type ContestRow struct {
	ContestID        int       `json:"contestId"`
	Name             string    `json:"name"`
	Timestamp        time.Time `json:"timestamp"`
	Rank             int       `json:"rank"`
	OldRating        int       `json:"oldRating"`
	NewRating        int       `json:"newRating"`
	Delta            int       `json:"delta"`
	UnsolvedEstimate int       `json:"unsolvedEstimate"`
}

// SolvedProblem identifies the hardest problem solved in the window.
type SolvedProblem struct {
	ContestID    int       `json:"contestId"`
	ProblemIndex string    `json:"problemIndex"`
	ProblemName  string    `json:"problemName,omitempty"`
	Rating       int       `json:"rating"`
	SolvedAt     time.Time `json:"solvedAt"`
}

// Profile is the full set of derived aggregates for one student snapshot.
// Field names are a de facto contract with the profile UI — do not rename.
// Pointer fields are omitted when the underlying value is not available
// (no rated solves, empty history), never reported as zero.
type Profile struct {
	ContestWindowDays int `json:"contestWindowDays"`
	ProblemWindowDays int `json:"problemWindowDays"`

	ContestHistory []ContestRow `json:"contestHistory"`

	TotalSolved         int            `json:"totalSolved"`
	HardestProblem      *SolvedProblem `json:"hardestProblem,omitempty"`
	AverageRating       *float64       `json:"averageRating,omitempty"`
	AverageSolvesPerDay *float64       `json:"averageSolvesPerDay,omitempty"`

	RatingBuckets     map[int]int    `json:"ratingBuckets"`
	IndexDistribution map[string]int `json:"indexDistribution"`

	VerdictDistribution map[codeforces.Verdict]int `json:"verdictDistribution"`
	HeatMapAll          map[string]int             `json:"heatMapAll"`
	HeatMapAccepted     map[string]int             `json:"heatMapAccepted"`

	LastActivity *time.Time `json:"lastActivity,omitempty"`
	Active       bool       `json:"active"`
}
