package codeforces

import (
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Verdicts
// --------------------------------------------------------------------------

// Verdict is the normalized outcome of one submission.
type Verdict string

const (
	VerdictAccepted    Verdict = "ACCEPTED"
	VerdictWrongAnswer Verdict = "WRONG_ANSWER"
	VerdictCompile     Verdict = "COMPILE_ERROR"
	VerdictTimeLimit   Verdict = "TIME_LIMIT"
	VerdictMemoryLimit Verdict = "MEMORY_LIMIT"
	VerdictRuntime     Verdict = "RUNTIME_ERROR"
	VerdictOther       Verdict = "OTHER"
)

// Verdicts lists every normalized verdict in display order.
var Verdicts = []Verdict{
	VerdictAccepted, VerdictWrongAnswer, VerdictCompile,
	VerdictTimeLimit, VerdictMemoryLimit, VerdictRuntime, VerdictOther,
}

// ParseVerdict maps a Codeforces wire verdict onto the normalized
// enumeration. Anything unrecognized folds into VerdictOther.
func ParseVerdict(s string) Verdict {
	switch s {
	case "OK":
		return VerdictAccepted
	case "WRONG_ANSWER":
		return VerdictWrongAnswer
	case "COMPILATION_ERROR":
		return VerdictCompile
	case "TIME_LIMIT_EXCEEDED":
		return VerdictTimeLimit
	case "MEMORY_LIMIT_EXCEEDED":
		return VerdictMemoryLimit
	case "RUNTIME_ERROR":
		return VerdictRuntime
	default:
		return VerdictOther
	}
}

// --------------------------------------------------------------------------
// History records
// --------------------------------------------------------------------------

// ContestResult is one rated contest from a user's rating history.
// The rating delta is always derived as NewRating-OldRating, never stored.
type ContestResult struct {
	ContestID int       `json:"contestId"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Rank      int       `json:"rank"`
	OldRating int       `json:"oldRating"`
	NewRating int       `json:"newRating"`
}

// Delta returns the rating change of the contest.
func (c ContestResult) Delta() int {
	return c.NewRating - c.OldRating
}

// Submission is one submission from a user's submission history.
// A problem is identified by (ContestID, ProblemIndex); ProblemRating is 0
// when Codeforces has not assigned the problem a difficulty rating.
type Submission struct {
	ContestID     int       `json:"contestId"`
	ProblemIndex  string    `json:"problemIndex"`
	ProblemName   string    `json:"problemName,omitempty"`
	ProblemRating int       `json:"problemRating,omitempty"`
	Verdict       Verdict   `json:"verdict"`
	Timestamp     time.Time `json:"timestamp"`
}

// Rated reports whether the submission's problem carries a difficulty rating.
func (s Submission) Rated() bool {
	return s.ProblemRating > 0
}

// ProblemKey returns the composite identity used for distinct-solved counts.
func (s Submission) ProblemKey() string {
	return strconv.Itoa(s.ContestID) + "-" + s.ProblemIndex
}
