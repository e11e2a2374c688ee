// Package analytics turns a stored student snapshot into the time-windowed,
// presentation-ready aggregates the profile UI renders: rating series,
// solve counts, difficulty distribution, verdict donut, activity heat map.
//
// Everything here is pure and deterministic given (snapshot, now, options).
// Edge cases like "no data yet" or a zero-length window surface as absent
// values, never as errors — the presentation layer renders them as "N/A".
package analytics

import (
	"sort"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// Compute derives the full profile from a snapshot. A nil snapshot yields
// an empty profile with every aggregate at its "no data" value.
func Compute(snap *student.Snapshot, now time.Time, opts Options) *Profile {
	opts = opts.withDefaults()

	var history []codeforces.ContestResult
	var subs []codeforces.Submission
	if snap != nil {
		history = snap.ContestHistory
		subs = snap.Submissions
	}

	accepted := WindowedAccepted(subs, now, opts.ProblemWindowDays)
	totalSolved := DistinctSolved(accepted)

	p := &Profile{
		ContestWindowDays: opts.ContestWindowDays,
		ProblemWindowDays: opts.ProblemWindowDays,

		ContestHistory: WindowedContests(history, subs, now, opts.ContestWindowDays),

		TotalSolved:    totalSolved,
		HardestProblem: HardestSolved(accepted),

		RatingBuckets:     RatingBuckets(accepted),
		IndexDistribution: IndexDistribution(accepted),

		VerdictDistribution: VerdictDistribution(subs),
		HeatMapAll:          HeatMap(subs, opts.Location, false),
		HeatMapAccepted:     HeatMap(subs, opts.Location, true),

		LastActivity: LastActivity(subs),
		Active:       IsActive(subs, now, activityWindow),
	}

	if avg, ok := AverageRating(accepted); ok {
		p.AverageRating = &avg
	}
	if perDay, ok := AverageSolvesPerDay(totalSolved, opts.ProblemWindowDays); ok {
		p.AverageSolvesPerDay = &perDay
	}
	return p
}

// --------------------------------------------------------------------------
// Windowing
// --------------------------------------------------------------------------

func inWindow(ts, now time.Time, days int) bool {
	return now.Sub(ts) <= time.Duration(days)*24*time.Hour
}

// WindowedContests returns the contests whose rating update falls within
// days of now, sorted chronologically for charting. The upstream order is
// not trusted.
func WindowedContests(history []codeforces.ContestResult, subs []codeforces.Submission, now time.Time, days int) []ContestRow {
	rows := make([]ContestRow, 0)
	for _, c := range history {
		if !inWindow(c.Timestamp, now, days) {
			continue
		}
		rows = append(rows, ContestRow{
			ContestID:        c.ContestID,
			Name:             c.Name,
			Timestamp:        c.Timestamp,
			Rank:             c.Rank,
			OldRating:        c.OldRating,
			NewRating:        c.NewRating,
			Delta:            c.Delta(),
			UnsolvedEstimate: UnsolvedEstimate(c.ContestID, subs),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
	return rows
}

// WindowedAccepted returns the ACCEPTED submissions within days of now,
// preserving input order.
func WindowedAccepted(subs []codeforces.Submission, now time.Time, days int) []codeforces.Submission {
	out := make([]codeforces.Submission, 0)
	for _, s := range subs {
		if s.Verdict == codeforces.VerdictAccepted && inWindow(s.Timestamp, now, days) {
			out = append(out, s)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Solve statistics
// --------------------------------------------------------------------------

// DistinctSolved counts distinct (contestId, problemIndex) keys across the
// given accepted submissions. Re-solves of the same problem count once.
func DistinctSolved(accepted []codeforces.Submission) int {
	seen := make(map[string]struct{}, len(accepted))
	for _, s := range accepted {
		seen[s.ProblemKey()] = struct{}{}
	}
	return len(seen)
}

// HardestSolved returns the accepted submission with the highest problem
// rating. Unrated submissions are excluded from the comparison, not treated
// as zero. Ties go to the first occurrence in input order. Returns nil when
// no rated solve exists.
func HardestSolved(accepted []codeforces.Submission) *SolvedProblem {
	var best *codeforces.Submission
	for i := range accepted {
		s := &accepted[i]
		if !s.Rated() {
			continue
		}
		if best == nil || s.ProblemRating > best.ProblemRating {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	return &SolvedProblem{
		ContestID:    best.ContestID,
		ProblemIndex: best.ProblemIndex,
		ProblemName:  best.ProblemName,
		Rating:       best.ProblemRating,
		SolvedAt:     best.Timestamp,
	}
}

// AverageRating returns the mean problem rating over the rated accepted
// submissions. ok=false when none carry a rating — "not available", never
// zero.
func AverageRating(accepted []codeforces.Submission) (float64, bool) {
	sum, n := 0, 0
	for _, s := range accepted {
		if s.Rated() {
			sum += s.ProblemRating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// AverageSolvesPerDay divides the distinct solve count by the window
// length. ok=false for a zero or negative window — rejected rather than
// silently producing infinity.
func AverageSolvesPerDay(distinctSolved, windowDays int) (float64, bool) {
	if windowDays <= 0 {
		return 0, false
	}
	return float64(distinctSolved) / float64(windowDays), true
}

// RatingBuckets groups rated accepted submissions by floor(rating/100)*100.
func RatingBuckets(accepted []codeforces.Submission) map[int]int {
	buckets := make(map[int]int)
	for _, s := range accepted {
		if s.Rated() {
			buckets[s.ProblemRating/100*100]++
		}
	}
	return buckets
}

// IndexDistribution counts accepted submissions by problem index letter.
func IndexDistribution(accepted []codeforces.Submission) map[string]int {
	dist := make(map[string]int)
	for _, s := range accepted {
		dist[s.ProblemIndex]++
	}
	return dist
}

// --------------------------------------------------------------------------
// Whole-history aggregates
// --------------------------------------------------------------------------

// VerdictDistribution counts all submissions by normalized verdict. Every
// enum bucket is present, zero or not, so the donut chart's legend is
// stable; verdicts outside the enumeration were already folded into OTHER
// at decode time.
func VerdictDistribution(subs []codeforces.Submission) map[codeforces.Verdict]int {
	dist := make(map[codeforces.Verdict]int, len(codeforces.Verdicts))
	for _, v := range codeforces.Verdicts {
		dist[v] = 0
	}
	for _, s := range subs {
		if _, ok := dist[s.Verdict]; !ok {
			s.Verdict = codeforces.VerdictOther
		}
		dist[s.Verdict]++
	}
	return dist
}

// HeatMap counts submissions per calendar day (in loc) over the full,
// unwindowed history. acceptedOnly restricts to ACCEPTED submissions; that
// view is always a per-day subset of the full one. Keys are yyyy-mm-dd.
func HeatMap(subs []codeforces.Submission, loc *time.Location, acceptedOnly bool) map[string]int {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[string]int)
	for _, s := range subs {
		if acceptedOnly && s.Verdict != codeforces.VerdictAccepted {
			continue
		}
		days[s.Timestamp.In(loc).Format("2006-01-02")]++
	}
	return days
}

// LastActivity returns the most recent submission timestamp, nil for an
// empty history.
func LastActivity(subs []codeforces.Submission) *time.Time {
	var last *time.Time
	for i := range subs {
		ts := subs[i].Timestamp
		if last == nil || ts.After(*last) {
			last = &ts
		}
	}
	return last
}

// UnsolvedEstimate is a heuristic lower bound on unsolved problems for one
// contest: it assumes a contiguous letter range starting at "A", capped at
// the highest letter the student actually solved, and subtracts the number
// solved. With no authoritative problem-set size available, this is an
// estimate, not an exact count. No accepted submissions means zero.
func UnsolvedEstimate(contestID int, subs []codeforces.Submission) int {
	solved := make(map[string]struct{})
	maxLetter := byte(0)
	for _, s := range subs {
		if s.ContestID != contestID || s.Verdict != codeforces.VerdictAccepted || s.ProblemIndex == "" {
			continue
		}
		solved[s.ProblemIndex] = struct{}{}
		if letter := s.ProblemIndex[0]; letter > maxLetter {
			maxLetter = letter
		}
	}
	if len(solved) == 0 || maxLetter < 'A' {
		return 0
	}
	total := int(maxLetter-'A') + 1
	unsolved := total - len(solved)
	if unsolved < 0 {
		return 0
	}
	return unsolved
}
