package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func sub(contestID int, index string, verdict codeforces.Verdict, rating int, ts time.Time) codeforces.Submission {
	return codeforces.Submission{
		ContestID:     contestID,
		ProblemIndex:  index,
		ProblemRating: rating,
		Verdict:       verdict,
		Timestamp:     ts,
	}
}

func ac(contestID int, index string, rating int, ts time.Time) codeforces.Submission {
	return sub(contestID, index, codeforces.VerdictAccepted, rating, ts)
}

func daysAgo(d int) time.Time { return testNow.Add(-time.Duration(d) * 24 * time.Hour) }

func TestIsActive(t *testing.T) {
	window := 7 * 24 * time.Hour

	t.Run("accepted six days ago is active", func(t *testing.T) {
		subs := []codeforces.Submission{ac(1500, "A", 800, daysAgo(6))}
		assert.True(t, IsActive(subs, testNow, window))
	})

	t.Run("accepted eight days ago is inactive", func(t *testing.T) {
		subs := []codeforces.Submission{ac(1500, "A", 800, daysAgo(8))}
		assert.False(t, IsActive(subs, testNow, window))
	})

	t.Run("window edge is inclusive", func(t *testing.T) {
		subs := []codeforces.Submission{ac(1500, "A", 800, testNow.Add(-window))}
		assert.True(t, IsActive(subs, testNow, window))
	})

	t.Run("recent rejection does not count", func(t *testing.T) {
		subs := []codeforces.Submission{sub(1500, "A", codeforces.VerdictWrongAnswer, 800, daysAgo(1))}
		assert.False(t, IsActive(subs, testNow, window))
	})

	t.Run("empty history is inactive", func(t *testing.T) {
		assert.False(t, IsActive(nil, testNow, window))
	})
}

func TestDistinctSolved(t *testing.T) {
	// The same problem solved twice counts once; same index in a different
	// contest is a different problem.
	accepted := []codeforces.Submission{
		ac(1500, "A", 800, daysAgo(1)),
		ac(1500, "A", 800, daysAgo(2)),
		ac(1501, "A", 900, daysAgo(3)),
	}
	assert.Equal(t, 2, DistinctSolved(accepted))
	assert.Zero(t, DistinctSolved(nil))
}

func TestHardestSolved(t *testing.T) {
	t.Run("picks the highest rating, unrated excluded", func(t *testing.T) {
		accepted := []codeforces.Submission{
			ac(1500, "A", 800, daysAgo(5)),
			ac(1500, "Z", 0, daysAgo(4)), // unrated, never the hardest
			ac(1501, "D", 1900, daysAgo(3)),
			ac(1502, "B", 1200, daysAgo(2)),
		}
		hardest := HardestSolved(accepted)
		require.NotNil(t, hardest)
		assert.Equal(t, 1501, hardest.ContestID)
		assert.Equal(t, "D", hardest.ProblemIndex)
		assert.Equal(t, 1900, hardest.Rating)
	})

	t.Run("ties keep the first occurrence", func(t *testing.T) {
		accepted := []codeforces.Submission{
			ac(10, "C", 1500, daysAgo(9)),
			ac(20, "C", 1500, daysAgo(1)),
		}
		hardest := HardestSolved(accepted)
		require.NotNil(t, hardest)
		assert.Equal(t, 10, hardest.ContestID)
	})

	t.Run("nil when nothing rated is solved", func(t *testing.T) {
		assert.Nil(t, HardestSolved(nil))
		assert.Nil(t, HardestSolved([]codeforces.Submission{ac(1500, "A", 0, daysAgo(1))}))
	})
}

func TestAverageRating(t *testing.T) {
	t.Run("mean over rated solves only", func(t *testing.T) {
		accepted := []codeforces.Submission{
			ac(1, "A", 800, daysAgo(1)),
			ac(2, "B", 1200, daysAgo(2)),
			ac(3, "A", 0, daysAgo(3)), // unrated, excluded from the mean
		}
		avg, ok := AverageRating(accepted)
		require.True(t, ok)
		assert.InDelta(t, 1000.0, avg, 1e-9)
	})

	t.Run("not available when nothing is rated", func(t *testing.T) {
		_, ok := AverageRating([]codeforces.Submission{ac(1, "A", 0, daysAgo(1))})
		assert.False(t, ok, "absence of data must not masquerade as a zero average")
	})
}

func TestAverageSolvesPerDay(t *testing.T) {
	perDay, ok := AverageSolvesPerDay(15, 30)
	require.True(t, ok)
	assert.InDelta(t, 0.5, perDay, 1e-9)

	_, ok = AverageSolvesPerDay(15, 0)
	assert.False(t, ok, "zero-length window is rejected")

	_, ok = AverageSolvesPerDay(15, -7)
	assert.False(t, ok)
}

func TestRatingBuckets(t *testing.T) {
	accepted := []codeforces.Submission{
		ac(1, "A", 1050, daysAgo(1)),
		ac(2, "B", 1090, daysAgo(2)),
		ac(3, "C", 1200, daysAgo(3)),
		ac(4, "D", 0, daysAgo(4)), // unrated, no bucket
	}
	buckets := RatingBuckets(accepted)
	assert.Equal(t, map[int]int{1000: 2, 1200: 1}, buckets)
}

func TestIndexDistribution(t *testing.T) {
	accepted := []codeforces.Submission{
		ac(1, "A", 800, daysAgo(1)),
		ac(2, "A", 900, daysAgo(2)),
		ac(3, "B2", 1100, daysAgo(3)),
	}
	assert.Equal(t, map[string]int{"A": 2, "B2": 1}, IndexDistribution(accepted))
}

func TestVerdictDistribution(t *testing.T) {
	subs := []codeforces.Submission{
		ac(1, "A", 800, daysAgo(1)),
		sub(1, "B", codeforces.VerdictWrongAnswer, 900, daysAgo(1)),
		sub(1, "B", codeforces.VerdictWrongAnswer, 900, daysAgo(1)),
		sub(2, "A", codeforces.VerdictTimeLimit, 1000, daysAgo(2)),
		sub(2, "B", codeforces.Verdict("CHALLENGED"), 0, daysAgo(2)), // not in the enum
	}
	dist := VerdictDistribution(subs)

	// Every enum bucket is present so chart legends stay stable.
	for _, v := range codeforces.Verdicts {
		_, ok := dist[v]
		assert.True(t, ok, "bucket %s missing", v)
	}

	assert.Equal(t, 1, dist[codeforces.VerdictAccepted])
	assert.Equal(t, 2, dist[codeforces.VerdictWrongAnswer])
	assert.Equal(t, 1, dist[codeforces.VerdictTimeLimit])
	assert.Equal(t, 1, dist[codeforces.VerdictOther], "unknown verdicts fold into OTHER")

	total := 0
	for _, n := range dist {
		total += n
	}
	assert.Equal(t, len(subs), total, "distribution must account for every submission")
}

func TestHeatMap(t *testing.T) {
	day1 := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	subs := []codeforces.Submission{
		ac(1, "A", 800, day1),
		sub(1, "B", codeforces.VerdictWrongAnswer, 900, day1.Add(2*time.Hour)),
		ac(2, "A", 900, day1.Add(26*time.Hour)),
	}

	all := HeatMap(subs, time.UTC, false)
	accepted := HeatMap(subs, time.UTC, true)

	assert.Equal(t, map[string]int{"2026-06-10": 2, "2026-06-11": 1}, all)
	assert.Equal(t, map[string]int{"2026-06-10": 1, "2026-06-11": 1}, accepted)

	// The accepted view is a per-day subset of the full one.
	for day, n := range accepted {
		assert.LessOrEqual(t, n, all[day], "day %s", day)
	}

	t.Run("calendar day follows the requested timezone", func(t *testing.T) {
		// 23:30 UTC on the 10th is already the 11th in UTC+5.
		late := []codeforces.Submission{ac(1, "A", 800, time.Date(2026, 6, 10, 23, 30, 0, 0, time.UTC))}
		plus5 := time.FixedZone("UTC+5", 5*3600)
		assert.Equal(t, map[string]int{"2026-06-11": 1}, HeatMap(late, plus5, false))
		assert.Equal(t, map[string]int{"2026-06-10": 1}, HeatMap(late, time.UTC, false))
	})
}

func TestLastActivity(t *testing.T) {
	assert.Nil(t, LastActivity(nil), "empty history has no last activity")

	subs := []codeforces.Submission{
		ac(1, "A", 800, daysAgo(10)),
		sub(2, "B", codeforces.VerdictWrongAnswer, 900, daysAgo(2)), // any verdict counts
		ac(3, "C", 1000, daysAgo(5)),
	}
	last := LastActivity(subs)
	require.NotNil(t, last)
	assert.True(t, last.Equal(daysAgo(2)))
}

func TestUnsolvedEstimate(t *testing.T) {
	t.Run("contiguous letter heuristic", func(t *testing.T) {
		// Solved A and C in contest 1500: the range A..C implies B unsolved.
		subs := []codeforces.Submission{
			ac(1500, "A", 800, daysAgo(1)),
			ac(1500, "C", 1400, daysAgo(1)),
			sub(1500, "B", codeforces.VerdictWrongAnswer, 1100, daysAgo(1)),
			ac(9999, "F", 2400, daysAgo(1)), // other contest, ignored
		}
		assert.Equal(t, 1, UnsolvedEstimate(1500, subs))
	})

	t.Run("full sweep estimates zero", func(t *testing.T) {
		subs := []codeforces.Submission{
			ac(1500, "A", 800, daysAgo(1)),
			ac(1500, "B", 1100, daysAgo(1)),
		}
		assert.Zero(t, UnsolvedEstimate(1500, subs))
	})

	t.Run("no accepted submissions estimates zero", func(t *testing.T) {
		subs := []codeforces.Submission{
			sub(1500, "D", codeforces.VerdictWrongAnswer, 1700, daysAgo(1)),
		}
		assert.Zero(t, UnsolvedEstimate(1500, subs))
		assert.Zero(t, UnsolvedEstimate(1500, nil))
	})
}

func TestWindowedContests(t *testing.T) {
	history := []codeforces.ContestResult{
		{ContestID: 3, Name: "Recent", Timestamp: daysAgo(5), OldRating: 1400, NewRating: 1450},
		{ContestID: 1, Name: "Ancient", Timestamp: daysAgo(400), OldRating: 1200, NewRating: 1300},
		{ContestID: 2, Name: "Older", Timestamp: daysAgo(20), OldRating: 1300, NewRating: 1400},
	}

	rows := WindowedContests(history, nil, testNow, 90)
	require.Len(t, rows, 2, "contests outside the window are dropped")
	assert.Equal(t, "Older", rows[0].Name, "rows come back chronological regardless of input order")
	assert.Equal(t, "Recent", rows[1].Name)
	assert.Equal(t, 50, rows[1].Delta)
}

func TestCompute(t *testing.T) {
	t.Run("nil snapshot yields an empty profile, not a panic", func(t *testing.T) {
		p := Compute(nil, testNow, Options{})

		assert.Equal(t, defaultContestWindowDays, p.ContestWindowDays)
		assert.Equal(t, defaultProblemWindowDays, p.ProblemWindowDays)
		assert.Empty(t, p.ContestHistory)
		assert.Zero(t, p.TotalSolved)
		assert.Nil(t, p.HardestProblem)
		assert.Nil(t, p.AverageRating, "no solves means no average, not 0.0")
		assert.Nil(t, p.LastActivity)
		assert.False(t, p.Active)

		// Maps are present (and mostly empty) so JSON renders {} not null.
		assert.NotNil(t, p.RatingBuckets)
		assert.NotNil(t, p.HeatMapAll)
		assert.Len(t, p.VerdictDistribution, len(codeforces.Verdicts))
	})

	t.Run("windows apply independently", func(t *testing.T) {
		snap := &student.Snapshot{
			ContestHistory: []codeforces.ContestResult{
				{ContestID: 1, Name: "In contest window", Timestamp: daysAgo(25)},
				{ContestID: 2, Name: "Out of contest window", Timestamp: daysAgo(45)},
			},
			Submissions: []codeforces.Submission{
				ac(1, "A", 900, daysAgo(3)),   // inside the 7-day problem window
				ac(1, "B", 1300, daysAgo(20)), // outside it, still in heat map
			},
		}

		p := Compute(snap, testNow, Options{ContestWindowDays: 30, ProblemWindowDays: 7})

		require.Len(t, p.ContestHistory, 1)
		assert.Equal(t, 1, p.ContestHistory[0].ContestID)

		assert.Equal(t, 1, p.TotalSolved, "problem window is independent of the contest window")
		require.NotNil(t, p.AverageRating)
		assert.InDelta(t, 900.0, *p.AverageRating, 1e-9)

		// Whole-history aggregates ignore both windows.
		assert.Len(t, p.HeatMapAll, 2)
		assert.Equal(t, 2, p.VerdictDistribution[codeforces.VerdictAccepted])

		require.NotNil(t, p.AverageSolvesPerDay)
		assert.InDelta(t, 1.0/7.0, *p.AverageSolvesPerDay, 1e-9)

		assert.True(t, p.Active, "solve three days ago is inside the activity window")
	})
}
