package analytics

import (
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
)

// activityWindow is the lookback for the Active badge, matching the
// reminder policy's default.
const activityWindow = 7 * 24 * time.Hour

// IsActive reports whether at least one ACCEPTED submission falls within
// window of now. An empty history is inactive. Pure function — the sync
// pipeline and the profile computation share it, with caller-chosen
// windows.
func IsActive(subs []codeforces.Submission, now time.Time, window time.Duration) bool {
	for _, sub := range subs {
		if sub.Verdict != codeforces.VerdictAccepted {
			continue
		}
		if now.Sub(sub.Timestamp) <= window {
			return true
		}
	}
	return false
}
