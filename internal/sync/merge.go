package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// BuildSnapshot assembles a fresh snapshot from fetched history, stamped
// with the fetch time.
func BuildSnapshot(history []codeforces.ContestResult, subs []codeforces.Submission, now time.Time) *student.Snapshot {
	return &student.Snapshot{
		ContestHistory: history,
		Submissions:    subs,
		FetchedAt:      now.UTC(),
	}
}

// Merge replaces the student's persisted snapshot wholesale and advances
// the sync stamp. All-or-nothing: the store writes snapshot and
// last_synced_at in one statement, so a persistence failure leaves both
// untouched and the student is retried wholesale next cycle. The in-memory
// record is only updated after the write is confirmed.
func Merge(ctx context.Context, roster Roster, st *student.Student, snap *student.Snapshot) error {
	if err := roster.SaveSnapshot(ctx, st.ID, snap); err != nil {
		return fmt.Errorf("merge snapshot for %q: %w", st.Handle, err)
	}
	st.Snapshot = snap
	synced := snap.FetchedAt
	st.LastSyncedAt = &synced
	return nil
}
