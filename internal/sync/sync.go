// Package sync implements the periodic Codeforces synchronization cycle:
// fetch each eligible student's contest and submission history, replace the
// stored snapshot, evaluate recent activity, and send at most one inactivity
// reminder per student per cycle.
//
// One student's failure at any step is isolated — recorded in the cycle
// report and the cycle moves on. A rate-limit response from the platform
// abandons the remainder of the burst; those students are picked up again
// on the next cycle.
package sync

import (
	"context"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// Fetcher is the read-only view of the Codeforces API the cycle needs.
// Implemented by *codeforces.Client.
type Fetcher interface {
	UserRating(ctx context.Context, handle string) ([]codeforces.ContestResult, error)
	UserStatus(ctx context.Context, handle string) ([]codeforces.Submission, error)
}

// Roster is the slice of the student store the cycle mutates. Saves are
// atomic per record; no cross-student coordination is needed.
type Roster interface {
	FindWithHandle(ctx context.Context) ([]*student.Student, error)
	SaveSnapshot(ctx context.Context, id int64, snap *student.Snapshot) error
	IncrementReminderCount(ctx context.Context, id int64) (int, error)
}

// Mailer is the outbound notification channel. Send has a binary outcome;
// Enabled lets an unconfigured channel short-circuit the gate.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	Enabled() bool
}

// Options tunes a cycle engine.
type Options struct {
	Workers          int           // bounded parallelism across students
	InactivityWindow time.Duration // lookback for the activity check
}

// defaults applied when an option is unset.
const (
	defaultWorkers          = 2
	defaultInactivityWindow = 7 * 24 * time.Hour
)

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = defaultWorkers
	}
	if o.InactivityWindow <= 0 {
		o.InactivityWindow = defaultInactivityWindow
	}
	return o
}
