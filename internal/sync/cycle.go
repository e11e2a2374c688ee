package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/analytics"
	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// Engine runs sync cycles. One Engine is shared by the scheduler and the
// manual-trigger API endpoint; the scheduler guarantees cycles never
// overlap.
type Engine struct {
	fetcher Fetcher
	roster  Roster
	gate    *Gate
	opts    Options
	logger  *slog.Logger
	now     func() time.Time // injectable clock for tests
}

// NewEngine creates a cycle engine.
func NewEngine(fetcher Fetcher, roster Roster, gate *Gate, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher: fetcher,
		roster:  roster,
		gate:    gate,
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one full sync cycle over every student with a handle.
// Per-student work runs on a bounded worker pool; each student's record is
// its own unit of mutation, so workers never contend on shared state beyond
// the result aggregation. Run never returns an error — everything lands in
// the CycleResult.
func (e *Engine) Run(ctx context.Context) CycleResult {
	start := e.now()
	result := CycleResult{StartedAt: start.UTC()}

	students, err := e.roster.FindWithHandle(ctx)
	if err != nil {
		result.AddErrorf("find students: %v", err)
		result.Duration = e.now().Sub(start)
		return result
	}

	result.StudentsFound = len(students)
	if len(students) == 0 {
		e.logger.Info("No students with a handle to sync")
		result.Duration = e.now().Sub(start)
		return result
	}

	e.logger.Info("Sync cycle started", "students", len(students), "workers", e.opts.Workers)

	workers := e.opts.Workers
	if workers > len(students) {
		workers = len(students)
	}

	ch := make(chan *student.Student, len(students))
	for _, st := range students {
		ch <- st
	}
	close(ch)

	// Set once a worker sees a rate-limit response; remaining students are
	// abandoned and resumed next cycle.
	var aborted atomic.Bool

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for st := range ch {
				if aborted.Load() || ctx.Err() != nil {
					mu.Lock()
					result.StudentsSkipped++
					mu.Unlock()
					continue
				}

				sr := e.syncStudent(ctx, st)
				if sr.Error != "" && sr.rateLimited {
					aborted.Store(true)
				}

				mu.Lock()
				result.Results = append(result.Results, sr.StudentResult)
				if sr.Synced {
					result.StudentsSynced++
				} else {
					result.StudentsFailed++
				}
				switch sr.Notify {
				case NotifySent:
					result.RemindersSent++
				case NotifyFailed:
					result.RemindersFailed++
				}
				if sr.Error != "" {
					result.Errors = append(result.Errors, sr.Error)
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	result.RateLimited = aborted.Load()
	result.Duration = e.now().Sub(start)
	e.logger.Info("Sync cycle complete", "summary", result.Summary(), "duration", result.Duration.Round(time.Millisecond))
	return result
}

// SyncOne runs the fetch+merge+evaluate+notify pipeline for a single
// student, outside a full cycle. Used for on-demand resyncs (handle change,
// CLI). The student must have a handle.
func (e *Engine) SyncOne(ctx context.Context, st *student.Student) StudentResult {
	return e.syncStudent(ctx, st).StudentResult
}

// studentOutcome carries the per-student result plus internal flags the
// worker loop needs.
type studentOutcome struct {
	StudentResult
	rateLimited bool
}

// syncStudent runs the four per-student steps in order: fetch, merge,
// evaluate, notify. Any step's failure stops that student's pipeline and is
// reported; the rest of the cycle is unaffected.
func (e *Engine) syncStudent(ctx context.Context, st *student.Student) studentOutcome {
	out := studentOutcome{StudentResult: StudentResult{
		StudentID: st.ID,
		Handle:    st.Handle,
		Notify:    NotifySkipped,
	}}

	// Fetch. Both endpoints share the client's token bucket.
	history, err := e.fetcher.UserRating(ctx, st.Handle)
	if err != nil {
		return e.fetchFailure(out, st, err)
	}
	subs, err := e.fetcher.UserStatus(ctx, st.Handle)
	if err != nil {
		return e.fetchFailure(out, st, err)
	}

	// Merge: wholesale snapshot replacement, atomic with the sync stamp.
	now := e.now()
	if err := Merge(ctx, e.roster, st, BuildSnapshot(history, subs, now)); err != nil {
		out.Error = err.Error()
		e.logger.Warn("Snapshot merge failed", "handle", st.Handle, "error", err)
		return out
	}
	out.Synced = true

	// Evaluate + notify.
	out.Active = analytics.IsActive(subs, now, e.opts.InactivityWindow)
	windowDays := int(e.opts.InactivityWindow / (24 * time.Hour))
	outcome, err := e.gate.MaybeNotify(ctx, st, out.Active, windowDays)
	out.Notify = outcome
	if err != nil {
		out.Error = err.Error()
		e.logger.Warn("Reminder dispatch problem", "handle", st.Handle, "outcome", outcome, "error", err)
	}
	return out
}

// fetchFailure classifies a fetch error and records it on the outcome.
func (e *Engine) fetchFailure(out studentOutcome, st *student.Student, err error) studentOutcome {
	out.Error = err.Error()
	switch {
	case errors.Is(err, codeforces.ErrRateLimited):
		out.rateLimited = true
		e.logger.Warn("Rate limited, abandoning burst", "handle", st.Handle)
	case errors.Is(err, codeforces.ErrInvalidHandle):
		e.logger.Warn("Invalid handle, skipping student", "handle", st.Handle)
	default:
		e.logger.Warn("Fetch failed", "handle", st.Handle, "error", err)
	}
	return out
}
