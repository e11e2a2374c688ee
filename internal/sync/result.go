package sync

import (
	"fmt"
	"time"
)

// NotifyOutcome is the decision of the notification gate for one student.
type NotifyOutcome string

const (
	NotifySkipped NotifyOutcome = "skipped"
	NotifySent    NotifyOutcome = "sent"
	NotifyFailed  NotifyOutcome = "failed"
)

// StudentResult records one student's passage through a cycle.
type StudentResult struct {
	StudentID int64         `json:"studentId"`
	Handle    string        `json:"handle"`
	Synced    bool          `json:"synced"`
	Active    bool          `json:"active"`
	Notify    NotifyOutcome `json:"notify"`
	Error     string        `json:"error,omitempty"`
}

// CycleResult aggregates counts and errors from one sync cycle. Per-student
// errors land here instead of propagating; the cycle itself never fails.
type CycleResult struct {
	StartedAt       time.Time       `json:"startedAt"`
	Duration        time.Duration   `json:"duration"`
	StudentsFound   int             `json:"studentsFound"`
	StudentsSynced  int             `json:"studentsSynced"`
	StudentsFailed  int             `json:"studentsFailed"`
	StudentsSkipped int             `json:"studentsSkipped"` // abandoned after a rate-limit hit
	RemindersSent   int             `json:"remindersSent"`
	RemindersFailed int             `json:"remindersFailed"`
	RateLimited     bool            `json:"rateLimited"`
	Results         []StudentResult `json:"results,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
}

// AddErrorf records a formatted error message.
func (r *CycleResult) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the cycle.
func (r *CycleResult) Summary() string {
	return fmt.Sprintf(
		"found=%d synced=%d failed=%d skipped=%d reminders_sent=%d reminders_failed=%d rate_limited=%t errors=%d",
		r.StudentsFound, r.StudentsSynced, r.StudentsFailed, r.StudentsSkipped,
		r.RemindersSent, r.RemindersFailed, r.RateLimited, len(r.Errors),
	)
}
