// Package student defines the tracked-student model and its Postgres store.
package student

import (
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
)

// Snapshot is the most recently fetched full Codeforces history for one
// student. It is replaced wholesale on every successful sync — last writer
// wins at snapshot granularity, so there is never a partially merged state.
type Snapshot struct {
	ContestHistory []codeforces.ContestResult `json:"contestHistory"`
	Submissions    []codeforces.Submission    `json:"submissions"`
	FetchedAt      time.Time                  `json:"fetchedAt"`
}

// Student is one tracked student. Handle is optional; students without a
// handle are excluded from sync cycles.
type Student struct {
	ID            int64      `json:"id"`
	StudentID     string     `json:"studentID"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email"`
	Grades        string     `json:"grades,omitempty"`
	Handle        string     `json:"codeforcesHandle,omitempty"`
	CurrentRating int        `json:"currentRating,omitempty"`
	MaxRating     int        `json:"maxRating,omitempty"`
	Snapshot      *Snapshot  `json:"snapshot,omitempty"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`

	// ReminderCount is a monotone tally of reminders successfully sent,
	// not attempts. Incremented at most once per sync cycle.
	ReminderCount    int  `json:"reminderCount"`
	RemindersEnabled bool `json:"remindersEnabled"`
}

// HasHandle reports whether the student is eligible for sync cycles.
func (s *Student) HasHandle() bool {
	return s.Handle != ""
}
