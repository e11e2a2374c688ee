package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cfwatch/cfwatch-data/internal/codeforces"
	"github.com/cfwatch/cfwatch-data/internal/student"
)

// fakeFetcher serves canned histories per handle, or a canned error.
type fakeFetcher struct {
	mu      sync.Mutex
	ratings map[string][]codeforces.ContestResult
	subs    map[string][]codeforces.Submission
	errs    map[string]error
	calls   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		ratings: make(map[string][]codeforces.ContestResult),
		subs:    make(map[string][]codeforces.Submission),
		errs:    make(map[string]error),
	}
}

func (f *fakeFetcher) UserRating(_ context.Context, handle string) ([]codeforces.ContestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "rating:"+handle)
	if err := f.errs[handle]; err != nil {
		return nil, err
	}
	return f.ratings[handle], nil
}

func (f *fakeFetcher) UserStatus(_ context.Context, handle string) ([]codeforces.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "status:"+handle)
	if err := f.errs[handle]; err != nil {
		return nil, err
	}
	return f.subs[handle], nil
}

// fakeRoster is an in-memory Roster with injectable failures.
type fakeRoster struct {
	mu            sync.Mutex
	students      []*student.Student
	findErr       error
	saveErr       map[int64]error
	incrementErr  map[int64]error
	saved         map[int64]*student.Snapshot
	reminderCount map[int64]int
	findGate      chan struct{} // non-nil: FindWithHandle blocks until closed
}

func newFakeRoster(students ...*student.Student) *fakeRoster {
	return &fakeRoster{
		students:      students,
		saveErr:       make(map[int64]error),
		incrementErr:  make(map[int64]error),
		saved:         make(map[int64]*student.Snapshot),
		reminderCount: make(map[int64]int),
	}
}

func (r *fakeRoster) FindWithHandle(_ context.Context) ([]*student.Student, error) {
	if r.findGate != nil {
		<-r.findGate
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.students, nil
}

func (r *fakeRoster) SaveSnapshot(_ context.Context, id int64, snap *student.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveErr[id]; err != nil {
		return err
	}
	r.saved[id] = snap
	return nil
}

func (r *fakeRoster) IncrementReminderCount(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.incrementErr[id]; err != nil {
		return 0, err
	}
	r.reminderCount[id]++
	return r.reminderCount[id], nil
}

// fakeMailer records sends and can fail per address.
type fakeMailer struct {
	mu      sync.Mutex
	enabled bool
	failFor map[string]error
	sent    []string // recipient addresses in send order
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{enabled: true, failFor: make(map[string]error)}
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[to]; err != nil {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}

// --------------------------------------------------------------------------
// Fixture builders
// --------------------------------------------------------------------------

var errSendRefused = errors.New("smtp: connection refused")

func testStudent(id int64, handle string) *student.Student {
	return &student.Student{
		ID:               id,
		StudentID:        fmt.Sprintf("S%03d", id),
		Name:             fmt.Sprintf("Student %d", id),
		Email:            fmt.Sprintf("student%d@example.org", id),
		Handle:           handle,
		RemindersEnabled: true,
	}
}

func acceptedSub(contestID int, index string, ts time.Time) codeforces.Submission {
	return codeforces.Submission{
		ContestID:    contestID,
		ProblemIndex: index,
		Verdict:      codeforces.VerdictAccepted,
		Timestamp:    ts,
	}
}
