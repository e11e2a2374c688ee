package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cfwatch/cfwatch-data/internal/student"
)

// Gate is the idempotent reminder decision + side-effect unit. It fires at
// most once per cycle per inactive student, and the reminder counter is a
// tally of confirmed sends — a failed dispatch never increments it.
type Gate struct {
	roster  Roster
	mailer  Mailer
	enabled bool
	logger  *slog.Logger
}

// NewGate creates a notification gate. enabled=false turns the gate into a
// pure skip (used when reminders are disabled deployment-wide).
func NewGate(roster Roster, mailer Mailer, enabled bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{roster: roster, mailer: mailer, enabled: enabled, logger: logger}
}

// MaybeNotify sends an inactivity reminder when the student is inactive and
// has reminders enabled. Returns the outcome; the error accompanies
// NotifyFailed, or a counter-persistence problem after a confirmed send.
func (g *Gate) MaybeNotify(ctx context.Context, st *student.Student, active bool, windowDays int) (NotifyOutcome, error) {
	if active || !st.RemindersEnabled {
		return NotifySkipped, nil
	}
	if !g.enabled || g.mailer == nil || !g.mailer.Enabled() {
		g.logger.Debug("reminder suppressed, mailer disabled", "student_id", st.ID)
		return NotifySkipped, nil
	}

	subject, body := reminderMessage(st.Name, windowDays)
	if err := g.mailer.Send(ctx, st.Email, subject, body); err != nil {
		return NotifyFailed, fmt.Errorf("send reminder to %s: %w", st.Email, err)
	}

	count, err := g.roster.IncrementReminderCount(ctx, st.ID)
	if err != nil {
		// The reminder went out; only the tally write failed. The send is
		// still confirmed, so report Sent and surface the error upstream.
		return NotifySent, fmt.Errorf("reminder sent but count not persisted for student %d: %w", st.ID, err)
	}
	st.ReminderCount = count

	g.logger.Info("Reminder email sent", "student_id", st.ID, "email", st.Email, "reminder_count", count)
	return NotifySent, nil
}

func reminderMessage(name string, windowDays int) (subject, body string) {
	subject = "Codeforces Activity Reminder"
	body = fmt.Sprintf(
		"Hi %s,\n\nWe noticed you haven't made any Codeforces submissions in the last %d days. Get back to problem solving!\n\nBest,\nStudent Tracker Team",
		name, windowDays,
	)
	return subject, body
}
