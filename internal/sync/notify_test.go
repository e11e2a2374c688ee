package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateMaybeNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("skips active students", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		gate := NewGate(roster, mailer, true, nil)

		outcome, err := gate.MaybeNotify(ctx, testStudent(1, "tourist"), true, 7)

		require.NoError(t, err)
		assert.Equal(t, NotifySkipped, outcome)
		assert.Empty(t, mailer.sent)
		assert.Zero(t, roster.reminderCount[1])
	})

	t.Run("never dispatches when reminders disabled for the student", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		gate := NewGate(roster, mailer, true, nil)

		st := testStudent(1, "tourist")
		st.RemindersEnabled = false

		// Inactive, but the per-student gate is off.
		outcome, err := gate.MaybeNotify(ctx, st, false, 7)

		require.NoError(t, err)
		assert.Equal(t, NotifySkipped, outcome)
		assert.Empty(t, mailer.sent)
		assert.Zero(t, roster.reminderCount[1])
	})

	t.Run("sends and increments for inactive students", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		gate := NewGate(roster, mailer, true, nil)

		st := testStudent(1, "tourist")
		outcome, err := gate.MaybeNotify(ctx, st, false, 7)

		require.NoError(t, err)
		assert.Equal(t, NotifySent, outcome)
		assert.Equal(t, []string{"student1@example.org"}, mailer.sent)
		assert.Equal(t, 1, roster.reminderCount[1])
		assert.Equal(t, 1, st.ReminderCount)
	})

	t.Run("counter untouched on dispatch failure", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		mailer.failFor["student1@example.org"] = errSendRefused
		gate := NewGate(roster, mailer, true, nil)

		st := testStudent(1, "tourist")
		outcome, err := gate.MaybeNotify(ctx, st, false, 7)

		require.Error(t, err)
		assert.ErrorIs(t, err, errSendRefused)
		assert.Equal(t, NotifyFailed, outcome)
		assert.Zero(t, roster.reminderCount[1], "reminderCount tallies sends, not attempts")
		assert.Zero(t, st.ReminderCount)
	})

	t.Run("skips when the mailer is not configured", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		mailer.enabled = false
		gate := NewGate(roster, mailer, true, nil)

		outcome, err := gate.MaybeNotify(ctx, testStudent(1, "tourist"), false, 7)

		require.NoError(t, err)
		assert.Equal(t, NotifySkipped, outcome)
	})

	t.Run("skips when reminders are disabled deployment-wide", func(t *testing.T) {
		roster := newFakeRoster()
		mailer := newFakeMailer()
		gate := NewGate(roster, mailer, false, nil)

		outcome, err := gate.MaybeNotify(ctx, testStudent(1, "tourist"), false, 7)

		require.NoError(t, err)
		assert.Equal(t, NotifySkipped, outcome)
		assert.Empty(t, mailer.sent)
	})

	t.Run("reports sent when only the tally write fails", func(t *testing.T) {
		roster := newFakeRoster()
		roster.incrementErr[1] = errSendRefused
		mailer := newFakeMailer()
		gate := NewGate(roster, mailer, true, nil)

		outcome, err := gate.MaybeNotify(ctx, testStudent(1, "tourist"), false, 7)

		require.Error(t, err, "tally persistence failure must surface")
		assert.Equal(t, NotifySent, outcome, "the dispatch itself was confirmed")
		assert.Len(t, mailer.sent, 1)
	})
}

func TestReminderMessage(t *testing.T) {
	subject, body := reminderMessage("Alice", 7)
	assert.Equal(t, "Codeforces Activity Reminder", subject)
	assert.Contains(t, body, "Hi Alice")
	assert.Contains(t, body, "last 7 days")
}
