package app

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/notification"
)

func newReminderFixture(t *testing.T) (*ReminderJob, *fakeCampRepo, *fakeLedger) {
	t.Helper()
	repo := newFakeCampRepo()
	ledger := newFakeLedger()
	dispatcher := newTestDispatcher(ledger, newFakeSettingsRepo())
	eligibility := NewEligibilityService(repo, testCalendar(), discardEntry())
	job := NewReminderJob(eligibility, dispatcher, discardEntry())
	return job, repo, ledger
}

func TestReminderDispatchesToPendingUsers(t *testing.T) {
	job, repo, ledger := newReminderFixture(t)
	loc := testCalendar().Location()
	now := dateIn(loc, 2025, time.March, 3).Add(9 * time.Hour) // day 3
	job.now = func() time.Time { return now }

	repo.camps[1] = &camp.Camp{
		ID: 1, Name: "البرمجة",
		StartDate:    dateIn(loc, 2025, time.March, 1),
		DurationDays: 7,
		Status:       camp.StatusActive,
	}
	repo.pending[dayKey(1, 3)] = []camp.PendingCandidate{
		{Participant: camp.Participant{UserID: 100, Username: "سارة", Email: "sara@example.com"}, PendingCount: 2},
	}

	sum := job.Run(context.Background())
	if sum.Sent != 1 || sum.Failed != 0 {
		t.Fatalf("expected 1 sent, got %+v", sum)
	}
	events := ledger.eventsFor(100, 1)
	if len(events) != 1 || events[0].Type != notification.TypeDailyReminder {
		t.Fatalf("expected one daily_reminder, got %v", events)
	}
	if !strings.Contains(events[0].Message, "اليوم "+strconv.Itoa(3)) {
		t.Fatalf("expected message to carry the business day, got %q", events[0].Message)
	}
}

// A user who completed the day's tasks disappears from the eligibility query;
// the PM firing must therefore send nothing even without a dedup key.
func TestReminderSecondFiringAfterCompletionSendsNothing(t *testing.T) {
	job, repo, ledger := newReminderFixture(t)
	loc := testCalendar().Location()
	now := dateIn(loc, 2025, time.March, 3).Add(9 * time.Hour)
	job.now = func() time.Time { return now }

	repo.camps[1] = &camp.Camp{
		ID: 1, Name: "البرمجة",
		StartDate:    dateIn(loc, 2025, time.March, 1),
		DurationDays: 7,
		Status:       camp.StatusActive,
	}
	repo.pending[dayKey(1, 3)] = []camp.PendingCandidate{
		{Participant: camp.Participant{UserID: 100, Username: "سارة", Email: "sara@example.com"}, PendingCount: 1},
	}

	job.Run(context.Background())

	// User finishes the day's tasks between the AM and PM firings.
	delete(repo.pending, dayKey(1, 3))
	job.now = func() time.Time { return now.Add(11 * time.Hour) }
	sum := job.Run(context.Background())

	if sum.Sent != 0 || sum.Skipped != 0 || sum.Failed != 0 {
		t.Fatalf("expected empty pass after completion, got %+v", sum)
	}
	if got := len(ledger.eventsFor(100, 1)); got != 1 {
		t.Fatalf("expected one reminder total, got %d", got)
	}
}

func TestReminderSkipsCampsOutsideWindow(t *testing.T) {
	job, repo, ledger := newReminderFixture(t)
	loc := testCalendar().Location()
	now := dateIn(loc, 2025, time.March, 20).Add(9 * time.Hour)
	job.now = func() time.Time { return now }

	// Active in the table but past its window; clamped day would be 7, and
	// pending rows for day 7 must not be picked up.
	repo.camps[1] = &camp.Camp{
		ID: 1, Name: "منتهٍ",
		StartDate:    dateIn(loc, 2025, time.March, 1),
		DurationDays: 7,
		Status:       camp.StatusActive,
	}
	repo.pending[dayKey(1, 7)] = []camp.PendingCandidate{
		{Participant: camp.Participant{UserID: 100, Username: "سارة", Email: "sara@example.com"}, PendingCount: 1},
	}

	sum := job.Run(context.Background())
	if sum.Sent != 0 {
		t.Fatalf("expected no reminders outside the window, got %+v", sum)
	}
	if len(ledger.events) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(ledger.events))
	}
}
