package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"camp_notifier/internal/domain/activity"
	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/notification"
	idb "camp_notifier/internal/infra/database"
	"camp_notifier/internal/infra/ratelimit"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func discardEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func openLimiter() *ratelimit.KeyedLimiter {
	return ratelimit.New(rate.Limit(1000), 1000, 1000, time.Hour)
}

// --- ledger ---

type fakeLedger struct {
	events       []*notification.Event
	nextID       int64
	now          func() time.Time
	supportDaily bool
	recordErr    error
	checkErr     error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{now: time.Now, supportDaily: true}
}

func (l *fakeLedger) HasAlreadyNotified(_ context.Context, userID, campID int64, t notification.Type, match notification.MatchSpec) (bool, error) {
	if l.checkErr != nil {
		return false, l.checkErr
	}
	for _, ev := range l.events {
		if ev.UserID != userID || ev.CampID != campID || ev.Type != t {
			continue
		}
		switch match.Kind {
		case notification.MatchTitleExact:
			if ev.Title == match.TitlePattern {
				return true, nil
			}
		case notification.MatchTitleContains:
			if strings.Contains(ev.Title, match.TitlePattern) {
				return true, nil
			}
		case notification.MatchSentBetween:
			if !ev.SentAt.Before(match.From) && ev.SentAt.Before(match.To) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (l *fakeLedger) Record(_ context.Context, ev *notification.Event) (bool, error) {
	if l.recordErr != nil {
		return false, l.recordErr
	}
	if ev.DedupKey.Valid {
		for _, existing := range l.events {
			if existing.UserID == ev.UserID && existing.CampID == ev.CampID &&
				existing.DedupKey.Valid && existing.DedupKey.String == ev.DedupKey.String {
				return false, nil
			}
		}
	}
	l.nextID++
	ev.ID = l.nextID
	ev.SentAt = l.now()
	l.events = append(l.events, ev)
	return true, nil
}

func (l *fakeLedger) SupportsType(_ context.Context, t notification.Type) (bool, error) {
	if t == notification.TypeDailyMessage {
		return l.supportDaily, nil
	}
	return true, nil
}

func (l *fakeLedger) eventsFor(userID, campID int64) []*notification.Event {
	var out []*notification.Event
	for _, ev := range l.events {
		if ev.UserID == userID && ev.CampID == campID {
			out = append(out, ev)
		}
	}
	return out
}

// --- settings ---

type fakeSettingsRepo struct {
	settings map[string]*notification.Settings
	err      error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*notification.Settings)}
}

func settingsKey(userID, campID int64) string {
	return fmt.Sprintf("%d:%d", userID, campID)
}

func (r *fakeSettingsRepo) put(s *notification.Settings) {
	r.settings[settingsKey(s.UserID, s.CampID)] = s
}

func (r *fakeSettingsRepo) Get(_ context.Context, userID, campID int64) (*notification.Settings, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.settings[settingsKey(userID, campID)]
	if !ok {
		return nil, idb.ErrSettingsNotFound
	}
	return s, nil
}

// --- camp repository ---

type fakeCampRepo struct {
	camps        map[int64]*camp.Camp
	participants map[int64][]camp.Participant
	pending      map[string][]camp.PendingCandidate // "campID:day"
	messages     map[string][]camp.ScheduledMessage // "campID:day"
	targets      []camp.DigestTarget

	listErr     error
	pendingErrs map[string]error
}

func newFakeCampRepo() *fakeCampRepo {
	return &fakeCampRepo{
		camps:        make(map[int64]*camp.Camp),
		participants: make(map[int64][]camp.Participant),
		pending:      make(map[string][]camp.PendingCandidate),
		messages:     make(map[string][]camp.ScheduledMessage),
	}
}

func dayKey(campID int64, day int) string {
	return fmt.Sprintf("%d:%d", campID, day)
}

func (r *fakeCampRepo) GetByID(_ context.Context, id int64) (*camp.Camp, error) {
	c, ok := r.camps[id]
	if !ok {
		return nil, idb.ErrCampNotFound
	}
	return c, nil
}

func (r *fakeCampRepo) ListRunning(_ context.Context) ([]*camp.Camp, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*camp.Camp
	for _, c := range r.camps {
		if c.Status == camp.StatusActive || c.Status == camp.StatusReopened {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampRepo) ListDueForAutoStart(_ context.Context, today time.Time) ([]*camp.Camp, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*camp.Camp
	for _, c := range r.camps {
		if c.Status == camp.StatusEarlyRegistration && c.AutoStartCamp && !c.StartDate.After(today) {
			out = append(out, c)
		}
	}
	return out, nil
}

func endDate(c *camp.Camp) time.Time {
	return c.Anchor().AddDate(0, 0, c.DurationDays)
}

func (r *fakeCampRepo) ListActivePastDuration(_ context.Context, today time.Time) ([]*camp.Camp, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*camp.Camp
	for _, c := range r.camps {
		if c.Status == camp.StatusActive && !endDate(c).After(today) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampRepo) ListEndedCamps(_ context.Context, today time.Time) ([]*camp.Camp, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*camp.Camp
	for _, c := range r.camps {
		if (c.Status == camp.StatusActive || c.Status == camp.StatusCompleted) && !endDate(c).After(today) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampRepo) UpdateStatus(_ context.Context, campID int64, status camp.Status) error {
	c, ok := r.camps[campID]
	if !ok {
		return idb.ErrCampNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCampRepo) ListEnrolledParticipants(_ context.Context, campID int64) ([]camp.Participant, error) {
	return r.participants[campID], nil
}

func (r *fakeCampRepo) ListParticipantsWithPendingTasks(_ context.Context, campID int64, day int) ([]camp.PendingCandidate, error) {
	if err := r.pendingErrs[dayKey(campID, day)]; err != nil {
		return nil, err
	}
	return r.pending[dayKey(campID, day)], nil
}

func (r *fakeCampRepo) ListScheduledMessages(_ context.Context, campID int64, day int) ([]camp.ScheduledMessage, error) {
	return r.messages[dayKey(campID, day)], nil
}

func (r *fakeCampRepo) ListDigestTargets(_ context.Context) ([]camp.DigestTarget, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.targets, nil
}

// --- activity repository ---

type fakeActivityRecord struct {
	userID   int64
	username string
	kind     string
	streak   int
	at       time.Time
}

type fakeActivityRepo struct {
	friends map[int64][]activity.Friend
	records []fakeActivityRecord
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{friends: make(map[int64][]activity.Friend)}
}

func (r *fakeActivityRepo) ListFriends(_ context.Context, userID int64) ([]activity.Friend, error) {
	return r.friends[userID], nil
}

func (r *fakeActivityRepo) AggregateSince(_ context.Context, userIDs []int64, since time.Time) ([]activity.FriendActivity, error) {
	wanted := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	byUser := make(map[int64]*activity.FriendActivity)
	var order []int64
	for _, rec := range r.records {
		if !wanted[rec.userID] || rec.at.Before(since) {
			continue
		}
		agg, ok := byUser[rec.userID]
		if !ok {
			agg = &activity.FriendActivity{UserID: rec.userID, Username: rec.username}
			byUser[rec.userID] = agg
			order = append(order, rec.userID)
		}
		switch rec.kind {
		case "task_completed":
			agg.TasksCompleted++
		case "reflection_shared":
			agg.ReflectionsShared++
		}
		if rec.streak > agg.MaxStreak {
			agg.MaxStreak = rec.streak
		}
	}
	out := make([]activity.FriendActivity, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out, nil
}

// --- email ---

type fakeEmailClient struct {
	started  []string
	finished []string
	err      error
}

func (c *fakeEmailClient) SendCampStartedEmail(to, _, _ string, _ int64) error {
	c.started = append(c.started, to)
	return c.err
}

func (c *fakeEmailClient) SendCampFinishedEmail(to, _, _ string, _ int64) error {
	c.finished = append(c.finished, to)
	return c.err
}

// --- common wiring ---

func testCalendar() *camp.Calendar {
	return camp.NewCalendar(time.FixedZone("AST", 3*3600))
}

func newTestDispatcher(ledger *fakeLedger, settings *fakeSettingsRepo) *DispatchService {
	return NewDispatchService(ledger, settings, openLimiter(), discardEntry())
}

func dateIn(loc *time.Location, y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
