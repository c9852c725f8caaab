package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"camp_notifier/internal/domain/notification"
	idb "camp_notifier/internal/infra/database"
	"camp_notifier/internal/infra/ratelimit"

	"github.com/sirupsen/logrus"
)

// Outcome classifies a single dispatch attempt for pass summaries.
type Outcome int

const (
	// OutcomeUnknown is the zero value, returned only alongside an error.
	OutcomeUnknown Outcome = iota
	OutcomeSent
	OutcomeSkippedDisabled
	OutcomeSkippedDuplicate
)

// DispatchRequest is one candidate notification, fully rendered. SendEmail,
// when set, is a best-effort side channel: its failure never affects the
// dispatch result.
type DispatchRequest struct {
	UserID    int64
	CampID    int64
	Type      notification.Type
	Title     string
	Message   string
	Match     notification.MatchSpec
	DedupKey  sql.NullString
	SendEmail func() error
}

// DispatchService composes and records notifications exactly once per dedup
// key against the ledger, then fires the optional email channel.
type DispatchService struct {
	ledger       notification.Ledger
	settingsRepo notification.SettingsRepository
	emailLimiter *ratelimit.KeyedLimiter
	logger       *logrus.Entry

	// broadcastType is the category used for scheduled daily messages,
	// resolved once at startup: daily_message when the schema supports it,
	// admin_message on schemas that predate the enum value.
	broadcastType notification.Type
}

func NewDispatchService(
	ledger notification.Ledger,
	settingsRepo notification.SettingsRepository,
	emailLimiter *ratelimit.KeyedLimiter,
	logger *logrus.Entry,
) *DispatchService {
	return &DispatchService{
		ledger:        ledger,
		settingsRepo:  settingsRepo,
		emailLimiter:  emailLimiter,
		logger:        logger,
		broadcastType: notification.TypeDailyMessage,
	}
}

// ResolveBroadcastType runs the schema capability probe for the
// daily_message category and pins the compatibility category if needed.
func (s *DispatchService) ResolveBroadcastType(ctx context.Context) {
	ok, err := s.ledger.SupportsType(ctx, notification.TypeDailyMessage)
	if err != nil || !ok {
		s.logger.WithError(err).Warn("schema does not accept daily_message, broadcasts will use admin_message")
		s.broadcastType = notification.TypeAdminMessage
		return
	}
	s.broadcastType = notification.TypeDailyMessage
}

func (s *DispatchService) BroadcastType() notification.Type {
	return s.broadcastType
}

// Dispatch records the notification unless the user disabled its category or
// the ledger already holds a matching row. Success is defined solely by the
// ledger insert; the email attempt is fire-and-forget.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (Outcome, error) {
	if !s.categoryEnabled(ctx, req) {
		return OutcomeSkippedDisabled, nil
	}

	if req.Match.Kind != notification.MatchNone {
		already, err := s.ledger.HasAlreadyNotified(ctx, req.UserID, req.CampID, req.Type, req.Match)
		if err != nil {
			return OutcomeUnknown, fmt.Errorf("dedup check failed for user %d camp %d: %w", req.UserID, req.CampID, err)
		}
		if already {
			return OutcomeSkippedDuplicate, nil
		}
	}

	ev := &notification.Event{
		UserID:   req.UserID,
		CampID:   req.CampID,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		DedupKey: req.DedupKey,
	}
	created, err := s.ledger.Record(ctx, ev)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("recording notification for user %d camp %d: %w", req.UserID, req.CampID, err)
	}
	if !created {
		return OutcomeSkippedDuplicate, nil
	}

	if req.SendEmail != nil {
		s.tryEmail(req)
	}
	return OutcomeSent, nil
}

// categoryEnabled defaults to enabled whenever settings are absent or the
// lookup fails: the product favors over-notifying over silently dropping.
func (s *DispatchService) categoryEnabled(ctx context.Context, req DispatchRequest) bool {
	settings, err := s.settingsRepo.Get(ctx, req.UserID, req.CampID)
	if err != nil {
		if err != idb.ErrSettingsNotFound {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": req.UserID, "camp_id": req.CampID,
			}).Warn("settings lookup failed, defaulting to enabled")
		}
		return true
	}
	return settings.Allows(notification.CategoryFor(req.Type))
}

func (s *DispatchService) tryEmail(req DispatchRequest) {
	key := strconv.FormatInt(req.UserID, 10)
	if !s.emailLimiter.Allow(key) {
		s.logger.WithFields(logrus.Fields{
			"user_id": req.UserID, "camp_id": req.CampID,
		}).Warn("email rate limit hit, dropping send")
		return
	}
	if err := req.SendEmail(); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID, "camp_id": req.CampID, "type": req.Type,
		}).Error("email send failed")
	}
}
