package database

import (
	"context"
	"database/sql"
	"fmt"

	"camp_notifier/internal/domain/notification"
)

var ErrSettingsNotFound = fmt.Errorf("notification settings not found")

// PostgresNotificationRepository is the dedup ledger: the persisted
// notification log that doubles as the de-duplication source of truth.
type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) HasAlreadyNotified(ctx context.Context, userID, campID int64, t notification.Type, match notification.MatchSpec) (bool, error) {
	var (
		query string
		args  []any
	)
	switch match.Kind {
	case notification.MatchNone:
		return false, nil
	case notification.MatchTitleExact:
		query = `SELECT EXISTS (SELECT 1 FROM notifications
                   WHERE user_id = $1 AND camp_id = $2 AND type = $3 AND title = $4)`
		args = []any{userID, campID, t, match.TitlePattern}
	case notification.MatchTitleContains:
		query = `SELECT EXISTS (SELECT 1 FROM notifications
                   WHERE user_id = $1 AND camp_id = $2 AND type = $3 AND title LIKE '%' || $4 || '%')`
		args = []any{userID, campID, t, match.TitlePattern}
	case notification.MatchSentBetween:
		query = `SELECT EXISTS (SELECT 1 FROM notifications
                   WHERE user_id = $1 AND camp_id = $2 AND type = $3 AND sent_at >= $4 AND sent_at < $5)`
		args = []any{userID, campID, t, match.From, match.To}
	default:
		return false, fmt.Errorf("unknown match kind: %d", match.Kind)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existing notification: %w", err)
	}
	return exists, nil
}

// Record appends a ledger row. The partial unique index on
// (user_id, camp_id, dedup_key) WHERE dedup_key IS NOT NULL turns a
// duplicate keyed insert into a no-op; created=false tells the caller
// another pass already recorded this event. The conflict target must repeat
// the index predicate or Postgres refuses to infer the partial index as
// arbiter; NULL-key rows bypass it and always insert.
func (r *PostgresNotificationRepository) Record(ctx context.Context, ev *notification.Event) (bool, error) {
	query := `INSERT INTO notifications (user_id, camp_id, type, title, message, sent_at, is_read, dedup_key)
               VALUES ($1, $2, $3, $4, $5, NOW(), FALSE, $6)
               ON CONFLICT (user_id, camp_id, dedup_key) WHERE dedup_key IS NOT NULL DO NOTHING
               RETURNING id, sent_at`
	err := r.db.QueryRowContext(ctx, query,
		ev.UserID, ev.CampID, ev.Type, ev.Title, ev.Message, ev.DedupKey,
	).Scan(&ev.ID, &ev.SentAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict on the dedup key: already recorded.
			return false, nil
		}
		return false, fmt.Errorf("error recording notification: %w", err)
	}
	return true, nil
}

// SupportsType probes whether the schema's notification_type enum accepts
// the given value. Schemas that predate a value fail the cast; that is the
// signal to engage the admin_message compatibility category.
func (r *PostgresNotificationRepository) SupportsType(ctx context.Context, t notification.Type) (bool, error) {
	var out string
	err := r.db.QueryRowContext(ctx, `SELECT $1::notification_type`, string(t)).Scan(&out)
	if err != nil {
		return false, err
	}
	return true, nil
}

type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

func (r *PostgresSettingsRepository) Get(ctx context.Context, userID, campID int64) (*notification.Settings, error) {
	query := `SELECT user_id, camp_id, daily_reminders, achievements, general
               FROM notification_settings
               WHERE user_id = $1 AND camp_id = $2`
	s := notification.Settings{}
	err := r.db.QueryRowContext(ctx, query, userID, campID).Scan(
		&s.UserID, &s.CampID, &s.DailyReminders, &s.Achievements, &s.General,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting notification settings: %w", err)
	}
	return &s, nil
}
