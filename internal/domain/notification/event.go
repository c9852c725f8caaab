package notification

import (
	"database/sql"
	"fmt"
	"time"
)

// Type is the notification category as persisted in the ledger.
type Type string

const (
	TypeDailyReminder Type = "daily_reminder"
	TypeDailyMessage  Type = "daily_message"
	TypeAchievement   Type = "achievement"
	TypeAdminMessage  Type = "admin_message"
	TypeFriendsDigest Type = "friends_digest"
)

// Category is the user-facing settings toggle a type is gated by.
type Category string

const (
	CategoryDailyReminder Category = "daily_reminder"
	CategoryAchievement   Category = "achievement"
	CategoryGeneral       Category = "general"
)

// CategoryFor maps a notification type to its settings toggle. Anything
// without a dedicated toggle falls under the general category.
func CategoryFor(t Type) Category {
	switch t {
	case TypeDailyReminder:
		return CategoryDailyReminder
	case TypeAchievement:
		return CategoryAchievement
	default:
		return CategoryGeneral
	}
}

// Event is one row of the dedup ledger, which doubles as the user-facing
// notification inbox. Rows are append-only from this subsystem's point of
// view; only is_read/read_at are mutated, and that happens in the API layer.
type Event struct {
	ID       int64
	UserID   int64
	CampID   int64
	Type     Type
	Title    string
	Message  string
	SentAt   time.Time
	IsRead   bool
	DedupKey sql.NullString
}

// Dedup keys back the partial unique index on (user_id, camp_id, dedup_key).
// daily_reminder rows intentionally carry no key: their at-most-once
// property comes from pending-task gating in the eligibility query.

func CampStartedKey(campID int64) sql.NullString {
	return sql.NullString{String: fmt.Sprintf("camp_started:%d", campID), Valid: true}
}

func CampFinishedKey(campID int64) sql.NullString {
	return sql.NullString{String: fmt.Sprintf("camp_finished:%d", campID), Valid: true}
}

func DailyMessageKey(campID, messageID int64, day int) sql.NullString {
	return sql.NullString{String: fmt.Sprintf("daily_message:%d:%d:day%d", campID, messageID, day), Valid: true}
}

func FriendsDigestKey(campID int64, localDate time.Time) sql.NullString {
	return sql.NullString{String: fmt.Sprintf("friends_digest:%d:%s", campID, localDate.Format("2006-01-02")), Valid: true}
}
