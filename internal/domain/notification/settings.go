package notification

import "context"

// Settings holds a user's per-camp notification toggles.
type Settings struct {
	UserID         int64
	CampID         int64
	DailyReminders bool
	Achievements   bool
	General        bool
}

// Allows reports whether the given category is enabled.
func (s *Settings) Allows(cat Category) bool {
	switch cat {
	case CategoryDailyReminder:
		return s.DailyReminders
	case CategoryAchievement:
		return s.Achievements
	default:
		return s.General
	}
}

// SettingsRepository looks up per-camp notification settings. A missing row
// means "everything enabled"; implementations signal that with
// ErrSettingsNotFound from the infra package.
type SettingsRepository interface {
	Get(ctx context.Context, userID, campID int64) (*Settings, error)
}
