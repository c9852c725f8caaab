package camp

import (
	"database/sql"
	"time"
)

// Status reflects the administrative lifecycle of a camp.
type Status string

const (
	StatusEarlyRegistration Status = "early_registration"
	StatusActive            Status = "active"
	StatusReopened          Status = "reopened"
	StatusCompleted         Status = "completed"
)

// Camp represents a fixed-duration learning program with enrolled participants.
// start_date and reopened_date are stored as DATE columns (timezone-naive);
// when reopened_date is set it overrides start_date as the day-numbering anchor.
type Camp struct {
	ID            int64
	Name          string
	StartDate     time.Time
	ReopenedDate  sql.NullTime
	DurationDays  int
	Status        Status
	AutoStartCamp bool
}

// Anchor is the date that business-day numbering counts from.
func (c *Camp) Anchor() time.Time {
	if c.ReopenedDate.Valid {
		return c.ReopenedDate.Time
	}
	return c.StartDate
}

// Task activates on a specific business day of its camp.
type Task struct {
	ID         int64
	CampID     int64
	DayNumber  int
	IsOptional bool
}

// Participant is an enrolled user reached through the enrollment join.
type Participant struct {
	UserID   int64
	Username string
	Email    string
}

// PendingCandidate is a participant with unfinished tasks for a given day.
type PendingCandidate struct {
	Participant
	PendingCount int
}

// ReminderCandidate is a pending candidate resolved to a concrete camp and day.
type ReminderCandidate struct {
	PendingCandidate
	CampID   int64
	CampName string
	Day      int
}

// ScheduledMessage is admin-authored broadcast copy for one business day.
// Title and Message may contain {day} and {camp_name} placeholders.
type ScheduledMessage struct {
	ID        int64
	CampID    int64
	DayNumber int
	Title     string
	Message   string
}

// DigestTarget is a user enrolled in a running camp, paired with one of
// their active camps chosen arbitrarily to anchor the digest notification.
type DigestTarget struct {
	Participant
	CampID int64
}
