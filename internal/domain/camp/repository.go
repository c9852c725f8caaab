package camp

import (
	"context"
	"time"
)

// Repository defines the storage operations the notification engine needs
// over camps, enrollments, tasks and scheduled messages. All date parameters
// are date-only values already truncated to the reference timezone.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Camp, error)

	// ListRunning returns camps with status active or reopened.
	ListRunning(ctx context.Context) ([]*Camp, error)
	// ListDueForAutoStart returns early_registration camps flagged for
	// auto start whose start_date is on or before today.
	ListDueForAutoStart(ctx context.Context, today time.Time) ([]*Camp, error)
	// ListActivePastDuration returns active camps whose anchor plus
	// duration has elapsed as of today.
	ListActivePastDuration(ctx context.Context, today time.Time) ([]*Camp, error)
	// ListEndedCamps returns active-or-completed camps whose end date has
	// passed; feeds the camp-finished achievement sweep.
	ListEndedCamps(ctx context.Context, today time.Time) ([]*Camp, error)

	UpdateStatus(ctx context.Context, campID int64, status Status) error

	// ListEnrolledParticipants returns users whose enrollment status is
	// 'enrolled' or NULL (NULL is treated as enrolled).
	ListEnrolledParticipants(ctx context.Context, campID int64) ([]Participant, error)
	// ListParticipantsWithPendingTasks returns enrolled participants with at
	// least one task of the given day not yet completed.
	ListParticipantsWithPendingTasks(ctx context.Context, campID int64, day int) ([]PendingCandidate, error)

	ListScheduledMessages(ctx context.Context, campID int64, day int) ([]ScheduledMessage, error)

	// ListDigestTargets returns one row per user enrolled in any running
	// camp, each paired with one of that user's running camps.
	ListDigestTargets(ctx context.Context) ([]DigestTarget, error)
}
