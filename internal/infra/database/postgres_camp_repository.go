package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"camp_notifier/internal/domain/camp"
)

var ErrCampNotFound = fmt.Errorf("camp not found")

type PostgresCampRepository struct {
	db *sql.DB
}

func NewPostgresCampRepository(db *sql.DB) *PostgresCampRepository {
	return &PostgresCampRepository{db: db}
}

const campColumns = `id, name, start_date, reopened_date, duration_days, status, auto_start_camp`

func scanCamp(row interface{ Scan(...any) error }) (*camp.Camp, error) {
	c := camp.Camp{}
	err := row.Scan(&c.ID, &c.Name, &c.StartDate, &c.ReopenedDate, &c.DurationDays, &c.Status, &c.AutoStartCamp)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCamps(rows *sql.Rows) ([]*camp.Camp, error) {
	camps := make([]*camp.Camp, 0)
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning camp row: %w", err)
		}
		camps = append(camps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating camp rows: %w", err)
	}
	return camps, nil
}

func (r *PostgresCampRepository) GetByID(ctx context.Context, id int64) (*camp.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps WHERE id = $1`
	c, err := scanCamp(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("error getting camp by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCampRepository) ListRunning(ctx context.Context) ([]*camp.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps WHERE status IN ($1, $2) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, camp.StatusActive, camp.StatusReopened)
	if err != nil {
		return nil, fmt.Errorf("error querying running camps: %w", err)
	}
	defer rows.Close()
	return scanCamps(rows)
}

func (r *PostgresCampRepository) ListDueForAutoStart(ctx context.Context, today time.Time) ([]*camp.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps
               WHERE status = $1 AND auto_start_camp = TRUE AND start_date <= $2
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, camp.StatusEarlyRegistration, today)
	if err != nil {
		return nil, fmt.Errorf("error querying camps due for auto start: %w", err)
	}
	defer rows.Close()
	return scanCamps(rows)
}

func (r *PostgresCampRepository) ListActivePastDuration(ctx context.Context, today time.Time) ([]*camp.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps
               WHERE status = $1
                 AND COALESCE(reopened_date, start_date) + duration_days <= $2
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, camp.StatusActive, today)
	if err != nil {
		return nil, fmt.Errorf("error querying camps past duration: %w", err)
	}
	defer rows.Close()
	return scanCamps(rows)
}

func (r *PostgresCampRepository) ListEndedCamps(ctx context.Context, today time.Time) ([]*camp.Camp, error) {
	query := `SELECT ` + campColumns + ` FROM camps
               WHERE status IN ($1, $2)
                 AND COALESCE(reopened_date, start_date) + duration_days <= $3
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, camp.StatusActive, camp.StatusCompleted, today)
	if err != nil {
		return nil, fmt.Errorf("error querying ended camps: %w", err)
	}
	defer rows.Close()
	return scanCamps(rows)
}

func (r *PostgresCampRepository) UpdateStatus(ctx context.Context, campID int64, status camp.Status) error {
	query := `UPDATE camps SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, campID)
	if err != nil {
		return fmt.Errorf("error updating camp status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrCampNotFound
	}
	return nil
}

func (r *PostgresCampRepository) ListEnrolledParticipants(ctx context.Context, campID int64) ([]camp.Participant, error) {
	// Enrollment status NULL is treated as enrolled.
	query := `SELECT u.id, u.username, u.email
               FROM camp_enrollments e
               JOIN users u ON u.id = e.user_id
               WHERE e.camp_id = $1 AND (e.status IS NULL OR e.status = 'enrolled')
               ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, campID)
	if err != nil {
		return nil, fmt.Errorf("error querying enrolled participants: %w", err)
	}
	defer rows.Close()

	participants := make([]camp.Participant, 0)
	for rows.Next() {
		var p camp.Participant
		if err := rows.Scan(&p.UserID, &p.Username, &p.Email); err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *PostgresCampRepository) ListParticipantsWithPendingTasks(ctx context.Context, campID int64, day int) ([]camp.PendingCandidate, error) {
	query := `SELECT u.id, u.username, u.email, COUNT(t.id) AS pending_count
               FROM camp_enrollments e
               JOIN users u ON u.id = e.user_id
               JOIN tasks t ON t.camp_id = e.camp_id AND t.day_number = $2
               LEFT JOIN task_progress tp ON tp.task_id = t.id AND tp.enrollment_id = e.id
               WHERE e.camp_id = $1
                 AND (e.status IS NULL OR e.status = 'enrolled')
                 AND tp.task_id IS NULL
               GROUP BY u.id, u.username, u.email
               HAVING COUNT(t.id) > 0
               ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, campID, day)
	if err != nil {
		return nil, fmt.Errorf("error querying participants with pending tasks: %w", err)
	}
	defer rows.Close()

	candidates := make([]camp.PendingCandidate, 0)
	for rows.Next() {
		var c camp.PendingCandidate
		if err := rows.Scan(&c.UserID, &c.Username, &c.Email, &c.PendingCount); err != nil {
			return nil, fmt.Errorf("error scanning pending candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending candidate rows: %w", err)
	}
	return candidates, nil
}

func (r *PostgresCampRepository) ListScheduledMessages(ctx context.Context, campID int64, day int) ([]camp.ScheduledMessage, error) {
	query := `SELECT id, camp_id, day_number, title, message
               FROM scheduled_messages
               WHERE camp_id = $1 AND day_number = $2
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, campID, day)
	if err != nil {
		return nil, fmt.Errorf("error querying scheduled messages: %w", err)
	}
	defer rows.Close()

	messages := make([]camp.ScheduledMessage, 0)
	for rows.Next() {
		var m camp.ScheduledMessage
		if err := rows.Scan(&m.ID, &m.CampID, &m.DayNumber, &m.Title, &m.Message); err != nil {
			return nil, fmt.Errorf("error scanning scheduled message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled message rows: %w", err)
	}
	return messages, nil
}

func (r *PostgresCampRepository) ListDigestTargets(ctx context.Context) ([]camp.DigestTarget, error) {
	// One row per user; the associated camp is an arbitrary running camp
	// the user is enrolled in.
	query := `SELECT DISTINCT ON (u.id) u.id, u.username, u.email, c.id
               FROM camp_enrollments e
               JOIN users u ON u.id = e.user_id
               JOIN camps c ON c.id = e.camp_id
               WHERE c.status IN ($1, $2)
                 AND (e.status IS NULL OR e.status = 'enrolled')
               ORDER BY u.id, c.id`
	rows, err := r.db.QueryContext(ctx, query, camp.StatusActive, camp.StatusReopened)
	if err != nil {
		return nil, fmt.Errorf("error querying digest targets: %w", err)
	}
	defer rows.Close()

	targets := make([]camp.DigestTarget, 0)
	for rows.Next() {
		var t camp.DigestTarget
		if err := rows.Scan(&t.UserID, &t.Username, &t.Email, &t.CampID); err != nil {
			return nil, fmt.Errorf("error scanning digest target row: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating digest target rows: %w", err)
	}
	return targets, nil
}
