package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"camp_notifier/internal/domain/activity"

	"github.com/lib/pq"
)

type PostgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) ListFriends(ctx context.Context, userID int64) ([]activity.Friend, error) {
	query := `SELECT u.id, u.username
               FROM friendships f
               JOIN users u ON u.id = f.friend_id
               WHERE f.user_id = $1 AND f.status = 'accepted'
               ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying friends: %w", err)
	}
	defer rows.Close()

	friends := make([]activity.Friend, 0)
	for rows.Next() {
		var f activity.Friend
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, fmt.Errorf("error scanning friend row: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend rows: %w", err)
	}
	return friends, nil
}

func (r *PostgresActivityRepository) AggregateSince(ctx context.Context, userIDs []int64, since time.Time) ([]activity.FriendActivity, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT a.user_id, u.username,
                      COUNT(*) FILTER (WHERE a.kind = 'task_completed'),
                      COUNT(*) FILTER (WHERE a.kind = 'reflection_shared'),
                      COALESCE(MAX(a.streak), 0)
               FROM user_activity a
               JOIN users u ON u.id = a.user_id
               WHERE a.user_id = ANY($1::bigint[]) AND a.created_at >= $2
               GROUP BY a.user_id, u.username
               ORDER BY a.user_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), since)
	if err != nil {
		return nil, fmt.Errorf("error querying friend activity: %w", err)
	}
	defer rows.Close()

	aggregates := make([]activity.FriendActivity, 0)
	for rows.Next() {
		var a activity.FriendActivity
		if err := rows.Scan(&a.UserID, &a.Username, &a.TasksCompleted, &a.ReflectionsShared, &a.MaxStreak); err != nil {
			return nil, fmt.Errorf("error scanning friend activity row: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend activity rows: %w", err)
	}
	return aggregates, nil
}
