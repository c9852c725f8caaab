package activity

import (
	"context"
	"time"
)

// Friend is a neighbor in the user's accepted-friendship graph.
type Friend struct {
	UserID   int64
	Username string
}

// FriendActivity aggregates one friend's activity over a trailing window.
type FriendActivity struct {
	UserID            int64
	Username          string
	TasksCompleted    int
	ReflectionsShared int
	MaxStreak         int
}

// Total is the number of underlying activity records for the friend.
func (a FriendActivity) Total() int {
	return a.TasksCompleted + a.ReflectionsShared
}

// Repository reads the friend graph and activity feed for digests.
type Repository interface {
	// ListFriends returns accepted friendships for the user.
	ListFriends(ctx context.Context, userID int64) ([]Friend, error)
	// AggregateSince groups the given users' activity records created at or
	// after the cutoff. Friends with no activity in the window are omitted.
	AggregateSince(ctx context.Context, userIDs []int64, since time.Time) ([]FriendActivity, error)
}
