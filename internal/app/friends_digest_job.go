package app

import (
	"context"
	"time"

	"camp_notifier/internal/domain/activity"
	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// FriendsDigestJob sends each user enrolled in a running camp one aggregated
// summary of their friends' activity over the trailing 24 hours. Users with
// no friends or no friend activity are skipped, not errored. The calendar-day
// sent_at match keeps re-triggered passes from sending a second digest the
// same day.
type FriendsDigestJob struct {
	dispatcher   *DispatchService
	campRepo     camp.Repository
	activityRepo activity.Repository
	cal          *camp.Calendar
	logger       *logrus.Entry
	now          func() time.Time
}

func NewFriendsDigestJob(
	dispatcher *DispatchService,
	campRepo camp.Repository,
	activityRepo activity.Repository,
	cal *camp.Calendar,
	logger *logrus.Entry,
) *FriendsDigestJob {
	return &FriendsDigestJob{
		dispatcher:   dispatcher,
		campRepo:     campRepo,
		activityRepo: activityRepo,
		cal:          cal,
		logger:       logger,
		now:          time.Now,
	}
}

func (j *FriendsDigestJob) Name() string { return "friends_digest" }

func (j *FriendsDigestJob) Run(ctx context.Context) Summary {
	var sum Summary
	now := j.now()

	targets, err := j.campRepo.ListDigestTargets(ctx)
	if err != nil {
		j.logger.WithError(err).Error("digest-target query failed, zero digests this cycle")
		return sum
	}

	from, to := j.cal.DayBounds(now)
	since := now.Add(-24 * time.Hour)

	for _, target := range targets {
		friends, err := j.activityRepo.ListFriends(ctx, target.UserID)
		if err != nil {
			sum.Failed++
			j.logger.WithError(err).WithField("user_id", target.UserID).Error("friend query failed")
			continue
		}
		if len(friends) == 0 {
			sum.Skipped++
			continue
		}

		friendIDs := make([]int64, len(friends))
		for i, f := range friends {
			friendIDs[i] = f.UserID
		}

		aggregates, err := j.activityRepo.AggregateSince(ctx, friendIDs, since)
		if err != nil {
			sum.Failed++
			j.logger.WithError(err).WithField("user_id", target.UserID).Error("friend activity query failed")
			continue
		}
		aggregates = withActivity(aggregates)
		if len(aggregates) == 0 {
			sum.Skipped++
			continue
		}

		title, message := renderFriendsDigest(aggregates)
		outcome, err := j.dispatcher.Dispatch(ctx, DispatchRequest{
			UserID:   target.UserID,
			CampID:   target.CampID,
			Type:     notification.TypeFriendsDigest,
			Title:    title,
			Message:  message,
			Match:    notification.MatchSentWithin(from, to),
			DedupKey: notification.FriendsDigestKey(target.CampID, from),
		})
		if err != nil {
			sum.Failed++
			j.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": target.UserID, "camp_id": target.CampID,
			}).Error("friends digest dispatch failed")
			continue
		}
		tally(&sum, outcome)
	}

	return sum
}

func withActivity(aggregates []activity.FriendActivity) []activity.FriendActivity {
	out := aggregates[:0]
	for _, a := range aggregates {
		if a.Total() > 0 {
			out = append(out, a)
		}
	}
	return out
}
