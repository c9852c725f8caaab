package app

import (
	"context"
	"time"

	"camp_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// ReminderJob nudges participants who still have unfinished tasks for their
// camp's current day. It fires twice a day (AM and PM) with identical logic;
// at-most-once-per-day delivery comes from pending-task gating upstream: a
// user who finished the day's tasks is simply never selected again.
type ReminderJob struct {
	eligibility *EligibilityService
	dispatcher  *DispatchService
	logger      *logrus.Entry
	now         func() time.Time
}

func NewReminderJob(eligibility *EligibilityService, dispatcher *DispatchService, logger *logrus.Entry) *ReminderJob {
	return &ReminderJob{eligibility: eligibility, dispatcher: dispatcher, logger: logger, now: time.Now}
}

func (j *ReminderJob) Name() string { return "daily_reminder" }

func (j *ReminderJob) Run(ctx context.Context) Summary {
	var sum Summary

	candidates, err := j.eligibility.UsersWithPendingTasksToday(ctx, j.now())
	if err != nil {
		j.logger.WithError(err).Error("pending-task eligibility query failed, zero candidates this cycle")
		return sum
	}

	for _, cand := range candidates {
		title, message := renderDailyReminder(cand.Username, cand.CampName, cand.Day, cand.PendingCount)
		outcome, err := j.dispatcher.Dispatch(ctx, DispatchRequest{
			UserID:  cand.UserID,
			CampID:  cand.CampID,
			Type:    notification.TypeDailyReminder,
			Title:   title,
			Message: message,
			Match:   notification.MatchNothing(),
		})
		if err != nil {
			sum.Failed++
			j.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": cand.UserID, "camp_id": cand.CampID,
			}).Error("daily reminder dispatch failed")
			continue
		}
		tally(&sum, outcome)
	}

	return sum
}

func tally(sum *Summary, outcome Outcome) {
	switch outcome {
	case OutcomeSent:
		sum.Sent++
	default:
		sum.Skipped++
	}
}
