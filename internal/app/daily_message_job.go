package app

import (
	"context"
	"time"

	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// DailyMessageJob broadcasts admin-authored messages scheduled for each
// running camp's current business day to every enrolled participant. The
// notification category is the dispatcher's resolved broadcast type
// (daily_message, or admin_message on pre-migration schemas).
type DailyMessageJob struct {
	eligibility *EligibilityService
	dispatcher  *DispatchService
	campRepo    camp.Repository
	logger      *logrus.Entry
	now         func() time.Time
}

func NewDailyMessageJob(
	eligibility *EligibilityService,
	dispatcher *DispatchService,
	campRepo camp.Repository,
	logger *logrus.Entry,
) *DailyMessageJob {
	return &DailyMessageJob{
		eligibility: eligibility,
		dispatcher:  dispatcher,
		campRepo:    campRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (j *DailyMessageJob) Name() string { return "scheduled_daily_message" }

func (j *DailyMessageJob) Run(ctx context.Context) Summary {
	var sum Summary

	days, err := j.eligibility.RunningCampsToday(ctx, j.now())
	if err != nil {
		j.logger.WithError(err).Error("running-camps query failed, zero broadcasts this cycle")
		return sum
	}

	for _, cd := range days {
		messages, err := j.campRepo.ListScheduledMessages(ctx, cd.Camp.ID, cd.Day)
		if err != nil {
			j.logger.WithError(err).WithField("camp_id", cd.Camp.ID).Error("scheduled-message query failed, skipping camp this cycle")
			continue
		}
		if len(messages) == 0 {
			continue
		}

		participants, err := j.campRepo.ListEnrolledParticipants(ctx, cd.Camp.ID)
		if err != nil {
			j.logger.WithError(err).WithField("camp_id", cd.Camp.ID).Error("participant query failed, skipping camp this cycle")
			continue
		}

		for _, m := range messages {
			title, body := renderScheduledMessage(m, cd.Day, cd.Camp.Name)
			for _, p := range participants {
				outcome, err := j.dispatcher.Dispatch(ctx, DispatchRequest{
					UserID:   p.UserID,
					CampID:   cd.Camp.ID,
					Type:     j.dispatcher.BroadcastType(),
					Title:    title,
					Message:  body,
					Match:    notification.MatchNothing(),
					DedupKey: notification.DailyMessageKey(cd.Camp.ID, m.ID, cd.Day),
				})
				if err != nil {
					sum.Failed++
					j.logger.WithError(err).WithFields(logrus.Fields{
						"user_id": p.UserID, "camp_id": cd.Camp.ID, "message_id": m.ID,
					}).Error("daily message dispatch failed")
					continue
				}
				tally(&sum, outcome)
			}
		}
	}

	return sum
}
