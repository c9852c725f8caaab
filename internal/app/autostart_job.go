package app

import (
	"context"
	"time"

	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/email"
	"camp_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// AutoStartJob activates early-registration camps flagged for auto start
// whose start_date has arrived, then announces the start to every enrolled
// participant. The announcement always attempts the email channel, not just
// the ledger.
type AutoStartJob struct {
	eligibility *EligibilityService
	dispatcher  *DispatchService
	campRepo    camp.Repository
	email       email.Client
	logger      *logrus.Entry
	now         func() time.Time
}

func NewAutoStartJob(
	eligibility *EligibilityService,
	dispatcher *DispatchService,
	campRepo camp.Repository,
	emailClient email.Client,
	logger *logrus.Entry,
) *AutoStartJob {
	return &AutoStartJob{
		eligibility: eligibility,
		dispatcher:  dispatcher,
		campRepo:    campRepo,
		email:       emailClient,
		logger:      logger,
		now:         time.Now,
	}
}

func (j *AutoStartJob) Name() string { return "auto_start_sweep" }

func (j *AutoStartJob) Run(ctx context.Context) Summary {
	var sum Summary

	due, err := j.eligibility.CampsDueForAutoStart(ctx, j.now())
	if err != nil {
		j.logger.WithError(err).Error("auto-start query failed, zero candidates this cycle")
		return sum
	}

	for _, c := range due {
		if err := j.campRepo.UpdateStatus(ctx, c.ID, camp.StatusActive); err != nil {
			sum.Failed++
			j.logger.WithError(err).WithField("camp_id", c.ID).Error("failed to activate camp")
			continue
		}
		j.logger.WithFields(logrus.Fields{"camp_id": c.ID, "camp": c.Name}).Info("camp auto-started")

		participants, err := j.campRepo.ListEnrolledParticipants(ctx, c.ID)
		if err != nil {
			j.logger.WithError(err).WithField("camp_id", c.ID).Error("participant query failed, no start announcements this cycle")
			continue
		}
		for _, p := range participants {
			title, message := renderCampStarted(p.Username, c.Name)
			outcome, err := j.dispatcher.Dispatch(ctx, DispatchRequest{
				UserID:   p.UserID,
				CampID:   c.ID,
				Type:     notification.TypeAdminMessage,
				Title:    title,
				Message:  message,
				Match:    notification.MatchExactTitle(title),
				DedupKey: notification.CampStartedKey(c.ID),
				SendEmail: func() error {
					return j.email.SendCampStartedEmail(p.Email, p.Username, c.Name, c.ID)
				},
			})
			if err != nil {
				sum.Failed++
				j.logger.WithError(err).WithFields(logrus.Fields{
					"user_id": p.UserID, "camp_id": c.ID,
				}).Error("camp-started announcement dispatch failed")
				continue
			}
			tally(&sum, outcome)
		}
	}

	return sum
}
