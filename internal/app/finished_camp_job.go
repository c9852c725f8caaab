package app

import (
	"context"
	"time"

	"camp_notifier/internal/domain/camp"
	"camp_notifier/internal/domain/email"
	"camp_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// FinishedCampJob closes out camps whose duration has elapsed: it flips
// active camps past their end date to completed, then awards every enrolled
// participant of an ended camp a one-time "camp finished" achievement.
type FinishedCampJob struct {
	eligibility *EligibilityService
	dispatcher  *DispatchService
	campRepo    camp.Repository
	email       email.Client
	logger      *logrus.Entry
	now         func() time.Time
}

func NewFinishedCampJob(
	eligibility *EligibilityService,
	dispatcher *DispatchService,
	campRepo camp.Repository,
	emailClient email.Client,
	logger *logrus.Entry,
) *FinishedCampJob {
	return &FinishedCampJob{
		eligibility: eligibility,
		dispatcher:  dispatcher,
		campRepo:    campRepo,
		email:       emailClient,
		logger:      logger,
		now:         time.Now,
	}
}

func (j *FinishedCampJob) Name() string { return "finished_camp_sweep" }

func (j *FinishedCampJob) Run(ctx context.Context) Summary {
	var sum Summary
	now := j.now()

	j.completeElapsedCamps(ctx, now, &sum)
	j.awardFinishedAchievements(ctx, now, &sum)

	return sum
}

func (j *FinishedCampJob) completeElapsedCamps(ctx context.Context, now time.Time, sum *Summary) {
	elapsed, err := j.eligibility.CampsPastDuration(ctx, now)
	if err != nil {
		j.logger.WithError(err).Error("past-duration query failed, zero transitions this cycle")
		return
	}
	for _, c := range elapsed {
		if err := j.campRepo.UpdateStatus(ctx, c.ID, camp.StatusCompleted); err != nil {
			sum.Failed++
			j.logger.WithError(err).WithField("camp_id", c.ID).Error("failed to mark camp completed")
			continue
		}
		j.logger.WithFields(logrus.Fields{"camp_id": c.ID, "camp": c.Name}).Info("camp marked completed")
	}
}

func (j *FinishedCampJob) awardFinishedAchievements(ctx context.Context, now time.Time, sum *Summary) {
	ended, err := j.eligibility.EndedCamps(ctx, now)
	if err != nil {
		j.logger.WithError(err).Error("ended-camps query failed, zero achievements this cycle")
		return
	}

	for _, c := range ended {
		participants, err := j.campRepo.ListEnrolledParticipants(ctx, c.ID)
		if err != nil {
			j.logger.WithError(err).WithField("camp_id", c.ID).Error("participant query failed, skipping camp this cycle")
			continue
		}
		for _, p := range participants {
			title, message := renderCampFinished(p.Username, c.Name)
			outcome, err := j.dispatcher.Dispatch(ctx, DispatchRequest{
				UserID:   p.UserID,
				CampID:   c.ID,
				Type:     notification.TypeAchievement,
				Title:    title,
				Message:  message,
				Match:    notification.MatchTitleSubstring(campFinishedTitlePattern),
				DedupKey: notification.CampFinishedKey(c.ID),
				SendEmail: func() error {
					return j.email.SendCampFinishedEmail(p.Email, p.Username, c.Name, c.ID)
				},
			})
			if err != nil {
				sum.Failed++
				j.logger.WithError(err).WithFields(logrus.Fields{
					"user_id": p.UserID, "camp_id": c.ID,
				}).Error("camp-finished achievement dispatch failed")
				continue
			}
			tally(sum, outcome)
		}
	}
}
