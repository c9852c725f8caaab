package app

import (
	"context"
	"fmt"
	"time"

	"camp_notifier/internal/domain/camp"

	"github.com/sirupsen/logrus"
)

// CampDay pairs a running camp with its resolved business day.
type CampDay struct {
	Camp *camp.Camp
	Day  int
}

// EligibilityService answers the runners' candidate queries by composing
// the calendar resolver with the camp repository. Callers treat any error
// as "zero candidates this cycle"; the next trigger re-attempts naturally.
type EligibilityService struct {
	campRepo camp.Repository
	cal      *camp.Calendar
	logger   *logrus.Entry
}

func NewEligibilityService(campRepo camp.Repository, cal *camp.Calendar, logger *logrus.Entry) *EligibilityService {
	return &EligibilityService{campRepo: campRepo, cal: cal, logger: logger}
}

func (s *EligibilityService) Calendar() *camp.Calendar {
	return s.cal
}

func (s *EligibilityService) CampsDueForAutoStart(ctx context.Context, now time.Time) ([]*camp.Camp, error) {
	return s.campRepo.ListDueForAutoStart(ctx, s.cal.Today(now))
}

func (s *EligibilityService) CampsPastDuration(ctx context.Context, now time.Time) ([]*camp.Camp, error) {
	return s.campRepo.ListActivePastDuration(ctx, s.cal.Today(now))
}

func (s *EligibilityService) EndedCamps(ctx context.Context, now time.Time) ([]*camp.Camp, error) {
	return s.campRepo.ListEndedCamps(ctx, s.cal.Today(now))
}

// RunningCampsToday returns active/reopened camps whose window contains the
// instant, each with its business day resolved.
func (s *EligibilityService) RunningCampsToday(ctx context.Context, now time.Time) ([]CampDay, error) {
	camps, err := s.campRepo.ListRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing running camps: %w", err)
	}
	days := make([]CampDay, 0, len(camps))
	for _, c := range camps {
		if !s.cal.IsRunning(c, now) {
			continue
		}
		days = append(days, CampDay{Camp: c, Day: s.cal.BusinessDay(c, now)})
	}
	return days, nil
}

// UsersWithPendingTasksToday joins running camps against each camp's
// current-day tasks and keeps participants with pending work. A failing
// per-camp query is logged and contributes zero candidates without
// stopping the remaining camps.
func (s *EligibilityService) UsersWithPendingTasksToday(ctx context.Context, now time.Time) ([]camp.ReminderCandidate, error) {
	days, err := s.RunningCampsToday(ctx, now)
	if err != nil {
		return nil, err
	}

	candidates := make([]camp.ReminderCandidate, 0)
	for _, cd := range days {
		pending, err := s.campRepo.ListParticipantsWithPendingTasks(ctx, cd.Camp.ID, cd.Day)
		if err != nil {
			s.logger.WithError(err).WithField("camp_id", cd.Camp.ID).Error("pending-task query failed, skipping camp this cycle")
			continue
		}
		for _, p := range pending {
			candidates = append(candidates, camp.ReminderCandidate{
				PendingCandidate: p,
				CampID:           cd.Camp.ID,
				CampName:         cd.Camp.Name,
				Day:              cd.Day,
			})
		}
	}
	return candidates, nil
}
