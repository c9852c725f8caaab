package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"camp_notifier/internal/app"
	"camp_notifier/internal/infra/alert"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultPassTimeout = 5 * time.Minute

// JobScheduler registers recurring triggers in a fixed timezone and runs one
// runner pass per firing. Triggers fire independently of each other; only
// firings of the same job are mutually exclusive (a firing that lands while
// the previous pass is still running is skipped).
type JobScheduler struct {
	loc         *time.Location
	alert       alert.Notifier
	logger      *logrus.Entry
	passTimeout time.Duration

	mu         sync.Mutex
	triggers   []trigger
	guards     map[string]*int32
	cronEngine *cron.Cron
	running    bool
}

type trigger struct {
	spec string
	job  app.Job
}

func New(loc *time.Location, alertNotifier alert.Notifier, logger *logrus.Entry) *JobScheduler {
	return &JobScheduler{
		loc:         loc,
		alert:       alertNotifier,
		logger:      logger,
		passTimeout: defaultPassTimeout,
		guards:      make(map[string]*int32),
	}
}

// Register adds a trigger. The reminder job registers twice (AM and PM);
// both firings share one overlap guard because they share a name.
func (s *JobScheduler) Register(spec string, job app.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggers = append(s.triggers, trigger{spec: spec, job: job})
	if _, ok := s.guards[job.Name()]; !ok {
		s.guards[job.Name()] = new(int32)
	}
}

// Start registers all triggers exactly once. Calling Start while already
// running is a no-op with a logged notice.
func (s *JobScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Info("scheduler already running, start is a no-op")
		return nil
	}

	engine := cron.New(cron.WithLocation(s.loc))
	for _, t := range s.triggers {
		if _, err := engine.AddFunc(t.spec, s.wrap(t.job)); err != nil {
			return fmt.Errorf("could not register trigger %q for job %s: %w", t.spec, t.job.Name(), err)
		}
		s.logger.WithFields(logrus.Fields{"job": t.job.Name(), "spec": t.spec}).Info("trigger registered")
	}
	engine.Start()

	s.cronEngine = engine
	s.running = true
	s.logger.Info("scheduler started")
	return nil
}

// Stop cancels future firings and waits for in-flight passes to drain. A
// later Start re-registers the triggers.
func (s *JobScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	engine := s.cronEngine
	s.cronEngine = nil
	s.running = false
	s.mu.Unlock()

	<-engine.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Running reports whether triggers are currently registered and firing.
func (s *JobScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *JobScheduler) wrap(job app.Job) func() {
	return func() {
		guard := s.guardFor(job.Name())
		if !atomic.CompareAndSwapInt32(guard, 0, 1) {
			s.logger.WithField("job", job.Name()).Warn("previous pass still running, skipping this firing")
			return
		}
		defer atomic.StoreInt32(guard, 0)

		ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
		defer cancel()

		started := time.Now()
		sum := job.Run(ctx)
		s.logger.WithFields(logrus.Fields{
			"job":      job.Name(),
			"duration": time.Since(started).Round(time.Millisecond).String(),
			"sent":     sum.Sent,
			"skipped":  sum.Skipped,
			"failed":   sum.Failed,
		}).Info("job pass finished")

		s.alert.PassFinished(job.Name(), sum.Sent, sum.Skipped, sum.Failed)
	}
}

func (s *JobScheduler) guardFor(name string) *int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[name]
	if !ok {
		g = new(int32)
		s.guards[name] = g
	}
	return g
}
