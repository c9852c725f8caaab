package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camp_notifier/internal/app"
	"camp_notifier/internal/domain/camp"
	domainEmail "camp_notifier/internal/domain/email"
	"camp_notifier/internal/infra/alert"
	"camp_notifier/internal/infra/config"
	idb "camp_notifier/internal/infra/database"
	infraEmail "camp_notifier/internal/infra/email"
	"camp_notifier/internal/infra/logger"
	"camp_notifier/internal/infra/ratelimit"
	"camp_notifier/internal/infra/scheduler"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLog := logger.Component("main")
	mainLog.Infof("configuration loaded, environment=%s timezone=%s", cfg.Environment, cfg.ReferenceTimezone)

	loc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		mainLog.Fatalf("invalid reference timezone %q: %v", cfg.ReferenceTimezone, err)
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL, idb.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		mainLog.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()
	mainLog.Info("database connection established")

	campRepo := idb.NewPostgresCampRepository(db)
	ledger := idb.NewPostgresNotificationRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	activityRepo := idb.NewPostgresActivityRepository(db)

	var emailClient domainEmail.Client
	if cfg.SMTPHost != "" {
		emailClient = infraEmail.NewGomailClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		mainLog.Infof("email channel enabled via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		emailClient = infraEmail.NewNoopClient(logger.Component("email"))
		mainLog.Warn("SMTP_HOST not set, email channel disabled")
	}

	emailLimiter := ratelimit.New(
		rate.Limit(float64(cfg.EmailRatePerMinute)/60.0),
		cfg.EmailRateBurst,
		10000,
		time.Hour,
	)

	var opsAlert alert.Notifier = alert.NoopNotifier{}
	if cfg.TelegramToken != "" && cfg.OpsChatID != 0 {
		bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
		if err != nil {
			mainLog.Warnf("could not create ops alert bot, alerts disabled: %v", err)
		} else {
			opsAlert = alert.NewTelegramNotifier(bot, cfg.OpsChatID, logger.Component("alert"))
			mainLog.Info("ops alerting enabled")
		}
	}

	cal := camp.NewCalendar(loc)
	eligibility := app.NewEligibilityService(campRepo, cal, logger.Component("eligibility"))
	dispatcher := app.NewDispatchService(ledger, settingsRepo, emailLimiter, logger.Component("dispatch"))

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 10*time.Second)
	dispatcher.ResolveBroadcastType(probeCtx)
	cancelProbe()
	mainLog.Infof("broadcast category resolved to %s", dispatcher.BroadcastType())

	reminderJob := app.NewReminderJob(eligibility, dispatcher, logger.Component("reminder_job"))
	finishedJob := app.NewFinishedCampJob(eligibility, dispatcher, campRepo, emailClient, logger.Component("finished_job"))
	autoStartJob := app.NewAutoStartJob(eligibility, dispatcher, campRepo, emailClient, logger.Component("autostart_job"))
	dailyMessageJob := app.NewDailyMessageJob(eligibility, dispatcher, campRepo, logger.Component("daily_message_job"))
	digestJob := app.NewFriendsDigestJob(dispatcher, campRepo, activityRepo, cal, logger.Component("digest_job"))

	sched := scheduler.New(loc, opsAlert, logger.Component("scheduler"))
	sched.Register(cfg.CronReminderAM, reminderJob)
	sched.Register(cfg.CronReminderPM, reminderJob)
	sched.Register(cfg.CronFinishedSweep, finishedJob)
	sched.Register(cfg.CronAutoStart, autoStartJob)
	sched.Register(cfg.CronDailyMessage, dailyMessageJob)
	sched.Register(cfg.CronFriendsDigest, digestJob)

	if err := sched.Start(); err != nil {
		mainLog.Fatalf("could not start scheduler: %v", err)
	}
	mainLog.Info("application setup complete, scheduler is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLog.Info("shutting down")
	sched.Stop()
	mainLog.Info("application shut down gracefully")
}
