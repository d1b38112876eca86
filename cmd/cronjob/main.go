package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"freighthub-backend/internal/config"
	"freighthub-backend/internal/jobs"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/scheduler"
	"freighthub-backend/internal/service"
	"freighthub-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'notify-expiring-quotes', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FreightHub cronjob runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, *runOnce)
	stop()
	if err != nil {
		logger.Error("Cronjob runner failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one named job, or schedules all of them until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, runOnce string) error {
	// Initialize storage
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage (driver %s): %w", cfg.Database.Driver, err)
	}
	defer backend.Close()

	// Initialize Services
	m := metrics.New()
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	var pushSvc service.PushService = service.NoopPushService{}
	if cfg.Firebase.Enabled {
		pushSvc, err = service.NewPushService(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to initialize push notifications: %w", err)
		}
	}
	notifier := service.NewNotifier(backend.Notifications, backend.Users, emailSvc, pushSvc, m)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Repositories{
		Communities:   backend.Communities,
		Requests:      backend.Requests,
		Responses:     backend.Responses,
		Notifications: backend.Notifications,
	}, notifier, cfg, m)

	// Check if running a single job
	if runOnce != "" {
		logger.Info("Running job once", "job", runOnce)
		if err := runJobOnce(jobRunner, runOnce); err != nil {
			return fmt.Errorf("unknown job %q, %w", runOnce, err)
		}
		logger.Info("Job execution completed", "job", runOnce)
		return nil
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "jobs", cronScheduler.Entries())

	// Wait for interrupt signal
	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
	return nil
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	switch jobName {
	case "send-join-request-reminders":
		jobRunner.SendJoinRequestReminders()
	case "notify-expiring-quotes":
		jobRunner.NotifyExpiringQuotes()
	case "purge-read-notifications":
		jobRunner.PurgeReadNotifications()
	case "all":
		jobRunner.RunAll()
	default:
		return errors.New("available jobs:\n" +
			"  - send-join-request-reminders\n" +
			"  - notify-expiring-quotes\n" +
			"  - purge-read-notifications\n" +
			"  - all\n")
	}
	return nil
}
