package jobs

import (
	"time"

	"freighthub-backend/internal/config"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/repository"
	"freighthub-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    *Repositories
	notifier service.Notifier
	config   *config.Config
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Repositories holds the storage dependencies needed by jobs
type Repositories struct {
	Communities   repository.CommunityRepository
	Requests      repository.QuoteRequestRepository
	Responses     repository.QuoteResponseRepository
	Notifications repository.NotificationRepository
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, notifier service.Notifier, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		repos:    repos,
		notifier: notifier,
		config:   cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	start := time.Now()
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
		jr.metrics.ObserveJob(jobName, panicked, start)
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendJoinRequestReminders()
	jr.NotifyExpiringQuotes()
	jr.PurgeReadNotifications()
}
