package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Overdue marks issued invoices past their due date.
type Overdue interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

type LowStockAlerter interface {
	LowStock(ctx context.Context) (int, error)
}

type InvitationExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

type NotificationRetrier interface {
	RetryFailed(ctx context.Context, maxAttempts, limit int) (int, error)
}

type DashboardRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Intervals configures how often each job runs.
type Intervals struct {
	Overdue           time.Duration
	LowStock          time.Duration
	Invitation        time.Duration
	Notification      time.Duration
	Dashboard         time.Duration
	MaxNotifyAttempts int
}

// Jobs groups what the scheduler runs.
type Jobs struct {
	Invoices      Overdue
	Alerts        LowStockAlerter
	Invitations   InvitationExpirer
	Notifications NotificationRetrier
	Dashboard     DashboardRefresher
}

const (
	jobOverdueInvoices   = "overdue-invoices"
	jobLowStockAlerts    = "low-stock-alerts"
	jobInvitationExpiry  = "invitation-expiry"
	jobNotificationRetry = "notification-retry"
	jobDashboardRefresh  = "dashboard-refresh"

	retryBatchSize = 100
	jobTimeout     = 2 * time.Minute
)

// JobScheduler manages background jobs for distributed environment
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobs      Jobs
	intervals Intervals
	logger    *zap.Logger
	jobIDs    map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a scheduler. A nil locker runs every job on every instance.
func NewJobScheduler(jobs Jobs, intervals Intervals, locker gocron.Locker, logger *zap.Logger) (*JobScheduler, error) {
	opts := []gocron.SchedulerOption{gocron.WithLocation(time.UTC)}
	if locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(locker))
	}
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if intervals.MaxNotifyAttempts <= 0 {
		intervals.MaxNotifyAttempts = 3
	}

	js := &JobScheduler{
		scheduler: scheduler,
		jobs:      jobs,
		intervals: intervals,
		logger:    logger.Named("scheduler"),
		jobIDs:    make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobIDs)))
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	entries := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context) error
	}{
		{jobOverdueInvoices, js.intervals.Overdue, js.markOverdueInvoices},
		{jobLowStockAlerts, js.intervals.LowStock, js.sendLowStockAlerts},
		{jobInvitationExpiry, js.intervals.Invitation, js.expireInvitations},
		{jobNotificationRetry, js.intervals.Notification, js.retryNotifications},
		{jobDashboardRefresh, js.intervals.Dashboard, js.refreshDashboards},
	}

	for _, e := range entries {
		if e.interval <= 0 {
			js.logger.Info("job disabled", zap.String("job", e.name))
			continue
		}
		if err := js.AddJob(e.name, e.interval, e.fn); err != nil {
			return err
		}
	}
	return nil
}

// AddJob schedules fn every interval. Runs never overlap.
func (js *JobScheduler) AddJob(name string, interval time.Duration, fn func(context.Context) error) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(js.run(name, fn)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	js.jobIDs[name] = job
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobIDs[name]; exists {
		delete(js.jobIDs, name)
		return js.scheduler.RemoveJob(job.ID())
	}
	return nil
}

// GetJobStatus returns the registered job names and their next run.
func (js *JobScheduler) GetJobStatus() map[string]time.Time {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]time.Time, len(js.jobIDs))
	for name, job := range js.jobIDs {
		next, _ := job.NextRun()
		status[name] = next
	}
	return status
}

// run wraps fn with a timeout and logging.
func (js *JobScheduler) run(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			js.logger.Error("job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
			return
		}
		js.logger.Debug("job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

func (js *JobScheduler) markOverdueInvoices(ctx context.Context) error {
	n, err := js.jobs.Invoices.MarkOverdue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("invoices marked overdue", zap.Int64("count", n))
	}
	return nil
}

func (js *JobScheduler) sendLowStockAlerts(ctx context.Context) error {
	n, err := js.jobs.Alerts.LowStock(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("low stock alerts sent", zap.Int("tenants", n))
	}
	return nil
}

func (js *JobScheduler) expireInvitations(ctx context.Context) error {
	n, err := js.jobs.Invitations.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("invitations expired", zap.Int64("count", n))
	}
	return nil
}

func (js *JobScheduler) retryNotifications(ctx context.Context) error {
	n, err := js.jobs.Notifications.RetryFailed(ctx, js.intervals.MaxNotifyAttempts, retryBatchSize)
	if err != nil {
		return err
	}
	if n > 0 {
		js.logger.Info("failed notifications re-enqueued", zap.Int("count", n))
	}
	return nil
}

func (js *JobScheduler) refreshDashboards(ctx context.Context) error {
	n, err := js.jobs.Dashboard.Refresh(ctx)
	if err != nil {
		return err
	}
	js.logger.Debug("dashboard caches dropped", zap.Int("keys", n))
	return nil
}
