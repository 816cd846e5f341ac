package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) MarkOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJobs) LowStock(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockJobs) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJobs) RetryFailed(ctx context.Context, maxAttempts, limit int) (int, error) {
	args := m.Called(ctx, maxAttempts, limit)
	return args.Int(0), args.Error(1)
}

func (m *mockJobs) Refresh(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type JobSchedulerTestSuite struct {
	suite.Suite
	jobs      *mockJobs
	scheduler *JobScheduler
	ctx       context.Context
}

func (suite *JobSchedulerTestSuite) SetupTest() {
	suite.jobs = new(mockJobs)
	js, err := NewJobScheduler(Jobs{
		Invoices:      suite.jobs,
		Alerts:        suite.jobs,
		Invitations:   suite.jobs,
		Notifications: suite.jobs,
		Dashboard:     suite.jobs,
	}, Intervals{
		Overdue:      time.Hour,
		LowStock:     30 * time.Minute,
		Invitation:   time.Hour,
		Notification: 5 * time.Minute,
		Dashboard:    0,
	}, nil, zap.NewNop())
	suite.Require().NoError(err)
	suite.scheduler = js
	suite.scheduler.Start()
	suite.ctx = context.Background()
}

func (suite *JobSchedulerTestSuite) TearDownTest() {
	suite.NoError(suite.scheduler.Stop())
	suite.jobs.AssertExpectations(suite.T())
}

func TestJobSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(JobSchedulerTestSuite))
}

func (suite *JobSchedulerTestSuite) TestRegistersEnabledJobs() {
	status := suite.scheduler.GetJobStatus()

	suite.Len(status, 4)
	suite.Contains(status, jobOverdueInvoices)
	suite.Contains(status, jobNotificationRetry)
	suite.NotContains(status, jobDashboardRefresh)
}

func (suite *JobSchedulerTestSuite) TestRemoveJob() {
	suite.NoError(suite.scheduler.RemoveJob(jobLowStockAlerts))
	suite.NotContains(suite.scheduler.GetJobStatus(), jobLowStockAlerts)
	suite.NoError(suite.scheduler.RemoveJob("unknown"))
}

func (suite *JobSchedulerTestSuite) TestRetryNotificationsUsesMaxAttempts() {
	suite.jobs.On("RetryFailed", suite.ctx, 3, retryBatchSize).Return(2, nil)

	suite.NoError(suite.scheduler.retryNotifications(suite.ctx))
}

func (suite *JobSchedulerTestSuite) TestJobErrorsPropagate() {
	suite.jobs.On("MarkOverdue", suite.ctx).Return(int64(0), errors.New("db down"))
	suite.jobs.On("ExpireStale", suite.ctx).Return(int64(3), nil)
	suite.jobs.On("LowStock", suite.ctx).Return(1, nil)

	suite.Error(suite.scheduler.markOverdueInvoices(suite.ctx))
	suite.NoError(suite.scheduler.expireInvitations(suite.ctx))
	suite.NoError(suite.scheduler.sendLowStockAlerts(suite.ctx))
}

func TestRunRecoversFromJobError(t *testing.T) {
	js := &JobScheduler{logger: zap.NewNop()}
	called := false

	js.run("noop", func(ctx context.Context) error {
		called = true
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		return errors.New("boom")
	})()

	assert.True(t, called)
}
