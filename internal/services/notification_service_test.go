package services

import (
	"context"
	"errors"
	"testing"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type NotificationServiceTestSuite struct {
	suite.Suite
	logs      *MockNotificationRepository
	settings  *MockSettingRepository
	deliverer *MockDeliverer
	enqueuer  *MockEnqueuer
	service   NotificationService
	ctx       context.Context
	tenantID  uuid.UUID
	setting   *models.Setting
}

func (suite *NotificationServiceTestSuite) SetupTest() {
	suite.logs = new(MockNotificationRepository)
	suite.settings = new(MockSettingRepository)
	suite.deliverer = new(MockDeliverer)
	suite.enqueuer = new(MockEnqueuer)
	suite.service = NewNotificationService(suite.logs, suite.settings, suite.deliverer, suite.enqueuer, zap.NewNop())
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.setting = models.DefaultSetting(suite.tenantID, "Loja")
}

func (suite *NotificationServiceTestSuite) TearDownTest() {
	suite.logs.AssertExpectations(suite.T())
	suite.settings.AssertExpectations(suite.T())
	suite.deliverer.AssertExpectations(suite.T())
	suite.enqueuer.AssertExpectations(suite.T())
}

func TestNotificationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceTestSuite))
}

func (suite *NotificationServiceTestSuite) TestSendEmail_QueuesPendingLog() {
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(suite.setting, nil)
	suite.deliverer.On("Ready", suite.setting, models.ChannelEmail).Return(true)
	suite.logs.On("Create", suite.ctx, mock.MatchedBy(func(l *models.NotificationLog) bool {
		return l.Status == models.NotificationPending && l.Recipient == "ana@loja.com" && *l.Subject == "Oi"
	})).Return(nil)
	suite.enqueuer.On("EnqueueNotification", suite.ctx, suite.tenantID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	log, err := suite.service.SendEmail(suite.ctx, suite.tenantID, &models.SendEmailInput{To: "ana@loja.com", Subject: "Oi", Message: "Olá"})

	suite.NoError(err)
	suite.Equal(models.NotificationPending, log.Status)
}

func (suite *NotificationServiceTestSuite) TestQueue_ChannelNotConfigured() {
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(nil, pgx.ErrNoRows)
	suite.deliverer.On("Ready", (*models.Setting)(nil), models.ChannelWhatsApp).Return(false)

	_, err := suite.service.SendWhatsApp(suite.ctx, suite.tenantID, &models.SendWhatsAppInput{Phone: "11999998888", Message: "Olá"})

	suite.ErrorIs(err, common.ErrChannelNotReady)
}

func (suite *NotificationServiceTestSuite) TestQueue_EnqueueFailureMarksFailed() {
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(suite.setting, nil)
	suite.deliverer.On("Ready", suite.setting, models.ChannelEmail).Return(true)
	suite.logs.On("Create", suite.ctx, mock.Anything).Return(nil)
	suite.enqueuer.On("EnqueueNotification", suite.ctx, suite.tenantID, mock.Anything).Return(errors.New("redis down"))
	suite.logs.On("MarkFailed", suite.ctx, suite.tenantID, mock.Anything, "enqueue: redis down").Return(nil)

	log, err := suite.service.Queue(suite.ctx, suite.tenantID, &models.Notification{Channel: models.ChannelEmail, Recipient: "a@b.com", Message: "x"})

	suite.NoError(err)
	suite.Equal(models.NotificationFailed, log.Status)
}

func (suite *NotificationServiceTestSuite) TestDeliver_MarksSent() {
	id := uuid.New()
	log := &models.NotificationLog{ID: id, TenantID: suite.tenantID, Channel: models.ChannelEmail, Status: models.NotificationPending}
	suite.logs.On("GetByID", suite.ctx, suite.tenantID, id).Return(log, nil)
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(suite.setting, nil)
	suite.deliverer.On("Deliver", suite.ctx, suite.setting, log).Return(nil)
	suite.logs.On("MarkSent", suite.ctx, suite.tenantID, id).Return(nil)

	suite.NoError(suite.service.Deliver(suite.ctx, suite.tenantID, id))
	suite.Equal(1, log.Attempts)
	suite.Equal(models.NotificationSent, log.Status)
}

func (suite *NotificationServiceTestSuite) TestDeliver_FailureIsRecorded() {
	id := uuid.New()
	log := &models.NotificationLog{ID: id, TenantID: suite.tenantID, Channel: models.ChannelWhatsApp, Status: models.NotificationPending}
	suite.logs.On("GetByID", suite.ctx, suite.tenantID, id).Return(log, nil)
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(suite.setting, nil)
	suite.deliverer.On("Deliver", suite.ctx, suite.setting, log).Return(errors.New("gateway returned 503"))
	suite.logs.On("MarkFailed", suite.ctx, suite.tenantID, id, "gateway returned 503").Return(nil)

	err := suite.service.Deliver(suite.ctx, suite.tenantID, id)

	suite.Error(err)
	suite.Equal(models.NotificationFailed, log.Status)
}

func (suite *NotificationServiceTestSuite) TestDeliver_SkipsSent() {
	id := uuid.New()
	suite.logs.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.NotificationLog{ID: id, Status: models.NotificationSent}, nil)

	suite.NoError(suite.service.Deliver(suite.ctx, suite.tenantID, id))
}

func (suite *NotificationServiceTestSuite) TestRetry_OnlyFailed() {
	id := uuid.New()
	suite.logs.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.NotificationLog{ID: id, Status: models.NotificationPending}, nil)

	_, err := suite.service.Retry(suite.ctx, suite.tenantID, id)

	suite.ErrorIs(err, common.ErrInvalidState)
}

func (suite *NotificationServiceTestSuite) TestRetryFailed_RequeuesEach() {
	a := &models.NotificationLog{ID: uuid.New(), TenantID: suite.tenantID}
	b := &models.NotificationLog{ID: uuid.New(), TenantID: suite.tenantID}
	suite.logs.On("ListRetryable", suite.ctx, 3, 100).Return([]*models.NotificationLog{a, b}, nil)
	suite.logs.On("ResetPending", suite.ctx, suite.tenantID, a.ID).Return(nil)
	suite.logs.On("ResetPending", suite.ctx, suite.tenantID, b.ID).Return(errors.New("gone"))
	suite.enqueuer.On("EnqueueNotification", suite.ctx, suite.tenantID, a.ID).Return(nil)

	n, err := suite.service.RetryFailed(suite.ctx, 3, 100)

	suite.NoError(err)
	suite.Equal(1, n)
}
