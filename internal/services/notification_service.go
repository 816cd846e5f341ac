package services

import (
	"context"
	"fmt"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationEnqueuer hands a stored notification log to the async worker.
type NotificationEnqueuer interface {
	EnqueueNotification(ctx context.Context, tenantID, logID uuid.UUID) error
}

// ChannelDeliverer sends a message through the channel named on the log.
type ChannelDeliverer interface {
	Ready(setting *models.Setting, channel string) bool
	Deliver(ctx context.Context, setting *models.Setting, n *models.NotificationLog) error
}

// NotificationService handles all notification-related operations
type NotificationService interface {
	// Queue stores a PENDING log and enqueues it for delivery.
	Queue(ctx context.Context, tenantID uuid.UUID, n *models.Notification) (*models.NotificationLog, error)
	SendEmail(ctx context.Context, tenantID uuid.UUID, in *models.SendEmailInput) (*models.NotificationLog, error)
	SendWhatsApp(ctx context.Context, tenantID uuid.UUID, in *models.SendWhatsAppInput) (*models.NotificationLog, error)
	// SendTest delivers synchronously so the caller sees gateway errors.
	SendTest(ctx context.Context, tenantID uuid.UUID, channel, to string) (*models.NotificationLog, error)

	List(ctx context.Context, tenantID uuid.UUID, filter *models.NotificationFilter) (common.Page[*models.NotificationLog], error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error)
	Retry(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error)

	// Deliver is run by the worker for one log.
	Deliver(ctx context.Context, tenantID, id uuid.UUID) error
	RetryFailed(ctx context.Context, maxAttempts, limit int) (int, error)
}

type notificationService struct {
	logs      repositories.NotificationRepository
	settings  repositories.SettingRepository
	deliverer ChannelDeliverer
	enqueuer  NotificationEnqueuer
	logger    *zap.Logger
}

func NewNotificationService(logs repositories.NotificationRepository, settings repositories.SettingRepository, deliverer ChannelDeliverer, enqueuer NotificationEnqueuer, logger *zap.Logger) NotificationService {
	return &notificationService{
		logs:      logs,
		settings:  settings,
		deliverer: deliverer,
		enqueuer:  enqueuer,
		logger:    logger,
	}
}

// setting returns the tenant settings or nil, in which case server defaults apply.
func (s *notificationService) setting(ctx context.Context, tenantID uuid.UUID) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return setting, nil
}

func (s *notificationService) newLog(tenantID uuid.UUID, n *models.Notification) *models.NotificationLog {
	return &models.NotificationLog{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Channel:       n.Channel,
		Recipient:     n.Recipient,
		Subject:       n.Subject,
		Message:       n.Message,
		Status:        models.NotificationPending,
		ReferenceType: n.ReferenceType,
		ReferenceID:   n.ReferenceID,
	}
}

func (s *notificationService) Queue(ctx context.Context, tenantID uuid.UUID, n *models.Notification) (*models.NotificationLog, error) {
	setting, err := s.setting(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !s.deliverer.Ready(setting, n.Channel) {
		return nil, common.ErrChannelNotReady.WithDetails(map[string]string{"channel": n.Channel})
	}

	log := s.newLog(tenantID, n)
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if err := s.enqueuer.EnqueueNotification(ctx, tenantID, log.ID); err != nil {
		// the retry job picks FAILED logs up again
		s.logger.Error("failed to enqueue notification", zap.String("notification_id", log.ID.String()), zap.Error(err))
		if markErr := s.logs.MarkFailed(ctx, tenantID, log.ID, "enqueue: "+err.Error()); markErr != nil {
			s.logger.Error("failed to mark notification failed", zap.Error(markErr))
		}
		log.Status = models.NotificationFailed
	}
	return log, nil
}

func (s *notificationService) SendEmail(ctx context.Context, tenantID uuid.UUID, in *models.SendEmailInput) (*models.NotificationLog, error) {
	subject := in.Subject
	ref := models.RefManual
	return s.Queue(ctx, tenantID, &models.Notification{
		Channel:       models.ChannelEmail,
		Recipient:     in.To,
		Subject:       &subject,
		Message:       in.Message,
		ReferenceType: &ref,
	})
}

func (s *notificationService) SendWhatsApp(ctx context.Context, tenantID uuid.UUID, in *models.SendWhatsAppInput) (*models.NotificationLog, error) {
	ref := models.RefManual
	return s.Queue(ctx, tenantID, &models.Notification{
		Channel:       models.ChannelWhatsApp,
		Recipient:     in.Phone,
		Message:       in.Message,
		ReferenceType: &ref,
	})
}

func (s *notificationService) SendTest(ctx context.Context, tenantID uuid.UUID, channel, to string) (*models.NotificationLog, error) {
	setting, err := s.setting(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !s.deliverer.Ready(setting, channel) {
		return nil, common.ErrChannelNotReady.WithDetails(map[string]string{"channel": channel})
	}

	subject := "StoreOps - mensagem de teste"
	log := s.newLog(tenantID, &models.Notification{
		Channel:   channel,
		Recipient: to,
		Subject:   &subject,
		Message:   "Esta é uma mensagem de teste. Se você a recebeu, o canal está configurado corretamente.",
	})
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	if err := s.send(ctx, setting, log); err != nil {
		return log, common.ErrChannelNotReady.WithMessage(err.Error()).WithDetails(map[string]string{"channel": channel})
	}
	return log, nil
}

func (s *notificationService) List(ctx context.Context, tenantID uuid.UUID, filter *models.NotificationFilter) (common.Page[*models.NotificationLog], error) {
	logs, total, err := s.logs.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.NotificationLog]{}, err
	}
	return common.NewPage(logs, total, filter.Limit, filter.Offset), nil
}

func (s *notificationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error) {
	return s.logs.GetByID(ctx, tenantID, id)
}

func (s *notificationService) Retry(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error) {
	log, err := s.logs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if log.Status != models.NotificationFailed {
		return nil, common.ErrInvalidState.WithMessage("only failed notifications can be retried")
	}
	if err := s.logs.ResetPending(ctx, tenantID, id); err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.ErrConflict
		}
		return nil, err
	}
	if err := s.enqueuer.EnqueueNotification(ctx, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to enqueue notification: %w", err)
	}
	log.Status = models.NotificationPending
	log.Error = nil
	return log, nil
}

func (s *notificationService) Deliver(ctx context.Context, tenantID, id uuid.UUID) error {
	log, err := s.logs.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if log.Status == models.NotificationSent {
		return nil
	}
	setting, err := s.setting(ctx, tenantID)
	if err != nil {
		return err
	}
	return s.send(ctx, setting, log)
}

// send delivers log and records the outcome on it.
func (s *notificationService) send(ctx context.Context, setting *models.Setting, log *models.NotificationLog) error {
	sendErr := s.deliverer.Deliver(ctx, setting, log)
	log.Attempts++
	if sendErr != nil {
		reason := sendErr.Error()
		log.Status = models.NotificationFailed
		log.Error = &reason
		if err := s.logs.MarkFailed(ctx, log.TenantID, log.ID, reason); err != nil {
			s.logger.Error("failed to mark notification failed", zap.String("notification_id", log.ID.String()), zap.Error(err))
		}
		s.logger.Warn("notification delivery failed",
			zap.String("notification_id", log.ID.String()),
			zap.String("channel", log.Channel),
			zap.Int("attempts", log.Attempts),
			zap.Error(sendErr))
		return sendErr
	}

	log.Status = models.NotificationSent
	log.Error = nil
	if err := s.logs.MarkSent(ctx, log.TenantID, log.ID); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

func (s *notificationService) RetryFailed(ctx context.Context, maxAttempts, limit int) (int, error) {
	logs, err := s.logs.ListRetryable(ctx, maxAttempts, limit)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, log := range logs {
		if err := s.logs.ResetPending(ctx, log.TenantID, log.ID); err != nil {
			s.logger.Warn("failed to reset notification", zap.String("notification_id", log.ID.String()), zap.Error(err))
			continue
		}
		if err := s.enqueuer.EnqueueNotification(ctx, log.TenantID, log.ID); err != nil {
			s.logger.Error("failed to re-enqueue notification", zap.String("notification_id", log.ID.String()), zap.Error(err))
			_ = s.logs.MarkFailed(ctx, log.TenantID, log.ID, "enqueue: "+err.Error())
			continue
		}
		queued++
	}
	return queued, nil
}
