package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storeops/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task type definitions
const (
	TypeNotificationSend = "notification:send"
)

const (
	QueueNotifications = "notifications"

	notificationTimeout  = 60 * time.Second
	notificationMaxRetry = 2
)

// NotificationPayload names the NotificationLog a task delivers.
type NotificationPayload struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	NotificationID uuid.UUID `json:"notification_id"`
}

// NewNotificationTask creates a new notification delivery task
func NewNotificationTask(tenantID, notificationID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(NotificationPayload{TenantID: tenantID, NotificationID: notificationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationSend, data,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(notificationMaxRetry),
		asynq.Timeout(notificationTimeout),
	), nil
}

// NotificationDeliverer sends one stored notification and records the outcome.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, tenantID, id uuid.UUID) error
}

type NotificationHandler struct {
	deliverer NotificationDeliverer
	logger    *zap.Logger
}

func NewNotificationHandler(deliverer NotificationDeliverer, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{deliverer: deliverer, logger: logger}
}

// ProcessTask delivers the notification. Delivery failures are already recorded on the log and
// picked up by the retry job, so only infrastructure errors are handed back to asynq.
func (h *NotificationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload NotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %w: %w", err, asynq.SkipRetry)
	}

	log := h.logger.With(
		zap.String("tenant_id", payload.TenantID.String()),
		zap.String("notification_id", payload.NotificationID.String()))

	err := h.deliverer.Deliver(ctx, payload.TenantID, payload.NotificationID)
	switch {
	case err == nil:
		log.Debug("notification delivered")
		return nil
	case repositories.IsNotFound(err):
		log.Warn("notification log not found, dropping task")
		return fmt.Errorf("notification %s: %w", payload.NotificationID, asynq.SkipRetry)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		log.Info("notification delivery failed", zap.Error(err))
		return nil
	}
}

// Enqueuer puts notification tasks on the asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueNotification(ctx context.Context, tenantID, logID uuid.UUID) error {
	task, err := NewNotificationTask(tenantID, logID)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeNotificationSend, err)
	}
	return nil
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
