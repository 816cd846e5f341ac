package repositories

import (
	"context"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.NotificationFilter) ([]*models.NotificationLog, int, error)
	MarkSent(ctx context.Context, tenantID, id uuid.UUID) error
	MarkFailed(ctx context.Context, tenantID, id uuid.UUID, reason string) error
	ResetPending(ctx context.Context, tenantID, id uuid.UUID) error
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]*models.NotificationLog, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

const notificationColumns = `id, tenant_id, channel, recipient, subject, message, status, error, attempts, reference_type, reference_id, sent_at, created_at`

func scanNotification(row pgx.Row) (*models.NotificationLog, error) {
	n := &models.NotificationLog{}
	err := row.Scan(&n.ID, &n.TenantID, &n.Channel, &n.Recipient, &n.Subject, &n.Message, &n.Status, &n.Error,
		&n.Attempts, &n.ReferenceType, &n.ReferenceID, &n.SentAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *models.NotificationLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notification_logs (id, tenant_id, channel, recipient, subject, message, status, attempts, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, NOW())
	`, n.ID, n.TenantID, n.Channel, n.Recipient, n.Subject, n.Message, n.Status, n.ReferenceType, n.ReferenceID)
	return err
}

func (r *notificationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error) {
	return scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notification_logs WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *notificationRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.NotificationFilter) ([]*models.NotificationLog, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Channel != nil {
		w.add(`channel = $%d`, *filter.Channel)
	}
	if filter.Status != nil {
		w.add(`status = $%d`, *filter.Status)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM notification_logs`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+notificationColumns+` FROM notification_logs`+w.sql()+` ORDER BY created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*models.NotificationLog
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, n)
	}
	return logs, total, rows.Err()
}

func (r *notificationRepo) MarkSent(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_logs SET status = 'SENT', error = NULL, attempts = attempts + 1, sent_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	return err
}

func (r *notificationRepo) MarkFailed(ctx context.Context, tenantID, id uuid.UUID, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_logs SET status = 'FAILED', error = $1, attempts = attempts + 1
		WHERE tenant_id = $2 AND id = $3
	`, reason, tenantID, id)
	return err
}

func (r *notificationRepo) ResetPending(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notification_logs SET status = 'PENDING' WHERE tenant_id = $1 AND id = $2 AND status = 'FAILED'`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListRetryable returns failed logs of every tenant that still have attempts left.
func (r *notificationRepo) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]*models.NotificationLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notification_logs
		WHERE status = 'FAILED' AND attempts < $1
		ORDER BY created_at ASC
		LIMIT $2
	`, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.NotificationLog
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, n)
	}
	return logs, rows.Err()
}
