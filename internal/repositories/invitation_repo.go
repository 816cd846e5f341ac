package repositories

import (
	"context"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvitationRepository interface {
	// Create revokes any pending invitation for the same email in the tenant and inserts inv.
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invitation, error)
	GetByTokenHash(ctx context.Context, hash string) (*models.Invitation, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invitation, int, error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID) error
	MarkExpired(ctx context.Context, id uuid.UUID) error
	// Accept creates user in the invitation's tenant and marks the invitation accepted, in one transaction.
	Accept(ctx context.Context, hash string, user *models.User) (*models.Invitation, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type invitationRepo struct {
	db DB
	tx *TxManager
}

func NewInvitationRepo(db DB, tx *TxManager) InvitationRepository {
	return &invitationRepo{db: db, tx: tx}
}

const invitationColumns = `id, tenant_id, email, role, token_hash, status, invited_by, expires_at, accepted_at, created_at`

func scanInvitation(row pgx.Row) (*models.Invitation, error) {
	i := &models.Invitation{}
	err := row.Scan(&i.ID, &i.TenantID, &i.Email, &i.Role, &i.TokenHash, &i.Status, &i.InvitedBy, &i.ExpiresAt, &i.AcceptedAt, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

func (r *invitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE invitations SET status = 'REVOKED'
			WHERE tenant_id = $1 AND email = $2 AND status = 'PENDING'
		`, inv.TenantID, inv.Email)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO invitations (id, tenant_id, email, role, token_hash, status, invited_by, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, inv.ID, inv.TenantID, inv.Email, inv.Role, inv.TokenHash, inv.Status, inv.InvitedBy, inv.ExpiresAt)
		return err
	})
}

func (r *invitationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *invitationRepo) GetByTokenHash(ctx context.Context, hash string) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token_hash = $1`, hash))
}

func (r *invitationRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Invitation, int, error) {
	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM invitations WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

func (r *invitationRepo) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE invitations SET status = 'REVOKED' WHERE tenant_id = $1 AND id = $2 AND status = 'PENDING'`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInvalidState.WithMessage("only pending invitations can be revoked")
	}
	return nil
}

func (r *invitationRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE invitations SET status = 'EXPIRED' WHERE id = $1 AND status = 'PENDING'`, id)
	return err
}

func (r *invitationRepo) Accept(ctx context.Context, hash string, user *models.User) (*models.Invitation, error) {
	var inv *models.Invitation
	err := r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		inv, err = scanInvitation(tx.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token_hash = $1 FOR UPDATE`, hash))
		if err != nil {
			if IsNotFound(err) {
				return common.ErrInvitationInvalid
			}
			return err
		}
		now := time.Now().UTC()
		if inv.Status != models.InvitationPending || inv.Expired(now) {
			return common.ErrInvitationInvalid
		}

		user.TenantID = inv.TenantID
		user.Email = inv.Email
		user.Role = inv.Role
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE invitations SET status = 'ACCEPTED', accepted_at = $1 WHERE id = $2`, now, inv.ID)
		if err != nil {
			return err
		}
		inv.Status = models.InvitationAccepted
		inv.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE invitations SET status = 'EXPIRED' WHERE status = 'PENDING' AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
