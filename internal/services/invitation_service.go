package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/notifications"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type InvitationService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.InvitationInput) (*models.CreatedInvitation, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.Invitation], error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID) error
	Preview(ctx context.Context, token string) (*models.InvitationPreview, error)
	Accept(ctx context.Context, in *models.AcceptInvitationInput) (*models.User, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type InvitationConfig struct {
	TTL     time.Duration
	BaseURL string
}

type invitationService struct {
	invitations   repositories.InvitationRepository
	users         repositories.UserRepository
	tenants       repositories.TenantRepository
	settings      SettingService
	notifications NotificationService
	cfg           InvitationConfig
	logger        *zap.Logger
	bcryptCost    int
}

func NewInvitationService(
	invitations repositories.InvitationRepository,
	users repositories.UserRepository,
	tenants repositories.TenantRepository,
	settings SettingService,
	notifications NotificationService,
	cfg InvitationConfig,
	logger *zap.Logger,
) InvitationService {
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	return &invitationService{
		invitations:   invitations,
		users:         users,
		tenants:       tenants,
		settings:      settings,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
		bcryptCost:    bcrypt.DefaultCost,
	}
}

func (s *invitationService) acceptURL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/accept?token=" + url.QueryEscape(token)
}

func (s *invitationService) Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.InvitationInput) (*models.CreatedInvitation, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "email"})
	}

	token := generateSecureToken()
	inv := &models.Invitation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Email:     email,
		Role:      in.Role,
		TokenHash: hashToken(token),
		Status:    models.InvitationPending,
		InvitedBy: userID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	created := &models.CreatedInvitation{Invitation: inv, AcceptURL: s.acceptURL(token)}
	s.sendInvitation(ctx, created)
	return created, nil
}

func (s *invitationService) sendInvitation(ctx context.Context, inv *models.CreatedInvitation) {
	setting, err := s.settings.Get(ctx, inv.TenantID)
	if err != nil {
		s.logger.Warn("failed to load settings for invitation email", zap.Error(err))
		return
	}
	subject, body, err := notifications.Render(notifications.TemplateInvitation, notifications.InvitationData{
		Company:   setting.CompanyName,
		Role:      inv.Role,
		AcceptURL: inv.AcceptURL,
		ExpiresAt: inv.ExpiresAt,
	})
	if err != nil {
		s.logger.Error("failed to render invitation email", zap.Error(err))
		return
	}
	ref := models.RefInvitation
	_, err = s.notifications.Queue(ctx, inv.TenantID, &models.Notification{
		Channel:       models.ChannelEmail,
		Recipient:     inv.Email,
		Subject:       &subject,
		Message:       body,
		ReferenceType: &ref,
		ReferenceID:   &inv.ID,
	})
	if err != nil {
		s.logger.Warn("failed to queue invitation email", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
	}
}

func (s *invitationService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.Invitation], error) {
	items, total, err := s.invitations.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.Page[*models.Invitation]{}, err
	}
	return common.NewPage(items, total, limit, offset), nil
}

func (s *invitationService) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	inv, err := s.invitations.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if inv.Status != models.InvitationPending {
		return common.ErrInvalidState.WithMessage("only pending invitations can be revoked")
	}
	return s.invitations.Revoke(ctx, tenantID, id)
}

// pending resolves a plain token to a usable invitation, expiring it on the way when it is stale.
func (s *invitationService) pending(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := s.invitations.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, common.ErrInvitationInvalid
		}
		return nil, err
	}
	if inv.Status != models.InvitationPending {
		return nil, common.ErrInvitationInvalid
	}
	if inv.Expired(time.Now().UTC()) {
		if err := s.invitations.MarkExpired(ctx, inv.ID); err != nil {
			s.logger.Warn("failed to expire invitation", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
		}
		return nil, common.ErrInvitationInvalid.WithDetails(map[string]string{"reason": "expired"})
	}
	return inv, nil
}

func (s *invitationService) Preview(ctx context.Context, token string) (*models.InvitationPreview, error) {
	inv, err := s.pending(ctx, token)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, inv.TenantID)
	if err != nil {
		return nil, err
	}
	return &models.InvitationPreview{
		TenantName: tenant.Name,
		Email:      inv.Email,
		Role:       inv.Role,
		ExpiresAt:  inv.ExpiresAt,
	}, nil
}

func (s *invitationService) Accept(ctx context.Context, in *models.AcceptInvitationInput) (*models.User, error) {
	if _, err := s.pending(ctx, in.Token); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Active:       true,
	}

	inv, err := s.invitations.Accept(ctx, hashToken(in.Token), user)
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "email"})
		}
		return nil, err
	}
	s.logger.Info("invitation accepted",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("tenant_id", inv.TenantID.String()),
		zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *invitationService) ExpireStale(ctx context.Context) (int64, error) {
	return s.invitations.ExpireStale(ctx, time.Now().UTC())
}
