package services

import (
	"context"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.User], error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, tenantID, actorID, id uuid.UUID, in *models.UpdateUserInput) (*models.User, error)
	// Remove deactivates the user; rows referenced by sales and orders are kept.
	Remove(ctx context.Context, tenantID, actorID, id uuid.UUID) error
}

type userService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

func NewUserService(users repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

var errSelfModification = common.ErrInvalidInput.WithMessage("you cannot deactivate or demote yourself")

func (s *userService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.User], error) {
	users, total, err := s.users.List(ctx, tenantID, limit, offset)
	if err != nil {
		return common.Page[*models.User]{}, err
	}
	return common.NewPage(users, total, limit, offset), nil
}

func (s *userService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, tenantID, id)
}

func (s *userService) Update(ctx context.Context, tenantID, actorID, id uuid.UUID, in *models.UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if id == actorID {
		if (in.Active != nil && !*in.Active) || (in.Role != nil && *in.Role != user.Role) {
			return nil, errSelfModification
		}
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Remove(ctx context.Context, tenantID, actorID, id uuid.UUID) error {
	if id == actorID {
		return errSelfModification
	}
	user, err := s.users.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	user.Active = false
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user deactivated", zap.String("tenant_id", tenantID.String()), zap.String("user_id", id.String()))
	return nil
}
