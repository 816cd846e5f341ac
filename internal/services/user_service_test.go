package services

import (
	"context"
	"testing"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  UserService
	ctx      context.Context
	tenantID uuid.UUID
	actorID  uuid.UUID
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = NewUserService(suite.mockRepo, zap.NewNop())
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.actorID = uuid.New()
}

func (suite *UserServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestRemove_CannotRemoveSelf() {
	err := suite.service.Remove(suite.ctx, suite.tenantID, suite.actorID, suite.actorID)

	suite.ErrorIs(err, common.ErrInvalidInput)
	suite.mockRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestRemove_DeactivatesOtherUser() {
	id := uuid.New()
	user := &models.User{ID: id, TenantID: suite.tenantID, Role: models.RoleSeller, Active: true}
	suite.mockRepo.On("GetByID", suite.ctx, suite.tenantID, id).Return(user, nil)
	suite.mockRepo.On("Update", suite.ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == id && !u.Active
	})).Return(nil)

	err := suite.service.Remove(suite.ctx, suite.tenantID, suite.actorID, id)

	suite.NoError(err)
}

func (suite *UserServiceTestSuite) TestUpdate_CannotDemoteSelf() {
	admin := &models.User{ID: suite.actorID, TenantID: suite.tenantID, Role: models.RoleAdmin, Active: true}
	suite.mockRepo.On("GetByID", suite.ctx, suite.tenantID, suite.actorID).Return(admin, nil)
	role := models.RoleSeller

	user, err := suite.service.Update(suite.ctx, suite.tenantID, suite.actorID, suite.actorID, &models.UpdateUserInput{Role: &role})

	suite.Nil(user)
	suite.ErrorIs(err, common.ErrInvalidInput)
	suite.mockRepo.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdate_CannotDeactivateSelf() {
	admin := &models.User{ID: suite.actorID, TenantID: suite.tenantID, Role: models.RoleAdmin, Active: true}
	suite.mockRepo.On("GetByID", suite.ctx, suite.tenantID, suite.actorID).Return(admin, nil)
	inactive := false

	_, err := suite.service.Update(suite.ctx, suite.tenantID, suite.actorID, suite.actorID, &models.UpdateUserInput{Active: &inactive})

	suite.ErrorIs(err, common.ErrInvalidInput)
}

func (suite *UserServiceTestSuite) TestUpdate_SelfRenameAllowed() {
	admin := &models.User{ID: suite.actorID, TenantID: suite.tenantID, Name: "Ana", Role: models.RoleAdmin, Active: true}
	suite.mockRepo.On("GetByID", suite.ctx, suite.tenantID, suite.actorID).Return(admin, nil)
	suite.mockRepo.On("Update", suite.ctx, admin).Return(nil)
	name := "Ana Lima"
	role := models.RoleAdmin

	user, err := suite.service.Update(suite.ctx, suite.tenantID, suite.actorID, suite.actorID,
		&models.UpdateUserInput{Name: &name, Role: &role})

	suite.NoError(err)
	suite.Equal("Ana Lima", user.Name)
	suite.Equal(models.RoleAdmin, user.Role)
}
