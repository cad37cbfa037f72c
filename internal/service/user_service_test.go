package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pajakos/internal/domain"
	"pajakos/internal/service"
	"pajakos/mocks"
)

func TestUserService_Create_Success(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "new@test.com",
		Password: "securepassword123",
		FullName: "New User",
		Role:     domain.RoleReviewer,
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@test.com", user.Email)
	assert.Equal(t, "New User", user.FullName)
	assert.Equal(t, domain.RoleReviewer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.PasswordHash)
	repo.AssertExpectations(t)
}

func TestUserService_Create_InvalidRole(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	user, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "new@test.com",
		Password: "securepassword123",
		FullName: "New User",
		Role:     domain.UserRole("superuser"),
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	repo.AssertNotCalled(t, "Create")
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(domain.ErrDuplicateEmail)

	user, err := svc.Create(context.Background(), service.CreateUserInput{
		Email:    "existing@test.com",
		Password: "password123",
		FullName: "Test User",
		Role:     domain.RoleUploader,
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	userID := uuid.New()
	repo.On("GetByID", mock.Anything, userID).Return(nil, domain.ErrUserNotFound)

	user, err := svc.GetByID(context.Background(), userID)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_Update_PatchesFields(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	userID := uuid.New()
	existing := &domain.User{
		ID:       userID,
		Email:    "old@test.com",
		FullName: "Old Name",
		Role:     domain.RoleUploader,
		IsActive: true,
	}

	repo.On("GetByID", mock.Anything, userID).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	newName := "New Name"
	newRole := domain.RoleReviewer
	user, err := svc.Update(context.Background(), userID, service.UpdateUserInput{
		FullName: &newName,
		Role:     &newRole,
	})

	assert.NoError(t, err)
	assert.Equal(t, "old@test.com", user.Email)
	assert.Equal(t, "New Name", user.FullName)
	assert.Equal(t, domain.RoleReviewer, user.Role)
	repo.AssertExpectations(t)
}

func TestUserService_Update_InvalidRole(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	userID := uuid.New()
	repo.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)

	badRole := domain.UserRole("root")
	user, err := svc.Update(context.Background(), userID, service.UpdateUserInput{Role: &badRole})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrInsufficientRole)
	repo.AssertNotCalled(t, "Update")
}

func TestUserService_Delete(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewUserService(repo)

	userID := uuid.New()
	repo.On("Delete", mock.Anything, userID).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), userID))
	repo.AssertExpectations(t)
}
