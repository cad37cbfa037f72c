package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pajakos/internal/config"
	"pajakos/internal/domain"
	"pajakos/internal/service"
	"pajakos/mocks"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "pajakos-test",
	}
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           uuid.New(),
		Email:        "reviewer@test.com",
		PasswordHash: string(hash),
		FullName:     "Test Reviewer",
		Role:         domain.RoleReviewer,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	user := activeUser(t, "correct-password")
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.RoleReviewer, claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	user := activeUser(t, "correct-password")
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "wrong-password",
	})

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailMapsToInvalidCredentials(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	repo.On("GetByEmail", mock.Anything, "nobody@test.com").Return(nil, domain.ErrUserNotFound)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    "nobody@test.com",
		Password: "whatever123",
	})

	assert.Nil(t, pair)
	// Existence of an account is never leaked through the error.
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	user := activeUser(t, "correct-password")
	user.IsActive = false
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-password",
	})

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	user := activeUser(t, "correct-password")
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	repo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-password",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthService_AudienceEnforced(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	user := activeUser(t, "correct-password")
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-password",
	})
	require.NoError(t, err)

	// A refresh token must not pass as an access token, and vice versa.
	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = svc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	repo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(repo, testJWTConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
