package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/divyansh1004/Manthan/internal/domain"
	"github.com/divyansh1004/Manthan/internal/repository"
	"github.com/divyansh1004/Manthan/internal/repository/mocks"
	"github.com/divyansh1004/Manthan/internal/service"
)

const testJWTSecret = "test-secret-key"

func newAuthService(t *testing.T, userRepo repository.UserRepository) *service.AuthService {
	t.Helper()
	svc, err := service.NewAuthService(userRepo, testJWTSecret, 1)
	require.NoError(t, err)
	return svc
}

func TestNewAuthService_EmptySecret(t *testing.T) {
	_, err := service.NewAuthService(new(mocks.UserRepository), "", 1)
	assert.Error(t, err)
}

func TestAuthService_Register_Success(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)
	ctx := context.Background()

	userRepo.On("Save", ctx, mock.MatchedBy(func(u *domain.User) bool {
		if u.Username != "carol" || u.Email != "carol@example.com" {
			return false
		}
		// The stored password must be a bcrypt hash of the input.
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret!")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 5
	}).Return(nil).Once()

	user, err := svc.Register(ctx, "carol", "s3cret!", "carol@example.com")

	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	assert.Empty(t, user.Password, "hash must not leave the service")
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)
	ctx := context.Background()

	userRepo.On("Save", ctx, mock.AnythingOfType("*domain.User")).
		Return(repository.ErrDuplicateEntry).Once()

	_, err := svc.Register(ctx, "carol", "s3cret!", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrRegistrationFailed))
}

func TestAuthService_Register_EmptyCredentials(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)

	_, err := svc.Register(context.Background(), "", "s3cret!", "")
	assert.Error(t, err)
	_, err = svc.Register(context.Background(), "carol", "", "")
	assert.Error(t, err)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAuthService_Login_Success(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("FindByUsername", ctx, "carol").
		Return(&domain.User{ID: 5, Username: "carol", Password: string(hash)}, nil).Once()

	tokenString, err := svc.Login(ctx, "carol", "s3cret!")

	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(5), claims["user_id"])
	userRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)
	ctx := context.Background()

	userRepo.On("FindByUsername", ctx, "ghost").
		Return(nil, repository.ErrUserNotFound).Once()

	_, err := svc.Login(ctx, "ghost", "whatever")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	svc := newAuthService(t, userRepo)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	userRepo.On("FindByUsername", ctx, "carol").
		Return(&domain.User{ID: 5, Username: "carol", Password: string(hash)}, nil).Once()

	_, err = svc.Login(ctx, "carol", "wrong")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrAuthenticationFailed))
}
