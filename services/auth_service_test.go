package services

import (
	"context"
	"live-poll/auth"
	"live-poll/errors"
	"live-poll/mocks"
	"live-poll/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(mockRepo, tokens)
	ctx := context.Background()

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)

		// Expect CreateUser to receive a hash, never the plain password
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "Ada", "test@example.com", gomock.Not("ComplexPass123!")).
			Return(repositories.User{ID: "user-uuid", Name: "Ada", Email: "test@example.com"}, nil).
			Times(1)

		session, err := svc.Register(ctx, auth.RegisterRequest{Name: " Ada ", Email: "test@example.com", Password: "ComplexPass123!"})

		req.NoError(err)
		req.NotEmpty(session.Token)
		identity, err := tokens.Validate(session.Token)
		req.NoError(err)
		req.Equal(auth.Identity{UserID: "user-uuid", Name: "Ada"}, identity)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should never be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register(ctx, auth.RegisterRequest{Name: "Ada", Email: "test@example.com", Password: "simplesimplesimple"})

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.Token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "Ada", "duplicate@example.com", gomock.Any()).
			Return(repositories.User{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(ctx, auth.RegisterRequest{Name: "Ada", Email: "duplicate@example.com", Password: "ComplexPass123!"})

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenIssuer("test-secret", time.Hour))
	ctx := context.Background()

	email := "user@example.com"
	password := "Secret123456!"
	hashedPassword, err := auth.HashPassword(password)
	require.NoError(t, err)
	storedUser := repositories.User{ID: "uuid-123", Name: "Bob", Email: email, PasswordHash: hashedPassword}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(storedUser, nil).Times(1)

		session, err := svc.Login(ctx, auth.LoginRequest{Email: email, Password: password})

		req.NoError(err)
		req.Equal(storedUser.ID, session.Identity.UserID)
		req.True(session.ExpiresAt.After(time.Now()))
	})

	t.Run("should fail with a wrong password", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail(gomock.Any(), email).Return(storedUser, nil).Times(1)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: email, Password: "WrongPassword1!"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should not reveal unknown emails", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").
			Return(repositories.User{}, errors.ErrUserNotFound).Times(1)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "ghost@example.com", Password: password})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
