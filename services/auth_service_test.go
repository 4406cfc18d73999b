package services

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	tokens := auth.NewTokens("test-secret", "chat-desk", 24*time.Hour)
	mockRepo := mocks.NewMockIAdminRepository(ctrl)
	svc := NewAuthService(log, mockRepo, tokens)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"

		// Expect CreateAdmin to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateAdmin(gomock.Any(), email, gomock.Not(password)).
			Return(domain.Admin{ID: "admin-uuid", Email: email}, nil).
			Times(1)

		session, err := svc.Register(ctx, auth.RegisterRequest{Email: email, Password: password})

		req.NoError(err)
		req.NotEmpty(session.Token)
		adminID, err := tokens.Verify(session.Token)
		req.NoError(err)
		req.Equal("admin-uuid", adminID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateAdmin(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register(ctx, auth.RegisterRequest{Email: "test@example.com", Password: "simplesimplesimple"})

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(session.Token)
	})

	t.Run("should fail when email is malformed", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().CreateAdmin(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register(ctx, auth.RegisterRequest{Email: "not-an-email", Password: "ComplexPass123!"})

		req.ErrorIs(err, errors.ErrMalformedPayload)
		req.Equal(errors.KindValidation, errors.KindOf(err))
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)
		email := "duplicate@example.com"

		mockRepo.EXPECT().
			CreateAdmin(gomock.Any(), email, gomock.Any()).
			Return(domain.Admin{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(ctx, auth.RegisterRequest{Email: email, Password: "ComplexPass123!"})

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctx := context.Background()
	tokens := auth.NewTokens("test-secret", "chat-desk", 24*time.Hour)
	mockRepo := mocks.NewMockIAdminRepository(ctrl)
	svc := NewAuthService(log, mockRepo, tokens)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"
		password := "Secret123456!"

		hashedPassword, err := auth.HashPassword(password)
		req.NoError(err)
		stored := domain.Admin{ID: "uuid-123", Email: email, PasswordHash: hashedPassword}

		mockRepo.EXPECT().
			GetAdminByEmail(gomock.Any(), email).
			Return(stored, nil).
			Times(1)

		session, err := svc.Login(ctx, auth.LoginRequest{Email: email, Password: password})

		req.NoError(err)
		req.Equal(stored.ID, session.Admin.ID)
		req.True(session.ExpiresAt.After(time.Now()))

		adminID, err := tokens.Verify(session.Token)
		req.NoError(err)
		req.Equal(stored.ID, adminID)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)
		email := "user@example.com"

		hashedPassword, err := auth.HashPassword("CorrectPassword123!")
		req.NoError(err)

		mockRepo.EXPECT().
			GetAdminByEmail(gomock.Any(), email).
			Return(domain.Admin{Email: email, PasswordHash: hashedPassword}, nil).
			Times(1)

		_, err = svc.Login(ctx, auth.LoginRequest{Email: email, Password: "WrongPassword123!"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetAdminByEmail(gomock.Any(), "unknown@example.com").
			Return(domain.Admin{}, errors.ErrAdminNotFound).
			Times(1)

		_, err := svc.Login(ctx, auth.LoginRequest{Email: "unknown@example.com", Password: "anyPassword"})

		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.Equal(errors.KindAuthentication, errors.KindOf(err))
	})
}
