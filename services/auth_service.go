package services

import (
	"chat-desk/auth"
	"chat-desk/domain"
	"chat-desk/errors"
	"chat-desk/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type TokenIssuer interface {
	Issue(adminID string) (string, time.Time, error)
}

type IAuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (Session, error)
	Login(ctx context.Context, req auth.LoginRequest) (Session, error)
}

// Session is what an admin receives after register or login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Admin     domain.Admin `json:"admin"`
}

type AuthService struct {
	log    *slog.Logger
	admins repositories.IAdminRepository
	issuer TokenIssuer
}

func NewAuthService(log *slog.Logger, admins repositories.IAdminRepository, issuer TokenIssuer) IAuthService {
	return &AuthService{log: log, admins: admins, issuer: issuer}
}

func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (Session, error) {
	// Validate before any cryptographic work
	if err := auth.ValidateRegister(req); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	admin, err := s.admins.CreateAdmin(ctx, req.Email, hash)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("Admin registered", "admin_id", admin.ID)
	return s.session(admin)
}

func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (Session, error) {
	if err := auth.Validate(req); err != nil {
		return Session{}, err
	}

	admin, err := s.admins.GetAdminByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, errors.ErrNotFound):
		// Same answer as a wrong password to prevent account enumeration
		return Session{}, errors.ErrInvalidCredentials
	case err != nil:
		return Session{}, err
	}

	match, err := auth.ComparePassword(req.Password, admin.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}
	return s.session(admin)
}

func (s *AuthService) session(admin domain.Admin) (Session, error) {
	token, expiresAt, err := s.issuer.Issue(admin.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}
