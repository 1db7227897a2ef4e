//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=mocks/mock_auth_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"live-poll/auth"
	"live-poll/errors"
	"live-poll/repositories"
	"strings"
	"time"
)

type IAuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (Session, error)
	Login(ctx context.Context, req auth.LoginRequest) (Session, error)
	GetUser(ctx context.Context, identity auth.Identity) (repositories.User, error)
}

// Session is what a successful signup or login hands back to the HTTP layer.
type Session struct {
	Token     string
	Identity  auth.Identity
	ExpiresAt time.Time
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	// Business rules first, before any expensive hashing
	if err := auth.ValidateRegister(req); err != nil {
		return Session{}, err
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(ctx, req.Name, req.Email, hashedPassword)
	if err != nil {
		return Session{}, err // ErrUserAlreadyExists when the email is taken
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (Session, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return Session{}, errors.ErrInvalidCredentials
	}

	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Generic error to prevent user enumeration
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) GetUser(ctx context.Context, identity auth.Identity) (repositories.User, error) {
	return s.userRepository.GetUserByID(ctx, identity.UserID)
}

func (s *AuthService) issue(user repositories.User) (Session, error) {
	identity := auth.Identity{UserID: user.ID, Name: user.Name}
	token, expiresAt, err := s.tokens.Generate(identity)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}
	return Session{Token: token, Identity: identity, ExpiresAt: expiresAt}, nil
}
