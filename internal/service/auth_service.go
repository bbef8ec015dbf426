package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meetgrid/meet-service/internal/domain"
	"github.com/meetgrid/meet-service/internal/security"
)

type AuthService struct {
	userRepo UserRepo
	tokens   *security.TokenManager
}

func NewAuthService(userRepo UserRepo, tokens *security.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if displayName == "" {
		return nil, domain.ErrInvalidDisplayName
	}

	hash, err := security.HashPassword(password, nil)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password collapse into the same error so the response does not
// leak which one it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrBadCredentials
		}
		return nil, "", err
	}

	if err := security.ComparePassword(u.PasswordHash, password); err != nil {
		return nil, "", domain.ErrBadCredentials
	}

	token, err := s.tokens.Sign(u.ID, time.Now())
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
