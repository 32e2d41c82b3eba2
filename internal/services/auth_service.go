package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

const sessionTTL = 24 * time.Hour

// AuthService issues and validates admin bearer tokens. Tokens are opaque and
// revocable server-side; expiry is detected lazily on Verify, which also
// removes the dead session.
type AuthService struct {
	sessions repository.SessionRepository

	adminEmail   string
	passwordHash []byte
}

func NewAuthService(sessions repository.SessionRepository, adminEmail, adminPassword string) (*AuthService, error) {
	if adminPassword == "" {
		return nil, errors.New("admin password must be configured")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{
		sessions:     sessions,
		adminEmail:   adminEmail,
		passwordHash: hash,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	if !emailOK || !passOK {
		return "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}

	now := time.Now().UTC()
	session := &domain.AdminSession{
		Token:     token,
		Email:     email,
		LoginTime: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown token", apperrors.ErrUnauthorized)
		}
		return "", err
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: session expired", apperrors.ErrUnauthorized)
	}
	return session.Email, nil
}

// Logout is idempotent: deleting an absent session is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}
