package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/mocks"
)

const (
	testAdminEmail    = "admin@shop.test"
	testAdminPassword = "correct horse battery staple"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, *mocks.MockSessionRepository) {
	t.Helper()
	sessions := new(mocks.MockSessionRepository)
	svc, err := NewAuthService(sessions, testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	return svc, sessions
}

func TestAuthService_Login(t *testing.T) {
	t.Run("valid credentials mint a 24h session", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		var stored *domain.AdminSession
		sessions.On("Create", mock.Anything, mock.AnythingOfType("*domain.AdminSession")).Return(nil).Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.AdminSession)
		})

		token, err := svc.Login(context.Background(), testAdminEmail, testAdminPassword)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		require.NotNil(t, stored)
		assert.Equal(t, token, stored.Token)
		assert.Equal(t, testAdminEmail, stored.Email)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), stored.ExpiresAt, time.Minute)
	})

	t.Run("wrong password creates no session", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		token, err := svc.Login(context.Background(), testAdminEmail, "nope")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Empty(t, token)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown email creates no session", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		_, err := svc.Login(context.Background(), "someone@else.test", testAdminPassword)

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Verify(t *testing.T) {
	t.Run("active session returns identity", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		sessions.On("Get", mock.Anything, "tok").Return(&domain.AdminSession{
			Token:     "tok",
			Email:     testAdminEmail,
			LoginTime: time.Now().Add(-time.Hour),
			ExpiresAt: time.Now().Add(23 * time.Hour),
		}, nil)

		email, err := svc.Verify(context.Background(), "tok")

		assert.NoError(t, err)
		assert.Equal(t, testAdminEmail, email)
	})

	t.Run("bogus token is unauthenticated", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		sessions.On("Get", mock.Anything, "bogus").Return(nil, apperrors.ErrNotFound)

		_, err := svc.Verify(context.Background(), "bogus")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired session is removed and unauthenticated", func(t *testing.T) {
		svc, sessions := newAuthServiceForTest(t)

		sessions.On("Get", mock.Anything, "stale").Return(&domain.AdminSession{
			Token:     "stale",
			Email:     testAdminEmail,
			LoginTime: time.Now().Add(-25 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil)
		sessions.On("Delete", mock.Anything, "stale").Return(nil)

		_, err := svc.Verify(context.Background(), "stale")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		sessions.AssertCalled(t, "Delete", mock.Anything, "stale")
	})
}

func TestAuthService_Logout(t *testing.T) {
	svc, sessions := newAuthServiceForTest(t)

	// Deleting an absent session is not an error.
	sessions.On("Delete", mock.Anything, "whatever").Return(nil)

	assert.NoError(t, svc.Logout(context.Background(), "whatever"))
}

func TestNewAuthService_RequiresPassword(t *testing.T) {
	_, err := NewAuthService(new(mocks.MockSessionRepository), testAdminEmail, "")
	assert.Error(t, err)
}
