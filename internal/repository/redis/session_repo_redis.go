package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

const sessionKeyPrefix = "admin_session:"

// Sessions also carry a Redis TTL as a backstop; the authoritative expiry
// check is the lazy one in the auth service.
const sessionTTLSlack = 24 * time.Hour

type sessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) repository.SessionRepository {
	return &sessionRepo{rdb: rdb}
}

func (r *sessionRepo) Create(ctx context.Context, s *domain.AdminSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt) + sessionTTLSlack
	if err := r.rdb.Set(ctx, sessionKeyPrefix+s.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, token string) (*domain.AdminSession, error) {
	data, err := r.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: unknown session", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	var s domain.AdminSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}
