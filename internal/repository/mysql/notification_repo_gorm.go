package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) CreateEntry(ctx context.Context, e *domain.NotificationLogEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

// List reads newest-first with a hard cap so the inbox never degrades into a
// full-table scan as the log grows.
func (r *notificationRepo) List(ctx context.Context, limit, offset int) ([]domain.NotificationLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var out []domain.NotificationLogEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.NotificationLogEntry{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, id)
	}
	return nil
}

type outboxRepo struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) repository.OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Enqueue(ctx context.Context, e *domain.EmailOutboxEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func (r *outboxRepo) FetchPending(ctx context.Context, now time.Time, limit int) ([]domain.EmailOutboxEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var out []domain.EmailOutboxEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.OutboxPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return out, nil
}

func (r *outboxRepo) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.EmailOutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  domain.OutboxSent,
			"sent_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox entry %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttempt time.Time, terminal bool) error {
	status := domain.OutboxPending
	if terminal {
		status = domain.OutboxFailed
	}

	result := r.db.WithContext(ctx).
		Model(&domain.EmailOutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"attempts":        attempts,
			"last_error":      lastError,
			"next_attempt_at": nextAttempt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox entry %s", apperrors.ErrNotFound, id)
	}
	return nil
}
