package repository

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// OrderRepository owns the order:<id> keyspace. Update applies mutate inside
// an optimistic-concurrency section: the stored order is re-read and the
// write retried when a concurrent writer got there first.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, mutate func(*domain.Order) error) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Category, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *domain.AdminSession) error
	Get(ctx context.Context, token string) (*domain.AdminSession, error)
	Delete(ctx context.Context, token string) error
}

type NotificationRepository interface {
	CreateEntry(ctx context.Context, e *domain.NotificationLogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.NotificationLogEntry, error)
	MarkRead(ctx context.Context, id string) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, e *domain.EmailOutboxEntry) error
	FetchPending(ctx context.Context, now time.Time, limit int) ([]domain.EmailOutboxEntry, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttempt time.Time, terminal bool) error
}
