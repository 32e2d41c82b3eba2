package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"storefront/internal/domain"
	"storefront/internal/infra/email"
	"storefront/internal/infra/paystack"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// Update applies mutate to the order configured via Return, mirroring the
// real read-modify-write semantics.
func (m *MockOrderRepository) Update(ctx context.Context, id string, mutate func(*domain.Order) error) (*domain.Order, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	o := args.Get(0).(*domain.Order)
	if err := mutate(o); err != nil {
		return nil, err
	}
	o.Version++
	o.UpdatedAt = time.Now().UTC()
	return o, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *domain.AdminSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, token string) (*domain.AdminSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminSession), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateEntry(ctx context.Context, e *domain.NotificationLogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context, limit, offset int) ([]domain.NotificationLogEntry, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationLogEntry), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Enqueue(ctx context.Context, e *domain.EmailOutboxEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, now time.Time, limit int) ([]domain.EmailOutboxEntry, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EmailOutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string, nextAttempt time.Time, terminal bool) error {
	args := m.Called(ctx, id, attempts, lastError, nextAttempt, terminal)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paystack.Transaction), args.Error(1)
}

func (m *MockPaymentGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, order *domain.Order, kind domain.NotificationKind) error {
	args := m.Called(ctx, order, kind)
	return args.Error(0)
}
