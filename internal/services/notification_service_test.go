package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront/internal/domain"
	"storefront/internal/mocks"
)

func newNotificationServiceForTest(adminEmails ...string) (*NotificationService, *mocks.MockNotificationRepository, *mocks.MockOutboxRepository, *mocks.MockEmailSender) {
	logRepo := new(mocks.MockNotificationRepository)
	outbox := new(mocks.MockOutboxRepository)
	sender := new(mocks.MockEmailSender)
	if len(adminEmails) == 0 {
		adminEmails = []string{"admin@shop.test"}
	}
	svc := NewNotificationService(logRepo, outbox, sender, adminEmails)
	return svc, logRepo, outbox, sender
}

func notifiableOrder() *domain.Order {
	return &domain.Order{
		ID:             "ORD-1",
		Customer:       domain.Customer{Name: "A", Email: "a@x.com"},
		Items:          []domain.OrderItem{{Name: "Tee", Quantity: 2, UnitPrice: 18000}},
		Subtotal:       36000,
		Total:          36000,
		Status:         domain.StatusPending,
		TrackingNumber: "TRK-ABC123",
	}
}

func TestNotificationService_Dispatch(t *testing.T) {
	t.Run("one log entry and one outbox row per recipient", func(t *testing.T) {
		svc, logRepo, outbox, sender := newNotificationServiceForTest("a1@shop.test", "a2@shop.test")

		logRepo.On("CreateEntry", mock.Anything, mock.AnythingOfType("*domain.NotificationLogEntry")).Return(nil).Once()
		outbox.On("Enqueue", mock.Anything, mock.AnythingOfType("*domain.EmailOutboxEntry")).Return(nil).Times(2)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Times(2)
		outbox.On("MarkSent", mock.Anything, mock.Anything).Return(nil).Times(2)

		err := svc.Dispatch(context.Background(), notifiableOrder(), domain.KindAdminNewOrder)

		assert.NoError(t, err)
		logRepo.AssertExpectations(t)
		outbox.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("customer kinds go to the customer only", func(t *testing.T) {
		svc, logRepo, outbox, sender := newNotificationServiceForTest()

		logRepo.On("CreateEntry", mock.Anything, mock.Anything).Return(nil).Once()
		outbox.On("Enqueue", mock.Anything, mock.MatchedBy(func(e *domain.EmailOutboxEntry) bool {
			return e.Recipient == "a@x.com"
		})).Return(nil).Once()
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
		outbox.On("MarkSent", mock.Anything, mock.Anything).Return(nil).Once()

		err := svc.Dispatch(context.Background(), notifiableOrder(), domain.KindShipped)

		assert.NoError(t, err)
		outbox.AssertExpectations(t)
	})

	t.Run("send failure marks the row for retry and does not surface", func(t *testing.T) {
		svc, logRepo, outbox, sender := newNotificationServiceForTest()

		logRepo.On("CreateEntry", mock.Anything, mock.Anything).Return(nil)
		outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("provider down"))
		outbox.On("MarkFailed", mock.Anything, mock.Anything, 1, "provider down", mock.Anything, false).Return(nil)

		err := svc.Dispatch(context.Background(), notifiableOrder(), domain.KindCustomerConfirmation)

		assert.NoError(t, err)
		outbox.AssertCalled(t, "MarkFailed", mock.Anything, mock.Anything, 1, "provider down", mock.Anything, false)
		outbox.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	})

	t.Run("log write failure does not block delivery", func(t *testing.T) {
		svc, logRepo, outbox, sender := newNotificationServiceForTest()

		logRepo.On("CreateEntry", mock.Anything, mock.Anything).Return(errors.New("mysql down"))
		outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil)
		outbox.On("MarkSent", mock.Anything, mock.Anything).Return(nil)

		err := svc.Dispatch(context.Background(), notifiableOrder(), domain.KindCustomerConfirmation)

		assert.NoError(t, err)
		sender.AssertCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("unknown kind is an error", func(t *testing.T) {
		svc, _, _, _ := newNotificationServiceForTest()

		err := svc.Dispatch(context.Background(), notifiableOrder(), domain.NotificationKind("carrier_pigeon"))

		assert.Error(t, err)
	})
}

func TestNotificationService_DispatchInquiry(t *testing.T) {
	svc, logRepo, outbox, sender := newNotificationServiceForTest()

	logRepo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.Type == string(domain.KindInquiry) && e.CustomerEmail == "b@y.com"
	})).Return(nil).Once()
	outbox.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	outbox.On("MarkSent", mock.Anything, mock.Anything).Return(nil).Once()

	err := svc.DispatchInquiry(context.Background(), "B", "b@y.com", "Sizing", "Does the tee run small?")

	assert.NoError(t, err)
	logRepo.AssertExpectations(t)
}

func TestNotificationService_DrainOutbox(t *testing.T) {
	t.Run("pending rows are delivered and marked sent", func(t *testing.T) {
		svc, _, outbox, sender := newNotificationServiceForTest()

		pending := []domain.EmailOutboxEntry{
			{ID: "e1", Recipient: "a@x.com", Subject: "s", Attempts: 1},
			{ID: "e2", Recipient: "b@y.com", Subject: "s", Attempts: 0},
		}
		outbox.On("FetchPending", mock.Anything, mock.Anything, outboxBatchSize).Return(pending, nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Times(2)
		outbox.On("MarkSent", mock.Anything, "e1").Return(nil).Once()
		outbox.On("MarkSent", mock.Anything, "e2").Return(nil).Once()

		svc.drainOutbox(context.Background())

		outbox.AssertExpectations(t)
	})

	t.Run("exhausted attempts mark the row terminal", func(t *testing.T) {
		svc, _, outbox, sender := newNotificationServiceForTest()

		pending := []domain.EmailOutboxEntry{
			{ID: "e1", Recipient: "a@x.com", Subject: "s", Attempts: maxSendAttempts - 1},
		}
		outbox.On("FetchPending", mock.Anything, mock.Anything, outboxBatchSize).Return(pending, nil)
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("still down"))
		outbox.On("MarkFailed", mock.Anything, "e1", maxSendAttempts, "still down", mock.Anything, true).Return(nil)

		svc.drainOutbox(context.Background())

		outbox.AssertExpectations(t)
	})
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, backoff(1))
	assert.Equal(t, 2*time.Minute, backoff(2))
	assert.Equal(t, time.Hour, backoff(10))
}
