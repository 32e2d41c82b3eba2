package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/infra/email"
	"storefront/internal/repository"
)

const (
	maxSendAttempts = 5
	outboxBatchSize = 20
)

// NotificationService renders event-keyed messages, fans them out to
// recipients and records one log entry per dispatch. Delivery is
// at-least-once: intents go through a durable outbox, and a retried status
// update may resend an email. Failures never propagate into the order path.
type NotificationService struct {
	log    repository.NotificationRepository
	outbox repository.OutboxRepository
	sender email.SenderInterface

	adminEmails []string
}

var _ Dispatcher = (*NotificationService)(nil)

func NewNotificationService(
	log repository.NotificationRepository,
	outbox repository.OutboxRepository,
	sender email.SenderInterface,
	adminEmails []string,
) *NotificationService {
	return &NotificationService{
		log:         log,
		outbox:      outbox,
		sender:      sender,
		adminEmails: adminEmails,
	}
}

func (s *NotificationService) Dispatch(ctx context.Context, order *domain.Order, kind domain.NotificationKind) error {
	msg, err := renderTemplate(kind, order)
	if err != nil {
		return err
	}

	recipients := s.recipientsFor(kind, order)
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients for %s", kind)
	}

	entry := &domain.NotificationLogEntry{
		ID:            uuid.NewString(),
		Type:          string(kind),
		OrderID:       order.ID,
		CustomerEmail: order.Customer.Email,
		Subject:       msg.Subject,
		Content:       msg.Text,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.log.CreateEntry(ctx, entry); err != nil {
		slog.Error("notification log write failed", "kind", kind, "order_id", order.ID, "error", err)
	}

	return s.enqueueAndSend(ctx, recipients, msg)
}

func (s *NotificationService) DispatchInquiry(ctx context.Context, name, fromEmail, subject, message string) error {
	msg := renderInquiry(name, fromEmail, subject, message)

	entry := &domain.NotificationLogEntry{
		ID:            uuid.NewString(),
		Type:          string(domain.KindInquiry),
		CustomerEmail: fromEmail,
		Subject:       msg.Subject,
		Content:       msg.Text,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.log.CreateEntry(ctx, entry); err != nil {
		slog.Error("inquiry log write failed", "from", fromEmail, "error", err)
	}

	return s.enqueueAndSend(ctx, s.adminEmails, msg)
}

func (s *NotificationService) recipientsFor(kind domain.NotificationKind, order *domain.Order) []string {
	switch kind {
	case domain.KindAdminNewOrder, domain.KindInquiry:
		return s.adminEmails
	default:
		if order.Customer.Email == "" {
			return nil
		}
		return []string{order.Customer.Email}
	}
}

// enqueueAndSend writes one outbox row per recipient, then attempts delivery
// immediately. A recipient failure marks its row for retry and does not abort
// the rest of the fan-out.
func (s *NotificationService) enqueueAndSend(ctx context.Context, recipients []string, msg renderedMessage) error {
	now := time.Now().UTC()

	entries := make([]*domain.EmailOutboxEntry, 0, len(recipients))
	for _, to := range recipients {
		e := &domain.EmailOutboxEntry{
			ID:            uuid.NewString(),
			Recipient:     to,
			Subject:       msg.Subject,
			HTML:          msg.HTML,
			Text:          msg.Text,
			Status:        domain.OutboxPending,
			NextAttemptAt: now,
			CreatedAt:     now,
		}
		if err := s.outbox.Enqueue(ctx, e); err != nil {
			slog.Error("outbox enqueue failed", "recipient", to, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			s.deliver(gctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

func (s *NotificationService) deliver(ctx context.Context, e *domain.EmailOutboxEntry) {
	err := s.sender.Send(ctx, email.Message{
		To:      e.Recipient,
		Subject: e.Subject,
		HTML:    e.HTML,
		Text:    e.Text,
	})
	if err == nil {
		if err := s.outbox.MarkSent(ctx, e.ID); err != nil {
			slog.Error("outbox mark sent failed", "id", e.ID, "error", err)
		}
		return
	}

	attempts := e.Attempts + 1
	terminal := attempts >= maxSendAttempts
	next := time.Now().UTC().Add(backoff(attempts))
	slog.Warn("email send failed", "recipient", e.Recipient, "attempt", attempts, "error", err)
	if err := s.outbox.MarkFailed(ctx, e.ID, attempts, err.Error(), next, terminal); err != nil {
		slog.Error("outbox mark failed failed", "id", e.ID, "error", err)
	}
}

// backoff doubles per attempt from one minute, capped at an hour.
func backoff(attempts int) time.Duration {
	d := time.Minute << (attempts - 1)
	if d > time.Hour {
		return time.Hour
	}
	return d
}

func (s *NotificationService) List(ctx context.Context, limit, offset int) ([]domain.NotificationLogEntry, error) {
	return s.log.List(ctx, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.log.MarkRead(ctx, id)
}

// RunOutboxWorker redelivers pending outbox rows until ctx is cancelled.
func (s *NotificationService) RunOutboxWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.drainOutbox(ctx)
		}
	}
}

func (s *NotificationService) drainOutbox(ctx context.Context) {
	pending, err := s.outbox.FetchPending(ctx, time.Now().UTC(), outboxBatchSize)
	if err != nil {
		slog.Error("outbox fetch failed", "error", err)
		return
	}

	for i := range pending {
		s.deliver(ctx, &pending[i])
	}
}
