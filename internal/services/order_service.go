package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/infra/paystack"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/repository"
)

// Dispatcher is what the order lifecycle needs from the notification side.
// Implementations must absorb their own failures; the order path only logs.
type Dispatcher interface {
	Dispatch(ctx context.Context, order *domain.Order, kind domain.NotificationKind) error
}

var errStatusUnchanged = errors.New("status unchanged")

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher rabbitmq.PublisherInterface
	gateway   paystack.GatewayInterface
	notifier  Dispatcher

	// Bounds the async side effects kicked off after a successful write.
	sideEffectTimeout time.Duration
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	publisher rabbitmq.PublisherInterface,
	gateway paystack.GatewayInterface,
	notifier Dispatcher,
) *OrderService {
	return &OrderService{
		orders:            orders,
		products:          products,
		publisher:         publisher,
		gateway:           gateway,
		notifier:          notifier,
		sideEffectTimeout: 10 * time.Second,
	}
}

// CreateOrder validates and persists a checkout submission. Persistence is
// fatal to the request; event publishing and notifications run after the
// response and never block it. Line items referencing a catalog product are
// repriced from the catalog, and a client-supplied total that disagrees with
// the recomputed one is rejected.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := s.validateAndReprice(ctx, order); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = domain.NewOrderID()
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	} else if !order.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, order.Status)
	}
	if order.PaymentReference == "" {
		order.PaymentReference = "PAY-" + uuid.NewString()
	}
	if order.TrackingNumber == "" {
		order.TrackingNumber = "TRK-" + strings.ToUpper(uuid.NewString()[:8])
	}
	order.PaymentStatus = domain.PaymentUnpaid
	order.PaymentVerified = false
	order.Timeline = []domain.TimelineEntry{{
		Status:      order.Status,
		Timestamp:   now,
		Description: "Order placed",
	}}
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 0

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	go s.afterCreate(order)

	return order, nil
}

func (s *OrderService) afterCreate(order *domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, "order.created", domain.OrderCreatedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.Customer.Email,
		Total:         order.Total,
		ItemCount:     len(order.Items),
		CreatedAt:     order.CreatedAt,
	}); err != nil {
		slog.Error("publish order.created failed", "order_id", order.ID, "error", err)
	}

	if err := s.notifier.Dispatch(ctx, order, domain.KindAdminNewOrder); err != nil {
		slog.Error("admin notification failed", "order_id", order.ID, "error", err)
	}
	if err := s.notifier.Dispatch(ctx, order, domain.KindCustomerConfirmation); err != nil {
		slog.Error("customer confirmation failed", "order_id", order.ID, "error", err)
	}
}

func (s *OrderService) validateAndReprice(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return fmt.Errorf("%w: empty payload", apperrors.ErrValidation)
	}
	if order.Customer.Name == "" || order.Customer.Email == "" {
		return fmt.Errorf("%w: customer name and email are required", apperrors.ErrValidation)
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", apperrors.ErrValidation)
	}
	if order.DeliveryFee < 0 {
		return fmt.Errorf("%w: delivery fee must not be negative", apperrors.ErrValidation)
	}

	var subtotal int64
	for i := range order.Items {
		item := &order.Items[i]
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be positive", apperrors.ErrValidation)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: item price must not be negative", apperrors.ErrValidation)
		}

		// The catalog, not the client, is the price authority for
		// catalog items. Free-form lines keep the submitted price.
		if item.ProductID != "" {
			p, err := s.products.Get(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: unknown product %s", apperrors.ErrValidation, item.ProductID)
				}
				return err
			}
			item.UnitPrice = p.Price
			if item.Name == "" {
				item.Name = p.Name
			}
		}
		if item.Name == "" {
			return fmt.Errorf("%w: item name is required", apperrors.ErrValidation)
		}
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	total := subtotal + order.DeliveryFee
	if order.Total != 0 && order.Total != total {
		return fmt.Errorf("%w: total %d does not match computed total %d", apperrors.ErrValidation, order.Total, total)
	}
	order.Subtotal = subtotal
	order.Total = total
	return nil
}

// UpdateStatus is idempotent: updating to the current status changes nothing
// and appends no timeline entry.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, description string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	var from domain.OrderStatus
	updated, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		if o.Status == status {
			return errStatusUnchanged
		}
		from = o.Status
		o.Status = status
		if description == "" {
			description = "Status changed to " + string(status)
		}
		o.AppendTimeline(status, description)
		return nil
	})
	if errors.Is(err, errStatusUnchanged) {
		return s.orders.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	go s.afterStatusChange(updated, from)

	return updated, nil
}

func (s *OrderService) afterStatusChange(order *domain.Order, from domain.OrderStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, "order.status_changed", domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		From:      from,
		To:        order.Status,
		ChangedAt: order.UpdatedAt,
	}); err != nil {
		slog.Error("publish order.status_changed failed", "order_id", order.ID, "error", err)
	}

	kind := domain.KindStatusUpdate
	switch order.Status {
	case domain.StatusShipped:
		kind = domain.KindShipped
	case domain.StatusDelivered:
		kind = domain.KindDelivered
	}
	if err := s.notifier.Dispatch(ctx, order, kind); err != nil {
		slog.Error("status notification failed", "order_id", order.ID, "error", err)
	}
}

// HandlePaymentWebhook processes a gateway callback. A bad signature is the
// only error surfaced; an unmatched or already-paid reference is swallowed so
// the gateway does not retry forever on a 5xx.
func (s *OrderService) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return fmt.Errorf("%w: webhook signature mismatch", apperrors.ErrUnauthorized)
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Warn("webhook body unparseable", "error", err)
		return nil
	}
	if event.Event != "charge.success" {
		return nil
	}

	order, err := s.orders.FindByPaymentReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			slog.Warn("webhook for unknown payment reference", "reference", event.Data.Reference)
			return nil
		}
		return err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil
	}

	return s.confirmPayment(ctx, order.ID, event.Data.Reference, event.Data.Amount)
}

func (s *OrderService) confirmPayment(ctx context.Context, orderID, reference string, amount int64) error {
	updated, err := s.orders.Update(ctx, orderID, func(o *domain.Order) error {
		if o.PaymentStatus == domain.PaymentPaid {
			return errStatusUnchanged
		}
		o.PaymentStatus = domain.PaymentPaid
		o.PaymentVerified = true
		o.Status = domain.StatusProcessing
		o.AppendTimeline(domain.StatusProcessing, "Payment confirmed")
		return nil
	})
	if errors.Is(err, errStatusUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, "payment.confirmed", domain.PaymentConfirmedEvent{
			OrderID:          updated.ID,
			PaymentReference: reference,
			Amount:           amount,
			ConfirmedAt:      updated.UpdatedAt,
		}); err != nil {
			slog.Error("publish payment.confirmed failed", "order_id", updated.ID, "error", err)
		}
		if err := s.notifier.Dispatch(ctx, updated, domain.KindStatusUpdate); err != nil {
			slog.Error("payment notification failed", "order_id", updated.ID, "error", err)
		}
	}()

	return nil
}

// VerifyPayment checks a reference against the gateway synchronously and, on
// success, applies the same transition the webhook would.
func (s *OrderService) VerifyPayment(ctx context.Context, reference string) (*domain.Order, error) {
	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	if tx == nil || tx.Status != "success" {
		return nil, fmt.Errorf("%w: payment %s not confirmed", apperrors.ErrValidation, reference)
	}

	order, err := s.orders.FindByPaymentReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus != domain.PaymentPaid {
		if err := s.confirmPayment(ctx, order.ID, reference, tx.Amount); err != nil {
			return nil, err
		}
	}
	return s.orders.Get(ctx, order.ID)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) ListOrdersByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	return s.orders.ListByCustomerEmail(ctx, email)
}
