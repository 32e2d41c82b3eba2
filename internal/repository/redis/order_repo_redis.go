package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

const (
	orderKeyPrefix = "order:"

	// Bounded retries for the WATCH section; a busy order is rare enough
	// that hitting the cap means something is wrong upstream.
	updateRetries = 5
)

type orderRepo struct {
	rdb *redis.Client
}

func NewOrderRepository(rdb *redis.Client) repository.OrderRepository {
	return &orderRepo{rdb: rdb}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	ok, err := r.rdb.SetNX(ctx, orderKey(order.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if !ok {
		return fmt.Errorf("%w: order %s", apperrors.ErrConflict, order.ID)
	}
	return nil
}

func (r *orderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	data, err := r.rdb.Get(ctx, orderKey(id)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	var o domain.Order
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return nil, fmt.Errorf("unmarshal order %s: %w", id, err)
	}
	return &o, nil
}

// Update re-reads the order under WATCH so a concurrent write (webhook racing
// an admin status change) aborts the transaction and triggers a retry with
// fresh state instead of losing the other writer's update.
func (r *orderRepo) Update(ctx context.Context, id string, mutate func(*domain.Order) error) (*domain.Order, error) {
	key := orderKey(id)

	var updated *domain.Order
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}

		var o domain.Order
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return fmt.Errorf("unmarshal order %s: %w", id, err)
		}

		if err := mutate(&o); err != nil {
			return err
		}
		o.Version++
		o.UpdatedAt = time.Now().UTC()

		out, err := json.Marshal(&o)
		if err != nil {
			return fmt.Errorf("marshal order: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &o
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := r.rdb.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: order %s update contention", apperrors.ErrStorage, id)
}

func (r *orderRepo) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order

	iter := r.rdb.Scan(ctx, 0, orderKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.rdb.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}
		var o domain.Order
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", iter.Val(), err)
		}
		out = append(out, o)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return out, nil
}

func (r *orderRepo) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Order
	for _, o := range all {
		if strings.EqualFold(o.Customer.Email, email) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) FindByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		if all[i].PaymentReference == reference {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: payment reference %s", apperrors.ErrNotFound, reference)
}
