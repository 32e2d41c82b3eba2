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

const (
	productKeyPrefix  = "product:"
	categoryKeyPrefix = "category:"
)

type productRepo struct {
	rdb *redis.Client
}

func NewProductRepository(rdb *redis.Client) repository.ProductRepository {
	return &productRepo{rdb: rdb}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, productKeyPrefix+p.ID, data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if !ok {
		return fmt.Errorf("%w: product %s", apperrors.ErrConflict, p.ID)
	}
	return nil
}

func (r *productRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	data, err := r.rdb.Get(ctx, productKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	var p domain.Product
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if err := r.rdb.Set(ctx, productKeyPrefix+p.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, productKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product

	iter := r.rdb.Scan(ctx, 0, productKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.rdb.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", iter.Val(), err)
		}
		out = append(out, p)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return out, nil
}

type categoryRepo struct {
	rdb *redis.Client
}

func NewCategoryRepository(rdb *redis.Client) repository.CategoryRepository {
	return &categoryRepo{rdb: rdb}
}

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, categoryKeyPrefix+c.ID, data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if !ok {
		return fmt.Errorf("%w: category %s", apperrors.ErrConflict, c.ID)
	}
	return nil
}

func (r *categoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	data, err := r.rdb.Get(ctx, categoryKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}

	var c domain.Category
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal category %s: %w", id, err)
	}
	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *domain.Category) error {
	if _, err := r.Get(ctx, c.ID); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	if err := r.rdb.Set(ctx, categoryKeyPrefix+c.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, categoryKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category

	iter := r.rdb.Scan(ctx, 0, categoryKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.rdb.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
		}
		var c domain.Category
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", iter.Val(), err)
		}
		out = append(out, c)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return out, nil
}
