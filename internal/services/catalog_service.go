package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/apperrors"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", apperrors.ErrValidation)
	}
	if p.Price < 0 {
		return nil, fmt.Errorf("%w: product price must not be negative", apperrors.ErrValidation)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.Price < 0 {
		return nil, fmt.Errorf("%w: product price must not be negative", apperrors.ErrValidation)
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}
