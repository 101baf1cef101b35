package service

import (
	"context"
	"fmt"
	"time"

	"mall-api/internal/domain"
	"mall-api/internal/repository"

	"github.com/google/uuid"
)

// CatalogService defines the business logic for the product catalog.
// AddProduct surfaces a duplicate name as repository.ErrDuplicateProduct
// without mutating state; DeleteProduct always succeeds and reports how
// many rows matched.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ProductExists(ctx context.Context, name string) (bool, error)
	AddProduct(ctx context.Context, name, category string, price float64, thumbnailURL string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, name string) (int64, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

// ListProducts retrieves the whole catalog
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ProductExists reports whether a product with the given name exists
func (s *catalogService) ProductExists(ctx context.Context, name string) (bool, error) {
	return s.productRepo.ExistsByName(ctx, name)
}

// AddProduct creates a catalog entry. A second product with the same name
// is rejected with repository.ErrDuplicateProduct.
func (s *catalogService) AddProduct(ctx context.Context, name, category string, price float64, thumbnailURL string) (*domain.Product, error) {
	product := &domain.Product{
		ID:           uuid.New(),
		Name:         name,
		Category:     category,
		Price:        price,
		ThumbnailURL: thumbnailURL,
		CreatedAt:    time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if err == repository.ErrDuplicateProduct {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes every product matching name. Zero matches is still
// a success; the returned count makes the no-op observable to callers.
func (s *catalogService) DeleteProduct(ctx context.Context, name string) (int64, error) {
	deleted, err := s.productRepo.DeleteByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}
	return deleted, nil
}
