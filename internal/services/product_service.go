package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns one page of the catalog matching q.
func (s *ProductService) ListProducts(ctx context.Context, q repositories.ProductQuery) (*repositories.ProductPage, error) {
	if q.MinPrice != nil && q.MinPrice.IsNegative() || q.MaxPrice != nil && q.MaxPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price bounds cannot be negative", ErrInvalidInput)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price is greater than max_price", ErrInvalidInput)
	}
	if !repositories.ValidProductSort(q.Sort) {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, q.Sort)
	}
	return s.repo.List(ctx, q)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if !product.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if !product.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidInput)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
