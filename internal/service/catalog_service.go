package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
	"arabica/internal/repository"
)

var (
	// ErrInvalidInput flags a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidReference flags an identifier that is not a well-formed
	// object id. Checked before any storage read.
	ErrInvalidReference = errors.New("invalid reference")
)

// CatalogService is the read side of the product catalog plus the admin
// pass-through CRUD. Resolution is always a fresh read so carts pick up the
// current price and availability.
type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// Resolve validates the id format, then looks the product up. Malformed ids
// fail with ErrInvalidReference without touching storage.
func (s *CatalogService) Resolve(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidReference
	}
	return s.products.GetByID(ctx, oid)
}

func (s *CatalogService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.Name == "" || p.Price < 0 || !p.Category.Valid() {
		return nil, ErrInvalidInput
	}
	cp := p
	if err := s.products.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidReference
	}
	if p.Name == "" || p.Price < 0 || !p.Category.Valid() {
		return nil, ErrInvalidInput
	}
	cp := p
	cp.ID = oid
	if err := s.products.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidReference
	}
	return s.products.Delete(ctx, oid)
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx, repository.ProductFilter{})
}

func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	c := domain.Category(category)
	if !c.Valid() {
		return nil, ErrInvalidInput
	}
	return s.products.List(ctx, repository.ProductFilter{Category: c})
}
