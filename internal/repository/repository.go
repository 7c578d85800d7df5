package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when an insert violates a uniqueness
// constraint, e.g. a second cart for the same customer.
var ErrDuplicateKey = errors.New("duplicate key")

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Category      domain.Category
	OnlyAvailable bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// CartRepository stores at most one cart per customer. Create fails with
// ErrDuplicateKey when a cart for the same customer already exists; callers
// recover by re-reading and updating.
type CartRepository interface {
	Create(ctx context.Context, c *domain.Cart) error
	GetByCustomer(ctx context.Context, customerID primitive.ObjectID) (*domain.Cart, error)
	Update(ctx context.Context, c *domain.Cart) error
	// DeleteByCustomer is idempotent: deleting a missing cart is not an error.
	DeleteByCustomer(ctx context.Context, customerID primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	// ListByCustomer and ListAll return orders newest-first.
	ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus persists the new status and, when non-nil, the assignee
	// references. Returns the updated order.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.OrderStatus,
		preparedBy, deliveryPersonID *primitive.ObjectID) (*domain.Order, error)
}

// CustomerDirectory is the read-only collaborator interface to the account
// system. Lookups only; this service never writes customers.
type CustomerDirectory interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}
