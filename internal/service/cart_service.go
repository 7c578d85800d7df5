package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
	"arabica/internal/repository"
)

var (
	// ErrCustomerNotFound is returned when the customer id does not resolve
	// against the account directory.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrNoValidItems is returned when every submitted cart line was dropped.
	// Distinct from the empty-submission case, which deletes the cart.
	ErrNoValidItems = errors.New("no valid items")
)

// CartLineInput is one submitted cart line. Name, price and the display
// fields are optional; omitted values fall back to the resolved product.
type CartLineInput struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// CartLineView is a stored line annotated with the product's live state.
type CartLineView struct {
	domain.CartLine
	Available       bool            `json:"available"`
	CurrentPrice    float64         `json:"currentPrice"`
	CurrentCategory domain.Category `json:"currentCategory"`
}

// CartView is what clients read back: the stored snapshot plus live
// catalog annotations.
type CartView struct {
	ID         primitive.ObjectID `json:"id"`
	CustomerID primitive.ObjectID `json:"customerId"`
	Items      []CartLineView     `json:"items"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CartService owns the one-cart-per-customer invariant.
type CartService struct {
	carts     repository.CartRepository
	products  repository.ProductRepository
	customers repository.CustomerDirectory
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository,
	customers repository.CustomerDirectory) *CartService {
	return &CartService{carts: carts, products: products, customers: customers}
}

// SaveCart fully replaces the customer's cart with the submitted lines.
// Lines referencing unknown or malformed product ids are dropped rather than
// failing the whole request; checkout stays usable when the catalog has
// drifted. An empty submission deletes the cart. When every line drops,
// the call fails with ErrNoValidItems.
func (s *CartService) SaveCart(ctx context.Context, customerID string, items []CartLineInput) (*domain.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return nil, ErrInvalidReference
	}
	if _, err := s.customers.GetByID(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	if len(items) == 0 {
		if err := s.carts.DeleteByCustomer(ctx, oid); err != nil {
			return nil, err
		}
		return &domain.Cart{CustomerID: oid, Items: []domain.CartLine{}}, nil
	}

	lines, err := s.buildLines(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoValidItems
	}

	cart := &domain.Cart{CustomerID: oid, Items: lines}
	existing, err := s.carts.GetByCustomer(ctx, oid)
	switch {
	case err == nil:
		cart.ID = existing.ID
		return cart, s.carts.Update(ctx, cart)
	case errors.Is(err, repository.ErrNotFound):
		return cart, s.createOrRecover(ctx, cart)
	default:
		return nil, err
	}
}

// createOrRecover inserts the first cart for a customer. Two concurrent
// first saves race on the unique customerId index; the loser re-reads the
// now-existing cart and applies its items as an update, so the race is
// linearized as create then update and never surfaces to the caller.
func (s *CartService) createOrRecover(ctx context.Context, cart *domain.Cart) error {
	err := s.carts.Create(ctx, cart)
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return err
	}
	winner, err := s.carts.GetByCustomer(ctx, cart.CustomerID)
	if err != nil {
		return err
	}
	cart.ID = winner.ID
	return s.carts.Update(ctx, cart)
}

// buildLines resolves each submitted line independently. Snapshot fields
// prefer client-submitted values and fall back to the product's current
// values; quantity defaults to 1 and is clamped to at least 1.
func (s *CartService) buildLines(ctx context.Context, items []CartLineInput) ([]domain.CartLine, error) {
	lines := make([]domain.CartLine, 0, len(items))
	for _, in := range items {
		pid, err := primitive.ObjectIDFromHex(in.ProductID)
		if err != nil {
			continue
		}
		p, err := s.products.GetByID(ctx, pid)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		line := domain.CartLine{
			ProductID:   pid,
			Name:        in.Name,
			Image:       in.Image,
			Description: in.Description,
			Category:    domain.Category(in.Category),
			Quantity:    1,
		}
		if line.Name == "" {
			line.Name = p.Name
		}
		if in.Price != nil {
			line.Price = *in.Price
		} else {
			line.Price = p.Price
		}
		if line.Image == "" {
			line.Image = p.Image
		}
		if line.Description == "" {
			line.Description = p.Description
		}
		if line.Category == "" {
			line.Category = p.Category
		}
		if in.Quantity != nil && *in.Quantity >= 1 {
			line.Quantity = *in.Quantity
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// GetCart returns the stored cart with live catalog annotations. A missing
// cart is a valid steady state: an empty cart is synthesized, never a 404.
func (s *CartService) GetCart(ctx context.Context, customerID string) (*CartView, error) {
	oid, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return nil, ErrInvalidReference
	}
	cart, err := s.carts.GetByCustomer(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return &CartView{CustomerID: oid, Items: []CartLineView{}}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:         cart.ID,
		CustomerID: cart.CustomerID,
		Items:      make([]CartLineView, 0, len(cart.Items)),
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, line := range cart.Items {
		lv := CartLineView{CartLine: line, CurrentPrice: line.Price, CurrentCategory: line.Category}
		if p, err := s.products.GetByID(ctx, line.ProductID); err == nil {
			lv.Available = p.Available
			lv.CurrentPrice = p.Price
			lv.CurrentCategory = p.Category
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		view.Items = append(view.Items, lv)
	}
	return view, nil
}

// ClearCart deletes the customer's cart. Idempotent.
func (s *CartService) ClearCart(ctx context.Context, customerID string) error {
	oid, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return ErrInvalidReference
	}
	return s.carts.DeleteByCustomer(ctx, oid)
}
