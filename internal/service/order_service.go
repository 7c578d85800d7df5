package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
	"arabica/internal/repository"
)

var (
	// ErrValidation is the base for checkout field failures; wrapped with a
	// message naming the field.
	ErrValidation = errors.New("validation failed")
	// ErrProductNotFound fails order creation when any item does not
	// resolve. Orders are all-or-nothing, unlike cart saves.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when the order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus rejects a status outside the fulfillment workflow.
	ErrInvalidStatus = errors.New("invalid status")
)

// OrderLineInput is one checkout item. Name and price are taken from the
// payload as-is; the catalog is consulted only to verify the reference.
type OrderLineInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
}

// CreateOrderInput is the checkout payload. Items are independent of
// whatever is currently stored in the customer's cart.
type CreateOrderInput struct {
	CustomerID      string           `json:"customerId"`
	Items           []OrderLineInput `json:"items"`
	TotalPrice      float64          `json:"totalPrice"`
	OrderType       string           `json:"orderType"`
	DeliveryAddress string           `json:"deliveryAddress"`
	TableNumber     *int64           `json:"tableNumber"`
	Email           string           `json:"email"`
	DoorPhoto       string           `json:"doorPhoto"`
}

// OrderView is an order joined with customer display data. The join happens
// at read time; nothing beyond the customer id is stored on the order.
type OrderView struct {
	domain.Order
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

// OrderService builds immutable order snapshots at checkout and advances
// them through the fulfillment workflow.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerDirectory
	validate  *validator.Validate
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository,
	customers repository.CustomerDirectory) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		customers: customers,
		validate:  validator.New(),
	}
}

// CreateOrder validates the checkout payload in a fixed sequence (first
// failure wins), verifies every product reference, and persists the order
// with status pending and paymentStatus paid (payment completes upstream).
// No partial order is ever persisted.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*OrderView, error) {
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	if in.TotalPrice <= 0 {
		return nil, fmt.Errorf("%w: totalPrice must be a positive number", ErrValidation)
	}
	orderType := domain.OrderType(in.OrderType)
	if !orderType.Valid() {
		return nil, fmt.Errorf("%w: orderType must be delivery or restaurant", ErrValidation)
	}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: email must be a valid address", ErrValidation)
	}
	if orderType == domain.OrderTypeDelivery && in.DeliveryAddress == "" {
		return nil, fmt.Errorf("%w: deliveryAddress is required for delivery orders", ErrValidation)
	}
	if orderType == domain.OrderTypeRestaurant && in.TableNumber == nil {
		return nil, fmt.Errorf("%w: tableNumber is required for restaurant orders", ErrValidation)
	}

	customerID, err := primitive.ObjectIDFromHex(in.CustomerID)
	if err != nil {
		return nil, ErrCustomerNotFound
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(in.Items))
	for _, item := range in.Items {
		pid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if _, err := s.products.GetByID(ctx, pid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
			}
			return nil, err
		}
		// snapshot from the payload, not re-priced from the catalog
		lines = append(lines, domain.OrderLine{
			ProductID: pid,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &domain.Order{
		CustomerID:    customerID,
		Items:         lines,
		TotalPrice:    in.TotalPrice,
		Status:        domain.OrderStatusPending,
		OrderType:     orderType,
		PaymentStatus: domain.PaymentStatusPaid,
		Email:         in.Email,
		DoorPhoto:     in.DoorPhoto,
	}
	if orderType == domain.OrderTypeDelivery {
		addr := in.DeliveryAddress
		order.DeliveryAddress = &addr
	} else {
		order.TableNumber = in.TableNumber
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return &OrderView{Order: *order, CustomerName: customer.Name, CustomerEmail: customer.Email}, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]OrderView, error) {
	oid, err := primitive.ObjectIDFromHex(customerID)
	if err != nil {
		return nil, ErrInvalidReference
	}
	orders, err := s.orders.ListByCustomer(ctx, oid)
	if err != nil {
		return nil, err
	}
	return s.joinCustomers(ctx, orders)
}

// ListAll returns every order, newest first, with customer display fields.
func (s *OrderService) ListAll(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.joinCustomers(ctx, orders)
}

func (s *OrderService) joinCustomers(ctx context.Context, orders []domain.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	cache := make(map[primitive.ObjectID]*domain.Customer)
	for _, o := range orders {
		c, ok := cache[o.CustomerID]
		if !ok {
			var err error
			c, err = s.customers.GetByID(ctx, o.CustomerID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			cache[o.CustomerID] = c
		}
		v := OrderView{Order: o}
		if c != nil {
			v.CustomerName = c.Name
			v.CustomerEmail = c.Email
		}
		views = append(views, v)
	}
	return views, nil
}

// SetStatus moves an order to any of the six workflow statuses; no
// transition adjacency is enforced. The optional assignees are stored as
// opaque staff references.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status string,
	preparedBy, deliveryPersonID *string) (*OrderView, error) {
	st := domain.OrderStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var prepared, courier *primitive.ObjectID
	if preparedBy != nil && *preparedBy != "" {
		id, err := primitive.ObjectIDFromHex(*preparedBy)
		if err != nil {
			return nil, fmt.Errorf("%w: preparedBy must be a valid id", ErrValidation)
		}
		prepared = &id
	}
	if deliveryPersonID != nil && *deliveryPersonID != "" {
		id, err := primitive.ObjectIDFromHex(*deliveryPersonID)
		if err != nil {
			return nil, fmt.Errorf("%w: deliveryPersonId must be a valid id", ErrValidation)
		}
		courier = &id
	}

	order, err := s.orders.UpdateStatus(ctx, oid, st, prepared, courier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	view := &OrderView{Order: *order}
	if c, err := s.customers.GetByID(ctx, order.CustomerID); err == nil {
		view.CustomerName = c.Name
		view.CustomerEmail = c.Email
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return view, nil
}
