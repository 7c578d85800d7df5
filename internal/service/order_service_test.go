package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
	"arabica/internal/repository"
)

type orderFixture struct {
	store    *repository.MemoryStore
	orders   *repository.MemoryOrders
	svc      *OrderService
	customer primitive.ObjectID
	latte    *domain.Product
	mocha    *domain.Product
}

func setupOrder(t *testing.T) *orderFixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	orders := repository.NewMemoryOrders(store)
	customers := repository.NewMemoryCustomers(store)
	f := &orderFixture{
		store:    store,
		orders:   orders,
		svc:      NewOrderService(orders, store, customers),
		customer: customers.Seed(domain.Customer{Name: "Omar", Email: "omar@example.com"}),
	}
	f.latte = &domain.Product{Name: "Latte", Price: 3.5, Category: domain.CategoryCoffee, Available: true}
	f.mocha = &domain.Product{Name: "Mocha", Price: 4.0, Category: domain.CategoryCoffee, Available: true}
	if err := store.Create(ctx, f.latte); err != nil {
		t.Fatalf("seed latte: %v", err)
	}
	if err := store.Create(ctx, f.mocha); err != nil {
		t.Fatalf("seed mocha: %v", err)
	}
	return f
}

func (f *orderFixture) validInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerID: f.customer.Hex(),
		Items: []OrderLineInput{
			{ProductID: f.latte.ID.Hex(), Name: "Latte", Price: 3.5, Quantity: 2},
		},
		TotalPrice:  7.00,
		OrderType:   "restaurant",
		TableNumber: ptrI(4),
		Email:       "omar@example.com",
	}
}

func TestCreateOrder_RestaurantScenario(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	view, err := f.svc.CreateOrder(ctx, f.validInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if view.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending, got %v", view.Status)
	}
	if view.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("expected paid, got %v", view.PaymentStatus)
	}
	if view.TableNumber == nil || *view.TableNumber != 4 {
		t.Fatalf("tableNumber not stored: %v", view.TableNumber)
	}
	if view.DeliveryAddress != nil {
		t.Fatalf("deliveryAddress must be null for restaurant orders")
	}
	if view.TotalPrice != 7.00 {
		t.Fatalf("totalPrice not taken from payload: %v", view.TotalPrice)
	}
	if view.CustomerName != "Omar" {
		t.Fatalf("customer display join missing: %q", view.CustomerName)
	}
}

func TestCreateOrder_DeliveryBranch(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	in := f.validInput()
	in.OrderType = "delivery"
	in.TableNumber = nil
	in.DeliveryAddress = "12 Bean St"
	view, err := f.svc.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if view.DeliveryAddress == nil || *view.DeliveryAddress != "12 Bean St" {
		t.Fatalf("deliveryAddress not stored: %v", view.DeliveryAddress)
	}
	if view.TableNumber != nil {
		t.Fatalf("tableNumber must be null for delivery orders")
	}
}

func TestCreateOrder_ValidationSequence(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	cases := []struct {
		name    string
		mutate  func(*CreateOrderInput)
		wantMsg string
	}{
		{"missing customer", func(in *CreateOrderInput) { in.CustomerID = "" }, "customerId"},
		{"empty items", func(in *CreateOrderInput) { in.Items = nil }, "items"},
		{"non-positive total", func(in *CreateOrderInput) { in.TotalPrice = 0 }, "totalPrice"},
		{"bad order type", func(in *CreateOrderInput) { in.OrderType = "takeaway" }, "orderType"},
		{"missing email", func(in *CreateOrderInput) { in.Email = "" }, "email"},
		{"bad email", func(in *CreateOrderInput) { in.Email = "not-an-address" }, "email"},
		{"restaurant without table", func(in *CreateOrderInput) { in.TableNumber = nil }, "tableNumber"},
		{"delivery without address", func(in *CreateOrderInput) {
			in.OrderType = "delivery"
			in.DeliveryAddress = ""
		}, "deliveryAddress"},
	}
	for _, tc := range cases {
		in := f.validInput()
		tc.mutate(&in)
		_, err := f.svc.CreateOrder(ctx, in)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: message %q does not name %q", tc.name, err.Error(), tc.wantMsg)
		}
	}

	// field failures are reported before reference resolution
	in := f.validInput()
	in.CustomerID = primitive.NewObjectID().Hex() // unknown customer
	in.TotalPrice = -1
	if _, err := f.svc.CreateOrder(ctx, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation to win over customer lookup, got %v", err)
	}
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	in := f.validInput()
	in.CustomerID = primitive.NewObjectID().Hex()
	if _, err := f.svc.CreateOrder(ctx, in); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCreateOrder_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	missing := primitive.NewObjectID()
	in := f.validInput()
	in.Items = []OrderLineInput{
		{ProductID: f.latte.ID.Hex(), Name: "Latte", Price: 3.5, Quantity: 1},
		{ProductID: missing.Hex(), Name: "Ghost", Price: 1.0, Quantity: 1},
		{ProductID: f.mocha.ID.Hex(), Name: "Mocha", Price: 4.0, Quantity: 1},
	}
	_, err := f.svc.CreateOrder(ctx, in)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), missing.Hex()) {
		t.Fatalf("error does not name the offending product: %v", err)
	}
	// nothing persisted
	all, listErr := f.svc.ListAll(ctx)
	if listErr != nil {
		t.Fatalf("list all: %v", listErr)
	}
	if len(all) != 0 {
		t.Fatalf("partial order persisted: %d", len(all))
	}
}

func TestCreateOrder_SnapshotImmuneToCatalogEdits(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	if _, err := f.svc.CreateOrder(ctx, f.validInput()); err != nil {
		t.Fatalf("create order: %v", err)
	}

	f.latte.Price = 9.99
	f.latte.Name = "Grand Latte"
	if err := f.store.Update(ctx, f.latte); err != nil {
		t.Fatalf("update product: %v", err)
	}

	orders, err := f.svc.ListByCustomer(ctx, f.customer.Hex())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	line := orders[0].Items[0]
	if line.Name != "Latte" || line.Price != 3.5 {
		t.Fatalf("order snapshot altered by catalog edit: %+v", line)
	}
}

func TestListByCustomer_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.CreateOrder(ctx, f.validInput()); err != nil {
			t.Fatalf("create order %d: %v", i, err)
		}
	}
	orders, err := f.svc.ListByCustomer(ctx, f.customer.Hex())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].CreatedAt.After(orders[i-1].CreatedAt) {
			t.Fatalf("orders not newest-first")
		}
	}
}

func TestSetStatus_AnyToAny(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	view, err := f.svc.CreateOrder(ctx, f.validInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// no adjacency constraints, including leaving conventional terminals
	sequence := []string{"preparing", "ready", "on-the-way", "delivered", "cancelled", "pending"}
	for _, st := range sequence {
		updated, err := f.svc.SetStatus(ctx, view.ID.Hex(), st, nil, nil)
		if err != nil {
			t.Fatalf("set status %q: %v", st, err)
		}
		if string(updated.Status) != st {
			t.Fatalf("status not persisted: want %q got %q", st, updated.Status)
		}
	}
}

func TestSetStatus_Assignees(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	view, err := f.svc.CreateOrder(ctx, f.validInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	barista := primitive.NewObjectID().Hex()
	courier := primitive.NewObjectID().Hex()
	updated, err := f.svc.SetStatus(ctx, view.ID.Hex(), "preparing", &barista, &courier)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.PreparedBy == nil || updated.PreparedBy.Hex() != barista {
		t.Fatalf("preparedBy not stored: %v", updated.PreparedBy)
	}
	if updated.DeliveryPersonID == nil || updated.DeliveryPersonID.Hex() != courier {
		t.Fatalf("deliveryPersonId not stored: %v", updated.DeliveryPersonID)
	}

	bad := "not-an-id"
	if _, err := f.svc.SetStatus(ctx, view.ID.Hex(), "ready", &bad, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for malformed assignee, got %v", err)
	}
}

func TestSetStatus_Errors(t *testing.T) {
	ctx := context.Background()
	f := setupOrder(t)

	if _, err := f.svc.CreateOrder(ctx, f.validInput()); err != nil {
		t.Fatalf("create order: %v", err)
	}

	// invalid status is rejected before the order lookup
	if _, err := f.svc.SetStatus(ctx, "whatever", "shipped", nil, nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, primitive.NewObjectID().Hex(), "ready", nil, nil); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, "not-hex", "ready", nil, nil); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for malformed id, got %v", err)
	}
}
