package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"arabica/internal/domain"
)

// MemoryStore is an in-memory document store mirroring the mongo layout.
// Used by tests and local runs without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	productsByID  map[primitive.ObjectID]domain.Product
	cartsByOwner  map[primitive.ObjectID]domain.Cart
	ordersByID    map[primitive.ObjectID]domain.Order
	customersByID map[primitive.ObjectID]domain.Customer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID:  make(map[primitive.ObjectID]domain.Product),
		cartsByOwner:  make(map[primitive.ObjectID]domain.Cart),
		ordersByID:    make(map[primitive.ObjectID]domain.Order),
		customersByID: make(map[primitive.ObjectID]domain.Customer),
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.productsByID[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.OnlyAvailable && !p.Available {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MemoryCarts keys carts by owner, which is exactly the unique index the
// mongo store declares on customerId.
type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts { return &MemoryCarts{store: store} }

var _ CartRepository = (*MemoryCarts)(nil)

func (mc *MemoryCarts) Create(ctx context.Context, c *domain.Cart) error {
	mc.store.mu.Lock()
	defer mc.store.mu.Unlock()
	if _, ok := mc.store.cartsByOwner[c.CustomerID]; ok {
		return ErrDuplicateKey
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	mc.store.cartsByOwner[c.CustomerID] = *c
	return nil
}

func (mc *MemoryCarts) GetByCustomer(ctx context.Context, customerID primitive.ObjectID) (*domain.Cart, error) {
	mc.store.mu.RLock()
	defer mc.store.mu.RUnlock()
	c, ok := mc.store.cartsByOwner[customerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	cp.Items = append([]domain.CartLine(nil), c.Items...)
	return &cp, nil
}

func (mc *MemoryCarts) Update(ctx context.Context, c *domain.Cart) error {
	mc.store.mu.Lock()
	defer mc.store.mu.Unlock()
	prev, ok := mc.store.cartsByOwner[c.CustomerID]
	if !ok {
		return ErrNotFound
	}
	c.ID = prev.ID
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	mc.store.cartsByOwner[c.CustomerID] = *c
	return nil
}

func (mc *MemoryCarts) DeleteByCustomer(ctx context.Context, customerID primitive.ObjectID) error {
	mc.store.mu.Lock()
	defer mc.store.mu.Unlock()
	delete(mc.store.cartsByOwner, customerID)
	return nil
}

// MemoryOrders implements OrderRepository on the shared store.
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	mo.store.ordersByID[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	cp.Items = append([]domain.OrderLine(nil), o.Items...)
	return &cp, nil
}

func (mo *MemoryOrders) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (mo *MemoryOrders) ListAll(ctx context.Context) ([]domain.Order, error) {
	mo.store.mu.RLock()
	defer mo.store.mu.RUnlock()
	out := make([]domain.Order, 0, len(mo.store.ordersByID))
	for _, o := range mo.store.ordersByID {
		out = append(out, o)
	}
	sortNewestFirst(out)
	return out, nil
}

func (mo *MemoryOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.OrderStatus,
	preparedBy, deliveryPersonID *primitive.ObjectID) (*domain.Order, error) {
	mo.store.mu.Lock()
	defer mo.store.mu.Unlock()
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	if preparedBy != nil {
		o.PreparedBy = preparedBy
	}
	if deliveryPersonID != nil {
		o.DeliveryPersonID = deliveryPersonID
	}
	o.UpdatedAt = time.Now().UTC()
	mo.store.ordersByID[id] = o
	cp := o
	return &cp, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			// stable tiebreak so paging does not flicker
			return orders[i].ID.Hex() > orders[j].ID.Hex()
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// MemoryCustomers is a seedable stand-in for the account directory.
type MemoryCustomers struct{ store *MemoryStore }

func NewMemoryCustomers(store *MemoryStore) *MemoryCustomers { return &MemoryCustomers{store: store} }

var _ CustomerDirectory = (*MemoryCustomers)(nil)

// Seed registers a customer and returns its generated id.
func (mc *MemoryCustomers) Seed(c domain.Customer) primitive.ObjectID {
	mc.store.mu.Lock()
	defer mc.store.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	mc.store.customersByID[c.ID] = c
	return c.ID
}

func (mc *MemoryCustomers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error) {
	mc.store.mu.RLock()
	defer mc.store.mu.RUnlock()
	c, ok := mc.store.customersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (mc *MemoryCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	mc.store.mu.RLock()
	defer mc.store.mu.RUnlock()
	for _, c := range mc.store.customersByID {
		if c.Email == email {
			cp := c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
