package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arabica/internal/domain"
)

// MongoStore backs the repositories with a mongo database. Collections:
// products, carts, orders, customers. Carts carry a unique index on
// customerId; the resulting duplicate-key error on concurrent first saves is
// surfaced as ErrDuplicateKey and recovered by the cart service.
type MongoStore struct {
	products  *mongo.Collection
	carts     *mongo.Collection
	orders    *mongo.Collection
	customers *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		products:  db.Collection("products"),
		carts:     db.Collection("carts"),
		orders:    db.Collection("orders"),
		customers: db.Collection("customers"),
	}
}

// EnsureIndexes creates the cart uniqueness index. Must run before the first
// cart write; idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "customerId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create cart index: %w", err)
	}
	return nil
}

// MongoProducts implements ProductRepository.
type MongoProducts struct{ store *MongoStore }

func NewMongoProducts(store *MongoStore) *MongoProducts { return &MongoProducts{store: store} }

var _ ProductRepository = (*MongoProducts)(nil)

func (r *MongoProducts) Create(ctx context.Context, p *domain.Product) error {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err := r.store.products.InsertOne(ctx, p)
	return err
}

func (r *MongoProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var p domain.Product
	err := r.store.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProducts) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.store.products.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"available":   p.Available,
		"image":       p.Image,
		"updatedAt":   p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.store.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.OnlyAvailable {
		filter["available"] = true
	}
	cur, err := r.store.products.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MongoCarts implements CartRepository.
type MongoCarts struct{ store *MongoStore }

func NewMongoCarts(store *MongoStore) *MongoCarts { return &MongoCarts{store: store} }

var _ CartRepository = (*MongoCarts)(nil)

func (r *MongoCarts) Create(ctx context.Context, c *domain.Cart) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	_, err := r.store.carts.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *MongoCarts) GetByCustomer(ctx context.Context, customerID primitive.ObjectID) (*domain.Cart, error) {
	var c domain.Cart
	err := r.store.carts.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoCarts) Update(ctx context.Context, c *domain.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.store.carts.UpdateOne(ctx, bson.M{"customerId": c.CustomerID}, bson.M{"$set": bson.M{
		"items":     c.Items,
		"updatedAt": c.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCarts) DeleteByCustomer(ctx context.Context, customerID primitive.ObjectID) error {
	_, err := r.store.carts.DeleteOne(ctx, bson.M{"customerId": customerID})
	return err
}

// MongoOrders implements OrderRepository.
type MongoOrders struct{ store *MongoStore }

func NewMongoOrders(store *MongoStore) *MongoOrders { return &MongoOrders{store: store} }

var _ OrderRepository = (*MongoOrders)(nil)

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *MongoOrders) Create(ctx context.Context, o *domain.Order) error {
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	_, err := r.store.orders.InsertOne(ctx, o)
	return err
}

func (r *MongoOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var o domain.Order
	err := r.store.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOrders) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

func (r *MongoOrders) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrders) find(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	cur, err := r.store.orders.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.OrderStatus,
	preparedBy, deliveryPersonID *primitive.ObjectID) (*domain.Order, error) {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}
	if preparedBy != nil {
		set["preparedBy"] = preparedBy
	}
	if deliveryPersonID != nil {
		set["deliveryPersonId"] = deliveryPersonID
	}
	var o domain.Order
	err := r.store.orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// MongoCustomers implements the read-only CustomerDirectory over the
// customers collection owned by the account service.
type MongoCustomers struct{ store *MongoStore }

func NewMongoCustomers(store *MongoStore) *MongoCustomers { return &MongoCustomers{store: store} }

var _ CustomerDirectory = (*MongoCustomers)(nil)

func (r *MongoCustomers) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.store.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoCustomers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.store.customers.FindOne(ctx, bson.M{"email": email}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
