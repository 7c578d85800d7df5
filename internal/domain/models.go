package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category of a catalog product.
type Category string

const (
	CategoryCoffee   Category = "coffee"
	CategoryTea      Category = "tea"
	CategoryPastry   Category = "pastry"
	CategorySandwich Category = "sandwich"
	CategoryDessert  Category = "dessert"
	CategoryOther    Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCoffee, CategoryTea, CategoryPastry, CategorySandwich, CategoryDessert, CategoryOther:
		return true
	}
	return false
}

// Product is a catalog item. Mutable independently of carts and orders;
// carts and orders copy the fields they need instead of joining at read time.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    Category           `bson:"category" json:"category"`
	Available   bool               `bson:"available" json:"available"`
	Image       string             `bson:"image" json:"image"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Customer is a directory record; account management lives elsewhere,
// this service only reads it.
type Customer struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// CartLine is one cart position. Everything except ProductID and Quantity
// is a snapshot copied from the product when the line was saved.
type CartLine struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int64              `bson:"quantity" json:"quantity"`
	Image       string             `bson:"image" json:"image"`
	Description string             `bson:"description" json:"description"`
	Category    Category           `bson:"category" json:"category"`
}

// Cart is the single mutable staging list of a customer.
// At most one cart document exists per customer (unique index on customerId).
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	Items      []CartLine         `bson:"items" json:"items"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderStatus of the fulfillment workflow.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusOnTheWay  OrderStatus = "on-the-way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusOnTheWay, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderType fixes how an order is fulfilled. Set once at checkout.
type OrderType string

const (
	OrderTypeDelivery   OrderType = "delivery"
	OrderTypeRestaurant OrderType = "restaurant"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDelivery || t == OrderTypeRestaurant
}

// PaymentStatus is recorded, not processed.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// OrderLine is an immutable snapshot taken from the checkout payload.
type OrderLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
}

// Order is immutable after creation except Status, PreparedBy and
// DeliveryPersonID. Exactly one of DeliveryAddress/TableNumber is set,
// determined by OrderType.
type Order struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CustomerID       primitive.ObjectID  `bson:"customerId" json:"customerId"`
	Items            []OrderLine         `bson:"items" json:"items"`
	TotalPrice       float64             `bson:"totalPrice" json:"totalPrice"`
	Status           OrderStatus         `bson:"status" json:"status"`
	OrderType        OrderType           `bson:"orderType" json:"orderType"`
	DeliveryAddress  *string             `bson:"deliveryAddress" json:"deliveryAddress"`
	TableNumber      *int64              `bson:"tableNumber" json:"tableNumber"`
	PreparedBy       *primitive.ObjectID `bson:"preparedBy" json:"preparedBy"`
	DeliveryPersonID *primitive.ObjectID `bson:"deliveryPersonId" json:"deliveryPersonId"`
	PaymentStatus    PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	Email            string              `bson:"email" json:"email"`
	DoorPhoto        string              `bson:"doorPhoto,omitempty" json:"doorPhoto,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
