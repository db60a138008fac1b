package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Terminal statuses have no outgoing transitions.
const (
	OrderPlaced    = "placed"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderItem is a frozen copy of a cart line at checkout time. Later product
// price changes never affect existing orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Order is an immutable record of a checkout; only Status ever changes, and
// only forward through the transition graph.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"total_amount" json:"totalAmount"`
	ShippingAddress string             `bson:"shipping_address" json:"shippingAddress"`
	Status          string             `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
