package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a cart. Price is the product's sale price
// snapshotted when the line was first added.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Cart is a user's single active cart. TotalAmount is recomputed on every
// mutation and always equals the sum of quantity*price over the items.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	Items       []CartItem         `bson:"items" json:"items"`
	TotalAmount float64            `bson:"total_amount" json:"totalAmount"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Total recomputes the cart total from its items.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

// CartItemView is a cart line with its product expanded via a secondary
// lookup. Product is nil when the referenced product no longer exists.
type CartItemView struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
}

// CartView is the expanded cart returned by the cart read endpoint.
type CartView struct {
	ID          primitive.ObjectID `json:"id"`
	UserID      primitive.ObjectID `json:"userId"`
	Items       []CartItemView     `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
}
