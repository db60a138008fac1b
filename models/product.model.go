package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog entry owned by a seller. SalePrice is never
// allowed below CostPrice; Stock never goes negative.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"sellerId"`
	CostPrice   float64            `bson:"cost_price" json:"costPrice"`
	SalePrice   float64            `bson:"sale_price" json:"salePrice"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []string           `bson:"images" json:"images"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ProductSummary is the projection returned by create/update responses.
type ProductSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	SalePrice float64            `json:"salePrice"`
	Category  string             `json:"category"`
	Stock     int                `json:"stock"`
	SellerID  primitive.ObjectID `json:"sellerId"`
}

// Summary projects the product onto the fields exposed after a write.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:        p.ID,
		Name:      p.Name,
		SalePrice: p.SalePrice,
		Category:  p.Category,
		Stock:     p.Stock,
		SellerID:  p.SellerID,
	}
}
