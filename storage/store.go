package storage

import (
	"context"
	"errors"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors returned by every store implementation.
var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("duplicate unique field")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// UserStore persists user accounts.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// ProductFilter narrows a product search. Nil price bounds are open ends;
// Skip/Limit implement pagination.
type ProductFilter struct {
	Keyword  string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Skip     int64
	Limit    int64
}

// ProductStore persists catalog entries. DecrementStock is a conditional
// atomic update: it only succeeds when the current stock covers the quantity,
// and returns ErrInsufficientStock otherwise.
type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// CartStore persists the single active cart per user.
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Upsert(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// OrderStore persists orders. Orders are immutable except for status.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
}
