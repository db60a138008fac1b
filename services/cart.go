package services

import (
	"context"
	"errors"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartService maintains the single active cart per user.
type CartService struct {
	Carts    storage.CartStore
	Products storage.ProductStore
}

// NewCartService creates a CartService on the given stores.
func NewCartService(carts storage.CartStore, products storage.ProductStore) *CartService {
	return &CartService{Carts: carts, Products: products}
}

// Add puts quantity units of a product into the user's cart, creating the
// cart if needed. An existing line for the product is merged; a new line
// snapshots the product's current sale price. The cart total is recomputed.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, invalid([]FieldError{{Field: "quantity", Message: "Quantity must be at least 1"}})
	}

	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Product not found")
		}
		return nil, internal("Failed to add product to cart", err)
	}
	if product.Stock < quantity {
		return nil, E(KindValidation, "Not enough stock")
	}

	cart, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, internal("Failed to add product to cart", err)
		}
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}

	merged := false
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.SalePrice,
		})
	}
	cart.TotalAmount = cart.Total()

	if err := s.Carts.Upsert(ctx, cart); err != nil {
		return nil, internal("Failed to add product to cart", err)
	}
	return cart, nil
}

// Remove filters the product's line out of the cart and recomputes the total.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Cart not found")
		}
		return nil, internal("Failed to delete product from cart", err)
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items
	cart.TotalAmount = cart.Total()

	if err := s.Carts.Upsert(ctx, cart); err != nil {
		return nil, internal("Failed to delete product from cart", err)
	}
	return cart, nil
}

// Get returns the user's cart with each line's product expanded through a
// secondary lookup. A user without a cart gets (nil, nil), which the HTTP
// boundary reports as an empty cart rather than an error.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, internal("Failed to fetch cart", err)
	}

	view := &models.CartView{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       make([]models.CartItemView, 0, len(cart.Items)),
		TotalAmount: cart.TotalAmount,
	}
	for _, item := range cart.Items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, internal("Failed to fetch cart", err)
		}
		view.Items = append(view.Items, models.CartItemView{
			Product:  product,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return view, nil
}
