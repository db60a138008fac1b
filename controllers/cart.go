package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartController handles cart requests.
type CartController struct {
	Service *services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(service *services.CartService) *CartController {
	return &CartController{Service: service}
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Message string       `json:"message"`
	Cart    *models.Cart `json:"cart"`
}

// Add puts a product into the authenticated user's cart.
func (cc *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid product ID"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Service.Add(ctx, userID, productID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{
		Message: "Product added to cart",
		Cart:    cart,
	})
}

// Remove filters a product out of the authenticated user's cart.
func (cc *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid product ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Service.Remove(ctx, userID, productID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{
		Message: "Product removed from cart",
		Cart:    cart,
	})
}

type cartViewResponse struct {
	Message string           `json:"message"`
	Cart    *models.CartView `json:"cart"`
}

// Get returns the authenticated user's cart with product details expanded.
// A user without a cart gets an explicit empty result, not an error.
func (cc *CartController) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := cc.Service.Get(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if view == nil {
		writeJSON(w, http.StatusOK, cartViewResponse{Message: "Cart is empty", Cart: nil})
		return
	}

	writeJSON(w, http.StatusOK, cartViewResponse{
		Message: "Cart fetched successfully",
		Cart:    view,
	})
}
