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

// OrderController handles checkout and order lifecycle requests.
type OrderController struct {
	Service *services.OrderService
}

// NewOrderController creates a new OrderController.
func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{Service: service}
}

type placeOrderRequest struct {
	ShippingAddress string `json:"shippingAddress"`
}

type placeOrderResponse struct {
	Message         string             `json:"message"`
	OrderID         primitive.ObjectID `json:"orderId"`
	TotalAmount     float64            `json:"totalAmount"`
	ShippingAddress string             `json:"shippingAddress"`
	Status          string             `json:"status"`
}

// Place converts the authenticated user's cart into an order.
func (oc *OrderController) Place(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Service.Place(ctx, userID, req.ShippingAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		Message:         "Order placed successfully",
		OrderID:         order.ID,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          order.Status,
	})
}

type orderListResponse struct {
	Message string         `json:"message"`
	Orders  []models.Order `json:"orders"`
}

// MyOrders returns the authenticated user's orders.
func (oc *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := oc.Service.MyOrders(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Message: "Orders fetched successfully",
		Orders:  orders,
	})
}

// GetAll returns every order (admin only).
func (oc *OrderController) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orders, err := oc.Service.All(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Message: "Orders fetched successfully",
		Orders:  orders,
	})
}

type orderResponse struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

// Get returns a single order to its owner or an admin.
func (oc *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := requestActor(w, r)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := oc.Service.Get(ctx, userID, claims.Role, orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Message: "Order fetched successfully",
		Order:   *order,
	})
}

type orderStatusResponse struct {
	Message string             `json:"message"`
	OrderID primitive.ObjectID `json:"orderId"`
	Status  string             `json:"status"`
}

// Cancel cancels an order on behalf of its owner or an admin, restoring the
// ordered quantities onto product stock.
func (oc *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := requestActor(w, r)
	if !ok {
		return
	}

	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.Service.Cancel(ctx, userID, claims.Role, orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		Message: "Order cancelled successfully",
		OrderID: order.ID,
		Status:  order.Status,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along the status graph (admin only).
func (oc *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := oc.Service.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderStatusResponse{
		Message: "Order status updated successfully",
		OrderID: order.ID,
		Status:  order.Status,
	})
}
