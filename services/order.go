package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// statusTransitions is the fixed order status graph. Terminal statuses have
// no outgoing edges.
var statusTransitions = map[string][]string{
	models.OrderPlaced:    {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:   {models.OrderDelivered},
	models.OrderDelivered: {},
	models.OrderCancelled: {},
}

func transitionAllowed(from, to string) bool {
	for _, status := range statusTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// OrderService implements the checkout workflow and the order status machine.
type OrderService struct {
	Orders   storage.OrderStore
	Carts    storage.CartStore
	Products storage.ProductStore
	Users    storage.UserStore
	Email    *utils.EmailService
}

// NewOrderService creates an OrderService on the given stores.
func NewOrderService(orders storage.OrderStore, carts storage.CartStore, products storage.ProductStore, users storage.UserStore, email *utils.EmailService) *OrderService {
	return &OrderService{Orders: orders, Carts: carts, Products: products, Users: users, Email: email}
}

// Place converts the user's cart into an order. Stock is taken with atomic
// conditional decrements, so two concurrent orders can never oversell the
// same product; a failed line rolls back the lines already taken. The order
// freezes the cart's snapshot prices, and the cart is cleared on success.
func (s *OrderService) Place(ctx context.Context, userID primitive.ObjectID, shippingAddress string) (*models.Order, error) {
	shippingAddress = utils.SanitizeText(shippingAddress)
	if shippingAddress == "" {
		return nil, invalid([]FieldError{{Field: "shippingAddress", Message: "Shipping address is required"}})
	}

	cart, err := s.Carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindValidation, "Cart is empty")
		}
		return nil, internal("Cannot place the order", err)
	}
	if len(cart.Items) == 0 {
		return nil, E(KindValidation, "Cart is empty")
	}

	// Verify stock up front and total the snapshot prices, not the live ones.
	totalAmount := 0.0
	for _, item := range cart.Items {
		product, err := s.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, E(KindNotFound, "Product not found")
			}
			return nil, internal("Cannot place the order", err)
		}
		if product.Stock < item.Quantity {
			return nil, E(KindValidation, fmt.Sprintf("Insufficient stock for product %s", item.ProductID.Hex()))
		}
		totalAmount += item.Price * float64(item.Quantity)
	}

	for i, item := range cart.Items {
		if err := s.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.restoreStock(ctx, cart.Items[:i])
			switch {
			case errors.Is(err, storage.ErrNotFound):
				return nil, E(KindNotFound, "Product not found")
			case errors.Is(err, storage.ErrInsufficientStock):
				return nil, E(KindValidation, fmt.Sprintf("Insufficient stock for product %s", item.ProductID.Hex()))
			default:
				return nil, internal("Cannot place the order", err)
			}
		}
	}

	order := &models.Order{
		UserID:          userID,
		Items:           snapshotItems(cart.Items),
		TotalAmount:     totalAmount,
		ShippingAddress: shippingAddress,
		Status:          models.OrderPlaced,
	}
	if _, err := s.Orders.Insert(ctx, order); err != nil {
		s.restoreStock(ctx, cart.Items)
		return nil, internal("Cannot place the order", err)
	}

	if err := s.Carts.Clear(ctx, userID); err != nil {
		return nil, internal("Cannot place the order", err)
	}

	s.sendConfirmation(userID, *order)
	return order, nil
}

func snapshotItems(items []models.CartItem) []models.OrderItem {
	snapshot := make([]models.OrderItem, len(items))
	for i, item := range items {
		snapshot[i] = models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return snapshot
}

// restoreStock undoes stock decrements. Best-effort: a product that has
// vanished in the meantime is skipped.
func (s *OrderService) restoreStock(ctx context.Context, items []models.CartItem) {
	for _, item := range items {
		if err := s.Products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("failed to restore stock for product %s: %v", item.ProductID.Hex(), err)
		}
	}
}

func (s *OrderService) sendConfirmation(userID primitive.ObjectID, order models.Order) {
	if s.Email == nil || s.Users == nil {
		return
	}
	go func() {
		ctx := context.Background()
		user, err := s.Users.FindByID(ctx, userID)
		if err != nil {
			log.Printf("order confirmation: failed to load user %s: %v", userID.Hex(), err)
			return
		}
		if err := s.Email.SendOrderConfirmationEmail(user.Email, user.Name, order); err != nil {
			log.Printf("failed to send order confirmation to %s: %v", user.Email, err)
		}
	}()
}

// MyOrders returns the requesting user's orders.
func (s *OrderService) MyOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.Orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, internal("Cannot fetch orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// All returns every order in the system.
func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	orders, err := s.Orders.FindAll(ctx)
	if err != nil {
		return nil, internal("Cannot fetch orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get returns a single order to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, actorID primitive.ObjectID, actorRole string, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Order not found")
		}
		return nil, internal("Cannot fetch your order", err)
	}
	if order.UserID != actorID && actorRole != models.RoleAdmin {
		return nil, E(KindForbidden, "Unauthorized to view this order")
	}
	return order, nil
}

// Cancel moves an order to cancelled on behalf of its owner or an admin.
// Only placed and confirmed orders can be cancelled; each item's quantity is
// restored onto the product's stock, skipping products that no longer exist.
func (s *OrderService) Cancel(ctx context.Context, actorID primitive.ObjectID, actorRole string, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Order not found")
		}
		return nil, internal("Cannot cancel your order", err)
	}

	if order.UserID != actorID && actorRole != models.RoleAdmin {
		return nil, E(KindForbidden, "Unauthorized to cancel this order")
	}
	if order.Status == models.OrderCancelled {
		return nil, E(KindValidation, "Order is already cancelled")
	}
	if order.Status == models.OrderShipped || order.Status == models.OrderDelivered {
		return nil, E(KindValidation, "Order cannot be cancelled after shipping")
	}

	for _, item := range order.Items {
		if err := s.Products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, internal("Cannot cancel your order", err)
		}
	}

	if err := s.Orders.UpdateStatus(ctx, orderID, models.OrderCancelled); err != nil {
		return nil, internal("Cannot cancel your order", err)
	}
	order.Status = models.OrderCancelled
	return order, nil
}

// UpdateStatus moves an order along the transition graph (admin only at the
// route level). Any transition not in the graph is rejected with an error
// naming the current and requested status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, newStatus string) (*models.Order, error) {
	if _, ok := statusTransitions[newStatus]; !ok {
		return nil, E(KindValidation, "Invalid order status")
	}

	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Order not found")
		}
		return nil, internal("Cannot update order status", err)
	}

	if !transitionAllowed(order.Status, newStatus) {
		return nil, E(KindValidation, fmt.Sprintf("Cannot change order status from %s to %s", order.Status, newStatus))
	}

	if err := s.Orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, internal("Cannot update order status", err)
	}
	order.Status = newStatus
	return order, nil
}
