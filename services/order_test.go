package services

import (
	"context"
	"testing"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type orderFixture struct {
	ms     *storage.MemStore
	carts  *CartService
	orders *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	ms := storage.NewMemStore()
	return &orderFixture{
		ms:     ms,
		carts:  NewCartService(ms.Carts(), ms.Products()),
		orders: NewOrderService(ms.Orders(), ms.Carts(), ms.Products(), ms.Users(), nil),
	}
}

func TestOrderService_Place_EmptyCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	_, err := f.orders.Place(context.Background(), primitive.NewObjectID(), "12 Main Street")
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Cart is empty", svcErr.Message)
}

func TestOrderService_Place_ClearedCartIsEmptyToo(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	keyboard := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 5)

	_, err := f.carts.Add(context.Background(), userID, keyboard.ID, 1)
	require.NoError(t, err)
	_, err = f.orders.Place(context.Background(), userID, "12 Main Street")
	require.NoError(t, err)

	// The cart document still exists but has no items.
	_, err = f.orders.Place(context.Background(), userID, "12 Main Street")
	svcErr := asServiceError(t, err)
	assert.Equal(t, "Cart is empty", svcErr.Message)
}

func TestOrderService_Place_Success(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	keyboard := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 5)
	mouse := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Mouse", 20, 10)

	_, err := f.carts.Add(context.Background(), userID, keyboard.ID, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(context.Background(), userID, mouse.ID, 3)
	require.NoError(t, err)

	order, err := f.orders.Place(context.Background(), userID, "12 Main Street")
	require.NoError(t, err)

	assert.Equal(t, models.OrderPlaced, order.Status)
	assert.Equal(t, 2*60.0+3*20.0, order.TotalAmount)
	assert.Equal(t, "12 Main Street", order.ShippingAddress)
	require.Len(t, order.Items, 2)

	// Stock reduced exactly by the ordered quantities.
	updatedKeyboard, err := f.ms.Products().FindByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updatedKeyboard.Stock)
	updatedMouse, err := f.ms.Products().FindByID(context.Background(), mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, updatedMouse.Stock)

	// Cart cleared to zero items and zero total.
	cart, err := f.ms.Carts().FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}

// The order totals the cart's snapshot prices, not the live product prices.
func TestOrderService_Place_UsesSnapshotPrices(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	keyboard := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 5)

	_, err := f.carts.Add(context.Background(), userID, keyboard.ID, 2)
	require.NoError(t, err)

	keyboard.SalePrice = 100
	require.NoError(t, f.ms.Products().Update(context.Background(), keyboard))

	order, err := f.orders.Place(context.Background(), userID, "12 Main Street")
	require.NoError(t, err)
	assert.Equal(t, 2*60.0, order.TotalAmount)
	assert.Equal(t, 60.0, order.Items[0].Price)
}

func TestOrderService_Place_InsufficientStock(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	keyboard := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 5)

	_, err := f.carts.Add(context.Background(), userID, keyboard.ID, 4)
	require.NoError(t, err)

	// Stock dropped below the cart quantity after the add.
	keyboard.Stock = 1
	require.NoError(t, f.ms.Products().Update(context.Background(), keyboard))

	_, err = f.orders.Place(context.Background(), userID, "12 Main Street")
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Contains(t, svcErr.Message, "Insufficient stock for product")

	// Nothing was decremented and the cart is untouched.
	current, err := f.ms.Products().FindByID(context.Background(), keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Stock)
	cart, err := f.ms.Carts().FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestOrderService_Place_ProductVanished(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	keyboard := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 5)

	_, err := f.carts.Add(context.Background(), userID, keyboard.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.ms.Products().Delete(context.Background(), keyboard.ID))

	_, err = f.orders.Place(context.Background(), userID, "12 Main Street")
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "Product not found", svcErr.Message)
}

func TestOrderService_Place_MissingAddress(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	_, err := f.orders.Place(context.Background(), primitive.NewObjectID(), "  ")
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func placeTestOrder(t *testing.T, f *orderFixture, userID primitive.ObjectID, quantity int) (*models.Order, *models.Product) {
	t.Helper()
	product := seedProduct(t, f.ms.Products(), primitive.NewObjectID(), "Keyboard", 60, 10)
	_, err := f.carts.Add(context.Background(), userID, product.ID, quantity)
	require.NoError(t, err)
	order, err := f.orders.Place(context.Background(), userID, "12 Main Street")
	require.NoError(t, err)
	return order, product
}

func TestOrderService_UpdateStatus_StepwiseDelivery(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	order, _ := placeTestOrder(t, f, primitive.NewObjectID(), 1)

	for _, status := range []string{models.OrderConfirmed, models.OrderShipped, models.OrderDelivered} {
		updated, err := f.orders.UpdateStatus(context.Background(), order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderService_UpdateStatus_RejectsSkippedTransition(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	order, _ := placeTestOrder(t, f, primitive.NewObjectID(), 1)

	_, err := f.orders.UpdateStatus(context.Background(), order.ID, models.OrderDelivered)
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Cannot change order status from placed to delivered", svcErr.Message)

	// The order is untouched.
	current, err := f.ms.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPlaced, current.Status)
}

func TestOrderService_UpdateStatus_TerminalStatesHaveNoExits(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()

	delivered, _ := placeTestOrder(t, f, userID, 1)
	for _, status := range []string{models.OrderConfirmed, models.OrderShipped, models.OrderDelivered} {
		_, err := f.orders.UpdateStatus(context.Background(), delivered.ID, status)
		require.NoError(t, err)
	}
	_, err := f.orders.UpdateStatus(context.Background(), delivered.ID, models.OrderCancelled)
	assert.Error(t, err)

	cancelled, _ := placeTestOrder(t, f, userID, 1)
	_, err = f.orders.Cancel(context.Background(), userID, models.RoleUser, cancelled.ID)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(context.Background(), cancelled.ID, models.OrderConfirmed)
	assert.Error(t, err)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	order, _ := placeTestOrder(t, f, primitive.NewObjectID(), 1)

	_, err := f.orders.UpdateStatus(context.Background(), order.ID, "misplaced")
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Invalid order status", svcErr.Message)
}

func TestOrderService_Cancel_RestoresStock(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	order, product := placeTestOrder(t, f, userID, 3)

	afterPlace, err := f.ms.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, afterPlace.Stock)

	cancelled, err := f.orders.Cancel(context.Background(), userID, models.RoleUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	afterCancel, err := f.ms.Products().FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, afterCancel.Stock)
}

// A product deleted after the order was placed is skipped during stock
// restoration; the cancel still succeeds.
func TestOrderService_Cancel_SkipsMissingProducts(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	order, product := placeTestOrder(t, f, userID, 3)
	require.NoError(t, f.ms.Products().Delete(context.Background(), product.ID))

	cancelled, err := f.orders.Cancel(context.Background(), userID, models.RoleUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
}

func TestOrderService_Cancel_RejectedAfterShipping(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	order, _ := placeTestOrder(t, f, userID, 1)

	_, err := f.orders.UpdateStatus(context.Background(), order.ID, models.OrderConfirmed)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(context.Background(), order.ID, models.OrderShipped)
	require.NoError(t, err)

	_, err = f.orders.Cancel(context.Background(), userID, models.RoleUser, order.ID)
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Order cannot be cancelled after shipping", svcErr.Message)
}

func TestOrderService_Cancel_AlreadyCancelled(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	userID := primitive.NewObjectID()
	order, _ := placeTestOrder(t, f, userID, 1)

	_, err := f.orders.Cancel(context.Background(), userID, models.RoleUser, order.ID)
	require.NoError(t, err)
	_, err = f.orders.Cancel(context.Background(), userID, models.RoleUser, order.ID)
	svcErr := asServiceError(t, err)
	assert.Equal(t, "Order is already cancelled", svcErr.Message)
}

func TestOrderService_OwnershipChecks(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	order, _ := placeTestOrder(t, f, owner, 1)

	_, err := f.orders.Get(context.Background(), stranger, models.RoleUser, order.ID)
	svcErr := asServiceError(t, err)
	assert.Equal(t, KindForbidden, svcErr.Kind)

	_, err = f.orders.Get(context.Background(), stranger, models.RoleAdmin, order.ID)
	assert.NoError(t, err)

	_, err = f.orders.Cancel(context.Background(), stranger, models.RoleUser, order.ID)
	svcErr = asServiceError(t, err)
	assert.Equal(t, KindForbidden, svcErr.Kind)

	_, err = f.orders.Cancel(context.Background(), stranger, models.RoleAdmin, order.ID)
	assert.NoError(t, err)
}

func TestOrderService_MyOrders(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	placeTestOrder(t, f, first, 1)
	placeTestOrder(t, f, first, 2)
	placeTestOrder(t, f, second, 1)

	mine, err := f.orders.MyOrders(context.Background(), first)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.orders.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
