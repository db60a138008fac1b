package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecommerce-backend/controllers"
	"ecommerce-backend/models"
	"ecommerce-backend/routes"
	"ecommerce-backend/services"
	"ecommerce-backend/storage"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	utils.JwtKey = []byte("test-secret")
}

type apiFixture struct {
	ms     *storage.MemStore
	router *mux.Router
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ms := storage.NewMemStore()

	userService := services.NewUserService(ms.Users())
	productService := services.NewProductService(ms.Products())
	cartService := services.NewCartService(ms.Carts(), ms.Products())
	orderService := services.NewOrderService(ms.Orders(), ms.Carts(), ms.Products(), ms.Users(), nil)

	router := mux.NewRouter()
	routes.RegisterRoutes(router,
		controllers.NewUserController(userService),
		controllers.NewProductController(productService),
		controllers.NewCartController(cartService),
		controllers.NewOrderController(orderService),
	)
	return &apiFixture{ms: ms, router: router}
}

// seedActor inserts a user with the given role directly into the store and
// returns a valid bearer token for it.
func (f *apiFixture) seedActor(t *testing.T, name, email string, contact int64, role string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:     name,
		Email:    email,
		Contact:  contact,
		Age:      30,
		Address:  "12 Main Street",
		Password: string(hash),
		Role:     role,
	}
	_, err = f.ms.Users().Insert(context.Background(), user)
	require.NoError(t, err)

	token, err := utils.GenerateJWT(user.ID.Hex(), role)
	require.NoError(t, err)
	return user, token
}

func (f *apiFixture) seedProduct(t *testing.T, sellerID primitive.ObjectID, name string, salePrice float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: "A reasonably long product description",
		SellerID:    sellerID,
		CostPrice:   salePrice / 2,
		SalePrice:   salePrice,
		Category:    "general",
		Stock:       stock,
		Images:      []string{},
	}
	_, err := f.ms.Products().Insert(context.Background(), product)
	require.NoError(t, err)
	return product
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAPI_SignupAndLogin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/user/signup", "", map[string]interface{}{
		"name":     "alice",
		"email":    "Alice@Example.com",
		"contact":  5551234567,
		"age":      25,
		"address":  "12 Main Street",
		"password": "Str0ng!pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, models.RoleUser, user["role"])

	rec = f.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Str0ng!pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, "User logged in successfully", body["message"])
	assert.NotEmpty(t, body["token"])

	rec = f.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "WrongPass1!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["message"])
}

func TestAPI_SignupValidationEnvelope(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/user/signup", "", map[string]interface{}{
		"name":     "al",
		"email":    "not-an-email",
		"password": "weak",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	assert.NotEmpty(t, body["errors"])
}

func TestAPI_ProductCreateRoleGated(t *testing.T) {
	f := newAPIFixture(t)
	_, userToken := f.seedActor(t, "plain", "plain@example.com", 5550000001, models.RoleUser)
	_, sellerToken := f.seedActor(t, "seller", "seller@example.com", 5550000002, models.RoleSeller)

	payload := map[string]interface{}{
		"name":        "Mechanical Keyboard",
		"description": "A tenkeyless mechanical keyboard",
		"costPrice":   40,
		"salePrice":   60,
		"category":    "electronics",
		"stock":       5,
	}

	rec := f.do(t, http.MethodPost, "/api/product/products", userToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/product/products", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/product/products", sellerToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Product created successfully", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodGet, "/api/product/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["products"], 1)
}

func TestAPI_ProductSearchQueryParams(t *testing.T) {
	f := newAPIFixture(t)
	seller, _ := f.seedActor(t, "seller", "seller@example.com", 5550000002, models.RoleSeller)
	for i := 0; i < 12; i++ {
		f.seedProduct(t, seller.ID, fmt.Sprintf("Widget %02d", i), float64(10+i), 5)
	}

	rec := f.do(t, http.MethodGet, "/api/product/products/search?minPrice=10&maxPrice=20&page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(11), body["totalProducts"])
	assert.Equal(t, float64(2), body["currentPage"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Len(t, body["products"], 5)

	rec = f.do(t, http.MethodGet, "/api/product/products/search?minPrice=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid minPrice", decodeBody(t, rec)["message"])
}

func TestAPI_CartFlow(t *testing.T) {
	f := newAPIFixture(t)
	seller, _ := f.seedActor(t, "seller", "seller@example.com", 5550000002, models.RoleSeller)
	_, userToken := f.seedActor(t, "buyer", "buyer@example.com", 5550000003, models.RoleUser)
	product := f.seedProduct(t, seller.ID, "Keyboard", 60, 5)

	rec := f.do(t, http.MethodGet, "/api/cart/cart", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart is empty", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodPost, "/api/cart/cart", userToken, map[string]interface{}{
		"productId": product.ID.Hex(),
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Product added to cart", body["message"])
	cart := body["cart"].(map[string]interface{})
	assert.Equal(t, float64(120), cart["totalAmount"])

	rec = f.do(t, http.MethodGet, "/api/cart/cart", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart fetched successfully", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodDelete, "/api/cart/cart/"+product.ID.Hex(), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product removed from cart", decodeBody(t, rec)["message"])
}

func TestAPI_OrderLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	seller, _ := f.seedActor(t, "seller", "seller@example.com", 5550000002, models.RoleSeller)
	_, userToken := f.seedActor(t, "buyer", "buyer@example.com", 5550000003, models.RoleUser)
	_, adminToken := f.seedActor(t, "admin", "admin@example.com", 5550000004, models.RoleAdmin)
	product := f.seedProduct(t, seller.ID, "Keyboard", 60, 5)

	rec := f.do(t, http.MethodPost, "/api/cart/cart", userToken, map[string]interface{}{
		"productId": product.ID.Hex(),
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/order/orders", userToken, map[string]string{
		"shippingAddress": "12 Main Street",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Order placed successfully", body["message"])
	assert.Equal(t, models.OrderPlaced, body["status"])
	assert.Equal(t, float64(120), body["totalAmount"])
	orderID := body["orderId"].(string)

	rec = f.do(t, http.MethodGet, "/api/order/orders/myorders", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["orders"], 1)

	// Status changes are admin only.
	rec = f.do(t, http.MethodPut, "/api/order/orders/"+orderID+"/status", userToken, map[string]string{"status": models.OrderConfirmed})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/api/order/orders/"+orderID+"/status", adminToken, map[string]string{"status": models.OrderConfirmed})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.OrderConfirmed, decodeBody(t, rec)["status"])

	rec = f.do(t, http.MethodPut, "/api/order/orders/"+orderID+"/status", adminToken, map[string]string{"status": models.OrderDelivered})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot change order status from confirmed to delivered", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodPut, "/api/order/orders/"+orderID+"/cancel", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Order cancelled successfully", decodeBody(t, rec)["message"])
}

func TestAPI_OrderPlaceEmptyCart(t *testing.T) {
	f := newAPIFixture(t)
	_, userToken := f.seedActor(t, "buyer", "buyer@example.com", 5550000003, models.RoleUser)

	rec := f.do(t, http.MethodPost, "/api/order/orders", userToken, map[string]string{
		"shippingAddress": "12 Main Street",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", decodeBody(t, rec)["message"])
}

func TestAPI_UserDetailsAdminOnly(t *testing.T) {
	f := newAPIFixture(t)
	target, userToken := f.seedActor(t, "plain", "plain@example.com", 5550000001, models.RoleUser)
	_, adminToken := f.seedActor(t, "admin", "admin@example.com", 5550000004, models.RoleAdmin)

	rec := f.do(t, http.MethodGet, "/api/user/userDetails/"+target.ID.Hex(), userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/user/userDetails/"+target.ID.Hex(), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "User found successfully", body["message"])

	rec = f.do(t, http.MethodGet, "/api/user/userDetails/not-an-id", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid user ID", decodeBody(t, rec)["message"])
}

func TestAPI_LogoutAcknowledges(t *testing.T) {
	f := newAPIFixture(t)
	_, userToken := f.seedActor(t, "plain", "plain@example.com", 5550000001, models.RoleUser)

	rec := f.do(t, http.MethodGet, "/api/user/logout", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User logged out successfully", decodeBody(t, rec)["message"])

	rec = f.do(t, http.MethodGet, "/api/user/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
