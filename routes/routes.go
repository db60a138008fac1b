// routes/routes.go
package routes

import (
	"net/http"

	"ecommerce-backend/controllers"
	"ecommerce-backend/middleware"
	"ecommerce-backend/models"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController, orderController *controllers.OrderController) {
	auth := middleware.AuthMiddleware
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	sellerOrAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleSeller)

	// User routes
	user := router.PathPrefix("/api/user").Subrouter()
	user.HandleFunc("/signup", userController.Signup).Methods(http.MethodPost)
	user.HandleFunc("/login", userController.Login).Methods(http.MethodPost)
	user.Handle("/reset-password", auth(http.HandlerFunc(userController.ResetPassword))).Methods(http.MethodPut)
	user.Handle("/logout", auth(http.HandlerFunc(userController.Logout))).Methods(http.MethodGet)
	user.Handle("/userDetails/{id}", auth(adminOnly(http.HandlerFunc(userController.UserDetails)))).Methods(http.MethodGet)

	// Product routes; search must come before the {id} route
	product := router.PathPrefix("/api/product").Subrouter()
	product.HandleFunc("/products/search", productController.Search).Methods(http.MethodGet)
	product.HandleFunc("/products", productController.GetAll).Methods(http.MethodGet)
	product.Handle("/products", auth(sellerOrAdmin(http.HandlerFunc(productController.Create)))).Methods(http.MethodPost)
	product.HandleFunc("/products/{id}", productController.Get).Methods(http.MethodGet)
	product.Handle("/products/{id}", auth(sellerOrAdmin(http.HandlerFunc(productController.Update)))).Methods(http.MethodPut)
	product.Handle("/products/{id}", auth(adminOnly(http.HandlerFunc(productController.Delete)))).Methods(http.MethodDelete)

	// Cart routes
	cart := router.PathPrefix("/api/cart").Subrouter()
	cart.Handle("/cart", auth(http.HandlerFunc(cartController.Add))).Methods(http.MethodPost)
	cart.Handle("/cart", auth(http.HandlerFunc(cartController.Get))).Methods(http.MethodGet)
	cart.Handle("/cart/{productId}", auth(http.HandlerFunc(cartController.Remove))).Methods(http.MethodDelete)

	// Order routes
	order := router.PathPrefix("/api/order").Subrouter()
	order.Handle("/orders", auth(http.HandlerFunc(orderController.Place))).Methods(http.MethodPost)
	order.Handle("/orders/myorders", auth(http.HandlerFunc(orderController.MyOrders))).Methods(http.MethodGet)
	order.Handle("/orders", auth(adminOnly(http.HandlerFunc(orderController.GetAll)))).Methods(http.MethodGet)
	order.Handle("/orders/{id}", auth(http.HandlerFunc(orderController.Get))).Methods(http.MethodGet)
	order.Handle("/orders/{id}/cancel", auth(http.HandlerFunc(orderController.Cancel))).Methods(http.MethodPut)
	order.Handle("/orders/{id}/status", auth(adminOnly(http.HandlerFunc(orderController.UpdateStatus)))).Methods(http.MethodPut)
}
