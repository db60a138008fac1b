// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"ecommerce-backend/controllers"
	"ecommerce-backend/routes"
	"ecommerce-backend/services"
	"ecommerce-backend/storage"
	"ecommerce-backend/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))
	if len(utils.JwtKey) == 0 {
		log.Fatal("JWT_SECRET is not set")
	}

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	db := client.Database("ecommerce")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storage.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}

	// Wire stores into services
	users := storage.NewMongoUsers(db)
	products := storage.NewMongoProducts(db)
	carts := storage.NewMongoCarts(db)
	orders := storage.NewMongoOrders(db)

	userService := services.NewUserService(users)
	productService := services.NewProductService(products)
	cartService := services.NewCartService(carts, products)
	orderService := services.NewOrderService(orders, carts, products, users, emailService)

	// Initialize controllers
	userController := controllers.NewUserController(userService)
	productController := controllers.NewProductController(productService)
	cartController := controllers.NewCartController(cartService)
	orderController := controllers.NewOrderController(orderService)

	// Set up the router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "API is running"})
	}).Methods(http.MethodGet)

	// Register routes
	routes.RegisterRoutes(router, userController, productController, cartController, orderController)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
