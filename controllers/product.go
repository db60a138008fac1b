package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductController handles catalog requests.
type ProductController struct {
	Service *services.ProductService
}

// NewProductController creates a new ProductController.
func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{Service: service}
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CostPrice   *float64 `json:"costPrice"`
	SalePrice   *float64 `json:"salePrice"`
	Category    string   `json:"category"`
	Stock       *int     `json:"stock"`
	Images      []string `json:"images"`
}

type productWriteResponse struct {
	Message string                `json:"message"`
	Product models.ProductSummary `json:"product"`
}

// Create adds a new product owned by the authenticated seller.
func (pc *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	sellerID, _, ok := requestActor(w, r)
	if !ok {
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := pc.Service.Create(ctx, sellerID, services.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		Category:    req.Category,
		Stock:       req.Stock,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, productWriteResponse{
		Message: "Product created successfully",
		Product: product.Summary(),
	})
}

type productListResponse struct {
	Message  string           `json:"message"`
	Products []models.Product `json:"products"`
}

// GetAll retrieves the whole catalog.
func (pc *ProductController) GetAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	products, err := pc.Service.GetAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productListResponse{
		Message:  "Products fetched successfully",
		Products: products,
	})
}

type productResponse struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
}

// Get retrieves a single product by id.
func (pc *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid product ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := pc.Service.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productResponse{
		Message: "Product fetched successfully",
		Product: *product,
	})
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	CostPrice   *float64 `json:"costPrice"`
	SalePrice   *float64 `json:"salePrice"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Images      []string `json:"images"`
}

// Update applies a partial update (owning seller or admin).
func (pc *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	actorID, claims, ok := requestActor(w, r)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid product ID"})
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := pc.Service.Update(ctx, actorID, claims.Role, id, services.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		Category:    req.Category,
		Stock:       req.Stock,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productWriteResponse{
		Message: "Product updated successfully",
		Product: product.Summary(),
	})
}

// Delete removes a product (admin only).
func (pc *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid product ID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := pc.Service.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
}

type searchResponse struct {
	Message       string           `json:"message"`
	TotalProducts int64            `json:"totalProducts"`
	CurrentPage   int              `json:"currentPage"`
	TotalPages    int              `json:"totalPages"`
	Products      []models.Product `json:"products"`
}

// Search filters the catalog by keyword, category, and price range, with
// pagination.
func (pc *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	in := services.SearchInput{
		Keyword:  query.Get("keyword"),
		Category: query.Get("category"),
	}

	if raw := query.Get("minPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid minPrice"})
			return
		}
		in.MinPrice = &value
	}
	if raw := query.Get("maxPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid maxPrice"})
			return
		}
		in.MaxPrice = &value
	}
	if raw := query.Get("page"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid page"})
			return
		}
		in.Page = value
	}
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid limit"})
			return
		}
		in.Limit = value
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := pc.Service.Search(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Message:       "Products fetched successfully",
		TotalProducts: result.TotalProducts,
		CurrentPage:   result.CurrentPage,
		TotalPages:    result.TotalPages,
		Products:      result.Products,
	})
}
