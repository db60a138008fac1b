package services

import (
	"context"
	"errors"
	"fmt"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"
	"ecommerce-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page size bounds for product search.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ProductService implements catalog CRUD and search.
type ProductService struct {
	Products storage.ProductStore
}

// NewProductService creates a ProductService on the given store.
func NewProductService(products storage.ProductStore) *ProductService {
	return &ProductService{Products: products}
}

// CreateProductInput carries the create request fields. Pointer fields
// distinguish an absent numeric from an explicit zero.
type CreateProductInput struct {
	Name        string
	Description string
	CostPrice   *float64
	SalePrice   *float64
	Category    string
	Stock       *int
	Images      []string
}

func validateCreateProduct(in CreateProductInput) []FieldError {
	var fields []FieldError
	if len(in.Name) < 3 || len(in.Name) > 100 {
		fields = append(fields, FieldError{Field: "name", Message: "Name must be between 3 and 100 characters"})
	}
	if len(in.Description) < 10 {
		fields = append(fields, FieldError{Field: "description", Message: "Description must be at least 10 characters"})
	}
	if in.CostPrice == nil || *in.CostPrice < 0 {
		fields = append(fields, FieldError{Field: "costPrice", Message: "Cost price must be a non-negative number"})
	}
	if in.SalePrice == nil || *in.SalePrice < 0 {
		fields = append(fields, FieldError{Field: "salePrice", Message: "Sale price must be a non-negative number"})
	}
	if in.Category == "" {
		fields = append(fields, FieldError{Field: "category", Message: "Category is required"})
	}
	if in.Stock == nil || *in.Stock < 0 {
		fields = append(fields, FieldError{Field: "stock", Message: "Stock must be a non-negative number"})
	}
	return fields
}

// Create adds a product owned by the given seller.
func (s *ProductService) Create(ctx context.Context, sellerID primitive.ObjectID, in CreateProductInput) (*models.Product, error) {
	in.Name = utils.SanitizeText(in.Name)
	in.Description = utils.SanitizeText(in.Description)
	in.Category = utils.SanitizeText(in.Category)

	if fields := validateCreateProduct(in); len(fields) > 0 {
		return nil, invalid(fields)
	}
	if *in.SalePrice < *in.CostPrice {
		return nil, E(KindValidation, "Sale price cannot be less than cost price")
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}
	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		SellerID:    sellerID,
		CostPrice:   *in.CostPrice,
		SalePrice:   *in.SalePrice,
		Category:    in.Category,
		Stock:       *in.Stock,
		Images:      images,
	}
	if _, err := s.Products.Insert(ctx, product); err != nil {
		return nil, internal("Failed to create product", err)
	}
	return product, nil
}

// GetAll returns every product in the catalog.
func (s *ProductService) GetAll(ctx context.Context) ([]models.Product, error) {
	products, err := s.Products.FindAll(ctx)
	if err != nil {
		return nil, internal("Failed to fetch all products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Product not found")
		}
		return nil, internal("Failed to fetch the product", err)
	}
	return product, nil
}

// UpdateProductInput carries a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	CostPrice   *float64
	SalePrice   *float64
	Category    *string
	Stock       *int
	Images      []string
}

// Update applies a partial update after an ownership check: only the owning
// seller or an admin may modify a product. The salePrice >= costPrice
// invariant is enforced on the resulting document, not just the request.
func (s *ProductService) Update(ctx context.Context, actorID primitive.ObjectID, actorRole string, id primitive.ObjectID, in UpdateProductInput) (*models.Product, error) {
	product, err := s.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Product not found")
		}
		return nil, internal("Failed to update product", err)
	}

	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return nil, E(KindForbidden, "Forbidden")
	}

	var fields []FieldError
	if in.Name != nil {
		name := utils.SanitizeText(*in.Name)
		if len(name) < 3 || len(name) > 100 {
			fields = append(fields, FieldError{Field: "name", Message: "Name must be between 3 and 100 characters"})
		}
		product.Name = name
	}
	if in.Description != nil {
		description := utils.SanitizeText(*in.Description)
		if len(description) < 10 {
			fields = append(fields, FieldError{Field: "description", Message: "Description must be at least 10 characters"})
		}
		product.Description = description
	}
	if in.CostPrice != nil {
		if *in.CostPrice < 0 {
			fields = append(fields, FieldError{Field: "costPrice", Message: "Cost price must be a non-negative number"})
		}
		product.CostPrice = *in.CostPrice
	}
	if in.SalePrice != nil {
		if *in.SalePrice < 0 {
			fields = append(fields, FieldError{Field: "salePrice", Message: "Sale price must be a non-negative number"})
		}
		product.SalePrice = *in.SalePrice
	}
	if in.Category != nil {
		category := utils.SanitizeText(*in.Category)
		if category == "" {
			fields = append(fields, FieldError{Field: "category", Message: "Category is required"})
		}
		product.Category = category
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			fields = append(fields, FieldError{Field: "stock", Message: "Stock must be a non-negative number"})
		}
		product.Stock = *in.Stock
	}
	if in.Images != nil {
		product.Images = in.Images
	}
	if len(fields) > 0 {
		return nil, invalid(fields)
	}
	if product.SalePrice < product.CostPrice {
		return nil, E(KindValidation, "Sale price cannot be less than cost price")
	}

	if err := s.Products.Update(ctx, product); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, E(KindNotFound, "Product not found")
		}
		return nil, internal("Failed to update product", err)
	}
	return product, nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return E(KindNotFound, "Product not found")
		}
		return internal("Failed to delete product", err)
	}
	return nil
}

// SearchInput narrows and paginates a catalog search.
type SearchInput struct {
	Keyword  string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// SearchResult is one page of matching products with pagination totals.
type SearchResult struct {
	Products      []models.Product
	TotalProducts int64
	CurrentPage   int
	TotalPages    int
}

// Search filters by keyword substring (name or description, case-insensitive),
// exact category, and sale-price range, newest first. The page size is capped
// at MaxPageSize.
func (s *ProductService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return nil, E(KindValidation, fmt.Sprintf("Invalid price range: %g is greater than %g", *in.MinPrice, *in.MaxPrice))
	}

	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	filter := storage.ProductFilter{
		Keyword:  in.Keyword,
		Category: in.Category,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Skip:     int64(page-1) * int64(limit),
		Limit:    int64(limit),
	}
	products, total, err := s.Products.Search(ctx, filter)
	if err != nil {
		return nil, internal("Failed to search product", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &SearchResult{
		Products:      products,
		TotalProducts: total,
		CurrentPage:   page,
		TotalPages:    totalPages,
	}, nil
}
