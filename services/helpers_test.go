package services

import (
	"context"
	"testing"

	"ecommerce-backend/models"
	"ecommerce-backend/storage"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func seedUser(t *testing.T, store storage.UserStore, name, email string, contact int64, role, password string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    email,
		Contact:  contact,
		Age:      30,
		Address:  "12 Main Street",
		Password: hashPassword(t, password),
		Role:     role,
	}
	_, err := store.Insert(context.Background(), user)
	require.NoError(t, err)
	return user
}

func seedProduct(t *testing.T, store storage.ProductStore, sellerID primitive.ObjectID, name string, salePrice float64, stock int) *models.Product {
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
	_, err := store.Insert(context.Background(), product)
	require.NoError(t, err)
	return product
}

func asServiceError(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	svcErr, ok := err.(*Error)
	require.True(t, ok, "expected *services.Error, got %T", err)
	return svcErr
}
