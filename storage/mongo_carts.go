package storage

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCarts implements CartStore on a MongoDB collection.
type MongoCarts struct {
	collection *mongo.Collection
}

// NewMongoCarts creates a CartStore backed by the carts collection.
func NewMongoCarts(db *mongo.Database) *MongoCarts {
	return &MongoCarts{collection: db.Collection(cartsCollection)}
}

func (s *MongoCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Upsert inserts or replaces the user's cart; the unique index on user_id
// guarantees at most one cart per user.
func (s *MongoCarts) Upsert(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	result, err := s.collection.ReplaceOne(ctx,
		bson.M{"user_id": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if result.UpsertedID != nil {
		cart.ID = result.UpsertedID.(primitive.ObjectID)
	}
	return nil
}

func (s *MongoCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
		"$set": bson.M{
			"items":        []models.CartItem{},
			"total_amount": 0.0,
			"updated_at":   time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
