package storage

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOrders implements OrderStore on a MongoDB collection.
type MongoOrders struct {
	collection *mongo.Collection
}

// NewMongoOrders creates an OrderStore backed by the orders collection.
func NewMongoOrders(db *mongo.Database) *MongoOrders {
	return &MongoOrders{collection: db.Collection(ordersCollection)}
}

func (s *MongoOrders) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	order.ID = result.InsertedID.(primitive.ObjectID)
	return order.ID, nil
}

func (s *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *MongoOrders) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *MongoOrders) FindAll(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoOrders) find(ctx context.Context, query bson.M) ([]models.Order, error) {
	cursor, err := s.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
