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

// MongoUsers implements UserStore on a MongoDB collection.
type MongoUsers struct {
	collection *mongo.Collection
}

// NewMongoUsers creates a UserStore backed by the users collection.
func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{collection: db.Collection(usersCollection)}
}

func (s *MongoUsers) Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user.ID, nil
}

func (s *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUsers) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
