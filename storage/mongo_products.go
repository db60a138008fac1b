package storage

import (
	"context"
	"errors"
	"regexp"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProducts implements ProductStore on a MongoDB collection.
type MongoProducts struct {
	collection *mongo.Collection
}

// NewMongoProducts creates a ProductStore backed by the products collection.
func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{collection: db.Collection(productsCollection)}
}

func (s *MongoProducts) Insert(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, err
	}
	product.ID = result.InsertedID.(primitive.ObjectID)
	return product.ID, nil
}

func (s *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *MongoProducts) FindAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProducts) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProducts) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := bson.M{}

	if filter.Keyword != "" {
		keyword := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": keyword},
			bson.M{"description": keyword},
		}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["sale_price"] = price
	}

	total, err := s.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(filter.Skip).
		SetLimit(filter.Limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// DecrementStock atomically decrements stock, matching only when the current
// stock covers the quantity. This closes the check-then-decrement race
// between concurrent orders on the same product.
func (s *MongoProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": quantity}},
		bson.M{"$inc": bson.M{"stock": -quantity}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := s.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (s *MongoProducts) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": quantity}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
