package mongodb_adapter

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWishlistRepository struct {
	coll *mongo.Collection
}

func NewMongoWishlistRepository(db *mongo.Database) (*MongoWishlistRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoWishlistRepository{coll: db.Collection(wishlistCollection)}, nil
}

func (r *MongoWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	res, err := r.coll.InsertOne(ctx, wishlistDocument{
		UserEmail:  item.UserEmail,
		PropertyID: item.PropertyID,
		CreatedAt:  item.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *MongoWishlistRepository) ListByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userEmail": userEmail}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	return decodeAll(ctx, cur, func(d wishlistDocument) domain.WishlistItem {
		return domain.WishlistItem{ID: d.ID.Hex(), UserEmail: d.UserEmail, PropertyID: d.PropertyID, CreatedAt: d.CreatedAt}
	})
}

func (r *MongoWishlistRepository) Remove(ctx context.Context, userEmail, propertyID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"userEmail": userEmail, "propertyId": propertyID})
	if err != nil {
		return 0, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return res.DeletedCount, nil
}
