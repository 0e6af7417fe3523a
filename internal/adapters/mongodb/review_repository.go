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

type MongoReviewRepository struct {
	coll *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) (*MongoReviewRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoReviewRepository{coll: db.Collection(reviewsCollection)}, nil
}

func (r *MongoReviewRepository) Create(ctx context.Context, review *domain.Review) (string, error) {
	res, err := r.coll.InsertOne(ctx, reviewDocument{
		PropertyID: review.PropertyID,
		UserID:     review.UserID,
		Name:       review.Name,
		Text:       review.Text,
		Status:     string(review.Status),
		CreatedAt:  review.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert review: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoReviewRepository) find(ctx context.Context, filter bson.M) ([]domain.Review, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return decodeAll(ctx, cur, reviewDocument.toDomain)
}

func (r *MongoReviewRepository) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (domain.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update review status: %w", err)
	}
	return updateResult(res), nil
}

func (r *MongoReviewRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete review: %w", err)
	}
	return res.DeletedCount, nil
}
