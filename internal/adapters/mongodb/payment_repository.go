package mongodb_adapter

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPaymentRepository struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) (*MongoPaymentRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoPaymentRepository{coll: db.Collection(paymentsCollection)}, nil
}

// Create опирается на уникальный индекс по transactionId.
func (r *MongoPaymentRepository) Create(ctx context.Context, p *domain.Payment) (string, error) {
	doc := paymentDocument{
		OfferID:       p.OfferID,
		PropertyID:    p.PropertyID,
		Email:         p.Email,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		Date:          p.Date,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", domain.Errorf(domain.ErrAlreadyExists, "Payment with transactionId %s already recorded", p.TransactionID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoPaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc paymentDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (r *MongoPaymentRepository) ListPaidByPropertyIDs(ctx context.Context, propertyIDs []string) ([]domain.Payment, error) {
	if len(propertyIDs) == 0 {
		return []domain.Payment{}, nil
	}
	filter := bson.M{"propertyId": bson.M{"$in": propertyIDs}, "status": domain.PaymentStatusPaid}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	return decodeAll(ctx, cur, paymentDocument.toDomain)
}
