package mongodb_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOfferRepository хранит предложения в коллекции offers.
// При useTransactions принятие выполняется в транзакции (нужен replica set),
// иначе - последовательными условными обновлениями. Уникальный частичный индекс
// по propertyId не дает появиться второму принятому предложению в обоих режимах.
type MongoOfferRepository struct {
	client          *mongo.Client
	coll            *mongo.Collection
	useTransactions bool
}

func NewMongoOfferRepository(db *mongo.Database, useTransactions bool) (*MongoOfferRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoOfferRepository{
		client:          db.Client(),
		coll:            db.Collection(offersCollection),
		useTransactions: useTransactions,
	}, nil
}

func (r *MongoOfferRepository) Create(ctx context.Context, o *domain.Offer) (string, error) {
	doc := offerDocument{
		PropertyID:  o.PropertyID,
		Title:       o.Title,
		Location:    o.Location,
		AgentName:   o.AgentName,
		AgentEmail:  o.AgentEmail,
		OfferAmount: o.OfferAmount,
		BuyerEmail:  o.BuyerEmail,
		BuyerName:   o.BuyerName,
		BuyingDate:  o.BuyingDate,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to insert offer", err, port.Fields{
			"component":   "MongoOfferRepository",
			"method":      "Create",
			"property_id": o.PropertyID,
		})
		return "", fmt.Errorf("failed to insert offer: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoOfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, oid)
}

func (r *MongoOfferRepository) findOne(ctx context.Context, oid primitive.ObjectID) (*domain.Offer, error) {
	var doc offerDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *MongoOfferRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]domain.Offer, error) {
	return r.list(ctx, bson.M{"buyerEmail": buyerEmail})
}

func (r *MongoOfferRepository) ListByAgent(ctx context.Context, agentEmail string) ([]domain.Offer, error) {
	return r.list(ctx, bson.M{"agentEmail": agentEmail})
}

func (r *MongoOfferRepository) list(ctx context.Context, filter bson.M) ([]domain.Offer, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	return decodeAll(ctx, cur, offerDocument.toDomain)
}

func (r *MongoOfferRepository) Accept(ctx context.Context, offerID string) (*domain.AcceptPlan, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "MongoOfferRepository",
		"method":       "Accept",
		"offer_id":     offerID,
		"transactions": r.useTransactions,
	})

	oid, err := parseObjectID(offerID)
	if err != nil {
		return nil, err
	}

	if !r.useTransactions {
		return r.accept(ctx, oid)
	}

	session, err := r.client.StartSession()
	if err != nil {
		repoLogger.Error("Failed to start session", err, nil)
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.accept(sc, oid)
	})
	if err != nil {
		return nil, err
	}
	plan, _ := result.(*domain.AcceptPlan)
	repoLogger.Debug("Offer accepted in transaction", port.Fields{"rejected": len(plan.RejectOfferIDs)})
	return plan, nil
}

// accept строит план по актуальному состоянию и применяет его условными обновлениями.
func (r *MongoOfferRepository) accept(ctx context.Context, oid primitive.ObjectID) (*domain.AcceptPlan, error) {
	target, err := r.findOne(ctx, oid)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}

	siblings, err := r.list(ctx, bson.M{"propertyId": target.PropertyID})
	if err != nil {
		return nil, err
	}

	plan, err := domain.PlanAccept(target, siblings)
	if err != nil {
		return nil, err
	}

	if plan.AcceptTarget {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": oid, "status": string(domain.OfferPending)},
			bson.M{"$set": bson.M{"status": string(domain.OfferAccepted)}},
		)
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.Errorf(domain.ErrConflict, "another offer on property %s is already accepted", target.PropertyID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to accept offer: %w", err)
		}
		if res.ModifiedCount == 0 {
			return nil, domain.Errorf(domain.ErrConflict, "offer %s changed concurrently", target.ID)
		}
	}

	if ids := validObjectIDs(plan.RejectOfferIDs); len(ids) > 0 {
		_, err := r.coll.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}, "status": string(domain.OfferPending)},
			bson.M{"$set": bson.M{"status": string(domain.OfferRejected)}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reject sibling offers: %w", err)
		}
	}
	return plan, nil
}

func (r *MongoOfferRepository) TransitionStatus(ctx context.Context, id string, from, to domain.OfferStatus, transactionID string) (bool, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return false, err
	}

	set := bson.M{"status": string(to)}
	if transactionID != "" {
		set["transactionId"] = transactionID
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "status": string(from)}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return false, domain.Errorf(domain.ErrConflict, "another offer on the same property is already %s", to)
	}
	if err != nil {
		return false, fmt.Errorf("failed to update offer status: %w", err)
	}
	return res.ModifiedCount > 0, nil
}
