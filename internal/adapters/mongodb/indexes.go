package mongodb_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uq_users_email").SetUnique(true)},
		},
		propertiesCollection: {
			{Keys: bson.D{{Key: "agentEmail", Value: 1}}, Options: options.Index().SetName("idx_properties_agent_email")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_properties_status_created")},
			{Keys: bson.D{{Key: "geohash", Value: 1}}, Options: options.Index().SetName("idx_properties_geohash")},
		},
		offersCollection: {
			{Keys: bson.D{{Key: "propertyId", Value: 1}}, Options: options.Index().SetName("idx_offers_property")},
			{Keys: bson.D{{Key: "buyerEmail", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_offers_buyer_created")},
			{Keys: bson.D{{Key: "agentEmail", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_offers_agent_created")},
			// Не больше одного принятого или купленного предложения на объект. $in в partialFilterExpression - с MongoDB 6.0.
			{
				Keys: bson.D{{Key: "propertyId", Value: 1}},
				Options: options.Index().
					SetName("uq_offers_one_accepted_per_property").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": bson.M{"$in": bson.A{
						string(domain.OfferAccepted), string(domain.OfferBought),
					}}}),
			},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetName("uq_payments_transaction").SetUnique(true)},
			{Keys: bson.D{{Key: "propertyId", Value: 1}}, Options: options.Index().SetName("idx_payments_property")},
		},
		wishlistCollection: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "propertyId", Value: 1}}, Options: options.Index().SetName("uq_wishlist_user_property").SetUnique(true)},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("idx_reviews_user")},
		},
	}
}

const (
	codeNamespaceNotFound = 26
	codeNamespaceExists   = 48
)

// propertiesValidator - 0 <= minPrice <= maxPrice, как CHECK в PostgreSQL.
func propertiesValidator() bson.M {
	return bson.M{"$expr": bson.M{"$and": bson.A{
		bson.M{"$gte": bson.A{"$minPrice", 0}},
		bson.M{"$gte": bson.A{"$maxPrice", "$minPrice"}},
	}}}
}

// ensurePropertiesValidator вешает валидатор на коллекцию объектов, создавая ее при необходимости.
func ensurePropertiesValidator(ctx context.Context, db *mongo.Database) error {
	collMod := bson.D{{Key: "collMod", Value: propertiesCollection}, {Key: "validator", Value: propertiesValidator()}}
	err := db.RunCommand(ctx, collMod).Err()

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceNotFound {
		err = db.CreateCollection(ctx, propertiesCollection, options.CreateCollection().SetValidator(propertiesValidator()))
		if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
			err = db.RunCommand(ctx, collMod).Err()
		}
	}
	return err
}

// EnsureIndexes создает индексы всех коллекций и валидатор диапазона цен. Повторный вызов безопасен.
func EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "MongoIndexes",
		"database":  db.Name(),
	})

	if err := ensurePropertiesValidator(ctx, db); err != nil {
		logger.Error("Failed to set properties validator", err, nil)
		return nil, fmt.Errorf("failed to set validator for %s: %w", propertiesCollection, err)
	}

	var created []string
	for collection, models := range collectionIndexes() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			logger.Error("Failed to create indexes", err, port.Fields{"collection": collection})
			return created, fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
		for _, name := range names {
			created = append(created, collection+"."+name)
		}
	}

	logger.Info("Indexes ensured", port.Fields{"count": len(created)})
	return created, nil
}
