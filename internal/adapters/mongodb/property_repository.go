package mongodb_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPropertyRepository struct {
	coll *mongo.Collection
}

func NewMongoPropertyRepository(db *mongo.Database) (*MongoPropertyRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("mongo.Database cannot be nil")
	}
	return &MongoPropertyRepository{coll: db.Collection(propertiesCollection)}, nil
}

func (r *MongoPropertyRepository) Create(ctx context.Context, p *domain.Property) (string, error) {
	res, err := r.coll.InsertOne(ctx, newPropertyDocument(p))
	if isValidationFailure(err) {
		return "", domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to insert property", err, port.Fields{
			"component": "MongoPropertyRepository",
			"method":    "Create",
		})
		return "", fmt.Errorf("failed to insert property: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoPropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc propertyDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

// FindByIDs пропускает некорректные идентификаторы и отсутствующие объекты.
func (r *MongoPropertyRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Property, error) {
	oids := validObjectIDs(ids)
	if len(oids) == 0 {
		return []domain.Property{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return decodeAll(ctx, cur, propertyDocument.toDomain)
}

func (r *MongoPropertyRepository) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "MongoPropertyRepository",
		"method":    "List",
	})

	query := bson.M{}
	if filter.AgentEmail != "" {
		query["agentEmail"] = filter.AgentEmail
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.AdvertisedOnly {
		query["advertised"] = true
	}
	if filter.GeohashPrefix != "" {
		query["geohash"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.GeohashPrefix)}
	}

	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		repoLogger.Error("Failed to query properties", err, nil)
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	properties, err := decodeAll(ctx, cur, propertyDocument.toDomain)
	if err != nil {
		return nil, err
	}
	repoLogger.Debug("Properties listed", port.Fields{"count": len(properties)})
	return properties, nil
}

func (r *MongoPropertyRepository) Update(ctx context.Context, id string, update domain.PropertyUpdate) (domain.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	set := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.AgentName != nil {
		set["agentName"] = *update.AgentName
	}
	if update.MinPrice != nil {
		set["minPrice"] = *update.MinPrice
	}
	if update.MaxPrice != nil {
		set["maxPrice"] = *update.MaxPrice
	}
	if update.Latitude != nil {
		set["latitude"] = *update.Latitude
	}
	if update.Longitude != nil {
		set["longitude"] = *update.Longitude
	}
	if update.Geohash != nil {
		set["geohash"] = *update.Geohash
	}

	if len(set) == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return domain.UpdateResult{}, fmt.Errorf("failed to check property: %w", err)
		}
		return domain.UpdateResult{MatchedCount: n}, nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if isValidationFailure(err) {
		return domain.UpdateResult{}, domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
	}
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update property: %w", err)
	}
	return updateResult(res), nil
}

// UpdateStatus - условное обновление: документ без поля status считается pending.
func (r *MongoPropertyRepository) UpdateStatus(ctx context.Context, id string, from, to domain.PropertyStatus) (domain.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	filter := bson.M{"_id": oid, "status": string(from)}
	if from == "" || from == domain.PropertyPending {
		filter = bson.M{"_id": oid, "$or": bson.A{
			bson.M{"status": bson.M{"$in": bson.A{"", string(domain.PropertyPending)}}},
			bson.M{"status": bson.M{"$exists": false}},
		}}
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": string(to)}})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update property status: %w", err)
	}
	return updateResult(res), nil
}

func (r *MongoPropertyRepository) SetAdvertised(ctx context.Context, id string, advertised bool) (domain.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"advertised": advertised}})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update advertised flag: %w", err)
	}
	return updateResult(res), nil
}

func (r *MongoPropertyRepository) AddReview(ctx context.Context, id string, review domain.PropertyReview) (domain.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	doc := propertyReviewDocument{UserID: review.UserID, Name: review.Name, Text: review.Text, CreatedAt: review.CreatedAt}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"reviews": doc}})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to add property review: %w", err)
	}
	return updateResult(res), nil
}

func (r *MongoPropertyRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete property: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoPropertyRepository) DeleteByAgentEmail(ctx context.Context, agentEmail string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"agentEmail": agentEmail})
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to delete agent properties", err, port.Fields{
			"component":   "MongoPropertyRepository",
			"method":      "DeleteByAgentEmail",
			"agent_email": agentEmail,
		})
		return 0, fmt.Errorf("failed to delete agent properties: %w", err)
	}
	return res.DeletedCount, nil
}
