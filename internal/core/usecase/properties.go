package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"
)

// geohashPrecision - 9 символов, ячейка примерно 5x5 метров.
const geohashPrecision = 9

type CreatePropertyUseCase struct {
	properties port.PropertyRepositoryPort
	users      port.UserRepositoryPort
}

func NewCreatePropertyUseCase(properties port.PropertyRepositoryPort, users port.UserRepositoryPort) *CreatePropertyUseCase {
	return &CreatePropertyUseCase{properties: properties, users: users}
}

// Execute создает объект в статусе pending. Агентам с ролью fraud создание запрещено.
func (uc *CreatePropertyUseCase) Execute(ctx context.Context, property domain.Property) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "CreateProperty",
		"agent_email": property.AgentEmail,
	})
	ucLogger.Info("Use case started", nil)

	if strings.TrimSpace(property.AgentEmail) == "" || strings.TrimSpace(property.Title) == "" {
		return "", domain.Errorf(domain.ErrInvalidArgument, "Property title and agentEmail are required")
	}
	if !domain.ValidPriceRange(property.MinPrice, property.MaxPrice) {
		return "", domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
	}

	agent, err := uc.users.FindByEmail(ctx, property.AgentEmail)
	if err != nil {
		ucLogger.Error("Failed to load agent", err, nil)
		return "", err
	}
	if agent != nil && agent.EffectiveRole() == domain.RoleFraud {
		ucLogger.Warn("Fraud agent tried to add a property", nil)
		return "", domain.Errorf(domain.ErrForbidden, "Fraud agents cannot add properties")
	}

	property.ID = ""
	property.Status = domain.PropertyPending
	property.Advertised = false
	property.Reviews = nil
	property.CreatedAt = time.Now().UTC()
	property.Geohash = ""
	if property.Latitude != nil && property.Longitude != nil {
		property.Geohash = geohash.EncodeWithPrecision(*property.Latitude, *property.Longitude, geohashPrecision)
	}

	id, err := uc.properties.Create(ctx, &property)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return "", err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": id})
	return id, nil
}

// ListPropertiesUseCase - публичная выдача: без email агента видны только проверенные объекты.
type ListPropertiesUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewListPropertiesUseCase(properties port.PropertyRepositoryPort) *ListPropertiesUseCase {
	return &ListPropertiesUseCase{properties: properties}
}

func (uc *ListPropertiesUseCase) Execute(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	if filter.AgentEmail == "" {
		filter.Status = domain.PropertyVerified
	}
	return uc.properties.List(ctx, filter)
}

// ListAllPropertiesUseCase - админская выдача без ограничений по статусу.
type ListAllPropertiesUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewListAllPropertiesUseCase(properties port.PropertyRepositoryPort) *ListAllPropertiesUseCase {
	return &ListAllPropertiesUseCase{properties: properties}
}

func (uc *ListAllPropertiesUseCase) Execute(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	return uc.properties.List(ctx, filter)
}

type ListAdvertisedPropertiesUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewListAdvertisedPropertiesUseCase(properties port.PropertyRepositoryPort) *ListAdvertisedPropertiesUseCase {
	return &ListAdvertisedPropertiesUseCase{properties: properties}
}

func (uc *ListAdvertisedPropertiesUseCase) Execute(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	filter.Status = domain.PropertyVerified
	filter.AdvertisedOnly = true
	return uc.properties.List(ctx, filter)
}

type GetPropertyUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewGetPropertyUseCase(properties port.PropertyRepositoryPort) *GetPropertyUseCase {
	return &GetPropertyUseCase{properties: properties}
}

func (uc *GetPropertyUseCase) Execute(ctx context.Context, id string) (*domain.Property, error) {
	property, err := uc.properties.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Property not found")
	}
	return property, nil
}

type UpdatePropertyUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewUpdatePropertyUseCase(properties port.PropertyRepositoryPort) *UpdatePropertyUseCase {
	return &UpdatePropertyUseCase{properties: properties}
}

// Execute обновляет редактируемые поля. Статус, владелец и дата создания не меняются.
func (uc *UpdatePropertyUseCase) Execute(ctx context.Context, id string, update domain.PropertyUpdate) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "UpdateProperty",
		"property_id": id,
	})
	ucLogger.Info("Use case started", nil)

	if (update.Latitude == nil) != (update.Longitude == nil) {
		return domain.Errorf(domain.ErrInvalidArgument, "latitude and longitude must be set together")
	}
	if update.Latitude != nil {
		hash := geohash.EncodeWithPrecision(*update.Latitude, *update.Longitude, geohashPrecision)
		update.Geohash = &hash
	}

	// Одна граница проверяется вместе с сохраненной второй, в базу пишутся обе
	if update.MinPrice != nil || update.MaxPrice != nil {
		current, err := uc.properties.FindByID(ctx, id)
		if err != nil {
			ucLogger.Error("Failed to load property", err, nil)
			return err
		}
		if current == nil {
			return domain.Errorf(domain.ErrNotFound, "Property not found")
		}
		minPrice, maxPrice := current.MinPrice, current.MaxPrice
		if update.MinPrice != nil {
			minPrice = *update.MinPrice
		}
		if update.MaxPrice != nil {
			maxPrice = *update.MaxPrice
		}
		if !domain.ValidPriceRange(minPrice, maxPrice) {
			ucLogger.Warn("Rejected price range", port.Fields{"min_price": minPrice, "max_price": maxPrice})
			return domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
		}
		update.MinPrice, update.MaxPrice = &minPrice, &maxPrice
	}

	res, err := uc.properties.Update(ctx, id, update)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}
	if res.MatchedCount == 0 {
		return domain.Errorf(domain.ErrNotFound, "Property not found")
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"modified": res.ModifiedCount})
	return nil
}

type DeletePropertyUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewDeletePropertyUseCase(properties port.PropertyRepositoryPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{properties: properties}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, id string) error {
	deleted, err := uc.properties.Delete(ctx, id)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to delete property", err, port.Fields{"use_case": "DeleteProperty", "property_id": id})
		return err
	}
	if deleted == 0 {
		return domain.Errorf(domain.ErrNotFound, "Property not found")
	}
	return nil
}

type SetPropertyAdvertisedUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewSetPropertyAdvertisedUseCase(properties port.PropertyRepositoryPort) *SetPropertyAdvertisedUseCase {
	return &SetPropertyAdvertisedUseCase{properties: properties}
}

// Execute включает или выключает рекламу объекта. Рекламировать можно только проверенные объекты.
func (uc *SetPropertyAdvertisedUseCase) Execute(ctx context.Context, id string, advertised bool) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "SetPropertyAdvertised",
		"property_id": id,
		"advertised":  advertised,
	})
	ucLogger.Info("Use case started", nil)

	property, err := uc.properties.FindByID(ctx, id)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return err
	}
	if property == nil {
		return domain.Errorf(domain.ErrNotFound, "Property not found")
	}
	if advertised && property.Status != domain.PropertyVerified {
		return domain.Errorf(domain.ErrConflict, "Only verified properties can be advertised")
	}
	if property.Advertised == advertised {
		return nil
	}

	if _, err := uc.properties.SetAdvertised(ctx, id, advertised); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type AddPropertyReviewUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewAddPropertyReviewUseCase(properties port.PropertyRepositoryPort) *AddPropertyReviewUseCase {
	return &AddPropertyReviewUseCase{properties: properties}
}

func (uc *AddPropertyReviewUseCase) Execute(ctx context.Context, propertyID string, review domain.PropertyReview) error {
	if review.UserID == "" || review.Name == "" || review.Text == "" {
		return domain.Errorf(domain.ErrInvalidArgument, "Missing required fields")
	}
	review.CreatedAt = time.Now().UTC()

	res, err := uc.properties.AddReview(ctx, propertyID, review)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to add property review", err, port.Fields{"use_case": "AddPropertyReview", "property_id": propertyID})
		return err
	}
	if res.MatchedCount == 0 {
		return domain.Errorf(domain.ErrNotFound, "Property not found")
	}
	return nil
}
