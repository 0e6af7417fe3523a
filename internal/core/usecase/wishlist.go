package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"time"
)

type AddToWishlistUseCase struct {
	wishlist port.WishlistRepositoryPort
}

func NewAddToWishlistUseCase(wishlist port.WishlistRepositoryPort) *AddToWishlistUseCase {
	return &AddToWishlistUseCase{wishlist: wishlist}
}

func (uc *AddToWishlistUseCase) Execute(ctx context.Context, userEmail, propertyID string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "AddToWishlist",
		"user_email":  userEmail,
		"property_id": propertyID,
	})
	ucLogger.Info("Use case started", nil)

	if userEmail == "" || propertyID == "" {
		return domain.Errorf(domain.ErrInvalidArgument, "Missing userEmail or propertyId")
	}

	err := uc.wishlist.Add(ctx, &domain.WishlistItem{
		UserEmail:  userEmail,
		PropertyID: propertyID,
		CreatedAt:  time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		ucLogger.Warn("Property already in wishlist", nil)
		return domain.Errorf(domain.ErrInvalidArgument, "Property already in wishlist")
	}
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type GetWishlistUseCase struct {
	wishlist   port.WishlistRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewGetWishlistUseCase(wishlist port.WishlistRepositoryPort, properties port.PropertyRepositoryPort) *GetWishlistUseCase {
	return &GetWishlistUseCase{wishlist: wishlist, properties: properties}
}

// Execute возвращает объекты из списка желаемого. Удаленные объекты пропускаются.
func (uc *GetWishlistUseCase) Execute(ctx context.Context, userEmail string) ([]domain.Property, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "GetWishlist",
		"user_email": userEmail,
	})

	items, err := uc.wishlist.ListByUser(ctx, userEmail)
	if err != nil {
		ucLogger.Error("Failed to load wishlist", err, nil)
		return nil, err
	}
	if len(items) == 0 {
		return []domain.Property{}, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.PropertyID)
	}

	properties, err := uc.properties.FindByIDs(ctx, ids)
	if err != nil {
		ucLogger.Error("Failed to load wishlisted properties", err, nil)
		return nil, err
	}

	if properties == nil {
		properties = []domain.Property{}
	}

	ucLogger.Debug("Wishlist resolved", port.Fields{"items": len(items), "properties": len(properties)})
	return properties, nil
}

type RemoveFromWishlistUseCase struct {
	wishlist port.WishlistRepositoryPort
}

func NewRemoveFromWishlistUseCase(wishlist port.WishlistRepositoryPort) *RemoveFromWishlistUseCase {
	return &RemoveFromWishlistUseCase{wishlist: wishlist}
}

func (uc *RemoveFromWishlistUseCase) Execute(ctx context.Context, userEmail, propertyID string) error {
	removed, err := uc.wishlist.Remove(ctx, userEmail, propertyID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to remove wishlist item", err, port.Fields{"use_case": "RemoveFromWishlist"})
		return err
	}
	if removed == 0 {
		return domain.Errorf(domain.ErrNotFound, "Item not found in wishlist")
	}
	return nil
}
