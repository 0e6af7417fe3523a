package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type AddToWishlistUseCasePort interface {
	Execute(ctx context.Context, userEmail, propertyID string) error
}

type GetWishlistUseCasePort interface {
	Execute(ctx context.Context, userEmail string) ([]domain.Property, error)
}

type RemoveFromWishlistUseCasePort interface {
	Execute(ctx context.Context, userEmail, propertyID string) error
}
