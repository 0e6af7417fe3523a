package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type CreatePropertyUseCasePort interface {
	Execute(ctx context.Context, property domain.Property) (string, error)
}

type ListPropertiesUseCasePort interface {
	Execute(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error)
}

type GetPropertyUseCasePort interface {
	Execute(ctx context.Context, id string) (*domain.Property, error)
}

type UpdatePropertyUseCasePort interface {
	Execute(ctx context.Context, id string, update domain.PropertyUpdate) error
}

type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, id string) error
}

type ChangePropertyStatusUseCasePort interface {
	Execute(ctx context.Context, id string, target domain.PropertyStatus) error
}

type SetPropertyAdvertisedUseCasePort interface {
	Execute(ctx context.Context, id string, advertised bool) error
}

type AddPropertyReviewUseCasePort interface {
	Execute(ctx context.Context, propertyID string, review domain.PropertyReview) error
}
