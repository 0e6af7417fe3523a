package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type CreateReviewUseCasePort interface {
	Execute(ctx context.Context, review domain.Review) (*domain.Review, error)
}

type ListReviewsUseCasePort interface {
	Execute(ctx context.Context, userID string) ([]domain.Review, error)
}

type ChangeReviewStatusUseCasePort interface {
	Execute(ctx context.Context, id string, status domain.ReviewStatus) error
}

type DeleteReviewUseCasePort interface {
	Execute(ctx context.Context, id string) error
}
