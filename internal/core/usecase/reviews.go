package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"time"
)

type CreateReviewUseCase struct {
	reviews port.ReviewRepositoryPort
}

func NewCreateReviewUseCase(reviews port.ReviewRepositoryPort) *CreateReviewUseCase {
	return &CreateReviewUseCase{reviews: reviews}
}

func (uc *CreateReviewUseCase) Execute(ctx context.Context, review domain.Review) (*domain.Review, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "CreateReview",
		"property_id": review.PropertyID,
		"user_id":     review.UserID,
	})
	ucLogger.Info("Use case started", nil)

	if review.PropertyID == "" || review.UserID == "" || review.Name == "" || review.Text == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Missing required fields")
	}
	review.Status = domain.ReviewPending
	review.CreatedAt = time.Now().UTC()

	id, err := uc.reviews.Create(ctx, &review)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}
	review.ID = id

	ucLogger.Info("Use case finished successfully", port.Fields{"review_id": id})
	return &review, nil
}

// ListReviewsUseCase возвращает все отзывы или отзывы одного автора.
type ListReviewsUseCase struct {
	reviews port.ReviewRepositoryPort
}

func NewListReviewsUseCase(reviews port.ReviewRepositoryPort) *ListReviewsUseCase {
	return &ListReviewsUseCase{reviews: reviews}
}

func (uc *ListReviewsUseCase) Execute(ctx context.Context, userID string) ([]domain.Review, error) {
	if userID == "" {
		return uc.reviews.List(ctx)
	}
	return uc.reviews.ListByUser(ctx, userID)
}

type ChangeReviewStatusUseCase struct {
	reviews port.ReviewRepositoryPort
}

func NewChangeReviewStatusUseCase(reviews port.ReviewRepositoryPort) *ChangeReviewStatusUseCase {
	return &ChangeReviewStatusUseCase{reviews: reviews}
}

func (uc *ChangeReviewStatusUseCase) Execute(ctx context.Context, id string, status domain.ReviewStatus) error {
	if !status.IsModerationTarget() {
		return domain.Errorf(domain.ErrInvalidArgument, "Invalid status")
	}
	res, err := uc.reviews.UpdateStatus(ctx, id, status)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to update review status", err, port.Fields{"use_case": "ChangeReviewStatus", "review_id": id})
		return err
	}
	if res.MatchedCount == 0 {
		return domain.Errorf(domain.ErrNotFound, "Review not found")
	}
	return nil
}

type DeleteReviewUseCase struct {
	reviews port.ReviewRepositoryPort
}

func NewDeleteReviewUseCase(reviews port.ReviewRepositoryPort) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{reviews: reviews}
}

func (uc *DeleteReviewUseCase) Execute(ctx context.Context, id string) error {
	deleted, err := uc.reviews.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.Errorf(domain.ErrNotFound, "Review not found")
	}
	return nil
}
