package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type SubmitOfferUseCasePort interface {
	Execute(ctx context.Context, submission domain.OfferSubmission) (*domain.Offer, error)
}

type AcceptOfferUseCasePort interface {
	Execute(ctx context.Context, offerID string) (*domain.AcceptPlan, error)
}

type RejectOfferUseCasePort interface {
	Execute(ctx context.Context, offerID string) error
}

type MarkOfferBoughtUseCasePort interface {
	Execute(ctx context.Context, offerID, transactionID string) error
}
