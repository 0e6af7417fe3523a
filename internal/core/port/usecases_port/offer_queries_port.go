package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type ListBuyerOffersUseCasePort interface {
	Execute(ctx context.Context, buyerEmail string) ([]domain.Offer, error)
}

type ListAgentOffersUseCasePort interface {
	Execute(ctx context.Context, agentEmail string) ([]domain.Offer, error)
}

type GetOfferUseCasePort interface {
	Execute(ctx context.Context, offerID string) (*domain.Offer, error)
}
