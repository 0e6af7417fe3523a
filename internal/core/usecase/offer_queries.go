package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
)

type ListBuyerOffersUseCase struct {
	offers     port.OfferRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewListBuyerOffersUseCase(offers port.OfferRepositoryPort, properties port.PropertyRepositoryPort) *ListBuyerOffersUseCase {
	return &ListBuyerOffersUseCase{offers: offers, properties: properties}
}

// Execute возвращает предложения покупателя, новые первыми, с картинкой объекта.
func (uc *ListBuyerOffersUseCase) Execute(ctx context.Context, buyerEmail string) ([]domain.Offer, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ListBuyerOffers",
		"buyer_email": buyerEmail,
	})

	if buyerEmail == "" {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "buyerEmail query parameter is required")
	}

	offers, err := uc.offers.ListByBuyer(ctx, buyerEmail)
	if err != nil {
		ucLogger.Error("Failed to load offers", err, nil)
		return nil, err
	}
	if len(offers) == 0 {
		return []domain.Offer{}, nil
	}

	seen := make(map[string]struct{}, len(offers))
	ids := make([]string, 0, len(offers))
	for _, o := range offers {
		if _, ok := seen[o.PropertyID]; !ok {
			seen[o.PropertyID] = struct{}{}
			ids = append(ids, o.PropertyID)
		}
	}

	properties, err := uc.properties.FindByIDs(ctx, ids)
	if err != nil {
		ucLogger.Error("Failed to load offer properties", err, nil)
		return nil, err
	}
	images := make(map[string]string, len(properties))
	for _, p := range properties {
		images[p.ID] = p.Image
	}
	for i := range offers {
		offers[i].Image = images[offers[i].PropertyID]
	}

	return offers, nil
}

type ListAgentOffersUseCase struct {
	offers port.OfferRepositoryPort
}

func NewListAgentOffersUseCase(offers port.OfferRepositoryPort) *ListAgentOffersUseCase {
	return &ListAgentOffersUseCase{offers: offers}
}

func (uc *ListAgentOffersUseCase) Execute(ctx context.Context, agentEmail string) ([]domain.Offer, error) {
	return uc.offers.ListByAgent(ctx, agentEmail)
}

type GetOfferUseCase struct {
	offers port.OfferRepositoryPort
}

func NewGetOfferUseCase(offers port.OfferRepositoryPort) *GetOfferUseCase {
	return &GetOfferUseCase{offers: offers}
}

func (uc *GetOfferUseCase) Execute(ctx context.Context, offerID string) (*domain.Offer, error) {
	offer, err := uc.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}
	return offer, nil
}
