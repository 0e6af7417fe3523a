package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"strconv"
	"strings"
	"time"
)

type SubmitOfferUseCase struct {
	offers     port.OfferRepositoryPort
	properties port.PropertyRepositoryPort
	events     marketEvents
}

func NewSubmitOfferUseCase(offers port.OfferRepositoryPort, properties port.PropertyRepositoryPort,
	publisher port.EventPublisherPort, notifier port.NotifierPort) *SubmitOfferUseCase {
	return &SubmitOfferUseCase{
		offers:     offers,
		properties: properties,
		events:     newMarketEvents(publisher, notifier),
	}
}

// Execute создает предложение в статусе pending. Сумма проверяется по диапазону цен,
// сохраненному в объекте, а не по данным клиента.
func (uc *SubmitOfferUseCase) Execute(ctx context.Context, s domain.OfferSubmission) (*domain.Offer, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "SubmitOffer",
		"property_id": s.PropertyID,
		"buyer_email": s.BuyerEmail,
	})
	ucLogger.Info("Use case started", nil)

	if missing := s.MissingFields(); len(missing) > 0 {
		ucLogger.Warn("Offer submission is incomplete", port.Fields{"missing": missing})
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	property, err := uc.properties.FindByID(ctx, s.PropertyID)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return nil, err
	}
	if property == nil {
		ucLogger.Warn("Property not found", nil)
		return nil, domain.Errorf(domain.ErrNotFound, "Property not found")
	}

	if !property.PriceRangeContains(s.OfferAmount) {
		ucLogger.Warn("Offer amount is out of range", port.Fields{
			"offer_amount": s.OfferAmount,
			"min_price":    property.MinPrice,
			"max_price":    property.MaxPrice,
		})
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Offer must be between %s and %s",
			formatAmount(property.MinPrice), formatAmount(property.MaxPrice))
	}

	offer := &domain.Offer{
		PropertyID:  s.PropertyID,
		Title:       s.Title,
		Location:    s.Location,
		AgentName:   s.AgentName,
		AgentEmail:  property.AgentEmail,
		BuyerEmail:  s.BuyerEmail,
		BuyerName:   s.BuyerName,
		BuyingDate:  s.BuyingDate,
		OfferAmount: s.OfferAmount,
		Status:      domain.OfferPending,
		CreatedAt:   time.Now().UTC(),
	}

	id, err := uc.offers.Create(ctx, offer)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}
	offer.ID = id

	uc.events.emit(ctx, ucLogger, domain.MarketEvent{
		Type:       domain.EventOfferSubmitted,
		OfferID:    offer.ID,
		PropertyID: offer.PropertyID,
		BuyerEmail: offer.BuyerEmail,
		AgentEmail: offer.AgentEmail,
		Amount:     offer.OfferAmount,
	})

	ucLogger.Info("Use case finished successfully", port.Fields{"offer_id": offer.ID})
	return offer, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
