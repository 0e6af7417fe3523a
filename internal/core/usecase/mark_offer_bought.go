package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"strings"
)

type MarkOfferBoughtUseCase struct {
	offers port.OfferRepositoryPort
	events marketEvents
}

func NewMarkOfferBoughtUseCase(offers port.OfferRepositoryPort, publisher port.EventPublisherPort, notifier port.NotifierPort) *MarkOfferBoughtUseCase {
	return &MarkOfferBoughtUseCase{offers: offers, events: newMarketEvents(publisher, notifier)}
}

// Execute переводит принятое предложение в bought и сохраняет идентификатор транзакции.
func (uc *MarkOfferBoughtUseCase) Execute(ctx context.Context, offerID, transactionID string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "MarkOfferBought",
		"offer_id": offerID,
	})
	ucLogger.Info("Use case started", nil)

	if strings.TrimSpace(transactionID) == "" {
		ucLogger.Warn("Transaction id is missing", nil)
		return domain.Errorf(domain.ErrInvalidArgument, "Transaction ID is required")
	}

	offer, err := uc.offers.FindByID(ctx, offerID)
	if err != nil {
		ucLogger.Error("Failed to load offer", err, nil)
		return err
	}
	if offer == nil || offer.Status == domain.OfferBought {
		ucLogger.Warn("Offer not found or already bought", nil)
		return domain.Errorf(domain.ErrNotFound, "Offer not found or already updated")
	}
	if !offer.Status.CanTransitionTo(domain.OfferBought) {
		ucLogger.Warn("Offer is not accepted", port.Fields{"status": offer.Status})
		return domain.Errorf(domain.ErrConflict, "Offer is %s, only accepted offers can be bought", offer.Status)
	}

	changed, err := uc.offers.TransitionStatus(ctx, offerID, domain.OfferAccepted, domain.OfferBought, transactionID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}
	if !changed {
		ucLogger.Warn("Offer was updated concurrently", nil)
		return domain.Errorf(domain.ErrNotFound, "Offer not found or already updated")
	}

	uc.events.emit(ctx, ucLogger, domain.MarketEvent{
		Type:          domain.EventOfferBought,
		OfferID:       offer.ID,
		PropertyID:    offer.PropertyID,
		BuyerEmail:    offer.BuyerEmail,
		AgentEmail:    offer.AgentEmail,
		Amount:        offer.OfferAmount,
		TransactionID: transactionID,
	})

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
