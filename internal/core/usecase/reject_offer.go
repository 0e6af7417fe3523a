package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
)

type RejectOfferUseCase struct {
	offers port.OfferRepositoryPort
	events marketEvents
}

func NewRejectOfferUseCase(offers port.OfferRepositoryPort, publisher port.EventPublisherPort, notifier port.NotifierPort) *RejectOfferUseCase {
	return &RejectOfferUseCase{offers: offers, events: newMarketEvents(publisher, notifier)}
}

func (uc *RejectOfferUseCase) Execute(ctx context.Context, offerID string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RejectOffer",
		"offer_id": offerID,
	})
	ucLogger.Info("Use case started", nil)

	offer, err := uc.offers.FindByID(ctx, offerID)
	if err != nil {
		ucLogger.Error("Failed to load offer", err, nil)
		return err
	}
	if offer == nil {
		ucLogger.Warn("Offer not found", nil)
		return domain.Errorf(domain.ErrNotFound, "Offer not found")
	}

	if offer.Status == domain.OfferRejected {
		ucLogger.Info("Offer is already rejected, nothing to do", nil)
		return nil
	}
	if !offer.Status.CanTransitionTo(domain.OfferRejected) {
		ucLogger.Warn("Offer cannot be rejected", port.Fields{"status": offer.Status})
		return domain.Errorf(domain.ErrConflict, "Offer is already %s", offer.Status)
	}

	changed, err := uc.offers.TransitionStatus(ctx, offerID, offer.Status, domain.OfferRejected, "")
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}
	if !changed {
		// Статус поменялся между чтением и записью.
		ucLogger.Warn("Offer status changed concurrently", nil)
		return domain.Errorf(domain.ErrConflict, "Offer status changed, retry the request")
	}

	uc.events.emit(ctx, ucLogger, domain.MarketEvent{
		Type:       domain.EventOfferRejected,
		OfferID:    offer.ID,
		PropertyID: offer.PropertyID,
		BuyerEmail: offer.BuyerEmail,
		AgentEmail: offer.AgentEmail,
	})

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
