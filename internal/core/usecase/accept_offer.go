package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
)

type AcceptOfferUseCase struct {
	offers port.OfferRepositoryPort
	events marketEvents
}

func NewAcceptOfferUseCase(offers port.OfferRepositoryPort, publisher port.EventPublisherPort, notifier port.NotifierPort) *AcceptOfferUseCase {
	return &AcceptOfferUseCase{offers: offers, events: newMarketEvents(publisher, notifier)}
}

// Execute принимает предложение и отклоняет все остальные предложения по тому же объекту.
// Атомарность обеспечивает репозиторий.
func (uc *AcceptOfferUseCase) Execute(ctx context.Context, offerID string) (*domain.AcceptPlan, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "AcceptOffer",
		"offer_id": offerID,
	})
	ucLogger.Info("Use case started", nil)

	// Адресаты события читаются до изменения, после принятия они не меняются.
	offer, err := uc.offers.FindByID(ctx, offerID)
	if err != nil {
		ucLogger.Error("Failed to load offer", err, nil)
		return nil, err
	}
	if offer == nil {
		ucLogger.Warn("Offer not found", nil)
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}

	plan, err := uc.offers.Accept(ctx, offerID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	if plan.AcceptTarget || len(plan.RejectOfferIDs) > 0 {
		uc.events.emit(ctx, ucLogger, domain.MarketEvent{
			Type:             domain.EventOfferAccepted,
			OfferID:          offer.ID,
			PropertyID:       offer.PropertyID,
			BuyerEmail:       offer.BuyerEmail,
			AgentEmail:       offer.AgentEmail,
			Amount:           offer.OfferAmount,
			RejectedOfferIDs: plan.RejectOfferIDs,
		})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"accepted_now":    plan.AcceptTarget,
		"rejected_offers": len(plan.RejectOfferIDs),
	})
	return plan, nil
}
