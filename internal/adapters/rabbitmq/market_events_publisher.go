package rabbitmq

import (
	"context"
	"dreamsquare-service/internal/constants"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"
)

// MarketEventsPublisher публикует события предложений и платежей в topic-обменник
// с ключом "market.<type>".
type MarketEventsPublisher struct {
	producer MessagePublisher
}

func NewMarketEventsPublisher(producer MessagePublisher) (*MarketEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &MarketEventsPublisher{producer: producer}, nil
}

func (a *MarketEventsPublisher) Publish(ctx context.Context, event domain.MarketEvent) error {
	routingKey := constants.RoutingKeyMarketEventPrefix + string(event.Type)
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "MarketEventsPublisher",
		"routing_key": routingKey,
		"offer_id":    event.OfferID,
	})

	msg, err := newPublishing(ctx, contracts.MarketEvent, event)
	if err != nil {
		adapterLogger.Error("Failed to build market event message", err, nil)
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.Publish(publishCtx, routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish market event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish %s: %w", event.Type, err)
	}

	adapterLogger.Debug("Market event published", nil)
	return nil
}
