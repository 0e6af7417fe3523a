package usecase

import (
	"context"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"time"
)

// marketEvents рассылает события после успешной записи в хранилище.
// Ошибка доставки логируется и не отменяет уже выполненную операцию.
type marketEvents struct {
	publisher port.EventPublisherPort
	notifier  port.NotifierPort
}

func newMarketEvents(publisher port.EventPublisherPort, notifier port.NotifierPort) marketEvents {
	return marketEvents{publisher: publisher, notifier: notifier}
}

func (e marketEvents) emit(ctx context.Context, logger port.LoggerPort, event domain.MarketEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, event); err != nil {
			logger.Warn("Failed to publish market event", port.Fields{"event_type": event.Type, "error": err.Error()})
		}
	}
	if e.notifier != nil {
		e.notifier.Notify(ctx, event)
	}
}
