package port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

// EventPublisherPort - публикация доменных событий во внешнюю шину.
type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.MarketEvent) error
}

// NotifierPort - доставка событий подключенным клиентам в реальном времени.
type NotifierPort interface {
	Notify(ctx context.Context, event domain.MarketEvent)
}

// PurgeQueuePort - очередь отложенного удаления объектов агента.
type PurgeQueuePort interface {
	EnqueuePurge(ctx context.Context, cmd domain.PurgeAgentListingsCommand) error
}

// EventListenerPort - входящий адаптер, который слушает очередь.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
