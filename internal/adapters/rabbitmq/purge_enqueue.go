package rabbitmq

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"
)

// PurgeEnqueueAdapter ставит отложенное удаление объектов агента в очередь команд.
type PurgeEnqueueAdapter struct {
	producer   MessagePublisher
	routingKey string
}

func NewPurgeEnqueueAdapter(producer MessagePublisher, routingKey string) (*PurgeEnqueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &PurgeEnqueueAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *PurgeEnqueueAdapter) EnqueuePurge(ctx context.Context, cmd domain.PurgeAgentListingsCommand) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PurgeEnqueueAdapter",
		"routing_key": a.routingKey,
		"agent_email": cmd.AgentEmail,
	})

	msg, err := newPublishing(ctx, contracts.PurgeAgentListingsEvent, cmd)
	if err != nil {
		adapterLogger.Error("Failed to build purge command", err, nil)
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	adapterLogger.Info("Enqueueing agent listings purge", nil)
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to enqueue purge command", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to enqueue purge for %s: %w", cmd.AgentEmail, err)
	}
	return nil
}
