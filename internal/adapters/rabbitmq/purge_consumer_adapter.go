package rabbitmq

import (
	"context"
	"dreamsquare-service/internal/constants"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	usecases_port "dreamsquare-service/internal/core/port/usecases_port"
	"dreamsquare-service/pkg/rabbitmq/rabbitmq_common"
	"dreamsquare-service/pkg/rabbitmq/rabbitmq_consumer"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PurgeConsumerAdapter - входящий адаптер: слушает очередь отложенного удаления
// и вызывает use case. Ошибка обработчика отправляет сообщение в retry-очередь.
type PurgeConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.PurgeAgentListingsUseCasePort
	logger   port.LoggerPort
}

// PurgeConsumerConfig собирает конфигурацию очереди с ретраями и финальной DLQ.
func PurgeConsumerConfig(url string) rabbitmq_consumer.ConsumerConfig {
	return rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: url},
		QueueName:              constants.QueuePurgeAgentListings,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.CommandsExchange,
		ExchangeTypeForBind:    "topic",
		DeclareExchangeForBind: true,
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyPurgeAgentListings,
		PrefetchCount:          2,
		ConsumerTag:            "dreamsquare-purge-consumer",
		EnableRetryMechanism:   true,
		RetryExchange:          constants.PurgeRetryExchange,
		RetryQueue:             constants.PurgeRetryQueue,
		RetryTTL:               constants.PurgeRetryDelayMs,
		FinalDLXExchange:       constants.FinalDLXExchange,
		FinalDLQ:               constants.FinalDLQ,
		FinalDLQRoutingKey:     constants.FinalDLQRoutingKey,
		MaxRetries:             constants.PurgeMaxRetries,
	}
}

func NewPurgeConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.PurgeAgentListingsUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*PurgeConsumerAdapter, error) {
	if useCase == nil {
		return nil, fmt.Errorf("rabbitmq adapter: purge use case cannot be nil")
	}

	adapter := &PurgeConsumerAdapter{useCase: useCase, logger: logger}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleDelivery, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listings purge: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func (a *PurgeConsumerAdapter) handleDelivery(d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.NewString()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "PurgeConsumerAdapter",
	})
	ctx := contextkeys.ContextWithLogger(context.Background(), msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := contracts.Validate(contracts.PurgeAgentListingsEvent, contracts.V1, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation", err, nil)
		return err
	}

	var cmd domain.PurgeAgentListingsCommand
	if err := json.Unmarshal(d.Body, &cmd); err != nil {
		msgLogger.Error("Failed to unmarshal purge command", err, nil)
		return fmt.Errorf("failed to unmarshal purge command: %w", err)
	}

	deleted, err := a.useCase.Execute(ctx, cmd)
	if err != nil {
		msgLogger.Error("Purge failed, message will be retried", err, port.Fields{"agent_email": cmd.AgentEmail})
		return err
	}

	msgLogger.Info("Purge command processed", port.Fields{"agent_email": cmd.AgentEmail, "deleted": deleted})
	return nil
}

// Start реализует EventListenerPort.
func (a *PurgeConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

func (a *PurgeConsumerAdapter) Close() error {
	return a.consumer.Close()
}
