package rabbitmq

import (
	"context"
	"dreamsquare-service/internal/constants"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/contracts"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// MessagePublisher - то, что адаптерам нужно от rabbitmq_producer.Publisher.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// newPublishing сериализует payload, проверяет его по схеме события и
// заполняет заголовки трассировки и версии контракта.
func newPublishing(ctx context.Context, eventType string, payload interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s: %w", eventType, err)
	}
	if err := contracts.Validate(eventType, contracts.V1, body); err != nil {
		return amqp.Publishing{}, fmt.Errorf("%s failed schema validation: %w", eventType, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    eventType,
			constants.HeaderEventVersion: contracts.V1,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}
	return msg, nil
}
