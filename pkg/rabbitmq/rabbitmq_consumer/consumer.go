package rabbitmq_consumer

import (
	"context"
	"fmt"

	"dreamsquare-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer - потребитель очереди. StartConsuming блокируется до отмены ctx или обрыва соединения.
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// MessageHandler обрабатывает одно сообщение. Ack/Nack решает пакет:
// nil - ack, ошибка - повтор через retry-очередь (если включено) или nack без возврата.
type MessageHandler func(delivery amqp.Delivery) error

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DeclareQueue bool
	DurableQueue bool
	QueueArgs    amqp.Table

	// Привязка очереди к обменнику, пустое имя - без привязки
	ExchangeNameForBind    string
	ExchangeTypeForBind    string
	DeclareExchangeForBind bool
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	// Ограничивает и prefetch, и число одновременно работающих обработчиков
	PrefetchCount int
	ConsumerTag   string

	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return fmt.Errorf("consumer: queue name is required")
	}
	if c.DeclareExchangeForBind && c.ExchangeNameForBind != "" && c.ExchangeTypeForBind == "" {
		return fmt.Errorf("consumer: exchange type is required when declaring an exchange for binding")
	}
	if c.EnableRetryMechanism {
		switch {
		case c.ExchangeNameForBind == "":
			return fmt.Errorf("consumer: retry mechanism requires a bound exchange to return messages to")
		case c.RetryExchange == "" || c.RetryQueue == "":
			return fmt.Errorf("consumer: retry exchange and queue are required")
		case c.FinalDLXExchange == "" || c.FinalDLQ == "":
			return fmt.Errorf("consumer: final DLX and DLQ are required")
		case c.RetryTTL <= 0:
			return fmt.Errorf("consumer: retry TTL must be positive")
		case c.MaxRetries < 0:
			return fmt.Errorf("consumer: max retries must not be negative")
		}
	}
	return nil
}
