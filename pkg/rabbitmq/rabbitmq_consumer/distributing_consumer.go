package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dreamsquare-service/pkg/rabbitmq/rabbitmq_common"
	"dreamsquare-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultConcurrency = 4

// DistributingConsumer раздает сообщения обработчикам, каждое в своей горутине.
// Число одновременных обработчиков ограничено PrefetchCount.
type DistributingConsumer struct {
	config      ConsumerConfig
	handler     MessageHandler
	connManager *rabbitmq_common.ConnectionManager

	connection *amqp.Connection
	channel    *amqp.Channel
	dlx        *rabbitmq_producer.Publisher

	wg     sync.WaitGroup
	Logger rabbitmq_common.Logger
}

var _ Consumer = (*DistributingConsumer)(nil)

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if connManager == nil {
		return nil, fmt.Errorf("distributing consumer: connection manager is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	c := &DistributingConsumer{
		config:      cfg,
		handler:     handler,
		connManager: connManager,
		Logger:      logger,
	}

	conn, ch, err := connManager.Channel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}
	c.connection = conn
	c.channel = ch

	if err := c.declareTopology(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlx, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

// StartConsuming регистрирует потребителя и блокируется до отмены ctx (возвращает nil)
// или закрытия соединения брокером (возвращает ошибку).
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	deliveries, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from '%s': %w", c.config.QueueName, err)
	}
	c.Logger.Info("Waiting for messages", "queue", c.config.QueueName)

	connClosed := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	limit := c.config.PrefetchCount
	if limit <= 0 {
		limit = defaultConcurrency
	}
	slots := make(chan struct{}, limit)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, consumer stops", "queue", c.config.QueueName)
			return nil

		case amqpErr := <-connClosed:
			if amqpErr == nil {
				return fmt.Errorf("distributing consumer: connection closed")
			}
			c.Logger.Error(amqpErr, "Connection closed under consumer", "queue", c.config.QueueName)
			return amqpErr

		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("distributing consumer: deliveries channel closed for '%s'", c.config.QueueName)
			}

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				// Сообщение вернется в очередь после закрытия канала.
				return nil
			}

			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()
				defer func() { <-slots }()
				c.process(d)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(d amqp.Delivery) {
	err := c.handler(d)
	if err == nil {
		_ = d.Ack(false)
		c.Logger.Debug("Message acked", "delivery_tag", d.DeliveryTag)
		return
	}

	c.Logger.Error(err, "Handler failed", "queue", c.config.QueueName, "delivery_tag", d.DeliveryTag)

	switch c.config.onFailure(d) {
	case actionDiscard:
		_ = d.Nack(false, false)

	case actionRetry:
		c.Logger.Info("Message sent to retry", "delivery_tag", d.DeliveryTag, "death_count", deathCount(d.Headers, c.config.QueueName))
		_ = d.Nack(false, false)

	case actionDeadLetter:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pubErr := c.dlx.Publish(ctx, c.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Headers:      d.Headers,
			Body:         d.Body,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if pubErr != nil {
			// Сообщение останется в цикле повторов до следующей попытки.
			c.Logger.Error(pubErr, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		c.Logger.Warn("Max retries reached, message moved to final DLQ", "delivery_tag", d.DeliveryTag)
		_ = d.Ack(false)
	}
}

// Close дожидается работающих обработчиков и закрывает канал.
func (c *DistributingConsumer) Close() error {
	c.wg.Wait()

	var firstErr error
	if c.dlx != nil {
		if err := c.dlx.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.channel = nil

	c.Logger.Info("Consumer closed", "queue", c.config.QueueName)
	return firstErr
}
