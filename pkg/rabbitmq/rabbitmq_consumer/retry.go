package rabbitmq_consumer

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type failureAction int

const (
	actionRetry failureAction = iota
	actionDeadLetter
	actionDiscard
)

// deathCount возвращает, сколько раз сообщение было отклонено из очереди queueName (заголовок x-death).
func deathCount(headers amqp.Table, queueName string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		switch count := tbl["count"].(type) {
		case int64:
			return count
		case int32:
			return int64(count)
		case int:
			return int64(count)
		}
	}
	return 0
}

// onFailure решает судьбу сообщения, обработка которого завершилась ошибкой.
func (c ConsumerConfig) onFailure(d amqp.Delivery) failureAction {
	if !c.EnableRetryMechanism {
		return actionDiscard
	}
	if deathCount(d.Headers, c.QueueName) < int64(c.MaxRetries) {
		return actionRetry
	}
	return actionDeadLetter
}
