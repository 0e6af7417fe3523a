package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultReconnectInterval = 5 * time.Second

// ConnectionManager держит одно соединение на процесс и переподключается при его потере.
// Каналы открываются поверх общего соединения, у каждого издателя/потребителя свой.
type ConnectionManager struct {
	cfg               Config
	dial              func(url string) (*amqp.Connection, error)
	reconnectInterval time.Duration

	mu   sync.RWMutex
	conn *amqp.Connection

	done      chan struct{}
	closeOnce sync.Once
	Logger    Logger
}

// NewConnectionManager устанавливает соединение и запускает фоновое переподключение.
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	m := &ConnectionManager{
		cfg:               cfg,
		dial:              amqp.Dial,
		reconnectInterval: defaultReconnectInterval,
		done:              make(chan struct{}),
		Logger:            logger,
	}

	if _, err := m.connection(); err != nil {
		logger.Error(err, "Initial connection failed")
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}

	go m.watch()
	return m, nil
}

func (m *ConnectionManager) connection() (*amqp.Connection, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()
	if conn != nil && !conn.IsClosed() {
		return conn, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return nil, fmt.Errorf("connection manager is closed")
	default:
	}

	if m.conn != nil && !m.conn.IsClosed() {
		return m.conn, nil
	}

	m.Logger.Debug("Connecting to RabbitMQ")
	conn, err := m.dial(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	m.conn = conn
	m.Logger.Info("Connected to RabbitMQ")
	return conn, nil
}

// Channel открывает новый канал поверх общего соединения.
func (m *ConnectionManager) Channel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.connection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

// watch ждет закрытия соединения и переподключается с паузой между попытками.
func (m *ConnectionManager) watch() {
	for {
		m.mu.RLock()
		conn := m.conn
		m.mu.RUnlock()

		closed := make(chan *amqp.Error, 1)
		if conn != nil {
			conn.NotifyClose(closed)
		} else {
			close(closed)
		}

		select {
		case <-m.done:
			return
		case amqpErr := <-closed:
			if amqpErr != nil {
				m.Logger.Warn("RabbitMQ connection lost", "reason", amqpErr.Reason, "code", amqpErr.Code)
			}
		}

		for {
			select {
			case <-m.done:
				return
			case <-time.After(m.reconnectInterval):
			}
			if _, err := m.connection(); err != nil {
				m.Logger.Error(err, "Reconnect failed")
				continue
			}
			break
		}
	}
}

// Close останавливает переподключение и закрывает соединение.
func (m *ConnectionManager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.conn != nil && !m.conn.IsClosed() {
			m.Logger.Debug("Closing RabbitMQ connection")
			err = m.conn.Close()
		}
		m.conn = nil
	})
	return err
}
