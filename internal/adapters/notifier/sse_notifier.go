package notifier

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"encoding/json"
	"fmt"
	"sync"
)

// ClientChannel - канал одного SSE-подключения (одной вкладки браузера).
type ClientChannel chan []byte

type eventWithContext struct {
	ctx   context.Context
	event domain.MarketEvent
}

// SSENotifier рассылает события предложений подключенным клиентам.
// Ключ реестра - email пользователя, один пользователь может держать несколько подключений.
type SSENotifier struct {
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	closeOnce sync.Once

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[string][]ClientChannel),
		eventChan: make(chan eventWithContext, 100),
		done:      make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}
	go n.dispatcher()
	return n
}

func (n *SSENotifier) dispatcher() {
	n.logger.Debug("Notifier dispatcher started", nil)
	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg.ctx, pkg.event)
		}
	}
}

func (n *SSENotifier) dispatch(ctx context.Context, event domain.MarketEvent) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SSENotifier.dispatcher",
		"event_type": string(event.Type),
		"offer_id":   event.OfferID,
	})

	payload, err := json.Marshal(event)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}
	message := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, email := range event.Recipients() {
		channels, found := n.clients[email]
		if !found {
			eventLogger.Debug("No active clients for user, event dropped", port.Fields{"email": email})
			continue
		}
		for _, ch := range channels {
			select {
			case ch <- message:
			default:
				eventLogger.Warn("Client channel is full, skipping", port.Fields{"email": email})
			}
		}
	}
}

// Notify не блокирует use case: при переполненном буфере событие отбрасывается.
func (n *SSENotifier) Notify(ctx context.Context, event domain.MarketEvent) {
	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
	case <-n.done:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("Notifier queue is full, event dropped", port.Fields{
			"component":  "SSENotifier",
			"event_type": string(event.Type),
		})
	}
}

// AddClient регистрирует новое SSE-подключение пользователя.
func (n *SSENotifier) AddClient(email string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, 100)
	n.clients[email] = append(n.clients[email], ch)

	n.logger.Info("Client connected", port.Fields{
		"email":             email,
		"total_connections": len(n.clients[email]),
	})
	return ch
}

// RemoveClient удаляет подключение, когда клиент закрывает соединение.
func (n *SSENotifier) RemoveClient(email string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[email]
	if !found {
		return
	}
	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(n.clients, email)
		n.logger.Debug("Last client disconnected, user removed", port.Fields{"email": email})
		return
	}
	n.clients[email] = remaining
	n.logger.Info("Client disconnected", port.Fields{"email": email, "remaining_connections": len(remaining)})
}

// Close останавливает диспетчер. Повторный вызов безопасен.
func (n *SSENotifier) Close() {
	n.closeOnce.Do(func() { close(n.done) })
}
