package notifier

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) *SSENotifier {
	n := NewSSENotifier(contextkeys.LoggerFromContext(context.Background()))
	t.Cleanup(n.Close)
	return n
}

func receive(t *testing.T, ch ClientChannel) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return ""
	}
}

func TestNotifyDeliversToBuyerAndAgent(t *testing.T) {
	n := newTestNotifier(t)
	buyer := n.AddClient("buyer@x.io")
	agentTab1 := n.AddClient("agent@x.io")
	agentTab2 := n.AddClient("agent@x.io")
	stranger := n.AddClient("other@x.io")

	n.Notify(context.Background(), domain.MarketEvent{
		Type:       domain.EventOfferAccepted,
		OfferID:    "o1",
		BuyerEmail: "buyer@x.io",
		AgentEmail: "agent@x.io",
	})

	msg := receive(t, buyer)
	assert.True(t, strings.HasPrefix(msg, "event: offer.accepted\ndata: "))
	assert.True(t, strings.HasSuffix(msg, "\n\n"))
	assert.Contains(t, msg, `"offerId":"o1"`)

	receive(t, agentTab1)
	receive(t, agentTab2)

	select {
	case <-stranger:
		t.Fatal("event leaked to an unrelated client")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoveClient(t *testing.T) {
	n := newTestNotifier(t)
	ch1 := n.AddClient("a@x.io")
	ch2 := n.AddClient("a@x.io")

	n.RemoveClient("a@x.io", ch1)
	n.mu.RLock()
	require.Len(t, n.clients["a@x.io"], 1)
	n.mu.RUnlock()

	n.RemoveClient("a@x.io", ch2)
	n.mu.RLock()
	_, found := n.clients["a@x.io"]
	n.mu.RUnlock()
	assert.False(t, found)

	n.RemoveClient("unknown@x.io", ch1)
}

func TestNotifyAfterCloseDoesNotBlock(t *testing.T) {
	n := newTestNotifier(t)
	n.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			n.Notify(context.Background(), domain.MarketEvent{Type: domain.EventOfferSubmitted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked after Close")
	}
}
