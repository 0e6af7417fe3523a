package rabbitmq

import (
	"context"
	"dreamsquare-service/internal/constants"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	routingKey string
	msg        amqp.Publishing
}

type fakeProducer struct {
	sent []publishedMessage
	err  error
}

func (f *fakeProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, publishedMessage{routingKey: routingKey, msg: msg})
	return nil
}

func TestMarketEventsPublisher(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewMarketEventsPublisher(producer)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	event := domain.MarketEvent{
		Type:             domain.EventOfferAccepted,
		OfferID:          "o1",
		PropertyID:       "p1",
		BuyerEmail:       "b@x.io",
		RejectedOfferIDs: []string{"o2"},
		OccurredAt:       time.Now().UTC(),
	}
	require.NoError(t, pub.Publish(ctx, event))

	require.Len(t, producer.sent, 1)
	sent := producer.sent[0]
	assert.Equal(t, "market.offer.accepted", sent.routingKey)
	assert.Equal(t, "trace-1", sent.msg.Headers[constants.HeaderTraceID])
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)

	var decoded domain.MarketEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &decoded))
	assert.Equal(t, []string{"o2"}, decoded.RejectedOfferIDs)
}

func TestMarketEventsPublisherRejectsUnknownType(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewMarketEventsPublisher(producer)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), domain.MarketEvent{Type: "offer.exploded", OccurredAt: time.Now()})
	assert.Error(t, err)
	assert.Empty(t, producer.sent)
}

func TestPurgeEnqueueAdapter(t *testing.T) {
	producer := &fakeProducer{}
	adapter, err := NewPurgeEnqueueAdapter(producer, constants.RoutingKeyPurgeAgentListings)
	require.NoError(t, err)

	cmd := domain.PurgeAgentListingsCommand{UserID: "u1", AgentEmail: "fraud@x.io", RequestedAt: time.Now().UTC()}
	require.NoError(t, adapter.EnqueuePurge(context.Background(), cmd))
	require.Len(t, producer.sent, 1)
	assert.Equal(t, constants.RoutingKeyPurgeAgentListings, producer.sent[0].routingKey)

	producer.err = errors.New("channel closed")
	assert.Error(t, adapter.EnqueuePurge(context.Background(), cmd))

	_, err = NewPurgeEnqueueAdapter(producer, "")
	assert.Error(t, err)
}

type fakePurgeUseCase struct {
	got []domain.PurgeAgentListingsCommand
	err error
}

func (f *fakePurgeUseCase) Execute(ctx context.Context, cmd domain.PurgeAgentListingsCommand) (int64, error) {
	f.got = append(f.got, cmd)
	return 2, f.err
}

func TestPurgeConsumerHandleDelivery(t *testing.T) {
	uc := &fakePurgeUseCase{}
	adapter := &PurgeConsumerAdapter{useCase: uc, logger: contextkeys.LoggerFromContext(context.Background())}

	body, err := json.Marshal(domain.PurgeAgentListingsCommand{UserID: "u1", AgentEmail: "fraud@x.io", RequestedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, adapter.handleDelivery(amqp.Delivery{Body: body, Headers: amqp.Table{constants.HeaderTraceID: "t-1"}}))
	require.Len(t, uc.got, 1)
	assert.Equal(t, "fraud@x.io", uc.got[0].AgentEmail)

	assert.Error(t, adapter.handleDelivery(amqp.Delivery{Body: []byte(`{"userId":"u1"}`)}))
	assert.Len(t, uc.got, 1)

	uc.err = errors.New("store down")
	assert.Error(t, adapter.handleDelivery(amqp.Delivery{Body: body}))
}

func TestPkgLoggerBridgeFields(t *testing.T) {
	b := &PkgLoggerBridge{}
	fields := b.toFields("queue", "q1", 42, "skipped", "dangling")
	assert.Equal(t, "q1", fields["queue"])
	assert.Len(t, fields, 1)
}
