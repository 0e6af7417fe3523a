package stripe_adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type fakeIntents struct {
	params *stripe.PaymentIntentParams
	err    error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret_abc",
		Amount:       *params.Amount,
		Currency:     stripe.Currency(*params.Currency),
	}, nil
}

func TestGatewayCreatePaymentIntent(t *testing.T) {
	fake := &fakeIntents{}
	gw, err := NewGateway(fake)
	require.NoError(t, err)

	intent, err := gw.CreatePaymentIntent(context.Background(), 12000, "usd")
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(12000), intent.Amount)
	assert.Equal(t, []*string{stripe.String("card")}, fake.params.PaymentMethodTypes)
	assert.Equal(t, "usd", *fake.params.Currency)
}

func TestGatewayError(t *testing.T) {
	gw, err := NewGateway(&fakeIntents{err: errors.New("card_declined")})
	require.NoError(t, err)

	_, err = gw.CreatePaymentIntent(context.Background(), 12000, "usd")
	assert.Error(t, err)

	_, err = NewGatewayFromKey("")
	assert.Error(t, err)
}
