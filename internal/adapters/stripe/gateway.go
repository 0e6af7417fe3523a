package stripe_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// PaymentIntentCreator - часть клиента Stripe, нужная шлюзу.
type PaymentIntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Gateway создает платежные намерения в Stripe, оплата только картой.
type Gateway struct {
	intents PaymentIntentCreator
}

func NewGateway(intents PaymentIntentCreator) (*Gateway, error) {
	if intents == nil {
		return nil, fmt.Errorf("stripe payment intent client cannot be nil")
	}
	return &Gateway{intents: intents}, nil
}

// NewGatewayFromKey собирает шлюз поверх стандартного клиента Stripe.
func NewGatewayFromKey(secretKey string) (*Gateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key cannot be empty")
	}
	sc := client.New(secretKey, nil)
	return NewGateway(sc.PaymentIntents)
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*domain.PaymentIntent, error) {
	gwLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "StripeGateway",
		"method":    "CreatePaymentIntent",
		"amount":    amount,
		"currency":  currency,
	})

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		gwLogger.Error("Stripe returned an error", err, nil)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	gwLogger.Debug("Payment intent created", port.Fields{"intent_id": pi.ID})
	return &domain.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
