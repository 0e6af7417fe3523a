package port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

// PaymentGatewayPort - внешний платежный шлюз.
type PaymentGatewayPort interface {
	// CreatePaymentIntent создает намерение на сумму в минорных единицах валюты.
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*domain.PaymentIntent, error)
}
