package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type RecordPaymentUseCasePort interface {
	Execute(ctx context.Context, record domain.PaymentRecord) (string, error)
}

type CreatePaymentIntentUseCasePort interface {
	Execute(ctx context.Context, amount int64) (*domain.PaymentIntent, error)
}

type ListAgentPaymentsUseCasePort interface {
	Execute(ctx context.Context, agentEmail string) ([]domain.Payment, error)
}
