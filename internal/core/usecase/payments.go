package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"
)

type CreatePaymentIntentUseCase struct {
	gateway  port.PaymentGatewayPort
	currency string
}

func NewCreatePaymentIntentUseCase(gateway port.PaymentGatewayPort, currency string) *CreatePaymentIntentUseCase {
	if currency == "" {
		currency = "usd"
	}
	return &CreatePaymentIntentUseCase{gateway: gateway, currency: currency}
}

// Execute создает платежное намерение. amount - в минорных единицах (центах).
func (uc *CreatePaymentIntentUseCase) Execute(ctx context.Context, amount int64) (*domain.PaymentIntent, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "CreatePaymentIntent",
		"amount":   amount,
	})
	ucLogger.Info("Use case started", nil)

	if amount < domain.MinPaymentIntentAmount {
		return nil, domain.Errorf(domain.ErrInvalidArgument, "Invalid payment amount")
	}

	if uc.gateway == nil {
		return nil, fmt.Errorf("payment gateway is not configured")
	}

	intent, err := uc.gateway.CreatePaymentIntent(ctx, amount, uc.currency)
	if err != nil {
		ucLogger.Error("Payment gateway returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"intent_id": intent.ID})
	return intent, nil
}

type ListAgentPaymentsUseCase struct {
	properties port.PropertyRepositoryPort
	payments   port.PaymentRepositoryPort
}

func NewListAgentPaymentsUseCase(properties port.PropertyRepositoryPort, payments port.PaymentRepositoryPort) *ListAgentPaymentsUseCase {
	return &ListAgentPaymentsUseCase{properties: properties, payments: payments}
}

// Execute возвращает оплаченные платежи по объектам агента.
func (uc *ListAgentPaymentsUseCase) Execute(ctx context.Context, agentEmail string) ([]domain.Payment, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ListAgentPayments",
		"agent_email": agentEmail,
	})

	properties, err := uc.properties.List(ctx, domain.PropertyFilter{AgentEmail: agentEmail})
	if err != nil {
		ucLogger.Error("Failed to load agent properties", err, nil)
		return nil, err
	}
	if len(properties) == 0 {
		return []domain.Payment{}, nil
	}

	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}

	payments, err := uc.payments.ListPaidByPropertyIDs(ctx, ids)
	if err != nil {
		ucLogger.Error("Failed to load payments", err, nil)
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return payments, nil
}
