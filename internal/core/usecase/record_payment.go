package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"strings"
	"time"
)

type RecordPaymentUseCase struct {
	payments port.PaymentRepositoryPort
	events   marketEvents
}

func NewRecordPaymentUseCase(payments port.PaymentRepositoryPort, publisher port.EventPublisherPort, notifier port.NotifierPort) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{payments: payments, events: newMarketEvents(publisher, notifier)}
}

// Execute сохраняет платеж со статусом paid и возвращает его идентификатор.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, record domain.PaymentRecord) (string, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":       "RecordPayment",
		"offer_id":       record.OfferID,
		"transaction_id": record.TransactionID,
	})
	ucLogger.Info("Use case started", nil)

	if missing := record.MissingFields(); len(missing) > 0 {
		ucLogger.Warn("Payment record is incomplete", port.Fields{"missing": missing})
		return "", domain.Errorf(domain.ErrInvalidArgument, "Missing required fields: %s", strings.Join(missing, ", "))
	}

	amount, err := domain.ParseAmount(record.Amount)
	if err != nil {
		ucLogger.Warn("Invalid payment amount", port.Fields{"amount": record.Amount})
		return "", err
	}

	payment := &domain.Payment{
		OfferID:       record.OfferID,
		PropertyID:    record.PropertyID,
		Email:         record.Email,
		Amount:        amount,
		TransactionID: record.TransactionID,
		PaymentMethod: record.PaymentMethod,
		Status:        domain.PaymentStatusPaid,
		Date:          time.Now().UTC(),
	}

	id, err := uc.payments.Create(ctx, payment)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return "", err
	}

	uc.events.emit(ctx, ucLogger, domain.MarketEvent{
		Type:          domain.EventPaymentRecorded,
		OfferID:       payment.OfferID,
		PropertyID:    payment.PropertyID,
		PaymentID:     id,
		BuyerEmail:    payment.Email,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
	})

	ucLogger.Info("Use case finished successfully", port.Fields{"payment_id": id})
	return id, nil
}
