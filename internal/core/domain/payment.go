package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const PaymentStatusPaid = "paid"

// MinPaymentIntentAmount - минимальная сумма платежного намерения в минорных единицах валюты.
const MinPaymentIntentAmount = 50

// Payment - запись об оплате. После вставки не изменяется.
type Payment struct {
	ID            string
	OfferID       string
	PropertyID    string
	Email         string
	Amount        float64
	TransactionID string
	PaymentMethod string
	Status        string
	Date          time.Time
}

// PaymentRecord - входные данные для записи платежа.
// Amount приходит строкой, так как клиент может прислать и число, и строку.
type PaymentRecord struct {
	OfferID       string
	PropertyID    string
	Email         string
	Amount        string
	TransactionID string
	PaymentMethod string
}

// MissingFields возвращает имена незаполненных обязательных полей.
func (r PaymentRecord) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"offerId", r.OfferID},
		{"propertyId", r.PropertyID},
		{"email", r.Email},
		{"amount", r.Amount},
		{"transactionId", r.TransactionID},
		{"paymentMethod", r.PaymentMethod},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ParseAmount разбирает сумму платежа. Сумма должна быть конечным положительным числом.
func ParseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, Errorf(ErrInvalidArgument, "Invalid amount")
	}
	return amount, nil
}

// PaymentIntent - результат создания платежного намерения во внешнем шлюзе.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}
