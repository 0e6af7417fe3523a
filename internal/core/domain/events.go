package domain

import "time"

type MarketEventType string

const (
	EventOfferSubmitted  MarketEventType = "offer.submitted"
	EventOfferAccepted   MarketEventType = "offer.accepted"
	EventOfferRejected   MarketEventType = "offer.rejected"
	EventOfferBought     MarketEventType = "offer.bought"
	EventPaymentRecorded MarketEventType = "payment.recorded"
)

// MarketEvent - событие жизненного цикла предложения или платежа.
// Адресаты - покупатель и агент объекта.
type MarketEvent struct {
	Type             MarketEventType `json:"type"`
	OfferID          string          `json:"offerId,omitempty"`
	PropertyID       string          `json:"propertyId,omitempty"`
	PaymentID        string          `json:"paymentId,omitempty"`
	BuyerEmail       string          `json:"buyerEmail,omitempty"`
	AgentEmail       string          `json:"agentEmail,omitempty"`
	Amount           float64         `json:"amount,omitempty"`
	TransactionID    string          `json:"transactionId,omitempty"`
	RejectedOfferIDs []string        `json:"rejectedOfferIds,omitempty"`
	OccurredAt       time.Time       `json:"occurredAt"`
}

// Recipients возвращает уникальные email адресатов события.
func (e MarketEvent) Recipients() []string {
	var out []string
	for _, email := range []string{e.BuyerEmail, e.AgentEmail} {
		if email == "" {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen == email {
				dup = true
			}
		}
		if !dup {
			out = append(out, email)
		}
	}
	return out
}

// PurgeAgentListingsCommand - отложенное удаление объектов агента,
// если шаг каскада "fraud" не удалось выполнить синхронно.
type PurgeAgentListingsCommand struct {
	UserID      string    `json:"userId"`
	AgentEmail  string    `json:"agentEmail"`
	RequestedAt time.Time `json:"requestedAt"`
}
