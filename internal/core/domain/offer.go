package domain

import "time"

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferBought   OfferStatus = "bought"
)

// Offer - предложение покупателя по конкретному объекту.
type Offer struct {
	ID            string
	PropertyID    string
	Title         string
	Location      string
	AgentName     string
	AgentEmail    string
	BuyerEmail    string
	BuyerName     string
	BuyingDate    string
	OfferAmount   float64
	Status        OfferStatus
	TransactionID string
	CreatedAt     time.Time

	// Image не хранится вместе с предложением, подмешивается из объекта при выдаче покупателю.
	Image string
}

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferPending:  {OfferAccepted, OfferRejected},
	// принятое предложение можно отозвать до оплаты
	OfferAccepted: {OfferBought, OfferRejected},
}

// CanTransitionTo сообщает, разрешен ли переход между статусами предложения.
func (s OfferStatus) CanTransitionTo(target OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal - статус, после которого предложение больше не меняется.
func (s OfferStatus) IsTerminal() bool {
	return s == OfferRejected || s == OfferBought
}

// AcceptPlan - набор изменений, который нужно применить атомарно при принятии предложения.
type AcceptPlan struct {
	OfferID        string
	PropertyID     string
	AcceptTarget   bool
	RejectOfferIDs []string
}

// PlanAccept вычисляет изменения для принятия target среди всех предложений по тому же объекту.
// siblings могут включать и сам target, он будет пропущен.
func PlanAccept(target *Offer, siblings []Offer) (*AcceptPlan, error) {
	if target == nil {
		return nil, Errorf(ErrNotFound, "Offer not found")
	}
	if target.Status != OfferPending && target.Status != OfferAccepted {
		return nil, Errorf(ErrConflict, "offer %s is %s and cannot be accepted", target.ID, target.Status)
	}

	plan := &AcceptPlan{
		OfferID:      target.ID,
		PropertyID:   target.PropertyID,
		AcceptTarget: target.Status != OfferAccepted,
	}
	for _, s := range siblings {
		if s.ID == target.ID {
			continue
		}
		switch s.Status {
		case OfferAccepted, OfferBought:
			return nil, Errorf(ErrConflict, "offer %s on the same property is already %s", s.ID, s.Status)
		case OfferPending:
			plan.RejectOfferIDs = append(plan.RejectOfferIDs, s.ID)
		}
	}
	return plan, nil
}

// OfferSubmission - входные данные для создания предложения.
type OfferSubmission struct {
	PropertyID  string
	Title       string
	Location    string
	AgentName   string
	OfferAmount float64
	BuyerEmail  string
	BuyerName   string
	BuyingDate  string
}

// MissingFields возвращает имена незаполненных обязательных полей.
func (s OfferSubmission) MissingFields() []string {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("propertyId", s.PropertyID)
	check("title", s.Title)
	check("location", s.Location)
	check("agentName", s.AgentName)
	check("buyerEmail", s.BuyerEmail)
	check("buyerName", s.BuyerName)
	check("buyingDate", s.BuyingDate)
	if s.OfferAmount == 0 {
		missing = append(missing, "offerAmount")
	}
	return missing
}
