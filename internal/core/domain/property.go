package domain

import "time"

type PropertyStatus string

const (
	PropertyPending  PropertyStatus = "pending"
	PropertyVerified PropertyStatus = "verified"
	PropertyRejected PropertyStatus = "rejected"
)

// Property - объявление о продаже, созданное агентом.
type Property struct {
	ID          string
	Title       string
	Location    string
	Image       string
	Description string
	AgentName   string
	AgentEmail  string
	MinPrice    float64
	MaxPrice    float64
	Status      PropertyStatus
	Advertised  bool
	Latitude    *float64
	Longitude   *float64
	Geohash     string
	Reviews     []PropertyReview
	CreatedAt   time.Time
}

// PropertyReview - отзыв, встроенный прямо в документ объекта.
type PropertyReview struct {
	UserID    string
	Name      string
	Text      string
	CreatedAt time.Time
}

// PropertyFilter - критерии выборки объектов. Пустые поля не участвуют в фильтре.
type PropertyFilter struct {
	AgentEmail     string
	Status         PropertyStatus
	AdvertisedOnly bool
	GeohashPrefix  string
}

// PropertyUpdate - редактируемые поля объекта. Статус, владелец и дата создания
// через обновление не меняются.
type PropertyUpdate struct {
	Title       *string
	Location    *string
	Image       *string
	Description *string
	AgentName   *string
	MinPrice    *float64
	MaxPrice    *float64
	Latitude    *float64
	Longitude   *float64
	Geohash     *string
}

// IsModerationTarget проверяет, что статус допустим как цель модерации.
func (s PropertyStatus) IsModerationTarget() bool {
	return s == PropertyVerified || s == PropertyRejected
}

// TransitionTo проверяет переход статуса объекта.
// Возвращает false без ошибки, если объект уже находится в целевом статусе.
func (p *Property) TransitionTo(target PropertyStatus) (bool, error) {
	if !target.IsModerationTarget() {
		return false, Errorf(ErrInvalidArgument, "Invalid status")
	}
	if p.Status == target {
		return false, nil
	}
	if p.Status != PropertyPending && p.Status != "" {
		return false, Errorf(ErrConflict, "property is already %s", p.Status)
	}
	return true, nil
}

// ValidPriceRange - 0 <= min <= max.
func ValidPriceRange(minPrice, maxPrice float64) bool {
	return minPrice >= 0 && maxPrice >= minPrice
}

// PriceRangeContains проверяет, что сумма предложения лежит в диапазоне цен объекта.
func (p *Property) PriceRangeContains(amount float64) bool {
	return amount >= p.MinPrice && amount <= p.MaxPrice
}
