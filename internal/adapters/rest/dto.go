package rest

import (
	"dreamsquare-service/internal/core/domain"
	"encoding/json"
	"time"
)

// --- Запросы ---

type RegisterUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL"`
}

type DeleteUserRequest struct {
	Email string `json:"email"`
}

// PropertyRequest - тело POST и PUT /properties. Поля-указатели позволяют
// отличить отсутствующее поле от нулевого значения при обновлении.
type PropertyRequest struct {
	Title       *string  `json:"title"`
	Location    *string  `json:"location"`
	Image       *string  `json:"image"`
	Description *string  `json:"description"`
	AgentName   *string  `json:"agentName"`
	AgentEmail  *string  `json:"agentEmail"`
	MinPrice    *float64 `json:"minPrice"`
	MaxPrice    *float64 `json:"maxPrice"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type PropertyStatusRequest struct {
	Status string `json:"status"`
}

type AdvertiseRequest struct {
	Advertised *bool `json:"advertised"`
}

type ReviewRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Text   string `json:"text"`
}

type ReviewStatusRequest struct {
	Status string `json:"status"`
}

type WishlistRequest struct {
	UserEmail  string `json:"userEmail"`
	PropertyID string `json:"propertyId"`
}

// CreateOfferRequest - offerAmount приходит числом или строкой.
type CreateOfferRequest struct {
	PropertyID  string          `json:"propertyId"`
	Title       string          `json:"title"`
	Location    string          `json:"location"`
	AgentName   string          `json:"agentName"`
	OfferAmount json.RawMessage `json:"offerAmount"`
	BuyerEmail  string          `json:"buyerEmail"`
	BuyerName   string          `json:"buyerName"`
	BuyingDate  string          `json:"buyingDate"`
}

type MarkBoughtRequest struct {
	TransactionID string `json:"transactionId"`
}

type PaymentIntentRequest struct {
	Amount *float64 `json:"amount"`
}

type RecordPaymentRequest struct {
	OfferID       string          `json:"offerId"`
	PropertyID    string          `json:"propertyId"`
	Email         string          `json:"email"`
	Amount        json.RawMessage `json:"amount"`
	TransactionID string          `json:"transactionId"`
	PaymentMethod string          `json:"paymentMethod"`
}

// --- Ответы ---

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PhotoURL  string    `json:"photoURL,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterUserResponse struct {
	Message  string `json:"message"`
	Inserted bool   `json:"inserted"`
}

type UpdateResultResponse struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type FraudResponse struct {
	MatchedCount      int64  `json:"matchedCount"`
	ModifiedCount     int64  `json:"modifiedCount"`
	DeletedProperties int64  `json:"deletedProperties"`
	AgentEmail        string `json:"agentEmail,omitempty"`
	PurgeDeferred     bool   `json:"purgeDeferred"`
	Error             string `json:"error,omitempty"`
}

type PropertyReviewResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type PropertyResponse struct {
	ID          string                   `json:"_id"`
	Title       string                   `json:"title"`
	Location    string                   `json:"location"`
	Image       string                   `json:"image,omitempty"`
	Description string                   `json:"description,omitempty"`
	AgentName   string                   `json:"agentName"`
	AgentEmail  string                   `json:"agentEmail"`
	MinPrice    float64                  `json:"minPrice"`
	MaxPrice    float64                  `json:"maxPrice"`
	Status      string                   `json:"status"`
	Advertised  bool                     `json:"advertised"`
	Latitude    *float64                 `json:"latitude,omitempty"`
	Longitude   *float64                 `json:"longitude,omitempty"`
	Geohash     string                   `json:"geohash,omitempty"`
	Reviews     []PropertyReviewResponse `json:"reviews"`
	CreatedAt   time.Time                `json:"createdAt"`
}

type InsertedResponse struct {
	InsertedID string `json:"insertedId"`
}

type ReviewResponse struct {
	ID         string    `json:"_id"`
	PropertyID string    `json:"propertyId"`
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Text       string    `json:"text"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateReviewResponse struct {
	Message string         `json:"message"`
	Review  ReviewResponse `json:"review"`
}

type OfferResponse struct {
	ID            string    `json:"_id"`
	PropertyID    string    `json:"propertyId"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Image         string    `json:"image,omitempty"`
	AgentName     string    `json:"agentName"`
	AgentEmail    string    `json:"agentEmail"`
	BuyerEmail    string    `json:"buyerEmail"`
	BuyerName     string    `json:"buyerName"`
	BuyingDate    string    `json:"buyingDate"`
	OfferAmount   float64   `json:"offerAmount"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SubmitOfferResponse struct {
	Message string        `json:"message"`
	Offer   OfferResponse `json:"offer"`
}

type AcceptOfferResponse struct {
	Message          string   `json:"message"`
	RejectedOfferIDs []string `json:"rejectedOfferIds"`
}

type MarkBoughtResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type PaymentResponse struct {
	ID            string    `json:"_id"`
	OfferID       string    `json:"offerId"`
	PropertyID    string    `json:"propertyId"`
	Email         string    `json:"email"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
}

// --- Маппинг ---

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		PhotoURL:  u.PhotoURL,
		Role:      string(u.EffectiveRole()),
		CreatedAt: u.CreatedAt,
	}
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	reviews := make([]PropertyReviewResponse, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, PropertyReviewResponse{
			UserID:    r.UserID,
			Name:      r.Name,
			Text:      r.Text,
			CreatedAt: r.CreatedAt,
		})
	}
	status := p.Status
	if status == "" {
		status = domain.PropertyPending
	}
	return PropertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Location:    p.Location,
		Image:       p.Image,
		Description: p.Description,
		AgentName:   p.AgentName,
		AgentEmail:  p.AgentEmail,
		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		Status:      string(status),
		Advertised:  p.Advertised,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Geohash:     p.Geohash,
		Reviews:     reviews,
		CreatedAt:   p.CreatedAt,
	}
}

func toPropertyResponses(list []domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

func toReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		UserID:     r.UserID,
		Name:       r.Name,
		Text:       r.Text,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func toOfferResponse(o domain.Offer) OfferResponse {
	return OfferResponse{
		ID:            o.ID,
		PropertyID:    o.PropertyID,
		Title:         o.Title,
		Location:      o.Location,
		Image:         o.Image,
		AgentName:     o.AgentName,
		AgentEmail:    o.AgentEmail,
		BuyerEmail:    o.BuyerEmail,
		BuyerName:     o.BuyerName,
		BuyingDate:    o.BuyingDate,
		OfferAmount:   o.OfferAmount,
		Status:        string(o.Status),
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
	}
}

func toOfferResponses(list []domain.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOfferResponse(o))
	}
	return out
}

func toPaymentResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		OfferID:       p.OfferID,
		PropertyID:    p.PropertyID,
		Email:         p.Email,
		Amount:        p.Amount,
		TransactionID: p.TransactionID,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		Date:          p.Date,
	}
}

func (r PropertyRequest) toDomain() domain.Property {
	p := domain.Property{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.AgentName != nil {
		p.AgentName = *r.AgentName
	}
	if r.AgentEmail != nil {
		p.AgentEmail = *r.AgentEmail
	}
	if r.MinPrice != nil {
		p.MinPrice = *r.MinPrice
	}
	if r.MaxPrice != nil {
		p.MaxPrice = *r.MaxPrice
	}
	return p
}

func (r PropertyRequest) toUpdate() domain.PropertyUpdate {
	return domain.PropertyUpdate{
		Title:       r.Title,
		Location:    r.Location,
		Image:       r.Image,
		Description: r.Description,
		AgentName:   r.AgentName,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

type DeletedResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}
