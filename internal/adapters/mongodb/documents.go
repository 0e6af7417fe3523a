package mongodb_adapter

import (
	"dreamsquare-service/internal/core/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersCollection      = "users"
	propertiesCollection = "properties"
	offersCollection     = "offers"
	paymentsCollection   = "payments"
	wishlistCollection   = "wishlist"
	reviewsCollection    = "reviews"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name,omitempty"`
	PhotoURL  string             `bson:"photoURL,omitempty"`
	Role      string             `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Name:      d.Name,
		PhotoURL:  d.PhotoURL,
		Role:      domain.Role(d.Role),
		CreatedAt: d.CreatedAt,
	}
}

type propertyReviewDocument struct {
	UserID    string    `bson:"userId"`
	Name      string    `bson:"name"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdAt,omitempty"`
}

// Отзывы к объекту лежат прямо в документе, как массив reviews.
type propertyDocument struct {
	ID          primitive.ObjectID       `bson:"_id,omitempty"`
	Title       string                   `bson:"title"`
	Location    string                   `bson:"location"`
	Image       string                   `bson:"image"`
	Description string                   `bson:"description"`
	AgentName   string                   `bson:"agentName"`
	AgentEmail  string                   `bson:"agentEmail"`
	MinPrice    float64                  `bson:"minPrice"`
	MaxPrice    float64                  `bson:"maxPrice"`
	Status      string                   `bson:"status"`
	Advertised  bool                     `bson:"advertised"`
	Latitude    *float64                 `bson:"latitude,omitempty"`
	Longitude   *float64                 `bson:"longitude,omitempty"`
	Geohash     string                   `bson:"geohash,omitempty"`
	Reviews     []propertyReviewDocument `bson:"reviews,omitempty"`
	CreatedAt   time.Time                `bson:"createdAt"`
}

func newPropertyDocument(p *domain.Property) propertyDocument {
	return propertyDocument{
		Title:       p.Title,
		Location:    p.Location,
		Image:       p.Image,
		Description: p.Description,
		AgentName:   p.AgentName,
		AgentEmail:  p.AgentEmail,
		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		Status:      string(p.Status),
		Advertised:  p.Advertised,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Geohash:     p.Geohash,
		CreatedAt:   p.CreatedAt,
	}
}

func (d propertyDocument) toDomain() domain.Property {
	p := domain.Property{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Location:    d.Location,
		Image:       d.Image,
		Description: d.Description,
		AgentName:   d.AgentName,
		AgentEmail:  d.AgentEmail,
		MinPrice:    d.MinPrice,
		MaxPrice:    d.MaxPrice,
		Status:      domain.PropertyStatus(d.Status),
		Advertised:  d.Advertised,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Geohash:     d.Geohash,
		CreatedAt:   d.CreatedAt,
		Reviews:     make([]domain.PropertyReview, 0, len(d.Reviews)),
	}
	for _, rv := range d.Reviews {
		p.Reviews = append(p.Reviews, domain.PropertyReview{UserID: rv.UserID, Name: rv.Name, Text: rv.Text, CreatedAt: rv.CreatedAt})
	}
	return p
}

type offerDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	PropertyID    string             `bson:"propertyId"`
	Title         string             `bson:"title"`
	Location      string             `bson:"location"`
	AgentName     string             `bson:"agentName"`
	AgentEmail    string             `bson:"agentEmail"`
	OfferAmount   float64            `bson:"offerAmount"`
	BuyerEmail    string             `bson:"buyerEmail"`
	BuyerName     string             `bson:"buyerName"`
	BuyingDate    string             `bson:"buyingDate"`
	Status        string             `bson:"status"`
	TransactionID string             `bson:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func (d offerDocument) toDomain() domain.Offer {
	return domain.Offer{
		ID:            d.ID.Hex(),
		PropertyID:    d.PropertyID,
		Title:         d.Title,
		Location:      d.Location,
		AgentName:     d.AgentName,
		AgentEmail:    d.AgentEmail,
		OfferAmount:   d.OfferAmount,
		BuyerEmail:    d.BuyerEmail,
		BuyerName:     d.BuyerName,
		BuyingDate:    d.BuyingDate,
		Status:        domain.OfferStatus(d.Status),
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
	}
}

type paymentDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OfferID       string             `bson:"offerId"`
	PropertyID    string             `bson:"propertyId"`
	Email         string             `bson:"email"`
	Amount        float64            `bson:"amount"`
	TransactionID string             `bson:"transactionId"`
	PaymentMethod string             `bson:"paymentMethod"`
	Status        string             `bson:"status"`
	Date          time.Time          `bson:"date"`
}

func (d paymentDocument) toDomain() domain.Payment {
	return domain.Payment{
		ID:            d.ID.Hex(),
		OfferID:       d.OfferID,
		PropertyID:    d.PropertyID,
		Email:         d.Email,
		Amount:        d.Amount,
		TransactionID: d.TransactionID,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		Date:          d.Date,
	}
}

type wishlistDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserEmail  string             `bson:"userEmail"`
	PropertyID string             `bson:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type reviewDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PropertyID string             `bson:"propertyId"`
	UserID     string             `bson:"userId"`
	Name       string             `bson:"name"`
	Text       string             `bson:"text"`
	Status     string             `bson:"status,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d reviewDocument) toDomain() domain.Review {
	return domain.Review{
		ID:         d.ID.Hex(),
		PropertyID: d.PropertyID,
		UserID:     d.UserID,
		Name:       d.Name,
		Text:       d.Text,
		Status:     domain.ReviewStatus(d.Status),
		CreatedAt:  d.CreatedAt,
	}
}
