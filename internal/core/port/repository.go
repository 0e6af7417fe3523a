package port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

// Все методы Find* возвращают (nil, nil), если запись не найдена.
// Некорректный формат идентификатора - ошибка domain.ErrInvalidArgument.

// UserRepositoryPort - хранилище пользователей.
type UserRepositoryPort interface {
	// Create вставляет пользователя, если email еще не занят. false - пользователь уже существовал.
	Create(ctx context.Context, user *domain.User) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// PropertyRepositoryPort - хранилище объектов недвижимости.
type PropertyRepositoryPort interface {
	Create(ctx context.Context, property *domain.Property) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Property, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Property, error)
	// List возвращает объекты по фильтру, новые первыми.
	List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error)
	Update(ctx context.Context, id string, update domain.PropertyUpdate) (domain.UpdateResult, error)
	// UpdateStatus меняет статус, только если текущий статус равен from.
	UpdateStatus(ctx context.Context, id string, from, to domain.PropertyStatus) (domain.UpdateResult, error)
	SetAdvertised(ctx context.Context, id string, advertised bool) (domain.UpdateResult, error)
	AddReview(ctx context.Context, id string, review domain.PropertyReview) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteByAgentEmail(ctx context.Context, agentEmail string) (int64, error)
}

// OfferRepositoryPort - хранилище предложений.
type OfferRepositoryPort interface {
	Create(ctx context.Context, offer *domain.Offer) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Offer, error)
	// ListByBuyer и ListByAgent возвращают предложения, новые первыми.
	ListByBuyer(ctx context.Context, buyerEmail string) ([]domain.Offer, error)
	ListByAgent(ctx context.Context, agentEmail string) ([]domain.Offer, error)
	// Accept принимает предложение и отклоняет остальные предложения по тому же объекту.
	// План изменений строится через domain.PlanAccept над актуальным состоянием.
	Accept(ctx context.Context, offerID string) (*domain.AcceptPlan, error)
	// TransitionStatus меняет статус, только если текущий статус равен from.
	// transactionID записывается, если не пустой.
	TransitionStatus(ctx context.Context, id string, from, to domain.OfferStatus, transactionID string) (bool, error)
}

// PaymentRepositoryPort - хранилище платежей. Повторный transactionID - domain.ErrAlreadyExists.
type PaymentRepositoryPort interface {
	Create(ctx context.Context, payment *domain.Payment) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	ListPaidByPropertyIDs(ctx context.Context, propertyIDs []string) ([]domain.Payment, error)
}

// WishlistRepositoryPort - хранилище списка желаемого. Повтор пары - domain.ErrAlreadyExists.
type WishlistRepositoryPort interface {
	Add(ctx context.Context, item *domain.WishlistItem) error
	ListByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error)
	Remove(ctx context.Context, userEmail, propertyID string) (int64, error)
}

// ReviewRepositoryPort - хранилище отзывов.
type ReviewRepositoryPort interface {
	Create(ctx context.Context, review *domain.Review) (string, error)
	List(ctx context.Context) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}
