package port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

// TokenVerifierPort - проверка bearer-токена внешним провайдером идентификации.
type TokenVerifierPort interface {
	VerifyToken(ctx context.Context, token string) (*domain.Principal, error)
}

// IdentityDirectoryPort - управление учетными записями у провайдера идентификации.
type IdentityDirectoryPort interface {
	DeleteUserByEmail(ctx context.Context, email string) error
}
