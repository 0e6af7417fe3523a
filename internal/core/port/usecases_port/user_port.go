package usecases_port

import (
	"context"
	"dreamsquare-service/internal/core/domain"
)

type RegisterUserUseCasePort interface {
	Execute(ctx context.Context, user domain.User) (bool, error)
}

type GetUserRoleUseCasePort interface {
	Execute(ctx context.Context, email string) (domain.Role, error)
}

type ListUsersUseCasePort interface {
	Execute(ctx context.Context) ([]domain.User, error)
}

type SetUserRoleUseCasePort interface {
	Execute(ctx context.Context, id string, role domain.Role) (domain.UpdateResult, error)
}

type MarkUserFraudUseCasePort interface {
	Execute(ctx context.Context, id string) (*domain.FraudMarkResult, error)
}

type PurgeAgentListingsUseCasePort interface {
	Execute(ctx context.Context, cmd domain.PurgeAgentListingsCommand) (int64, error)
}

type DeleteUserUseCasePort interface {
	Execute(ctx context.Context, id, email string) error
}
