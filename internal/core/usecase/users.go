package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"strings"
	"time"
)

type RegisterUserUseCase struct {
	users port.UserRepositoryPort
}

func NewRegisterUserUseCase(users port.UserRepositoryPort) *RegisterUserUseCase {
	return &RegisterUserUseCase{users: users}
}

// Execute сохраняет пользователя при первом входе. Повторный вход не ошибка: возвращается false.
// Роль всегда "user", повышение только через админские маршруты.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, user domain.User) (bool, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RegisterUser",
		"email":    user.Email,
	})
	ucLogger.Info("Use case started", nil)

	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return false, domain.Errorf(domain.ErrInvalidArgument, "Email is required")
	}
	user.Role = domain.RoleUser
	user.CreatedAt = time.Now().UTC()

	inserted, err := uc.users.Create(ctx, &user)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return false, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"inserted": inserted})
	return inserted, nil
}

type GetUserRoleUseCase struct {
	users port.UserRepositoryPort
}

func NewGetUserRoleUseCase(users port.UserRepositoryPort) *GetUserRoleUseCase {
	return &GetUserRoleUseCase{users: users}
}

func (uc *GetUserRoleUseCase) Execute(ctx context.Context, email string) (domain.Role, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to load user by email", err, port.Fields{"use_case": "GetUserRole"})
		return "", err
	}
	if user == nil {
		return "", domain.Errorf(domain.ErrNotFound, "User not found")
	}
	return user.EffectiveRole(), nil
}

type ListUsersUseCase struct {
	users port.UserRepositoryPort
}

func NewListUsersUseCase(users port.UserRepositoryPort) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

type SetUserRoleUseCase struct {
	users port.UserRepositoryPort
}

func NewSetUserRoleUseCase(users port.UserRepositoryPort) *SetUserRoleUseCase {
	return &SetUserRoleUseCase{users: users}
}

// Execute назначает роль user/agent/admin. Роль fraud ставится только через MarkUserFraudUseCase.
func (uc *SetUserRoleUseCase) Execute(ctx context.Context, id string, role domain.Role) (domain.UpdateResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SetUserRole",
		"user_id":  id,
		"role":     role,
	})
	ucLogger.Info("Use case started", nil)

	switch role {
	case domain.RoleUser, domain.RoleAgent, domain.RoleAdmin:
	default:
		return domain.UpdateResult{}, domain.Errorf(domain.ErrInvalidArgument, "Invalid role")
	}

	res, err := uc.users.UpdateRole(ctx, id, role)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return domain.UpdateResult{}, err
	}
	if res.MatchedCount == 0 {
		return res, domain.Errorf(domain.ErrNotFound, "User not found")
	}

	ucLogger.Info("Use case finished successfully", nil)
	return res, nil
}

type DeleteUserUseCase struct {
	users     port.UserRepositoryPort
	directory port.IdentityDirectoryPort
}

func NewDeleteUserUseCase(users port.UserRepositoryPort, directory port.IdentityDirectoryPort) *DeleteUserUseCase {
	return &DeleteUserUseCase{users: users, directory: directory}
}

// Execute удаляет пользователя из хранилища. Если передан email, учетная запись
// удаляется и у провайдера идентификации; ошибка провайдера только логируется.
func (uc *DeleteUserUseCase) Execute(ctx context.Context, id, email string) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "DeleteUser",
		"user_id":  id,
	})
	ucLogger.Info("Use case started", nil)

	deleted, err := uc.users.Delete(ctx, id)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}
	if deleted == 0 {
		return domain.Errorf(domain.ErrNotFound, "User not found")
	}

	if email != "" && uc.directory != nil {
		if err := uc.directory.DeleteUserByEmail(ctx, email); err != nil {
			ucLogger.Error("Failed to delete identity provider account", err, port.Fields{"email": email})
		}
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
