package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
)

// PurgeAgentListingsUseCase завершает отложенный шаг каскада fraud.
// Повторный запуск безопасен: удалять уже нечего.
type PurgeAgentListingsUseCase struct {
	users      port.UserRepositoryPort
	properties port.PropertyRepositoryPort
}

func NewPurgeAgentListingsUseCase(users port.UserRepositoryPort, properties port.PropertyRepositoryPort) *PurgeAgentListingsUseCase {
	return &PurgeAgentListingsUseCase{users: users, properties: properties}
}

func (uc *PurgeAgentListingsUseCase) Execute(ctx context.Context, cmd domain.PurgeAgentListingsCommand) (int64, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "PurgeAgentListings",
		"user_id":     cmd.UserID,
		"agent_email": cmd.AgentEmail,
	})
	ucLogger.Info("Use case started", nil)

	if cmd.AgentEmail == "" {
		return 0, domain.Errorf(domain.ErrInvalidArgument, "agent email is required")
	}

	// Если роль успели вернуть, объекты больше не удаляем.
	if cmd.UserID != "" {
		user, err := uc.users.FindByID(ctx, cmd.UserID)
		if err != nil {
			ucLogger.Error("Failed to load user", err, nil)
			return 0, err
		}
		if user != nil && user.EffectiveRole() != domain.RoleFraud {
			ucLogger.Warn("User is no longer marked as fraud, purge skipped", port.Fields{"role": user.EffectiveRole()})
			return 0, nil
		}
	}

	deleted, err := uc.properties.DeleteByAgentEmail(ctx, cmd.AgentEmail)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return 0, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"properties_deleted": deleted})
	return deleted, nil
}
