package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"
	"time"
)

// MarkUserFraudUseCase - сага из трех шагов без отката:
// 1) роль fraud, 2) поиск email, 3) удаление всех объектов агента.
// Если шаг 3 не удался, команда удаления уходит в очередь (если она настроена),
// иначе вызывающему возвращается ошибка вместе с частичным результатом.
type MarkUserFraudUseCase struct {
	users      port.UserRepositoryPort
	properties port.PropertyRepositoryPort
	purgeQueue port.PurgeQueuePort
}

func NewMarkUserFraudUseCase(users port.UserRepositoryPort, properties port.PropertyRepositoryPort, purgeQueue port.PurgeQueuePort) *MarkUserFraudUseCase {
	return &MarkUserFraudUseCase{users: users, properties: properties, purgeQueue: purgeQueue}
}

func (uc *MarkUserFraudUseCase) Execute(ctx context.Context, id string) (*domain.FraudMarkResult, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "MarkUserFraud",
		"user_id":  id,
	})
	ucLogger.Info("Use case started", nil)

	// Шаг 1
	res, err := uc.users.UpdateRole(ctx, id, domain.RoleFraud)
	if err != nil {
		ucLogger.Error("Failed to update role", err, nil)
		return nil, err
	}
	if res.MatchedCount == 0 {
		ucLogger.Warn("User not found", nil)
		return nil, domain.Errorf(domain.ErrNotFound, "User not found")
	}
	result := &domain.FraudMarkResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}

	// Шаг 2
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		ucLogger.Error("Role updated but user lookup failed", err, nil)
		return result, fmt.Errorf("fraud cascade incomplete after role update: %w", err)
	}
	if user == nil || user.Email == "" {
		ucLogger.Warn("User has no email, no listings to delete", nil)
		return result, nil
	}
	result.AgentEmail = user.Email

	// Шаг 3
	deleted, err := uc.properties.DeleteByAgentEmail(ctx, user.Email)
	if err != nil {
		ucLogger.Error("Role updated but listings were not deleted", err, port.Fields{"agent_email": user.Email})
		if uc.purgeQueue == nil {
			return result, fmt.Errorf("fraud cascade incomplete, listings of %s remain: %w", user.Email, err)
		}
		enqueueErr := uc.purgeQueue.EnqueuePurge(ctx, domain.PurgeAgentListingsCommand{
			UserID:      id,
			AgentEmail:  user.Email,
			RequestedAt: time.Now().UTC(),
		})
		if enqueueErr != nil {
			ucLogger.Error("Failed to enqueue listings purge", enqueueErr, nil)
			return result, fmt.Errorf("fraud cascade incomplete, listings of %s remain: %w", user.Email, err)
		}
		result.PurgeDeferred = true
		ucLogger.Warn("Listings purge deferred to queue", nil)
		return result, nil
	}
	result.PropertiesDeleted = deleted

	ucLogger.Info("Use case finished successfully", port.Fields{"properties_deleted": deleted})
	return result, nil
}
