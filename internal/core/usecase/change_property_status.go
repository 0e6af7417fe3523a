package usecase

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
)

type ChangePropertyStatusUseCase struct {
	properties port.PropertyRepositoryPort
}

func NewChangePropertyStatusUseCase(properties port.PropertyRepositoryPort) *ChangePropertyStatusUseCase {
	return &ChangePropertyStatusUseCase{properties: properties}
}

// Execute модерирует объект: pending -> verified | rejected.
func (uc *ChangePropertyStatusUseCase) Execute(ctx context.Context, id string, target domain.PropertyStatus) error {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ChangePropertyStatus",
		"property_id": id,
		"target":      target,
	})
	ucLogger.Info("Use case started", nil)

	// Цель проверяется до чтения, чтобы некорректный запрос не трогал хранилище.
	if !target.IsModerationTarget() {
		ucLogger.Warn("Invalid target status", nil)
		return domain.Errorf(domain.ErrInvalidArgument, "Invalid status")
	}

	property, err := uc.properties.FindByID(ctx, id)
	if err != nil {
		ucLogger.Error("Failed to load property", err, nil)
		return err
	}
	if property == nil {
		ucLogger.Warn("Property not found", nil)
		return domain.Errorf(domain.ErrNotFound, "Property not found")
	}

	changed, err := property.TransitionTo(target)
	if err != nil {
		ucLogger.Warn("Transition rejected", port.Fields{"current": property.Status, "error": err.Error()})
		return err
	}
	if !changed {
		ucLogger.Info("Property already has target status", nil)
		return nil
	}

	res, err := uc.properties.UpdateStatus(ctx, id, property.Status, target)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return err
	}
	if res.MatchedCount == 0 {
		ucLogger.Warn("Property status changed concurrently", nil)
		return domain.Errorf(domain.ErrConflict, "Property status changed, retry the request")
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
