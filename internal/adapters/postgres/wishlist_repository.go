package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresWishlistRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWishlistRepository(pool *pgxpool.Pool) (*PostgresWishlistRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresWishlistRepository{pool: pool}, nil
}

// Add вставляет пару (пользователь, объект). Повтор - domain.ErrAlreadyExists.
func (r *PostgresWishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresWishlistRepository",
		"method":      "Add",
		"user_email":  item.UserEmail,
		"property_id": item.PropertyID,
	})

	id := uuid.NewString()
	query := `INSERT INTO wishlist (id, user_email, property_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, query, id, item.UserEmail, item.PropertyID, item.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			repoLogger.Debug("Wishlist item already exists", nil)
			return domain.ErrAlreadyExists
		}
		repoLogger.Error("Failed to add wishlist item", err, nil)
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	item.ID = id
	return nil
}

func (r *PostgresWishlistRepository) ListByUser(ctx context.Context, userEmail string) ([]domain.WishlistItem, error) {
	query := `SELECT id::text, user_email, property_id, created_at FROM wishlist WHERE user_email = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}
	defer rows.Close()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var it domain.WishlistItem
		if err := rows.Scan(&it.ID, &it.UserEmail, &it.PropertyID, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during wishlist iteration: %w", err)
	}
	return items, nil
}

func (r *PostgresWishlistRepository) Remove(ctx context.Context, userEmail, propertyID string) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM wishlist WHERE user_email = $1 AND property_id = $2`, userEmail, propertyID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
