package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id::text, property_id, user_id, name, text, status, created_at`

type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresReviewRepository(pool *pgxpool.Pool) (*PostgresReviewRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresReviewRepository{pool: pool}, nil
}

func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO reviews (id, property_id, user_id, name, text, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, id, review.PropertyID, review.UserID, review.Name, review.Text, string(review.Status), review.CreatedAt)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to insert review", err, port.Fields{
			"component": "PostgresReviewRepository",
			"method":    "Create",
		})
		return "", fmt.Errorf("failed to insert review: %w", err)
	}
	return id, nil
}

func (r *PostgresReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return collectReviews(rows)
}

func (r *PostgresReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return collectReviews(rows)
}

func collectReviews(rows pgx.Rows) ([]domain.Review, error) {
	defer rows.Close()
	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		var status string
		if err := rows.Scan(&rv.ID, &rv.PropertyID, &rv.UserID, &rv.Name, &rv.Text, &status, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		rv.Status = domain.ReviewStatus(status)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during reviews iteration: %w", err)
	}
	return reviews, nil
}

func (r *PostgresReviewRepository) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (domain.UpdateResult, error) {
	rid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	cmdTag, err := r.pool.Exec(ctx, `UPDATE reviews SET status = $2 WHERE id = $1`, rid, string(status))
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update review status: %w", err)
	}
	n := cmdTag.RowsAffected()
	return domain.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) (int64, error) {
	rid, err := parseID(id)
	if err != nil {
		return 0, err
	}
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, rid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete review: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
