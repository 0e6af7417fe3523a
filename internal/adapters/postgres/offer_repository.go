package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const offerColumns = `id::text, property_id::text, title, location, agent_name, agent_email, buyer_email,
	buyer_name, buying_date, offer_amount, status, COALESCE(transaction_id, ''), created_at`

type PostgresOfferRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOfferRepository(pool *pgxpool.Pool) (*PostgresOfferRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresOfferRepository{pool: pool}, nil
}

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	var status string
	err := row.Scan(&o.ID, &o.PropertyID, &o.Title, &o.Location, &o.AgentName, &o.AgentEmail, &o.BuyerEmail,
		&o.BuyerName, &o.BuyingDate, &o.OfferAmount, &status, &o.TransactionID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OfferStatus(status)
	return &o, nil
}

func (r *PostgresOfferRepository) Create(ctx context.Context, o *domain.Offer) (string, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresOfferRepository",
		"method":      "Create",
		"property_id": o.PropertyID,
	})

	pid, err := parseID(o.PropertyID)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := `INSERT INTO offers (id, property_id, title, location, agent_name, agent_email, buyer_email,
			buyer_name, buying_date, offer_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.pool.Exec(ctx, query, id, pid, o.Title, o.Location, o.AgentName, o.AgentEmail, o.BuyerEmail,
		o.BuyerName, o.BuyingDate, o.OfferAmount, string(o.Status), o.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to insert offer", err, nil)
		return "", fmt.Errorf("failed to insert offer: %w", err)
	}

	repoLogger.Debug("Offer inserted", port.Fields{"offer_id": id})
	return id, nil
}

func (r *PostgresOfferRepository) FindByID(ctx context.Context, id string) (*domain.Offer, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	o, err := scanOffer(r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, oid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	return o, nil
}

func (r *PostgresOfferRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]domain.Offer, error) {
	return r.list(ctx, `SELECT `+offerColumns+` FROM offers WHERE buyer_email = $1 ORDER BY created_at DESC`, buyerEmail)
}

func (r *PostgresOfferRepository) ListByAgent(ctx context.Context, agentEmail string) ([]domain.Offer, error) {
	return r.list(ctx, `SELECT `+offerColumns+` FROM offers WHERE agent_email = $1 ORDER BY created_at DESC`, agentEmail)
}

func (r *PostgresOfferRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Offer, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []domain.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during offers iteration: %w", err)
	}
	return offers, nil
}

// Accept в одной транзакции блокирует все предложения по объекту,
// строит план через domain.PlanAccept и применяет его.
func (r *PostgresOfferRepository) Accept(ctx context.Context, offerID string) (*domain.AcceptPlan, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresOfferRepository",
		"method":    "Accept",
		"offer_id":  offerID,
	})

	oid, err := parseID(offerID)
	if err != nil {
		return nil, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var propertyID string
	err = tx.QueryRow(ctx, `SELECT property_id::text FROM offers WHERE id = $1`, oid).Scan(&propertyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.Errorf(domain.ErrNotFound, "Offer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE property_id = $1 ORDER BY created_at FOR UPDATE`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock property offers: %w", err)
	}
	var siblings []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		siblings = append(siblings, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during offers iteration: %w", err)
	}

	var target *domain.Offer
	for i := range siblings {
		if siblings[i].ID == oid {
			target = &siblings[i]
		}
	}

	plan, err := domain.PlanAccept(target, siblings)
	if err != nil {
		repoLogger.Debug("Accept rejected by plan", port.Fields{"reason": err.Error()})
		return nil, err
	}

	if plan.AcceptTarget {
		if _, err := tx.Exec(ctx, `UPDATE offers SET status = 'accepted' WHERE id = $1`, oid); err != nil {
			if isUniqueViolation(err) {
				return nil, domain.Errorf(domain.ErrConflict, "Another offer on this property is already accepted")
			}
			return nil, fmt.Errorf("failed to accept offer: %w", err)
		}
	}
	if len(plan.RejectOfferIDs) > 0 {
		_, err := tx.Exec(ctx, `UPDATE offers SET status = 'rejected' WHERE id = ANY($1::uuid[]) AND status = 'pending'`, plan.RejectOfferIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to reject sibling offers: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit accept transaction", err, nil)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Offer accepted", port.Fields{"rejected": len(plan.RejectOfferIDs)})
	return plan, nil
}

// TransitionStatus - условное обновление статуса (compare-and-set).
func (r *PostgresOfferRepository) TransitionStatus(ctx context.Context, id string, from, to domain.OfferStatus, transactionID string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	query := `UPDATE offers SET status = $3, transaction_id = COALESCE(NULLIF($4, ''), transaction_id)
		WHERE id = $1 AND status = $2`
	cmdTag, err := r.pool.Exec(ctx, query, oid, string(from), string(to), transactionID)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to update offer status", err, port.Fields{
			"component": "PostgresOfferRepository",
			"method":    "TransitionStatus",
		})
		return false, fmt.Errorf("failed to update offer status: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
