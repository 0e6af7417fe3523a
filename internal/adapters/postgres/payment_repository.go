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

const paymentColumns = `id::text, offer_id, property_id, email, amount, transaction_id, payment_method, status, date`

// PostgresPaymentRepository - платежи только вставляются и читаются.
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) (*PostgresPaymentRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPaymentRepository{pool: pool}, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.OfferID, &p.PropertyID, &p.Email, &p.Amount, &p.TransactionID, &p.PaymentMethod, &p.Status, &p.Date)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPaymentRepository) Create(ctx context.Context, p *domain.Payment) (string, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":      "PostgresPaymentRepository",
		"method":         "Create",
		"transaction_id": p.TransactionID,
	})

	id := uuid.NewString()
	query := `INSERT INTO payments (id, offer_id, property_id, email, amount, transaction_id, payment_method, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query, id, p.OfferID, p.PropertyID, p.Email, p.Amount, p.TransactionID, p.PaymentMethod, p.Status, p.Date)
	if err != nil {
		if isUniqueViolation(err) {
			repoLogger.Warn("Payment with this transaction id already exists", nil)
			return "", domain.Errorf(domain.ErrAlreadyExists, "Payment with transactionId %s already recorded", p.TransactionID)
		}
		repoLogger.Error("Failed to insert payment", err, nil)
		return "", fmt.Errorf("failed to insert payment: %w", err)
	}

	repoLogger.Debug("Payment inserted", port.Fields{"payment_id": id})
	return id, nil
}

func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, pid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

func (r *PostgresPaymentRepository) ListPaidByPropertyIDs(ctx context.Context, propertyIDs []string) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	if len(propertyIDs) == 0 {
		return payments, nil
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE property_id = ANY($1) AND status = $2 ORDER BY date DESC`
	rows, err := r.pool.Query(ctx, query, propertyIDs, domain.PaymentStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during payments iteration: %w", err)
	}
	return payments, nil
}
