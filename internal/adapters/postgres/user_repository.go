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

const userColumns = `id::text, email, name, photo_url, role, created_at`

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) (*PostgresUserRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresUserRepository{pool: pool}, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhotoURL, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// Create вставляет пользователя, если email свободен.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) (bool, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "Create",
		"email":     user.Email,
	})

	id := uuid.NewString()
	query := `INSERT INTO users (id, email, name, photo_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING`

	cmdTag, err := r.pool.Exec(ctx, query, id, user.Email, user.Name, user.PhotoURL, string(user.Role), user.CreatedAt)
	if err != nil {
		repoLogger.Error("Failed to insert user", err, nil)
		return false, fmt.Errorf("failed to insert user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Debug("User already exists", nil)
		return false, nil
	}

	user.ID = id
	repoLogger.Debug("User inserted", port.Fields{"user_id": id})
	return true, nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, "FindByID", `SELECT `+userColumns+` FROM users WHERE id = $1`, uid)
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "FindByEmail", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, method, query string, arg string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to load user", err, port.Fields{
			"component": "PostgresUserRepository",
			"method":    method,
		})
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during users iteration: %w", err)
	}
	return users, nil
}

// UpdateRole меняет роль. ModifiedCount равен 0, если роль уже была такой.
func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (domain.UpdateResult, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresUserRepository",
		"method":    "UpdateRole",
		"user_id":   id,
		"role":      role,
	})

	uid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	// Одним запросом: matched - строка найдена, modified - роль изменилась.
	query := `WITH target AS (SELECT id, role FROM users WHERE id = $1 FOR UPDATE),
		updated AS (
			UPDATE users u SET role = $2 FROM target t
			WHERE u.id = t.id AND t.role IS DISTINCT FROM $2
			RETURNING u.id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM updated)`

	var res domain.UpdateResult
	if err := r.pool.QueryRow(ctx, query, uid, string(role)).Scan(&res.MatchedCount, &res.ModifiedCount); err != nil {
		repoLogger.Error("Failed to update role", err, nil)
		return domain.UpdateResult{}, fmt.Errorf("failed to update role: %w", err)
	}

	repoLogger.Debug("Role update finished", port.Fields{"matched": res.MatchedCount, "modified": res.ModifiedCount})
	return res, nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) (int64, error) {
	uid, err := parseID(id)
	if err != nil {
		return 0, err
	}
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to delete user", err, port.Fields{
			"component": "PostgresUserRepository",
			"method":    "Delete",
		})
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
