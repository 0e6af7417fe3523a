package postgres_adapter

import (
	"context"
	"dreamsquare-service/internal/contextkeys"
	"dreamsquare-service/internal/core/domain"
	"dreamsquare-service/internal/core/port"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Отзывы хранятся в отдельной таблице и подтягиваются одним подзапросом в JSON.
const propertyColumns = `p.id::text, p.title, p.location, p.image, p.description, p.agent_name, p.agent_email,
	p.min_price, p.max_price, p.status, p.advertised, p.latitude, p.longitude, p.geohash, p.created_at,
	COALESCE((
		SELECT json_agg(json_build_object(
			'userId', pr.user_id, 'name', pr.name, 'text', pr.text, 'createdAt', pr.created_at
		) ORDER BY pr.id)
		FROM property_reviews pr WHERE pr.property_id = p.id
	), '[]'::json)`

type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPropertyRepository(pool *pgxpool.Pool) (*PostgresPropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyRepository{pool: pool}, nil
}

type reviewJSON struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	var status string
	var reviewsRaw []byte
	err := row.Scan(&p.ID, &p.Title, &p.Location, &p.Image, &p.Description, &p.AgentName, &p.AgentEmail,
		&p.MinPrice, &p.MaxPrice, &status, &p.Advertised, &p.Latitude, &p.Longitude, &p.Geohash, &p.CreatedAt,
		&reviewsRaw)
	if err != nil {
		return nil, err
	}
	p.Status = domain.PropertyStatus(status)

	var reviews []reviewJSON
	if err := json.Unmarshal(reviewsRaw, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode property reviews: %w", err)
	}
	p.Reviews = make([]domain.PropertyReview, 0, len(reviews))
	for _, rv := range reviews {
		p.Reviews = append(p.Reviews, domain.PropertyReview{UserID: rv.UserID, Name: rv.Name, Text: rv.Text, CreatedAt: rv.CreatedAt})
	}
	return &p, nil
}

func collectProperties(rows pgx.Rows) ([]domain.Property, error) {
	defer rows.Close()
	out := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during properties iteration: %w", err)
	}
	return out, nil
}

func (r *PostgresPropertyRepository) Create(ctx context.Context, p *domain.Property) (string, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "Create",
		"agent_email": p.AgentEmail,
	})

	id := uuid.NewString()
	query := `INSERT INTO properties (id, title, location, image, description, agent_name, agent_email,
			min_price, max_price, status, advertised, latitude, longitude, geohash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query, id, p.Title, p.Location, p.Image, p.Description, p.AgentName, p.AgentEmail,
		p.MinPrice, p.MaxPrice, string(p.Status), p.Advertised, p.Latitude, p.Longitude, p.Geohash, p.CreatedAt)
	if isCheckViolation(err) {
		return "", domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
	}
	if err != nil {
		repoLogger.Error("Failed to insert property", err, nil)
		return "", fmt.Errorf("failed to insert property: %w", err)
	}

	repoLogger.Debug("Property inserted", port.Fields{"property_id": id})
	return id, nil
}

func (r *PostgresPropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := scanProperty(r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = $1`, pid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to load property", err, port.Fields{
			"component": "PostgresPropertyRepository",
			"method":    "FindByID",
		})
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return p, nil
}

// FindByIDs пропускает некорректные и несуществующие идентификаторы.
func (r *PostgresPropertyRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Property, error) {
	valid := validIDs(ids)
	if len(valid) == 0 {
		return []domain.Property{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = ANY($1::uuid[])`, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return collectProperties(rows)
}

// List возвращает объекты по фильтру, новые первыми.
func (r *PostgresPropertyRepository) List(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.AgentEmail != "" {
		add("p.agent_email = $%d", f.AgentEmail)
	}
	if f.Status != "" {
		add("p.status = $%d", string(f.Status))
	}
	if f.AdvertisedOnly {
		conds = append(conds, "p.advertised")
	}
	if f.GeohashPrefix != "" {
		add("p.geohash LIKE $%d", escapeLike(f.GeohashPrefix)+"%")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties p`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY p.created_at DESC`

	contextkeys.LoggerFromContext(ctx).Debug("Listing properties", port.Fields{
		"component": "PostgresPropertyRepository",
		"method":    "List",
		"filters":   len(conds),
	})

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return collectProperties(rows)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update меняет только переданные поля.
func (r *PostgresPropertyRepository) Update(ctx context.Context, id string, u domain.PropertyUpdate) (domain.UpdateResult, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	var sets []string
	args := []interface{}{pid}
	set := func(column string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.Image != nil {
		set("image", *u.Image)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.AgentName != nil {
		set("agent_name", *u.AgentName)
	}
	if u.MinPrice != nil {
		set("min_price", *u.MinPrice)
	}
	if u.MaxPrice != nil {
		set("max_price", *u.MaxPrice)
	}
	if u.Latitude != nil {
		set("latitude", *u.Latitude)
	}
	if u.Longitude != nil {
		set("longitude", *u.Longitude)
	}
	if u.Geohash != nil {
		set("geohash", *u.Geohash)
	}

	if len(sets) == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, pid).Scan(&exists); err != nil {
			return domain.UpdateResult{}, fmt.Errorf("failed to check property: %w", err)
		}
		if !exists {
			return domain.UpdateResult{}, nil
		}
		return domain.UpdateResult{MatchedCount: 1}, nil
	}

	cmdTag, err := r.pool.Exec(ctx, `UPDATE properties SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isCheckViolation(err) {
		return domain.UpdateResult{}, domain.Errorf(domain.ErrInvalidArgument, "Invalid price range")
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to update property", err, port.Fields{
			"component": "PostgresPropertyRepository",
			"method":    "Update",
		})
		return domain.UpdateResult{}, fmt.Errorf("failed to update property: %w", err)
	}
	n := cmdTag.RowsAffected()
	return domain.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

// UpdateStatus - условное обновление: статус меняется, только если текущий равен from.
func (r *PostgresPropertyRepository) UpdateStatus(ctx context.Context, id string, from, to domain.PropertyStatus) (domain.UpdateResult, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	cmdTag, err := r.pool.Exec(ctx, `UPDATE properties SET status = $3 WHERE id = $1 AND status = $2`, pid, string(from), string(to))
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update property status: %w", err)
	}
	n := cmdTag.RowsAffected()
	return domain.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PostgresPropertyRepository) SetAdvertised(ctx context.Context, id string, advertised bool) (domain.UpdateResult, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	cmdTag, err := r.pool.Exec(ctx, `UPDATE properties SET advertised = $2 WHERE id = $1`, pid, advertised)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update advertised flag: %w", err)
	}
	n := cmdTag.RowsAffected()
	return domain.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PostgresPropertyRepository) AddReview(ctx context.Context, id string, review domain.PropertyReview) (domain.UpdateResult, error) {
	pid, err := parseID(id)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	query := `INSERT INTO property_reviews (property_id, user_id, name, text, created_at)
		SELECT id, $2, $3, $4, $5 FROM properties WHERE id = $1`
	cmdTag, err := r.pool.Exec(ctx, query, pid, review.UserID, review.Name, review.Text, review.CreatedAt)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to add property review: %w", err)
	}
	n := cmdTag.RowsAffected()
	return domain.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (r *PostgresPropertyRepository) Delete(ctx context.Context, id string) (int64, error) {
	pid, err := parseID(id)
	if err != nil {
		return 0, err
	}
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, pid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete property: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *PostgresPropertyRepository) DeleteByAgentEmail(ctx context.Context, agentEmail string) (int64, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "DeleteByAgentEmail",
		"agent_email": agentEmail,
	})

	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE agent_email = $1`, agentEmail)
	if err != nil {
		repoLogger.Error("Failed to delete agent properties", err, nil)
		return 0, fmt.Errorf("failed to delete agent properties: %w", err)
	}

	repoLogger.Debug("Agent properties deleted", port.Fields{"deleted": cmdTag.RowsAffected()})
	return cmdTag.RowsAffected(), nil
}
