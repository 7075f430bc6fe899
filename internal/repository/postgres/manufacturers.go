package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/core/port"
	"github.com/yakubikk/railway-registry/internal/repository"
)

var manufacturerColumns = []string{
	"id",
	"name",
	"country",
	"creator_id",
	"created_at",
	"updated_at",
}

// ManufacturerRepository implements port.ManufacturerRepository using PostgreSQL.
type ManufacturerRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewManufacturerRepository wires a PostgreSQL-backed manufacturer repository.
func NewManufacturerRepository(pool *pgxpool.Pool) *ManufacturerRepository {
	return &ManufacturerRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new manufacturer row.
func (r *ManufacturerRepository) Create(ctx context.Context, manufacturer domain.Manufacturer) error {
	query := r.builder.Insert("railway.manufacturers").
		Columns(manufacturerColumns...).
		Values(
			manufacturer.ID,
			manufacturer.Name,
			manufacturer.Country,
			manufacturer.CreatorID,
			manufacturer.CreatedAt,
			manufacturer.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert manufacturer sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert manufacturer: %w", err)
	}

	return nil
}

// GetByID retrieves a manufacturer by identifier.
func (r *ManufacturerRepository) GetByID(ctx context.Context, id string) (*domain.Manufacturer, error) {
	stmt, args, err := r.builder.
		Select(manufacturerColumns...).
		From("railway.manufacturers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select manufacturer sql: %w", err)
	}

	return scanManufacturer(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns every manufacturer ordered by name.
func (r *ManufacturerRepository) List(ctx context.Context) ([]domain.Manufacturer, error) {
	stmt, args, err := r.builder.
		Select(manufacturerColumns...).
		From("railway.manufacturers").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list manufacturers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query manufacturers: %w", err)
	}
	defer rows.Close()

	manufacturers := make([]domain.Manufacturer, 0)
	for rows.Next() {
		manufacturer, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		manufacturers = append(manufacturers, *manufacturer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manufacturers: %w", err)
	}

	return manufacturers, nil
}

// Update modifies an existing manufacturer row. The creator column never
// changes after insert.
func (r *ManufacturerRepository) Update(ctx context.Context, manufacturer domain.Manufacturer) error {
	stmt, args, err := r.builder.Update("railway.manufacturers").
		Set("name", manufacturer.Name).
		Set("country", manufacturer.Country).
		Set("updated_at", manufacturer.UpdatedAt).
		Where(squirrel.Eq{"id": manufacturer.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update manufacturer sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update manufacturer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a manufacturer row.
func (r *ManufacturerRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("railway.manufacturers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete manufacturer sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete manufacturer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// OwnerID resolves the creator column without loading the full row.
func (r *ManufacturerRepository) OwnerID(ctx context.Context, id string) (string, error) {
	stmt, args, err := r.builder.
		Select("creator_id").
		From("railway.manufacturers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select manufacturer owner sql: %w", err)
	}

	var creatorID string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&creatorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("scan manufacturer owner: %w", err)
	}

	return creatorID, nil
}

func scanManufacturer(row pgx.Row) (*domain.Manufacturer, error) {
	var manufacturer domain.Manufacturer

	if err := row.Scan(
		&manufacturer.ID,
		&manufacturer.Name,
		&manufacturer.Country,
		&manufacturer.CreatorID,
		&manufacturer.CreatedAt,
		&manufacturer.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan manufacturer: %w", err)
	}

	return &manufacturer, nil
}

var _ port.ManufacturerRepository = (*ManufacturerRepository)(nil)
