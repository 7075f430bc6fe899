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

var wagonColumns = []string{
	"id",
	"number",
	"manufacturer_id",
	"creator_id",
	"created_at",
	"updated_at",
}

// WagonRepository implements port.WagonRepository using PostgreSQL.
type WagonRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewWagonRepository wires a PostgreSQL-backed wagon repository.
func NewWagonRepository(pool *pgxpool.Pool) *WagonRepository {
	return &WagonRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new wagon row.
func (r *WagonRepository) Create(ctx context.Context, wagon domain.Wagon) error {
	query := r.builder.Insert("railway.wagons").
		Columns(wagonColumns...).
		Values(
			wagon.ID,
			wagon.Number,
			wagon.ManufacturerID,
			wagon.CreatorID,
			wagon.CreatedAt,
			wagon.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert wagon sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("insert wagon: %w", err)
	}

	return nil
}

// GetByID retrieves a wagon by identifier.
func (r *WagonRepository) GetByID(ctx context.Context, id string) (*domain.Wagon, error) {
	stmt, args, err := r.builder.
		Select(wagonColumns...).
		From("railway.wagons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select wagon sql: %w", err)
	}

	return scanWagon(r.exec.QueryRow(ctx, stmt, args...))
}

// List returns every wagon ordered by creation time.
func (r *WagonRepository) List(ctx context.Context) ([]domain.Wagon, error) {
	stmt, args, err := r.builder.
		Select(wagonColumns...).
		From("railway.wagons").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list wagons sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query wagons: %w", err)
	}
	defer rows.Close()

	wagons := make([]domain.Wagon, 0)
	for rows.Next() {
		wagon, err := scanWagon(rows)
		if err != nil {
			return nil, err
		}
		wagons = append(wagons, *wagon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wagons: %w", err)
	}

	return wagons, nil
}

// Update modifies an existing wagon row. The creator column never changes
// after insert.
func (r *WagonRepository) Update(ctx context.Context, wagon domain.Wagon) error {
	stmt, args, err := r.builder.Update("railway.wagons").
		Set("number", wagon.Number).
		Set("manufacturer_id", wagon.ManufacturerID).
		Set("updated_at", wagon.UpdatedAt).
		Where(squirrel.Eq{"id": wagon.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update wagon sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update wagon: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a wagon row.
func (r *WagonRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("railway.wagons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete wagon sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete wagon: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// OwnerID resolves the creator column without loading the full row.
func (r *WagonRepository) OwnerID(ctx context.Context, id string) (string, error) {
	stmt, args, err := r.builder.
		Select("creator_id").
		From("railway.wagons").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build select wagon owner sql: %w", err)
	}

	var creatorID string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&creatorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("scan wagon owner: %w", err)
	}

	return creatorID, nil
}

func scanWagon(row pgx.Row) (*domain.Wagon, error) {
	var wagon domain.Wagon

	if err := row.Scan(
		&wagon.ID,
		&wagon.Number,
		&wagon.ManufacturerID,
		&wagon.CreatorID,
		&wagon.CreatedAt,
		&wagon.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan wagon: %w", err)
	}

	return &wagon, nil
}

var _ port.WagonRepository = (*WagonRepository)(nil)
