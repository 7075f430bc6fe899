package port

import (
	"context"

	"github.com/yakubikk/railway-registry/internal/core/domain"
)

// WagonRepository exposes persistence behavior for the wagon registry.
type WagonRepository interface {
	Create(ctx context.Context, wagon domain.Wagon) error
	GetByID(ctx context.Context, id string) (*domain.Wagon, error)
	List(ctx context.Context) ([]domain.Wagon, error)
	Update(ctx context.Context, wagon domain.Wagon) error
	Delete(ctx context.Context, id string) error
	// OwnerID resolves the creator of a wagon without loading the full row.
	// Returns repository.ErrNotFound when the wagon does not exist.
	OwnerID(ctx context.Context, id string) (string, error)
}

// ManufacturerRepository exposes persistence behavior for the manufacturer
// registry.
type ManufacturerRepository interface {
	Create(ctx context.Context, manufacturer domain.Manufacturer) error
	GetByID(ctx context.Context, id string) (*domain.Manufacturer, error)
	List(ctx context.Context) ([]domain.Manufacturer, error)
	Update(ctx context.Context, manufacturer domain.Manufacturer) error
	Delete(ctx context.Context, id string) error
	OwnerID(ctx context.Context, id string) (string, error)
}
