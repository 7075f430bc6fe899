package usecase

import (
	"context"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/core/port"
)

// CreateWagonInput captures the payload for creating a wagon record.
type CreateWagonInput struct {
	Number         string
	ManufacturerID *string
}

// UpdateWagonInput captures the payload for updating a wagon record.
type UpdateWagonInput struct {
	ID             string
	Number         *string
	ManufacturerID *string
}

// WagonService manages the wagon registry. Authorization happens at the
// enforcement layer before these methods run; the creator recorded here is
// what the ownership lookup later resolves.
type WagonService struct {
	wagons port.WagonRepository
}

// NewWagonService constructs a WagonService.
func NewWagonService(wagons port.WagonRepository) *WagonService {
	return &WagonService{wagons: wagons}
}

// CreateWagon inserts a wagon owned by the acting principal.
func (s *WagonService) CreateWagon(ctx context.Context, creatorID string, input CreateWagonInput) (*domain.Wagon, error) {
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, fmt.Errorf("wagon number is required")
	}
	if strings.TrimSpace(creatorID) == "" {
		return nil, fmt.Errorf("creator id is required")
	}

	now := timeNow()
	wagon := domain.Wagon{
		ID:             uuid.NewString(),
		Number:         number,
		ManufacturerID: input.ManufacturerID,
		CreatorID:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.wagons.Create(ctx, wagon); err != nil {
		return nil, fmt.Errorf("create wagon: %w", err)
	}
	return &wagon, nil
}

// GetWagon retrieves a wagon by id.
func (s *WagonService) GetWagon(ctx context.Context, id string) (*domain.Wagon, error) {
	wagon, err := s.wagons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wagon: %w", err)
	}
	return wagon, nil
}

// ListWagons returns every wagon record.
func (s *WagonService) ListWagons(ctx context.Context) ([]domain.Wagon, error) {
	wagons, err := s.wagons.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wagons: %w", err)
	}
	return wagons, nil
}

// UpdateWagon modifies an existing wagon record.
func (s *WagonService) UpdateWagon(ctx context.Context, input UpdateWagonInput) (*domain.Wagon, error) {
	wagon, err := s.wagons.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get wagon: %w", err)
	}

	if input.Number != nil {
		number := strings.TrimSpace(*input.Number)
		if number == "" {
			return nil, fmt.Errorf("wagon number must not be empty")
		}
		wagon.Number = number
	}
	if input.ManufacturerID != nil {
		wagon.ManufacturerID = input.ManufacturerID
	}
	wagon.UpdatedAt = timeNow()

	if err := s.wagons.Update(ctx, *wagon); err != nil {
		return nil, fmt.Errorf("update wagon: %w", err)
	}
	return wagon, nil
}

// DeleteWagon removes a wagon record.
func (s *WagonService) DeleteWagon(ctx context.Context, id string) error {
	if err := s.wagons.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete wagon: %w", err)
	}
	return nil
}

// OwnerLookup adapts the repository's creator resolution to the ownership
// resolver contract.
func (s *WagonService) OwnerLookup() OwnerLookup {
	return func(ctx context.Context, resourceID string) (string, error) {
		return s.wagons.OwnerID(ctx, resourceID)
	}
}
