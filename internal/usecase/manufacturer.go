package usecase

import (
	"context"
	"fmt"
	"strings"

	uuid "github.com/google/uuid"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/core/port"
)

// CreateManufacturerInput captures the payload for creating a manufacturer.
type CreateManufacturerInput struct {
	Name    string
	Country string
}

// UpdateManufacturerInput captures the payload for updating a manufacturer.
type UpdateManufacturerInput struct {
	ID      string
	Name    *string
	Country *string
}

// ManufacturerService manages the manufacturer registry.
type ManufacturerService struct {
	manufacturers port.ManufacturerRepository
}

// NewManufacturerService constructs a ManufacturerService.
func NewManufacturerService(manufacturers port.ManufacturerRepository) *ManufacturerService {
	return &ManufacturerService{manufacturers: manufacturers}
}

// CreateManufacturer inserts a manufacturer owned by the acting principal.
func (s *ManufacturerService) CreateManufacturer(ctx context.Context, creatorID string, input CreateManufacturerInput) (*domain.Manufacturer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("manufacturer name is required")
	}
	if strings.TrimSpace(creatorID) == "" {
		return nil, fmt.Errorf("creator id is required")
	}

	now := timeNow()
	manufacturer := domain.Manufacturer{
		ID:        uuid.NewString(),
		Name:      name,
		Country:   strings.TrimSpace(input.Country),
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.manufacturers.Create(ctx, manufacturer); err != nil {
		return nil, fmt.Errorf("create manufacturer: %w", err)
	}
	return &manufacturer, nil
}

// GetManufacturer retrieves a manufacturer by id.
func (s *ManufacturerService) GetManufacturer(ctx context.Context, id string) (*domain.Manufacturer, error) {
	manufacturer, err := s.manufacturers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get manufacturer: %w", err)
	}
	return manufacturer, nil
}

// ListManufacturers returns every manufacturer record.
func (s *ManufacturerService) ListManufacturers(ctx context.Context) ([]domain.Manufacturer, error) {
	manufacturers, err := s.manufacturers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	return manufacturers, nil
}

// UpdateManufacturer modifies an existing manufacturer record.
func (s *ManufacturerService) UpdateManufacturer(ctx context.Context, input UpdateManufacturerInput) (*domain.Manufacturer, error) {
	manufacturer, err := s.manufacturers.GetByID(ctx, input.ID)
	if err != nil {
		return nil, fmt.Errorf("get manufacturer: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("manufacturer name must not be empty")
		}
		manufacturer.Name = name
	}
	if input.Country != nil {
		manufacturer.Country = strings.TrimSpace(*input.Country)
	}
	manufacturer.UpdatedAt = timeNow()

	if err := s.manufacturers.Update(ctx, *manufacturer); err != nil {
		return nil, fmt.Errorf("update manufacturer: %w", err)
	}
	return manufacturer, nil
}

// DeleteManufacturer removes a manufacturer record.
func (s *ManufacturerService) DeleteManufacturer(ctx context.Context, id string) error {
	if err := s.manufacturers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete manufacturer: %w", err)
	}
	return nil
}

// OwnerLookup adapts the repository's creator resolution to the ownership
// resolver contract.
func (s *ManufacturerService) OwnerLookup() OwnerLookup {
	return func(ctx context.Context, resourceID string) (string, error) {
		return s.manufacturers.OwnerID(ctx, resourceID)
	}
}
