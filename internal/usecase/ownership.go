package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/yakubikk/railway-registry/internal/core/domain"
)

// ErrOwnershipUnsupported marks resource types with no ownership concept,
// such as static reference data. The decision engine treats it as
// "ownership not applicable", distinct from a missing record.
var ErrOwnershipUnsupported = errors.New("ownership: not applicable for resource type")

// OwnerLookup resolves the owner of a resource instance. Implementations
// delegate to the external data store and return repository.ErrNotFound when
// the record does not exist. Results are not cached here; caching, if any,
// is the store's responsibility.
type OwnerLookup func(ctx context.Context, resourceID string) (string, error)

// OwnershipResolver dispatches per-resource-type owner lookups. Lookups are
// registered at startup and read-only afterwards.
type OwnershipResolver struct {
	lookups map[domain.ResourceType]OwnerLookup
}

// NewOwnershipResolver creates an empty resolver.
func NewOwnershipResolver() *OwnershipResolver {
	return &OwnershipResolver{lookups: make(map[domain.ResourceType]OwnerLookup)}
}

// RegisterOwnerLookup wires an owner lookup for a resource type.
func (r *OwnershipResolver) RegisterOwnerLookup(resource domain.ResourceType, lookup OwnerLookup) *OwnershipResolver {
	if lookup != nil {
		r.lookups[resource] = lookup
	}
	return r
}

// Supports reports whether the resource type has an ownership concept.
func (r *OwnershipResolver) Supports(resource domain.ResourceType) bool {
	_, ok := r.lookups[resource]
	return ok
}

// OwnerOf resolves the owner id of a resource instance. Returns
// ErrOwnershipUnsupported for types without a registered lookup,
// repository.ErrNotFound when the record is missing, or a wrapped store
// error. The lookup honors the caller's context so a slow store cannot
// stall the request pipeline.
func (r *OwnershipResolver) OwnerOf(ctx context.Context, resource domain.ResourceType, resourceID string) (string, error) {
	lookup, ok := r.lookups[resource]
	if !ok {
		return "", ErrOwnershipUnsupported
	}

	ownerID, err := lookup(ctx, resourceID)
	if err != nil {
		return "", fmt.Errorf("owner lookup for %s: %w", resource, err)
	}
	return ownerID, nil
}
