package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yakubikk/railway-registry/internal/core/domain"
)

type policyKey struct {
	resource domain.ResourceType
	action   domain.Action
}

// PolicyRegistry is the static (resource type, action) → allowed-roles
// table. It is populated once at process start and read-only afterwards, so
// lookups need no locking. Every enforcement point consults this single
// table; there is deliberately no second copy anywhere.
type PolicyRegistry struct {
	entries map[policyKey][]domain.Role
}

// NewPolicyRegistry creates an empty registry.
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{entries: make(map[policyKey][]domain.Role)}
}

// Register records the allowed role set for a (resource, action) pair.
// Startup-time configuration only; later calls for the same pair replace the
// earlier entry.
func (r *PolicyRegistry) Register(resource domain.ResourceType, action domain.Action, roles ...domain.Role) *PolicyRegistry {
	copied := make([]domain.Role, len(roles))
	copy(copied, roles)
	r.entries[policyKey{resource: resource, action: action}] = copied
	return r
}

// RolesAllowed returns the role set for the pair and whether an entry
// exists. Absence is a configuration error surfaced by Validate, not a
// runtime deny.
func (r *PolicyRegistry) RolesAllowed(resource domain.ResourceType, action domain.Action) ([]domain.Role, bool) {
	roles, ok := r.entries[policyKey{resource: resource, action: action}]
	if !ok {
		return nil, false
	}
	copied := make([]domain.Role, len(roles))
	copy(copied, roles)
	return copied, true
}

// Validate fails fast when any pair the engine will be asked about has no
// entry. Called once at startup with the full set of consulted pairs.
func (r *PolicyRegistry) Validate(required map[domain.ResourceType][]domain.Action) error {
	missing := make([]string, 0)
	for resource, actions := range required {
		for _, action := range actions {
			if _, ok := r.entries[policyKey{resource: resource, action: action}]; !ok {
				missing = append(missing, fmt.Sprintf("%s/%s", resource, action))
			}
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("policy registry missing entries: %s", strings.Join(missing, ", "))
	}
	return nil
}
