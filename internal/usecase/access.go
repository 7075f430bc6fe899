package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yakubikk/railway-registry/internal/core/domain"
	"github.com/yakubikk/railway-registry/internal/repository"
)

// AccessService is the single decision engine behind every enforcement
// point. Apart from the one ownership lookup it is a pure function of its
// inputs: identical immutable inputs yield identical decisions, and it is
// safe for concurrent use.
type AccessService struct {
	policy    *PolicyRegistry
	ownership *OwnershipResolver
	logger    *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(policy *PolicyRegistry, ownership *OwnershipResolver, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		policy:    policy,
		ownership: ownership,
		logger:    logger,
	}
}

// Authorize decides whether the principal may perform the action on the
// resource. Ownership, when applicable, overrides the role check entirely;
// otherwise any single role match against the policy table grants access.
// An empty resourceID skips the ownership check (create and list calls).
func (s *AccessService) Authorize(ctx context.Context, principal domain.Principal, resource domain.ResourceType, action domain.Action, resourceID string) domain.Decision {
	decision := domain.Decision{
		Resource:         resource,
		Action:           action,
		PrincipalRoles:   principal.Roles,
		OwnershipApplies: s.ownership.Supports(resource),
	}

	if !principal.IsAuthenticated() {
		decision.Code = domain.DenyNotAuthenticated
		return decision
	}

	if resourceID != "" && decision.OwnershipApplies {
		ownerID, err := s.ownership.OwnerOf(ctx, resource, resourceID)
		switch {
		case err == nil:
			if ownerID == principal.ID {
				decision.Allowed = true
				decision.Code = domain.DecisionOwner
				return decision
			}
		case errors.Is(err, repository.ErrNotFound):
			// Existence is deliberately hidden: a missing record denies
			// exactly like a role mismatch. Callers needing a true 404
			// check existence before authorizing.
			decision.Code = domain.DenyResourceNotFound
			return decision
		default:
			// Store failure or cancellation: fail closed as a server
			// error so audit logs never record it as a plain deny.
			s.logger.Error("ownership lookup failed",
				zap.String("resource", string(resource)),
				zap.String("resource_id", resourceID),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			decision.Code = domain.DenyLookupFailed
			return decision
		}
	}

	allowed, registered := s.policy.RolesAllowed(resource, action)
	if !registered {
		s.logger.Error("policy entry missing",
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
		)
		decision.Code = domain.DenyPolicyMissing
		return decision
	}
	decision.RequiredRoles = allowed

	if principal.HasAnyRole(allowed) {
		decision.Allowed = true
		decision.Code = domain.DecisionRole
		return decision
	}

	decision.Code = domain.DenyInsufficientRole
	return decision
}
