package domain

import (
	"fmt"
	"strings"
)

// ResourceType identifies a protected registry or page. The set is closed at
// startup: every type the engine is asked about must be registered in the
// policy table.
type ResourceType string

const (
	ResourceWagon        ResourceType = "wagon"
	ResourceManufacturer ResourceType = "manufacturer"
	ResourceUser         ResourceType = "user"
)

// PageResource derives the resource type guarding a page path prefix. Pages
// share the policy table with the API registries so both enforcement points
// consult a single source of truth.
func PageResource(prefix string) ResourceType {
	return ResourceType("page:" + prefix)
}

// Action enumerates the verbs a policy decision is made about.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// DecisionCode classifies the outcome of an authorization check. Every
// denial is attributable to exactly one code.
type DecisionCode string

const (
	// DecisionOwner grants access because the principal created the resource.
	DecisionOwner DecisionCode = "granted_by_ownership"
	// DecisionRole grants access because the principal holds an allowed role.
	DecisionRole DecisionCode = "granted_by_role"
	// DenyNotAuthenticated rejects requests without a verified principal.
	DenyNotAuthenticated DecisionCode = "not_authenticated"
	// DenyResourceNotFound rejects requests whose ownership lookup missed.
	// Existence is deliberately hidden behind the same 403 as a role denial.
	DenyResourceNotFound DecisionCode = "resource_not_found"
	// DenyInsufficientRole rejects principals lacking both ownership and an
	// allowed role.
	DenyInsufficientRole DecisionCode = "insufficient_role"
	// DenyLookupFailed marks an ownership lookup that failed for reasons
	// other than a missing record. Enforcement surfaces it as a server
	// error, never as a plain denial.
	DenyLookupFailed DecisionCode = "lookup_failed"
	// DenyPolicyMissing marks a consultation for a pair absent from the
	// policy table. The engine fails closed; this indicates a wiring bug.
	DenyPolicyMissing DecisionCode = "policy_not_registered"
)

// Decision is the outcome of DecisionEngine.Authorize.
type Decision struct {
	Allowed        bool
	Code           DecisionCode
	Resource       ResourceType
	Action         Action
	PrincipalRoles []Role
	RequiredRoles  []Role
	// OwnershipApplies records whether an ownership override existed for
	// the resource type, so denial reasons can mention it.
	OwnershipApplies bool
}

// ServerError reports whether the decision reflects a dependency or
// configuration failure rather than a policy outcome.
func (d Decision) ServerError() bool {
	return d.Code == DenyLookupFailed || d.Code == DenyPolicyMissing
}

// Reason renders a machine-stable, human-readable explanation. Localization
// is the caller's concern.
func (d Decision) Reason() string {
	switch d.Code {
	case DecisionOwner:
		return fmt.Sprintf("access granted: owner of %s", d.Resource)
	case DecisionRole:
		return fmt.Sprintf("access granted: role permits %s on %s", d.Action, d.Resource)
	case DenyNotAuthenticated:
		return "access denied: not authenticated"
	case DenyResourceNotFound:
		return fmt.Sprintf("access denied: %s not found", d.Resource)
	case DenyLookupFailed:
		return fmt.Sprintf("access check failed for %s", d.Resource)
	case DenyPolicyMissing:
		return fmt.Sprintf("no policy registered for %s on %s", d.Action, d.Resource)
	}

	held := "none"
	if len(d.PrincipalRoles) > 0 {
		held = joinRoles(d.PrincipalRoles)
	}

	sufficient := make([]string, 0, 2)
	if d.OwnershipApplies {
		sufficient = append(sufficient, "ownership")
	}
	if len(d.RequiredRoles) > 0 {
		sufficient = append(sufficient, "role(s): "+joinRoles(d.RequiredRoles))
	}

	return fmt.Sprintf("access denied: role(s) %s cannot %s %s; requires %s",
		held, d.Action, d.Resource, strings.Join(sufficient, " or "))
}

func joinRoles(roles []Role) string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return strings.Join(names, ", ")
}
