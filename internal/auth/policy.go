package auth

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotAuthorized          = errors.New("not authorized to access this data")
)

// Policy is one row of the endpoint authorization table.
type Policy struct {
	Name string
	// Roles admitted to the endpoint. Empty admits any authenticated caller.
	Roles []Role
	// OwnerOverride may act on data owned by another subject.
	OwnerOverride Role
}

// EndpointClass groups endpoints sharing an authorization rule.
type EndpointClass string

const (
	ClassSelfLookup EndpointClass = "self-lookup"
	ClassManager    EndpointClass = "manager"
	ClassCompany    EndpointClass = "company"
	ClassUser       EndpointClass = "user"
)

// Policies is the authorization table. Company and user endpoints are
// scoped to claims.Subject by the handlers, so their owner rule holds by
// construction.
var Policies = map[EndpointClass]Policy{
	ClassSelfLookup: {Name: "self-or-manager", OwnerOverride: RoleManager},
	ClassManager:    {Name: "manager", Roles: []Role{RoleManager}},
	ClassCompany:    {Name: "company", Roles: []Role{RoleCompany}},
	ClassUser:       {Name: "user", Roles: []Role{RoleUser}},
}

// Admit checks authentication and role membership.
func (p Policy) Admit(claims *Claims) error {
	if claims == nil {
		return ErrAuthenticationRequired
	}
	if len(p.Roles) > 0 && !slices.Contains(p.Roles, claims.Role) {
		return ErrNotAuthorized
	}
	return nil
}

// AuthorizeOwner checks Admit and then requires the caller to be owner
// unless the caller holds OwnerOverride.
func (p Policy) AuthorizeOwner(claims *Claims, owner uuid.UUID) error {
	if err := p.Admit(claims); err != nil {
		return err
	}
	if claims.Subject == owner {
		return nil
	}
	if p.OwnerOverride != "" && claims.Role == p.OwnerOverride {
		return nil
	}
	return ErrNotAuthorized
}
