// Package security provides authorization and access control.
package security

import (
	"context"
	"fmt"

	"vibooks/internal/core/apperror"
	appctx "vibooks/internal/core/context"
)

// Permission defines available permissions in the system.
type Permission string

const (
	PermissionRead Permission = "read"

	// Period lock control. Locking and unlocking are deliberately distinct
	// privilege tiers: a preparer may lock a period but only a supervising
	// role may reopen it.
	PermissionLockPeriod   Permission = "lock_period"
	PermissionUnlockPeriod Permission = "unlock_period"
	PermissionClosePeriod  Permission = "close_period"

	PermissionAdmin Permission = "admin"
)

// Role defines a set of permissions.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleChiefAccountant Role = "chief_accountant"
	RoleAccountant      Role = "accountant"
	RoleViewer          Role = "viewer"
)

// rolePermissions maps each role onto what it may do.
// Separation of duties: RoleAccountant can lock but never unlock.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:           {PermissionRead, PermissionLockPeriod, PermissionUnlockPeriod, PermissionClosePeriod, PermissionAdmin},
	RoleChiefAccountant: {PermissionRead, PermissionLockPeriod, PermissionUnlockPeriod, PermissionClosePeriod},
	RoleAccountant:      {PermissionRead, PermissionLockPeriod},
	RoleViewer:          {PermissionRead},
}

// AccessScope defines the authority of the current request actor.
type AccessScope struct {
	// UserID is the authenticated user
	UserID string

	// Name is a display name for audit records
	Name string

	// Roles granted to the user
	Roles []Role

	// IsAdmin bypasses role checks
	IsAdmin bool
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	roles := make([]Role, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, Role(r))
	}

	return &AccessScope{
		UserID:  user.UserID,
		Name:    user.Name,
		Roles:   roles,
		IsAdmin: user.IsAdmin,
	}
}

// HasPermission checks if the actor holds a permission through any role.
func (s *AccessScope) HasPermission(perm Permission) bool {
	if s.IsAdmin {
		return true
	}
	for _, role := range s.Roles {
		for _, p := range rolePermissions[role] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// RequirePermission returns error if permission is missing.
func (s *AccessScope) RequirePermission(perm Permission) error {
	if !s.HasPermission(perm) {
		return apperror.NewForbidden(
			fmt.Sprintf("permission %s required", perm),
		).WithDetail("permission", perm)
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context, deriving one from the
// authenticated user when none was set explicitly.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
