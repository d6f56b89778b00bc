package domain

import "github.com/google/uuid"

// Role is what an actor may do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Customer returns a non-admin actor.
func Customer(id uuid.UUID) Actor { return Actor{ID: id, Role: RoleCustomer} }

// Admin returns an admin actor.
func Admin(id uuid.UUID) Actor { return Actor{ID: id, Role: RoleAdmin} }

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// RequireAdmin returns ErrForbidden for non-admins.
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
