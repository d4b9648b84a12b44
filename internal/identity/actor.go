// Package identity carries the authenticated caller through request context.
package identity

import "context"

// Role is the caller's role as asserted by the auth token.
type Role string

const (
	RoleClient        Role = "client"
	RoleBarber        Role = "barber"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether the role is one the platform recognizes.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleBarber, RoleManager, RoleAdministrator:
		return true
	}
	return false
}

// Elevated reports whether the role carries administrative privileges.
// Managers run the shop floor and administrators run the system; both may act
// on any appointment.
func (r Role) Elevated() bool {
	return r == RoleManager || r == RoleAdministrator
}

// Actor is the authenticated caller. BarberID is set only when the user has a
// barber profile.
type Actor struct {
	UserID   string
	BarberID string
	Role     Role
}

// IsBarber reports whether the actor has a barber profile.
func (a Actor) IsBarber() bool {
	return a.BarberID != ""
}

type ctxKey string

const actorKey ctxKey = "barberops.actor"

// WithActor stores the actor in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext extracts the actor if present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return Actor{}, false
	}
	actor, ok := val.(Actor)
	return actor, ok && actor.UserID != ""
}
