// Package appointments owns the booking flow and the appointment lifecycle:
// conflict-checked creation, status transitions with their authorization
// rules, and the queries the dashboard and calendars read from.
package appointments

import (
	"time"

	"github.com/barberops/booking-platform/internal/identity"
)

// Status is an appointment's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the four recognized values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked visit. StartsAt is a UTC instant; wall-clock
// rendering happens at the edges. DurationMinutes and PriceCents are snapshots
// of the service taken at booking time, so later menu edits do not rewrite
// history. Appointments are never deleted; cancellation is a status change.
type Appointment struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	BarberID        string     `json:"barber_id"`
	ServiceID       string     `json:"service_id"`
	StartsAt        time.Time  `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	PriceCents      int64      `json:"price_cents"`
	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       string     `json:"created_by"`
	ModifiedAt      *time.Time `json:"modified_at,omitempty"`
	ModifiedBy      *string    `json:"modified_by,omitempty"`
}

// EndsAt returns the exclusive end of the occupied interval.
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// CanTransition reports whether the actor may change this appointment's
// status: the owning client, the assigned barber, or an elevated role.
func (a *Appointment) CanTransition(actor identity.Actor) bool {
	if actor.UserID == a.ClientID {
		return true
	}
	if actor.IsBarber() && actor.BarberID == a.BarberID {
		return true
	}
	return actor.Role.Elevated()
}
