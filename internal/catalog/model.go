// Package catalog manages the read-mostly entities the scheduling engine
// consumes: the service menu and the barber roster. Both deactivate softly so
// historical appointments keep resolvable references.
package catalog

import "time"

// Service is one bookable offering on the menu.
type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Barber is a provider profile layered over a user account. Availability is a
// free-form description shown to clients; the scheduling engine does not
// interpret it.
type Barber struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Specialty       string    `json:"specialty"`
	YearsExperience int       `json:"years_experience"`
	Rating          float64   `json:"rating"`
	Manager         bool      `json:"is_manager"`
	Availability    string    `json:"availability"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// User is a minimal account view used to resolve names, roles, and
// notification recipients. Account management itself lives elsewhere.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// CreateServiceRequest is the payload for adding a service to the menu.
type CreateServiceRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"`
}

// Validate checks the catalog invariants: positive duration, non-negative price.
func (r *CreateServiceRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidService
	}
	if r.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if r.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// UpdateServiceRequest carries optional field updates; nil means unchanged.
type UpdateServiceRequest struct {
	Name            *string `json:"name,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	PriceCents      *int64  `json:"price_cents,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

// CreateBarberRequest promotes an existing user to a barber profile.
type CreateBarberRequest struct {
	UserID          string `json:"user_id"`
	Specialty       string `json:"specialty"`
	YearsExperience int    `json:"years_experience"`
	Manager         bool   `json:"is_manager"`
}

// UpdateBarberRequest carries optional field updates; nil means unchanged.
type UpdateBarberRequest struct {
	Specialty       *string `json:"specialty,omitempty"`
	YearsExperience *int    `json:"years_experience,omitempty"`
	Manager         *bool   `json:"is_manager,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}
