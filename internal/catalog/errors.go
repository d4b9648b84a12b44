package catalog

import "errors"

var (
	// ErrServiceNotFound is returned when the referenced service is absent or inactive.
	ErrServiceNotFound = errors.New("service not found")

	// ErrBarberNotFound is returned when the referenced barber is absent or inactive.
	ErrBarberNotFound = errors.New("barber not found")

	// ErrInvalidService is returned when a service payload has no name.
	ErrInvalidService = errors.New("service name is required")

	// ErrInvalidDuration is returned when a service duration is not positive.
	ErrInvalidDuration = errors.New("service duration must be positive")

	// ErrInvalidPrice is returned when a service price is negative.
	ErrInvalidPrice = errors.New("service price must not be negative")

	// ErrAlreadyBarber is returned when the user already has a barber profile.
	ErrAlreadyBarber = errors.New("user already has a barber profile")

	// ErrUserNotFound is returned when the referenced user account is absent.
	ErrUserNotFound = errors.New("user not found")
)
