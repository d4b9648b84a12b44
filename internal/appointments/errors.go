package appointments

import "errors"

var (
	// ErrNotFound is returned when the appointment, barber or service the
	// request references is absent or inactive.
	ErrNotFound = errors.New("appointment not found")

	// ErrConflict is returned when the requested interval overlaps an existing
	// non-cancelled booking for the same barber.
	ErrConflict = errors.New("time slot is not available")

	// ErrForbidden is returned when the actor may not act on the appointment.
	ErrForbidden = errors.New("not allowed to modify this appointment")

	// ErrInvalidStatus is returned when the requested status is not one of the
	// four recognized values.
	ErrInvalidStatus = errors.New("invalid appointment status")
)
