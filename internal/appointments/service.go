package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/barberops/booking-platform/internal/booklock"
	"github.com/barberops/booking-platform/internal/catalog"
	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/internal/identity"
	"github.com/barberops/booking-platform/internal/notify"
	"github.com/barberops/booking-platform/internal/observability/metrics"
	"github.com/barberops/booking-platform/internal/schedule"
	"github.com/barberops/booking-platform/pkg/logging"
)

var apptTracer = otel.Tracer("barberops.internal.appointments")

// CatalogStore resolves the menu and roster entities a booking references.
type CatalogStore interface {
	GetService(ctx context.Context, id string) (*catalog.Service, error)
	GetBarber(ctx context.Context, id string) (*catalog.Barber, error)
	GetUser(ctx context.Context, id string) (*catalog.User, error)
}

// Notifier sends booking lifecycle emails. Implementations must be safe to
// call with partial details; failures are logged and swallowed here.
type Notifier interface {
	AppointmentBooked(ctx context.Context, d notify.BookingDetails) error
	AppointmentCancelled(ctx context.Context, d notify.BookingDetails) error
}

// BookRequest is the payload for creating an appointment. StartsAt is a UTC
// instant; handlers convert from wall-clock input. ClientID is honored only
// for elevated actors booking on a client's behalf.
type BookRequest struct {
	BarberID  string
	ServiceID string
	StartsAt  time.Time
	Notes     string
	ClientID  string
}

// ServiceDeps bundles the collaborators the booking service needs. Repo and
// Catalog are required; the rest degrade gracefully when absent.
type ServiceDeps struct {
	Repo     *Repository
	Catalog  CatalogStore
	Notifier Notifier
	Locker   *booklock.Locker
	Clock    civiltime.Converter
	Window   schedule.Window
	Metrics  *metrics.BookingMetrics
	ShopName string
	Logger   *logging.Logger
}

// Service owns the booking flow: slot queries, conflict-checked creation, and
// lifecycle transitions with their authorization rules.
type Service struct {
	repo     *Repository
	catalog  CatalogStore
	notifier Notifier
	locker   *booklock.Locker
	clock    civiltime.Converter
	window   schedule.Window
	metrics  *metrics.BookingMetrics
	shopName string
	logger   *logging.Logger
}

// NewService constructs the booking service.
func NewService(d ServiceDeps) *Service {
	if d.Repo == nil {
		panic("appointments: repository required")
	}
	if d.Catalog == nil {
		panic("appointments: catalog store required")
	}
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	return &Service{
		repo:     d.Repo,
		catalog:  d.Catalog,
		notifier: d.Notifier,
		locker:   d.Locker,
		clock:    d.Clock,
		window:   d.Window,
		metrics:  d.Metrics,
		shopName: d.ShopName,
		logger:   d.Logger,
	}
}

// ListSlots returns every candidate slot for one barber, service, and civil
// day, each marked available or not. Unknown slots are never filtered out, so
// clients can render the full grid.
func (s *Service) ListSlots(ctx context.Context, barberID, serviceID string, civilDay time.Time) ([]schedule.TimeSlot, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.list_slots")
	defer span.End()
	span.SetAttributes(attribute.String("barberops.barber_id", barberID))

	started := time.Now()

	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, mapCatalogErr(err, "list slots: service")
	}
	barber, err := s.catalog.GetBarber(ctx, barberID)
	if err != nil {
		return nil, mapCatalogErr(err, "list slots: barber")
	}
	if !svc.Active || !barber.Active {
		return nil, ErrNotFound
	}

	dayStart, dayEnd := s.clock.DayBoundsUTC(civilDay)
	existing, err := s.repo.ListActiveForBarber(ctx, barberID, dayStart, dayEnd)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	booked := make([]schedule.BookedInterval, 0, len(existing))
	for i := range existing {
		booked = append(booked, schedule.BookedInterval{
			Start: existing[i].StartsAt,
			End:   existing[i].EndsAt(),
		})
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	slots := schedule.DaySlots(s.clock, civilDay, duration, s.window, booked)

	s.metrics.ObserveSlotQuery(time.Since(started).Seconds())
	return slots, nil
}

// Book creates a confirmed appointment after checking for overlaps under the
// per-barber lock. The slot grid is advisory: any start is accepted as long as
// it does not overlap an existing booking, so off-grid starts such as the one
// right after a 45-minute service remain bookable. Duration and price are
// snapshotted from the service so later menu edits do not rewrite history.
func (s *Service) Book(ctx context.Context, actor identity.Actor, req BookRequest) (*Appointment, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("barberops.barber_id", req.BarberID),
		attribute.String("barberops.service_id", req.ServiceID),
	)

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, mapCatalogErr(err, "book: service")
	}
	barber, err := s.catalog.GetBarber(ctx, req.BarberID)
	if err != nil {
		return nil, mapCatalogErr(err, "book: barber")
	}
	if !svc.Active || !barber.Active {
		return nil, ErrNotFound
	}

	clientID := actor.UserID
	if req.ClientID != "" && req.ClientID != actor.UserID {
		if !actor.Role.Elevated() {
			return nil, ErrForbidden
		}
		clientID = req.ClientID
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		BarberID:        req.BarberID,
		ServiceID:       req.ServiceID,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: svc.DurationMinutes,
		PriceCents:      svc.PriceCents,
		Status:          StatusConfirmed,
		Notes:           req.Notes,
		CreatedAt:       now,
		CreatedBy:       actor.UserID,
	}

	err = s.locker.WithLock(ctx, req.BarberID, func(ctx context.Context) error {
		dayStart, dayEnd := s.clock.DayBoundsUTC(s.clock.ToCivil(appt.StartsAt))
		existing, err := s.repo.ListActiveForBarber(ctx, req.BarberID, dayStart, dayEnd)
		if err != nil {
			return err
		}
		booked := make([]schedule.BookedInterval, 0, len(existing))
		for i := range existing {
			booked = append(booked, schedule.BookedInterval{
				Start: existing[i].StartsAt,
				End:   existing[i].EndsAt(),
			})
		}
		if schedule.HasConflict(booked, appt.StartsAt, appt.EndsAt()) {
			return ErrConflict
		}
		return s.repo.Insert(ctx, appt)
	})
	if errors.Is(err, booklock.ErrLocked) {
		err = ErrConflict
	}
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrConflict) {
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "barber_id", appt.BarberID,
		"client_id", appt.ClientID, "starts_at", appt.StartsAt)

	s.sendNotice(ctx, appt, svc.Name, barber.FullName, false)
	return appt, nil
}

// Transition moves an appointment to a new lifecycle status. Any status may
// move to any other; authorization is the owning client, the assigned barber,
// or an elevated role.
func (s *Service) Transition(ctx context.Context, actor identity.Actor, id string, newStatus Status) (*Appointment, error) {
	ctx, span := apptTracer.Start(ctx, "appointments.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("barberops.appointment_id", id),
		attribute.String("barberops.status", string(newStatus)),
	)

	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !appt.CanTransition(actor) {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	userID := actor.UserID
	appt.Status = newStatus
	appt.ModifiedAt = &now
	appt.ModifiedBy = &userID

	if err := s.repo.UpdateStatus(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveTransition(string(newStatus))
	s.logger.Info("appointment status changed",
		"appointment_id", appt.ID, "status", newStatus, "by", actor.UserID)

	if newStatus == StatusCancelled {
		s.sendCancelNotice(ctx, appt)
	}
	return appt, nil
}

// Cancel is a convenience wrapper for the cancelled transition; appointments
// are never deleted.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id string) (*Appointment, error) {
	return s.Transition(ctx, actor, id, StatusCancelled)
}

// Get returns one appointment, visible to its participants and elevated roles.
func (s *Service) Get(ctx context.Context, actor identity.Actor, id string) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.CanTransition(actor) {
		return nil, ErrForbidden
	}
	return appt, nil
}

// ListMine returns the acting client's appointment history, newest first.
func (s *Service) ListMine(ctx context.Context, actor identity.Actor) ([]Appointment, error) {
	return s.repo.ListForClient(ctx, actor.UserID)
}

// ListForBarber returns a barber's agenda, optionally bounded in time.
// Barbers see only their own; elevated roles may query any barber.
func (s *Service) ListForBarber(ctx context.Context, actor identity.Actor, barberID string, start, end *time.Time) ([]Appointment, error) {
	if !actor.Role.Elevated() {
		if !actor.IsBarber() || actor.BarberID != barberID {
			return nil, ErrForbidden
		}
	}
	return s.repo.ListForBarber(ctx, barberID, start, end)
}

// ListAll returns every appointment, optionally bounded in time. Elevated
// roles only.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor, start, end *time.Time) ([]Appointment, error) {
	if !actor.Role.Elevated() {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx, start, end)
}

func (s *Service) sendNotice(ctx context.Context, appt *Appointment, serviceName, barberName string, cancelled bool) {
	if s.notifier == nil {
		return
	}

	d := notify.BookingDetails{
		AppointmentID:   appt.ID,
		StartsAt:        appt.StartsAt,
		DurationMinutes: appt.DurationMinutes,
		PriceCents:      appt.PriceCents,
		BarberName:      barberName,
		ServiceName:     serviceName,
		ShopName:        s.shopName,
	}
	if client, err := s.catalog.GetUser(ctx, appt.ClientID); err == nil {
		d.ClientName = client.FullName
		d.ClientEmail = client.Email
	} else {
		s.logger.Warn("notify: could not resolve client", "error", err, "client_id", appt.ClientID)
	}

	send := s.notifier.AppointmentBooked
	if cancelled {
		send = s.notifier.AppointmentCancelled
	}
	if err := send(ctx, d); err != nil {
		s.metrics.ObserveNotifyFailure()
		s.logger.Error("notification failed", "error", err, "appointment_id", appt.ID)
	}
}

// sendCancelNotice resolves the display names the cancellation email needs.
// Lookups are best effort; a missing name never blocks the notice.
func (s *Service) sendCancelNotice(ctx context.Context, appt *Appointment) {
	if s.notifier == nil {
		return
	}
	var serviceName, barberName string
	if svc, err := s.catalog.GetService(ctx, appt.ServiceID); err == nil {
		serviceName = svc.Name
	}
	if barber, err := s.catalog.GetBarber(ctx, appt.BarberID); err == nil {
		barberName = barber.FullName
	}
	s.sendNotice(ctx, appt, serviceName, barberName, true)
}

func mapCatalogErr(err error, op string) error {
	if errors.Is(err, catalog.ErrServiceNotFound) || errors.Is(err, catalog.ErrBarberNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("appointments: %s: %w", op, err)
}
