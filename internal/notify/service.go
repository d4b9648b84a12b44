package notify

import (
	"context"
	"fmt"

	"time"

	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/pkg/logging"
)

// BookingDetails carries the resolved names and contact info for a booking
// notification. StartsAt is a UTC instant; the service renders it in
// shop-local time.
type BookingDetails struct {
	AppointmentID   string
	StartsAt        time.Time
	DurationMinutes int
	PriceCents      int64
	ClientName      string
	ClientEmail     string
	BarberName      string
	ServiceName     string
	ShopName        string
}

// Service sends booking lifecycle emails to clients. Failures are reported to
// the caller, which is expected to log and continue; a notification must never
// fail the operation that triggered it.
type Service struct {
	email  EmailSender
	conv   civiltime.Converter
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, conv civiltime.Converter, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		conv:   conv,
		logger: logger,
	}
}

// AppointmentBooked sends a confirmation email for a freshly booked appointment.
func (s *Service) AppointmentBooked(ctx context.Context, d BookingDetails) error {
	if s.email == nil || d.ClientEmail == "" {
		s.logger.Debug("notify: no email sender or recipient, skipping booking confirmation")
		return nil
	}

	local := s.conv.ToCivil(d.StartsAt)
	when := local.Format("Monday, January 2 at 3:04 PM")
	price := fmt.Sprintf("$%.2f", float64(d.PriceCents)/100)
	shop := d.ShopName
	if shop == "" {
		shop = "BarberOps"
	}

	subject := fmt.Sprintf("Appointment confirmed - %s", when)
	body := fmt.Sprintf(`Hi %s,

Your appointment is confirmed!

Service: %s
Barber: %s
When: %s
Duration: %d minutes
Price: %s

See you there.

— %s`, d.ClientName, d.ServiceName, d.BarberName, when, d.DurationMinutes, price, shop)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">Appointment Confirmed</h2>
<p>Hi <strong>%s</strong>, your appointment is booked.</p>
<table style="border-collapse: collapse; margin: 20px 0;">
  %s%s%s%s%s
</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">— %s</p>
</div>`,
		d.ClientName,
		detailRow("Service", d.ServiceName),
		detailRow("Barber", d.BarberName),
		detailRow("When", when),
		detailRow("Duration", fmt.Sprintf("%d minutes", d.DurationMinutes)),
		detailRow("Price", price),
		shop)

	msg := EmailMessage{
		To:            d.ClientEmail,
		ToName:        d.ClientName,
		Subject:       subject,
		Body:          body,
		HTML:          html,
		AppointmentID: d.AppointmentID,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	s.logger.Info("notify: booking confirmation sent", "to", d.ClientEmail, "appointment_id", d.AppointmentID)
	return nil
}

// AppointmentCancelled sends a cancellation notice for an appointment.
func (s *Service) AppointmentCancelled(ctx context.Context, d BookingDetails) error {
	if s.email == nil || d.ClientEmail == "" {
		s.logger.Debug("notify: no email sender or recipient, skipping cancellation notice")
		return nil
	}

	local := s.conv.ToCivil(d.StartsAt)
	when := local.Format("Monday, January 2 at 3:04 PM")
	shop := d.ShopName
	if shop == "" {
		shop = "BarberOps"
	}

	subject := fmt.Sprintf("Appointment cancelled - %s", when)
	body := fmt.Sprintf(`Hi %s,

Your appointment has been cancelled.

Service: %s
Barber: %s
Was scheduled for: %s

You can book a new time slot whenever you like.

— %s`, d.ClientName, d.ServiceName, d.BarberName, when, shop)

	msg := EmailMessage{
		To:            d.ClientEmail,
		ToName:        d.ClientName,
		Subject:       subject,
		Body:          body,
		AppointmentID: d.AppointmentID,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: cancellation notice: %w", err)
	}
	s.logger.Info("notify: cancellation notice sent", "to", d.ClientEmail, "appointment_id", d.AppointmentID)
	return nil
}

func detailRow(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, value)
}
