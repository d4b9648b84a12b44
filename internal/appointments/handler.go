package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/internal/identity"
	"github.com/barberops/booking-platform/pkg/logging"
)

// Handler exposes the booking flow over HTTP.
type Handler struct {
	svc    *Service
	clock  civiltime.Converter
	logger *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(svc *Service, clock civiltime.Converter, logger *logging.Logger) *Handler {
	if svc == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, clock: clock, logger: logger}
}

// ListSlots handles GET /barbers/{id}/slots?service_id=...&date=YYYY-MM-DD.
// The date is a shop-local calendar day; it defaults to today.
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	barberID := chi.URLParam(r, "id")
	serviceID := r.URL.Query().Get("service_id")
	if serviceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}

	day := h.clock.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	slots, err := h.svc.ListSlots(r.Context(), barberID, serviceID, day)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  civiltime.StartOfDay(day).Format("2006-01-02"),
		"slots": slots,
	})
}

// Book handles POST /appointments. starts_at is either an RFC 3339 timestamp,
// normalized to the instant it names, or an offset-less timestamp read as shop
// wall-clock time.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		BarberID  string `json:"barber_id"`
		ServiceID string `json:"service_id"`
		StartsAt  string `json:"starts_at"`
		Notes     string `json:"notes"`
		ClientID  string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.BarberID == "" || body.ServiceID == "" || body.StartsAt == "" {
		http.Error(w, "barber_id, service_id and starts_at are required", http.StatusBadRequest)
		return
	}
	startsAt, err := h.parseStartsAt(body.StartsAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Book(r.Context(), actor, BookRequest{
		BarberID:  body.BarberID,
		ServiceID: body.ServiceID,
		StartsAt:  startsAt,
		Notes:     body.Notes,
		ClientID:  body.ClientID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	appt, err := h.svc.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListMine handles GET /appointments/my: the caller's own history, newest first.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	appts, err := h.svc.ListMine(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// BarberAgenda handles GET /appointments/barber. Barbers get their own agenda;
// elevated roles may pass ?barber_id= to inspect any agenda. Optional from/to
// are shop-local dates.
func (h *Handler) BarberAgenda(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	barberID := r.URL.Query().Get("barber_id")
	if barberID == "" {
		barberID = actor.BarberID
	}
	if barberID == "" {
		http.Error(w, "caller has no barber profile", http.StatusForbidden)
		return
	}

	start, end, err := h.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appts, err := h.svc.ListForBarber(r.Context(), actor, barberID, start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// ListAll handles GET /appointments (admin). Optional from/to are shop-local
// dates.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	start, end, err := h.parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appts, err := h.svc.ListAll(r.Context(), actor, start, end)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// UpdateStatus handles PUT /appointments/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Transition(r.Context(), actor, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles DELETE /appointments/{id}. The row is kept; only the status
// changes.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	appt, err := h.svc.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// parseStartsAt reads a booking start. An offset-carrying RFC 3339 value is
// taken as the instant it names; a bare timestamp is shop wall-clock time.
func (h *Handler) parseStartsAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return h.clock.ToUniversal(t), nil
	}
	return time.Time{}, errors.New("starts_at must be RFC 3339 or shop-local YYYY-MM-DDTHH:MM:SS")
}

// parseRange reads optional from/to query params as shop-local dates and
// returns the covering UTC bounds. Both or neither must be present.
func (h *Handler) parseRange(r *http.Request) (*time.Time, *time.Time, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, nil, errors.New("from and to must be provided together")
	}

	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return nil, nil, errors.New("from must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return nil, nil, errors.New("to must be YYYY-MM-DD")
	}

	start, _ := h.clock.DayBoundsUTC(from)
	_, end := h.clock.DayBoundsUTC(to)
	return &start, &end, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("appointments request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
