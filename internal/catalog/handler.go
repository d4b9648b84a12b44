package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/barberops/booking-platform/internal/identity"
	"github.com/barberops/booking-platform/pkg/logging"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListServices handles GET /services. Clients see the active menu; elevated
// roles may pass ?all=true to include deactivated services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if r.URL.Query().Get("all") == "true" {
		if actor, ok := identity.ActorFromContext(r.Context()); ok && actor.Role.Elevated() {
			activeOnly = false
		}
	}

	services, err := h.repo.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// CreateService handles POST /services (admin).
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	service, err := h.repo.CreateService(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("service created", "id", service.ID, "name", service.Name)
	writeJSON(w, http.StatusCreated, service)
}

// UpdateService handles PUT /services/{id} (admin). Setting active=false is
// the soft deactivation path; services are never deleted.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	service, err := h.repo.UpdateService(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// ListBarbers handles GET /barbers.
func (h *Handler) ListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.repo.ListBarbers(r.Context(), true)
	if err != nil {
		h.logger.Error("failed to list barbers", "error", err)
		http.Error(w, "failed to list barbers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, barbers)
}

// GetBarber handles GET /barbers/{id}.
func (h *Handler) GetBarber(w http.ResponseWriter, r *http.Request) {
	barber, err := h.repo.GetBarber(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, barber)
}

// CreateBarber handles POST /barbers (admin).
func (h *Handler) CreateBarber(w http.ResponseWriter, r *http.Request) {
	var req CreateBarberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	barber, err := h.repo.CreateBarber(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("barber created", "id", barber.ID, "user_id", barber.UserID)
	writeJSON(w, http.StatusCreated, barber)
}

// UpdateBarber handles PUT /barbers/{id} (admin).
func (h *Handler) UpdateBarber(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateBarberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	barber, err := h.repo.UpdateBarber(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, barber)
}

// UpdateMyAvailability handles PUT /barbers/my-availability. The calling actor
// must have a barber profile.
func (h *Handler) UpdateMyAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok || !actor.IsBarber() {
		http.Error(w, "caller is not a barber", http.StatusForbidden)
		return
	}

	var req struct {
		Availability string `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateAvailability(r.Context(), actor.BarberID, req.Availability); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("barber availability updated", "barber_id", actor.BarberID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "availability updated"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrBarberNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidService), errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrAlreadyBarber):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("catalog request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
