// Package router wires the HTTP surface: public catalog browsing and slot
// queries, authenticated booking routes, and the admin group.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/barberops/booking-platform/internal/appointments"
	"github.com/barberops/booking-platform/internal/catalog"
	"github.com/barberops/booking-platform/internal/dashboard"
	httpmiddleware "github.com/barberops/booking-platform/internal/http/middleware"
	"github.com/barberops/booking-platform/internal/identity"
	"github.com/barberops/booking-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	CatalogHandler      *catalog.Handler
	AppointmentsHandler *appointments.Handler
	StatsHandler        *dashboard.StatsHandler
	MetricsHandler      http.Handler
	AuthJWTSecret       string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.Logger))
	}

	// Public endpoints: health, metrics, and read-only browsing. Slot grids
	// are public so clients can see availability before signing in.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/services", cfg.CatalogHandler.ListServices)
		public.Get("/barbers", cfg.CatalogHandler.ListBarbers)
		public.Get("/barbers/{id}", cfg.CatalogHandler.GetBarber)
		public.Get("/barbers/{id}/slots", cfg.AppointmentsHandler.ListSlots)
	})

	// Authenticated endpoints.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Auth(cfg.AuthJWTSecret))

		authed.Post("/appointments", cfg.AppointmentsHandler.Book)
		authed.Get("/appointments/my", cfg.AppointmentsHandler.ListMine)
		authed.Get("/appointments/barber", cfg.AppointmentsHandler.BarberAgenda)
		authed.Get("/appointments/{id}", cfg.AppointmentsHandler.Get)
		authed.Put("/appointments/{id}/status", cfg.AppointmentsHandler.UpdateStatus)
		authed.Delete("/appointments/{id}", cfg.AppointmentsHandler.Cancel)

		authed.Put("/barbers/my-availability", cfg.CatalogHandler.UpdateMyAvailability)

		if cfg.StatsHandler != nil {
			authed.Get("/dashboard/stats", cfg.StatsHandler.GetStats)
		}

		// Management routes: catalog edits, roster edits, the full calendar.
		authed.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireRole(identity.RoleManager, identity.RoleAdministrator))

			admin.Get("/appointments", cfg.AppointmentsHandler.ListAll)
			admin.Post("/services", cfg.CatalogHandler.CreateService)
			admin.Put("/services/{id}", cfg.CatalogHandler.UpdateService)
			admin.Post("/barbers", cfg.CatalogHandler.CreateBarber)
			admin.Put("/barbers/{id}", cfg.CatalogHandler.UpdateBarber)
		})
	})

	return r
}
