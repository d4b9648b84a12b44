// Package dashboard aggregates the day's numbers for the home screen.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/internal/identity"
	"github.com/barberops/booking-platform/pkg/logging"
)

// Stats is the daily snapshot shown on the dashboard. Cancelled appointments
// still count toward the day's total; income sums the snapshotted price of
// completed visits only.
type Stats struct {
	Date                   string `json:"date"`
	TotalAppointmentsToday int64  `json:"total_appointments_today"`
	CompletedToday         int64  `json:"completed_today"`
	PendingToday           int64  `json:"pending_today"`
	IncomeTodayCents       int64  `json:"income_today_cents"`
	TotalClients           int64  `json:"total_clients"`
	TotalBarbers           int64  `json:"total_barbers"`
}

// statsDB defines the database interface needed by StatsRepository.
type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository queries dashboard metrics from the database.
type StatsRepository struct {
	db statsDB
}

// NewStatsRepository creates a stats repository backed by a pgx pool.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	if pool == nil {
		panic("dashboard: pgx pool required")
	}
	return &StatsRepository{db: pool}
}

// NewStatsRepositoryWithDB allows injecting a mock database for testing.
func NewStatsRepositoryWithDB(db statsDB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetDailyStats aggregates the day covered by [dayStart, dayEnd) in UTC.
// A non-empty barberID restricts the appointment figures to that barber;
// TotalClients and TotalBarbers stay shop-wide either way.
func (r *StatsRepository) GetDailyStats(ctx context.Context, barberID string, dayStart, dayEnd time.Time) (*Stats, error) {
	stats := &Stats{}

	filter := ` WHERE starts_at >= $1 AND starts_at < $2`
	args := []any{dayStart, dayEnd}
	if barberID != "" {
		filter += ` AND barber_id = $3`
		args = append(args, barberID)
	}

	totalQuery := `SELECT COUNT(*) FROM appointments` + filter
	if err := r.db.QueryRow(ctx, totalQuery, args...).Scan(&stats.TotalAppointmentsToday); err != nil {
		return nil, fmt.Errorf("dashboard: count appointments: %w", err)
	}

	completedQuery := `SELECT COUNT(*) FROM appointments` + filter + ` AND status = 'completed'`
	if err := r.db.QueryRow(ctx, completedQuery, args...).Scan(&stats.CompletedToday); err != nil {
		return nil, fmt.Errorf("dashboard: count completed: %w", err)
	}

	pendingQuery := `SELECT COUNT(*) FROM appointments` + filter + ` AND status IN ('pending', 'confirmed')`
	if err := r.db.QueryRow(ctx, pendingQuery, args...).Scan(&stats.PendingToday); err != nil {
		return nil, fmt.Errorf("dashboard: count pending: %w", err)
	}

	incomeQuery := `SELECT COALESCE(SUM(price_cents), 0) FROM appointments` + filter + ` AND status = 'completed'`
	if err := r.db.QueryRow(ctx, incomeQuery, args...).Scan(&stats.IncomeTodayCents); err != nil {
		return nil, fmt.Errorf("dashboard: sum income: %w", err)
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'client'`).Scan(&stats.TotalClients); err != nil {
		return nil, fmt.Errorf("dashboard: count clients: %w", err)
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM barbers WHERE is_active`).Scan(&stats.TotalBarbers); err != nil {
		return nil, fmt.Errorf("dashboard: count barbers: %w", err)
	}

	return stats, nil
}

// StatsHandler serves the dashboard snapshot over HTTP.
type StatsHandler struct {
	repo   *StatsRepository
	clock  civiltime.Converter
	logger *logging.Logger
}

// NewStatsHandler creates a dashboard HTTP handler.
func NewStatsHandler(repo *StatsRepository, clock civiltime.Converter, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{repo: repo, clock: clock, logger: logger}
}

// GetStats handles GET /dashboard/stats. "Today" is the shop-local calendar
// day. Any caller with a barber profile sees only their own appointment
// figures unless they hold the administrator role; administrators see the
// whole shop.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	localNow := h.clock.Now()
	dayStart, dayEnd := h.clock.DayBoundsUTC(localNow)

	barberID := ""
	if actor.IsBarber() && actor.Role != identity.RoleAdministrator {
		barberID = actor.BarberID
	}

	stats, err := h.repo.GetDailyStats(r.Context(), barberID, dayStart, dayEnd)
	if err != nil {
		h.logger.Error("failed to get dashboard stats", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	stats.Date = civiltime.StartOfDay(localNow).Format("2006-01-02")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to encode dashboard stats", "error", err)
	}
}
