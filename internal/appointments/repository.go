package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// apptDB defines the database interface needed by Repository; pgxpool
// satisfies it in production and pgxmock in tests.
type apptDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides persistence for appointments.
type Repository struct {
	db apptDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db apptDB) *Repository {
	return &Repository{db: db}
}

const apptColumns = `id, client_id, barber_id, service_id, starts_at, duration_minutes,
	price_cents, status, notes, created_at, created_by, modified_at, modified_by`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.BarberID, &a.ServiceID, &a.StartsAt, &a.DurationMinutes,
		&a.PriceCents, &a.Status, &a.Notes, &a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy)
	if err != nil {
		return nil, err
	}
	a.StartsAt = a.StartsAt.UTC()
	return &a, nil
}

// Insert persists a new appointment. The appointments table carries an
// exclusion constraint on (barber_id, occupied interval) for non-cancelled
// rows; a violation means a concurrent booking won the slot and surfaces as
// ErrConflict.
func (r *Repository) Insert(ctx context.Context, a *Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (id, client_id, barber_id, service_id, starts_at, duration_minutes,
		    price_cents, status, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.ClientID, a.BarberID, a.ServiceID, a.StartsAt, a.DurationMinutes,
		a.PriceCents, a.Status, a.Notes, a.CreatedAt, a.CreatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505") {
			return ErrConflict
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}
	return nil
}

// GetByID loads one appointment.
func (r *Repository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	a, err := scanAppointment(r.db.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get: %w", err)
	}
	return a, nil
}

// UpdateStatus stamps the new status and audit fields.
func (r *Repository) UpdateStatus(ctx context.Context, a *Appointment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments SET status = $2, modified_at = $3, modified_by = $4
		WHERE id = $1`,
		a.ID, a.Status, a.ModifiedAt, a.ModifiedBy)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveForBarber returns the barber's non-cancelled appointments starting
// inside [start, end), ascending by time. This is the input to conflict
// checks and slot generation.
func (r *Repository) ListActiveForBarber(ctx context.Context, barberID string, start, end time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+apptColumns+` FROM appointments
		WHERE barber_id = $1 AND status <> 'cancelled' AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC`,
		barberID, start, end)
	if err != nil {
		return nil, fmt.Errorf("appointments: list active for barber: %w", err)
	}
	return collect(rows)
}

// ListForClient returns all of a client's appointments, most recent first.
func (r *Repository) ListForClient(ctx context.Context, clientID string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+apptColumns+` FROM appointments
		WHERE client_id = $1
		ORDER BY starts_at DESC`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for client: %w", err)
	}
	return collect(rows)
}

// ListForBarber returns a barber's appointments, optionally restricted to
// starts inside [start, end), ascending by time.
func (r *Repository) ListForBarber(ctx context.Context, barberID string, start, end *time.Time) ([]Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments WHERE barber_id = $1`
	args := []any{barberID}
	if start != nil && end != nil {
		query += ` AND starts_at >= $2 AND starts_at < $3`
		args = append(args, *start, *end)
	}
	query += ` ORDER BY starts_at ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for barber: %w", err)
	}
	return collect(rows)
}

// ListAll returns every appointment, optionally restricted to starts inside
// [start, end), most recent first. Admin calendars use this.
func (r *Repository) ListAll(ctx context.Context, start, end *time.Time) ([]Appointment, error) {
	query := `SELECT ` + apptColumns + ` FROM appointments`
	var args []any
	if start != nil && end != nil {
		query += ` WHERE starts_at >= $1 AND starts_at < $2`
		args = append(args, *start, *end)
	}
	query += ` ORDER BY starts_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list all: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, *a)
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, rows.Err()
}
