package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository provides persistence for the service menu and barber roster.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository over a database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const serviceColumns = `id, name, duration_minutes, price_cents, is_active, created_at, updated_at`

// ListServices returns the menu ordered by name. When activeOnly is set,
// deactivated services are filtered out.
func (r *Repository) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan service: %w", err)
		}
		out = append(out, s)
	}
	if out == nil {
		out = []Service{}
	}
	return out, rows.Err()
}

// GetService returns a service by id regardless of active flag; callers decide
// whether an inactive service is acceptable.
func (r *Repository) GetService(ctx context.Context, id string) (*Service, error) {
	var s Service
	err := r.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get service: %w", err)
	}
	return &s, nil
}

// CreateService adds a service to the menu.
func (r *Repository) CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	s := &Service{
		ID:              uuid.NewString(),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (id, name, duration_minutes, price_cents, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		s.ID, s.Name, s.DurationMinutes, s.PriceCents, s.Active, now)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert service: %w", err)
	}
	return s, nil
}

// UpdateService applies partial updates to a service. Deactivation happens
// here via Active=false; services are never deleted.
func (r *Repository) UpdateService(ctx context.Context, id string, req *UpdateServiceRequest) (*Service, error) {
	s, err := r.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, ErrInvalidDuration
		}
		s.DurationMinutes = *req.DurationMinutes
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return nil, ErrInvalidPrice
		}
		s.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		s.Active = *req.Active
	}
	s.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		UPDATE services SET name = $2, duration_minutes = $3, price_cents = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		s.ID, s.Name, s.DurationMinutes, s.PriceCents, s.Active, s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("catalog: update service: %w", err)
	}
	return s, nil
}

const barberSelect = `
	SELECT b.id, b.user_id, u.full_name, u.email, u.phone, b.specialty,
	       b.years_experience, b.rating, b.is_manager, b.availability, b.is_active, b.created_at
	FROM barbers b
	JOIN users u ON u.id = b.user_id`

func scanBarber(row interface{ Scan(...any) error }) (*Barber, error) {
	var b Barber
	err := row.Scan(&b.ID, &b.UserID, &b.FullName, &b.Email, &b.Phone, &b.Specialty,
		&b.YearsExperience, &b.Rating, &b.Manager, &b.Availability, &b.Active, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBarbers returns the roster ordered by name. When activeOnly is set, only
// barbers whose profile and account are both active are returned.
func (r *Repository) ListBarbers(ctx context.Context, activeOnly bool) ([]Barber, error) {
	query := barberSelect
	if activeOnly {
		query += ` WHERE b.is_active AND u.is_active`
	}
	query += ` ORDER BY u.full_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list barbers: %w", err)
	}
	defer rows.Close()

	var out []Barber
	for rows.Next() {
		b, err := scanBarber(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan barber: %w", err)
		}
		out = append(out, *b)
	}
	if out == nil {
		out = []Barber{}
	}
	return out, rows.Err()
}

// GetBarber returns a barber profile by id.
func (r *Repository) GetBarber(ctx context.Context, id string) (*Barber, error) {
	b, err := scanBarber(r.db.QueryRowContext(ctx, barberSelect+` WHERE b.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get barber: %w", err)
	}
	return b, nil
}

// GetBarberByUserID returns the barber profile belonging to a user account.
func (r *Repository) GetBarberByUserID(ctx context.Context, userID string) (*Barber, error) {
	b, err := scanBarber(r.db.QueryRowContext(ctx, barberSelect+` WHERE b.user_id = $1`, userID))
	if err == sql.ErrNoRows {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get barber by user: %w", err)
	}
	return b, nil
}

// CreateBarber creates a barber profile for an existing user and promotes the
// user's role accordingly.
func (r *Repository) CreateBarber(ctx context.Context, req *CreateBarberRequest) (*Barber, error) {
	if _, err := r.GetBarberByUserID(ctx, req.UserID); err == nil {
		return nil, ErrAlreadyBarber
	} else if err != ErrBarberNotFound {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO barbers (id, user_id, specialty, years_experience, rating, is_manager, availability, is_active, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, '', TRUE, $6)`,
		id, req.UserID, req.Specialty, req.YearsExperience, req.Manager, now)
	if err != nil {
		return nil, fmt.Errorf("catalog: insert barber: %w", err)
	}

	role := "barber"
	if req.Manager {
		role = "manager"
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2 WHERE id = $1`, req.UserID, role); err != nil {
		return nil, fmt.Errorf("catalog: promote user role: %w", err)
	}

	return r.GetBarber(ctx, id)
}

// UpdateBarber applies partial updates to a barber profile.
func (r *Repository) UpdateBarber(ctx context.Context, id string, req *UpdateBarberRequest) (*Barber, error) {
	b, err := r.GetBarber(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Specialty != nil {
		b.Specialty = *req.Specialty
	}
	if req.YearsExperience != nil {
		b.YearsExperience = *req.YearsExperience
	}
	if req.Manager != nil {
		b.Manager = *req.Manager
	}
	if req.Active != nil {
		b.Active = *req.Active
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE barbers SET specialty = $2, years_experience = $3, is_manager = $4, is_active = $5
		WHERE id = $1`,
		b.ID, b.Specialty, b.YearsExperience, b.Manager, b.Active)
	if err != nil {
		return nil, fmt.Errorf("catalog: update barber: %w", err)
	}
	return b, nil
}

// GetUser returns the minimal account view for a user id.
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, phone, role, is_active FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role, &u.Active)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get user: %w", err)
	}
	return &u, nil
}

// UpdateAvailability replaces a barber's free-form availability text.
func (r *Repository) UpdateAvailability(ctx context.Context, barberID, availability string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE barbers SET availability = $2 WHERE id = $1`, barberID, availability)
	if err != nil {
		return fmt.Errorf("catalog: update availability: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBarberNotFound
	}
	return nil
}
