package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberops/booking-platform/internal/appointments"
	"github.com/barberops/booking-platform/internal/booklock"
	"github.com/barberops/booking-platform/internal/catalog"
	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/internal/dashboard"
	"github.com/barberops/booking-platform/internal/schedule"
)

const testSecret = "router-test-secret"

type routerFixture struct {
	handler http.Handler
	sqlMock sqlmock.Sqlmock
	pgMock  pgxmock.PgxPoolIface
}

func buildRouter(t *testing.T) *routerFixture {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pgMock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pgMock.Close)

	clock := civiltime.New(-4)
	catalogRepo := catalog.NewRepository(db)
	apptSvc := appointments.NewService(appointments.ServiceDeps{
		Repo:    appointments.NewRepositoryWithDB(pgMock),
		Catalog: catalogRepo,
		Locker:  booklock.New(nil, 0, nil),
		Clock:   clock,
		Window:  schedule.Window{StartHour: 9, EndHour: 22, IntervalMinutes: 30},
	})

	handler := New(&Config{
		CatalogHandler:      catalog.NewHandler(catalogRepo, nil),
		AppointmentsHandler: appointments.NewHandler(apptSvc, clock, nil),
		StatsHandler:        dashboard.NewStatsHandler(dashboard.NewStatsRepositoryWithDB(pgMock), clock, nil),
		MetricsHandler:      promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		AuthJWTSecret:       testSecret,
	})
	return &routerFixture{handler: handler, sqlMock: sqlMock, pgMock: pgMock}
}

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestRouter_Health(t *testing.T) {
	f := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	f := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PublicServicesList(t *testing.T) {
	f := buildRouter(t)

	rows := sqlmock.NewRows([]string{"id", "name", "duration_minutes", "price_cents", "is_active", "created_at", "updated_at"}).
		AddRow("svc-1", "Classic Cut", 45, int64(3500), true, time.Now(), time.Now())
	f.sqlMock.ExpectQuery(`FROM services WHERE is_active ORDER BY name ASC`).WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/services", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Classic Cut")
}

func TestRouter_BookingRequiresAuth(t *testing.T) {
	f := buildRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminCalendarGated(t *testing.T) {
	f := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-client", "client"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminCalendarAllowsManager(t *testing.T) {
	f := buildRouter(t)

	f.pgMock.ExpectQuery(`FROM appointments ORDER BY starts_at DESC`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "client_id", "barber_id", "service_id", "starts_at", "duration_minutes",
			"price_cents", "status", "notes", "created_at", "created_by", "modified_at", "modified_by",
		}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-manager", "manager"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_ServiceCreationRequiresElevatedRole(t *testing.T) {
	f := buildRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/services", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-barber", "barber"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
