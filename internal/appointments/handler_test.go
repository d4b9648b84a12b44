package appointments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberops/booking-platform/internal/civiltime"
	"github.com/barberops/booking-platform/internal/identity"
)

func newTestHandler(t *testing.T, cat *fakeCatalog) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	svc, mock := newTestService(t, cat, nil)
	h := NewHandler(svc, civiltime.NewWithClock(-4, func() time.Time { return testNow }), nil)

	r := chi.NewRouter()
	r.Get("/barbers/{id}/slots", h.ListSlots)
	r.Post("/appointments", h.Book)
	r.Get("/appointments", h.ListAll)
	r.Get("/appointments/my", h.ListMine)
	r.Get("/appointments/barber", h.BarberAgenda)
	r.Get("/appointments/{id}", h.Get)
	r.Put("/appointments/{id}/status", h.UpdateStatus)
	r.Delete("/appointments/{id}", h.Cancel)
	return r, mock
}

func asActor(r *http.Request, actor identity.Actor) *http.Request {
	return r.WithContext(identity.WithActor(r.Context(), actor))
}

func TestHandlerBook_Created(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments\s+WHERE barber_id = \$1 AND status <> 'cancelled'`).
		WithArgs(anyArgs(3)...).
		WillReturnRows(emptyApptRows())
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body := `{"barber_id":"barber-1","service_id":"svc-1","starts_at":"2026-03-10T18:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var appt Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appt))
	assert.Equal(t, StatusConfirmed, appt.Status)
	assert.Equal(t, int64(3500), appt.PriceCents)
}

func TestHandlerBook_ShopLocalStartsAt(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments\s+WHERE barber_id = \$1 AND status <> 'cancelled'`).
		WithArgs(anyArgs(3)...).
		WillReturnRows(emptyApptRows())
	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(anyArgs(11)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	// Offset-less input is shop wall-clock: 14:00 local is 18:00 UTC.
	body := `{"barber_id":"barber-1","service_id":"svc-1","starts_at":"2026-03-10T14:00:00"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var appt Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appt))
	assert.Equal(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), appt.StartsAt.UTC())
}

func TestHandlerBook_Conflict(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments\s+WHERE barber_id = \$1 AND status <> 'cancelled'`).
		WithArgs(anyArgs(3)...).
		WillReturnRows(apptRow(storedAppointment()))

	body := `{"barber_id":"barber-1","service_id":"svc-1","starts_at":"2026-03-10T18:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerBook_Validation(t *testing.T) {
	router, _ := newTestHandler(t, testCatalog())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"missing fields", `{"barber_id":"barber-1"}`, http.StatusBadRequest},
		{"unparseable starts_at", `{"barber_id":"barber-1","service_id":"svc-1","starts_at":"next tuesday"}`, http.StatusBadRequest},
		{"unknown service", `{"barber_id":"barber-1","service_id":"nope","starts_at":"2026-03-10T18:00:00Z"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(tt.body))
			req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestHandlerBook_Unauthenticated(t *testing.T) {
	router, _ := newTestHandler(t, testCatalog())

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlerListSlots(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments\s+WHERE barber_id = \$1 AND status <> 'cancelled'`).
		WithArgs(anyArgs(3)...).
		WillReturnRows(emptyApptRows())

	req := httptest.NewRequest(http.MethodGet, "/barbers/barber-1/slots?service_id=svc-1&date=2026-03-11", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Date  string `json:"date"`
		Slots []struct {
			Start     time.Time `json:"start"`
			Available bool      `json:"available"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-11", resp.Date)
	assert.Len(t, resp.Slots, 26)
}

func TestHandlerListSlots_MissingServiceID(t *testing.T) {
	router, _ := newTestHandler(t, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/barbers/barber-1/slots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCancel(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments WHERE id = \$1`).
		WithArgs("appt-1").
		WillReturnRows(apptRow(storedAppointment()))
	mock.ExpectExec(`UPDATE appointments SET status = \$2`).
		WithArgs(anyArgs(4)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	req := httptest.NewRequest(http.MethodDelete, "/appointments/appt-1", nil)
	req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var appt Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appt))
	assert.Equal(t, StatusCancelled, appt.Status)
}

func TestHandlerUpdateStatus_Forbidden(t *testing.T) {
	router, mock := newTestHandler(t, testCatalog())

	mock.ExpectQuery(`FROM appointments WHERE id = \$1`).
		WithArgs(anyArgs(1)...).
		WillReturnRows(apptRow(storedAppointment()))

	req := httptest.NewRequest(http.MethodPut, "/appointments/appt-1/status", strings.NewReader(`{"status":"completed"}`))
	req = asActor(req, identity.Actor{UserID: "u-stranger", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerBarberAgenda_RangeValidation(t *testing.T) {
	router, _ := newTestHandler(t, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/appointments/barber?from=2026-03-01", nil)
	req = asActor(req, identity.Actor{UserID: "u-barber", BarberID: "barber-1", Role: identity.RoleBarber})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListAll_AdminOnly(t *testing.T) {
	router, _ := newTestHandler(t, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req = asActor(req, identity.Actor{UserID: "u-client", Role: identity.RoleClient})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

