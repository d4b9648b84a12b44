package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anyArgs builds n pgxmock.AnyArg matchers; pgxmock requires the expected
// argument count to match even when the values are irrelevant to the test.
func anyArgs(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = pgxmock.AnyArg()
	}
	return out
}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepositoryWithDB(mock), mock
}

func TestInsert_ExclusionViolationIsConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(anyArgs(11)...).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"})

	a := storedAppointment()
	err := repo.Insert(context.Background(), &a)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInsert_OtherErrorsWrapped(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO appointments`).
		WithArgs(anyArgs(11)...).
		WillReturnError(&pgconn.PgError{Code: "53300"})

	a := storedAppointment()
	err := repo.Insert(context.Background(), &a)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "appointments: insert")
}

func TestGetByID_RoundTrip(t *testing.T) {
	repo, mock := newMockRepo(t)

	want := storedAppointment()
	mock.ExpectQuery(`FROM appointments WHERE id = \$1`).
		WithArgs("appt-1").
		WillReturnRows(apptRow(want))

	got, err := repo.GetByID(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, got.StartsAt.Equal(want.StartsAt))
	assert.Equal(t, time.UTC, got.StartsAt.Location())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM appointments WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(emptyApptRows())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE appointments SET status = \$2`).
		WithArgs(anyArgs(4)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	a := storedAppointment()
	err := repo.UpdateStatus(context.Background(), &a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveForBarber_EmptyIsNotNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	mock.ExpectQuery(`status <> 'cancelled' AND starts_at >= \$2 AND starts_at < \$3`).
		WithArgs("barber-1", start, end).
		WillReturnRows(emptyApptRows())

	got, err := repo.ListActiveForBarber(context.Background(), "barber-1", start, end)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListForBarber_OptionalBounds(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM appointments WHERE barber_id = \$1 ORDER BY starts_at ASC`).
		WithArgs("barber-1").
		WillReturnRows(apptRow(storedAppointment()))

	got, err := repo.ListForBarber(context.Background(), "barber-1", nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "appt-1", got[0].ID)
}

func TestListAll_WithBounds(t *testing.T) {
	repo, mock := newMockRepo(t)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM appointments WHERE starts_at >= \$1 AND starts_at < \$2 ORDER BY starts_at DESC`).
		WithArgs(start, end).
		WillReturnRows(apptRow(storedAppointment()))

	got, err := repo.ListAll(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
