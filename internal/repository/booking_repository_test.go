package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepositoryListBlockingWithoutTimeslot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows([]string{"technician_id"}).AddRow("tech-1").AddRow("tech-2")
	mock.ExpectQuery(regexp.QuoteMeta("BETWEEN scheduled_date AND COALESCE(scheduled_end_date, scheduled_date)")).
		WithArgs("2026-04-10").
		WillReturnRows(rows)

	ids, err := repo.ListBlocking(context.Background(), time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tech-1", "tech-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListBlockingNarrowsByTimeslot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND timeslot_id = $2")).
		WithArgs("2026-04-10", "slot-am").
		WillReturnRows(sqlmock.NewRows([]string{"technician_id"}))

	ids, err := repo.ListBlocking(context.Background(), time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), "slot-am")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryDailyJobCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows([]string{"technician_id", "job_count"}).
		AddRow("tech-1", 3).
		AddRow("tech-2", 1)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY technician_id")).
		WithArgs("2026-04-10").
		WillReturnRows(rows)

	counts, err := repo.DailyJobCounts(context.Background(), time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tech-1": 3, "tech-2": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListByTechnicianSpan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "customer_id", "technician_id", "service_id", "timeslot_id", "scheduled_date", "scheduled_end_date", "status", "created_at", "updated_at"}).
		AddRow("bk-1", "cust-1", "tech-1", "svc-1", "slot-am", time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), nil, "confirmed", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE technician_id = $1")).
		WithArgs("tech-1", "2026-04-09", "2026-04-12").
		WillReturnRows(rows)

	bookings, err := repo.ListByTechnicianSpan(context.Background(), "tech-1",
		time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bk-1", bookings[0].ID)
	assert.True(t, bookings[0].Blocks())
	assert.NoError(t, mock.ExpectationsWereMet())
}
