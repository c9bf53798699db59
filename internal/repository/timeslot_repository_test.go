package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/booking-api/internal/models"
)

func timeslotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "start_time", "end_time", "display_label", "created_at", "updated_at"})
}

func TestTimeslotRepositoryListOrdered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeslotRepository(db)

	rows := timeslotRows().
		AddRow("slot-am", "08:00", "12:00", "Morning", time.Now(), time.Now()).
		AddRow("slot-pm", "13:00", "17:00", "Afternoon", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timeslots ORDER BY start_time ASC")).
		WillReturnRows(rows)

	slots, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "slot-am", slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeslotRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeslotRepository(db)

	mock.ExpectExec("INSERT INTO timeslots").
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.Timeslot{StartTime: "08:00", EndTime: "12:00", DisplayLabel: "Morning"}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeslotRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeslotRepository(db)

	mock.ExpectExec("UPDATE timeslots").
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.Timeslot{ID: "slot-am", StartTime: "08:00", EndTime: "12:30", DisplayLabel: "Morning"}
	require.NoError(t, repo.Update(context.Background(), slot))
	assert.False(t, slot.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
