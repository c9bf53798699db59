package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/booking-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func technicianRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "full_name", "phone", "skills", "is_available", "rating_average", "total_jobs", "current_jobs", "max_daily_jobs", "created_at", "updated_at"})
}

func TestTechnicianRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	rows := technicianRows().
		AddRow("tech-1", "jo@example.com", "Jo Field", nil, nil, true, 4.5, 120, 2, 5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + technicianColumns + " FROM technicians WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM technicians WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TechnicianFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryListFiltersAvailable(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	available := true
	mock.ExpectQuery(regexp.QuoteMeta("FROM technicians WHERE 1=1 AND is_available = $1 ORDER BY rating_average DESC")).
		WithArgs(true).
		WillReturnRows(technicianRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM technicians WHERE 1=1 AND is_available = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.TechnicianFilter{
		Available: &available,
		SortBy:    "rating_average",
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryListAvailableOrdersByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	rows := technicianRows().
		AddRow("tech-1", "a@example.com", "A", nil, nil, true, 0.0, 0, 0, 5, time.Now(), time.Now()).
		AddRow("tech-2", "b@example.com", "B", nil, nil, true, 0.0, 0, 0, 5, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM technicians WHERE is_available = TRUE ORDER BY id ASC")).
		WillReturnRows(rows)

	technicians, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, technicians, 2)
	assert.Equal(t, "tech-1", technicians[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	mock.ExpectExec("INSERT INTO technicians").
		WillReturnResult(sqlmock.NewResult(1, 1))

	technician := &models.Technician{Email: "jo@example.com", FullName: "Jo Field", IsAvailable: true, MaxDailyJobs: 5}
	require.NoError(t, repo.Create(context.Background(), technician))
	assert.NotEmpty(t, technician.ID)
	assert.False(t, technician.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositoryExistsByEmailExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM technicians WHERE LOWER(email) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("jo@example.com", "tech-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "jo@example.com", "tech-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTechnicianRepositorySetAvailability(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTechnicianRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE technicians SET is_available = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("tech-1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SetAvailability(context.Background(), "tech-1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
