package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldserve/booking-api/internal/models"
	appErrors "github.com/fieldserve/booking-api/pkg/errors"
)

type mockTimeslotRepo struct {
	slots     []models.Timeslot
	listCalls int
	created   *models.Timeslot
	updated   *models.Timeslot
}

func (m *mockTimeslotRepo) ListOrdered(ctx context.Context) ([]models.Timeslot, error) {
	m.listCalls++
	return m.slots, nil
}

func (m *mockTimeslotRepo) FindByID(ctx context.Context, id string) (*models.Timeslot, error) {
	for i := range m.slots {
		if m.slots[i].ID == id {
			copied := m.slots[i]
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimeslotRepo) Create(ctx context.Context, slot *models.Timeslot) error {
	slot.ID = "slot-new"
	m.created = slot
	return nil
}

func (m *mockTimeslotRepo) Update(ctx context.Context, slot *models.Timeslot) error {
	m.updated = slot
	return nil
}

type memoryCacheRepo struct {
	values map[string][]models.Timeslot
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	slots, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*[]models.Timeslot) = slots
	return nil
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.([]models.Timeslot)
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(m.values, pattern)
	return nil
}

func TestTimeslotListServesCacheOnSecondCall(t *testing.T) {
	repo := &mockTimeslotRepo{slots: []models.Timeslot{{ID: "slot-am", StartTime: "08:00", EndTime: "12:00"}}}
	cacheRepo := &memoryCacheRepo{values: map[string][]models.Timeslot{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	service := NewTimeslotService(repo, cache, time.Minute, nil, nil)

	first, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestTimeslotListWorksWithoutCache(t *testing.T) {
	repo := &mockTimeslotRepo{slots: []models.Timeslot{{ID: "slot-am"}}}
	service := NewTimeslotService(repo, nil, 0, nil, nil)

	slots, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 1)
}

func TestTimeslotCreateInvalidatesCache(t *testing.T) {
	repo := &mockTimeslotRepo{}
	cacheRepo := &memoryCacheRepo{values: map[string][]models.Timeslot{
		timeslotCacheKey: {{ID: "stale"}},
	}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	service := NewTimeslotService(repo, cache, time.Minute, nil, nil)

	slot, err := service.Create(context.Background(), CreateTimeslotRequest{
		StartTime:    "08:00",
		EndTime:      "12:00",
		DisplayLabel: "Morning",
	})
	require.NoError(t, err)
	assert.Equal(t, "slot-new", slot.ID)
	assert.NotContains(t, cacheRepo.values, timeslotCacheKey)
}

func TestTimeslotCreateRejectsInvertedWindow(t *testing.T) {
	service := NewTimeslotService(&mockTimeslotRepo{}, nil, 0, nil, nil)

	_, err := service.Create(context.Background(), CreateTimeslotRequest{
		StartTime:    "12:00",
		EndTime:      "08:00",
		DisplayLabel: "Backwards",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimeslotGetNotFound(t *testing.T) {
	service := NewTimeslotService(&mockTimeslotRepo{}, nil, 0, nil, nil)

	_, err := service.Get(context.Background(), "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
