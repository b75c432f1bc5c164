package database

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/inventory"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/pricing"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepository needs a disposable database in TEST_DATABASE_URL
func setupTestRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	require.NoError(t, repo.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE bookings, devices`)
	require.NoError(t, err)
	require.NoError(t, repo.SeedDevices(ctx, inventory.DefaultCatalog()))
	return repo
}

func TestRepository_BookingLifecycle(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	b, err := repo.StartBooking(ctx, 1, "Alice", 2)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusActive, b.Status)
	assert.Equal(t, pricing.PremiumRate*2, b.TotalCost)

	d, err := repo.GetDevice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusInUse, d.Status)

	_, err = repo.StartBooking(ctx, 1, "Bob", 1)
	assert.ErrorIs(t, err, models.ErrDeviceNotAvailable)

	done, err := repo.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Status)
	require.NotNil(t, done.EndTime)
	assert.False(t, done.EndTime.Before(done.StartTime))

	_, err = repo.CompleteBooking(ctx, b.ID)
	assert.ErrorIs(t, err, models.ErrBookingAlreadyCompleted)

	d, err = repo.GetDevice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceStatusAvailable, d.Status)

	recent, err := repo.ListRecentCompleted(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, b.ID, recent[0].ID)
}

func TestRepository_StoresNormalizedUserName(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	b, err := repo.StartBooking(ctx, 5, "  Alice ", 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.UserName)

	stored, err := repo.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.UserName)
}

func TestRepository_VersionTracksStatusChanges(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	before, err := repo.GetDevice(ctx, 6)
	require.NoError(t, err)

	b, err := repo.StartBooking(ctx, 6, "Dan", 1)
	require.NoError(t, err)
	inUse, err := repo.GetDevice(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, inUse.Version)

	_, err = repo.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	released, err := repo.GetDevice(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, before.Version+2, released.Version)
}

func TestRepository_NotFound(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	_, err := repo.StartBooking(ctx, 99, "Alice", 1)
	assert.ErrorIs(t, err, models.ErrDeviceNotFound)

	_, err = repo.CompleteBooking(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	_, err = repo.GetBooking(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestRepository_SeedKeepsStatus(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	_, err := repo.StartBooking(ctx, 3, "Carol", 1)
	require.NoError(t, err)
	require.NoError(t, repo.SeedDevices(ctx, inventory.DefaultCatalog()))

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 1, summary.InUse)
}

func TestRepository_ConcurrentStart(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.StartBooking(ctx, 2, "racer", 1); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	active, err := repo.ListActiveBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
