package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/pricing"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const premiumSpecs = "i7, 32GB RAM, 1TB SSD"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupTestLedger() (*Ledger, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	seq := 0
	l := New(WithClock(clock.Now), WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("booking-%d", seq)
	}))
	return l, clock
}

func TestCreate_Success(t *testing.T) {
	l, clock := setupTestLedger()

	b, err := l.Create(1, "PC-101", "Alice", 2, premiumSpecs)
	require.NoError(t, err)

	assert.Equal(t, "booking-1", b.ID)
	assert.Equal(t, 1, b.ComputerID)
	assert.Equal(t, "PC-101", b.ComputerName)
	assert.Equal(t, "Alice", b.UserName)
	assert.Equal(t, clock.now, b.StartTime)
	assert.Nil(t, b.EndTime)
	assert.Equal(t, 2.0, b.Duration)
	assert.Equal(t, pricing.PremiumRate*2, b.TotalCost)
	assert.Equal(t, models.BookingStatusActive, b.Status)
}

func TestCreate_TrimsUserName(t *testing.T) {
	l, _ := setupTestLedger()

	b, err := l.Create(3, "PC-103", "  Alice \t", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.UserName)
	assert.Equal(t, NormalizeUserName("  Alice \t"), b.UserName)
}

func TestCreate_DefaultIDsAreUnique(t *testing.T) {
	l := New()

	a, err := l.Create(1, "PC-101", "Alice", 1, "")
	require.NoError(t, err)
	b, err := l.Create(2, "PC-102", "Bob", 1, "")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreate_Invalid(t *testing.T) {
	l, _ := setupTestLedger()

	_, err := l.Create(1, "PC-101", "   ", 2, premiumSpecs)
	assert.ErrorIs(t, err, models.ErrInvalidUserName)

	_, err = l.Create(1, "PC-101", "Alice", 0, premiumSpecs)
	assert.ErrorIs(t, err, models.ErrInvalidDuration)

	_, err = l.Create(1, "PC-101", "Alice", -2, premiumSpecs)
	assert.ErrorIs(t, err, models.ErrInvalidDuration)

	assert.Empty(t, l.ListActive())
}

func TestComplete(t *testing.T) {
	l, clock := setupTestLedger()

	b, err := l.Create(1, "PC-101", "Alice", 2, premiumSpecs)
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	done, err := l.Complete(b.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusCompleted, done.Status)
	require.NotNil(t, done.EndTime)
	assert.Equal(t, clock.now, *done.EndTime)
	assert.False(t, done.EndTime.Before(done.StartTime))
	assert.Equal(t, pricing.PremiumRate*2, done.TotalCost, "cost is not recalculated")
}

func TestComplete_Errors(t *testing.T) {
	l, _ := setupTestLedger()

	_, err := l.Complete("missing")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)

	b, err := l.Create(1, "PC-101", "Alice", 1, "")
	require.NoError(t, err)
	_, err = l.Complete(b.ID)
	require.NoError(t, err)

	_, err = l.Complete(b.ID)
	assert.ErrorIs(t, err, models.ErrBookingAlreadyCompleted)
}

func TestGet(t *testing.T) {
	l, _ := setupTestLedger()

	b, err := l.Create(4, "PC-104", "Dana", 1.5, "")
	require.NoError(t, err)

	got, err := l.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = l.Get("nope")
	assert.ErrorIs(t, err, models.ErrBookingNotFound)
}

func TestListActive(t *testing.T) {
	l, _ := setupTestLedger()

	a, _ := l.Create(1, "PC-101", "Alice", 1, "")
	b, _ := l.Create(2, "PC-102", "Bob", 1, "")
	c, _ := l.Create(3, "PC-103", "Carol", 1, "")
	_, err := l.Complete(b.ID)
	require.NoError(t, err)

	active := l.ListActive()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, c.ID, active[1].ID)
}

func TestListRecentCompleted(t *testing.T) {
	l, clock := setupTestLedger()

	var ids []string
	for i := 1; i <= 4; i++ {
		b, err := l.Create(i, fmt.Sprintf("PC-10%d", i), "User", 1, "")
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}
	// end in the order 3, 1, 4, 2
	for _, idx := range []int{2, 0, 3, 1} {
		clock.Advance(time.Minute)
		_, err := l.Complete(ids[idx])
		require.NoError(t, err)
	}

	recent := l.ListRecentCompleted(3)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{ids[1], ids[3], ids[0]}, []string{recent[0].ID, recent[1].ID, recent[2].ID})
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].EndTime.After(*recent[i-1].EndTime))
	}

	assert.Len(t, l.ListRecentCompleted(10), 4)
	assert.Empty(t, l.ListRecentCompleted(0))
	assert.Empty(t, l.ListRecentCompleted(-1))
}

func TestActiveForDevice(t *testing.T) {
	l, _ := setupTestLedger()

	b, err := l.Create(5, "PC-105", "Eve", 1, "")
	require.NoError(t, err)

	got, ok := l.ActiveForDevice(5)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)

	_, err = l.Complete(b.ID)
	require.NoError(t, err)
	_, ok = l.ActiveForDevice(5)
	assert.False(t, ok)
}

func TestReturnedBookingsAreCopies(t *testing.T) {
	l, _ := setupTestLedger()

	b, err := l.Create(1, "PC-101", "Alice", 1, "")
	require.NoError(t, err)
	done, err := l.Complete(b.ID)
	require.NoError(t, err)

	*done.EndTime = done.EndTime.Add(time.Hour)

	stored, err := l.Get(b.ID)
	require.NoError(t, err)
	assert.NotEqual(t, *done.EndTime, *stored.EndTime)
}
