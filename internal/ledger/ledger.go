// Package ledger keeps the booking records created against the device registry.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/pricing"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/google/uuid"
)

// Ledger is an append-only list of bookings. Records are never removed; completion
// updates status and end time in place.
type Ledger struct {
	mu       sync.RWMutex
	bookings []*models.Booking
	byID     map[string]*models.Booking
	now      func() time.Time
	newID    func() string
}

// Option configures a Ledger
type Option func(*Ledger)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides booking id generation
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New creates an empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		byID:  make(map[string]*models.Booking),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Validate checks booking input without touching the ledger
func Validate(userName string, hours float64) error {
	if NormalizeUserName(userName) == "" {
		return models.ErrInvalidUserName
	}
	return pricing.ValidateDuration(hours)
}

// NormalizeUserName is the form a user name is stored in
func NormalizeUserName(userName string) string {
	return strings.TrimSpace(userName)
}

// Create prices and appends a new active booking
func (l *Ledger) Create(deviceID int, deviceName, userName string, hours float64, specs string) (models.Booking, error) {
	if err := Validate(userName, hours); err != nil {
		return models.Booking{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := &models.Booking{
		ID:           l.newID(),
		ComputerID:   deviceID,
		ComputerName: deviceName,
		UserName:     NormalizeUserName(userName),
		StartTime:    l.now(),
		Duration:     hours,
		TotalCost:    pricing.Cost(specs, hours),
		Status:       models.BookingStatusActive,
	}
	if _, exists := l.byID[b.ID]; exists {
		return models.Booking{}, fmt.Errorf("duplicate booking id %s", b.ID)
	}
	l.bookings = append(l.bookings, b)
	l.byID[b.ID] = b
	return *b, nil
}

// Complete marks an active booking completed and stamps its end time
func (l *Ledger) Complete(id string) (models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byID[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, models.ErrBookingNotFound)
	}
	if b.Status == models.BookingStatusCompleted {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, models.ErrBookingAlreadyCompleted)
	}

	end := l.now()
	if end.Before(b.StartTime) {
		end = b.StartTime
	}
	b.EndTime = &end
	b.Status = models.BookingStatusCompleted
	return copyBooking(b), nil
}

// Get returns a booking by id
func (l *Ledger) Get(id string) (models.Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.byID[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, models.ErrBookingNotFound)
	}
	return copyBooking(b), nil
}

// ListActive returns active bookings in creation order
func (l *Ledger) ListActive() []models.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	active := make([]models.Booking, 0)
	for _, b := range l.bookings {
		if b.Status == models.BookingStatusActive {
			active = append(active, copyBooking(b))
		}
	}
	return active
}

// ListRecentCompleted returns at most limit completed bookings, most recently ended first
func (l *Ledger) ListRecentCompleted(limit int) []models.Booking {
	if limit <= 0 {
		return []models.Booking{}
	}

	l.mu.RLock()
	completed := make([]models.Booking, 0)
	for _, b := range l.bookings {
		if b.Status == models.BookingStatusCompleted {
			completed = append(completed, copyBooking(b))
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].EndTime.After(*completed[j].EndTime)
	})
	if len(completed) > limit {
		completed = completed[:limit]
	}
	return completed
}

// ActiveForDevice returns the active booking holding a device, if any
func (l *Ledger) ActiveForDevice(deviceID int) (models.Booking, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, b := range l.bookings {
		if b.ComputerID == deviceID && b.Status == models.BookingStatusActive {
			return copyBooking(b), true
		}
	}
	return models.Booking{}, false
}

func copyBooking(b *models.Booking) models.Booking {
	out := *b
	if b.EndTime != nil {
		end := *b.EndTime
		out.EndTime = &end
	}
	return out
}
