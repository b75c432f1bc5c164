package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/inventory"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/ledger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
)

// MemoryStore keeps devices and bookings in process. Booking a device and recording
// the booking happen under one lock, as do completing a booking and releasing its device.
type MemoryStore struct {
	mu       sync.Mutex
	registry *inventory.Registry
	ledger   *ledger.Ledger
}

// NewMemoryStore creates a store over an existing registry and ledger
func NewMemoryStore(registry *inventory.Registry, l *ledger.Ledger) *MemoryStore {
	return &MemoryStore{registry: registry, ledger: l}
}

// ListDevices returns the devices matching filter
func (s *MemoryStore) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.Device, error) {
	return s.registry.List(filter), nil
}

// GetDevice returns a device by id
func (s *MemoryStore) GetDevice(ctx context.Context, id int) (*models.Device, error) {
	d, err := s.registry.GetByID(id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// StartBooking books the device and records an active booking
func (s *MemoryStore) StartBooking(ctx context.Context, deviceID int, userName string, hours float64) (*models.Booking, error) {
	if err := ledger.Validate(userName, hours); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	device, err := s.registry.Book(deviceID)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.Create(device.ID, device.Name, userName, hours, device.Specs)
	if err != nil {
		if _, releaseErr := s.registry.Release(device.ID); releaseErr != nil {
			return nil, fmt.Errorf("failed to release device after ledger error %v: %w", err, releaseErr)
		}
		return nil, fmt.Errorf("failed to record booking: %w", err)
	}
	return &b, nil
}

// CompleteBooking ends an active booking and frees its device
func (s *MemoryStore) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.ledger.Complete(bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.registry.Release(b.ComputerID); err != nil {
		return nil, fmt.Errorf("failed to release device: %w", err)
	}
	return &b, nil
}

// GetBooking returns a booking by id
func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListActiveBookings returns all active bookings
func (s *MemoryStore) ListActiveBookings(ctx context.Context) ([]models.Booking, error) {
	return s.ledger.ListActive(), nil
}

// ListRecentCompleted returns the most recently completed bookings
func (s *MemoryStore) ListRecentCompleted(ctx context.Context, limit int) ([]models.Booking, error) {
	return s.ledger.ListRecentCompleted(limit), nil
}

// Summary counts devices by type and status
func (s *MemoryStore) Summary(ctx context.Context) (*models.AvailabilitySummary, error) {
	summary := s.registry.Summary()
	return &summary, nil
}
