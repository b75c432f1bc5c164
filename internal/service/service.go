package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/ledger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/rs/zerolog"
)

const (
	DefaultRecentLimit = 5
	MaxRecentLimit     = 50
)

// Store holds devices and bookings. StartBooking and CompleteBooking must change the
// device status and the booking record atomically.
type Store interface {
	ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.Device, error)
	GetDevice(ctx context.Context, id int) (*models.Device, error)
	StartBooking(ctx context.Context, deviceID int, userName string, hours float64) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListActiveBookings(ctx context.Context) ([]models.Booking, error)
	ListRecentCompleted(ctx context.Context, limit int) ([]models.Booking, error)
	Summary(ctx context.Context) (*models.AvailabilitySummary, error)
}

// Publisher pushes booking events to live clients
type Publisher interface {
	PublishDeviceStatus(device models.Device)
	PublishBookingStarted(booking models.Booking)
	PublishSessionEnded(booking models.Booking)
	PublishNotification(n models.Notification)
}

// StatusCache mirrors device status for fast dashboard reads
type StatusCache interface {
	Warm(ctx context.Context, devices []models.Device) error
	SetStatus(ctx context.Context, device models.Device) error
	Summary(ctx context.Context) (*models.AvailabilitySummary, error)
}

// SessionScheduler tracks the overdue timer of each active session
type SessionScheduler interface {
	Schedule(ctx context.Context, booking models.Booking) error
	Stop(ctx context.Context, bookingID string) error
}

// BookingService defines the booking service interface
type BookingService interface {
	ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.Device, error)
	GetDevice(ctx context.Context, id int) (*models.Device, error)
	Summary(ctx context.Context) (*models.AvailabilitySummary, error)
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error)
	Submit(ctx context.Context, attempt *Attempt, userName string, hours float64) (*models.Booking, error)
	EndSession(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListActiveBookings(ctx context.Context) ([]models.Booking, error)
	ListRecentBookings(ctx context.Context, limit int) ([]models.Booking, error)
	WarmCache(ctx context.Context) error
}

// Option configures the booking service
type Option func(*bookingServiceImpl)

func WithPublisher(p Publisher) Option {
	return func(s *bookingServiceImpl) { s.publisher = p }
}

func WithStatusCache(c StatusCache) Option {
	return func(s *bookingServiceImpl) { s.cache = c }
}

func WithScheduler(sch SessionScheduler) Option {
	return func(s *bookingServiceImpl) { s.scheduler = sch }
}

func WithClock(now func() time.Time) Option {
	return func(s *bookingServiceImpl) { s.now = now }
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	store     Store
	publisher Publisher
	cache     StatusCache
	scheduler SessionScheduler
	log       zerolog.Logger
	now       func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(store Store, logger zerolog.Logger, opts ...Option) BookingService {
	s := &bookingServiceImpl{
		store: store,
		log:   logger.With().Str("component", "booking").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WarmCache loads every device into the status cache
func (s *bookingServiceImpl) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	devices, err := s.store.ListDevices(ctx, models.DeviceFilter{})
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if err := s.cache.Warm(ctx, devices); err != nil {
		return fmt.Errorf("failed to warm status cache: %w", err)
	}
	return nil
}

func (s *bookingServiceImpl) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.Device, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDeviceType, filter.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDeviceStatus, filter.Status)
	}
	return s.store.ListDevices(ctx, filter)
}

func (s *bookingServiceImpl) GetDevice(ctx context.Context, id int) (*models.Device, error) {
	return s.store.GetDevice(ctx, id)
}

// Summary reads the status cache and falls back to the store
func (s *bookingServiceImpl) Summary(ctx context.Context) (*models.AvailabilitySummary, error) {
	if s.cache != nil {
		summary, err := s.cache.Summary(ctx)
		if err == nil && summary != nil && summary.Total > 0 {
			return summary, nil
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("status cache unavailable, reading store")
		}
	}
	return s.store.Summary(ctx)
}

// CreateBooking runs a single attempt for the requested device
func (s *bookingServiceImpl) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.Booking, error) {
	attempt := NewAttempt()
	if err := attempt.Select(req.DeviceID); err != nil {
		return nil, err
	}
	return s.Submit(ctx, attempt, req.UserName, req.Duration)
}

// Submit moves a DeviceSelected attempt through Submitting to Success or Error
func (s *bookingServiceImpl) Submit(ctx context.Context, attempt *Attempt, userName string, hours float64) (*models.Booking, error) {
	if err := attempt.beginSubmit(); err != nil {
		return nil, err
	}

	booking, err := s.submit(ctx, attempt.DeviceID(), userName, hours)
	if err != nil {
		n := s.notification(models.NotificationError, failureMessage(err))
		attempt.fail(n)
		s.publishNotification(n)
		s.log.Info().Err(err).Int("deviceId", attempt.DeviceID()).Msg("booking rejected")
		return nil, err
	}

	n := s.notification(models.NotificationSuccess,
		fmt.Sprintf("%s booked for %s (%.1f h, total %.2f)", booking.ComputerName, booking.UserName, booking.Duration, booking.TotalCost))
	attempt.succeed(booking, n)
	s.afterStart(ctx, *booking)
	s.publishNotification(n)
	return booking, nil
}

func (s *bookingServiceImpl) submit(ctx context.Context, deviceID int, userName string, hours float64) (*models.Booking, error) {
	if err := ledger.Validate(userName, hours); err != nil {
		return nil, err
	}
	// The store re-checks atomically; this catches the common case before touching it
	device, err := s.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device.Status != models.DeviceStatusAvailable {
		return nil, fmt.Errorf("device %d: %w", deviceID, models.ErrDeviceNotAvailable)
	}
	return s.store.StartBooking(ctx, deviceID, userName, hours)
}

// EndSession completes an active booking and frees its device
func (s *bookingServiceImpl) EndSession(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.store.CompleteBooking(ctx, bookingID)
	if err != nil {
		s.log.Info().Err(err).Str("bookingId", bookingID).Msg("end session rejected")
		return nil, err
	}

	s.afterEnd(ctx, *booking)
	s.publishNotification(s.notification(models.NotificationSuccess,
		fmt.Sprintf("Session on %s ended", booking.ComputerName)))
	return booking, nil
}

func (s *bookingServiceImpl) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

func (s *bookingServiceImpl) ListActiveBookings(ctx context.Context) ([]models.Booking, error) {
	return s.store.ListActiveBookings(ctx)
}

func (s *bookingServiceImpl) ListRecentBookings(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.store.ListRecentCompleted(ctx, limit)
}

// afterStart fans a started booking out to the live feed, cache and timer.
// Failures here are logged and never undo the booking.
func (s *bookingServiceImpl) afterStart(ctx context.Context, b models.Booking) {
	s.log.Info().
		Str("bookingId", b.ID).
		Int("deviceId", b.ComputerID).
		Str("user", b.UserName).
		Float64("hours", b.Duration).
		Float64("cost", b.TotalCost).
		Msg("booking started")

	s.syncDevice(ctx, b.ComputerID)
	if s.publisher != nil {
		s.publisher.PublishBookingStarted(b)
	}
	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, b); err != nil {
			s.log.Error().Err(err).Str("bookingId", b.ID).Msg("failed to schedule session timer")
		}
	}
}

func (s *bookingServiceImpl) afterEnd(ctx context.Context, b models.Booking) {
	s.log.Info().
		Str("bookingId", b.ID).
		Int("deviceId", b.ComputerID).
		Msg("session ended")

	s.syncDevice(ctx, b.ComputerID)
	if s.publisher != nil {
		s.publisher.PublishSessionEnded(b)
	}
	if s.scheduler != nil {
		if err := s.scheduler.Stop(ctx, b.ID); err != nil {
			s.log.Debug().Err(err).Str("bookingId", b.ID).Msg("session timer not stopped")
		}
	}
}

func (s *bookingServiceImpl) syncDevice(ctx context.Context, deviceID int) {
	if s.publisher == nil && s.cache == nil {
		return
	}
	device, err := s.store.GetDevice(ctx, deviceID)
	if err != nil {
		s.log.Error().Err(err).Int("deviceId", deviceID).Msg("failed to reload device")
		return
	}
	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, *device); err != nil {
			s.log.Warn().Err(err).Int("deviceId", deviceID).Msg("failed to update status cache")
		}
	}
	if s.publisher != nil {
		s.publisher.PublishDeviceStatus(*device)
	}
}

func (s *bookingServiceImpl) notification(kind models.NotificationKind, msg string) models.Notification {
	return models.Notification{Kind: kind, Message: msg, CreatedAt: s.now()}
}

func (s *bookingServiceImpl) publishNotification(n models.Notification) {
	if s.publisher != nil {
		s.publisher.PublishNotification(n)
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrDeviceNotFound), errors.Is(err, models.ErrDeviceNotAvailable):
		return "Selected device is not available"
	case errors.Is(err, models.ErrInvalidUserName):
		return "Please enter your name"
	case errors.Is(err, models.ErrInvalidDuration):
		return "Please choose a valid duration"
	default:
		return "Booking failed, please try again"
	}
}
