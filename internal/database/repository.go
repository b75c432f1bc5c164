package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/ledger"
	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/pricing"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL-backed store
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}

// Connect opens a pool and verifies the connection
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SeedDevices upserts the catalog. Status of existing devices is left untouched.
func (r *Repository) SeedDevices(ctx context.Context, devices []models.Device) error {
	batch := &pgx.Batch{}
	for _, d := range devices {
		batch.Queue(`
			INSERT INTO devices (id, name, type, specs)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, type = EXCLUDED.type, specs = EXCLUDED.specs, updated_at = NOW()
		`, d.ID, d.Name, d.Type, d.Specs)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range devices {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to seed device: %w", err)
		}
	}
	return nil
}

// --- Device Operations ---

// ListDevices returns the devices matching filter
func (r *Repository) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.Device, error) {
	query := `
		SELECT id, name, type, status, specs, version
		FROM devices
		WHERE ($1 = '' OR type = $1) AND ($2 = '' OR status = $2)
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, string(filter.Type), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make([]models.Device, 0)
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.Status, &d.Specs, &d.Version); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	return devices, nil
}

// GetDevice returns a device by id
func (r *Repository) GetDevice(ctx context.Context, id int) (*models.Device, error) {
	return getDevice(ctx, r.pool, id)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getDevice(ctx context.Context, q rowQuerier, id int) (*models.Device, error) {
	var d models.Device
	err := q.QueryRow(ctx, `
		SELECT id, name, type, status, specs, version FROM devices WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Type, &d.Status, &d.Specs, &d.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("device %d: %w", id, models.ErrDeviceNotFound)
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &d, nil
}

// Summary counts devices by type and status
func (r *Repository) Summary(ctx context.Context) (*models.AvailabilitySummary, error) {
	devices, err := r.ListDevices(ctx, models.DeviceFilter{})
	if err != nil {
		return nil, err
	}
	summary := models.SummarizeDevices(devices)
	return &summary, nil
}

// --- Booking Operations ---

// StartBooking flips the device to in-use and inserts the booking in one transaction
func (r *Repository) StartBooking(ctx context.Context, deviceID int, userName string, hours float64) (*models.Booking, error) {
	if err := ledger.Validate(userName, hours); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Only transition available -> in-use
	result, err := tx.Exec(ctx, `
		UPDATE devices SET status = 'in-use', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'available'
	`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to book device: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := getDevice(ctx, tx, deviceID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("device %d: %w", deviceID, models.ErrDeviceNotAvailable)
	}

	device, err := getDevice(ctx, tx, deviceID)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:           uuid.NewString(),
		ComputerID:   device.ID,
		ComputerName: device.Name,
		UserName:     ledger.NormalizeUserName(userName),
		StartTime:    r.now().UTC(),
		Duration:     hours,
		TotalCost:    pricing.Cost(device.Specs, hours),
		Status:       models.BookingStatusActive,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, computer_id, computer_name, user_name, start_time, duration, total_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.ComputerID, b.ComputerName, b.UserName, b.StartTime, b.Duration, b.TotalCost, b.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return b, nil
}

// CompleteBooking marks the booking completed and releases its device in one transaction
func (r *Repository) CompleteBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, models.ErrBookingNotFound)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE bookings SET status = 'completed', end_time = GREATEST($1, start_time)
		WHERE id = $2 AND status = 'active'
	`, r.now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to complete booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		b, err := getBooking(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if b.Status == models.BookingStatusCompleted {
			return nil, fmt.Errorf("booking %s: %w", bookingID, models.ErrBookingAlreadyCompleted)
		}
		return nil, fmt.Errorf("failed to complete booking %s", bookingID)
	}

	b, err := getBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE devices SET status = 'available', version = version + 1, updated_at = NOW() WHERE id = $1
	`, b.ComputerID)
	if err != nil {
		return nil, fmt.Errorf("failed to release device: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}
	return b, nil
}

// GetBooking returns a booking by id
func (r *Repository) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, models.ErrBookingNotFound)
	}
	return getBooking(ctx, r.pool, id)
}

const bookingColumns = `id, computer_id, computer_name, user_name, start_time, end_time, duration, total_cost, status`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var (
		b  models.Booking
		id uuid.UUID
	)
	err := row.Scan(&id, &b.ComputerID, &b.ComputerName, &b.UserName, &b.StartTime,
		&b.EndTime, &b.Duration, &b.TotalCost, &b.Status)
	if err != nil {
		return nil, err
	}
	b.ID = id.String()
	return &b, nil
}

func getBooking(ctx context.Context, q rowQuerier, id uuid.UUID) (*models.Booking, error) {
	b, err := scanBooking(q.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, models.ErrBookingNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// ListActiveBookings returns active bookings in start order
func (r *Repository) ListActiveBookings(ctx context.Context) ([]models.Booking, error) {
	return r.listBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'active'
		ORDER BY start_time ASC
	`)
}

// ListRecentCompleted returns at most limit completed bookings, most recently ended first
func (r *Repository) ListRecentCompleted(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		return []models.Booking{}, nil
	}
	return r.listBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'completed'
		ORDER BY end_time DESC
		LIMIT $1
	`, limit)
}

func (r *Repository) listBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}

	return bookings, nil
}
