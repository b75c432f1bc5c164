package models

import "time"

// Booking represents one user's session on one device
type Booking struct {
	ID           string        `json:"id"`
	ComputerID   int           `json:"computerId"`
	ComputerName string        `json:"computerName"`
	UserName     string        `json:"userName"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      *time.Time    `json:"endTime,omitempty"`
	Duration     float64       `json:"duration"` // hours
	TotalCost    float64       `json:"totalCost"`
	Status       BookingStatus `json:"status"`
}

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
)

// CreateBookingRequest represents a request to book a device
type CreateBookingRequest struct {
	DeviceID int     `json:"deviceId"`
	UserName string  `json:"userName"`
	Duration float64 `json:"duration"`
}

// NotificationKind distinguishes success and error notices
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message raised by the booking workflow
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
