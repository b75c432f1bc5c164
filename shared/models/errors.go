package models

import "errors"

var (
	ErrDeviceNotFound          = errors.New("device not found")
	ErrDeviceNotAvailable      = errors.New("device not available")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAlreadyCompleted = errors.New("booking already completed")
	ErrInvalidDuration         = errors.New("invalid duration")
	ErrInvalidUserName         = errors.New("user name is required")
	ErrInvalidDeviceType       = errors.New("invalid device type")
	ErrInvalidDeviceStatus     = errors.New("invalid device status")
)
