package service

import (
	"errors"
	"fmt"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
)

// AttemptState is a step of a single booking attempt
type AttemptState string

const (
	AttemptIdle           AttemptState = "idle"
	AttemptDeviceSelected AttemptState = "device_selected"
	AttemptSubmitting     AttemptState = "submitting"
	AttemptSuccess        AttemptState = "success"
	AttemptError          AttemptState = "error"
)

var ErrInvalidTransition = errors.New("invalid booking attempt transition")

// Attempt tracks one user's path from picking a device to a booking.
//
//	Idle -> DeviceSelected -> Submitting -> Success -> Idle
//	                                     -> Error   -> DeviceSelected
//
// Success resets the attempt to Idle; Error returns it to DeviceSelected so the
// user can retry. The last notification and booking survive the reset.
type Attempt struct {
	state        AttemptState
	deviceID     int
	notification *models.Notification
	booking      *models.Booking
	history      []AttemptState
}

// NewAttempt returns an idle attempt
func NewAttempt() *Attempt {
	return &Attempt{state: AttemptIdle, history: []AttemptState{AttemptIdle}}
}

func (a *Attempt) State() AttemptState { return a.state }

func (a *Attempt) DeviceID() int { return a.deviceID }

// Notification returns the notice raised by the last submission, if any
func (a *Attempt) Notification() *models.Notification { return a.notification }

// Booking returns the booking created by the last successful submission, if any
func (a *Attempt) Booking() *models.Booking { return a.booking }

// History returns every state the attempt has passed through
func (a *Attempt) History() []AttemptState {
	out := make([]AttemptState, len(a.history))
	copy(out, a.history)
	return out
}

// Select picks a device. It is not allowed while a submission is in flight.
func (a *Attempt) Select(deviceID int) error {
	if a.state == AttemptSubmitting {
		return fmt.Errorf("%w: select while %s", ErrInvalidTransition, a.state)
	}
	a.deviceID = deviceID
	if a.state != AttemptDeviceSelected {
		a.moveTo(AttemptDeviceSelected)
	}
	return nil
}

// Reset clears the selection and returns to Idle
func (a *Attempt) Reset() {
	a.deviceID = 0
	if a.state != AttemptIdle {
		a.moveTo(AttemptIdle)
	}
}

func (a *Attempt) beginSubmit() error {
	if a.state != AttemptDeviceSelected {
		return fmt.Errorf("%w: submit while %s", ErrInvalidTransition, a.state)
	}
	a.notification = nil
	a.moveTo(AttemptSubmitting)
	return nil
}

func (a *Attempt) succeed(b *models.Booking, n models.Notification) {
	a.booking = b
	a.notification = &n
	a.moveTo(AttemptSuccess)
	a.Reset()
}

func (a *Attempt) fail(n models.Notification) {
	a.notification = &n
	a.moveTo(AttemptError)
	a.moveTo(AttemptDeviceSelected)
}

func (a *Attempt) moveTo(s AttemptState) {
	a.state = s
	a.history = append(a.history, s)
}
