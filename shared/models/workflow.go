package models

import "time"

// SessionTimerInput is the input for the overdue-session workflow
type SessionTimerInput struct {
	BookingID    string        `json:"bookingId"`
	ComputerID   int           `json:"computerId"`
	ComputerName string        `json:"computerName"`
	StartTime    time.Time     `json:"startTime"`
	Duration     float64       `json:"duration"`
	Grace        time.Duration `json:"grace"`
}

// Deadline is when the session is considered overdue
func (in SessionTimerInput) Deadline() time.Time {
	return in.StartTime.Add(HoursToDuration(in.Duration)).Add(in.Grace)
}

// SessionTimerResult is the result of the overdue-session workflow
type SessionTimerResult struct {
	BookingID string `json:"bookingId"`
	AutoEnded bool   `json:"autoEnded"`
}

// Signals and task queue for the overdue-session workflow
const (
	SignalSessionEnded = "session-ended"
	TaskQueue          = "cybercafe-sessions"
)

// SessionEndedSignal is sent when a user ends the session before the timer fires
type SessionEndedSignal struct {
	EndedAt time.Time `json:"endedAt"`
}

// HoursToDuration converts a fractional hour count to a time.Duration
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
