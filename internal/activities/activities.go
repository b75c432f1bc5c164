package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// SessionEnder ends a session through the booking workflow so that the device
// release, live feed and cache all follow the same path as a user-ended session.
type SessionEnder interface {
	EndSession(ctx context.Context, bookingID string) (*models.Booking, error)
}

// EndOverdueSessionInput is the input for the EndOverdueSession activity
type EndOverdueSessionInput struct {
	BookingID string `json:"bookingId"`
}

// EndOverdueSessionOutput reports whether this activity ended the session
type EndOverdueSessionOutput struct {
	Ended        bool   `json:"ended"`
	AlreadyEnded bool   `json:"alreadyEnded"`
	ComputerName string `json:"computerName,omitempty"`
}

// Activities holds the session timer activities
type Activities struct {
	ender SessionEnder
}

func New(ender SessionEnder) *Activities {
	return &Activities{ender: ender}
}

// EndOverdueSession activity - ends a session whose paid time plus grace has run out.
// A session the user already ended counts as success.
func (a *Activities) EndOverdueSession(ctx context.Context, input EndOverdueSessionInput) (*EndOverdueSessionOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Ending overdue session", "bookingID", input.BookingID)

	booking, err := a.ender.EndSession(ctx, input.BookingID)
	switch {
	case err == nil:
		logger.Info("Overdue session ended", "bookingID", input.BookingID, "computer", booking.ComputerName)
		return &EndOverdueSessionOutput{Ended: true, ComputerName: booking.ComputerName}, nil
	case errors.Is(err, models.ErrBookingAlreadyCompleted):
		logger.Info("Session already ended", "bookingID", input.BookingID)
		return &EndOverdueSessionOutput{AlreadyEnded: true}, nil
	case errors.Is(err, models.ErrBookingNotFound):
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("booking %s not found", input.BookingID), "BookingNotFound", err)
	default:
		return nil, fmt.Errorf("failed to end session %s: %w", input.BookingID, err)
	}
}
