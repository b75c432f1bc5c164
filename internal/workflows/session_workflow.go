package workflows

import (
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/internal/activities"
	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// DefaultGrace is how long a session may run past its paid time
	DefaultGrace = 10 * time.Minute
	// EndSessionTimeout bounds a single EndOverdueSession attempt
	EndSessionTimeout = 30 * time.Second
)

// WorkflowID returns the timer workflow id for a booking
func WorkflowID(bookingID string) string {
	return "session-" + bookingID
}

// SessionTimerWorkflow waits for the user to end a session and ends it on their
// behalf once the paid duration plus grace has run out.
func SessionTimerWorkflow(ctx workflow.Context, input models.SessionTimerInput) (*models.SessionTimerResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Session timer started", "bookingId", input.BookingID, "computer", input.ComputerName)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: EndSessionTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	})

	wait := input.Deadline().Sub(workflow.Now(ctx))
	if wait < 0 {
		wait = 0
	}

	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	timer := workflow.NewTimer(timerCtx, wait)
	endedCh := workflow.GetSignalChannel(ctx, models.SignalSessionEnded)

	result := &models.SessionTimerResult{BookingID: input.BookingID}
	timedOut := false

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(endedCh, func(c workflow.ReceiveChannel, more bool) {
		var signal models.SessionEndedSignal
		c.Receive(ctx, &signal)
		logger.Info("Session ended by user", "bookingId", input.BookingID, "endedAt", signal.EndedAt)
		cancelTimer()
	})
	selector.AddFuture(timer, func(f workflow.Future) {
		if err := f.Get(ctx, nil); err != nil {
			return
		}
		timedOut = true
	})
	selector.Select(ctx)

	if !timedOut {
		return result, nil
	}

	logger.Info("Session overdue", "bookingId", input.BookingID, "deadline", input.Deadline())

	var out activities.EndOverdueSessionOutput
	err := workflow.ExecuteActivity(ctx, "EndOverdueSession", activities.EndOverdueSessionInput{
		BookingID: input.BookingID,
	}).Get(ctx, &out)
	if err != nil {
		logger.Error("Failed to end overdue session", "bookingId", input.BookingID, "error", err)
		return nil, err
	}

	result.AutoEnded = out.Ended
	return result, nil
}
