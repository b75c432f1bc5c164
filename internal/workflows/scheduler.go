package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"go.temporal.io/sdk/client"
)

// Scheduler starts and stops session timer workflows
type Scheduler struct {
	client    client.Client
	taskQueue string
	grace     time.Duration
	now       func() time.Time
}

func NewScheduler(c client.Client, grace time.Duration) *Scheduler {
	return &Scheduler{
		client:    c,
		taskQueue: models.TaskQueue,
		grace:     grace,
		now:       time.Now,
	}
}

// Schedule starts the timer for a newly active booking
func (s *Scheduler) Schedule(ctx context.Context, booking models.Booking) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(booking.ID),
		TaskQueue: s.taskQueue,
	}
	input := models.SessionTimerInput{
		BookingID:    booking.ID,
		ComputerID:   booking.ComputerID,
		ComputerName: booking.ComputerName,
		StartTime:    booking.StartTime,
		Duration:     booking.Duration,
		Grace:        s.grace,
	}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, SessionTimerWorkflow, input); err != nil {
		return fmt.Errorf("failed to start session timer: %w", err)
	}
	return nil
}

// Stop tells the timer the user ended the session
func (s *Scheduler) Stop(ctx context.Context, bookingID string) error {
	signal := models.SessionEndedSignal{EndedAt: s.now()}
	if err := s.client.SignalWorkflow(ctx, WorkflowID(bookingID), "", models.SignalSessionEnded, signal); err != nil {
		return fmt.Errorf("failed to signal session timer: %w", err)
	}
	return nil
}
