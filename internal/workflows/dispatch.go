package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// WorkflowStarter is the part of client.Client the dispatcher uses.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// BookingEventDispatcher returns a booking event handler that starts one notification
// workflow per event on taskQueue. Events that do not concern the requester are skipped.
func BookingEventDispatcher(starter WorkflowStarter, taskQueue string) func(ctx context.Context, event *domain.BookingEvent) error {
	return func(ctx context.Context, event *domain.BookingEvent) error {
		switch event.Type {
		case domain.EventBookingCreated, domain.EventBookingStatusChanged:
		default:
			return nil
		}
		if event.BookingID == "" {
			return nil
		}

		in := BookingNotificationInput{BookingID: event.BookingID, EventType: event.Type}
		_, err := starter.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        WorkflowID(in, event.At),
			TaskQueue: taskQueue,
		}, BookingNotificationWorkflow, in)
		if err != nil {
			return fmt.Errorf("start notification for booking %s: %w", event.BookingID, err)
		}
		return nil
	}
}
