package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BookingNotificationInput is the input for the booking notification workflow.
type BookingNotificationInput struct {
	BookingID string
	EventType string
}

// WorkflowID is deterministic per booking event so a redelivered NATS message does not start
// a second run while the first is still open.
func WorkflowID(in BookingNotificationInput, at time.Time) string {
	return "booking-notify-" + in.BookingID + "-" + in.EventType + "-" + at.UTC().Format("20060102T150405.000")
}

// BookingNotificationWorkflow loads the booking, emails the requester and, when delivery keeps
// failing, records the failure for manual follow-up.
func BookingNotificationWorkflow(ctx workflow.Context, input BookingNotificationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting booking notification workflow", "bookingID", input.BookingID, "event", input.EventType)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Load the booking as it is now
	var notice BookingNotice
	err := workflow.ExecuteActivity(ctx, "LoadBookingNotice", input.BookingID).Get(ctx, &notice)
	if err != nil {
		return err
	}

	// Step 2: Email the requester
	err = workflow.ExecuteActivity(ctx, "SendBookingEmail", input.EventType, &notice).Get(ctx, nil)
	if err != nil {
		logger.Warn("booking email failed, recording failure", "error", err)
		_ = workflow.ExecuteActivity(ctx, "RecordNotificationFailure", input.EventType, input.BookingID, err.Error()).Get(ctx, nil)
		return err
	}

	logger.Info("Booking notification sent", "bookingID", input.BookingID)
	return nil
}
