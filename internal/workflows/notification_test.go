package workflows

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/wanderbook/internal/core/domain"
	"github.com/samirrijal/wanderbook/internal/pkg/metrics"
)

type stubBookings map[string]*domain.Booking

func (s stubBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	if b, ok := s[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

type stubTrips map[string]*domain.Trip

func (s stubTrips) GetByID(_ context.Context, id string) (*domain.Trip, error) {
	if t, ok := s[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

type recordingMailer struct {
	mu       sync.Mutex
	sent     []string
	attempts int
	err      error
}

func (m *recordingMailer) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func newActivities(mailer *recordingMailer) *NotificationActivities {
	return &NotificationActivities{
		Bookings: stubBookings{
			"b1": {ID: "b1", TripID: "t1", Name: "Asha", Email: "asha@example.com", Status: domain.BookingConfirmed, SeatNumber: "A3"},
		},
		Trips: stubTrips{
			"t1": {ID: "t1", Title: "Langtang Valley", StartDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		},
		Notifier: mailer,
	}
}

func TestBookingNotificationWorkflow_Sends(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	mailer := &recordingMailer{}
	env.RegisterWorkflow(BookingNotificationWorkflow)
	env.RegisterActivity(newActivities(mailer))

	env.ExecuteWorkflow(BookingNotificationWorkflow, BookingNotificationInput{
		BookingID: "b1",
		EventType: domain.EventBookingStatusChanged,
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "asha@example.com|Your booking for Langtang Valley is confirmed", mailer.sent[0])
}

func TestBookingNotificationWorkflow_RecordsFailure(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	mailer := &recordingMailer{err: errors.New("smtp: connection refused")}
	env.RegisterWorkflow(BookingNotificationWorkflow)
	env.RegisterActivity(newActivities(mailer))

	env.ExecuteWorkflow(BookingNotificationWorkflow, BookingNotificationInput{
		BookingID: "b1",
		EventType: domain.EventBookingStatusChanged,
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 5, mailer.attempts)
	assert.Empty(t, mailer.sent)
}

func TestBookingNotificationWorkflow_UnknownBooking(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()

	mailer := &recordingMailer{}
	env.RegisterWorkflow(BookingNotificationWorkflow)
	env.RegisterActivity(newActivities(mailer))

	env.ExecuteWorkflow(BookingNotificationWorkflow, BookingNotificationInput{BookingID: "missing", EventType: domain.EventBookingCreated})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking not found")
	assert.Zero(t, mailer.attempts)
}

func TestRenderBookingEmail(t *testing.T) {
	n := &BookingNotice{BookingID: "b1", TripTitle: "Upper Mustang", StartDate: "3 Mar 2027", Name: "Ram", SeatNumber: "7"}

	tests := []struct {
		event   string
		status  domain.BookingStatus
		subject string
		body    string
	}{
		{domain.EventBookingCreated, domain.BookingPending, "We received your booking for Upper Mustang", "verify your payment"},
		{domain.EventBookingStatusChanged, domain.BookingConfirmed, "Your booking for Upper Mustang is confirmed", "seat number is 7"},
		{domain.EventBookingStatusChanged, domain.BookingRejected, "Your booking for Upper Mustang was not accepted", "could not verify"},
		{domain.EventBookingStatusChanged, domain.BookingPending, "Your booking for Upper Mustang is being reviewed", "pending verification"},
	}
	for _, tt := range tests {
		n.Status = tt.status
		subject, body := RenderBookingEmail(tt.event, n)
		assert.Equal(t, tt.subject, subject)
		assert.True(t, strings.Contains(body, tt.body), body)
		assert.Contains(t, body, "Booking reference: b1")
	}
}

func notificationCount(t *testing.T, event, result string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.NotificationsSent.WithLabelValues(event, result).Write(&m))
	return m.GetCounter().GetValue()
}

func TestSendBookingEmail_CountsOutcome(t *testing.T) {
	ctx := context.Background()
	notice := &BookingNotice{BookingID: "b1", TripTitle: "Langtang Valley", Name: "Asha", Email: "asha@example.com", Status: domain.BookingConfirmed}

	skipped := notificationCount(t, domain.EventBookingStatusChanged, "skipped")
	sent := notificationCount(t, domain.EventBookingStatusChanged, "sent")

	a := &NotificationActivities{}
	require.NoError(t, a.SendBookingEmail(ctx, domain.EventBookingStatusChanged, notice))
	assert.Equal(t, skipped+1, notificationCount(t, domain.EventBookingStatusChanged, "skipped"))

	mailer := &recordingMailer{}
	a = newActivities(mailer)
	require.NoError(t, a.SendBookingEmail(ctx, domain.EventBookingStatusChanged, notice))
	assert.Equal(t, sent+1, notificationCount(t, domain.EventBookingStatusChanged, "sent"))
	assert.Len(t, mailer.sent, 1)
}
