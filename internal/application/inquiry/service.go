package inquiry

import (
	"context"
	"time"

	"github.com/neuromediai/site/internal/application"
	domain "github.com/neuromediai/site/internal/domain/inquiry"
	"github.com/neuromediai/site/internal/domain/notify"
	"github.com/neuromediai/site/internal/logger"
	"github.com/neuromediai/site/internal/metrics"
)

// DefaultSubmitDelay mimics a network round trip.
const DefaultSubmitDelay = 1500 * time.Millisecond

var (
	ContactSent = notify.Notification{
		Title:       "Message Sent!",
		Description: "This is a demo form. Your message was not actually sent.",
	}
	AppointmentBooked = notify.Notification{
		Title:       "Appointment Booked Successfully!",
		Description: "This is a demo booking. No actual appointment was created.",
	}
)

// Service handles the demo forms. Submissions are never stored and never fail
// on their content.
type Service struct {
	Clock    application.Clock
	Delay    time.Duration
	Notifier notify.Notifier
}

// SubmitContact simulates sending a message to support.
func (s *Service) SubmitContact(ctx context.Context, visitor string, msg domain.ContactMessage) (notify.Notification, error) {
	msg = msg.Sanitized()
	logger.Info().Str("visitor", visitor).Str("subject", msg.Subject).Int("message_len", len(msg.Message)).Msg("contact form submitted")
	return s.submit(ctx, visitor, ContactSent)
}

// BookAppointment simulates booking a slot.
func (s *Service) BookAppointment(ctx context.Context, visitor string, req domain.AppointmentRequest) (notify.Notification, error) {
	req = req.Sanitized()
	logger.Info().
		Str("visitor", visitor).
		Str("type", req.Type).
		Str("doctor", req.Doctor).
		Str("location", req.Location).
		Str("date", req.Date).
		Str("time", req.Time).
		Msg("appointment requested")
	return s.submit(ctx, visitor, AppointmentBooked)
}

func (s *Service) submit(ctx context.Context, visitor string, n notify.Notification) (notify.Notification, error) {
	clock := s.Clock
	if clock == nil {
		clock = application.SystemClock()
	}
	if err := application.Sleep(ctx, clock, s.Delay); err != nil {
		return notify.Notification{}, err
	}

	metrics.Global().InquiriesSubmitted.Add(1)
	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, visitor, n); err != nil {
			logger.Warn().Err(err).Str("visitor", visitor).Msg("queue notification")
		}
	}
	return n, nil
}
