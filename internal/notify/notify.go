// Package notify delivers best-effort notifications about new complaints.
// Delivery failures are logged and never reach the request that triggered
// them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fraol-12/WhisperBox/internal/model"
)

// Notification describes a newly filed complaint.
type Notification struct {
	TicketID   string
	Department model.Department
}

// Notifier sends a single notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Enabled() bool
}

// Disabled is the Notifier used when no transport is configured.
type Disabled struct{}

func (Disabled) Notify(context.Context, Notification) error { return nil }
func (Disabled) Enabled() bool                              { return false }

// Outcome labels reported to the OnResult hook.
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeDisabled = "disabled"
)

// Dispatcher sends notifications on background goroutines with a bounded
// timeout.
type Dispatcher struct {
	notifier Notifier
	logger   zerolog.Logger
	timeout  time.Duration

	// OnResult, if set, is called once per dispatched notification.
	OnResult func(outcome string)

	wg sync.WaitGroup
}

func NewDispatcher(n Notifier, logger zerolog.Logger, timeout time.Duration) *Dispatcher {
	if n == nil {
		n = Disabled{}
	}
	return &Dispatcher{notifier: n, logger: logger, timeout: timeout}
}

// Dispatch returns immediately; the send happens in the background.
func (d *Dispatcher) Dispatch(n Notification) {
	if !d.notifier.Enabled() {
		d.logger.Debug().Str("ticket_id", n.TicketID).Msg("email service not configured, skipping notification")
		d.report(OutcomeDisabled)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Interface("panic", r).Str("ticket_id", n.TicketID).Msg("notification panicked")
				d.report(OutcomeFailed)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Error().Err(err).
				Str("ticket_id", n.TicketID).
				Str("department", string(n.Department)).
				Msg("notification failed")
			d.report(OutcomeFailed)
			return
		}
		d.logger.Info().Str("ticket_id", n.TicketID).Msg("notification sent")
		d.report(OutcomeSent)
	}()
}

// Wait blocks until in-flight notifications finish. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) report(outcome string) {
	if d.OnResult != nil {
		d.OnResult(outcome)
	}
}
