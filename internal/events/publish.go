package events

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PublishWithRetry attempts to publish an event, retrying up to maxRetries
// times with exponential backoff starting at 50ms. It returns the error from
// the final attempt if all retries fail.
//
// Callers treat delivery as best effort: a failure here never rolls back the
// write that produced the event.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil // no transport configured
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 50 * time.Millisecond
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return client.SendEvent(event)
	}, backoff.WithMaxRetries(exp, uint64(maxRetries-1)), func(err error, delay time.Duration) {
		slog.Debug("event publish failed, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
			"retry_delay", delay,
			"error", err)
	})
	if err != nil {
		// Warn since this affects live updates
		slog.Warn("event publish failed after all retries",
			"attempts", attempt,
			"event_type", event.Type,
			"board_id", event.BoardID,
			"proposal_id", event.ProposalID,
			"error", err)
		return err
	}
	if attempt > 1 {
		slog.Debug("event published after retry",
			"attempt", attempt,
			"event_type", event.Type,
			"board_id", event.BoardID)
	}
	return nil
}
