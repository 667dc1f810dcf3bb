package events

import (
	"context"
	"testing"
	"time"
)

// TestNilClientMethods verifies that calling methods on a nil *Client doesn't panic
func TestNilClientMethods(t *testing.T) {
	var client *Client

	t.Run("Listen on nil client", func(t *testing.T) {
		eventChan, err := client.Listen(context.Background())
		if err == nil {
			t.Error("expected error from Listen on nil client")
		}
		select {
		case _, ok := <-eventChan:
			if ok {
				t.Error("expected closed channel from nil client Listen")
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("channel should be immediately readable (closed)")
		}
	})

	t.Run("Subscribe on nil client", func(t *testing.T) {
		if err := client.Subscribe("board-1"); err == nil {
			t.Error("expected error from Subscribe on nil client")
		}
	})

	t.Run("SendEvent on nil client", func(t *testing.T) {
		if err := client.SendEvent(Event{Type: EventBoardChanged}); err == nil {
			t.Error("expected error from SendEvent on nil client")
		}
	})

	t.Run("Connect on nil client", func(t *testing.T) {
		if err := client.Connect(context.Background()); err == nil {
			t.Error("expected error from Connect on nil client")
		}
	})

	t.Run("Close on nil client", func(t *testing.T) {
		if err := client.Close(); err != nil {
			t.Errorf("Close should return nil error on nil client, got: %v", err)
		}
	})
}
