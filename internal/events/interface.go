package events

import (
	"context"

	"github.com/thenoetrevino/propboard/internal/types"
)

// EventPublisher defines the interface for sending and receiving events.
// The unix-socket Client and the redis-backed RedisBus both implement it.
type EventPublisher interface {
	// Connect establishes the transport
	Connect(ctx context.Context) error

	// SendEvent queues an event for delivery
	SendEvent(event Event) error

	// Listen starts listening for events
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe narrows delivery to one board ("" = all boards)
	Subscribe(boardID types.BoardID) error

	// Close stops all goroutines and releases the transport
	Close() error
}

// Compile-time verification of the implementations
var (
	_ EventPublisher = (*Client)(nil)
	_ EventPublisher = (*RedisBus)(nil)
)
