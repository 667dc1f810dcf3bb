package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thenoetrevino/propboard/internal/types"
)

// RedisBus carries change events over redis pub/sub so several hosts can
// share one board. Events are published to {prefix}:events:{board_id} and
// every listener pattern-subscribes to {prefix}:events:*, filtering by its
// current board locally. Delivery is at-most-once.
type RedisBus struct {
	rdb    *redis.Client
	prefix string
	logger *slog.Logger

	mu      sync.Mutex
	boardID types.BoardID

	closeOnce sync.Once
}

// NewRedisBus creates a bus. prefix namespaces channels and keys.
func NewRedisBus(opts *redis.Options, prefix string) (*RedisBus, error) {
	if opts == nil || opts.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if prefix == "" {
		prefix = "propboard"
	}
	return &RedisBus{
		rdb:    redis.NewClient(opts),
		prefix: prefix,
		logger: slog.Default(),
	}, nil
}

func (b *RedisBus) channel(boardID types.BoardID) string {
	if boardID == "" {
		return b.prefix + ":events:_all"
	}
	return b.prefix + ":events:" + string(boardID)
}

func (b *RedisBus) pattern() string {
	return b.prefix + ":events:*"
}

func (b *RedisBus) sequenceKey() string {
	return b.prefix + ":events:seq"
}

// Connect verifies redis is reachable
func (b *RedisBus) Connect(ctx context.Context) error {
	if b == nil {
		return ErrNilClient
	}
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// SendEvent stamps the event with a cluster-wide sequence number and
// publishes it on the board's channel.
func (b *RedisBus) SendEvent(event Event) error {
	if b == nil {
		return ErrNilClient
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq, err := b.rdb.Incr(ctx, b.sequenceKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to assign sequence: %w", err)
	}
	event.SequenceID = seq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel(event.BoardID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Listen pattern-subscribes and forwards events for the current board.
// Events without a board id reach every listener.
func (b *RedisBus) Listen(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event, 10)
	if b == nil {
		close(out)
		return out, ErrNilClient
	}

	pubsub := b.rdb.PSubscribe(ctx, b.pattern())
	// Wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		close(out)
		return out, fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("dropping malformed event", "channel", msg.Channel, "error", err)
					continue
				}
				if !b.wants(event) {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBus) wants(event Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boardID == "" || event.BoardID == "" || event.BoardID == b.boardID
}

// Subscribe narrows delivery to one board ("" = all boards)
func (b *RedisBus) Subscribe(boardID types.BoardID) error {
	if b == nil {
		return ErrNilClient
	}
	b.mu.Lock()
	b.boardID = boardID
	b.mu.Unlock()
	return nil
}

// Close closes the redis connection. Safe to call more than once.
func (b *RedisBus) Close() error {
	if b == nil {
		return nil
	}
	var err error
	b.closeOnce.Do(func() {
		err = b.rdb.Close()
		if errors.Is(err, redis.ErrClosed) {
			err = nil
		}
	})
	return err
}
