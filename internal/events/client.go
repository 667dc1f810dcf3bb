package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Client is a connection to the propboard daemon. It sends change events,
// receives broadcasts for its subscribed board, batches bursts of identical
// events and reconnects when the socket drops.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex
	logger     *slog.Logger

	// Batching configuration
	eventQueue chan Event
	debounce   time.Duration
	closed     bool
	started    bool

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	currentBoardID types.BoardID
	lastSequence   int64

	ctx    context.Context
	cancel context.CancelFunc

	batcherDone chan struct{}
}

// NewClient creates a new event client but does not connect.
// The debounce window defaults to 100ms and can be changed with
// PROPBOARD_EVENT_DEBOUNCE_MS.
func NewClient(socketPath string) (*Client, error) {
	debounceMs := 100
	if envVal := os.Getenv("PROPBOARD_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		logger:      slog.Default(),
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}, nil
}

// SetLogger replaces the client logger
func (c *Client) SetLogger(l *slog.Logger) {
	if c == nil || l == nil {
		return
	}
	c.logger = l
}

// Connect dials the daemon socket and re-sends the current subscription
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)
	// Sequences are per daemon process; a restarted daemon counts from 1 again
	c.lastSequence = 0

	msg := Message{
		Version:   ProtocolVersion,
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{BoardID: c.currentBoardID},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			c.logger.Error("error closing connection", "error", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	if !c.started {
		c.started = true
		go c.startBatcher()
	}

	return nil
}

// SendEvent queues an event to be sent to the daemon.
// Returns an error if the queue is full (non-blocking send).
func (c *Client) SendEvent(event Event) (err error) {
	if c == nil {
		return ErrNilClient
	}
	defer func() {
		// sending on the queue after Close
		if recover() != nil {
			err = errors.New("event client closed")
		}
	}()
	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// startBatcher drains the queue and flushes once per debounce window.
// Identical events (same type, board and proposal) inside a window are sent
// once, carrying the highest version seen.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	var order []string
	pending := make(map[string]Event)

	add := func(e Event) {
		k := e.key()
		prev, seen := pending[k]
		if !seen {
			order = append(order, k)
		} else if prev.Version > e.Version {
			e.Version = prev.Version
		}
		pending[k] = e
	}

	flushPending := func() {
		for _, k := range order {
			if err := c.sendToSocket(pending[k]); err != nil && !isConnectionError(err) {
				c.logger.Error("failed to send batched event", "error", err)
			}
		}
		order = order[:0]
		clear(pending)
	}

	for {
		select {
		case <-c.ctx.Done():
			flushPending()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flushPending()
				return
			}
			add(event)

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket writes one event message to the daemon
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	// Short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	msgType := MessageEvent
	if event.Type == EventPong {
		msgType = MessagePong
	}
	return c.encoder.Encode(Message{Version: ProtocolVersion, Type: msgType, Event: &event})
}

// Listen returns a channel of events from the daemon. It reconnects on
// connection loss and closes the channel when ctx is done or reconnection
// gives up.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	if c == nil {
		close(eventChan)
		return eventChan, ErrNilClient
	}
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.readEvents(ctx, eventChan)
		if err == nil || ctx.Err() != nil {
			return
		}
		c.logger.Warn("connection lost, reconnecting", "error", err)

		if !c.reconnect(ctx) {
			c.logger.Error("failed to reconnect, giving up", "attempts", c.maxRetries)
			return
		}
		c.logger.Info("reconnected to daemon")
	}
}

// readEvents reads messages from the socket and forwards events
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return fmt.Errorf("connection closed")
		}
		// Detect hung connections; the daemon pings every 30s
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case MessageEvent:
			if msg.Event == nil {
				continue
			}
			// Drop duplicates and replays on this connection
			if msg.Event.SequenceID != 0 && msg.Event.SequenceID <= c.lastSequence {
				continue
			}
			c.lastSequence = max(c.lastSequence, msg.Event.SequenceID)
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}

		case MessagePing:
			if err := c.sendToSocket(Event{Type: EventPong, Timestamp: time.Now()}); err != nil && !isConnectionError(err) {
				c.logger.Error("failed to send pong", "error", err)
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "not connected to daemon")
}

// reconnect redials with exponential backoff, doubling from baseDelay
func (c *Client) reconnect(ctx context.Context) bool {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.baseDelay
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return backoff.Permanent(errors.New("client closed"))
		}
		if c.conn != nil {
			_ = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()

		if err := c.Connect(ctx); err != nil {
			c.logger.Debug("reconnection attempt failed", "attempt", attempt, "error", err)
			return err
		}
		return nil
	}, policy)
	return err == nil
}

// Subscribe narrows delivery to one board. "" means all boards.
func (c *Client) Subscribe(boardID types.BoardID) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentBoardID = boardID

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	return c.encoder.Encode(Message{
		Version:   ProtocolVersion,
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{BoardID: boardID},
	})
}

// Close flushes pending events, closes the connection and stops all goroutines.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.eventQueue)
	started := c.started
	c.mu.Unlock()

	if started {
		// batcher flushes whatever is pending before it exits
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
