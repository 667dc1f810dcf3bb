package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/propboard/internal/events"
)

// client represents a connected client to the daemon
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	mu           sync.Mutex // Protects subscription and lastPong
	closeOnce    sync.Once  // Ensures send channel is closed only once
}

// wants reports whether the client's subscription covers the event.
// An empty board id on either side means all boards.
func (c *client) wants(event events.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return event.BoardID == "" || c.subscription.BoardID == "" || c.subscription.BoardID == event.BoardID
}

// Server is the propboard event daemon. It fans change events out to every
// client subscribed to the affected board.
type Server struct {
	socketPath       string
	listener         net.Listener
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan events.Event
	metrics          *Metrics
	logger           *slog.Logger
	sequenceCounter  atomic.Int64
	clientBufferSize int
	shutdownOnce     sync.Once

	pingInterval time.Duration
	staleAfter   time.Duration
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates a new daemon server listening on socketPath.
// Buffer sizes come from PROPBOARD_DAEMON_BROADCAST_BUFFER and
// PROPBOARD_DAEMON_CLIENT_BUFFER.
func NewServer(socketPath string) (*Server, error) {
	dir := filepath.Dir(socketPath)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// Remove stale socket file if it exists
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		socketPath:       socketPath,
		listener:         listener,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan events.Event, getEnvInt("PROPBOARD_DAEMON_BROADCAST_BUFFER", 100)),
		metrics:          NewMetrics(),
		logger:           slog.Default(),
		clientBufferSize: getEnvInt("PROPBOARD_DAEMON_CLIENT_BUFFER", 10),
		pingInterval:     30 * time.Second,
		staleAfter:       90 * time.Second,
	}, nil
}

// SetLogger replaces the server logger. Call before Start.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Metrics returns the server's metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start runs the daemon until ctx is cancelled or Shutdown is called.
// It starts three goroutines: accept, broadcast, and health monitoring.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("daemon starting", "socket", s.socketPath)

	combinedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-s.ctx.Done()
		cancel()
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(combinedCtx)
	}()

	go s.broadcastLoop(combinedCtx)
	go s.monitorHealth(combinedCtx)

	select {
	case <-combinedCtx.Done():
		s.logger.Info("daemon context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			s.logger.Error("accept loop failed", "error", err)
		}
	}

	return s.Shutdown()
}

// ServeMetrics exposes /metrics on addr until ctx is done
func (s *Server) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Deadline so cancellation is noticed
		if ul, ok := s.listener.(*net.UnixListener); ok {
			if err := ul.SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
				s.logger.Warn("failed to set listener deadline", "error", err)
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		s.logger.Debug("client connected", "clients", s.getClientCount())

		go s.handleClient(c)
		go s.clientWriter(c)
	}
}

// broadcastLoop stamps sequence ids and distributes events to subscribers
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)
			s.metrics.IncRefreshesTotal()

			msg := events.Message{
				Version: events.ProtocolVersion,
				Type:    events.MessageEvent,
				Event:   &event,
			}

			s.mu.RLock()
			for c := range s.clients {
				if !c.wants(event) {
					continue
				}
				// Slow clients miss events; they resync on the next one
				if !s.sendToClient(c, msg) {
					s.metrics.IncEventsDropped()
					s.logger.Warn("client send queue full, event dropped",
						"board_id", event.BoardID,
						"sequence", event.SequenceID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		s.logger.Debug("client disconnected", "clients", s.getClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch",
				"got", msg.Version,
				"want", events.ProtocolVersion)
		}

		switch msg.Type {
		case events.MessageEvent:
			if msg.Event == nil {
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Event); err != nil {
				s.metrics.IncEventsDropped()
				s.logger.Warn("dropping client event", "error", err)
			}

		case events.MessageSubscribe:
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.mu.Unlock()
				s.logger.Debug("client subscribed", "board_id", msg.Subscribe.BoardID)
			}

		case events.MessagePong:
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

func (s *Server) snapshotClients() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

// monitorHealth pings clients and drops the ones that stopped answering
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	ping := events.Message{
		Version: events.ProtocolVersion,
		Type:    events.MessagePing,
		Event:   &events.Event{Type: events.EventPing},
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()
			for _, c := range s.snapshotClients() {
				c.mu.Lock()
				lastPong := c.lastPong
				c.mu.Unlock()

				if now.Sub(lastPong) > s.staleAfter {
					s.logger.Info("removing stale client", "silent_for", now.Sub(lastPong).Round(time.Second))
					s.removeClient(c)
					continue
				}
				if !s.sendToClient(c, ping) {
					s.logger.Debug("failed to ping client, queue full")
				}
			}
		}
	}
}

// Broadcast queues an event for fan-out (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("daemon shut down")
	default:
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	return s.getClientCount()
}

// Shutdown closes the listener and every client connection and removes the
// socket file. Safe to call more than once.
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("error closing listener", "error", err)
			}
		}

		s.mu.Lock()
		for c := range s.clients {
			_ = c.conn.Close()
			c.closeOnce.Do(func() {
				close(c.send)
			})
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()
		s.updateClientCount()

		if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove socket file", "error", err)
		}
	})
	return nil
}

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("error closing client connection", "error", err)
	}
	c.closeOnce.Do(func() {
		close(c.send)
	})

	s.updateClientCount()
}

// sendToClient attempts to send a message to a client (non-blocking).
// Returns false if the queue is full or the client is gone.
func (s *Server) sendToClient(c *client, msg events.Message) (ok bool) {
	defer func() {
		// send channel closed by a concurrent removeClient
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
