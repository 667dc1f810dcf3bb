package events

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

type mockDaemon struct {
	socketPath string
	received   chan Message
	conns      chan net.Conn
}

// setupMockDaemon creates a simple mock daemon server for testing
func setupMockDaemon(t *testing.T) *mockDaemon {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "test.sock")
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	})

	d := &mockDaemon{
		socketPath: socketPath,
		received:   make(chan Message, 32),
		conns:      make(chan net.Conn, 4),
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			d.conns <- conn
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				decoder := json.NewDecoder(c)
				for {
					var msg Message
					if err := decoder.Decode(&msg); err != nil {
						return
					}
					select {
					case d.received <- msg:
					default:
					}
				}
			}(conn)
		}
	}()

	return d
}

func (d *mockDaemon) next(t *testing.T) Message {
	t.Helper()
	select {
	case msg := <-d.received:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func newTestClient(t *testing.T, socketPath string) *Client {
	t.Helper()
	t.Setenv("PROPBOARD_EVENT_DEBOUNCE_MS", "20")
	client, err := NewClient(socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ============================================================================
// Tests
// ============================================================================

func TestNewClient_CustomDebounce(t *testing.T) {
	t.Setenv("PROPBOARD_EVENT_DEBOUNCE_MS", "250")

	client, err := NewClient(filepath.Join(t.TempDir(), "propboard.sock"))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	assert.Equal(t, 250*time.Millisecond, client.debounce)
}

func TestClient_ConnectSendsSubscription(t *testing.T) {
	d := setupMockDaemon(t)
	client := newTestClient(t, d.socketPath)

	require.NoError(t, client.Connect(context.Background()))

	msg := d.next(t)
	assert.Equal(t, MessageSubscribe, msg.Type)
	assert.Equal(t, ProtocolVersion, msg.Version)
	require.NotNil(t, msg.Subscribe)
	assert.Empty(t, msg.Subscribe.BoardID)

	require.NoError(t, client.Subscribe("board-9"))
	msg = d.next(t)
	assert.Equal(t, "board-9", string(msg.Subscribe.BoardID))
}

func TestClient_BatchesIdenticalEvents(t *testing.T) {
	d := setupMockDaemon(t)
	client := newTestClient(t, d.socketPath)
	// wide window so all three sends land in one batch
	client.debounce = 300 * time.Millisecond
	require.NoError(t, client.Connect(context.Background()))
	d.next(t) // subscription

	require.NoError(t, client.SendEvent(ProposalChanged("b", "p1", 2)))
	require.NoError(t, client.SendEvent(ProposalChanged("b", "p1", 3)))
	require.NoError(t, client.SendEvent(ProposalChanged("b", "p2", 1)))

	got := map[string]int64{}
	for i := 0; i < 2; i++ {
		msg := d.next(t)
		require.Equal(t, MessageEvent, msg.Type)
		got[string(msg.Event.ProposalID)] = msg.Event.Version
	}
	assert.Equal(t, map[string]int64{"p1": 3, "p2": 1}, got)

	select {
	case extra := <-d.received:
		t.Fatalf("unexpected extra message: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_ListenForwardsAndDropsReplays(t *testing.T) {
	d := setupMockDaemon(t)
	client := newTestClient(t, d.socketPath)
	require.NoError(t, client.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := client.Listen(ctx)
	require.NoError(t, err)

	conn := <-d.conns
	enc := json.NewEncoder(conn)
	for _, seq := range []int64{1, 2, 2, 1, 3} {
		e := BoardChanged("b", seq)
		e.SequenceID = seq
		require.NoError(t, enc.Encode(Message{Version: ProtocolVersion, Type: MessageEvent, Event: &e}))
	}

	var seqs []int64
	for len(seqs) < 3 {
		select {
		case e := <-ch:
			seqs = append(seqs, e.SequenceID)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", seqs)
		}
	}
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

// A restarted daemon numbers its events from 1 again; the client must not
// mistake them for replays of the previous connection.
func TestClient_ReconnectAfterDaemonRestart(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "restart.sock")
	serve := func() net.Listener {
		listener, err := (&net.ListenConfig{}).Listen(context.Background(), "unix", socketPath)
		require.NoError(t, err)
		return listener
	}
	accept := func(listener net.Listener) net.Conn {
		conn, err := listener.Accept()
		require.NoError(t, err)
		go func() {
			// drain subscribe messages and pongs
			decoder := json.NewDecoder(conn)
			for {
				var msg Message
				if decoder.Decode(&msg) != nil {
					return
				}
			}
		}()
		return conn
	}
	send := func(conn net.Conn, seqs ...int64) {
		enc := json.NewEncoder(conn)
		for _, seq := range seqs {
			e := BoardChanged("b", seq)
			e.SequenceID = seq
			require.NoError(t, enc.Encode(Message{Version: ProtocolVersion, Type: MessageEvent, Event: &e}))
		}
	}
	receive := func(ch <-chan Event, n int) []int64 {
		var seqs []int64
		for len(seqs) < n {
			select {
			case e, ok := <-ch:
				require.True(t, ok, "listener stopped, got %v", seqs)
				seqs = append(seqs, e.SequenceID)
			case <-time.After(3 * time.Second):
				t.Fatalf("timed out, got %v", seqs)
			}
		}
		return seqs
	}

	first := serve()
	client := newTestClient(t, socketPath)
	client.baseDelay = 10 * time.Millisecond
	require.NoError(t, client.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := client.Listen(ctx)
	require.NoError(t, err)

	conn := accept(first)
	send(conn, 1, 2, 3, 4, 5)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, receive(ch, 5))

	// restart: same socket path, fresh counter
	_ = first.Close()
	_ = conn.Close()
	_ = os.Remove(socketPath)
	second := serve()
	t.Cleanup(func() { _ = second.Close() })

	conn = accept(second)
	t.Cleanup(func() { _ = conn.Close() })
	send(conn, 1, 2, 3)
	assert.Equal(t, []int64{1, 2, 3}, receive(ch, 3))
}

func TestClient_RespondsToPing(t *testing.T) {
	d := setupMockDaemon(t)
	client := newTestClient(t, d.socketPath)
	require.NoError(t, client.Connect(context.Background()))
	d.next(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := client.Listen(ctx)
	require.NoError(t, err)

	conn := <-d.conns
	require.NoError(t, json.NewEncoder(conn).Encode(Message{Version: ProtocolVersion, Type: MessagePing}))

	msg := d.next(t)
	assert.Equal(t, MessagePong, msg.Type)
}

func TestClient_CloseWithoutConnect(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "none.sock"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close blocked without a connection")
	}
	assert.Error(t, client.SendEvent(Event{Type: EventBoardChanged}))
	assert.NoError(t, client.Close())
}

func TestClient_ConnectFailsWithoutDaemon(t *testing.T) {
	client := newTestClient(t, filepath.Join(t.TempDir(), "missing.sock"))
	err := client.Connect(context.Background())
	require.Error(t, err)

	derr := ClassifyDaemonError(err)
	require.NotNil(t, derr)
	assert.NotEmpty(t, derr.Hint)
}
