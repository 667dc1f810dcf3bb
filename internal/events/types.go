package events

import (
	"time"

	"github.com/thenoetrevino/propboard/internal/types"
)

// ProtocolVersion is carried on every wire message
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBoardChanged    EventType = "board_changed"
	EventProposalChanged EventType = "proposal_changed"
	EventPing            EventType = "ping"
	EventPong            EventType = "pong"
)

// Event is a change notification. BoardID scopes delivery; ProposalID is
// empty for board-level changes.
type Event struct {
	Type       EventType        `json:"type"`
	BoardID    types.BoardID    `json:"board_id,omitempty"`
	ProposalID types.ProposalID `json:"proposal_id,omitempty"`
	// Version is the record version after the write that caused the event
	Version    int64     `json:"version,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	SequenceID int64     `json:"sequence_id,omitempty"` // Monotonically increasing, assigned by the daemon
}

// key identifies events the client batcher may coalesce
func (e Event) key() string {
	return string(e.Type) + "|" + string(e.BoardID) + "|" + string(e.ProposalID)
}

// ProposalChanged builds the event published after a proposal write
func ProposalChanged(boardID types.BoardID, proposalID types.ProposalID, version int64) Event {
	return Event{
		Type:       EventProposalChanged,
		BoardID:    boardID,
		ProposalID: proposalID,
		Version:    version,
		Timestamp:  time.Now(),
	}
}

// BoardChanged builds the event published after a board definition write
func BoardChanged(boardID types.BoardID, version int64) Event {
	return Event{
		Type:      EventBoardChanged,
		BoardID:   boardID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// SubscribeMessage is sent by clients to subscribe to a board's updates
type SubscribeMessage struct {
	BoardID types.BoardID `json:"board_id"` // "" = all boards
}

// Wire message types
const (
	MessageEvent     = "event"
	MessageSubscribe = "subscribe"
	MessagePing      = "ping"
	MessagePong      = "pong"
)

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:"version"`
	Type      string            `json:"type"`
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}
