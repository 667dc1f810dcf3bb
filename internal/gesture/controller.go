// Package gesture tracks a single card drag from press to drop. Only End
// commits anything, and it does so through the drop callback.
package gesture

import (
	"errors"
	"log/slog"

	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/types"
)

var (
	// ErrNotDragging is returned when a gesture call needs an active drag
	ErrNotDragging = errors.New("no drag in progress")
	// ErrAlreadyDragging is returned by Start while another drag is active
	ErrAlreadyDragging = errors.New("a drag is already in progress")
)

// Phase is the controller state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
)

// DropFunc commits a drop. It is called at most once per gesture.
type DropFunc func(proposalID types.ProposalID, target types.ColumnID) error

// Outcome describes how a gesture ended
type Outcome struct {
	ProposalID types.ProposalID
	Origin     types.ColumnID
	Target     types.ColumnID
	// Dropped is true when the drop callback ran and succeeded
	Dropped bool
}

// Controller owns one drag gesture at a time
type Controller struct {
	resolver *collision.Resolver
	onDrop   DropFunc
	logger   *slog.Logger

	phase      Phase
	proposalID types.ProposalID
	origin     types.ColumnID
	last       collision.Result
}

// NewController creates a Controller. onDrop may be nil, in which case End
// reports the target without committing.
func NewController(resolver *collision.Resolver, onDrop DropFunc, logger *slog.Logger) *Controller {
	if resolver == nil {
		resolver = collision.NewResolver(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{resolver: resolver, onDrop: onDrop, logger: logger}
}

// Start begins dragging the proposal out of its origin column
func (c *Controller) Start(proposalID types.ProposalID, origin types.ColumnID) error {
	if c.phase == PhaseDragging {
		return ErrAlreadyDragging
	}
	c.phase = PhaseDragging
	c.proposalID = proposalID
	c.origin = origin
	c.last = collision.Result{}
	return nil
}

// Update resolves the column under the pointer for one frame
func (c *Controller) Update(in collision.Input) (collision.Result, error) {
	if c.phase != PhaseDragging {
		return collision.Result{}, ErrNotDragging
	}
	c.last = c.resolver.Resolve(in)
	return c.last, nil
}

// Over returns the current hover target
func (c *Controller) Over() (types.ColumnID, bool) {
	if c.phase != PhaseDragging {
		return "", false
	}
	return c.last.Target()
}

// Dragging reports whether a gesture is active
func (c *Controller) Dragging() bool {
	return c.phase == PhaseDragging
}

// ProposalID returns the proposal being dragged
func (c *Controller) ProposalID() types.ProposalID {
	return c.proposalID
}

// Origin returns the column the drag started from
func (c *Controller) Origin() types.ColumnID {
	return c.origin
}

// End drops the card on the last resolved target. Dropping back onto the
// origin, or with no target, ends the gesture without calling onDrop. An
// error from onDrop is returned as is; the gesture is over either way and the
// card goes back to where the store says it is.
func (c *Controller) End() (Outcome, error) {
	if c.phase != PhaseDragging {
		return Outcome{}, ErrNotDragging
	}
	out := Outcome{ProposalID: c.proposalID, Origin: c.origin}
	target, ok := c.last.Target()
	c.reset()

	if !ok || target == out.Origin {
		return out, nil
	}
	out.Target = target
	if c.onDrop == nil {
		return out, nil
	}
	if err := c.onDrop(out.ProposalID, target); err != nil {
		c.logger.Info("drop rejected",
			"proposal_id", out.ProposalID,
			"target", target,
			"error", err)
		return out, err
	}
	out.Dropped = true
	return out, nil
}

// Cancel abandons the gesture with no side effects
func (c *Controller) Cancel() {
	c.reset()
}

// OpenJump abandons the drag and hands its proposal to the jump selector
func (c *Controller) OpenJump() (types.ProposalID, error) {
	if c.phase != PhaseDragging {
		return "", ErrNotDragging
	}
	id := c.proposalID
	c.reset()
	return id, nil
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.proposalID = ""
	c.origin = ""
	c.last = collision.Result{}
}
