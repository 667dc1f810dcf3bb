package gesture

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

type drop struct {
	proposal types.ProposalID
	target   types.ColumnID
}

func newTestController(err error) (*Controller, *[]drop) {
	var drops []drop
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewController(collision.NewResolver(logger), func(p types.ProposalID, target types.ColumnID) error {
		drops = append(drops, drop{p, target})
		return err
	}, logger)
	return c, &drops
}

func frame(x float64) collision.Input {
	return collision.Input{
		Pointer: collision.Point{X: x, Y: 10},
		Targets: []collision.Droppable{
			{ID: "intake", Index: 0, Rect: collision.Rect{Left: 0, Width: 100, Height: 100}, Visible: true},
			{ID: "review", Index: 1, Rect: collision.Rect{Left: 110, Width: 100, Height: 100}, OffsetLeft: 110, Visible: true},
		},
	}
}

func TestController_DropCommitsOnce(t *testing.T) {
	c, drops := newTestController(nil)

	require.NoError(t, c.Start("p1", "intake"))
	for _, x := range []float64{10, 60, 120, 150} {
		_, err := c.Update(frame(x))
		require.NoError(t, err)
	}
	assert.Empty(t, *drops, "updates must never commit")

	over, ok := c.Over()
	require.True(t, ok)
	assert.Equal(t, types.ColumnID("review"), over)

	out, err := c.End()
	require.NoError(t, err)
	assert.True(t, out.Dropped)
	assert.Equal(t, []drop{{"p1", "review"}}, *drops)
	assert.False(t, c.Dragging())
}

func TestController_DropOnOriginIsNoOp(t *testing.T) {
	c, drops := newTestController(nil)

	require.NoError(t, c.Start("p1", "intake"))
	_, _ = c.Update(frame(20))

	out, err := c.End()
	require.NoError(t, err)
	assert.False(t, out.Dropped)
	assert.Empty(t, *drops)
}

func TestController_CancelHasNoSideEffects(t *testing.T) {
	c, drops := newTestController(nil)

	require.NoError(t, c.Start("p1", "intake"))
	_, _ = c.Update(frame(150))
	c.Cancel()

	assert.False(t, c.Dragging())
	assert.Empty(t, *drops)
	_, err := c.End()
	assert.ErrorIs(t, err, ErrNotDragging)
}

func TestController_ForbiddenDropReturnsCard(t *testing.T) {
	c, drops := newTestController(models.ErrForbidden)

	require.NoError(t, c.Start("p1", "intake"))
	_, _ = c.Update(frame(150))

	out, err := c.End()
	assert.True(t, errors.Is(err, models.ErrForbidden))
	assert.False(t, out.Dropped)
	assert.Len(t, *drops, 1)
	assert.False(t, c.Dragging())
}

func TestController_OpenJumpEndsDrag(t *testing.T) {
	c, drops := newTestController(nil)

	require.NoError(t, c.Start("p7", "intake"))
	_, _ = c.Update(frame(150))

	id, err := c.OpenJump()
	require.NoError(t, err)
	assert.Equal(t, types.ProposalID("p7"), id)
	assert.False(t, c.Dragging())
	assert.Empty(t, *drops)
}

func TestController_StateErrors(t *testing.T) {
	c, _ := newTestController(nil)

	_, err := c.Update(frame(0))
	assert.ErrorIs(t, err, ErrNotDragging)
	_, err = c.OpenJump()
	assert.ErrorIs(t, err, ErrNotDragging)

	require.NoError(t, c.Start("p1", "intake"))
	assert.ErrorIs(t, c.Start("p2", "intake"), ErrAlreadyDragging)
	assert.Equal(t, types.ProposalID("p1"), c.ProposalID())
	assert.Equal(t, types.ColumnID("intake"), c.Origin())
}
