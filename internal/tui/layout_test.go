package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/propboard/internal/collision"
	"github.com/thenoetrevino/propboard/internal/database"
	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/testutil"
	"github.com/thenoetrevino/propboard/internal/tui/state"
	"github.com/thenoetrevino/propboard/internal/types"
)

func TestCardAt(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Alpha", nil)
		testutil.CreateTestProposal(t, repo, "board-1", "Bravo", nil)
	})

	tests := []struct {
		name    string
		x, y    int
		wantOK  bool
		wantCol int
		wantIdx int
	}{
		{"first card top border", 10, 5, true, 0, 0},
		{"first card bottom border", 10, 8, true, 0, 0},
		{"second card", 10, 9, true, 0, 1},
		{"below the last card", 10, 13, false, 0, 0},
		{"column title", 10, 3, false, 0, 0},
		{"left indicator", 1, 6, false, 0, 0},
		{"gap between columns", 32, 6, false, 0, 0},
		{"empty column", 45, 6, false, 0, 0},
		{"past the last visible column", 70, 6, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, idx, ok := m.cardAt(tt.x, tt.y)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantCol, col)
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestCardAt_ScrolledViewport(t *testing.T) {
	m, _ := setupTestModel(t, "user", func(repo *database.Repository) {
		testutil.CreateTestProposal(t, repo, "board-1", "Sent", func(p *models.Proposal) {
			p.Status = "submitted"
		})
	})
	m.uiState.SetViewportOffset(2)

	col, idx, ok := m.cardAt(45, 6)
	require.True(t, ok, "the second visible slot is column 3 once scrolled")
	assert.Equal(t, 3, col)
	assert.Equal(t, 0, idx)
}

func TestDroppables(t *testing.T) {
	m, _ := setupTestModel(t, "user", nil)
	m.uiState.SetViewportOffset(1)

	targets := m.droppables()
	require.Len(t, targets, 4)

	assert.Equal(t, types.ColumnID("intake"), targets[0].ID)
	assert.False(t, targets[0].Visible)
	assert.Equal(t, float64(state.BoardLeft-state.ColumnStride), targets[0].Rect.Left, "hidden columns keep their would-be position")

	assert.True(t, targets[1].Visible)
	assert.Equal(t, float64(state.BoardLeft), targets[1].Rect.Left)
	assert.True(t, targets[2].Visible)
	assert.False(t, targets[3].Visible)

	for i, target := range targets {
		assert.Equal(t, float64(i*state.ColumnStride), target.OffsetLeft)
		assert.Equal(t, i, target.Index)
	}
}

func TestBoardScroll(t *testing.T) {
	ui := state.NewUIState()
	scroll := boardScroll{ui: ui}

	_, err := scroll.ViewportRect()
	assert.ErrorIs(t, err, errNotLaidOut)

	ui.SetSize(80, 30)
	ui.SetViewportOffset(1)

	left, err := scroll.ScrollLeft()
	require.NoError(t, err)
	assert.Equal(t, float64(state.ColumnStride), left)

	rect, err := scroll.ViewportRect()
	require.NoError(t, err)
	assert.Equal(t, collision.Rect{Left: 2, Top: 2, Width: 61, Height: 26}, rect)
}

// Before the first resize the viewport cannot be measured, so hidden columns
// are resolved by the coarse fallback instead of the scroll-aware pass.
func TestDragInput_ResolvesWithoutLayout(t *testing.T) {
	m, _ := setupTestModel(t, "user", nil)
	m.uiState.SetSize(0, 0)
	m.uiState.SetViewportOffset(0)

	in := m.dragInput(70, 10)
	res := collision.NewResolver(nil).Resolve(in)

	target, ok := res.Target()
	require.True(t, ok)
	assert.Equal(t, types.ColumnID("red-team"), target)
	assert.Equal(t, collision.StrategyCoarse, res.Strategy)
}
