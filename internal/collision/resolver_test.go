package collision

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/propboard/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type fakeContainer struct {
	scroll      float64
	viewport    Rect
	scrollErr   error
	viewportErr error
	panics      bool
}

func (f *fakeContainer) ScrollLeft() (float64, error) {
	if f.panics {
		panic("container detached")
	}
	return f.scroll, f.scrollErr
}

func (f *fakeContainer) ViewportRect() (Rect, error) {
	return f.viewport, f.viewportErr
}

func quietResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// columns lays out n columns of width 200 with a 10px gap, scrolled by scroll
func columns(n int, scroll, viewportWidth float64) []Droppable {
	out := make([]Droppable, n)
	for i := range out {
		offset := float64(i) * 210
		left := offset - scroll
		out[i] = Droppable{
			ID:         types.ColumnID(string(rune('a' + i))),
			Index:      i,
			Rect:       Rect{Left: left, Top: 0, Width: 200, Height: 600},
			OffsetLeft: offset,
			Visible:    left+200 > 0 && left < viewportWidth,
		}
	}
	return out
}

// ============================================================================
// FAST PATH
// ============================================================================

func TestResolve_PointerWithinVisibleColumn(t *testing.T) {
	in := Input{
		Pointer:   Point{X: 250, Y: 100},
		Targets:   columns(4, 0, 800),
		Container: &fakeContainer{viewport: Rect{Width: 800, Height: 600}},
	}

	res := quietResolver().Resolve(in)
	id, ok := res.Target()
	require.True(t, ok)
	assert.Equal(t, types.ColumnID("b"), id)
	assert.Equal(t, StrategyFast, res.Strategy)
}

func TestResolve_OverlappingTargetsCloserCenterWins(t *testing.T) {
	targets := []Droppable{
		{ID: "wide", Index: 0, Rect: Rect{Left: 0, Top: 0, Width: 400, Height: 400}, Visible: true},
		{ID: "narrow", Index: 1, Rect: Rect{Left: 280, Top: 0, Width: 100, Height: 400}, Visible: true},
	}
	res := quietResolver().Resolve(Input{Pointer: Point{X: 330, Y: 200}, Targets: targets})

	assert.Equal(t, []types.ColumnID{"narrow", "wide"}, res.Candidates)
}

func TestResolve_EqualDistanceTieBreaksByIndex(t *testing.T) {
	targets := []Droppable{
		{ID: "second", Index: 1, Rect: Rect{Left: 0, Width: 100, Height: 100}, Visible: true},
		{ID: "first", Index: 0, Rect: Rect{Left: 0, Width: 100, Height: 100}, Visible: true},
	}
	res := quietResolver().Resolve(Input{Pointer: Point{X: 10, Y: 10}, Targets: targets})

	assert.Equal(t, []types.ColumnID{"first", "second"}, res.Candidates)
}

func TestResolve_HiddenTargetsSkippedOnFastPath(t *testing.T) {
	targets := []Droppable{
		{ID: "hidden", Index: 0, Rect: Rect{Left: 0, Width: 100, Height: 100}, OffsetLeft: 1000, Visible: false},
		{ID: "shown", Index: 1, Rect: Rect{Left: 200, Width: 100, Height: 100}, OffsetLeft: 200, Visible: true},
	}
	res := quietResolver().Resolve(Input{
		Pointer:   Point{X: 50, Y: 50},
		Targets:   targets,
		Container: &fakeContainer{viewport: Rect{Width: 800, Height: 600}},
	})
	assert.NotEqual(t, StrategyFast, res.Strategy)
}

// ============================================================================
// SCROLL-AWARE FALLBACK
// ============================================================================

func TestResolve_OffscreenColumnViaScrollOffset(t *testing.T) {
	// Rects are stale (captured before scrolling) so no visible rect holds
	// the pointer; content-space bounds [420,620] do.
	targets := []Droppable{
		{ID: "intake", Index: 0, Rect: Rect{Left: 0, Width: 200, Height: 600}, OffsetLeft: 0},
		{ID: "qualify", Index: 1, Rect: Rect{Left: 210, Width: 200, Height: 600}, OffsetLeft: 210},
		{ID: "review", Index: 2, Rect: Rect{Left: 420, Width: 200, Height: 600}, OffsetLeft: 420},
	}
	in := Input{
		Pointer:   Point{X: 50, Y: 300},
		Targets:   targets,
		Container: &fakeContainer{scroll: 400, viewport: Rect{Left: 0, Width: 600, Height: 600}},
	}

	res := quietResolver().Resolve(in)
	id, ok := res.Target()
	require.True(t, ok)
	assert.Equal(t, types.ColumnID("review"), id)
	assert.Equal(t, StrategyScroll, res.Strategy)
}

func TestResolve_ScrollAwareHonorsViewportLeft(t *testing.T) {
	targets := []Droppable{
		{ID: "a", Index: 0, Rect: Rect{Width: 200, Height: 10}, OffsetLeft: 0},
		{ID: "b", Index: 1, Rect: Rect{Width: 200, Height: 10}, OffsetLeft: 300},
	}
	in := Input{
		Pointer:   Point{X: 150, Y: 50},
		Targets:   targets,
		Container: &fakeContainer{scroll: 200, viewport: Rect{Left: 40}},
	}
	// 150 - 40 + 200 = 310
	assert.Equal(t, types.ColumnID("b"), quietResolver().Resolve(in).Candidates[0])
}

// ============================================================================
// GEOMETRY FAILURES
// ============================================================================

func TestResolve_GeometryFailuresFallBack(t *testing.T) {
	targets := []Droppable{
		{ID: "left", Index: 0, Rect: Rect{Left: 0, Top: 0, Width: 200, Height: 600}},
		{ID: "right", Index: 1, Rect: Rect{Left: 210, Top: 0, Width: 200, Height: 600}},
	}

	containers := map[string]ScrollContainer{
		"nil container":  nil,
		"scroll error":   &fakeContainer{scrollErr: errors.New("not mounted")},
		"viewport error": &fakeContainer{viewportErr: errors.New("detached")},
		"panic":          &fakeContainer{panics: true},
	}

	for name, container := range containers {
		t.Run(name, func(t *testing.T) {
			in := Input{
				Pointer:   Point{X: 300, Y: 50},
				Active:    Rect{Left: 250, Top: 20, Width: 100, Height: 60},
				Targets:   targets,
				Container: container,
			}
			var res Result
			require.NotPanics(t, func() { res = quietResolver().Resolve(in) })
			assert.Equal(t, StrategyCoarse, res.Strategy)
			assert.Equal(t, types.ColumnID("right"), res.Candidates[0])
		})
	}
}

func TestResolve_ClosestCenterWhenNothingOverlaps(t *testing.T) {
	targets := []Droppable{
		{ID: "near", Index: 0, Rect: Rect{Left: 0, Top: 0, Width: 100, Height: 100}},
		{ID: "far", Index: 1, Rect: Rect{Left: 1000, Top: 0, Width: 100, Height: 100}},
	}
	res := quietResolver().Resolve(Input{
		Pointer:   Point{X: 300, Y: 900},
		Targets:   targets,
		Container: &fakeContainer{panics: true},
	})

	assert.Equal(t, StrategyCenter, res.Strategy)
	assert.Equal(t, []types.ColumnID{"near", "far"}, res.Candidates)
}

func TestResolve_NoTargets(t *testing.T) {
	res := NewResolver(nil).Resolve(Input{Pointer: Point{X: 1, Y: 1}})
	_, ok := res.Target()
	assert.False(t, ok)
	assert.Equal(t, StrategyNone, res.Strategy)
}

func TestRect_IntersectionRatio(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Width: 10, Height: 10}

	assert.InDelta(t, 1.0, a.IntersectionRatio(a), 1e-9)
	assert.InDelta(t, 0.0, a.IntersectionRatio(Rect{Left: 20, Width: 5, Height: 5}), 1e-9)
	// 5x10 overlap over a 150 union
	assert.InDelta(t, 50.0/150.0, a.IntersectionRatio(Rect{Left: 5, Width: 10, Height: 10}), 1e-9)
}
