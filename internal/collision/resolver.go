package collision

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/thenoetrevino/propboard/internal/models"
	"github.com/thenoetrevino/propboard/internal/types"
)

// Droppable is a column that can receive a card
type Droppable struct {
	ID types.ColumnID
	// Index is the column's position on the board; it breaks ties
	Index int
	// Rect is the column's current position in viewport coordinates. It is
	// meaningless for columns scrolled out of view.
	Rect Rect
	// OffsetLeft is the column's left edge in scroll-content coordinates
	OffsetLeft float64
	// Visible is false when the column is scrolled out of the viewport
	Visible bool
}

// ScrollContainer exposes the horizontal scroll state of the board. Either
// method may fail while the board is being laid out.
type ScrollContainer interface {
	ScrollLeft() (float64, error)
	ViewportRect() (Rect, error)
}

// Input is one drag frame
type Input struct {
	Pointer Point
	// Active is the dragged card's rectangle, used by the coarse fallback.
	// When empty a unit square around the pointer is used.
	Active    Rect
	Targets   []Droppable
	Container ScrollContainer
}

// Strategy names the stage that produced a result
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyFast   Strategy = "pointer_within"
	StrategyScroll Strategy = "scroll_aware"
	StrategyCoarse Strategy = "rect_intersection"
	StrategyCenter Strategy = "closest_center"
)

// Result is the ordered candidate list for a frame; the first entry is the target
type Result struct {
	Candidates []types.ColumnID
	Strategy   Strategy
}

// Target returns the best candidate
func (r Result) Target() (types.ColumnID, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	return r.Candidates[0], true
}

// Resolver maps pointer position and scroll offset to candidate columns
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger uses slog.Default().
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

type scored struct {
	id    types.ColumnID
	index int
	score float64
}

// ranked orders ascending by score, ties broken by column index
func ranked(items []scored) []types.ColumnID {
	slices.SortStableFunc(items, func(a, b scored) int {
		switch {
		case a.score < b.score:
			return -1
		case a.score > b.score:
			return 1
		}
		return a.index - b.index
	})
	ids := make([]types.ColumnID, len(items))
	for i, item := range items {
		ids[i] = item.id
	}
	return ids
}

// Resolve returns candidates for one drag frame. As long as at least one
// target exists the result is never empty, whatever state the scroll
// container is in.
func (r *Resolver) Resolve(in Input) Result {
	if len(in.Targets) == 0 {
		return Result{Strategy: StrategyNone}
	}

	if ids := pointerWithin(in); len(ids) > 0 {
		return Result{Candidates: ids, Strategy: StrategyFast}
	}

	ids, err := r.scrollAware(in)
	if err != nil {
		r.log().Warn("scroll-aware collision failed, using coarse fallback",
			"error", err,
			"targets", len(in.Targets))
	} else if len(ids) > 0 {
		return Result{Candidates: ids, Strategy: StrategyScroll}
	}

	if ids := rectIntersection(in); len(ids) > 0 {
		return Result{Candidates: ids, Strategy: StrategyCoarse}
	}
	return Result{Candidates: closestCenter(in), Strategy: StrategyCenter}
}

func (r *Resolver) log() *slog.Logger {
	if r == nil || r.logger == nil {
		return slog.Default()
	}
	return r.logger
}

// pointerWithin tests the pointer against visible targets' viewport rects
func pointerWithin(in Input) []types.ColumnID {
	var hits []scored
	for _, t := range in.Targets {
		if !t.Visible || !t.Rect.Contains(in.Pointer) {
			continue
		}
		hits = append(hits, scored{id: t.ID, index: t.Index, score: distance(in.Pointer, t.Rect.Center())})
	}
	return ranked(hits)
}

// scrollAware translates the pointer into content space and tests each
// target's content-space horizontal bounds. Panics from the container are
// turned into errors wrapping models.ErrGeometryFailure.
func (r *Resolver) scrollAware(in Input) (ids []types.ColumnID, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ids = nil
			err = fmt.Errorf("%w: panic: %v", models.ErrGeometryFailure, rec)
		}
	}()

	if in.Container == nil {
		return nil, fmt.Errorf("%w: no scroll container", models.ErrGeometryFailure)
	}
	scrollLeft, err := in.Container.ScrollLeft()
	if err != nil {
		return nil, fmt.Errorf("%w: scroll offset: %v", models.ErrGeometryFailure, err)
	}
	viewport, err := in.Container.ViewportRect()
	if err != nil {
		return nil, fmt.Errorf("%w: viewport: %v", models.ErrGeometryFailure, err)
	}
	if !finite(scrollLeft, viewport.Left, in.Pointer.X) {
		return nil, fmt.Errorf("%w: non-finite geometry", models.ErrGeometryFailure)
	}

	x := in.Pointer.X - viewport.Left + scrollLeft
	var hits []scored
	for _, t := range in.Targets {
		left := t.OffsetLeft
		right := t.OffsetLeft + t.Rect.Width
		if x < left || x > right {
			continue
		}
		hits = append(hits, scored{id: t.ID, index: t.Index, score: math.Abs(x - (left+right)/2)})
	}
	return ranked(hits), nil
}

func activeRect(in Input) Rect {
	if !in.Active.Empty() {
		return in.Active
	}
	return Rect{Left: in.Pointer.X - 0.5, Top: in.Pointer.Y - 0.5, Width: 1, Height: 1}
}

// rectIntersection orders targets by how much the dragged card overlaps them
func rectIntersection(in Input) []types.ColumnID {
	active := activeRect(in)
	var hits []scored
	for _, t := range in.Targets {
		ratio := active.IntersectionRatio(t.Rect)
		if ratio <= 0 || math.IsNaN(ratio) {
			continue
		}
		hits = append(hits, scored{id: t.ID, index: t.Index, score: -ratio})
	}
	return ranked(hits)
}

// closestCenter orders every target by distance from the card's center
func closestCenter(in Input) []types.ColumnID {
	center := activeRect(in).Center()
	all := make([]scored, 0, len(in.Targets))
	for _, t := range in.Targets {
		d := distance(center, t.Rect.Center())
		if math.IsNaN(d) {
			d = math.Inf(1)
		}
		all = append(all, scored{id: t.ID, index: t.Index, score: d})
	}
	return ranked(all)
}
