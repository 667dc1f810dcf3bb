// Package collision decides which board column a dragged card is over. It is
// pure and synchronous: it never persists anything.
package collision

import "math"

// Point is a pointer position in viewport coordinates
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }
func (r Rect) Area() float64   { return r.Width * r.Height }

// Center returns the midpoint of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IntersectionRatio is the overlap area divided by the union area, in [0,1]
func (r Rect) IntersectionRatio(o Rect) float64 {
	left := math.Max(r.Left, o.Left)
	right := math.Min(r.Right(), o.Right())
	top := math.Max(r.Top, o.Top)
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return 0
	}
	overlap := (right - left) * (bottom - top)
	union := r.Area() + o.Area() - overlap
	if union <= 0 {
		return 0
	}
	return overlap / union
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
