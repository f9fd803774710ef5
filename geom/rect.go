// Package geom provides the integer rectangle algebra used by the region
// propagation passes: rectangles, and regions made of disjoint rectangles.
package geom

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in pixel coordinates.
// A Rect with non-positive width or height is empty.
type Rect struct {
	X, Y          int
	Width, Height int
}

// InfiniteExtent is the side length of the rectangle returned by Infinite.
const InfiniteExtent = 1 << 28

// Infinite returns the rectangle used for sources without natural bounds,
// such as patterns that tile the whole plane.
func Infinite() Rect {
	return Rect{X: -InfiniteExtent / 2, Y: -InfiniteExtent / 2, Width: InfiniteExtent, Height: InfiniteExtent}
}

// IsInfinite reports whether r spans the full Infinite extent.
func (r Rect) IsInfinite() bool {
	return r.Width >= InfiniteExtent || r.Height >= InfiniteExtent
}

// NewRect returns the rectangle at (x, y) with the given size.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// FromImage converts an image.Rectangle.
func FromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(r.X, r.Y, r.MaxX(), r.MaxY())
}

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() int { return r.X + r.Width }

// MaxY returns the exclusive bottom edge.
func (r Rect) MaxY() int { return r.Y + r.Height }

// IsEmpty reports whether r covers no pixels.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// Equal reports whether r and o describe the same pixels.
// All empty rectangles are equal.
func (r Rect) Equal(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return r.IsEmpty() && o.IsEmpty()
	}
	return r == o
}

// Intersect returns the largest rectangle contained in both r and o.
// The result is the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	if r.IsEmpty() || o.IsEmpty() {
		return Rect{}
	}
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.MaxX(), o.MaxX())
	y1 := min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the bounding box of r and o. Empty operands are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.MaxX(), o.MaxX())
	y1 := max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Contains reports whether o lies entirely inside r.
// An empty o is contained in every rectangle.
func (r Rect) Contains(o Rect) bool {
	if o.IsEmpty() {
		return true
	}
	if r.IsEmpty() {
		return false
	}
	return o.X >= r.X && o.Y >= r.Y && o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).IsEmpty()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Grow returns r expanded by dx on the left and right and dy on the top
// and bottom. Negative amounts shrink.
func (r Rect) Grow(dx, dy int) Rect {
	if r.IsEmpty() {
		return r
	}
	g := Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
	if g.IsEmpty() {
		return Rect{}
	}
	return g
}

// SplitHalf cuts r in two halves along its longer axis. The first half
// has the smaller coordinate. When the longer side is 1 pixel long the
// second half is empty.
func (r Rect) SplitHalf() (Rect, Rect) {
	a, b := r, r
	if r.Width > r.Height {
		a.Width = r.Width / 2
		b.X = r.X + a.Width
		b.Width = r.Width - a.Width
	} else {
		a.Height = r.Height / 2
		b.Y = r.Y + a.Height
		b.Height = r.Height - a.Height
	}
	if a.IsEmpty() {
		return b, Rect{}
	}
	return a, b
}

// String formats r as "x,y wxh".
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}
