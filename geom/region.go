package geom

import "sort"

// Region is a set of pixels represented as pairwise disjoint rectangles.
//
// The zero value is an empty region ready to use. Region is not safe for
// concurrent use; callers that share one must synchronize.
type Region struct {
	rects []Rect
}

// NewRegion returns a region covering the given rectangles.
func NewRegion(rects ...Rect) *Region {
	g := &Region{}
	for _, r := range rects {
		g.UnionRect(r)
	}
	return g
}

// Clone returns an independent copy of g.
func (g *Region) Clone() *Region {
	c := &Region{rects: make([]Rect, len(g.rects))}
	copy(c.rects, g.rects)
	return c
}

// IsEmpty reports whether g covers no pixels.
func (g *Region) IsEmpty() bool {
	return len(g.rects) == 0
}

// Area returns the number of pixels covered by g.
func (g *Region) Area() int {
	sum := 0
	for _, r := range g.rects {
		sum += r.Area()
	}
	return sum
}

// Rects returns the disjoint rectangles of g sorted top-to-bottom,
// left-to-right. The slice is a copy.
func (g *Region) Rects() []Rect {
	out := make([]Rect, len(g.rects))
	copy(out, g.rects)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// Extents returns the bounding box of g.
func (g *Region) Extents() Rect {
	var e Rect
	for _, r := range g.rects {
		e = e.Union(r)
	}
	return e
}

// Clear empties g.
func (g *Region) Clear() {
	g.rects = g.rects[:0]
}

// UnionRect adds r to g.
func (g *Region) UnionRect(r Rect) {
	if r.IsEmpty() {
		return
	}
	pieces := []Rect{r}
	for _, existing := range g.rects {
		pieces = subtractAll(pieces, existing)
		if len(pieces) == 0 {
			return
		}
	}
	g.rects = append(g.rects, pieces...)
}

// Union adds every pixel of o to g.
func (g *Region) Union(o *Region) {
	for _, r := range o.rects {
		g.UnionRect(r)
	}
}

// SubtractRect removes r from g.
func (g *Region) SubtractRect(r Rect) {
	if r.IsEmpty() || len(g.rects) == 0 {
		return
	}
	g.rects = subtractAll(g.rects, r)
}

// Subtract removes every pixel of o from g.
func (g *Region) Subtract(o *Region) {
	for _, r := range o.rects {
		g.SubtractRect(r)
	}
}

// IntersectRect clips g to r.
func (g *Region) IntersectRect(r Rect) {
	out := g.rects[:0]
	for _, existing := range g.rects {
		if in := existing.Intersect(r); !in.IsEmpty() {
			out = append(out, in)
		}
	}
	g.rects = out
}

// ContainsRect reports whether every pixel of r is in g.
func (g *Region) ContainsRect(r Rect) bool {
	if r.IsEmpty() {
		return true
	}
	rest := []Rect{r}
	for _, existing := range g.rects {
		rest = subtractAll(rest, existing)
		if len(rest) == 0 {
			return true
		}
	}
	return false
}

// OverlapsRect reports whether any pixel of r is in g.
func (g *Region) OverlapsRect(r Rect) bool {
	for _, existing := range g.rects {
		if existing.Overlaps(r) {
			return true
		}
	}
	return false
}

// subtractAll removes cut from every rectangle of rs.
func subtractAll(rs []Rect, cut Rect) []Rect {
	out := make([]Rect, 0, len(rs))
	for _, r := range rs {
		out = append(out, subtract(r, cut)...)
	}
	return out
}

// subtract returns up to four disjoint rectangles covering r minus cut:
// a full-width band above, a full-width band below, and the left and
// right remainders of the middle band.
func subtract(r, cut Rect) []Rect {
	in := r.Intersect(cut)
	if in.IsEmpty() {
		return []Rect{r}
	}
	var out []Rect
	if in.Y > r.Y {
		out = append(out, Rect{X: r.X, Y: r.Y, Width: r.Width, Height: in.Y - r.Y})
	}
	if in.MaxY() < r.MaxY() {
		out = append(out, Rect{X: r.X, Y: in.MaxY(), Width: r.Width, Height: r.MaxY() - in.MaxY()})
	}
	if in.X > r.X {
		out = append(out, Rect{X: r.X, Y: in.Y, Width: in.X - r.X, Height: in.Height})
	}
	if in.MaxX() < r.MaxX() {
		out = append(out, Rect{X: in.MaxX(), Y: in.Y, Width: r.MaxX() - in.MaxX(), Height: in.Height})
	}
	return out
}
