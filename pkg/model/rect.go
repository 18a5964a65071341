package model

// Rect is an axis-aligned rectangle. Inside the model it is always expressed
// in the parent's local coordinate frame, independent of the parent's own
// absolute position.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether inner lies fully inside r, edges included.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X &&
		inner.Y >= r.Y &&
		inner.Right() <= r.Right() &&
		inner.Bottom() <= r.Bottom()
}

// Inset returns r shrunk by the given margin on every side. A margin larger
// than half the extent yields a zero-size rectangle at the center.
func (r Rect) Inset(margin float64) Rect {
	w := r.W - 2*margin
	h := r.H - 2*margin
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: r.X + margin, Y: r.Y + margin, W: w, H: h}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	x := min(r.X, other.X)
	y := min(r.Y, other.Y)
	right := max(r.Right(), other.Right())
	bottom := max(r.Bottom(), other.Bottom())
	return Rect{X: x, Y: y, W: right - x, H: bottom - y}
}
