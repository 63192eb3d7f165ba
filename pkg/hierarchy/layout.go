package hierarchy

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
// All coordinates live in the single global space shared by every node of
// a forest; child rectangles are never relative to their parent.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether inner lies fully within r, allowing eps of
// floating-point slack on every edge.
func (r Rect) Contains(inner Rect, eps float64) bool {
	return inner.X >= r.X-eps &&
		inner.Y >= r.Y-eps &&
		inner.Right() <= r.Right()+eps &&
		inner.Bottom() <= r.Bottom()+eps
}

// Overlaps reports whether r and other share interior area. Rectangles
// that only touch at an edge or corner do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.Right() && other.X < r.Right() &&
		r.Y < other.Bottom() && other.Y < r.Bottom()
}

// NodeLayout is the per-node result of a layout computation.
type NodeLayout struct {
	// Box is the node's own rectangle.
	Box Rect

	// ContentArea is the sub-rectangle reserved for children, excluding
	// the title strip and the node's padding. Nil for leaves. When set it
	// is fully contained within Box.
	ContentArea *Rect
}
