package geom

import (
	"errors"
	"fmt"
)

// cornerCount is the only polygon size a boundary supports.
const cornerCount = 4

// Corner indexes into boundary points. After Close the winding order is
// fixed: upper-left, upper-right, lower-right, lower-left. The diagonal
// point (lower-right) together with the upper-left anchor defines width and
// height.
const (
	UpperLeft = iota
	UpperRight
	LowerRight
	LowerLeft
)

var (
	// ErrBoundaryClosed is returned when a closed boundary is modified
	// without Reset.
	ErrBoundaryClosed = errors.New("boundary is closed")
	// ErrBoundaryIncomplete is returned by Close when fewer than four
	// corners have been set.
	ErrBoundaryIncomplete = errors.New("boundary does not have four corners")
)

// Boundary is an ordered polygon of exactly four corner points describing a
// node's position and size. A boundary is exclusively owned by its node.
// The rectangle may stop being axis-aligned after rotation, which is why
// corners are stored explicitly instead of as origin plus size.
type Boundary struct {
	points []Point
	closed bool
}

// NewBoundary returns a closed axis-aligned boundary with the given
// upper-left corner and dimensions.
func NewBoundary(ul Point, width, height float64) *Boundary {
	return &Boundary{
		points: []Point{
			ul,
			ul.Translate(width, 0),
			ul.Translate(width, height),
			ul.Translate(0, height),
		},
		closed: true,
	}
}

// Reset clears all corners and re-enters build mode.
func (b *Boundary) Reset() {
	b.points = b.points[:0]
	b.closed = false
}

// SetNext appends the next corner while the boundary is being (re)built.
func (b *Boundary) SetNext(p Point) error {
	if b.closed {
		return ErrBoundaryClosed
	}
	if len(b.points) >= cornerCount {
		return fmt.Errorf("boundary already has %d corners", cornerCount)
	}
	b.points = append(b.points, p)
	return nil
}

// Close finalizes construction. It fails unless exactly four corners were
// set.
func (b *Boundary) Close() error {
	if b.closed {
		return ErrBoundaryClosed
	}
	if len(b.points) != cornerCount {
		return ErrBoundaryIncomplete
	}
	b.closed = true
	return nil
}

// Closed reports whether the boundary has been finalized.
func (b *Boundary) Closed() bool {
	return b.closed
}

// Len returns the number of corners set so far.
func (b *Boundary) Len() int {
	return len(b.points)
}

// Point returns corner i. It panics on an out-of-range index the same way a
// slice access would.
func (b *Boundary) Point(i int) Point {
	return b.points[i]
}

// Translate moves every corner by (dx, dy).
func (b *Boundary) Translate(dx, dy float64) {
	for i := range b.points {
		b.points[i] = b.points[i].Translate(dx, dy)
	}
}

// PointTranslate moves a single corner by (dx, dy). Corners which were not
// set yet are ignored.
func (b *Boundary) PointTranslate(i int, dx, dy float64) {
	if i < 0 || i >= len(b.points) {
		return
	}
	b.points[i] = b.points[i].Translate(dx, dy)
}

// Width is the horizontal distance between the upper-left anchor and the
// diagonal point.
func (b *Boundary) Width() float64 {
	if len(b.points) <= LowerRight {
		return 0
	}
	return b.points[LowerRight].X - b.points[UpperLeft].X
}

// Height is the vertical distance between the upper-left anchor and the
// diagonal point.
func (b *Boundary) Height() float64 {
	if len(b.points) <= LowerRight {
		return 0
	}
	return b.points[LowerRight].Y - b.points[UpperLeft].Y
}

// Clone returns an independent deep copy.
func (b *Boundary) Clone() *Boundary {
	nb := &Boundary{closed: b.closed}
	if len(b.points) > 0 {
		nb.points = append(make([]Point, 0, len(b.points)), b.points...)
	}
	return nb
}

// Equal reports whether two boundaries have identical corners and state.
func (b *Boundary) Equal(other *Boundary) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.closed != other.closed || len(b.points) != len(other.points) {
		return false
	}
	for i := range b.points {
		if b.points[i] != other.points[i] {
			return false
		}
	}
	return true
}

func (b *Boundary) String() string {
	return fmt.Sprintf("boundary%v", b.points)
}
