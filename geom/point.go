// Package geom implements primitive geometry for document layout: points,
// node boundaries and standard page dimensions. Coordinates are in
// typographic points with the origin in the upper-left corner of the page
// and y growing downwards.
package geom

import "fmt"

// Point is an immutable (x, y) pair.
type Point struct {
	X float64
	Y float64
}

// P is a shorthand constructor.
func P(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Translate returns a new point moved by (dx, dy).
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
