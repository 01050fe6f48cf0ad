package layout

import "image"

// GraphicsContext is the low-level drawing surface of a single backend
// page. The engine only schedules primitive calls against it - the binary
// output format behind it is the backend's business.
type GraphicsContext interface {
	// Width and Height return the backend page dimensions in points.
	Width() float64
	Height() float64

	SetLineWidth(width float64)
	SetStrokeColor(color string)
	SetFillColor(color string)

	DrawLine(x0, y0, x1, y1 float64) error
	DrawPolygon(xs, ys []float64, fill bool) error
	DrawText(text string, x, y, fontSize float64, fontName string) error
	DrawImage(img image.Image, x0, y0, x1, y1 float64) error

	// Annotate attaches a sticky-note style annotation at the given
	// position, outside the normal content stream.
	Annotate(x, y float64, title, text string) error
}

// Behaviour is an interactive/annotation attachment bound to a node's
// graphics context at draw time.
type Behaviour interface {
	// Attach issues the backend calls implementing the behaviour for the
	// given node.
	Attach(gc GraphicsContext, n *Node) error
}

// Enhancement is a named, attribute-bag-driven decorator (border,
// background and similar) applied during drawing-task collection.
type Enhancement interface {
	// Priority orders the enhancement's task relative to the owning
	// node's other tasks. It is added to the node priority.
	Priority() int
	// Draw issues the backend calls decorating the given node.
	Draw(gc GraphicsContext, n *Node) error
}

// EnhancementFactory builds an enhancement instance from an attribute bag.
type EnhancementFactory func(attrs map[string]any) (Enhancement, error)
