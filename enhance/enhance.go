// Package enhance ships the standard node decorations: borders,
// backgrounds and the sticky-note behaviour. Factories are registered on a
// layout.Document and instantiated from per-node attribute bags.
package enhance

import (
	"fmt"

	"folio/geom"
	"folio/layout"
)

// Bag names the standard factories are registered under.
const (
	BorderName     = "border"
	BackgroundName = "background"
)

// Draw-order offsets relative to the owning node. The background paints
// first, the border on top of it, both before same-priority content tasks
// discovered later.
const (
	backgroundPriority = 0
	borderPriority     = 1
)

// RegisterStandard installs the border and background factories.
func RegisterStandard(doc *layout.Document) {
	doc.RegisterEnhancement(BorderName, NewBorder)
	doc.RegisterEnhancement(BackgroundName, NewBackground)
}

func bagString(attrs map[string]any, name, fallback string) string {
	if v, ok := attrs[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

func bagFloat(attrs map[string]any, name string, fallback float64) float64 {
	if v, ok := attrs[name].(float64); ok {
		return v
	}
	return fallback
}

// Border strokes the node's boundary polygon.
type Border struct {
	color string
	size  float64
}

// NewBorder builds a border from a bag: color (default black) and size
// (line width, default 1).
func NewBorder(attrs map[string]any) (layout.Enhancement, error) {
	size := bagFloat(attrs, "size", 1)
	if size <= 0 {
		return nil, fmt.Errorf("border size must be positive, got %g", size)
	}
	return &Border{
		color: bagString(attrs, "color", "#000000"),
		size:  size,
	}, nil
}

func (b *Border) Priority() int { return borderPriority }

func (b *Border) Draw(gc layout.GraphicsContext, n *layout.Node) error {
	xs, ys, ok := corners(n)
	if !ok {
		return nil
	}
	gc.SetStrokeColor(b.color)
	gc.SetLineWidth(b.size)
	return gc.DrawPolygon(xs, ys, false)
}

// Background fills the node's boundary polygon.
type Background struct {
	color string
}

// NewBackground builds a background fill from a bag: color (required).
func NewBackground(attrs map[string]any) (layout.Enhancement, error) {
	color := bagString(attrs, "color", "")
	if color == "" {
		return nil, fmt.Errorf("background requires a color")
	}
	return &Background{color: color}, nil
}

func (b *Background) Priority() int { return backgroundPriority }

func (b *Background) Draw(gc layout.GraphicsContext, n *layout.Node) error {
	xs, ys, ok := corners(n)
	if !ok {
		return nil
	}
	gc.SetFillColor(b.color)
	return gc.DrawPolygon(xs, ys, true)
}

func corners(n *layout.Node) (xs, ys []float64, ok bool) {
	b := n.Boundary()
	if b.Len() < 4 {
		return nil, nil, false
	}
	xs = make([]float64, 4)
	ys = make([]float64, 4)
	for i := range 4 {
		p := b.Point(i)
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys, true
}

// StickyNote is a behaviour attaching an annotation to the node's
// upper-left corner at draw time.
type StickyNote struct {
	Title string
	Text  string
}

func (s *StickyNote) Attach(gc layout.GraphicsContext, n *layout.Node) error {
	ul := n.Boundary().Point(geom.UpperLeft)
	return gc.Annotate(ul.X, ul.Y, s.Title, s.Text)
}
