package formatters

import (
	"folio/geom"
	"folio/layout"
)

// formatEdges builds the node's boundary: a rectangle of the resolved
// dimensions placed in block flow - below the previous sibling, indented
// by the left margin inside the parent's inner box. Containers without a
// fixed size grow to hold the newly placed child.
func formatEdges(n *layout.Node, doc *layout.Document) error {
	if n.Kind().IsPage() {
		return nil
	}

	x := attrLen(n, layout.AttrMarginLeft)
	y := attrLen(n, layout.AttrMarginTop)
	p := n.Parent()
	if p != nil && p.Kind() != layout.KindDynamicPage {
		x += innerLeft(p)
		y += flowTop(p, n)
	}

	w := n.Width()
	h := n.Height()
	b := n.Boundary()
	b.Reset()
	for _, pt := range []geom.Point{
		geom.P(x, y), geom.P(x+w, y), geom.P(x+w, y+h), geom.P(x, y+h),
	} {
		if err := b.SetNext(pt); err != nil {
			return err
		}
	}
	if err := b.Close(); err != nil {
		return err
	}

	growAncestor(n)
	return nil
}

// innerLeft returns the x coordinate of the parent's inner box.
func innerLeft(p *layout.Node) float64 {
	if p.Kind().IsPage() {
		return p.ContentLeft()
	}
	return p.Boundary().Point(geom.UpperLeft).X + attrLen(p, layout.AttrPaddingLeft)
}

// flowTop returns the y coordinate where the next child of p starts:
// below the last already-placed sibling, or at the top of the inner box.
func flowTop(p, child *layout.Node) float64 {
	var prev *layout.Node
	for _, c := range p.Children() {
		if c == child {
			break
		}
		prev = c
	}
	if prev != nil && prev.Boundary().Closed() {
		return prev.Boundary().Point(geom.LowerRight).Y + attrLen(prev, layout.AttrMarginBottom)
	}
	if p.Kind().IsPage() {
		return p.ContentTop()
	}
	return p.Boundary().Point(geom.UpperLeft).Y + attrLen(p, layout.AttrPaddingTop)
}

// growAncestor extends a parent container without a static size so the
// freshly placed child fits inside its padding box.
func growAncestor(n *layout.Node) {
	p := n.Parent()
	if p == nil || p.Kind() != layout.KindContainer {
		return
	}
	if p.Boundary().Len() < 4 {
		return
	}
	static, err := p.Attribute(layout.AttrStaticSize)
	if err == nil {
		if s, _ := static.(bool); s {
			return
		}
	}
	need := n.Boundary().Point(geom.LowerRight).Y +
		attrLen(n, layout.AttrMarginBottom) +
		attrLen(p, layout.AttrPaddingBottom)
	if d := need - p.Boundary().Point(geom.LowerRight).Y; d > 0 {
		p.Resize(0, d)
		growAncestor(p)
	}
}
