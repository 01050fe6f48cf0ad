package layout

import (
	"fmt"

	"folio/geom"
)

// Placeholder names supported by page nodes.
const (
	PlaceholderHeader    = "header"
	PlaceholderFooter    = "footer"
	PlaceholderWatermark = "watermark"
)

// PageContext stamps a concrete page created by a dynamic page with its
// sequence number and a back-reference to the controlling dynamic page.
type PageContext struct {
	Number  int
	Dynamic *Node
}

type pageExt struct {
	context      *PageContext
	gc           GraphicsContext
	placeholders map[string]*Node
}

func (p *pageExt) cloneForDuplicate(owner *Node) *pageExt {
	d := &pageExt{}
	if len(p.placeholders) > 0 {
		d.placeholders = make(map[string]*Node, len(p.placeholders))
		for name, ph := range p.placeholders {
			dup := ph.Duplicate()
			dup.parent = owner
			d.placeholders[name] = dup
		}
	}
	return d
}

func validPlaceholder(name string) bool {
	switch name {
	case PlaceholderHeader, PlaceholderFooter, PlaceholderWatermark:
		return true
	}
	return false
}

// SetPlaceholder installs a header/footer/watermark subtree on a page. The
// target of a dynamic page is its prototype, so every page created later
// carries a copy.
func (n *Node) SetPlaceholder(name string, child *Node) error {
	if n.kind == KindDynamicPage {
		return n.dynamic.prototype.SetPlaceholder(name, child)
	}
	if n.kind != KindPage {
		return fmt.Errorf("placeholder %q is not supported by %s nodes", name, n.kind)
	}
	if !validPlaceholder(name) {
		return fmt.Errorf("placeholder %q is not supported by %s nodes", name, n.kind)
	}
	if n.page.placeholders == nil {
		n.page.placeholders = make(map[string]*Node)
	}
	if old := n.page.placeholders[name]; old != nil {
		old.parent = nil
	}
	child.parent = n
	child.SetPriority(n.priority - 1)
	n.page.placeholders[name] = child
	return nil
}

// Placeholder returns the named placeholder subtree or nil.
func (n *Node) Placeholder(name string) *Node {
	if n.kind == KindDynamicPage {
		return n.dynamic.prototype.Placeholder(name)
	}
	if n.kind != KindPage || n.page.placeholders == nil {
		return nil
	}
	return n.page.placeholders[name]
}

// SetGraphicsContext binds the backend page this node draws onto.
func (n *Node) SetGraphicsContext(gc GraphicsContext) {
	if n.kind != KindPage {
		panic("graphics context can only be bound to a page")
	}
	n.page.gc = gc
}

// GraphicsContext returns the graphics backend of the nearest page. A node
// without a bound page cannot draw, which is a structural error.
func (n *Node) GraphicsContext() (GraphicsContext, error) {
	page, err := n.Page()
	if err != nil {
		return nil, err
	}
	if page.kind == KindDynamicPage {
		return page.CurrentPage().GraphicsContext()
	}
	if page.page.gc == nil {
		return nil, &StructuralError{Kind: page.kind, Msg: "no graphics context bound"}
	}
	return page.page.gc, nil
}

// PageContext returns the stamp of a page created by a dynamic page, nil
// for standalone pages.
func (n *Node) PageContext() *PageContext {
	if n.kind != KindPage {
		return nil
	}
	return n.page.context
}

// SetPageDimensions applies a page size to the node's attributes and
// boundary. Used when the page-size/orientation attributes get resolved.
func (n *Node) SetPageDimensions(size geom.PageSize) {
	n.attrs[AttrWidth] = size.Width
	n.attrs[AttrHeight] = size.Height
	ul := geom.P(0, 0)
	if n.boundary.Closed() && n.boundary.Len() > 0 {
		ul = n.boundary.Point(geom.UpperLeft)
	}
	n.boundary = geom.NewBoundary(ul, size.Width, size.Height)
}

// ContentTop returns the y coordinate where page content starts (below the
// top margin).
func (n *Node) ContentTop() float64 {
	return n.boundary.Point(geom.UpperLeft).Y + n.attrFloat(AttrMarginTop)
}

// ContentBottom returns the y coordinate where page content must end
// (above the bottom margin).
func (n *Node) ContentBottom() float64 {
	return n.boundary.Point(geom.LowerRight).Y - n.attrFloat(AttrMarginBottom)
}

// ContentLeft returns the x coordinate where page content starts.
func (n *Node) ContentLeft() float64 {
	return n.boundary.Point(geom.UpperLeft).X + n.attrFloat(AttrMarginLeft)
}

// ContentWidth returns the horizontal space available to content.
func (n *Node) ContentWidth() float64 {
	return n.Width() - n.attrFloat(AttrMarginLeft) - n.attrFloat(AttrMarginRight)
}

// ContentHeight returns the vertical space available to content.
func (n *Node) ContentHeight() float64 {
	return n.Height() - n.attrFloat(AttrMarginTop) - n.attrFloat(AttrMarginBottom)
}
