package formatters

import (
	"fmt"
	"strings"

	"folio/geom"
	"folio/layout"
)

// formatDimension resolves the node's numeric dimensions before any
// boundary is built: page sizes from the page-size/orientation attributes,
// percentage dimensions against the parent's inner box, and the block
// default (fill the parent's inner width) for containers and text.
func formatDimension(n *layout.Node, doc *layout.Document) error {
	switch n.Kind() {
	case layout.KindPage:
		return resolvePageSize(n)
	case layout.KindDynamicPage:
		return resolvePageSize(n.Prototype())
	}

	if pct, ok := n.RelativeWidth(); ok {
		inner := parentInnerWidth(n)
		margin := attrLen(n, layout.AttrMarginLeft) + attrLen(n, layout.AttrMarginRight)
		if err := n.SetAttribute(layout.AttrWidth, (inner-margin)*pct/100); err != nil {
			return err
		}
	} else if n.Width() == 0 && n.Kind() != layout.KindImage {
		inner := parentInnerWidth(n)
		margin := attrLen(n, layout.AttrMarginLeft) + attrLen(n, layout.AttrMarginRight)
		if w := inner - margin; w > 0 {
			if err := n.SetAttribute(layout.AttrWidth, w); err != nil {
				return err
			}
		}
	}

	if pct, ok := n.RelativeHeight(); ok {
		if h := parentInnerHeight(n); h > 0 {
			margin := attrLen(n, layout.AttrMarginTop) + attrLen(n, layout.AttrMarginBottom)
			if err := n.SetAttribute(layout.AttrHeight, (h-margin)*pct/100); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolvePageSize applies the page-size and orientation attributes to a
// page node's boundary and dimensions.
func resolvePageSize(n *layout.Node) error {
	raw, err := n.Attribute(layout.AttrPageSize)
	if err != nil {
		return err
	}
	name, _ := raw.(string)
	if name == "" {
		// pages keep explicitly set dimensions, otherwise fall back to A4
		size := geom.PageSize{Width: n.Width(), Height: n.Height()}
		if size.Width == 0 && size.Height == 0 {
			size = geom.A4
		}
		n.SetPageDimensions(size)
		return nil
	}
	size, err := geom.ParsePageSize(name)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", layout.AttrPageSize, err)
	}
	orientation, err := n.Attribute(layout.AttrOrientation)
	if err != nil {
		return err
	}
	if s, _ := orientation.(string); strings.EqualFold(s, "landscape") {
		size = size.Landscape()
	}
	n.SetPageDimensions(size)
	return nil
}

// attrLen reads a length attribute as a number, treating unset and the
// auto keyword as zero.
func attrLen(n *layout.Node, name string) float64 {
	v, err := n.Attribute(name)
	if err != nil {
		return 0
	}
	f, _ := v.(float64)
	return f
}

// dimensionParent returns the node whose box child dimensions resolve
// against: the parent, or the prototype when the parent is a dynamic page.
func dimensionParent(n *layout.Node) *layout.Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	if p.Kind() == layout.KindDynamicPage {
		return p.Prototype()
	}
	return p
}

// parentInnerWidth returns the horizontal space the parent offers its
// children: content width for pages, width minus padding for containers.
func parentInnerWidth(n *layout.Node) float64 {
	p := dimensionParent(n)
	if p == nil {
		return 0
	}
	if p.Kind().IsPage() {
		return p.ContentWidth()
	}
	return p.Width() - attrLen(p, layout.AttrPaddingLeft) - attrLen(p, layout.AttrPaddingRight)
}

func parentInnerHeight(n *layout.Node) float64 {
	p := dimensionParent(n)
	if p == nil {
		return 0
	}
	if p.Kind().IsPage() {
		return p.ContentHeight()
	}
	return p.Height() - attrLen(p, layout.AttrPaddingTop) - attrLen(p, layout.AttrPaddingBottom)
}
