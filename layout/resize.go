package layout

import (
	"folio/geom"
)

// geometric comparisons tolerate accumulated floating point noise
const epsilon = 1e-9

// Resize translates the node's trailing edges by (dx, dy): only the right
// corners move horizontally, only the bottom corners move vertically - the
// upper-left anchor never moves. Children follow: a child with a
// percentage width is rescaled against the parent's new inner width, any
// other child only ever shrinks to stay inside the parent (the delta is
// clamped to <= 0), so absolute children cannot overflow when a sibling
// layout step shrinks the parent.
func (n *Node) Resize(dx, dy float64) {
	b := n.boundary
	if b.Len() < 4 {
		return
	}
	b.PointTranslate(geom.UpperRight, dx, 0)
	b.PointTranslate(geom.LowerRight, dx, dy)
	b.PointTranslate(geom.LowerLeft, 0, dy)
	n.attrs[AttrWidth] = b.Width()
	n.attrs[AttrHeight] = b.Height()

	innerRight := b.Point(geom.LowerRight).X - n.attrFloat(AttrPaddingRight)
	innerBottom := b.Point(geom.LowerRight).Y - n.attrFloat(AttrPaddingBottom)

	for _, child := range n.children {
		if child.boundary.Len() < 4 {
			continue
		}
		childLR := child.boundary.Point(geom.LowerRight)

		var childDx float64
		if child.hasRelativeWidth {
			margin := child.attrFloat(AttrMarginLeft) + child.attrFloat(AttrMarginRight)
			childDx = (b.Point(geom.LowerRight).X-margin)*child.relativeWidth/100 - childLR.X
		} else if d := innerRight - childLR.X; d < 0 {
			childDx = d
		}

		var childDy float64
		if d := innerBottom - childLR.Y; d < 0 {
			childDy = d
		}

		if childDx != 0 || childDy != 0 {
			child.Resize(childDx, childDy)
		}
	}
}

// IsBreakable reports effective breakability, including the forced
// override for nodes taller than their physical page.
func (n *Node) IsBreakable() bool {
	v, err := n.Attribute(AttrBreakable)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// BreakAt splits the node at the given height measured from its top edge
// and returns the remainder node, already positioned immediately below the
// truncated original. It returns nil when no split happens: the height is
// out of range or the node is effectively non-breakable. Children fully
// above the break line stay, children fully below move to the remainder,
// a straddling child is broken recursively (or moved whole when it cannot
// break). The two boundaries stay vertically contiguous and their heights
// sum to the original height.
func (n *Node) BreakAt(height float64) *Node {
	oldHeight := n.boundary.Height()
	if height <= 0 || height >= oldHeight {
		return nil
	}
	if !n.IsBreakable() {
		return nil
	}

	top := n.boundary.Point(geom.UpperLeft).Y
	lineY := top + height
	clone := n.Duplicate()

	if n.kind.HasChildren() {
		n.splitChildren(clone, lineY)
	}

	// truncate the original to the requested height
	n.boundary.PointTranslate(geom.LowerRight, 0, height-oldHeight)
	n.boundary.PointTranslate(geom.LowerLeft, 0, height-oldHeight)
	n.attrs[AttrHeight] = height

	// the remainder is the lower portion, starting where the original ends
	clone.boundary.PointTranslate(geom.UpperLeft, 0, height)
	clone.boundary.PointTranslate(geom.UpperRight, 0, height)
	clone.attrs[AttrHeight] = oldHeight - height

	if n.kind == KindText {
		n.splitLines(clone, height)
	}
	return clone
}

// splitChildren distributes children between the truncated original and
// the remainder clone. The clone arrives with duplicated children in the
// same order, which lets the two lists be walked pairwise.
func (n *Node) splitChildren(clone *Node, lineY float64) {
	origChildren := n.children
	cloneChildren := clone.children
	n.children = nil
	clone.children = nil

	for i, oc := range origChildren {
		cc := cloneChildren[i]
		cTop := oc.boundary.Point(geom.UpperLeft).Y
		cBottom := oc.boundary.Point(geom.LowerRight).Y

		switch {
		case cBottom <= lineY+epsilon:
			// fully above the line: stays in the original
			oc.parent = n
			n.children = append(n.children, oc)
			cc.parent = nil

		case cTop >= lineY-epsilon:
			// fully below the line: the duplicate already sits at the
			// right absolute position inside the remainder
			cc.parent = clone
			clone.children = append(clone.children, cc)

		default:
			cc.parent = nil
			if remainder := oc.BreakAt(lineY - cTop); remainder != nil {
				oc.parent = n
				n.children = append(n.children, oc)
				remainder.parent = clone
				remainder.SetPriority(clone.priority - 1)
				clone.children = append(clone.children, remainder)
			} else {
				// the child cannot break: move it whole onto the
				// remainder, aligned with the break line
				oc.boundary.Translate(0, lineY-cTop)
				oc.parent = clone
				clone.children = append(clone.children, oc)
			}
		}
	}
}

// splitLines divides wrapped text lines between the two parts of a broken
// text node according to the effective line height.
func (n *Node) splitLines(clone *Node, height float64) {
	lines := n.text.lines
	if len(lines) == 0 {
		return
	}
	lh := n.EffectiveLineHeight()
	keep := int((height - n.attrFloat(AttrPaddingTop)) / lh)
	if keep < 0 {
		keep = 0
	}
	if keep > len(lines) {
		keep = len(lines)
	}
	n.text.lines = lines[:keep]
	clone.text.lines = append([]string(nil), lines[keep:]...)
}
