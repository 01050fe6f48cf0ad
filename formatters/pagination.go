package formatters

import (
	"folio/geom"
	"folio/layout"
)

// formatPagination distributes a dynamic page's children over generated
// pages. Each child is formatted first (its own chain sizes it in the
// dynamic page's local coordinate space), then translated into the current
// page's flow; content overflowing the page bottom is broken with BreakAt
// and the remainder continues on the next generated page. Unbreakable
// overflow moves whole.
func formatPagination(n *layout.Node, doc *layout.Document) error {
	if n.Kind() != layout.KindDynamicPage {
		return nil
	}

	// placeholders live on the prototype; build their boundaries before
	// any page is cloned from it
	for _, name := range []string{layout.PlaceholderWatermark, layout.PlaceholderHeader, layout.PlaceholderFooter} {
		if ph := n.Placeholder(name); ph != nil {
			if err := ph.Format(doc); err != nil {
				return err
			}
		}
	}

	children := append([]*layout.Node(nil), n.Children()...)
	if len(children) == 0 {
		return nil
	}

	page := n.CurrentPage()
	cursor := page.ContentTop()

	for _, child := range children {
		if err := child.Format(doc); err != nil {
			return err
		}
		n.RemoveChild(child)

		for {
			placeAt(page, child, cursor)
			bottom := page.ContentBottom()
			childBottom := child.Boundary().Point(geom.LowerRight).Y

			if childBottom <= bottom {
				break
			}

			avail := bottom - child.Boundary().Point(geom.UpperLeft).Y
			rest := child.BreakAt(avail)
			if rest == nil {
				// nothing fits here: retry the whole child on a fresh page
				if cursor > page.ContentTop() {
					page = n.CreateNextPage()
					cursor = page.ContentTop()
					continue
				}
				// taller than an empty page and unbreakable: let it
				// overflow rather than loop
				break
			}
			if err := page.Add(child); err != nil {
				return err
			}
			markSubtree(n, child)
			page = n.CreateNextPage()
			cursor = page.ContentTop()
			child = rest
		}

		if err := page.Add(child); err != nil {
			return err
		}
		markSubtree(n, child)
		cursor = child.Boundary().Point(geom.LowerRight).Y +
			attrLen(child, layout.AttrMarginBottom)
	}
	return nil
}

// placeAt translates the child so its margin box starts at the page's
// content left and the given y.
func placeAt(page, child *layout.Node, y float64) {
	if child.Boundary().Len() < 4 {
		return
	}
	ul := child.Boundary().Point(geom.UpperLeft)
	dx := page.ContentLeft() + attrLen(child, layout.AttrMarginLeft) - ul.X
	dy := y + attrLen(child, layout.AttrMarginTop) - ul.Y
	translateTree(child, dx, dy)
}

// translateTree moves a subtree rigidly - every descendant boundary shares
// the same coordinate space.
func translateTree(n *layout.Node, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	n.Boundary().Translate(dx, dy)
	for _, c := range n.Children() {
		translateTree(c, dx, dy)
	}
}

// markSubtree records the placed subtree as formatted so the dynamic
// page's later page walks do not format it twice.
func markSubtree(dp, n *layout.Node) {
	dp.MarkAsFormatted(n)
	for _, c := range n.Children() {
		markSubtree(dp, c)
	}
}
