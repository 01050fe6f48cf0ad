package layout

import (
	"fmt"
)

// Formatter is a single named transformation applied to a node during a
// formatting pass. Implementations live outside the core; the core defines
// the invocation contract and ordering.
type Formatter interface {
	Format(n *Node, doc *Document) error
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(n *Node, doc *Document) error

func (f FormatterFunc) Format(n *Node, doc *Document) error {
	return f(n, doc)
}

// Format runs the node's named formatters in declared order and then
// formats placeholders and children depth-first. Subtrees living on pages
// created by a dynamic page are formatted exactly once per pass: the
// controlling dynamic page tracks node identity in its marker set, which
// keeps shared/prototype-derived subtrees idempotent even when pagination
// revisits them.
func (n *Node) Format(doc *Document) error {
	dp := n.controllingDynamicPage()
	if dp != nil && dp.IsMarkedAsFormatted(n) {
		return nil
	}

	for _, name := range n.formatters {
		f, err := doc.Formatter(name)
		if err != nil {
			return err
		}
		if err := f.Format(n, doc); err != nil {
			return fmt.Errorf("formatter %q failed on %s node: %w", name, n.kind, err)
		}
	}

	if err := n.formatPlaceholders(doc); err != nil {
		return err
	}

	// children may be reparented by pagination while we iterate, walk a
	// snapshot of the current list
	children := append([]*Node(nil), n.children...)
	for _, child := range children {
		if err := child.Format(doc); err != nil {
			return err
		}
	}

	if dp != nil {
		dp.MarkAsFormatted(n)
	}
	return nil
}

// formatPlaceholders formats any placeholders installed on a page. A
// dynamic page keeps them on its prototype, which must carry built
// boundaries before pagination starts duplicating it.
func (n *Node) formatPlaceholders(doc *Document) error {
	target := n
	if n.kind == KindDynamicPage {
		target = n.dynamic.prototype
	}
	if target.kind != KindPage || target.page.placeholders == nil {
		return nil
	}
	for _, name := range []string{PlaceholderWatermark, PlaceholderHeader, PlaceholderFooter} {
		if ph := target.page.placeholders[name]; ph != nil {
			if err := ph.Format(doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// controllingDynamicPage returns the dynamic page owning the node's page,
// or nil when the node lives outside any dynamic page sequence.
func (n *Node) controllingDynamicPage() *Node {
	page, err := n.Page()
	if err != nil {
		return nil
	}
	if page.kind == KindDynamicPage {
		return nil // the controller itself is never marked
	}
	if page.page.context == nil {
		return nil
	}
	return page.page.context.Dynamic
}
