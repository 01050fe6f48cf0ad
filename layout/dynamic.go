package layout

import (
	"github.com/google/uuid"
)

// dynamicExt backs the dynamic-page variant: an unbounded page sequence
// cloned on demand from a prototype page.
type dynamicExt struct {
	prototype *Node
	// pages is the live list - it may be trimmed to keep memory bounded.
	// history permanently keeps every page ever created so the post-draw
	// partition never loses tasks of pruned pages.
	pages   []*Node
	history []*Node
	created int
	// formatted markers are keyed by node identity, not content: clones of
	// the same prototype subtree must each be formatted exactly once.
	formatted map[uuid.UUID]bool
}

func newDynamicExt() *dynamicExt {
	return &dynamicExt{formatted: make(map[uuid.UUID]bool)}
}

func (n *Node) mustDynamic() *dynamicExt {
	if n.kind != KindDynamicPage {
		// this should never happen
		panic("operation requires a dynamic page node")
	}
	return n.dynamic
}

// Prototype returns the template page concrete pages are cloned from.
func (n *Node) Prototype() *Node {
	return n.mustDynamic().prototype
}

// CurrentPage returns the most recently created page, lazily creating the
// first one.
func (n *Node) CurrentPage() *Node {
	d := n.mustDynamic()
	if len(d.pages) == 0 {
		return n.CreateNextPage()
	}
	return d.pages[len(d.pages)-1]
}

// CreateNextPage clones the prototype, stamps it with a page context
// (sequence number plus back-reference), appends it to both the live list
// and the permanent history and bumps the monotonic counter.
func (n *Node) CreateNextPage() *Node {
	d := n.mustDynamic()
	page := d.prototype.Duplicate()
	page.parent = n
	page.SetPriority(n.priority - 1)
	page.page.context = &PageContext{Number: d.created + 1, Dynamic: n}
	d.pages = append(d.pages, page)
	d.history = append(d.history, page)
	d.created++
	return page
}

// NumberOfPages returns how many pages were ever created. The counter is
// monotonic: pruning the live list does not decrease it.
func (n *Node) NumberOfPages() int {
	return n.mustDynamic().created
}

// Pages returns the live page list in creation order.
func (n *Node) Pages() []*Node {
	return n.mustDynamic().pages
}

// PagesHistory returns every page ever created, in creation order.
func (n *Node) PagesHistory() []*Node {
	return n.mustDynamic().history
}

// RemoveAllPagesExceptCurrent prunes the live list down to the current
// page. The history and the page counter are unaffected.
func (n *Node) RemoveAllPagesExceptCurrent() {
	d := n.mustDynamic()
	if len(d.pages) <= 1 {
		return
	}
	d.pages = d.pages[len(d.pages)-1:]
}

// MarkAsFormatted records that the given node was already formatted within
// this dynamic page's formatting pass.
func (n *Node) MarkAsFormatted(node *Node) {
	n.mustDynamic().formatted[node.id] = true
}

// IsMarkedAsFormatted reports whether the given node was already formatted
// within this dynamic page's formatting pass.
func (n *Node) IsMarkedAsFormatted(node *Node) bool {
	return n.mustDynamic().formatted[node.id]
}

// OrderedDrawingTasks flattens the drawing tasks of every live page in
// creation order.
func (n *Node) OrderedDrawingTasks(doc *Document) ([]*Task, error) {
	d := n.mustDynamic()
	var tasks []*Task
	for _, page := range d.pages {
		pt, err := page.DrawingTasks(doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, pt...)
	}
	return tasks, nil
}

// UnorderedDrawingTasks collects tasks the backend may place outside the
// normal page-content ordering: behaviours attached to the dynamic page
// itself, issued once per live page.
func (n *Node) UnorderedDrawingTasks(doc *Document) ([]*Task, error) {
	d := n.mustDynamic()
	var tasks []*Task
	for _, page := range d.pages {
		for _, b := range n.behaviours {
			tasks = append(tasks, newBehaviourTask(b, page))
		}
	}
	return tasks, nil
}

// PostDrawingTasks collects post-draw (dump) tasks. It deliberately walks
// the full history, not the live list, so tasks of pruned pages are never
// lost.
func (n *Node) PostDrawingTasks(doc *Document) ([]*Task, error) {
	d := n.mustDynamic()
	var tasks []*Task
	for _, page := range d.history {
		pt, err := page.postDrawingTasks(doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, pt...)
	}
	return tasks, nil
}
