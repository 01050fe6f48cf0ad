package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"folio/geom"
)

// Task is a deferred unit of rendering work. The backend executes the full
// collected set in ascending priority order; tasks of equal priority keep
// their discovery order (stable sort), which preserves descendants before
// ancestors.
type Task struct {
	priority int
	fn       func() error
}

// NewTask creates a task with the given priority.
func NewTask(priority int, fn func() error) *Task {
	return &Task{priority: priority, fn: fn}
}

// Priority returns the scheduling priority.
func (t *Task) Priority() int { return t.priority }

// Invoke runs the task.
func (t *Task) Invoke() error { return t.fn() }

// SortTasks orders tasks for execution: stable ascending by priority.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].priority < tasks[j].priority
	})
}

// InvokeTasks sorts and executes the task set.
func InvokeTasks(tasks []*Task) error {
	SortTasks(tasks)
	for _, t := range tasks {
		if err := t.Invoke(); err != nil {
			return err
		}
	}
	return nil
}

func newBehaviourTask(b Behaviour, n *Node) *Task {
	return NewTask(n.priority, func() error {
		gc, err := n.GraphicsContext()
		if err != nil {
			return err
		}
		return b.Attach(gc, n)
	})
}

// DrawingTasks runs the three collection phases over the subtree: preDraw
// (enhancement and behaviour tasks), doDraw (kind-specific content tasks,
// containers flatten their children) and postDraw (debug dump tasks). Any
// failure is surfaced as a single DrawingError naming the failing node's
// kind; a partial task list is not usable. For a dynamic page this is the
// ordered partition.
func (n *Node) DrawingTasks(doc *Document) ([]*Task, error) {
	if n.kind == KindDynamicPage {
		return n.OrderedDrawingTasks(doc)
	}
	tasks, err := n.collectDrawingTasks(doc)
	if err != nil {
		var de *DrawingError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &DrawingError{Kind: n.kind, Err: err}
	}
	return tasks, nil
}

func (n *Node) collectDrawingTasks(doc *Document) ([]*Task, error) {
	n.tasks = n.tasks[:0]

	if err := n.preDraw(doc); err != nil {
		return nil, err
	}
	if err := n.doDraw(doc); err != nil {
		return nil, err
	}
	if err := n.postDraw(doc); err != nil {
		return nil, err
	}
	return n.tasks, nil
}

// preDraw contributes enhancement tasks (priority = enhancement priority +
// node priority) and behaviour tasks (node priority).
func (n *Node) preDraw(doc *Document) error {
	if len(n.enhancementBag) > 0 {
		enhancements, err := doc.Enhancements(n.enhancementBag)
		if err != nil {
			return err
		}
		for _, e := range enhancements {
			n.tasks = append(n.tasks, NewTask(e.Priority()+n.priority, func() error {
				gc, err := n.GraphicsContext()
				if err != nil {
					return err
				}
				return e.Draw(gc, n)
			}))
		}
	}
	for _, b := range n.behaviours {
		n.tasks = append(n.tasks, newBehaviourTask(b, n))
	}
	return nil
}

func (n *Node) doDraw(doc *Document) error {
	switch n.kind {
	case KindText:
		n.tasks = append(n.tasks, n.textDrawTask(doc))
	case KindImage:
		n.tasks = append(n.tasks, n.imageDrawTask())
	case KindPage:
		// watermark sits beneath content, header/footer above it
		for _, name := range []string{PlaceholderWatermark, PlaceholderHeader, PlaceholderFooter} {
			ph := n.Placeholder(name)
			if ph == nil {
				continue
			}
			tasks, err := ph.DrawingTasks(doc)
			if err != nil {
				return err
			}
			n.tasks = append(n.tasks, tasks...)
		}
		fallthrough
	case KindContainer:
		for _, child := range n.children {
			tasks, err := child.DrawingTasks(doc)
			if err != nil {
				return err
			}
			n.tasks = append(n.tasks, tasks...)
		}
	}
	return nil
}

// postDraw appends the debug dump task when requested by the dump
// attribute.
func (n *Node) postDraw(doc *Document) error {
	tasks, err := n.dumpTasks()
	if err != nil {
		return err
	}
	n.tasks = append(n.tasks, tasks...)
	return nil
}

// postDrawingTasks collects only the postDraw phase of the subtree. Used
// by the dynamic page to build the post partition over its full history.
func (n *Node) postDrawingTasks(doc *Document) ([]*Task, error) {
	tasks, err := n.dumpTasks()
	if err != nil {
		return nil, &DrawingError{Kind: n.kind, Err: err}
	}
	for _, child := range n.children {
		ct, err := child.postDrawingTasks(doc)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, ct...)
	}
	return tasks, nil
}

func (n *Node) dumpTasks() ([]*Task, error) {
	dump, _ := n.attrs[AttrDump].(bool)
	if !dump {
		return nil, nil
	}
	return []*Task{NewTask(n.priority, func() error {
		gc, err := n.GraphicsContext()
		if err != nil {
			return err
		}
		ul := n.boundary.Point(geom.UpperLeft)
		return gc.Annotate(ul.X, ul.Y, fmt.Sprintf("dump of %s", n.kind), n.dumpText())
	})}, nil
}

// dumpText renders resolved attributes (in natural name order) and corner
// coordinates for the debug annotation.
func (n *Node) dumpText() string {
	names := n.schema.Names()
	sort.Sort(natural.StringSlice(names))

	var b strings.Builder
	b.WriteString("attributes:\n")
	for _, name := range names {
		v, err := n.Attribute(name)
		if err != nil || v == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s: %v\n", name, v)
	}
	b.WriteString("boundary:\n")
	for i := 0; i < n.boundary.Len(); i++ {
		fmt.Fprintf(&b, "  %v\n", n.boundary.Point(i))
	}
	return b.String()
}
