package layout

import (
	"fmt"

	"github.com/google/uuid"

	"folio/geom"
)

// Node is a single layout/drawing element of the document tree. Variants
// are discriminated by Kind; kind-specific state lives in the extension
// structs so the common tree, geometry and attribute machinery stays in one
// place.
type Node struct {
	kind     Kind
	id       uuid.UUID
	schema   *Schema
	attrs    map[string]any
	boundary *geom.Boundary

	parent   *Node // weak: the parent owns its children, never the reverse
	children []*Node
	priority int

	enhancementBag map[string]map[string]any
	behaviours     []Behaviour
	tasks          []*Task
	formatters     []string

	// percentage dimensions are kept beside the raw attributes so resize
	// can rescale against the parent
	relativeWidth     float64
	relativeHeight    float64
	hasRelativeWidth  bool
	hasRelativeHeight bool

	// tri-state ancestor memos: name absent = unresolved, nil entry = no
	// such ancestor exists. Valid for the lifetime of the node instance,
	// invalidated only by node recreation.
	ancestorMemo map[string]*Node

	text    *textExt
	image   *imageExt
	page    *pageExt
	dynamic *dynamicExt
}

// New creates a node of the given kind with schema defaults applied.
func New(kind Kind) *Node {
	s := schemaFor(kind)
	n := &Node{
		kind:   kind,
		id:     uuid.New(),
		schema: s,
		attrs:  make(map[string]any, len(s.defaults)),
	}
	for name, v := range s.defaults {
		n.attrs[name] = v
	}
	switch kind {
	case KindText:
		n.text = &textExt{}
	case KindImage:
		n.image = &imageExt{}
	case KindPage:
		n.page = &pageExt{}
		n.boundary = geom.NewBoundary(geom.P(0, 0), geom.A4.Width, geom.A4.Height)
		n.attrs[AttrWidth] = geom.A4.Width
		n.attrs[AttrHeight] = geom.A4.Height
	case KindDynamicPage:
		n.dynamic = newDynamicExt()
		n.dynamic.prototype = New(KindPage)
	}
	if n.boundary == nil {
		n.boundary = &geom.Boundary{}
	}
	return n
}

// NewContainer creates an ordinary container node.
func NewContainer() *Node { return New(KindContainer) }

// NewText creates a text leaf with the given content.
func NewText(content string) *Node {
	n := New(KindText)
	n.text.content = content
	return n
}

// NewImage creates an image leaf pointing at the given source.
func NewImage(src string) *Node {
	n := New(KindImage)
	n.attrs[AttrSrc] = src
	return n
}

// Kind returns the variant discriminator.
func (n *Node) Kind() Kind { return n.kind }

// ID returns the node identity. Identity distinguishes clones of the same
// prototype subtree and keys the dynamic-page formatted-marker set.
func (n *Node) ID() uuid.UUID { return n.id }

// Parent returns the parent node or nil for a detached root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the owned child list. Callers must not reparent entries
// directly - use Add and RemoveChild.
func (n *Node) Children() []*Node { return n.children }

// Boundary returns the node's exclusively owned boundary.
func (n *Node) Boundary() *geom.Boundary { return n.boundary }

// Priority returns the node draw priority. Children are assigned
// parent.priority - 1 when attached.
func (n *Node) Priority() int { return n.priority }

// SetPriority sets the priority and cascades it through the subtree.
func (n *Node) SetPriority(p int) {
	n.priority = p
	for _, c := range n.children {
		c.SetPriority(p - 1)
	}
}

// FormatterNames returns the ordered formatter names applied to this node
// during a formatting pass.
func (n *Node) FormatterNames() []string { return n.formatters }

// SetFormatterNames replaces the ordered formatter name list.
func (n *Node) SetFormatterNames(names ...string) {
	n.formatters = append(n.formatters[:0], names...)
}

// Add attaches a child. Leaf kinds cannot own children.
func (n *Node) Add(child *Node) error {
	if !n.kind.HasChildren() {
		return fmt.Errorf("%s node cannot have children", n.kind)
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	child.SetPriority(n.priority - 1)
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches a direct child; unknown nodes are ignored.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Width returns the current numeric width attribute, zero when unresolved.
func (n *Node) Width() float64 {
	f, err := toFloat(n.attrs[AttrWidth])
	if err != nil {
		return 0
	}
	return f
}

// Height returns the current numeric height attribute, zero when
// unresolved.
func (n *Node) Height() float64 {
	f, err := toFloat(n.attrs[AttrHeight])
	if err != nil {
		return 0
	}
	return f
}

// RelativeWidth returns the percentage width and whether one was declared.
func (n *Node) RelativeWidth() (float64, bool) {
	return n.relativeWidth, n.hasRelativeWidth
}

// RelativeHeight returns the percentage height and whether one was
// declared.
func (n *Node) RelativeHeight() (float64, bool) {
	return n.relativeHeight, n.hasRelativeHeight
}

// attrFloat reads a numeric attribute directly, treating unset and
// non-numeric values as zero. Used by geometry code where nil means "no
// contribution".
func (n *Node) attrFloat(name string) float64 {
	f, err := toFloat(n.attrs[name])
	if err != nil {
		return 0
	}
	return f
}

// HasAttribute reports whether the node's schema declares the attribute,
// regardless of the stored value (including nil).
func (n *Node) HasAttribute(name string) bool {
	return n.schema.Has(name)
}

// SetAttribute validates the name against the schema, then either runs the
// kind's setter override or stores the value directly. On a dynamic page
// the write fans out to the prototype and every already-created page so a
// late global change retroactively applies to pages already emitted.
func (n *Node) SetAttribute(name string, value any) error {
	if !n.schema.Has(name) {
		return &InvalidAttributeError{Kind: n.kind, Name: name}
	}
	if n.kind == KindDynamicPage && n.dynamic.prototype != nil {
		if err := n.dynamic.prototype.SetAttribute(name, value); err != nil {
			return err
		}
		for _, p := range n.dynamic.pages {
			if err := p.SetAttribute(name, value); err != nil {
				return err
			}
		}
		n.attrs[name] = n.dynamic.prototype.attrs[name]
		return nil
	}
	if setter, ok := n.schema.setters[name]; ok {
		return setter(n, value)
	}
	n.attrs[name] = normalizeValue(value)
	return nil
}

// SetAttributes applies a map of attributes. Application stops at the
// first failure.
func (n *Node) SetAttributes(attrs map[string]any) error {
	for name, v := range attrs {
		if err := n.SetAttribute(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Attribute validates the name against the schema, then either runs the
// kind's getter override or reads the stored value directly. Dynamic pages
// delegate reads to their prototype.
func (n *Node) Attribute(name string) (any, error) {
	if !n.schema.Has(name) {
		return nil, &InvalidAttributeError{Kind: n.kind, Name: name}
	}
	if n.kind == KindDynamicPage && n.dynamic.prototype != nil {
		return n.dynamic.prototype.Attribute(name)
	}
	if getter, ok := n.schema.getters[name]; ok {
		return getter(n)
	}
	return n.attrs[name], nil
}

// RecurseAttribute resolves an attribute whose local value is unset by
// walking the parent chain. The resolved value is cached onto this node:
// the first resolution permanently overwrites the local nil, so a later
// change of the ancestor's attribute is NOT picked up by this node. This
// trades staleness for cheap repeated formatting passes; see DESIGN.md.
func (n *Node) RecurseAttribute(name string) (any, error) {
	if !n.schema.Has(name) {
		return nil, &InvalidAttributeError{Kind: n.kind, Name: name}
	}
	if v := n.attrs[name]; v != nil {
		return v, nil
	}
	if n.parent == nil || !n.parent.schema.Has(name) {
		return nil, nil
	}
	v, err := n.parent.RecurseAttribute(name)
	if err != nil {
		return nil, err
	}
	if v != nil {
		n.attrs[name] = v
	}
	return v, nil
}

// normalizeValue narrows stored value types so serialization round-trips
// exactly: all numerics become float64.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}

// SetMargin sets 1 to 4 margins with CSS shorthand expansion, in
// top/right/bottom/left order.
func (n *Node) SetMargin(values ...float64) error {
	return n.setShorthand(AttrMargin, values)
}

// SetPadding sets 1 to 4 paddings with CSS shorthand expansion.
func (n *Node) SetPadding(values ...float64) error {
	return n.setShorthand(AttrPadding, values)
}

func (n *Node) setShorthand(name string, values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("attribute %q: no values given", name)
	}
	if len(values) > 4 {
		return fmt.Errorf("attribute %q: at most 4 values expected, got %d", name, len(values))
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return n.SetAttribute(name, joinFields(parts))
}

func joinFields(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}

// AncestorMatching walks the parent chain and returns the first ancestor
// satisfying the predicate, or nil when the root is reached without a
// match.
func (n *Node) AncestorMatching(pred func(*Node) bool) *Node {
	for a := n.parent; a != nil; a = a.parent {
		if pred(a) {
			return a
		}
	}
	return nil
}

// Page returns the nearest page (self included). A node detached from any
// page cannot be asked for its page, which is a structural error.
func (n *Node) Page() (*Node, error) {
	if n.kind.IsPage() {
		return n, nil
	}
	if p := n.AncestorMatching(func(a *Node) bool { return a.kind.IsPage() }); p != nil {
		return p, nil
	}
	return nil, &StructuralError{Kind: n.kind, Msg: "not attached to any page"}
}

// ancestorWith memoizes the nearest ancestor (self included) with a
// non-nil value of the given attribute. The memo is tri-state: missing key
// means unresolved, a nil entry means no such ancestor exists. Later
// attribute mutation does not invalidate it.
func (n *Node) ancestorWith(name string) *Node {
	if n.ancestorMemo != nil {
		if a, done := n.ancestorMemo[name]; done {
			return a
		}
	}
	var found *Node
	for a := n; a != nil; a = a.parent {
		if a.schema.Has(name) && a.attrs[name] != nil {
			found = a
			break
		}
	}
	if n.ancestorMemo == nil {
		n.ancestorMemo = make(map[string]*Node)
	}
	n.ancestorMemo[name] = found
	return found
}

// AncestorWithFontSize returns the nearest node up the chain (self
// included) with an explicit font size, or nil.
func (n *Node) AncestorWithFontSize() *Node {
	return n.ancestorWith(AttrFontSize)
}

// AncestorWithRotation returns the nearest node up the chain (self
// included) with an explicit rotation, or nil.
func (n *Node) AncestorWithRotation() *Node {
	return n.ancestorWith(AttrRotate)
}

// FontSizeRecursively returns the effective font size: the nearest
// explicit value up the chain, or zero when none exists.
func (n *Node) FontSizeRecursively() float64 {
	a := n.AncestorWithFontSize()
	if a == nil {
		return 0
	}
	return a.attrFloat(AttrFontSize)
}

// Behaviours returns the attached behaviours.
func (n *Node) Behaviours() []Behaviour { return n.behaviours }

// AddBehaviour attaches an interactive/annotation behaviour executed
// during drawing-task collection.
func (n *Node) AddBehaviour(b Behaviour) {
	n.behaviours = append(n.behaviours, b)
}

// EnhancementBag returns the node's named enhancement attribute bags.
func (n *Node) EnhancementBag() map[string]map[string]any {
	return n.enhancementBag
}

// MergeEnhancement merges attributes into the named enhancement bag
// additively: existing entries keep values not overridden by the new bag.
func (n *Node) MergeEnhancement(name string, attrs map[string]any) {
	if n.enhancementBag == nil {
		n.enhancementBag = make(map[string]map[string]any)
	}
	bag, ok := n.enhancementBag[name]
	if !ok {
		bag = make(map[string]any, len(attrs))
		n.enhancementBag[name] = bag
	}
	for k, v := range attrs {
		bag[k] = normalizeValue(v)
	}
}

// Duplicate produces a structural clone: deep-copied boundary, attributes
// and enhancement bag, duplicated children, fresh identity, no parent, no
// collected tasks. Kind-specific state resets: a dynamic page drops its
// generated page list, a page keeps duplicated placeholders but loses the
// page context and graphics backend binding.
func (n *Node) Duplicate() *Node {
	d := &Node{
		kind:              n.kind,
		id:                uuid.New(),
		schema:            n.schema,
		attrs:             make(map[string]any, len(n.attrs)),
		boundary:          n.boundary.Clone(),
		priority:          n.priority,
		relativeWidth:     n.relativeWidth,
		relativeHeight:    n.relativeHeight,
		hasRelativeWidth:  n.hasRelativeWidth,
		hasRelativeHeight: n.hasRelativeHeight,
	}
	for name, v := range n.attrs {
		d.attrs[name] = v
	}
	if n.enhancementBag != nil {
		d.enhancementBag = make(map[string]map[string]any, len(n.enhancementBag))
		for name, bag := range n.enhancementBag {
			nb := make(map[string]any, len(bag))
			for k, v := range bag {
				nb[k] = v
			}
			d.enhancementBag[name] = nb
		}
	}
	d.behaviours = append([]Behaviour(nil), n.behaviours...)
	d.formatters = append([]string(nil), n.formatters...)
	for _, c := range n.children {
		cc := c.Duplicate()
		cc.parent = d
		d.children = append(d.children, cc)
	}
	switch n.kind {
	case KindText:
		d.text = n.text.clone()
	case KindImage:
		d.image = n.image.clone()
	case KindPage:
		d.page = n.page.cloneForDuplicate(d)
	case KindDynamicPage:
		// the clone starts with an empty page sequence
		d.dynamic = newDynamicExt()
		if n.dynamic.prototype != nil {
			d.dynamic.prototype = n.dynamic.prototype.Duplicate()
		}
	}
	return d
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%s]", n.kind, n.id)
}
