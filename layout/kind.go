// Package layout implements the document-composition core: the node tree,
// per-kind attribute schemas, the formatting pass, page breaking and
// priority-ordered drawing-task collection. The actual graphics backend and
// the markup that builds initial trees live outside this package.
package layout

import "fmt"

// Kind discriminates node variants. The set is closed - every variant has
// an attribute schema registered at package initialization and kind checks
// replace any runtime type comparisons.
type Kind int

const (
	KindContainer Kind = iota
	KindPage
	KindDynamicPage
	KindText
	KindImage

	kindCount = iota
)

var kindNames = [kindCount]string{
	KindContainer:   "container",
	KindPage:        "page",
	KindDynamicPage: "dynamic-page",
	KindText:        "text",
	KindImage:       "image",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind by its markup/serialization name.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", name)
}

// IsPage reports whether the kind represents a physical or virtual page.
func (k Kind) IsPage() bool {
	return k == KindPage || k == KindDynamicPage
}

// HasChildren reports whether nodes of this kind may own child nodes.
func (k Kind) HasChildren() bool {
	switch k {
	case KindContainer, KindPage, KindDynamicPage:
		return true
	}
	return false
}

// IsLeaf is the complement of HasChildren.
func (k Kind) IsLeaf() bool {
	return !k.HasChildren()
}
