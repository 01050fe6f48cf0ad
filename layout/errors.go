package layout

import "fmt"

// InvalidAttributeError reports get/set access to an attribute name the
// node's schema does not declare. It is always surfaced to the caller,
// never silently ignored.
type InvalidAttributeError struct {
	Kind Kind
	Name string
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("attribute %q is not declared for %s nodes", e.Name, e.Kind)
}

// StructuralError reports a node which is not attached to a required
// ancestor, for example asking a detached node for its page. Callers may
// recover from it by falling back to a default.
type StructuralError struct {
	Kind Kind
	Msg  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s node: %s", e.Kind, e.Msg)
}

// DrawingError wraps any failure raised during the three-phase drawing-task
// collection. It identifies the failing node's kind and is fatal to the
// render attempt - partially collected task lists must not be used.
type DrawingError struct {
	Kind Kind
	Err  error
}

func (e *DrawingError) Error() string {
	return fmt.Sprintf("unable to collect drawing tasks of %s node: %v", e.Kind, e.Err)
}

func (e *DrawingError) Unwrap() error {
	return e.Err
}
