package layout

import (
	"fmt"
	"io"
	"sort"

	"github.com/amazon-ion/ion-go/ion"

	"folio/geom"
)

// serializeVersion tags the persisted node record layout.
const serializeVersion = 1

// EncodeNode writes the full persistent state of a node tree as Amazon Ion
// text: boundary, attributes, enhancement bag, formatter names, priority,
// children and (for dynamic pages) the prototype. Encoding is explicit per
// field - no reflection-based serialization.
func EncodeNode(w io.Writer, n *Node) error {
	iw := ion.NewTextWriter(w)
	if err := writeNode(iw, n); err != nil {
		return fmt.Errorf("unable to encode %s node: %w", n.kind, err)
	}
	if err := iw.Finish(); err != nil {
		return fmt.Errorf("unable to encode %s node: %w", n.kind, err)
	}
	return nil
}

func field(w ion.Writer, name string) error {
	return w.FieldName(ion.NewSymbolTokenFromString(name))
}

func writeNode(w ion.Writer, n *Node) error {
	if err := w.BeginStruct(); err != nil {
		return err
	}

	if err := field(w, "version"); err != nil {
		return err
	}
	if err := w.WriteInt(serializeVersion); err != nil {
		return err
	}
	if err := field(w, "kind"); err != nil {
		return err
	}
	if err := w.WriteString(n.kind.String()); err != nil {
		return err
	}
	if err := field(w, "priority"); err != nil {
		return err
	}
	if err := w.WriteInt(int64(n.priority)); err != nil {
		return err
	}

	if err := writeBoundary(w, n); err != nil {
		return err
	}
	if err := writeAttributes(w, n); err != nil {
		return err
	}
	if err := writeEnhancementBag(w, n); err != nil {
		return err
	}

	if err := field(w, "formattersNames"); err != nil {
		return err
	}
	if err := w.BeginList(); err != nil {
		return err
	}
	for _, name := range n.formatters {
		if err := w.WriteString(name); err != nil {
			return err
		}
	}
	if err := w.EndList(); err != nil {
		return err
	}

	if n.hasRelativeWidth {
		if err := field(w, "relativeWidth"); err != nil {
			return err
		}
		if err := w.WriteFloat(n.relativeWidth); err != nil {
			return err
		}
	}
	if n.hasRelativeHeight {
		if err := field(w, "relativeHeight"); err != nil {
			return err
		}
		if err := w.WriteFloat(n.relativeHeight); err != nil {
			return err
		}
	}

	if n.kind == KindText {
		if err := field(w, "text"); err != nil {
			return err
		}
		if err := w.WriteString(n.text.content); err != nil {
			return err
		}
	}

	if len(n.children) > 0 {
		if err := field(w, "children"); err != nil {
			return err
		}
		if err := w.BeginList(); err != nil {
			return err
		}
		for _, child := range n.children {
			if err := writeNode(w, child); err != nil {
				return err
			}
		}
		if err := w.EndList(); err != nil {
			return err
		}
	}

	if n.kind == KindDynamicPage {
		if err := field(w, "prototype"); err != nil {
			return err
		}
		if err := writeNode(w, n.dynamic.prototype); err != nil {
			return err
		}
	}

	return w.EndStruct()
}

func writeBoundary(w ion.Writer, n *Node) error {
	if err := field(w, "boundary"); err != nil {
		return err
	}
	if err := w.BeginStruct(); err != nil {
		return err
	}
	if err := field(w, "closed"); err != nil {
		return err
	}
	if err := w.WriteBool(n.boundary.Closed()); err != nil {
		return err
	}
	if err := field(w, "points"); err != nil {
		return err
	}
	if err := w.BeginList(); err != nil {
		return err
	}
	for i := 0; i < n.boundary.Len(); i++ {
		p := n.boundary.Point(i)
		if err := w.BeginList(); err != nil {
			return err
		}
		if err := w.WriteFloat(p.X); err != nil {
			return err
		}
		if err := w.WriteFloat(p.Y); err != nil {
			return err
		}
		if err := w.EndList(); err != nil {
			return err
		}
	}
	if err := w.EndList(); err != nil {
		return err
	}
	return w.EndStruct()
}

func writeAttributes(w ion.Writer, n *Node) error {
	if err := field(w, "attributes"); err != nil {
		return err
	}
	if err := w.BeginStruct(); err != nil {
		return err
	}
	names := n.schema.Names()
	sort.Strings(names)
	for _, name := range names {
		if err := field(w, name); err != nil {
			return err
		}
		if err := writeValue(w, n.attrs[name]); err != nil {
			return err
		}
	}
	return w.EndStruct()
}

func writeEnhancementBag(w ion.Writer, n *Node) error {
	if err := field(w, "enhancementBag"); err != nil {
		return err
	}
	if err := w.BeginStruct(); err != nil {
		return err
	}
	bagNames := make([]string, 0, len(n.enhancementBag))
	for name := range n.enhancementBag {
		bagNames = append(bagNames, name)
	}
	sort.Strings(bagNames)
	for _, bagName := range bagNames {
		if err := field(w, bagName); err != nil {
			return err
		}
		if err := w.BeginStruct(); err != nil {
			return err
		}
		bag := n.enhancementBag[bagName]
		keys := make([]string, 0, len(bag))
		for k := range bag {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := field(w, k); err != nil {
				return err
			}
			if err := writeValue(w, bag[k]); err != nil {
				return err
			}
		}
		if err := w.EndStruct(); err != nil {
			return err
		}
	}
	return w.EndStruct()
}

func writeValue(w ion.Writer, v any) error {
	switch t := v.(type) {
	case nil:
		return w.WriteNull()
	case bool:
		return w.WriteBool(t)
	case float64:
		return w.WriteFloat(t)
	case string:
		return w.WriteString(t)
	}
	return fmt.Errorf("unsupported attribute value type %T", v)
}

// DecodeNode reads a node tree previously written by EncodeNode.
func DecodeNode(r io.Reader) (*Node, error) {
	ir := ion.NewReader(r)
	if !ir.Next() {
		if err := ir.Err(); err != nil {
			return nil, fmt.Errorf("unable to decode node: %w", err)
		}
		return nil, fmt.Errorf("unable to decode node: empty input")
	}
	n, err := readNode(ir)
	if err != nil {
		return nil, fmt.Errorf("unable to decode node: %w", err)
	}
	return n, nil
}

func readNode(r ion.Reader) (*Node, error) {
	if r.Type() != ion.StructType {
		return nil, fmt.Errorf("expected struct, got %v", r.Type())
	}
	if err := r.StepIn(); err != nil {
		return nil, err
	}

	// two-pass construction is impractical while streaming, so raw parts
	// are captured first and the node assembled once the struct ends
	var (
		n          *Node
		version    int64
		boundary   *rawBoundary
		attrs      map[string]any
		bag        map[string]map[string]any
		formatters []string
		priority   int64
		relWidth   *float64
		relHeight  *float64
		text       *string
		children   []*Node
		prototype  *Node
	)

	for r.Next() {
		name, err := fieldName(r)
		if err != nil {
			return nil, err
		}
		switch name {
		case "version":
			if version, err = intValue(r); err != nil {
				return nil, err
			}
			if version != serializeVersion {
				return nil, fmt.Errorf("unsupported record version %d", version)
			}
		case "kind":
			s, err := stringValue(r)
			if err != nil {
				return nil, err
			}
			kind, err := ParseKind(s)
			if err != nil {
				return nil, err
			}
			n = New(kind)
		case "priority":
			if priority, err = intValue(r); err != nil {
				return nil, err
			}
		case "boundary":
			if boundary, err = readBoundary(r); err != nil {
				return nil, err
			}
		case "attributes":
			if attrs, err = readValueStruct(r); err != nil {
				return nil, err
			}
		case "enhancementBag":
			if bag, err = readBag(r); err != nil {
				return nil, err
			}
		case "formattersNames":
			if formatters, err = readStringList(r); err != nil {
				return nil, err
			}
		case "relativeWidth":
			f, err := floatValue(r)
			if err != nil {
				return nil, err
			}
			relWidth = &f
		case "relativeHeight":
			f, err := floatValue(r)
			if err != nil {
				return nil, err
			}
			relHeight = &f
		case "text":
			s, err := stringValue(r)
			if err != nil {
				return nil, err
			}
			text = &s
		case "children":
			if err := r.StepIn(); err != nil {
				return nil, err
			}
			for r.Next() {
				child, err := readNode(r)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			if err := r.StepOut(); err != nil {
				return nil, err
			}
		case "prototype":
			if prototype, err = readNode(r); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}

	if n == nil {
		return nil, fmt.Errorf("record has no kind field")
	}

	n.priority = int(priority)
	if boundary != nil {
		b := n.boundary
		b.Reset()
		for _, p := range boundary.points {
			if err := b.SetNext(p); err != nil {
				return nil, err
			}
		}
		if boundary.closed {
			if err := b.Close(); err != nil {
				return nil, err
			}
		}
	}
	for name, v := range attrs {
		if !n.schema.Has(name) {
			return nil, &InvalidAttributeError{Kind: n.kind, Name: name}
		}
		n.attrs[name] = v
	}
	for bagName, bagAttrs := range bag {
		n.MergeEnhancement(bagName, bagAttrs)
	}
	n.formatters = formatters
	if relWidth != nil {
		n.relativeWidth, n.hasRelativeWidth = *relWidth, true
	}
	if relHeight != nil {
		n.relativeHeight, n.hasRelativeHeight = *relHeight, true
	}
	if text != nil && n.kind == KindText {
		n.text.content = *text
	}
	for _, child := range children {
		child.parent = n
		n.children = append(n.children, child)
	}
	if prototype != nil && n.kind == KindDynamicPage {
		n.dynamic.prototype = prototype
	}
	return n, nil
}

type rawBoundary struct {
	closed bool
	points []geom.Point
}

func readBoundary(r ion.Reader) (*rawBoundary, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	rb := &rawBoundary{}
	for r.Next() {
		name, err := fieldName(r)
		if err != nil {
			return nil, err
		}
		switch name {
		case "closed":
			b, err := boolValue(r)
			if err != nil {
				return nil, err
			}
			rb.closed = b
		case "points":
			if err := r.StepIn(); err != nil {
				return nil, err
			}
			for r.Next() {
				if err := r.StepIn(); err != nil {
					return nil, err
				}
				var coords []float64
				for r.Next() {
					f, err := floatValue(r)
					if err != nil {
						return nil, err
					}
					coords = append(coords, f)
				}
				if err := r.StepOut(); err != nil {
					return nil, err
				}
				if len(coords) != 2 {
					return nil, fmt.Errorf("boundary point has %d coordinates", len(coords))
				}
				rb.points = append(rb.points, geom.P(coords[0], coords[1]))
			}
			if err := r.StepOut(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown boundary field %q", name)
		}
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	return rb, nil
}

func readValueStruct(r ion.Reader) (map[string]any, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	values := make(map[string]any)
	for r.Next() {
		name, err := fieldName(r)
		if err != nil {
			return nil, err
		}
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	return values, nil
}

func readBag(r ion.Reader) (map[string]map[string]any, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	bag := make(map[string]map[string]any)
	for r.Next() {
		name, err := fieldName(r)
		if err != nil {
			return nil, err
		}
		attrs, err := readValueStruct(r)
		if err != nil {
			return nil, err
		}
		bag[name] = attrs
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	return bag, nil
}

func readValue(r ion.Reader) (any, error) {
	if r.IsNull() {
		return nil, nil
	}
	switch r.Type() {
	case ion.BoolType:
		return boolValue(r)
	case ion.FloatType, ion.IntType:
		return floatValue(r)
	case ion.StringType:
		return stringValue(r)
	}
	return nil, fmt.Errorf("unsupported attribute value type %v", r.Type())
}

func readStringList(r ion.Reader) ([]string, error) {
	if err := r.StepIn(); err != nil {
		return nil, err
	}
	var out []string
	for r.Next() {
		s, err := stringValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := r.StepOut(); err != nil {
		return nil, err
	}
	return out, nil
}

func fieldName(r ion.Reader) (string, error) {
	tok, err := r.FieldName()
	if err != nil {
		return "", err
	}
	if tok == nil || tok.Text == nil {
		return "", fmt.Errorf("field has no name")
	}
	return *tok.Text, nil
}

func stringValue(r ion.Reader) (string, error) {
	v, err := r.StringValue()
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func intValue(r ion.Reader) (int64, error) {
	v, err := r.Int64Value()
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}

func floatValue(r ion.Reader) (float64, error) {
	if r.Type() == ion.IntType {
		v, err := intValue(r)
		return float64(v), err
	}
	v, err := r.FloatValue()
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}

func boolValue(r ion.Reader) (bool, error) {
	v, err := r.BoolValue()
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	return *v, nil
}
