package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Attribute names declared by node schemas. Unknown names are rejected on
// both get and set with InvalidAttributeError.
const (
	AttrWidth         = "width"
	AttrHeight        = "height"
	AttrMargin        = "margin"
	AttrMarginTop     = "margin-top"
	AttrMarginRight   = "margin-right"
	AttrMarginBottom  = "margin-bottom"
	AttrMarginLeft    = "margin-left"
	AttrPadding       = "padding"
	AttrPaddingTop    = "padding-top"
	AttrPaddingRight  = "padding-right"
	AttrPaddingBottom = "padding-bottom"
	AttrPaddingLeft   = "padding-left"
	AttrFontType      = "font-type"
	AttrFontSize      = "font-size"
	AttrLineHeight    = "line-height"
	AttrColor         = "color"
	AttrTextAlign     = "text-align"
	AttrTextIndent    = "text-indent"
	AttrBreakable     = "breakable"
	AttrStaticSize    = "static-size"
	AttrRotate        = "rotate"
	AttrDump          = "dump"
	AttrSrc           = "src"
	AttrKeepRatio     = "keep-ratio"
	AttrPageSize      = "page-size"
	AttrOrientation   = "orientation"
)

// AutoValue marks a margin which should be resolved by the alignment
// formatter instead of holding a fixed length.
const AutoValue = "auto"

// Rotation keywords accepted by the rotate attribute in addition to a
// numeric value in degrees.
const (
	RotateDiagonally        = "diagonally"
	RotateCounterDiagonally = "-diagonally"
)

type (
	getterFunc func(n *Node) (any, error)
	setterFunc func(n *Node, value any) error
)

// Schema describes the attribute surface of one node kind: the declared
// names with their defaults and the accessor overrides. Schemas are built
// once at package initialization and are read-only afterwards.
type Schema struct {
	defaults map[string]any
	getters  map[string]getterFunc
	setters  map[string]setterFunc
}

// Has reports whether the schema declares the attribute, regardless of any
// stored value.
func (s *Schema) Has(name string) bool {
	_, ok := s.defaults[name]
	return ok
}

// Names returns all declared attribute names in unspecified order.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.defaults))
	for name := range s.defaults {
		names = append(names, name)
	}
	return names
}

var kindSchemas [kindCount]*Schema

func schemaFor(k Kind) *Schema {
	return kindSchemas[k]
}

func baseSchema(breakable bool) *Schema {
	s := &Schema{
		defaults: map[string]any{
			AttrWidth:         nil,
			AttrHeight:        nil,
			AttrMargin:        nil,
			AttrMarginTop:     nil,
			AttrMarginRight:   nil,
			AttrMarginBottom:  nil,
			AttrMarginLeft:    nil,
			AttrPadding:       nil,
			AttrPaddingTop:    nil,
			AttrPaddingRight:  nil,
			AttrPaddingBottom: nil,
			AttrPaddingLeft:   nil,
			AttrFontType:      nil,
			AttrFontSize:      nil,
			AttrLineHeight:    nil,
			AttrColor:         nil,
			AttrTextAlign:     nil,
			AttrBreakable:     breakable,
			AttrStaticSize:    false,
			AttrRotate:        nil,
			AttrDump:          false,
		},
		getters: map[string]getterFunc{
			AttrRotate:    getRotate,
			AttrBreakable: getBreakable,
		},
		setters: map[string]setterFunc{
			AttrWidth:      setWidth,
			AttrHeight:     setHeight,
			AttrMargin:     setMargin,
			AttrPadding:    setPadding,
			AttrBreakable:  setBool(AttrBreakable),
			AttrStaticSize: setBool(AttrStaticSize),
			AttrDump:       setBool(AttrDump),
		},
	}
	return s
}

func (s *Schema) extend(defaults map[string]any, setters map[string]setterFunc) *Schema {
	for name, v := range defaults {
		s.defaults[name] = v
	}
	for name, f := range setters {
		s.setters[name] = f
	}
	return s
}

func init() {
	pageDefaults := map[string]any{
		AttrPageSize:    nil,
		AttrOrientation: nil,
	}

	kindSchemas[KindContainer] = baseSchema(true)
	kindSchemas[KindPage] = baseSchema(false).extend(pageDefaults, nil)
	kindSchemas[KindDynamicPage] = baseSchema(false).extend(pageDefaults, nil)
	kindSchemas[KindText] = baseSchema(true).extend(map[string]any{AttrTextIndent: nil}, nil)
	kindSchemas[KindImage] = baseSchema(false).extend(
		map[string]any{AttrSrc: nil, AttrKeepRatio: true},
		map[string]setterFunc{AttrKeepRatio: setBool(AttrKeepRatio)})
}

// toFloat coerces attribute values which are semantically numeric. String
// values are parsed so markup attributes do not need pre-conversion.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value %v (%T) is not a number", v, v)
}

// toBool coerces bool-semantics attribute values, accepting the usual
// markup spellings.
func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("value %q is not a boolean", t)
		}
		return b, nil
	}
	return false, fmt.Errorf("value %v (%T) is not a boolean", v, v)
}

func setBool(name string) setterFunc {
	return func(n *Node, value any) error {
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
		n.attrs[name] = b
		return nil
	}
}

// setWidth stores the width, detecting the "N%" form: the percentage is
// kept beside the raw attribute so a later resize can rescale the node
// against its parent.
func setWidth(n *Node, value any) error {
	if pct, ok, err := relativeValue(value); err != nil {
		return fmt.Errorf("attribute %q: %w", AttrWidth, err)
	} else if ok {
		n.relativeWidth, n.hasRelativeWidth = pct, true
		n.attrs[AttrWidth] = value
		return nil
	}
	f, err := toFloat(value)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", AttrWidth, err)
	}
	n.attrs[AttrWidth] = f
	return nil
}

func setHeight(n *Node, value any) error {
	if pct, ok, err := relativeValue(value); err != nil {
		return fmt.Errorf("attribute %q: %w", AttrHeight, err)
	} else if ok {
		n.relativeHeight, n.hasRelativeHeight = pct, true
		n.attrs[AttrHeight] = value
		return nil
	}
	f, err := toFloat(value)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", AttrHeight, err)
	}
	n.attrs[AttrHeight] = f
	return nil
}

// relativeValue reports whether the value uses the percentage form and
// returns the percentage.
func relativeValue(value any) (float64, bool, error) {
	s, ok := value.(string)
	if !ok || !strings.HasSuffix(strings.TrimSpace(s), "%") {
		return 0, false, nil
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed percentage %q", s)
	}
	return pct, true, nil
}

func setMargin(n *Node, value any) error {
	return setComposite(n, AttrMargin, value,
		[4]string{AttrMarginTop, AttrMarginRight, AttrMarginBottom, AttrMarginLeft}, true)
}

func setPadding(n *Node, value any) error {
	return setComposite(n, AttrPadding, value,
		[4]string{AttrPaddingTop, AttrPaddingRight, AttrPaddingBottom, AttrPaddingLeft}, false)
}

// setComposite implements the CSS shorthand: 1-4 values, cyclically
// repeated up to four, assigned in top/right/bottom/left order. The value
// is either numeric or a space-delimited string; margins additionally
// accept the "auto" keyword.
func setComposite(n *Node, name string, value any, targets [4]string, allowAuto bool) error {
	values, err := shorthandValues(value, allowAuto)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	n.attrs[name] = value
	for i, target := range targets {
		n.attrs[target] = values[i%len(values)]
	}
	return nil
}

func shorthandValues(value any, allowAuto bool) ([]any, error) {
	var tokens []string
	switch t := value.(type) {
	case string:
		tokens = strings.Fields(t)
	default:
		f, err := toFloat(value)
		if err != nil {
			return nil, err
		}
		return []any{f}, nil
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	if len(tokens) > 4 {
		return nil, fmt.Errorf("at most 4 values expected, got %d", len(tokens))
	}
	values := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		if allowAuto && tok == AutoValue {
			values = append(values, AutoValue)
			continue
		}
		f, err := toFloat(tok)
		if err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

// getRotate derives the rotation angle in radians from the stored value: a
// number is treated as degrees, the "diagonally" keywords compute the angle
// of the node's own diagonal.
func getRotate(n *Node) (any, error) {
	raw := n.attrs[AttrRotate]
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		switch s {
		case RotateDiagonally:
			return math.Atan2(n.Height(), n.Width()), nil
		case RotateCounterDiagonally:
			return -math.Atan2(n.Height(), n.Width()), nil
		}
	}
	deg, err := toFloat(raw)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", AttrRotate, err)
	}
	return deg * math.Pi / 180, nil
}

// getBreakable derives breakability: a node marked non-breakable is still
// breakable when some ancestor page is shorter than the node, otherwise it
// could never fit a physical page. A detached node falls back to the stored
// value.
func getBreakable(n *Node) (any, error) {
	stored, _ := n.attrs[AttrBreakable].(bool)
	if stored {
		return true, nil
	}
	page, err := n.Page()
	if err != nil {
		// recoverable: no page ancestor, keep the stored value
		return stored, nil
	}
	if page != n && page.Height() > 0 && n.Height() > page.Height() {
		return true, nil
	}
	return stored, nil
}
