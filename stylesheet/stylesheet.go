// Package stylesheet applies a CSS subset to layout node trees: element
// selectors match node kinds, class selectors match markup classes.
// Ordinary declarations become node attributes; border-* and background-*
// declarations populate the node's enhancement bags.
package stylesheet

import (
	"strings"

	"folio/layout"
)

// Rule is one parsed ruleset for a single selector.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
}

// Declaration is a single property with its converted value: float64 for
// numbers and lengths (in points), string for everything else.
type Declaration struct {
	Property string
	Value    any
}

// Selector is a simple selector: a node kind name, a class, or both.
type Selector struct {
	Kind  string // empty matches any kind
	Class string // empty matches any class list
}

// Matches reports whether the selector applies to a node of the given
// kind carrying the given classes.
func (s Selector) Matches(kind string, classes []string) bool {
	if s.Kind != "" && s.Kind != kind {
		return false
	}
	if s.Class != "" {
		for _, c := range classes {
			if c == s.Class {
				return true
			}
		}
		return false
	}
	return true
}

// Stylesheet is an ordered rule list. Later rules win on conflicting
// declarations, like CSS source order.
type Stylesheet struct {
	Rules    []Rule
	Warnings []string
}

// Apply writes every matching rule's declarations onto the node in rule
// order. Unknown attribute names are recorded as warnings on the sheet
// rather than failing the whole pass - a stylesheet may legitimately style
// attributes only some kinds declare.
func (s *Stylesheet) Apply(n *layout.Node, classes ...string) {
	kind := n.Kind().String()
	for _, rule := range s.Rules {
		if !rule.Selector.Matches(kind, classes) {
			continue
		}
		for _, d := range rule.Declarations {
			if bag, key, ok := enhancementTarget(d.Property); ok {
				n.MergeEnhancement(bag, map[string]any{key: d.Value})
				continue
			}
			if !n.HasAttribute(d.Property) {
				s.Warnings = append(s.Warnings,
					"attribute "+d.Property+" is not declared by "+kind+" nodes")
				continue
			}
			if err := n.SetAttribute(d.Property, d.Value); err != nil {
				s.Warnings = append(s.Warnings, err.Error())
			}
		}
	}
}

// enhancementTarget maps border-*/background-* declarations onto
// enhancement bags: border-color -> bag "border", key "color".
func enhancementTarget(property string) (bag, key string, ok bool) {
	for _, name := range []string{"border", "background"} {
		if property == name {
			// bare property: treat the value as the color
			return name, "color", true
		}
		if rest, found := strings.CutPrefix(property, name+"-"); found && rest != "" {
			if rest == "width" {
				rest = "size"
			}
			return name, rest, true
		}
	}
	return "", "", false
}

