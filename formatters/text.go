package formatters

import (
	"fmt"
	"strings"

	"folio/font"
	"folio/layout"
)

// formatText wraps the node's content into lines that fit the resolved
// width using the document's font metrics and derives the node height from
// the line count. Runs after dimension and before edges.
func formatText(n *layout.Node, doc *layout.Document) error {
	if n.Kind() != layout.KindText {
		return nil
	}

	fontName, err := n.RecurseAttribute(layout.AttrFontType)
	if err != nil {
		return err
	}
	name, _ := fontName.(string)
	metrics, err := doc.Font(name)
	if err != nil {
		return fmt.Errorf("text node: %w", err)
	}

	size := n.EffectiveFontSize()
	avail := n.Width() -
		attrLen(n, layout.AttrPaddingLeft) - attrLen(n, layout.AttrPaddingRight)
	indent := attrLen(n, layout.AttrTextIndent)

	lines, err := wrap(n.Text(), metrics, size, avail, indent)
	if err != nil {
		return err
	}
	n.SetLines(lines)

	height := float64(len(lines))*n.EffectiveLineHeight() +
		attrLen(n, layout.AttrPaddingTop) + attrLen(n, layout.AttrPaddingBottom)
	return n.SetAttribute(layout.AttrHeight, height)
}

// wrap performs greedy word wrapping. A word wider than the line goes on a
// line of its own rather than being hyphenated.
func wrap(content string, m font.Metrics, size, width, indent float64) ([]string, error) {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil, nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}, nil
	}

	var (
		lines   []string
		current string
		avail   = width - indent // the first line carries the indent
	)
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		w, err := m.TextWidth(candidate, size)
		if err != nil {
			return nil, err
		}
		if w <= avail || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
		avail = width
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}
