package layout

import (
	"folio/geom"
)

// textExt backs the text leaf variant. The raw content is set at build
// time; the wrapped line list is produced by the text formatter against
// the resolved width.
type textExt struct {
	content string
	lines   []string
}

func (t *textExt) clone() *textExt {
	return &textExt{
		content: t.content,
		lines:   append([]string(nil), t.lines...),
	}
}

// Text returns the raw content of a text node.
func (n *Node) Text() string {
	if n.text == nil {
		return ""
	}
	return n.text.content
}

// SetText replaces the raw content and discards wrapped lines.
func (n *Node) SetText(content string) {
	if n.text == nil {
		return
	}
	n.text.content = content
	n.text.lines = nil
}

// Lines returns the wrapped line list of a text node.
func (n *Node) Lines() []string {
	if n.text == nil {
		return nil
	}
	return n.text.lines
}

// SetLines replaces the wrapped line list.
func (n *Node) SetLines(lines []string) {
	if n.text == nil {
		return
	}
	n.text.lines = lines
}

// DefaultFontSize is used when no node up the chain declares font-size.
const DefaultFontSize = 12.0

// EffectiveFontSize returns the recursively resolved font size with the
// engine default as fallback.
func (n *Node) EffectiveFontSize() float64 {
	if size := n.FontSizeRecursively(); size > 0 {
		return size
	}
	return DefaultFontSize
}

// EffectiveLineHeight returns the explicit line-height or 1.2 times the
// effective font size.
func (n *Node) EffectiveLineHeight() float64 {
	if lh := n.attrFloat(AttrLineHeight); lh > 0 {
		return lh
	}
	return 1.2 * n.EffectiveFontSize()
}

func (n *Node) textDrawTask(doc *Document) *Task {
	return NewTask(n.priority, func() error {
		if n.boundary.Len() < 4 {
			// boundary was never built, nothing to draw
			return nil
		}
		gc, err := n.GraphicsContext()
		if err != nil {
			return err
		}

		fontName, err := n.RecurseAttribute(AttrFontType)
		if err != nil {
			return err
		}
		name, _ := fontName.(string)

		color, err := n.RecurseAttribute(AttrColor)
		if err != nil {
			return err
		}
		if c, ok := color.(string); ok && c != "" {
			gc.SetFillColor(c)
		}

		size := n.EffectiveFontSize()
		lineHeight := n.EffectiveLineHeight()
		ul := n.boundary.Point(geom.UpperLeft)
		x := ul.X + n.attrFloat(AttrPaddingLeft)
		top := ul.Y + n.attrFloat(AttrPaddingTop)

		lines := n.text.lines
		if len(lines) == 0 && n.text.content != "" {
			lines = []string{n.text.content}
		}
		for i, line := range lines {
			// baseline approximation: font size below the line's top edge
			y := top + float64(i)*lineHeight + size
			if err := gc.DrawText(line, x, y, size, name); err != nil {
				return err
			}
		}
		return nil
	})
}
