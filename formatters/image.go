package formatters

import (
	"fmt"

	"folio/layout"
)

// newImageFormatter builds the image formatter around a source loader. It
// decodes the node's src attribute and resolves dimensions from the pixel
// size, honoring keep-ratio when only one dimension is fixed.
func newImageFormatter(loader ImageLoader) layout.Formatter {
	return layout.FormatterFunc(func(n *layout.Node, doc *layout.Document) error {
		if n.Kind() != layout.KindImage {
			return nil
		}
		src, err := n.Attribute(layout.AttrSrc)
		if err != nil {
			return err
		}
		srcName, _ := src.(string)
		if srcName == "" || loader == nil {
			return nil
		}
		img, err := loader(srcName)
		if err != nil {
			return fmt.Errorf("image node %q: %w", srcName, err)
		}
		n.SetImage(img)

		bounds := img.Bounds()
		naturalW := float64(bounds.Dx())
		naturalH := float64(bounds.Dy())
		if naturalW == 0 || naturalH == 0 {
			return nil
		}

		w := n.Width()
		h := n.Height()
		keepRatio := true
		if v, err := n.Attribute(layout.AttrKeepRatio); err == nil {
			keepRatio, _ = v.(bool)
		}

		switch {
		case w == 0 && h == 0:
			w, h = naturalW, naturalH
			// never wider than the parent's inner box
			if limit := parentInnerWidth(n); limit > 0 && w > limit {
				h = h * limit / w
				w = limit
			}
		case w == 0 && keepRatio:
			w = naturalW * h / naturalH
		case h == 0 && keepRatio:
			h = naturalH * w / naturalW
		case w == 0:
			w = naturalW
		case h == 0:
			h = naturalH
		}

		if err := n.SetAttribute(layout.AttrWidth, w); err != nil {
			return err
		}
		return n.SetAttribute(layout.AttrHeight, h)
	})
}
