package layout

import (
	"image"

	"folio/geom"
)

// imageExt backs the image leaf variant. The decoded raster is loaded by
// the image formatter from the src attribute.
type imageExt struct {
	img image.Image
}

func (i *imageExt) clone() *imageExt {
	// the decoded raster is immutable and can be shared between clones
	return &imageExt{img: i.img}
}

// Image returns the decoded raster of an image node, nil before loading.
func (n *Node) Image() image.Image {
	if n.image == nil {
		return nil
	}
	return n.image.img
}

// SetImage installs the decoded raster.
func (n *Node) SetImage(img image.Image) {
	if n.image == nil {
		return
	}
	n.image.img = img
}

func (n *Node) imageDrawTask() *Task {
	return NewTask(n.priority, func() error {
		if n.image.img == nil {
			// source was never loaded, nothing to draw
			return nil
		}
		gc, err := n.GraphicsContext()
		if err != nil {
			return err
		}
		ul := n.boundary.Point(geom.UpperLeft)
		lr := n.boundary.Point(geom.LowerRight)
		return gc.DrawImage(n.image.img,
			ul.X+n.attrFloat(AttrPaddingLeft),
			ul.Y+n.attrFloat(AttrPaddingTop),
			lr.X-n.attrFloat(AttrPaddingRight),
			lr.Y-n.attrFloat(AttrPaddingBottom))
	})
}
