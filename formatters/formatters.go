// Package formatters ships the standard formatting pipeline: dimension
// resolution, text wrapping, image fitting, boundary construction and
// pagination. Formatters are registered on a layout.Document and referenced
// by name from node formatter chains.
package formatters

import (
	"image"

	"folio/layout"
)

// Registered formatter names.
const (
	Dimension  = "dimension"
	Edges      = "edges"
	Text       = "text"
	Image      = "image"
	Pagination = "pagination"
)

// ImageLoader resolves an image node's src attribute into decoded pixels.
// The render driver supplies one backed by the filesystem or an input
// bundle.
type ImageLoader func(src string) (image.Image, error)

// RegisterStandard installs the standard formatters. A nil loader leaves
// image nodes empty instead of failing.
func RegisterStandard(doc *layout.Document, loader ImageLoader) {
	doc.RegisterFormatter(Dimension, layout.FormatterFunc(formatDimension))
	doc.RegisterFormatter(Edges, layout.FormatterFunc(formatEdges))
	doc.RegisterFormatter(Text, layout.FormatterFunc(formatText))
	doc.RegisterFormatter(Image, newImageFormatter(loader))
	doc.RegisterFormatter(Pagination, layout.FormatterFunc(formatPagination))
}

// DefaultChain returns the standard formatter chain for a node kind. The
// markup builder assigns these unless the document overrides them.
func DefaultChain(kind layout.Kind) []string {
	switch kind {
	case layout.KindPage:
		return []string{Dimension}
	case layout.KindDynamicPage:
		return []string{Dimension, Pagination}
	case layout.KindText:
		return []string{Dimension, Text, Edges}
	case layout.KindImage:
		return []string{Dimension, Image, Edges}
	default:
		return []string{Dimension, Edges}
	}
}
