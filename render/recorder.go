// Package render drives the full pipeline: markup in, per-page primitive
// streams out, optionally packaged into a zip bundle.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/amazon-ion/ion-go/ion"
)

// Op is a single recorded drawing primitive. Every op carries the style
// state it was issued under, so a page stream replays without tracking
// stateful setters.
type Op interface {
	// Name identifies the primitive in the encoded stream.
	Name() string

	encode(w ion.Writer) error
}

// LineOp records a DrawLine call.
type LineOp struct {
	X0, Y0, X1, Y1 float64
	Stroke         string
	Width          float64
}

func (o LineOp) Name() string { return "line" }

// PolygonOp records a DrawPolygon call.
type PolygonOp struct {
	Xs, Ys []float64
	Filled bool
	Stroke string
	Fill   string
	Width  float64
}

func (o PolygonOp) Name() string { return "polygon" }

// TextOp records a DrawText call.
type TextOp struct {
	Text     string
	X, Y     float64
	FontSize float64
	FontName string
	Fill     string
}

func (o TextOp) Name() string { return "text" }

// ImageOp records a DrawImage call. The pixels themselves live outside the
// op stream; Resource names the bundle entry carrying them.
type ImageOp struct {
	Resource       string
	X0, Y0, X1, Y1 float64
}

func (o ImageOp) Name() string { return "image" }

// AnnotationOp records an Annotate call.
type AnnotationOp struct {
	X, Y  float64
	Title string
	Text  string
}

func (o AnnotationOp) Name() string { return "annotation" }

// Recorder is a backend page that logs primitives instead of drawing
// them. It implements layout.GraphicsContext.
type Recorder struct {
	width  float64
	height float64

	strokeColor string
	fillColor   string
	lineWidth   float64

	ops []Op

	// images maps resource names to the pixels drawn under them, keyed in
	// first-use order. refs dedupes repeated draws of the same image value.
	images map[string]image.Image
	refs   map[image.Image]string
}

// NewRecorder creates a recording page of the given dimensions in points.
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{
		width:       width,
		height:      height,
		strokeColor: "#000000",
		fillColor:   "#000000",
		lineWidth:   1,
		images:      make(map[string]image.Image),
		refs:        make(map[image.Image]string),
	}
}

func (r *Recorder) Width() float64  { return r.width }
func (r *Recorder) Height() float64 { return r.height }

func (r *Recorder) SetLineWidth(width float64) { r.lineWidth = width }
func (r *Recorder) SetStrokeColor(color string) { r.strokeColor = color }
func (r *Recorder) SetFillColor(color string)   { r.fillColor = color }

func (r *Recorder) DrawLine(x0, y0, x1, y1 float64) error {
	r.ops = append(r.ops, LineOp{X0: x0, Y0: y0, X1: x1, Y1: y1, Stroke: r.strokeColor, Width: r.lineWidth})
	return nil
}

func (r *Recorder) DrawPolygon(xs, ys []float64, fill bool) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("polygon coordinate count mismatch: %d x vs %d y", len(xs), len(ys))
	}
	op := PolygonOp{
		Xs:     append([]float64(nil), xs...),
		Ys:     append([]float64(nil), ys...),
		Filled: fill,
		Stroke: r.strokeColor,
		Width:  r.lineWidth,
	}
	if fill {
		op.Fill = r.fillColor
	}
	r.ops = append(r.ops, op)
	return nil
}

func (r *Recorder) DrawText(text string, x, y, fontSize float64, fontName string) error {
	r.ops = append(r.ops, TextOp{Text: text, X: x, Y: y, FontSize: fontSize, FontName: fontName, Fill: r.fillColor})
	return nil
}

func (r *Recorder) DrawImage(img image.Image, x0, y0, x1, y1 float64) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	name, ok := r.refs[img]
	if !ok {
		name = fmt.Sprintf("img-%04d", len(r.images)+1)
		r.refs[img] = name
		r.images[name] = img
	}
	r.ops = append(r.ops, ImageOp{Resource: name, X0: x0, Y0: y0, X1: x1, Y1: y1})
	return nil
}

func (r *Recorder) Annotate(x, y float64, title, text string) error {
	r.ops = append(r.ops, AnnotationOp{X: x, Y: y, Title: title, Text: text})
	return nil
}

// Ops returns the recorded primitives in issue order.
func (r *Recorder) Ops() []Op { return r.ops }

// Images returns the drawn pixels keyed by resource name.
func (r *Recorder) Images() map[string]image.Image { return r.images }

// EncodeOps writes the page stream as Amazon Ion text: a struct with the
// page dimensions and the op list. Explicit per-field encoding, same as
// the node serializer.
func (r *Recorder) EncodeOps(w io.Writer) error {
	iw := ion.NewTextWriter(w)
	if err := r.encode(iw); err != nil {
		return fmt.Errorf("unable to encode page stream: %w", err)
	}
	if err := iw.Finish(); err != nil {
		return fmt.Errorf("unable to encode page stream: %w", err)
	}
	return nil
}

func (r *Recorder) encode(w ion.Writer) error {
	if err := w.BeginStruct(); err != nil {
		return err
	}
	if err := field(w, "width"); err != nil {
		return err
	}
	if err := w.WriteFloat(r.width); err != nil {
		return err
	}
	if err := field(w, "height"); err != nil {
		return err
	}
	if err := w.WriteFloat(r.height); err != nil {
		return err
	}
	if err := field(w, "ops"); err != nil {
		return err
	}
	if err := w.BeginList(); err != nil {
		return err
	}
	for _, op := range r.ops {
		if err := w.BeginStruct(); err != nil {
			return err
		}
		if err := field(w, "op"); err != nil {
			return err
		}
		if err := w.WriteString(op.Name()); err != nil {
			return err
		}
		if err := op.encode(w); err != nil {
			return err
		}
		if err := w.EndStruct(); err != nil {
			return err
		}
	}
	if err := w.EndList(); err != nil {
		return err
	}
	return w.EndStruct()
}

func field(w ion.Writer, name string) error {
	return w.FieldName(ion.NewSymbolTokenFromString(name))
}

func writeFloats(w ion.Writer, name string, vals ...float64) error {
	if err := field(w, name); err != nil {
		return err
	}
	if err := w.BeginList(); err != nil {
		return err
	}
	for _, v := range vals {
		if err := w.WriteFloat(v); err != nil {
			return err
		}
	}
	return w.EndList()
}

func writeString(w ion.Writer, name, val string) error {
	if err := field(w, name); err != nil {
		return err
	}
	return w.WriteString(val)
}

func writeFloat(w ion.Writer, name string, val float64) error {
	if err := field(w, name); err != nil {
		return err
	}
	return w.WriteFloat(val)
}

func (o LineOp) encode(w ion.Writer) error {
	if err := writeFloats(w, "from", o.X0, o.Y0); err != nil {
		return err
	}
	if err := writeFloats(w, "to", o.X1, o.Y1); err != nil {
		return err
	}
	if err := writeString(w, "stroke", o.Stroke); err != nil {
		return err
	}
	return writeFloat(w, "lineWidth", o.Width)
}

func (o PolygonOp) encode(w ion.Writer) error {
	if err := writeFloats(w, "xs", o.Xs...); err != nil {
		return err
	}
	if err := writeFloats(w, "ys", o.Ys...); err != nil {
		return err
	}
	if err := field(w, "filled"); err != nil {
		return err
	}
	if err := w.WriteBool(o.Filled); err != nil {
		return err
	}
	if err := writeString(w, "stroke", o.Stroke); err != nil {
		return err
	}
	if o.Filled {
		if err := writeString(w, "fill", o.Fill); err != nil {
			return err
		}
	}
	return writeFloat(w, "lineWidth", o.Width)
}

func (o TextOp) encode(w ion.Writer) error {
	if err := writeString(w, "text", o.Text); err != nil {
		return err
	}
	if err := writeFloats(w, "at", o.X, o.Y); err != nil {
		return err
	}
	if err := writeFloat(w, "fontSize", o.FontSize); err != nil {
		return err
	}
	if err := writeString(w, "fontName", o.FontName); err != nil {
		return err
	}
	return writeString(w, "fill", o.Fill)
}

func (o ImageOp) encode(w ion.Writer) error {
	if err := writeString(w, "resource", o.Resource); err != nil {
		return err
	}
	if err := writeFloats(w, "from", o.X0, o.Y0); err != nil {
		return err
	}
	return writeFloats(w, "to", o.X1, o.Y1)
}

func (o AnnotationOp) encode(w ion.Writer) error {
	if err := writeFloats(w, "at", o.X, o.Y); err != nil {
		return err
	}
	if err := writeString(w, "title", o.Title); err != nil {
		return err
	}
	return writeString(w, "text", o.Text)
}
