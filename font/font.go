// Package font provides the font-metrics contract consumed by text layout
// plus an OpenType implementation with embedded defaults.
package font

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Metrics measures text for layout purposes. Sizes and results are in
// typographic points.
type Metrics interface {
	// TextWidth returns the advance width of the text at the given size.
	TextWidth(text string, size float64) (float64, error)
	// LineHeight returns the recommended baseline-to-baseline distance at
	// the given size.
	LineHeight(size float64) float64
}

// OpenType implements Metrics over a parsed OpenType/TrueType font.
type OpenType struct {
	fnt   *sfnt.Font
	faces map[float64]xfont.Face
}

// Parse builds metrics from raw OpenType/TrueType data.
func Parse(data []byte) (*OpenType, error) {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font: %w", err)
	}
	return &OpenType{fnt: fnt, faces: make(map[float64]xfont.Face)}, nil
}

func (o *OpenType) face(size float64) (xfont.Face, error) {
	if f, ok := o.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(o.fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // 1px == 1pt
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create font face for size %g: %w", size, err)
	}
	o.faces[size] = f
	return f, nil
}

// TextWidth implements Metrics.
func (o *OpenType) TextWidth(text string, size float64) (float64, error) {
	f, err := o.face(size)
	if err != nil {
		return 0, err
	}
	return float64(xfont.MeasureString(f, text)) / 64, nil
}

// LineHeight implements Metrics.
func (o *OpenType) LineHeight(size float64) float64 {
	f, err := o.face(size)
	if err != nil {
		return 1.2 * size
	}
	return float64(f.Metrics().Height) / 64
}

// Builtin font names registered by Defaults.
const (
	Regular = "regular"
	Bold    = "bold"
	Italic  = "italic"
)

// Defaults parses the embedded Go fonts and returns them keyed by the
// builtin names.
func Defaults() (map[string]Metrics, error) {
	sources := []struct {
		name string
		data []byte
	}{
		{Regular, goregular.TTF},
		{Bold, gobold.TTF},
		{Italic, goitalic.TTF},
	}
	fonts := make(map[string]Metrics, len(sources))
	for _, src := range sources {
		m, err := Parse(src.data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse builtin font %q: %w", src.name, err)
		}
		fonts[src.name] = m
	}
	return fonts, nil
}
