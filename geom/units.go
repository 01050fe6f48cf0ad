package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a conversion factor from a measurement unit to points.
type Unit float64

const (
	Pt Unit = 1         // typographic point, 1/72 inch
	In Unit = 72        // inch
	Cm Unit = 72 / 2.54 // centimeter
	Mm Unit = 72 / 25.4 // millimeter
	Px Unit = 72.0 / 96 // CSS pixel at 96 DPI
)

// ToPoints converts a value in the given unit to points.
func ToPoints(value float64, unit Unit) float64 {
	return value * float64(unit)
}

// ParseLength parses a length with an optional unit suffix ("12", "2.5cm",
// "10mm", "1in", "96px") and returns the value in points.
func ParseLength(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := Pt
	for _, u := range []struct {
		suffix string
		unit   Unit
	}{
		{"pt", Pt}, {"in", In}, {"cm", Cm}, {"mm", Mm}, {"px", Px},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s, unit = strings.TrimSuffix(s, u.suffix), u.unit
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse length %q: %w", s, err)
	}
	return ToPoints(v, unit), nil
}

// PageSize holds page dimensions in points.
type PageSize struct {
	Width  float64
	Height float64
}

// Landscape returns the size with swapped dimensions.
func (s PageSize) Landscape() PageSize {
	return PageSize{Width: s.Height, Height: s.Width}
}

// Standard page sizes in points.
var (
	A3     = PageSize{842, 1191}
	A4     = PageSize{595, 842}
	A5     = PageSize{420, 595}
	Letter = PageSize{612, 792}
	Legal  = PageSize{612, 1008}
)

var pageSizes = map[string]PageSize{
	"a3":     A3,
	"a4":     A4,
	"a5":     A5,
	"letter": Letter,
	"legal":  Legal,
}

// ParsePageSize resolves either a well-known size name (case-insensitive)
// or an explicit "WIDTHxHEIGHT" pair in points.
func ParsePageSize(s string) (PageSize, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if ps, ok := pageSizes[name]; ok {
		return ps, nil
	}
	if w, h, ok := strings.Cut(name, "x"); ok {
		width, err1 := ParseLength(w)
		height, err2 := ParseLength(h)
		if err1 == nil && err2 == nil && width > 0 && height > 0 {
			return PageSize{Width: width, Height: height}, nil
		}
	}
	return PageSize{}, fmt.Errorf("unknown page size %q", s)
}
