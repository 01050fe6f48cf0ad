package geom_test

import (
	"math"
	"testing"

	"folio/geom"
)

func TestParseLength(t *testing.T) {
	cases := []struct {
		in       string
		expected float64
		wantErr  bool
	}{
		{in: "12", expected: 12},
		{in: "12pt", expected: 12},
		{in: "1in", expected: 72},
		{in: "2.54cm", expected: 72},
		{in: "25.4mm", expected: 72},
		{in: "96px", expected: 72},
		{in: " 10 ", expected: 10},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := geom.ParseLength(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %g", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-c.expected) > 1e-9 {
				t.Errorf("expected %g, got %g", c.expected, got)
			}
		})
	}
}

func TestParsePageSize(t *testing.T) {
	cases := []struct {
		in       string
		expected geom.PageSize
		wantErr  bool
	}{
		{in: "a4", expected: geom.A4},
		{in: "A4", expected: geom.A4},
		{in: "letter", expected: geom.Letter},
		{in: "100x200", expected: geom.PageSize{Width: 100, Height: 200}},
		{in: "1inx2in", expected: geom.PageSize{Width: 72, Height: 144}},
		{in: "b9", wantErr: true},
		{in: "100x", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := geom.ParsePageSize(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.expected {
				t.Errorf("expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestPageSize_Landscape(t *testing.T) {
	ls := geom.A4.Landscape()
	if ls.Width != geom.A4.Height || ls.Height != geom.A4.Width {
		t.Errorf("unexpected landscape size: %v", ls)
	}
}
