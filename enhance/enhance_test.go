package enhance_test

import (
	"image"
	"testing"

	"folio/enhance"
	"folio/geom"
	"folio/layout"
)

type recordingGC struct {
	strokes  []string
	fills    []string
	polygons []bool
	notes    []string
}

func (g *recordingGC) Width() float64              { return 595 }
func (g *recordingGC) Height() float64             { return 842 }
func (g *recordingGC) SetLineWidth(width float64)  {}
func (g *recordingGC) SetStrokeColor(color string) { g.strokes = append(g.strokes, color) }
func (g *recordingGC) SetFillColor(color string)   { g.fills = append(g.fills, color) }

func (g *recordingGC) DrawLine(x0, y0, x1, y1 float64) error { return nil }

func (g *recordingGC) DrawPolygon(xs, ys []float64, fill bool) error {
	g.polygons = append(g.polygons, fill)
	return nil
}

func (g *recordingGC) DrawText(text string, x, y, fontSize float64, fontName string) error {
	return nil
}

func (g *recordingGC) DrawImage(img image.Image, x0, y0, x1, y1 float64) error { return nil }

func (g *recordingGC) Annotate(x, y float64, title, text string) error {
	g.notes = append(g.notes, title)
	return nil
}

func closedNode(t *testing.T) *layout.Node {
	t.Helper()
	n := layout.NewContainer()
	b := n.Boundary()
	b.Reset()
	for _, p := range []geom.Point{geom.P(0, 0), geom.P(100, 0), geom.P(100, 50), geom.P(0, 50)} {
		if err := b.SetNext(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestBorder_Draw(t *testing.T) {
	e, err := enhance.NewBorder(map[string]any{"color": "#ff0000", "size": 2.0})
	if err != nil {
		t.Fatal(err)
	}
	gc := &recordingGC{}
	if err := e.Draw(gc, closedNode(t)); err != nil {
		t.Fatal(err)
	}
	if len(gc.strokes) != 1 || gc.strokes[0] != "#ff0000" {
		t.Errorf("strokes = %v", gc.strokes)
	}
	if len(gc.polygons) != 1 || gc.polygons[0] {
		t.Errorf("polygons = %v, want one unfilled", gc.polygons)
	}
}

func TestBorder_RejectsBadSize(t *testing.T) {
	if _, err := enhance.NewBorder(map[string]any{"size": -1.0}); err == nil {
		t.Error("expected error for negative size")
	}
}

func TestBackground_Draw(t *testing.T) {
	e, err := enhance.NewBackground(map[string]any{"color": "#eeeeee"})
	if err != nil {
		t.Fatal(err)
	}
	gc := &recordingGC{}
	if err := e.Draw(gc, closedNode(t)); err != nil {
		t.Fatal(err)
	}
	if len(gc.fills) != 1 || gc.fills[0] != "#eeeeee" {
		t.Errorf("fills = %v", gc.fills)
	}
	if len(gc.polygons) != 1 || !gc.polygons[0] {
		t.Errorf("polygons = %v, want one filled", gc.polygons)
	}
}

func TestBackground_RequiresColor(t *testing.T) {
	if _, err := enhance.NewBackground(nil); err == nil {
		t.Error("expected error without a color")
	}
}

func TestBackground_PaintsBeforeBorder(t *testing.T) {
	bg, err := enhance.NewBackground(map[string]any{"color": "#fff"})
	if err != nil {
		t.Fatal(err)
	}
	bd, err := enhance.NewBorder(nil)
	if err != nil {
		t.Fatal(err)
	}
	if bg.Priority() >= bd.Priority() {
		t.Error("background must schedule before the border")
	}
}

func TestStickyNote_Attach(t *testing.T) {
	gc := &recordingGC{}
	note := &enhance.StickyNote{Title: "review", Text: "check this box"}
	if err := note.Attach(gc, closedNode(t)); err != nil {
		t.Fatal(err)
	}
	if len(gc.notes) != 1 || gc.notes[0] != "review" {
		t.Errorf("notes = %v", gc.notes)
	}
}
