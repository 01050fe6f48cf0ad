package layout_test

import (
	"errors"
	"testing"

	"folio/geom"
	"folio/layout"
)

func TestNode_DefaultsDeclared(t *testing.T) {
	defaults := []string{
		"width", "height",
		"margin", "margin-top", "margin-right", "margin-bottom", "margin-left",
		"padding", "padding-top", "padding-right", "padding-bottom", "padding-left",
		"font-type", "font-size", "line-height", "color", "text-align",
		"breakable", "static-size", "rotate", "dump",
	}
	for _, kind := range []layout.Kind{
		layout.KindContainer, layout.KindPage, layout.KindDynamicPage,
		layout.KindText, layout.KindImage,
	} {
		n := layout.New(kind)
		for _, name := range defaults {
			if !n.HasAttribute(name) {
				t.Errorf("%s: expected attribute %q to be declared", kind, name)
			}
		}
	}

	// kind-specific surface
	if !layout.New(layout.KindPage).HasAttribute("page-size") {
		t.Error("page: expected page-size to be declared")
	}
	if !layout.New(layout.KindText).HasAttribute("text-indent") {
		t.Error("text: expected text-indent to be declared")
	}
	if !layout.New(layout.KindImage).HasAttribute("src") {
		t.Error("image: expected src to be declared")
	}
	if layout.NewContainer().HasAttribute("page-size") {
		t.Error("container: page-size should not be declared")
	}
}

func TestNode_AttributeRoundTrip(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetAttribute("width", 120.5); err != nil {
		t.Fatalf("set width: %v", err)
	}
	v, err := n.Attribute("width")
	if err != nil {
		t.Fatalf("get width: %v", err)
	}
	if v != 120.5 {
		t.Errorf("width = %v, want 120.5", v)
	}

	// integers normalize to float64 so later serialization round-trips
	if err := n.SetAttribute("font-size", 14); err != nil {
		t.Fatalf("set font-size: %v", err)
	}
	v, _ = n.Attribute("font-size")
	if v != float64(14) {
		t.Errorf("font-size = %v (%T), want float64(14)", v, v)
	}
}

func TestNode_UnknownAttribute(t *testing.T) {
	n := layout.NewContainer()

	if err := n.SetAttribute("no-such-attribute", 1); err == nil {
		t.Fatal("expected error on unknown attribute set")
	} else {
		var iae *layout.InvalidAttributeError
		if !errors.As(err, &iae) {
			t.Fatalf("expected InvalidAttributeError, got %T", err)
		}
		if iae.Name != "no-such-attribute" {
			t.Errorf("error name = %q", iae.Name)
		}
	}

	if _, err := n.Attribute("no-such-attribute"); err == nil {
		t.Fatal("expected error on unknown attribute get")
	}
	if _, err := n.RecurseAttribute("no-such-attribute"); err == nil {
		t.Fatal("expected error on unknown attribute recurse")
	}
}

func TestNode_ShorthandExpansion(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  [4]any // top, right, bottom, left
	}{
		{"single number", 7, [4]any{7.0, 7.0, 7.0, 7.0}},
		{"two values", "1 2", [4]any{1.0, 2.0, 1.0, 2.0}},
		{"three values", "1 2 3", [4]any{1.0, 2.0, 3.0, 1.0}},
		{"four values", "1 2 3 4", [4]any{1.0, 2.0, 3.0, 4.0}},
		{"auto margin", "0 auto", [4]any{0.0, "auto", 0.0, "auto"}},
	}
	sides := [4]string{"margin-top", "margin-right", "margin-bottom", "margin-left"}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := layout.NewContainer()
			if err := n.SetAttribute("margin", tc.value); err != nil {
				t.Fatalf("set margin: %v", err)
			}
			for i, side := range sides {
				v, err := n.Attribute(side)
				if err != nil {
					t.Fatalf("get %s: %v", side, err)
				}
				if v != tc.want[i] {
					t.Errorf("%s = %v, want %v", side, v, tc.want[i])
				}
			}
		})
	}
}

func TestNode_ShorthandErrors(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetAttribute("margin", "1 2 3 4 5"); err == nil {
		t.Error("expected error for 5 margin values")
	}
	if err := n.SetAttribute("margin", ""); err == nil {
		t.Error("expected error for empty margin")
	}
	// auto is a margin keyword only
	if err := n.SetAttribute("padding", "0 auto"); err == nil {
		t.Error("expected error for auto padding")
	}
}

func TestNode_SetMarginVariadic(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetMargin(1, 2); err != nil {
		t.Fatalf("SetMargin: %v", err)
	}
	top, _ := n.Attribute("margin-top")
	left, _ := n.Attribute("margin-left")
	if top != 1.0 || left != 2.0 {
		t.Errorf("margin-top=%v margin-left=%v, want 1 and 2", top, left)
	}
	if err := n.SetMargin(); err == nil {
		t.Error("expected error for zero values")
	}
	if err := n.SetMargin(1, 2, 3, 4, 5); err == nil {
		t.Error("expected error for five values")
	}
}

func TestNode_RelativeWidth(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetAttribute("width", "50%"); err != nil {
		t.Fatalf("set width: %v", err)
	}
	pct, ok := n.RelativeWidth()
	if !ok || pct != 50 {
		t.Errorf("RelativeWidth = %v, %v; want 50, true", pct, ok)
	}
	// the raw attribute keeps the percentage form
	v, _ := n.Attribute("width")
	if v != "50%" {
		t.Errorf("width attribute = %v, want \"50%%\"", v)
	}

	if err := n.SetAttribute("height", "bad%"); err == nil {
		t.Error("expected error for malformed percentage")
	}
}

func TestNode_RecurseAttribute(t *testing.T) {
	root := layout.NewContainer()
	mid := layout.NewContainer()
	leaf := layout.NewText("hi")
	if err := root.Add(mid); err != nil {
		t.Fatal(err)
	}
	if err := mid.Add(leaf); err != nil {
		t.Fatal(err)
	}
	if err := root.SetAttribute("color", "#102030"); err != nil {
		t.Fatal(err)
	}

	v, err := leaf.RecurseAttribute("color")
	if err != nil {
		t.Fatalf("recurse: %v", err)
	}
	if v != "#102030" {
		t.Errorf("color = %v, want #102030", v)
	}

	// resolution is cached onto the node: a later ancestor change is not
	// observed
	if err := root.SetAttribute("color", "#ffffff"); err != nil {
		t.Fatal(err)
	}
	v, _ = leaf.RecurseAttribute("color")
	if v != "#102030" {
		t.Errorf("cached color = %v, want #102030", v)
	}

	// unresolvable stays nil without error
	v, err = leaf.RecurseAttribute("font-type")
	if err != nil || v != nil {
		t.Errorf("unresolved = %v, %v; want nil, nil", v, err)
	}
}

func TestNode_AddAssignsPriority(t *testing.T) {
	root := layout.NewContainer()
	root.SetPriority(10)
	child := layout.NewContainer()
	grand := layout.NewText("x")
	if err := child.Add(grand); err != nil {
		t.Fatal(err)
	}
	if err := root.Add(child); err != nil {
		t.Fatal(err)
	}
	if child.Priority() != 9 {
		t.Errorf("child priority = %d, want 9", child.Priority())
	}
	if grand.Priority() != 8 {
		t.Errorf("grandchild priority = %d, want 8", grand.Priority())
	}
}

func TestNode_AddToLeafFails(t *testing.T) {
	text := layout.NewText("x")
	if err := text.Add(layout.NewContainer()); err == nil {
		t.Error("expected error adding child to text node")
	}
	img := layout.NewImage("a.png")
	if err := img.Add(layout.NewContainer()); err == nil {
		t.Error("expected error adding child to image node")
	}
}

func TestNode_DuplicateIndependence(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetAttribute("width", 100); err != nil {
		t.Fatal(err)
	}
	n.Boundary().Reset()
	for _, p := range []geom.Point{geom.P(0, 0), geom.P(100, 0), geom.P(100, 50), geom.P(0, 50)} {
		if err := n.Boundary().SetNext(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.Boundary().Close(); err != nil {
		t.Fatal(err)
	}
	child := layout.NewText("hello")
	if err := n.Add(child); err != nil {
		t.Fatal(err)
	}
	n.MergeEnhancement("border", map[string]any{"color": "#000000"})

	d := n.Duplicate()

	if d.ID() == n.ID() {
		t.Error("duplicate must have a fresh identity")
	}
	if d.Parent() != nil {
		t.Error("duplicate must be detached")
	}
	if len(d.Children()) != 1 || d.Children()[0] == child {
		t.Error("children must be duplicated, not shared")
	}

	// mutations must not leak either way
	if err := d.SetAttribute("width", 1); err != nil {
		t.Fatal(err)
	}
	if v, _ := n.Attribute("width"); v != float64(100) {
		t.Errorf("original width changed to %v", v)
	}
	d.Boundary().Translate(5, 5)
	if got := n.Boundary().Point(geom.UpperLeft); got != geom.P(0, 0) {
		t.Errorf("original boundary moved to %v", got)
	}
	d.MergeEnhancement("border", map[string]any{"color": "#ff0000"})
	if n.EnhancementBag()["border"]["color"] != "#000000" {
		t.Error("original enhancement bag changed")
	}
}

func TestNode_PageLookup(t *testing.T) {
	page := layout.New(layout.KindPage)
	div := layout.NewContainer()
	text := layout.NewText("x")
	if err := page.Add(div); err != nil {
		t.Fatal(err)
	}
	if err := div.Add(text); err != nil {
		t.Fatal(err)
	}

	p, err := text.Page()
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p != page {
		t.Error("wrong page found")
	}
	if self, _ := page.Page(); self != page {
		t.Error("a page is its own page")
	}

	detached := layout.NewContainer()
	if _, err := detached.Page(); err == nil {
		t.Error("expected structural error for detached node")
	} else {
		var se *layout.StructuralError
		if !errors.As(err, &se) {
			t.Errorf("expected StructuralError, got %T", err)
		}
	}
}

func TestNode_FontSizeRecursively(t *testing.T) {
	root := layout.NewContainer()
	mid := layout.NewContainer()
	leaf := layout.NewText("x")
	if err := root.Add(mid); err != nil {
		t.Fatal(err)
	}
	if err := mid.Add(leaf); err != nil {
		t.Fatal(err)
	}

	if got := leaf.FontSizeRecursively(); got != 0 {
		t.Errorf("font size with no ancestor = %v, want 0", got)
	}
	if err := root.SetAttribute("font-size", 18); err != nil {
		t.Fatal(err)
	}

	leaf2 := layout.NewText("y")
	if err := mid.Add(leaf2); err != nil {
		t.Fatal(err)
	}
	if got := leaf2.FontSizeRecursively(); got != 18 {
		t.Errorf("font size = %v, want 18", got)
	}
	if a := leaf2.AncestorWithFontSize(); a != root {
		t.Error("AncestorWithFontSize found the wrong node")
	}
}

func TestNode_Rotate(t *testing.T) {
	n := layout.NewContainer()
	if err := n.SetAttribute("rotate", 90); err != nil {
		t.Fatal(err)
	}
	v, err := n.Attribute("rotate")
	if err != nil {
		t.Fatal(err)
	}
	rad, ok := v.(float64)
	if !ok {
		t.Fatalf("rotate = %T, want float64", v)
	}
	if rad < 1.5707 || rad > 1.5709 {
		t.Errorf("rotate = %v, want ~pi/2", rad)
	}

	if err := n.SetAttribute("rotate", "diagonally"); err != nil {
		t.Fatal(err)
	}
	if _, err := n.Attribute("rotate"); err != nil {
		t.Errorf("diagonal rotate: %v", err)
	}
}

func TestNode_MergeEnhancementAdditive(t *testing.T) {
	n := layout.NewContainer()
	n.MergeEnhancement("border", map[string]any{"color": "#000000", "size": 1})
	n.MergeEnhancement("border", map[string]any{"size": 2})

	bag := n.EnhancementBag()["border"]
	if bag["color"] != "#000000" {
		t.Errorf("color = %v, want #000000", bag["color"])
	}
	if bag["size"] != 2.0 {
		t.Errorf("size = %v, want 2", bag["size"])
	}
}
