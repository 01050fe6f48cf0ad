package stylesheet_test

import (
	"testing"

	"go.uber.org/zap"

	"folio/layout"
	"folio/stylesheet"
)

const sampleSheet = `
container {
	margin: 10 20;
	color: #333333;
}

.lead {
	font-size: 14pt;
}

text.lead {
	line-height: 18;
}

container.framed {
	border-color: #ff0000;
	border-width: 2;
	background-color: #eeeeee;
}

page {
	margin: 2cm;
}
`

func parseSample(t *testing.T) *stylesheet.Stylesheet {
	t.Helper()
	p := stylesheet.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(sampleSheet))
	if len(sheet.Rules) == 0 {
		t.Fatal("expected rules to be parsed")
	}
	return sheet
}

func TestParse_RuleCount(t *testing.T) {
	sheet := parseSample(t)
	if len(sheet.Rules) != 5 {
		t.Errorf("rules = %d, want 5", len(sheet.Rules))
	}
	for _, w := range sheet.Warnings {
		t.Logf("warning: %s", w)
	}
}

func TestApply_KindSelector(t *testing.T) {
	sheet := parseSample(t)
	div := layout.NewContainer()
	sheet.Apply(div)

	top, err := div.Attribute("margin-top")
	if err != nil {
		t.Fatal(err)
	}
	right, err := div.Attribute("margin-right")
	if err != nil {
		t.Fatal(err)
	}
	if top != 10.0 || right != 20.0 {
		t.Errorf("margins = %v / %v, want 10 / 20", top, right)
	}
	color, _ := div.Attribute("color")
	if color != "#333333" {
		t.Errorf("color = %v", color)
	}
}

func TestApply_ClassSelector(t *testing.T) {
	sheet := parseSample(t)

	plain := layout.NewText("x")
	sheet.Apply(plain)
	if v, _ := plain.Attribute("font-size"); v != nil {
		t.Errorf("unclassed node got font-size %v", v)
	}

	lead := layout.NewText("x")
	sheet.Apply(lead, "lead")
	if v, _ := lead.Attribute("font-size"); v != 14.0 {
		t.Errorf("font-size = %v, want 14 (pt)", v)
	}
	// text.lead matches too
	if v, _ := lead.Attribute("line-height"); v != 18.0 {
		t.Errorf("line-height = %v, want 18", v)
	}

	// kind.class must not leak onto other kinds
	div := layout.NewContainer()
	sheet.Apply(div, "lead")
	if v, _ := div.Attribute("line-height"); v != nil {
		t.Errorf("container got text.lead line-height %v", v)
	}
}

func TestApply_EnhancementBags(t *testing.T) {
	sheet := parseSample(t)
	div := layout.NewContainer()
	sheet.Apply(div, "framed")

	border := div.EnhancementBag()["border"]
	if border == nil {
		t.Fatal("expected a border bag")
	}
	if border["color"] != "#ff0000" {
		t.Errorf("border color = %v", border["color"])
	}
	if border["size"] != 2.0 {
		t.Errorf("border size = %v, want 2 (width maps to size)", border["size"])
	}
	if bg := div.EnhancementBag()["background"]; bg == nil || bg["color"] != "#eeeeee" {
		t.Errorf("background bag = %v", bg)
	}
}

func TestApply_UnitConversion(t *testing.T) {
	sheet := parseSample(t)
	page := layout.New(layout.KindPage)
	sheet.Apply(page)

	v, err := page.Attribute("margin-top")
	if err != nil {
		t.Fatal(err)
	}
	want := 2 * 72 / 2.54
	f, ok := v.(float64)
	if !ok {
		t.Fatalf("margin-top = %T, want float64", v)
	}
	if f < want-0.001 || f > want+0.001 {
		t.Errorf("margin-top = %v, want ~%v (2cm)", f, want)
	}
}

func TestApply_UndeclaredAttributeWarns(t *testing.T) {
	p := stylesheet.NewParser(nil)
	sheet := p.Parse([]byte("image { line-spacing: 4; }"))
	img := layout.NewImage("a.png")
	sheet.Apply(img)
	if len(sheet.Warnings) == 0 {
		t.Error("expected a warning for an undeclared attribute")
	}
}

func TestParse_SkipsComplexSelectors(t *testing.T) {
	p := stylesheet.NewParser(nil)
	sheet := p.Parse([]byte("container > text { color: #000; }\ncontainer { color: #111111; }"))
	if len(sheet.Rules) != 1 {
		t.Fatalf("rules = %d, want 1 (descendant selector skipped)", len(sheet.Rules))
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected a warning for the skipped selector")
	}
}
