package layout_test

import (
	"testing"

	"folio/layout"
)

func TestFormat_RunsFormattersInOrder(t *testing.T) {
	var order []string
	doc := layout.NewDocument(nil)
	for _, name := range []string{"first", "second"} {
		doc.RegisterFormatter(name, layout.FormatterFunc(
			func(n *layout.Node, d *layout.Document) error {
				order = append(order, name)
				return nil
			}))
	}

	root := layout.NewContainer()
	root.SetFormatterNames("first", "second")
	child := layout.NewContainer()
	child.SetFormatterNames("first")
	if err := root.Add(child); err != nil {
		t.Fatal(err)
	}

	if err := root.Format(doc); err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := []string{"first", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFormat_UnknownFormatterFails(t *testing.T) {
	doc := layout.NewDocument(nil)
	n := layout.NewContainer()
	n.SetFormatterNames("no-such-formatter")
	if err := n.Format(doc); err == nil {
		t.Error("expected error for unknown formatter")
	}
}

func TestFormat_DynamicPageSubtreesFormattedOnce(t *testing.T) {
	counts := make(map[*layout.Node]int)
	doc := layout.NewDocument(nil)
	doc.RegisterFormatter("count", layout.FormatterFunc(
		func(n *layout.Node, d *layout.Document) error {
			counts[n]++
			return nil
		}))

	dp := layout.New(layout.KindDynamicPage)
	page := dp.CreateNextPage()
	div := layout.NewContainer()
	div.SetFormatterNames("count")
	if err := page.Add(div); err != nil {
		t.Fatal(err)
	}

	// pagination revisits pages, the second pass must be a no-op
	if err := page.Format(doc); err != nil {
		t.Fatal(err)
	}
	if err := page.Format(doc); err != nil {
		t.Fatal(err)
	}
	if counts[div] != 1 {
		t.Errorf("div formatted %d times, want 1", counts[div])
	}
}

func TestDocument_FontRegistry(t *testing.T) {
	doc := layout.NewDocument(nil)
	if _, err := doc.Font("serif"); err == nil {
		t.Error("expected error for unknown font")
	}
	doc.RegisterFont("serif", nil)
	doc.RegisterFont("mono", nil)

	if _, err := doc.Font("mono"); err != nil {
		t.Errorf("mono: %v", err)
	}
	// the empty name resolves to the first registered font
	if _, err := doc.Font(""); err != nil {
		t.Errorf("default: %v", err)
	}
}
