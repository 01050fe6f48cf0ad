package layout_test

import (
	"strings"
	"testing"

	"folio/layout"
)

func TestDumpTree(t *testing.T) {
	root := layout.New(layout.KindContainer)
	if err := root.SetAttribute("width", 100.0); err != nil {
		t.Fatal(err)
	}
	child := layout.NewText("dump me")
	if err := root.Add(child); err != nil {
		t.Fatal(err)
	}

	dump := layout.DumpTree(root)

	for _, want := range []string{"container", "text", `"dump me"`, "width = 100"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
	// children are indented one level deeper than their parent
	if !strings.Contains(dump, "\n  text") && !strings.Contains(dump, "\n    text") {
		t.Errorf("child node not indented:\n%s", dump)
	}
}
