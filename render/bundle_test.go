package render_test

import (
	"archive/zip"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"folio/render"
)

func renderBordered(t *testing.T) *render.Result {
	t.Helper()
	res, err := render.Render(context.Background(), strings.NewReader(borderedMarkup), testOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestWriteBundle_Layout(t *testing.T) {
	res := renderBordered(t)
	out := filepath.Join(t.TempDir(), "doc.folio")
	if err := res.WriteBundle(out, false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if len(r.File) == 0 || r.File[0].Name != "mimetype" {
		t.Fatal("mimetype is not the first entry")
	}
	if r.File[0].Method != zip.Store {
		t.Error("mimetype entry is compressed")
	}
	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	mt, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(mt) != "application/x-folio+zip" {
		t.Errorf("mimetype content %q", mt)
	}

	names := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		names[f.Name] = true
	}
	for _, want := range []string{"manifest.yaml", "pages/page-0001.ion"} {
		if !names[want] {
			t.Errorf("bundle is missing %s", want)
		}
	}
}

func TestWriteBundle_Manifest(t *testing.T) {
	res := renderBordered(t)
	out := filepath.Join(t.TempDir(), "doc.folio")
	if err := res.WriteBundle(out, false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var data []byte
	for _, f := range r.File {
		if f.Name != "manifest.yaml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
	}
	if data == nil {
		t.Fatal("no manifest in bundle")
	}

	var m struct {
		Version int    `yaml:"version"`
		ID      string `yaml:"id"`
		Pages   []struct {
			Number int     `yaml:"number"`
			Stream string  `yaml:"stream"`
			Width  float64 `yaml:"width"`
		} `yaml:"pages"`
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m.Version != 1 || m.ID == "" {
		t.Errorf("manifest header %+v", m)
	}
	if len(m.Pages) != 1 || m.Pages[0].Number != 1 || m.Pages[0].Stream != "pages/page-0001.ion" {
		t.Errorf("manifest pages %+v", m.Pages)
	}
}

func TestWriteBundle_Overwrite(t *testing.T) {
	res := renderBordered(t)
	out := filepath.Join(t.TempDir(), "doc.folio")
	if err := res.WriteBundle(out, false, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if err := res.WriteBundle(out, false, zap.NewNop()); err == nil {
		t.Fatal("existing file silently overwritten")
	}
	if err := res.WriteBundle(out, true, zap.NewNop()); err != nil {
		t.Fatalf("explicit overwrite failed: %v", err)
	}
}
