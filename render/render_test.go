package render_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"folio/font"
	"folio/geom"
	"folio/render"
)

// flatMetrics measures every rune at half the font size, which keeps
// layout numbers exact in tests.
type flatMetrics struct{}

func (flatMetrics) TextWidth(text string, size float64) (float64, error) {
	return float64(len([]rune(text))) * size / 2, nil
}

func (flatMetrics) LineHeight(size float64) float64 { return 1.2 * size }

func testOptions() render.Options {
	return render.Options{Fonts: map[string]font.Metrics{"plain": flatMetrics{}}}
}

const borderedMarkup = `<document>
  <page page-size="A5" margin="30">
    <div border-color="#00ff00" height="80">
      <text font-size="10">hello render</text>
    </div>
  </page>
</document>`

func TestRender_SinglePage(t *testing.T) {
	res, err := render.Render(context.Background(), strings.NewReader(borderedMarkup), testOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}

	rec := res.Pages[0].Recorder
	if rec.Width() != geom.A5.Width || rec.Height() != geom.A5.Height {
		t.Errorf("page dimensions %gx%g, want A5", rec.Width(), rec.Height())
	}

	ops := rec.Ops()
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want text and border: %v", len(ops), ops)
	}
	text, ok := ops[0].(render.TextOp)
	if !ok {
		t.Fatalf("ops[0] is %T, want TextOp (content draws beneath its parent's border)", ops[0])
	}
	if text.Text != "hello render" || text.FontSize != 10 {
		t.Errorf("text op %+v, want \"hello render\" at size 10", text)
	}
	border, ok := ops[1].(render.PolygonOp)
	if !ok {
		t.Fatalf("ops[1] is %T, want PolygonOp", ops[1])
	}
	if border.Stroke != "#00ff00" || border.Filled {
		t.Errorf("border op %+v, want unfilled #00ff00 stroke", border)
	}
}

func TestRender_DynamicPageFlow(t *testing.T) {
	const src = `<document>
  <dynamic-page page-size="A5" margin="40">
    <div height="900" breakable="true"></div>
  </dynamic-page>
</document>`

	res, err := render.Render(context.Background(), strings.NewReader(src), testOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	// content height per A5 page is 595-80=515, a 900pt block needs two
	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	for i, page := range res.Pages {
		if page.Number != i+1 {
			t.Errorf("page %d numbered %d", i, page.Number)
		}
		if page.Recorder.Width() != geom.A5.Width {
			t.Errorf("page %d width %g, want A5", i, page.Recorder.Width())
		}
	}
}

func TestRender_DynamicPagePlaceholders(t *testing.T) {
	const src = `<document>
  <dynamic-page page-size="A5" margin="40">
    <header>
      <text font-size="9">Running Head</text>
    </header>
    <footer>
      <text font-size="9">fin</text>
    </footer>
    <div height="900" breakable="true"></div>
  </dynamic-page>
</document>`

	res, err := render.Render(context.Background(), strings.NewReader(src), testOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(res.Pages))
	}
	for i, page := range res.Pages {
		var header, footer int
		for _, op := range page.Recorder.Ops() {
			if text, ok := op.(render.TextOp); ok {
				switch text.Text {
				case "Running Head":
					header++
				case "fin":
					footer++
				}
			}
		}
		if header != 1 || footer != 1 {
			t.Errorf("page %d drew header %d times and footer %d times, want 1 each", i+1, header, footer)
		}
	}
}

func TestRender_ImageFromResources(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	f, err := os.Create(filepath.Join(dir, "pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	const src = `<document>
  <page page-size="A4" margin="20">
    <img src="pic.png" width="40" height="20"/>
  </page>
</document>`

	opts := testOptions()
	opts.Resources = render.NewResources(dir, zap.NewNop())
	res, err := render.Render(context.Background(), strings.NewReader(src), opts, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ops := res.Pages[0].Recorder.Ops()
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want a single image op", len(ops))
	}
	imgOp, ok := ops[0].(render.ImageOp)
	if !ok {
		t.Fatalf("ops[0] is %T, want ImageOp", ops[0])
	}
	if imgOp.X1-imgOp.X0 != 40 || imgOp.Y1-imgOp.Y0 != 20 {
		t.Errorf("image drawn at %gx%g, want 40x20", imgOp.X1-imgOp.X0, imgOp.Y1-imgOp.Y0)
	}
}

func TestRender_MissingResources(t *testing.T) {
	const src = `<document>
  <page page-size="A4">
    <img src="pic.png" width="40" height="20"/>
  </page>
</document>`

	if _, err := render.Render(context.Background(), strings.NewReader(src), testOptions(), zap.NewNop()); err == nil {
		t.Fatal("img node rendered without configured resources")
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := render.Render(ctx, strings.NewReader(borderedMarkup), testOptions(), zap.NewNop()); err == nil {
		t.Fatal("cancelled context not honored")
	}
}
