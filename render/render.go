package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"sort"

	"go.uber.org/zap"

	"folio/enhance"
	"folio/font"
	"folio/formatters"
	"folio/layout"
	"folio/markup"
	"folio/stylesheet"
)

// Options configures a render run.
type Options struct {
	// Fonts registered with the document. When empty the embedded
	// defaults are used.
	Fonts map[string]font.Metrics
	// DefaultFont names the font resolved for nodes without a font-type
	// attribute. Empty picks font.Regular when present, otherwise the
	// alphabetically first font.
	DefaultFont string
	// Resources resolves img sources. When nil any img node fails the
	// formatting pass.
	Resources *Resources
	// Styles are extra stylesheet rules applied beneath the document's
	// embedded stylesheet.
	Styles *stylesheet.Stylesheet
	// Watermark, when set, is stamped in the lower right corner of every
	// page after all drawing tasks ran.
	Watermark image.Image
}

// Page is one rendered backend page.
type Page struct {
	Number   int
	Recorder *Recorder
}

// Result is the outcome of a render run: every backend page with its
// recorded primitive stream in reading order, plus the formatted node
// roots for tree output.
type Result struct {
	Title  string
	Author string
	Pages  []*Page
	Roots  []*layout.Node

	resources *Resources
}

// Render runs the pipeline over a markup source: parse, resolve
// stylesheet and attributes, format, then execute the three task
// partitions against recording pages.
func Render(ctx context.Context, src io.Reader, opts Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("render")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mdoc, err := markup.ParseStyled(src, opts.Styles, log)
	if err != nil {
		return nil, err
	}

	doc := layout.NewDocument(log)
	fonts := opts.Fonts
	if len(fonts) == 0 {
		if fonts, err = font.Defaults(); err != nil {
			return nil, err
		}
	}
	registerFonts(doc, fonts, opts.DefaultFont)

	var loader formatters.ImageLoader
	if opts.Resources != nil {
		loader = opts.Resources.Load
	} else {
		loader = func(src string) (image.Image, error) {
			return nil, fmt.Errorf("no image resources configured, cannot load %q", src)
		}
	}
	formatters.RegisterStandard(doc, loader)
	enhance.RegisterStandard(doc)

	for _, page := range mdoc.Pages {
		if err := page.Format(doc); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Title:     mdoc.Title,
		Author:    mdoc.Author,
		Roots:     mdoc.Pages,
		resources: opts.Resources,
	}
	var ordered, unordered, post []*layout.Task
	for _, root := range mdoc.Pages {
		switch root.Kind() {
		case layout.KindPage:
			res.bind(root)
			tasks, err := root.DrawingTasks(doc)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, tasks...)
		case layout.KindDynamicPage:
			for _, page := range root.PagesHistory() {
				res.bind(page)
			}
			ot, err := root.OrderedDrawingTasks(doc)
			if err != nil {
				return nil, err
			}
			ut, err := root.UnorderedDrawingTasks(doc)
			if err != nil {
				return nil, err
			}
			pt, err := root.PostDrawingTasks(doc)
			if err != nil {
				return nil, err
			}
			ordered = append(ordered, ot...)
			unordered = append(unordered, ut...)
			post = append(post, pt...)
		default:
			return nil, fmt.Errorf("%s node cannot be rendered as a page", root.Kind())
		}
	}

	layout.SortTasks(ordered)
	if err := layout.InvokeTasks(ordered); err != nil {
		return nil, err
	}
	if err := layout.InvokeTasks(unordered); err != nil {
		return nil, err
	}
	if err := layout.InvokeTasks(post); err != nil {
		return nil, err
	}

	if opts.Watermark != nil {
		if err := res.stamp(opts.Watermark); err != nil {
			return nil, err
		}
	}

	log.Debug("render complete", zap.Int("pages", len(res.Pages)))
	return res, nil
}

// stamp draws the watermark image in the lower right corner of every
// page, scaled to a third of the page width.
func (res *Result) stamp(img image.Image) error {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("watermark image is empty")
	}
	for _, page := range res.Pages {
		rec := page.Recorder
		w := rec.Width() / 3
		h := w * float64(b.Dy()) / float64(b.Dx())
		const inset = 10
		x1, y1 := rec.Width()-inset, rec.Height()-inset
		if err := rec.DrawImage(img, x1-w, y1-h, x1, y1); err != nil {
			return err
		}
	}
	return nil
}

// registerFonts installs fonts deterministically: the default first (the
// registry treats the first registration as the default), the rest in name
// order.
func registerFonts(doc *layout.Document, fonts map[string]font.Metrics, defaultName string) {
	if defaultName == "" {
		if _, ok := fonts[font.Regular]; ok {
			defaultName = font.Regular
		}
	}
	if m, ok := fonts[defaultName]; ok {
		doc.RegisterFont(defaultName, m)
	}
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		if name != defaultName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		doc.RegisterFont(name, fonts[name])
	}
}

// bind attaches a fresh recording backend to the page and appends it to
// the result in reading order.
func (res *Result) bind(page *layout.Node) {
	rec := NewRecorder(page.Width(), page.Height())
	page.SetGraphicsContext(rec)
	res.Pages = append(res.Pages, &Page{Number: len(res.Pages) + 1, Recorder: rec})
}
