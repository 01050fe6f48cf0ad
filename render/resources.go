package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"go.uber.org/zap"

	"folio/archive"
	"folio/jpegquality"
	"folio/utils/images"
)

// reencodeQuality is used when a JPEG source is estimated to be above
// keepQualityMax and gets recompressed for the bundle.
const (
	keepQualityMax  = 90
	reencodeQuality = 85
	reencodeDensity = 150
)

type resourceEntry struct {
	data    []byte
	ext     string
	img     image.Image
	quality int // estimated JPEG quality, 0 when not a JPEG or unknown
}

// Resources loads image sources for formatting and keeps the original
// bytes around so the bundle writer can avoid recompressing lossy input.
// The base may be a directory or a zip archive.
type Resources struct {
	base    string
	zipped  bool
	log     *zap.Logger
	entries map[string]*resourceEntry
	byImage map[image.Image]*resourceEntry
}

// NewResources creates a loader rooted at base. A base ending in ".zip"
// is treated as an archive; sources are then entry names inside it.
func NewResources(base string, log *zap.Logger) *Resources {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resources{
		base:    base,
		zipped:  strings.EqualFold(filepath.Ext(base), ".zip"),
		log:     log.Named("resources"),
		entries: make(map[string]*resourceEntry),
		byImage: make(map[image.Image]*resourceEntry),
	}
}

// Load resolves an image source to decoded pixels. Satisfies
// formatters.ImageLoader.
func (r *Resources) Load(src string) (image.Image, error) {
	if e, ok := r.entries[src]; ok {
		return e.img, nil
	}

	data, err := r.read(src)
	if err != nil {
		return nil, err
	}

	e, err := r.decode(src, data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image %q: %w", src, err)
	}
	r.entries[src] = e
	r.byImage[e.img] = e
	return e.img, nil
}

func (r *Resources) read(src string) ([]byte, error) {
	if r.zipped {
		var data []byte
		err := archive.Walk(r.base, src, func(_ string, f *zip.File) error {
			if f.Name != src {
				return nil
			}
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()
			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(rc); err != nil {
				return err
			}
			data = buf.Bytes()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to read %q from archive %s: %w", src, r.base, err)
		}
		if data == nil {
			return nil, fmt.Errorf("image %q not found in archive %s", src, r.base)
		}
		return data, nil
	}

	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.base, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read image %q: %w", src, err)
	}
	return data, nil
}

func (r *Resources) decode(src string, data []byte) (*resourceEntry, error) {
	kind, _ := filetype.Match(data)

	if kind == matchers.TypeJpeg {
		e := &resourceEntry{data: data, ext: ".jpg"}
		if jq, err := jpegquality.NewWithBytes(data); err == nil {
			e.quality = jq.Quality()
			r.log.Debug("jpeg source", zap.String("src", src), zap.Int("quality", e.quality))
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, err
		}
		e.img = img
		return e, nil
	}

	if isSVG(src, data) {
		img, err := images.RasterizeSVGToImage(data, 0, 0, 0)
		if err != nil {
			return nil, err
		}
		// rasterized output is our own, no original bytes to preserve
		return &resourceEntry{ext: ".png", img: img}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	ext := ".png"
	if kind != filetype.Unknown {
		ext = "." + kind.Extension
	}
	if images.IsGrayscale(img) {
		r.log.Debug("grayscale source", zap.String("src", src))
	}
	return &resourceEntry{data: data, ext: ext, img: img}, nil
}

// isSVG sniffs SVG sources, which filetype does not match.
func isSVG(src string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(src), ".svg") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// Encoded returns the bytes to store in a bundle for the given drawn
// image, plus their file extension. Original bytes are reused whenever the
// source was already compressed; JPEGs estimated above keepQualityMax get
// recompressed to keep bundles small.
func (r *Resources) Encoded(img image.Image) ([]byte, string, error) {
	e, ok := r.byImage[img]
	if !ok || e.data == nil {
		return encodePNG(img)
	}
	if e.ext == ".jpg" && e.quality > keepQualityMax {
		data, err := images.EncodeJPEGWithDPI(img, reencodeQuality, images.DpiPxPerInch, reencodeDensity, reencodeDensity)
		if err != nil {
			return nil, "", fmt.Errorf("unable to recompress jpeg: %w", err)
		}
		return data, ".jpg", nil
	}
	return e.data, e.ext, nil
}

func encodePNG(img image.Image) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("unable to encode png: %w", err)
	}
	return buf.Bytes(), ".png", nil
}
