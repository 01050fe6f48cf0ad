package render

import (
	"archive/zip"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	mimetypeContent = "application/x-folio+zip"
	bundleVersion   = 1
	pagesDir        = "pages"
	resourcesDir    = "resources"
)

type manifestPage struct {
	Number    int      `yaml:"number"`
	Stream    string   `yaml:"stream"`
	Width     float64  `yaml:"width"`
	Height    float64  `yaml:"height"`
	Resources []string `yaml:"resources,omitempty"`
}

type manifest struct {
	Version int            `yaml:"version"`
	ID      string         `yaml:"id"`
	Created string         `yaml:"created"`
	Pages   []manifestPage `yaml:"pages"`
}

// WriteBundle packages the rendered pages into a zip container: a stored
// mimetype entry, a yaml manifest, one Ion op stream per page and the
// referenced image resources. The container is first written normally and
// then rewritten without data descriptors, which some strict zip readers
// choke on.
func (res *Result) WriteBundle(outputPath string, overwrite bool, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("bundle")

	if err := prepareOutputPath(outputPath, overwrite, log); err != nil {
		return err
	}

	tmpName := outputPath + ".tmp"
	if err := res.writeBundleZip(tmpName); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := copyZipWithoutDataDescriptors(tmpName, outputPath); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Remove(tmpName); err != nil {
		return fmt.Errorf("unable to remove temporary file: %w", err)
	}
	log.Debug("bundle written", zap.String("file", outputPath), zap.Int("pages", len(res.Pages)))
	return nil
}

// prepareOutputPath removes an existing output when overwriting is
// allowed and makes sure the destination directory exists.
func prepareOutputPath(outputPath string, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(outputPath); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", outputPath)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputPath))
		if err = os.Remove(outputPath); err != nil {
			return fmt.Errorf("unable to remove existing file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func (res *Result) writeBundleZip(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}

	m := manifest{
		Version: bundleVersion,
		ID:      uuid.New().String(),
		Created: time.Now().UTC().Format(time.RFC3339),
	}

	for _, page := range res.Pages {
		mp, err := res.writePage(zw, page)
		if err != nil {
			return fmt.Errorf("unable to write page %d: %w", page.Number, err)
		}
		m.Pages = append(m.Pages, mp)
	}

	if err := writeManifest(zw, &m); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}
	return nil
}

func (res *Result) writePage(zw *zip.Writer, page *Page) (manifestPage, error) {
	rec := page.Recorder
	mp := manifestPage{
		Number: page.Number,
		Stream: path.Join(pagesDir, fmt.Sprintf("page-%04d.ion", page.Number)),
		Width:  rec.Width(),
		Height: rec.Height(),
	}

	w, err := zw.Create(mp.Stream)
	if err != nil {
		return mp, err
	}
	if err := rec.EncodeOps(w); err != nil {
		return mp, err
	}

	// resource names sorted so entry order is stable
	names := make([]string, 0, len(rec.Images()))
	for name := range rec.Images() {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry, err := res.writeResource(zw, page.Number, name, rec.Images()[name])
		if err != nil {
			return mp, err
		}
		mp.Resources = append(mp.Resources, entry)
	}
	return mp, nil
}

func (res *Result) writeResource(zw *zip.Writer, pageNumber int, name string, img image.Image) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)
	if res.resources != nil {
		data, ext, err = res.resources.Encoded(img)
	} else {
		data, ext, err = encodePNG(img)
	}
	if err != nil {
		return "", err
	}

	entry := path.Join(resourcesDir, fmt.Sprintf("page-%04d", pageNumber), name+ext)
	w, err := zw.Create(entry)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	return entry, nil
}

// writeMimetype stores the mimetype uncompressed as the very first entry,
// so sniffing readers find it at a fixed offset.
func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeManifest(zw *zip.Writer, m *manifest) error {
	w, err := zw.Create("manifest.yaml")
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
