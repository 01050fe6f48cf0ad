package render

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"folio/archive"
	"folio/config"
	"folio/font"
	"folio/layout"
	"folio/state"
	"folio/stylesheet"
	"folio/utils/images"
)

const markupExt = ".xml"

// job carries everything shared between documents of a single run.
type job struct {
	fonts       map[string]font.Metrics
	defaultFont string
	styles      *stylesheet.Stylesheet
	watermark   []byte
	resourceDir string
	naming      Naming
	format      config.OutputFmt
}

// Run implements the render command. It renders a single document, every
// document in a directory tree or every document inside a zip archive.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format := env.Cfg.Document.OutputFormat
	if to := cmd.String("to"); len(to) > 0 {
		if format, err = config.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, using configured one", zap.Error(err))
			format = env.Cfg.Document.OutputFormat
		}
	}

	if env.Cfg.Document.StylesheetPath != "" {
		data, err := os.ReadFile(env.Cfg.Document.StylesheetPath)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet from %q: %w", env.Cfg.Document.StylesheetPath, err)
		}
		env.DefaultStyle = data
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	j := &job{
		defaultFont: env.Cfg.Document.DefaultFont,
		styles:      stylesheet.NewParser(log).Parse(env.DefaultStyle),
		resourceDir: env.Cfg.Document.ResourceDir,
		format:      format,
		naming: Naming{
			NameTemplate:  env.Cfg.Document.OutputNameTemplate,
			Transliterate: env.Cfg.Document.FileNameTransliterate,
			FlattenDirs:   env.NoDirs,
			Ext:           format.Ext(),
		},
	}
	if cmd.Bool("stamp") {
		j.watermark = env.DefaultWatermark
	}
	if j.fonts, err = loadFonts(&env.Cfg.Document, log); err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return j.process(ctx, src, dst, log)
}

// loadFonts merges fonts configured by the user over the embedded
// defaults.
func loadFonts(cfg *config.DocumentConfig, log *zap.Logger) (map[string]font.Metrics, error) {
	fonts, err := font.Defaults()
	if err != nil {
		return nil, fmt.Errorf("unable to prepare default fonts: %w", err)
	}
	for _, fc := range cfg.Fonts {
		data, err := os.ReadFile(fc.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to read font %q: %w", fc.Name, err)
		}
		m, err := font.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse font %q: %w", fc.Name, err)
		}
		if _, ok := fonts[fc.Name]; ok {
			log.Debug("Replacing embedded font", zap.String("font", fc.Name))
		}
		fonts[fc.Name] = m
	}
	return fonts, nil
}

// process determines the input type (directory, archive, or single file)
// and dispatches accordingly. The source path may point inside an archive,
// in which case the longest existing prefix names the archive and the rest
// selects entries in it.
func (j *job) process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head = strings.TrimSuffix(filepath.Dir(head), string(filepath.Separator)) {
		fi, err := os.Stat(head)
		if err != nil {
			// keep dropping path segments until something exists
			continue
		}
		tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))

		if fi.Mode().IsDir() {
			if head != src {
				return fmt.Errorf("unexpected path (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := j.processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			if err := j.processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if isMarkupFile(head) && len(tail) == 0 {
			if file, err := os.Open(head); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := j.processDocument(ctx, file, filepath.Base(head), filepath.Dir(head), dst, log); err != nil {
					log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as a layout document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding documents and archives and
// processes them.
func (j *job) processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := j.processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		if !isMarkupFile(path) {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := j.processDocument(ctx, file, src, filepath.Dir(path), dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive renders every document inside the archive under pathIn.
// Images referenced by the documents are resolved against the archive
// itself.
func (j *job) processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !isMarkupFile(f.FileHeader.Name) {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		if err := j.processDocument(ctx, r, filepath.Join(pathOut, f.FileHeader.Name), path, dst, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processDocument renders a single document. "src" is the source path
// relative to the original input (bare file name for a single file,
// relative path inside a directory or archive otherwise) and shapes the
// output location. "base" is where img sources are resolved: the
// document's directory or its archive, unless the configuration pins a
// resource directory. "dst" is the destination directory.
func (j *job) processDocument(ctx context.Context, r io.Reader, src, base, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Render starting", zap.String("from", src))
	defer func(start time.Time) {
		// NOTE: some of golang graphic processing libraries are not mature
		// enough if multiple documents are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Render ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("render panic: %v", r)
		} else {
			log.Info("Render completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	if j.resourceDir != "" {
		base = j.resourceDir
	}

	opts := Options{
		Fonts:       j.fonts,
		DefaultFont: j.defaultFont,
		Resources:   NewResources(base, log),
		Styles:      j.styles,
	}
	if len(j.watermark) > 0 {
		img, err := images.RasterizeSVGToImage(j.watermark, 0, 0, 0)
		if err != nil {
			return fmt.Errorf("unable to rasterize watermark: %w", err)
		}
		opts.Watermark = img
	}

	res, err := Render(ctx, r, opts, log)
	if err != nil {
		return fmt.Errorf("unable to render document (%s): %w", src, err)
	}

	outputName = BuildOutputPath(src, dst, j.templateValues(res, src), j.naming, log)

	switch j.format {
	case config.OutputFmtBundle:
		if err := res.WriteBundle(outputName, env.Overwrite, log); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
	case config.OutputFmtTree:
		if err := res.WriteTree(outputName, env.Overwrite, log); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
	}

	// Store render result for debugging
	if env.Rpt != nil {
		for i, root := range res.Roots {
			env.Rpt.StoreData(fmt.Sprintf("trees/%s-%d.txt", filepath.Base(outputName), i), []byte(layout.DumpTree(root)))
		}
		env.Rpt.Store(fmt.Sprintf("result-%s", filepath.Base(outputName)), outputName)
	}

	return nil
}

func (j *job) templateValues(res *Result, src string) TemplateValues {
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	return TemplateValues{
		Title:      title,
		Author:     res.Author,
		Date:       time.Now().Format("2006-01-02"),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Pages:      len(res.Pages),
	}
}

// isArchiveFile sniffs the file header for the zip magic.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 262)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	kind, _ := filetype.Match(buf[:n])
	return kind == matchers.TypeZip, nil
}

func isMarkupFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), markupExt)
}
