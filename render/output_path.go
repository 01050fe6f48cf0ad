package render

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"folio/config"
)

// BundleExt is the extension of packaged output containers.
const BundleExt = ".folio"

// TemplateValues holds the variables available to the output name
// template.
type TemplateValues struct {
	Title      string
	Author     string
	Date       string
	SourceFile string
	Pages      int
}

// Naming controls output path construction.
type Naming struct {
	// NameTemplate is a text/template (sprig functions available) over
	// TemplateValues; it may contain path separators for subdirectories.
	// Empty means the default scheme: source base name plus BundleExt.
	NameTemplate string
	// Transliterate slugs every produced path segment.
	Transliterate bool
	// FlattenDirs drops the source directory structure from the output.
	FlattenDirs bool
	// Ext overrides the output file extension. Empty means BundleExt.
	Ext string
}

func (n Naming) ext() string {
	if n.Ext == "" {
		return BundleExt
	}
	return n.Ext
}

// BuildOutputPath returns the constructed output file path. It uses either
// the default naming scheme or the user template, preserves the source
// directory structure unless flattened, cleans every segment and
// optionally transliterates it. Failed template expansion falls back to
// the default name.
func BuildOutputPath(src, dst string, v TemplateValues, naming Naming, log *zap.Logger) string {
	outDir := determineOutputDir(src, dst, naming)
	defaultFile := buildDefaultFileName(src, naming)

	if naming.NameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	expandedName := expandNameTemplate(v, naming, log)
	if expandedName == "" {
		return filepath.Join(outDir, defaultFile)
	}

	return assemblePathWithSubdirs(outDir, expandedName, naming)
}

func determineOutputDir(src, dst string, naming Naming) string {
	if naming.FlattenDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultFileName(src string, naming Naming) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if naming.Transliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + naming.ext()
}

func expandNameTemplate(v TemplateValues, naming Naming, log *zap.Logger) string {
	tmpl, err := template.New("output-name").Funcs(sprig.FuncMap()).Parse(naming.NameTemplate)
	if err != nil {
		log.Warn("Unable to parse output name template", zap.Error(err))
		return ""
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, v); err != nil {
		log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(buf.String())
}

// assemblePathWithSubdirs takes an expanded template name (which may
// contain path separators for subdirectories) and assembles it into a
// full output path, cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName string, naming Naming) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], naming) + naming.ext()
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, naming))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
		path = head
	}

	return segments
}

func cleanPathSegment(segment string, naming Naming) string {
	if naming.Transliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
