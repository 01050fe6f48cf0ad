package layout

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"folio/font"
)

// Document resolves named/bagged configuration into executable services:
// font metrics, formatters and enhancement factories. The core calls these
// during Format and preDraw but does not implement them.
type Document struct {
	log *zap.Logger

	fonts       map[string]font.Metrics
	defaultFont string

	formatters   map[string]Formatter
	enhancements map[string]EnhancementFactory
}

// NewDocument creates an empty service registry.
func NewDocument(log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		log:          log,
		fonts:        make(map[string]font.Metrics),
		formatters:   make(map[string]Formatter),
		enhancements: make(map[string]EnhancementFactory),
	}
}

// Log returns the document logger.
func (d *Document) Log() *zap.Logger { return d.log }

// RegisterFont installs font metrics under a name. The first registered
// font becomes the default.
func (d *Document) RegisterFont(name string, m font.Metrics) {
	if len(d.fonts) == 0 {
		d.defaultFont = name
	}
	d.fonts[name] = m
}

// Font resolves font metrics by name; the empty name resolves to the
// default font.
func (d *Document) Font(name string) (font.Metrics, error) {
	if name == "" {
		name = d.defaultFont
	}
	m, ok := d.fonts[name]
	if !ok {
		return nil, fmt.Errorf("unknown font %q", name)
	}
	return m, nil
}

// RegisterFormatter installs a named formatter.
func (d *Document) RegisterFormatter(name string, f Formatter) {
	d.formatters[name] = f
}

// Formatter resolves a formatter by name.
func (d *Document) Formatter(name string) (Formatter, error) {
	f, ok := d.formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter %q", name)
	}
	return f, nil
}

// RegisterEnhancement installs a factory building enhancement instances
// from attribute bags.
func (d *Document) RegisterEnhancement(name string, factory EnhancementFactory) {
	d.enhancements[name] = factory
}

// Enhancements materializes a node's enhancement bag into executable
// enhancements, in deterministic (sorted) bag-name order.
func (d *Document) Enhancements(bag map[string]map[string]any) ([]Enhancement, error) {
	if len(bag) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(bag))
	for name := range bag {
		names = append(names, name)
	}
	sort.Strings(names)

	enhancements := make([]Enhancement, 0, len(names))
	for _, name := range names {
		factory, ok := d.enhancements[name]
		if !ok {
			return nil, fmt.Errorf("unknown enhancement %q", name)
		}
		e, err := factory(bag[name])
		if err != nil {
			return nil, fmt.Errorf("unable to build enhancement %q: %w", name, err)
		}
		enhancements = append(enhancements, e)
	}
	return enhancements, nil
}
