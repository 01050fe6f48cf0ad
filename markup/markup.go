// Package markup builds layout node trees from XML documents. The format
// is a small element set - <document>, <page>, <dynamic-page>, <div>,
// <text>, <img> - with node attributes as element attributes, an optional
// embedded <stylesheet> and page placeholders (<header>, <footer>,
// <watermark>).
package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"folio/formatters"
	"folio/layout"
	"folio/stylesheet"
)

// Document is a parsed markup document: the top-level page nodes plus the
// stylesheet that was applied while building them. Title and Author come
// from the optional attributes of the root element.
type Document struct {
	Title  string
	Author string
	Pages  []*layout.Node
	Styles *stylesheet.Stylesheet
}

// elementKinds maps markup tags to node kinds.
var elementKinds = map[string]layout.Kind{
	"div":          layout.KindContainer,
	"page":         layout.KindPage,
	"dynamic-page": layout.KindDynamicPage,
	"text":         layout.KindText,
	"img":          layout.KindImage,
}

var placeholderTags = map[string]string{
	"header":    layout.PlaceholderHeader,
	"footer":    layout.PlaceholderFooter,
	"watermark": layout.PlaceholderWatermark,
}

// Parse reads a markup document. Old documents in legacy encodings are
// handled through the charset reader; text content is NFC-normalized.
func Parse(r io.Reader, log *zap.Logger) (*Document, error) {
	return ParseStyled(r, nil, log)
}

// ParseStyled reads a markup document layering extra stylesheet rules
// beneath the document's own: the embedded <stylesheet> wins on conflicts.
func ParseStyled(r io.Reader, extra *stylesheet.Stylesheet, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("markup")

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read markup: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("markup has no root element")
	}
	if root.Tag != "document" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	b := &builder{log: log, styles: &stylesheet.Stylesheet{}}
	if css := root.SelectElement("stylesheet"); css != nil {
		b.styles = stylesheet.NewParser(log).Parse([]byte(css.Text()))
		for _, w := range b.styles.Warnings {
			log.Warn("Stylesheet issue", zap.String("detail", w))
		}
	}
	if extra != nil {
		b.styles.Rules = append(append([]stylesheet.Rule(nil), extra.Rules...), b.styles.Rules...)
	}

	out := &Document{
		Title:  root.SelectAttrValue("title", ""),
		Author: root.SelectAttrValue("author", ""),
		Styles: b.styles,
	}
	for _, el := range root.ChildElements() {
		if el.Tag == "stylesheet" {
			continue
		}
		kind, ok := elementKinds[el.Tag]
		if !ok || !kind.IsPage() {
			return nil, fmt.Errorf("element %s: only pages may appear at document level", path(el))
		}
		page, err := b.build(el)
		if err != nil {
			return nil, err
		}
		out.Pages = append(out.Pages, page)
	}
	if len(out.Pages) == 0 {
		return nil, fmt.Errorf("markup defines no pages")
	}
	return out, nil
}

type builder struct {
	log    *zap.Logger
	styles *stylesheet.Stylesheet
}

func (b *builder) build(el *etree.Element) (*layout.Node, error) {
	kind, ok := elementKinds[el.Tag]
	if !ok {
		return nil, fmt.Errorf("unknown element %s", path(el))
	}
	n := layout.New(kind)
	n.SetFormatterNames(formatters.DefaultChain(kind)...)

	// stylesheet first so element attributes win
	b.styles.Apply(n, classes(el)...)

	for _, a := range el.Attr {
		if a.Space != "" || a.Key == "class" || a.Key == "id" {
			continue
		}
		if err := n.SetAttribute(a.Key, a.Value); err != nil {
			return nil, fmt.Errorf("element %s: %w", path(el), err)
		}
	}

	if kind == layout.KindText {
		n.SetText(norm.NFC.String(collapseSpace(innerText(el))))
		return n, nil
	}
	if kind.IsLeaf() {
		return n, nil
	}

	for _, child := range el.ChildElements() {
		if name, ok := placeholderTags[child.Tag]; ok {
			if !kind.IsPage() {
				return nil, fmt.Errorf("element %s: %s placeholders belong on pages", path(child), child.Tag)
			}
			ph, err := b.buildPlaceholder(child)
			if err != nil {
				return nil, err
			}
			if err := n.SetPlaceholder(name, ph); err != nil {
				return nil, fmt.Errorf("element %s: %w", path(child), err)
			}
			continue
		}
		cn, err := b.build(child)
		if err != nil {
			return nil, err
		}
		if err := n.Add(cn); err != nil {
			return nil, fmt.Errorf("element %s: %w", path(child), err)
		}
	}
	return n, nil
}

// buildPlaceholder wraps a placeholder element's children into a container
// node carrying the placeholder element's own attributes.
func (b *builder) buildPlaceholder(el *etree.Element) (*layout.Node, error) {
	wrapper := layout.NewContainer()
	wrapper.SetFormatterNames(formatters.DefaultChain(layout.KindContainer)...)
	b.styles.Apply(wrapper, classes(el)...)
	for _, a := range el.Attr {
		if a.Space != "" || a.Key == "class" || a.Key == "id" {
			continue
		}
		if err := wrapper.SetAttribute(a.Key, a.Value); err != nil {
			return nil, fmt.Errorf("element %s: %w", path(el), err)
		}
	}
	for _, child := range el.ChildElements() {
		cn, err := b.build(child)
		if err != nil {
			return nil, err
		}
		if err := wrapper.Add(cn); err != nil {
			return nil, fmt.Errorf("element %s: %w", path(child), err)
		}
	}
	return wrapper, nil
}

func classes(el *etree.Element) []string {
	return strings.Fields(el.SelectAttrValue("class", ""))
}

// innerText collects character data of the element and its descendants in
// document order.
func innerText(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			sb.WriteString(innerText(t))
		}
	}
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// path renders the element position for error context.
func path(el *etree.Element) string {
	return el.GetPath()
}
