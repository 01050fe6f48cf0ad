package stylesheet

import (
	"bytes"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"folio/geom"
)

// Parser parses stylesheet text into ordered rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a stylesheet parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("stylesheet")}
}

// Parse tokenizes stylesheet text. Grouped selectors produce one rule per
// selector; selectors beyond the supported kind/.class forms are skipped
// with a warning.
func (p *Parser) Parse(data []byte) *Stylesheet {
	sheet := &Stylesheet{}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	for {
		gt, _, tokenData := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("stylesheet parse stopped", zap.Error(err))
			}
			return sheet

		case css.BeginAtRuleGrammar:
			p.skipBlock(parser)

		case css.BeginRulesetGrammar:
			selectors := splitSelectors(tokenData, parser.Values())
			declarations := p.parseDeclarations(parser, sheet)
			for _, raw := range selectors {
				sel, ok := parseSelector(raw)
				if !ok {
					sheet.Warnings = append(sheet.Warnings, "unsupported selector "+raw)
					continue
				}
				sheet.Rules = append(sheet.Rules, Rule{
					Selector:     sel,
					Declarations: declarations,
				})
			}
		}
	}
}

func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseSelector understands kind, .class and kind.class.
func parseSelector(raw string) (Selector, bool) {
	if strings.ContainsAny(raw, " >+~:[#") {
		return Selector{}, false
	}
	kind, class, found := strings.Cut(raw, ".")
	if !found {
		return Selector{Kind: raw}, true
	}
	if class == "" || strings.Contains(class, ".") {
		return Selector{}, false
	}
	return Selector{Kind: kind, Class: class}, true
}

func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var declarations []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return declarations
		case css.DeclarationGrammar:
			property := strings.ToLower(string(data))
			value, ok := convertValue(parser.Values())
			if !ok {
				sheet.Warnings = append(sheet.Warnings, "empty value for "+property)
				continue
			}
			declarations = append(declarations, Declaration{Property: property, Value: value})
		}
	}
}

// convertValue reduces declaration tokens to an attribute value: a single
// number or length becomes float64 (lengths converted to points),
// everything else joins into the raw text form.
func convertValue(tokens []css.Token) (any, bool) {
	var parts []string
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		parts = append(parts, string(t.Data))
	}
	if len(parts) == 0 {
		return nil, false
	}
	if len(parts) == 1 {
		t := firstValueToken(tokens)
		switch t.TokenType {
		case css.NumberToken:
			if f, err := strconv.ParseFloat(parts[0], 64); err == nil {
				return f, true
			}
		case css.DimensionToken:
			if f, err := geom.ParseLength(parts[0]); err == nil {
				return f, true
			}
		case css.StringToken:
			return strings.Trim(parts[0], `"'`), true
		}
		return parts[0], true
	}
	return strings.Join(parts, " "), true
}

func firstValueToken(tokens []css.Token) css.Token {
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			return t
		}
	}
	return css.Token{}
}

func (p *Parser) skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}
