// Package css maps formatting range types to stylesheet classes and parses
// style themes used when emitting formatted elements and exporting bundles.
package css

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"ams/format"
)

//go:embed default.css
var defaultTheme []byte

// Declaration is a single property: value pair of a theme rule.
type Declaration struct {
	Property string
	Value    string
}

// Theme is a parsed stylesheet keyed by class selector. Only simple class
// rulesets are interpreted; everything else is carried through verbatim in
// the raw stylesheet.
type Theme struct {
	classes map[string][]Declaration
	raw     []byte
}

// ClassFor returns the stylesheet class for a formatting type, e.g.
// "fmt-bold" or "fmt-list-item".
func ClassFor(t format.Type) string {
	return "fmt-" + kebab(t.String())
}

func kebab(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Default returns the built-in theme.
func Default(log *zap.Logger) *Theme {
	t, err := Parse(defaultTheme, log)
	if err != nil {
		// embedded stylesheet is known good
		panic(err)
	}
	return t
}

// Load returns the theme at path, or the built-in theme when path is empty.
// Parsed themes are checked for formatting class coverage.
func Load(path string, log *zap.Logger) (*Theme, error) {
	if len(path) == 0 {
		return Default(log), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read theme from %q: %w", path, err)
	}
	t, err := Parse(data, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse theme %q: %w", path, err)
	}
	t.CheckCoverage(log)
	return t, nil
}

// Parse reads a stylesheet and indexes its class rules.
func Parse(data []byte, log *zap.Logger) (*Theme, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("css")

	t := &Theme{classes: make(map[string][]Declaration), raw: data}

	input := parse.NewInput(bytes.NewReader(data))
	p := cssparse.NewParser(input, false)

	var selectors []string
	for {
		gt, _, tok := p.Next()
		switch gt {
		case cssparse.ErrorGrammar:
			if err := p.Err(); err != nil && err.Error() != "EOF" {
				log.Debug("Stylesheet parse ended", zap.Error(err))
			}
			return t, nil

		case cssparse.BeginRulesetGrammar:
			selectors = classSelectors(p.Values())

		case cssparse.DeclarationGrammar:
			decl := Declaration{Property: string(tok), Value: valuesText(p.Values())}
			for _, sel := range selectors {
				t.classes[sel] = append(t.classes[sel], decl)
			}

		case cssparse.EndRulesetGrammar:
			selectors = nil

		case cssparse.BeginAtRuleGrammar, cssparse.AtRuleGrammar:
			// at-rules are not interpreted, kept in raw form only
			log.Debug("Skipping at-rule in theme", zap.String("rule", string(tok)))
		}
	}
}

// classSelectors extracts simple class names from ruleset selector tokens.
func classSelectors(values []cssparse.Token) []string {
	var out []string
	for i := 0; i < len(values); i++ {
		if values[i].TokenType == cssparse.DelimToken && string(values[i].Data) == "." && i+1 < len(values) {
			if values[i+1].TokenType == cssparse.IdentToken {
				out = append(out, string(values[i+1].Data))
				i++
			}
		}
	}
	return out
}

func valuesText(values []cssparse.Token) string {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

// Declarations returns the parsed declarations for a class, nil when the
// theme does not style it.
func (t *Theme) Declarations(class string) []Declaration {
	return t.classes[class]
}

// Has reports whether the theme styles the given class.
func (t *Theme) Has(class string) bool {
	_, ok := t.classes[class]
	return ok
}

// Stylesheet returns the raw stylesheet bytes for embedding into exported
// bundles.
func (t *Theme) Stylesheet() []byte {
	return t.raw
}

// CheckCoverage logs formatting type classes the theme leaves unstyled.
func (t *Theme) CheckCoverage(log *zap.Logger) {
	if log == nil {
		return
	}
	for ft := format.TypeBold; ft <= format.TypeTable; ft++ {
		if class := ClassFor(ft); !t.Has(class) {
			log.Debug("Theme does not style formatting class", zap.String("class", class))
		}
	}
}
