package pull

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// defaultFunctionAliases maps database spellings of zero-argument default
// functions onto the catalog's expression functions.
var defaultFunctionAliases = map[string]string{
	"current_timestamp":     "current_timestamp",
	"now":                   "current_timestamp",
	"localtimestamp":        "current_timestamp",
	"getdate":               "current_timestamp",
	"sysdate":               "current_timestamp",
	"transaction_timestamp": "current_timestamp",
	"statement_timestamp":   "current_timestamp",
	"clock_timestamp":       "current_timestamp",
	"current_date":          "current_date",
	"curdate":               "current_date",
	"current_time":          "current_time",
	"curtime":               "current_time",
	"localtime":             "current_time",
	"gen_random_uuid":       "uuid",
	"uuid_generate_v4":      "uuid",
	"uuid":                  "uuid",
	"current_user":          "current_user",
	"session_user":          "current_user",
	"user":                  "current_user",
}

// sqliteNowForms are SQLite's date function spellings of the same defaults.
var sqliteNowForms = map[string]string{
	"datetime('now')": "current_timestamp",
	"date('now')":     "current_date",
	"time('now')":     "current_time",
}

var (
	functionCallPattern = regexp.MustCompile(`^([a-z_][a-z0-9_]*)\s*(?:\(\s*\d*\s*\))?$`)
	castSuffixPattern   = regexp.MustCompile(`(?i)^(.*?)::[a-z][a-z0-9_ ]*(?:\([0-9, ]*\))?(?:\[\])?$`)
	quotedTextPattern   = regexp.MustCompile(`^'((?:[^']|'')*)'$`)
)

// ConvertDefault turns the default clause text reported by the database into
// a column default for type t. NULL and empty text mean no default. Quoted
// values and bare non-character values become literals when they parse as t.
// Well-known functions and other CEL-valid expressions become expression
// defaults. Anything else yields ErrUnsupportedDefault.
func ConvertDefault(raw string, t types.Type, nullable bool) (rel.Default, error) {
	text := unwrapDefault(raw)
	if text == "" || strings.EqualFold(text, "null") {
		return rel.DefaultValueNotSet, nil
	}

	if m := quotedTextPattern.FindStringSubmatch(text); m != nil {
		value := strings.ReplaceAll(m[1], "''", "'")
		if def, ok := literalDefault(t, value, nullable); ok {
			return def, nil
		}

		return rel.Default{}, fmt.Errorf("%w: %s for %s", ErrUnsupportedDefault, raw, t)
	}

	if fn, ok := defaultFunction(text); ok {
		expr := fn + "()"
		if err := rel.CheckExpression(expr, t); err == nil {
			return rel.ExpressionDefault(expr), nil
		}
	}

	// unquoted text is never a character literal
	if !t.IsCharacter() && t.Kind() != types.KindJSON {
		if def, ok := literalDefault(t, text, nullable); ok {
			return def, nil
		}
	}

	if err := rel.CheckExpression(text, t); err == nil {
		return rel.ExpressionDefault(text), nil
	}

	return rel.Default{}, fmt.Errorf("%w: %s for %s", ErrUnsupportedDefault, raw, t)
}

func defaultFunction(text string) (string, bool) {
	lower := strings.ToLower(strings.Join(strings.Fields(text), ""))
	if fn, ok := sqliteNowForms[lower]; ok {
		return fn, true
	}

	m := functionCallPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return "", false
	}

	fn, ok := defaultFunctionAliases[m[1]]

	return fn, ok
}

func literalDefault(t types.Type, text string, nullable bool) (rel.Default, bool) {
	lit, err := rel.ParseLiteral(t, text)
	if err != nil {
		return rel.Default{}, false
	}

	if err := lit.AssignableTo(t, nullable); err != nil {
		return rel.Default{}, false
	}

	return rel.LiteralDefault(lit), true
}

// unwrapDefault strips enclosing parentheses and PostgreSQL type casts.
func unwrapDefault(raw string) string {
	text := strings.TrimSpace(raw)

	for {
		switch {
		case len(text) >= 2 && text[0] == '(' && text[len(text)-1] == ')' && balanced(text[1:len(text)-1]):
			text = strings.TrimSpace(text[1 : len(text)-1])
		case castSuffixPattern.MatchString(text) && !quotedTextPattern.MatchString(text):
			text = strings.TrimSpace(castSuffixPattern.FindStringSubmatch(text)[1])
		default:
			return text
		}
	}
}

func balanced(s string) bool {
	depth := 0
	inQuote := false

	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0 && !inQuote
}
