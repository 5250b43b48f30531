package rel

import "fmt"

// DefaultKind discriminates Default values.
type DefaultKind uint8

const (
	DefaultNotSet DefaultKind = iota
	DefaultLiteral
	DefaultExpression
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultLiteral:
		return "literal"
	case DefaultExpression:
		return "expression"
	default:
		return "not_set"
	}
}

// ParseDefaultKind is the inverse of DefaultKind.String.
func ParseDefaultKind(s string) (DefaultKind, error) {
	switch s {
	case "", "not_set":
		return DefaultNotSet, nil
	case "literal":
		return DefaultLiteral, nil
	case "expression":
		return DefaultExpression, nil
	default:
		return DefaultNotSet, fmt.Errorf("unknown default kind %q", s)
	}
}

// Default is a column's default value: not set, a literal, or an expression
// evaluated at insert time such as current_timestamp().
type Default struct {
	kind    DefaultKind
	literal Literal
	expr    string
}

// DefaultValueNotSet means the column has no default. Distinct from a NULL literal default.
var DefaultValueNotSet = Default{}

// LiteralDefault returns a default holding lit.
func LiteralDefault(lit Literal) Default {
	return Default{kind: DefaultLiteral, literal: lit}
}

// ExpressionDefault returns a default evaluated at insert time, such as
// "current_timestamp()". Of checks it with CheckExpression.
func ExpressionDefault(expr string) Default {
	return Default{kind: DefaultExpression, expr: expr}
}

func (d Default) Kind() DefaultKind { return d.kind }

func (d Default) IsSet() bool { return d.kind != DefaultNotSet }

func (d Default) Literal() (Literal, bool) {
	return d.literal, d.kind == DefaultLiteral
}

func (d Default) Expression() (string, bool) {
	return d.expr, d.kind == DefaultExpression
}

// Text is the persisted form: literal text, expression source, or "".
func (d Default) Text() string {
	switch d.kind {
	case DefaultLiteral:
		return d.literal.Text()
	case DefaultExpression:
		return d.expr
	default:
		return ""
	}
}

func (d Default) String() string {
	switch d.kind {
	case DefaultLiteral:
		return d.literal.String()
	case DefaultExpression:
		return d.expr
	default:
		return "<not set>"
	}
}

func (d Default) Equal(other Default) bool {
	if d.kind != other.kind {
		return false
	}

	switch d.kind {
	case DefaultLiteral:
		return d.literal.Equal(other.literal)
	case DefaultExpression:
		return d.expr == other.expr
	default:
		return true
	}
}
