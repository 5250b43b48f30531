// Package types defines the logical data types a catalog column may hold.
//
// A Type is a small comparable value: two independently constructed types
// with the same kind and parameters are ==, and may be used as map keys.
package types

import (
	"fmt"
	"strconv"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// Re-exported so callers of this package can match failures without importing the root package.
var (
	ErrInvalidTypeParameter = snapcatalog.ErrInvalidTypeParameter
	ErrUnknownType          = snapcatalog.ErrUnknownType
)

// Limits applied by the parameterized factories
const (
	MaxDecimalPrecision = 38
	MaxTimePrecision    = 12
)

// unspecifiedPrecision marks time/timestamp types declared without an explicit precision.
const unspecifiedPrecision = -1

// Kind is the discriminant of a Type.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBoolean
	KindByte
	KindShort
	KindInteger
	KindLong
	KindFloat
	KindDouble
	KindDecimal
	KindDate
	KindTime
	KindTimestamp
	KindTimestampTZ
	KindString
	KindVarChar
	KindFixedChar
	KindUUID
	KindBinary
	KindFixed
	KindJSON
	KindList
)

var kindNames = [...]string{
	KindUnknown:     "unknown",
	KindBoolean:     "boolean",
	KindByte:        "byte",
	KindShort:       "short",
	KindInteger:     "integer",
	KindLong:        "long",
	KindFloat:       "float",
	KindDouble:      "double",
	KindDecimal:     "decimal",
	KindDate:        "date",
	KindTime:        "time",
	KindTimestamp:   "timestamp",
	KindTimestampTZ: "timestamp_tz",
	KindString:      "string",
	KindVarChar:     "varchar",
	KindFixedChar:   "char",
	KindUUID:        "uuid",
	KindBinary:      "binary",
	KindFixed:       "fixed",
	KindJSON:        "json",
	KindList:        "list",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Type is a logical data type. The zero Type is invalid (KindUnknown).
type Type struct {
	kind      Kind
	length    int
	precision int
	scale     int

	// elem is the canonical string of the list element type, so Type stays comparable.
	elem         string
	elemNullable bool
}

// Boolean returns the boolean type.
func Boolean() Type { return Type{kind: KindBoolean} }

// Byte returns the 8-bit integer type.
func Byte() Type { return Type{kind: KindByte} }

// Short returns the 16-bit integer type.
func Short() Type { return Type{kind: KindShort} }

// Integer returns the 32-bit integer type.
func Integer() Type { return Type{kind: KindInteger} }

// Long returns the 64-bit integer type.
func Long() Type { return Type{kind: KindLong} }

// Float returns the single precision floating point type.
func Float() Type { return Type{kind: KindFloat} }

// Double returns the double precision floating point type.
func Double() Type { return Type{kind: KindDouble} }

// Date returns the calendar date type.
func Date() Type { return Type{kind: KindDate} }

// String returns the unbounded character type.
func String() Type { return Type{kind: KindString} }

// UUID returns the UUID type.
func UUID() Type { return Type{kind: KindUUID} }

// Binary returns the unbounded byte string type.
func Binary() Type { return Type{kind: KindBinary} }

// JSON returns the JSON document type.
func JSON() Type { return Type{kind: KindJSON} }

// Time returns a time type without explicit precision.
func Time() Type { return Type{kind: KindTime, precision: unspecifiedPrecision} }

// Timestamp returns a timestamp without time zone and without explicit precision.
func Timestamp() Type { return Type{kind: KindTimestamp, precision: unspecifiedPrecision} }

// TimestampTZ returns a timestamp with time zone and without explicit precision.
func TimestampTZ() Type { return Type{kind: KindTimestampTZ, precision: unspecifiedPrecision} }

// Decimal returns decimal(precision, scale).
func Decimal(precision, scale int) (Type, error) {
	if precision < 1 || precision > MaxDecimalPrecision {
		return Type{}, fmt.Errorf("%w: decimal precision must be in [1, %d], got %d", ErrInvalidTypeParameter, MaxDecimalPrecision, precision)
	}

	if scale < 0 || scale > precision {
		return Type{}, fmt.Errorf("%w: decimal scale must be in [0, %d], got %d", ErrInvalidTypeParameter, precision, scale)
	}

	return Type{kind: KindDecimal, precision: precision, scale: scale}, nil
}

// TimeP returns time(precision) with precision in [0, MaxTimePrecision].
func TimeP(precision int) (Type, error) {
	return temporal(KindTime, precision)
}

// TimestampP returns timestamp(precision).
func TimestampP(precision int) (Type, error) {
	return temporal(KindTimestamp, precision)
}

// TimestampTZP returns timestamp_tz(precision).
func TimestampTZP(precision int) (Type, error) {
	return temporal(KindTimestampTZ, precision)
}

func temporal(kind Kind, precision int) (Type, error) {
	if precision < 0 || precision > MaxTimePrecision {
		return Type{}, fmt.Errorf("%w: %s precision must be in [0, %d], got %d", ErrInvalidTypeParameter, kind, MaxTimePrecision, precision)
	}

	return Type{kind: kind, precision: precision}, nil
}

// VarChar returns varchar(length). length must be positive.
func VarChar(length int) (Type, error) {
	return sized(KindVarChar, length)
}

// FixedChar returns char(length). length must be positive.
func FixedChar(length int) (Type, error) {
	return sized(KindFixedChar, length)
}

// Fixed returns a fixed-length byte string of length bytes.
func Fixed(length int) (Type, error) {
	return sized(KindFixed, length)
}

func sized(kind Kind, length int) (Type, error) {
	if length < 1 {
		return Type{}, fmt.Errorf("%w: %s length must be positive, got %d", ErrInvalidTypeParameter, kind, length)
	}

	return Type{kind: kind, length: length}, nil
}

// List returns a list type of elem.
func List(elem Type, elemNullable bool) (Type, error) {
	if !elem.IsValid() {
		return Type{}, fmt.Errorf("%w: list element type is invalid", ErrInvalidTypeParameter)
	}

	if elem.kind == KindList {
		return Type{}, fmt.Errorf("%w: list element must not be a list", ErrInvalidTypeParameter)
	}

	return Type{kind: KindList, elem: elem.String(), elemNullable: elemNullable}, nil
}

// Of constructs a type from its kind and numeric parameters.
func Of(kind Kind, params ...int) (Type, error) {
	switch kind {
	case KindBoolean, KindByte, KindShort, KindInteger, KindLong, KindFloat, KindDouble,
		KindDate, KindString, KindUUID, KindBinary, KindJSON:
		if len(params) != 0 {
			return Type{}, fmt.Errorf("%w: %s takes no parameters, got %d", ErrInvalidTypeParameter, kind, len(params))
		}

		return Type{kind: kind}, nil
	case KindDecimal:
		switch len(params) {
		case 1:
			return Decimal(params[0], 0)
		case 2:
			return Decimal(params[0], params[1])
		default:
			return Type{}, fmt.Errorf("%w: decimal takes precision and optional scale, got %d parameters", ErrInvalidTypeParameter, len(params))
		}
	case KindTime, KindTimestamp, KindTimestampTZ:
		switch len(params) {
		case 0:
			return Type{kind: kind, precision: unspecifiedPrecision}, nil
		case 1:
			return temporal(kind, params[0])
		default:
			return Type{}, fmt.Errorf("%w: %s takes at most one parameter, got %d", ErrInvalidTypeParameter, kind, len(params))
		}
	case KindVarChar, KindFixedChar, KindFixed:
		if len(params) != 1 {
			return Type{}, fmt.Errorf("%w: %s takes exactly one length parameter, got %d", ErrInvalidTypeParameter, kind, len(params))
		}

		return sized(kind, params[0])
	case KindList:
		return Type{}, fmt.Errorf("%w: list types must be built with List", ErrInvalidTypeParameter)
	default:
		return Type{}, fmt.Errorf("%w: %s", ErrUnknownType, kind)
	}
}

// Must panics if err is non-nil. Intended for package-level constants and tests.
func Must(t Type, err error) Type {
	if err != nil {
		panic(err)
	}

	return t
}

func (t Type) Kind() Kind { return t.kind }

// IsValid reports whether t was produced by a factory.
func (t Type) IsValid() bool { return t.kind != KindUnknown }

// Equal reports structural equality. It is the same as ==.
func (t Type) Equal(other Type) bool { return t == other }

// Length returns the declared length of varchar, char and fixed types.
func (t Type) Length() int { return t.length }

// Precision returns the declared precision of decimal and temporal types.
func (t Type) Precision() (int, bool) {
	switch t.kind {
	case KindDecimal:
		return t.precision, true
	case KindTime, KindTimestamp, KindTimestampTZ:
		if t.precision == unspecifiedPrecision {
			return 0, false
		}

		return t.precision, true
	default:
		return 0, false
	}
}

// Scale returns the scale of a decimal type.
func (t Type) Scale() int { return t.scale }

// Elem returns the element type of a list.
func (t Type) Elem() (Type, bool) {
	if t.kind != KindList {
		return Type{}, false
	}

	elem, err := Parse(t.elem)
	if err != nil {
		return Type{}, false
	}

	return elem, true
}

// ElemNullable reports whether list elements may be null.
func (t Type) ElemNullable() bool { return t.elemNullable }

func (t Type) IsIntegral() bool {
	switch t.kind {
	case KindByte, KindShort, KindInteger, KindLong:
		return true
	default:
		return false
	}
}

func (t Type) IsNumeric() bool {
	return t.IsIntegral() || t.kind == KindFloat || t.kind == KindDouble || t.kind == KindDecimal
}

func (t Type) IsTemporal() bool {
	switch t.kind {
	case KindDate, KindTime, KindTimestamp, KindTimestampTZ:
		return true
	default:
		return false
	}
}

func (t Type) IsCharacter() bool {
	return t.kind == KindString || t.kind == KindVarChar || t.kind == KindFixedChar
}

// String returns the canonical simple string accepted by Parse.
func (t Type) String() string {
	switch t.kind {
	case KindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", t.precision, t.scale)
	case KindTime, KindTimestamp, KindTimestampTZ:
		if t.precision == unspecifiedPrecision {
			return t.kind.String()
		}

		return fmt.Sprintf("%s(%d)", t.kind, t.precision)
	case KindVarChar, KindFixedChar, KindFixed:
		return fmt.Sprintf("%s(%d)", t.kind, t.length)
	case KindList:
		if t.elemNullable {
			return "list<" + t.elem + ">"
		}

		return "list<" + t.elem + " not null>"
	default:
		return t.kind.String()
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: cannot marshal the zero type", ErrUnknownType)
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

var simpleNames = map[string]Kind{
	"boolean":      KindBoolean,
	"bool":         KindBoolean,
	"byte":         KindByte,
	"tinyint":      KindByte,
	"short":        KindShort,
	"smallint":     KindShort,
	"integer":      KindInteger,
	"int":          KindInteger,
	"long":         KindLong,
	"bigint":       KindLong,
	"float":        KindFloat,
	"real":         KindFloat,
	"double":       KindDouble,
	"decimal":      KindDecimal,
	"numeric":      KindDecimal,
	"date":         KindDate,
	"time":         KindTime,
	"timestamp":    KindTimestamp,
	"timestamp_tz": KindTimestampTZ,
	"timestamptz":  KindTimestampTZ,
	"string":       KindString,
	"text":         KindString,
	"varchar":      KindVarChar,
	"char":         KindFixedChar,
	"fixedchar":    KindFixedChar,
	"uuid":         KindUUID,
	"binary":       KindBinary,
	"fixed":        KindFixed,
	"json":         KindJSON,
}

// Parse parses the canonical string form produced by String.
func Parse(s string) (Type, error) {
	src := strings.ToLower(strings.TrimSpace(s))
	if src == "" {
		return Type{}, fmt.Errorf("%w: empty type name", ErrUnknownType)
	}

	if strings.HasPrefix(src, "list<") {
		if !strings.HasSuffix(src, ">") {
			return Type{}, fmt.Errorf("%w: unterminated list type %q", ErrUnknownType, s)
		}

		inner := strings.TrimSpace(src[len("list<") : len(src)-1])
		nullable := true

		if trimmed, ok := strings.CutSuffix(inner, " not null"); ok {
			inner = strings.TrimSpace(trimmed)
			nullable = false
		}

		elem, err := Parse(inner)
		if err != nil {
			return Type{}, err
		}

		return List(elem, nullable)
	}

	name, params, err := splitParams(src)
	if err != nil {
		return Type{}, fmt.Errorf("%w: %q: %w", ErrUnknownType, s, err)
	}

	kind, ok := simpleNames[name]
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}

	return Of(kind, params...)
}

// splitParams splits "name(a, b)" into its name and integer parameters.
func splitParams(src string) (string, []int, error) {
	open := strings.IndexByte(src, '(')
	if open < 0 {
		return strings.TrimSpace(src), nil, nil
	}

	if !strings.HasSuffix(src, ")") {
		return "", nil, fmt.Errorf("missing closing parenthesis")
	}

	name := strings.TrimSpace(src[:open])
	body := src[open+1 : len(src)-1]

	var params []int

	for _, part := range strings.Split(body, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return "", nil, fmt.Errorf("invalid parameter %q", strings.TrimSpace(part))
		}

		params = append(params, n)
	}

	return name, params, nil
}
