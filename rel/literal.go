package rel

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snapcatalog/types"
)

// Text layouts used by Literal.Text and ParseLiteral
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04:05.999999999"
)

// Literal is a typed constant usable as a column default.
type Literal struct {
	typ   types.Type
	null  bool
	value any
}

// NullLiteral is the SQL NULL literal. It has no type.
func NullLiteral() Literal { return Literal{null: true} }

func BooleanLiteral(v bool) Literal { return Literal{typ: types.Boolean(), value: v} }

func IntegerLiteral(v int32) Literal { return Literal{typ: types.Integer(), value: v} }

func LongLiteral(v int64) Literal { return Literal{typ: types.Long(), value: v} }

func DoubleLiteral(v float64) Literal { return Literal{typ: types.Double(), value: v} }

// DecimalLiteral types v as decimal(p,s) with the smallest precision and scale that hold it.
func DecimalLiteral(v decimal.Decimal) Literal {
	intDigits, scale := decimalShape(v)

	precision := max(intDigits+scale, 1)
	precision = min(precision, types.MaxDecimalPrecision)
	scale = min(scale, precision)

	return Literal{typ: types.Must(types.Decimal(precision, scale)), value: v}
}

func StringLiteral(v string) Literal { return Literal{typ: types.String(), value: v} }

// DateLiteral keeps only the calendar date of v.
func DateLiteral(v time.Time) Literal {
	d := time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	return Literal{typ: types.Date(), value: d}
}

// TimestampLiteral is a timestamp without time zone; the wall clock of v is kept.
func TimestampLiteral(v time.Time) Literal {
	wall := time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)
	return Literal{typ: types.Timestamp(), value: wall}
}

// TimestampTZLiteral is an absolute instant.
func TimestampTZLiteral(v time.Time) Literal {
	return Literal{typ: types.TimestampTZ(), value: v}
}

func UUIDLiteral(v uuid.UUID) Literal { return Literal{typ: types.UUID(), value: v} }

func (l Literal) IsNull() bool { return l.null }

// Type is the literal's own type. NULL has the zero type.
func (l Literal) Type() types.Type { return l.typ }

// Value returns the Go value held by the literal (nil for NULL).
func (l Literal) Value() any { return l.value }

// Text renders the literal in the form accepted by ParseLiteral.
func (l Literal) Text() string {
	if l.null {
		return "NULL"
	}

	switch v := l.value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case decimal.Decimal:
		return v.String()
	case string:
		return v
	case uuid.UUID:
		return v.String()
	case time.Time:
		switch l.typ.Kind() {
		case types.KindDate:
			return v.Format(DateLayout)
		case types.KindTimestamp:
			return v.Format(TimestampLayout)
		default:
			return v.Format(time.RFC3339Nano)
		}
	default:
		return fmt.Sprint(v)
	}
}

func (l Literal) String() string {
	if l.null {
		return "NULL"
	}

	if l.typ.IsCharacter() || l.typ.Kind() == types.KindUUID || l.typ.IsTemporal() {
		return "'" + strings.ReplaceAll(l.Text(), "'", "''") + "'"
	}

	return l.Text()
}

// Equal compares kind and value. Decimals and instants compare numerically.
func (l Literal) Equal(other Literal) bool {
	if l.null || other.null {
		return l.null == other.null
	}

	if l.typ.Kind() != other.typ.Kind() {
		return false
	}

	switch v := l.value.(type) {
	case decimal.Decimal:
		o, ok := other.value.(decimal.Decimal)
		return ok && v.Equal(o)
	case time.Time:
		o, ok := other.value.(time.Time)
		return ok && v.Equal(o)
	default:
		return l.value == other.value
	}
}

// ParseLiteral parses text as a literal of type t.
func ParseLiteral(t types.Type, text string) (Literal, error) {
	fail := func(err error) (Literal, error) {
		if err != nil {
			return Literal{}, fmt.Errorf("%w: %q as %s: %w", ErrInvalidLiteral, text, t, err)
		}

		return Literal{}, fmt.Errorf("%w: %q as %s", ErrInvalidLiteral, text, t)
	}

	switch t.Kind() {
	case types.KindBoolean:
		v, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return BooleanLiteral(v), nil
	case types.KindByte, types.KindShort, types.KindInteger:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return fail(err)
		}

		return IntegerLiteral(int32(v)), nil
	case types.KindLong:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return fail(err)
		}

		return LongLiteral(v), nil
	case types.KindFloat, types.KindDouble:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fail(err)
		}

		return DoubleLiteral(v), nil
	case types.KindDecimal:
		v, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return DecimalLiteral(v), nil
	case types.KindString, types.KindVarChar, types.KindFixedChar, types.KindJSON:
		return StringLiteral(text), nil
	case types.KindDate:
		v, err := time.Parse(DateLayout, strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return DateLiteral(v), nil
	case types.KindTimestamp:
		v, err := parseTimestamp(strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return TimestampLiteral(v), nil
	case types.KindTimestampTZ:
		v, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return TimestampTZLiteral(v), nil
	case types.KindUUID:
		v, err := uuid.Parse(strings.TrimSpace(text))
		if err != nil {
			return fail(err)
		}

		return UUIDLiteral(v), nil
	default:
		return fail(nil)
	}
}

func parseTimestamp(text string) (time.Time, error) {
	var firstErr error

	for _, layout := range []string{TimestampLayout, "2006-01-02 15:04:05.999999999", DateLayout} {
		v, err := time.Parse(layout, text)
		if err == nil {
			return v, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return time.Time{}, firstErr
}

// AssignableTo reports, as an ErrIncompatibleDefaultValue error, why l cannot
// be the default of a column of type t. nullable is the column's nullability.
func (l Literal) AssignableTo(t types.Type, nullable bool) error {
	incompatible := func(reason string) error {
		return fmt.Errorf("%w: %s cannot be assigned to %s: %s", ErrIncompatibleDefaultValue, l, t, reason)
	}

	if l.null {
		if !nullable {
			return incompatible("column is NOT NULL")
		}

		return nil
	}

	switch v := l.value.(type) {
	case bool:
		if t.Kind() == types.KindBoolean {
			return nil
		}
	case int32:
		return assignInteger(int64(v), t, incompatible)
	case int64:
		return assignInteger(v, t, incompatible)
	case float64:
		if t.Kind() == types.KindDouble {
			return nil
		}

		if t.Kind() == types.KindFloat {
			if math.Abs(v) > math.MaxFloat32 {
				return incompatible("out of float range")
			}

			return nil
		}
	case decimal.Decimal:
		switch t.Kind() {
		case types.KindDecimal:
			return fitsDecimal(v, t, incompatible)
		case types.KindFloat, types.KindDouble:
			return nil
		}
	case string:
		return assignString(v, t, incompatible)
	case uuid.UUID:
		if t.Kind() == types.KindUUID {
			return nil
		}
	case time.Time:
		if l.typ.Kind() == t.Kind() {
			return nil
		}
	}

	return incompatible("type mismatch")
}

func assignInteger(v int64, t types.Type, incompatible func(string) error) error {
	inRange := func(lo, hi int64) error {
		if v < lo || v > hi {
			return incompatible("out of range")
		}

		return nil
	}

	switch t.Kind() {
	case types.KindByte:
		return inRange(math.MinInt8, math.MaxInt8)
	case types.KindShort:
		return inRange(math.MinInt16, math.MaxInt16)
	case types.KindInteger:
		return inRange(math.MinInt32, math.MaxInt32)
	case types.KindLong, types.KindFloat, types.KindDouble:
		return nil
	case types.KindDecimal:
		return fitsDecimal(decimal.NewFromInt(v), t, incompatible)
	default:
		return incompatible("type mismatch")
	}
}

func assignString(v string, t types.Type, incompatible func(string) error) error {
	switch t.Kind() {
	case types.KindString:
		return nil
	case types.KindVarChar, types.KindFixedChar:
		if n := utf8.RuneCountInString(v); n > t.Length() {
			return incompatible(fmt.Sprintf("%d characters exceed length %d", n, t.Length()))
		}

		return nil
	case types.KindUUID:
		if _, err := uuid.Parse(v); err != nil {
			return incompatible("not a valid UUID")
		}

		return nil
	case types.KindJSON:
		if !json.Valid([]byte(v)) {
			return incompatible("not valid JSON")
		}

		return nil
	default:
		return incompatible("type mismatch")
	}
}

func fitsDecimal(v decimal.Decimal, t types.Type, incompatible func(string) error) error {
	precision, _ := t.Precision()
	intDigits, scale := decimalShape(v)

	if scale > t.Scale() {
		return incompatible(fmt.Sprintf("scale %d exceeds %d", scale, t.Scale()))
	}

	if intDigits > precision-t.Scale() {
		return incompatible(fmt.Sprintf("%d integer digits exceed %d", intDigits, precision-t.Scale()))
	}

	return nil
}

// decimalShape returns the number of integer digits and the number of
// significant fractional digits of v. Zero has no integer digits.
func decimalShape(v decimal.Decimal) (int, int) {
	abs := v.Abs()
	text := abs.String()

	intPart, fracPart, _ := strings.Cut(text, ".")
	intPart = strings.TrimLeft(intPart, "0")

	return len(intPart), len(fracPart)
}
