package rel

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snapcatalog/types"
)

func TestLiteralText(t *testing.T) {
	id := uuid.MustParse("0b9a3b5c-1d2e-4f60-8a7b-9c0d1e2f3a4b")
	at := time.Date(2024, 7, 9, 13, 45, 30, 500, time.FixedZone("JST", 9*3600))

	testCases := []struct {
		name    string
		literal Literal
		text    string
	}{
		{"null", NullLiteral(), "NULL"},
		{"boolean", BooleanLiteral(false), "false"},
		{"integer", IntegerLiteral(-42), "-42"},
		{"long", LongLiteral(1 << 40), "1099511627776"},
		{"double", DoubleLiteral(0.25), "0.25"},
		{"decimal", DecimalLiteral(decimal.RequireFromString("12.340")), "12.34"},
		{"string", StringLiteral("hello"), "hello"},
		{"date", DateLiteral(at), "2024-07-09"},
		{"timestamp keeps wall clock", TimestampLiteral(at), "2024-07-09T13:45:30.0000005"},
		{"timestamp_tz", TimestampTZLiteral(at), "2024-07-09T13:45:30.0000005+09:00"},
		{"uuid", UUIDLiteral(id), "0b9a3b5c-1d2e-4f60-8a7b-9c0d1e2f3a4b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.text, tc.literal.Text())

			if tc.literal.IsNull() {
				return
			}

			parsed, err := ParseLiteral(tc.literal.Type(), tc.text)
			assert.NoError(t, err)
			assert.True(t, parsed.Equal(tc.literal), "parsed %s, want %s", parsed, tc.literal)
		})
	}
}

func TestParseLiteral(t *testing.T) {
	t.Run("UsesColumnType", func(t *testing.T) {
		lit, err := ParseLiteral(types.Short(), " 12 ")
		assert.NoError(t, err)
		assert.Equal(t, types.Integer(), lit.Type())

		lit, err = ParseLiteral(types.Must(types.VarChar(8)), " padded ")
		assert.NoError(t, err)
		assert.Equal(t, " padded ", lit.Text())

		lit, err = ParseLiteral(types.Timestamp(), "2024-01-02 03:04:05")
		assert.NoError(t, err)
		assert.Equal(t, "2024-01-02T03:04:05", lit.Text())
	})

	t.Run("Errors", func(t *testing.T) {
		testCases := []struct {
			typ  types.Type
			text string
		}{
			{types.Boolean(), "maybe"},
			{types.Integer(), "3000000000"},
			{types.Long(), "1.5"},
			{types.Double(), "abc"},
			{types.Must(types.Decimal(5, 2)), "1..2"},
			{types.Date(), "2024-13-01"},
			{types.TimestampTZ(), "2024-01-01T00:00:00"},
			{types.UUID(), "not-a-uuid"},
			{types.Binary(), "00ff"},
		}

		for _, tc := range testCases {
			_, err := ParseLiteral(tc.typ, tc.text)
			assert.True(t, errors.Is(err, ErrInvalidLiteral), "%s %q: %v", tc.typ, tc.text, err)
		}
	})
}

func TestDecimalLiteral(t *testing.T) {
	testCases := []struct {
		value    string
		expected string
	}{
		{"12.34", "decimal(4,2)"},
		{"0.005", "decimal(3,3)"},
		{"-1000", "decimal(4,0)"},
		{"0", "decimal(1,0)"},
	}

	for _, tc := range testCases {
		lit := DecimalLiteral(decimal.RequireFromString(tc.value))
		assert.Equal(t, tc.expected, lit.Type().String(), tc.value)
	}

	t.Run("Assignability", func(t *testing.T) {
		target := types.Must(types.Decimal(6, 2))

		assert.NoError(t, DecimalLiteral(decimal.RequireFromString("9999.99")).AssignableTo(target, false))
		assert.True(t, errors.Is(DecimalLiteral(decimal.RequireFromString("10000")).AssignableTo(target, false), ErrIncompatibleDefaultValue))
		assert.True(t, errors.Is(DecimalLiteral(decimal.RequireFromString("1.001")).AssignableTo(target, false), ErrIncompatibleDefaultValue))
		assert.NoError(t, DecimalLiteral(decimal.RequireFromString("1.5")).AssignableTo(types.Double(), false))
	})
}

func TestLiteralEqual(t *testing.T) {
	assert.True(t, NullLiteral().Equal(NullLiteral()))
	assert.False(t, NullLiteral().Equal(StringLiteral("NULL")))
	assert.False(t, IntegerLiteral(1).Equal(LongLiteral(1)))
	assert.True(t, DecimalLiteral(decimal.RequireFromString("1.50")).Equal(DecimalLiteral(decimal.RequireFromString("1.5"))))

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, TimestampTZLiteral(at).Equal(TimestampTZLiteral(at.In(time.FixedZone("X", 3600)))))
	assert.False(t, TimestampTZLiteral(at).Equal(TimestampLiteral(at)))
}

func TestDefault(t *testing.T) {
	assert.False(t, DefaultValueNotSet.IsSet())
	assert.Equal(t, DefaultNotSet, DefaultValueNotSet.Kind())
	assert.Equal(t, "", DefaultValueNotSet.Text())

	lit := LiteralDefault(NullLiteral())
	assert.True(t, lit.IsSet())
	assert.False(t, lit.Equal(DefaultValueNotSet))
	assert.Equal(t, "NULL", lit.Text())

	expr := ExpressionDefault("uuid()")
	assert.Equal(t, DefaultExpression, expr.Kind())
	assert.True(t, expr.Equal(ExpressionDefault("uuid()")))
	assert.False(t, expr.Equal(ExpressionDefault("current_user()")))

	for _, kind := range []DefaultKind{DefaultNotSet, DefaultLiteral, DefaultExpression} {
		parsed, err := ParseDefaultKind(kind.String())
		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseDefaultKind("sometimes")
	assert.Error(t, err)
}
