package pull

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

func TestConvertDefault(t *testing.T) {
	varchar20 := types.Must(types.VarChar(20))
	money := types.Must(types.Decimal(10, 2))

	tests := []struct {
		name string
		raw  string
		typ  types.Type
		want rel.Default
	}{
		{"Empty", "", types.String(), rel.DefaultValueNotSet},
		{"Null", "NULL", types.String(), rel.DefaultValueNotSet},
		{"CastNull", "NULL::character varying", varchar20, rel.DefaultValueNotSet},
		{"CastString", "'active'::character varying", varchar20, rel.LiteralDefault(rel.StringLiteral("active"))},
		{"EscapedQuote", "'It''s'", types.String(), rel.LiteralDefault(rel.StringLiteral("It's"))},
		{"Integer", "0", types.Integer(), rel.LiteralDefault(rel.IntegerLiteral(0))},
		{"Parenthesized", "((42))", types.Long(), rel.LiteralDefault(rel.LongLiteral(42))},
		{"QuotedInteger", "'7'", types.Integer(), rel.LiteralDefault(rel.IntegerLiteral(7))},
		{"Boolean", "true", types.Boolean(), rel.LiteralDefault(rel.BooleanLiteral(true))},
		{"Decimal", "'9.99'", money, rel.LiteralDefault(rel.DecimalLiteral(decimal.RequireFromString("9.99")))},
		{"Date", "'2024-01-15'::date", types.Date(), rel.LiteralDefault(rel.DateLiteral(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))},
		{"Now", "now()", types.TimestampTZ(), rel.ExpressionDefault("current_timestamp()")},
		{"CurrentTimestamp", "CURRENT_TIMESTAMP", types.Timestamp(), rel.ExpressionDefault("current_timestamp()")},
		{"CurrentTimestampPrecision", "CURRENT_TIMESTAMP(6)", types.Timestamp(), rel.ExpressionDefault("current_timestamp()")},
		{"SQLiteNow", "datetime('now')", types.Timestamp(), rel.ExpressionDefault("current_timestamp()")},
		{"CurrentDate", "CURRENT_DATE", types.Date(), rel.ExpressionDefault("current_date()")},
		{"RandomUUID", "gen_random_uuid()", types.UUID(), rel.ExpressionDefault("uuid()")},
		{"CELExpression", "1 + 2", types.Integer(), rel.ExpressionDefault("1 + 2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertDefault(tt.raw, tt.typ, true)
			assert.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestConvertDefaultUnsupported(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		typ  types.Type
	}{
		{"Sequence", "nextval('users_id_seq'::regclass)", types.Long()},
		{"WrongLiteralType", "'abc'", types.Integer()},
		{"UnknownFunction", "lower('X')", types.String()},
		{"TooLong", "'abcdef'", types.Must(types.VarChar(3))},
		{"TimestampForDate", "now()", types.Date()},
		{"BareWordForString", "CURRENT_TIMESTAMP", types.Must(types.VarChar(20))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertDefault(tt.raw, tt.typ, true)
			assert.IsError(t, err, ErrUnsupportedDefault)
		})
	}
}
