package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/rel/reltest"
	"github.com/shibukawa/snapcatalog/types"
)

func TestRecordRoundTrip(t *testing.T) {
	created, err := audit.NewBuilder().WithCreator("alice").WithCreateTime(testTime).Build()
	assert.NoError(t, err)

	touched, err := created.Touch("bob", testTime.Add(time.Minute))
	assert.NoError(t, err)

	testCases := []struct {
		name   string
		column rel.Column
		info   audit.Info
	}{
		{"no default", reltest.Must(rel.Of("id", types.Long(), "primary key", false, true, rel.DefaultValueNotSet)), created},
		{"null default", reltest.Must(rel.Of("note", types.String(), "", true, false, rel.LiteralDefault(rel.NullLiteral()))), touched},
		{"decimal default", reltest.Must(rel.Of("price", types.Must(types.Decimal(8, 2)), "", false, false, rel.LiteralDefault(rel.DecimalLiteral(decimal.RequireFromString("9.90"))))), touched},
		{"widened default", reltest.Must(rel.Of("qty", types.Long(), "", false, false, rel.LiteralDefault(rel.IntegerLiteral(1)))), created},
		{"expression default", reltest.Must(rel.Of("created_at", types.TimestampTZ(), "", false, false, rel.ExpressionDefault("current_timestamp()"))), created},
		{"uuid default from string", reltest.Must(rel.Of("token", types.UUID(), "", false, false, rel.LiteralDefault(rel.StringLiteral("6f1c2b9e-3c1a-4d2f-9a0b-1c2d3e4f5a6b")))), created},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stamped := rel.WithAuditInfo(tc.column, tc.info)

			rec, err := ToRecord(uuid.New(), usersTable, 3, stamped)
			assert.NoError(t, err)
			assert.Equal(t, 3, rec.Position)

			back, err := rec.Column()
			assert.NoError(t, err)
			assert.True(t, rel.Equal(stamped, back), "round trip changed %s", tc.name)
		})
	}
}

func TestToRecordRequiresAuditInfo(t *testing.T) {
	_, err := ToRecord(uuid.New(), usersTable, 1, reltest.Stub("qty"))
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestCorruptRecords(t *testing.T) {
	base := testRecord(usersTable, 1, "email")

	testCases := []struct {
		name   string
		mutate func(*Record)
	}{
		{"unknown type", func(r *Record) { r.DataType = "geometry" }},
		{"bad default kind", func(r *Record) { r.DefaultKind = "sometimes" }},
		{"bad literal", func(r *Record) { r.DataType, r.DefaultType, r.DefaultText = "integer", "integer", "many" }},
		{"invalid name", func(r *Record) { r.Name = "has space" }},
		{"missing creator", func(r *Record) { r.Creator = "" }},
		{"half modified", func(r *Record) { r.LastModifiedAt = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := base
			tc.mutate(&rec)

			_, err := rec.Column()
			assert.True(t, errors.Is(err, ErrCorruptRecord), "got %v", err)
		})
	}
}
