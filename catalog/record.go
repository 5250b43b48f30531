package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// Record is the flat, storage-friendly form of a persisted column.
type Record struct {
	ID       uuid.UUID
	Table    TableIdent
	Position int

	Name          string
	DataType      string
	Comment       string
	Nullable      bool
	AutoIncrement bool

	DefaultKind string
	// DefaultType is the literal's own type; empty for NULL and for expressions.
	DefaultType string
	DefaultText string

	Creator        string
	CreatedAt      time.Time
	LastModifier   *string
	LastModifiedAt *time.Time
}

// NameKey is the case-insensitive identity of the column within its table.
func (r Record) NameKey() string {
	return nameKey(r.Name)
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

// ToRecord flattens a column that already carries audit info.
func ToRecord(id uuid.UUID, table TableIdent, position int, c rel.Column) (Record, error) {
	info, ok := c.AuditInfo().Get()
	if !ok {
		return Record{}, fmt.Errorf("%w: column %q has no audit info", ErrCorruptRecord, c.Name())
	}

	rec := Record{
		ID:             id,
		Table:          table,
		Position:       position,
		Name:           c.Name(),
		DataType:       c.DataType().String(),
		Comment:        c.Comment(),
		Nullable:       c.Nullable(),
		AutoIncrement:  c.AutoIncrement(),
		Creator:        info.Creator(),
		CreatedAt:      info.CreateTime(),
		LastModifier:   info.LastModifier().Ptr(),
		LastModifiedAt: info.LastModifiedTime().Ptr(),
	}

	def := c.DefaultValue()
	if def.IsSet() {
		rec.DefaultKind = def.Kind().String()
		rec.DefaultText = def.Text()

		if lit, ok := def.Literal(); ok && !lit.IsNull() {
			rec.DefaultType = lit.Type().String()
		}
	}

	return rec, nil
}

// Column rebuilds the validated column, including its audit info.
func (r Record) Column(opts ...rel.Option) (rel.Column, error) {
	dataType, err := types.Parse(r.DataType)
	if err != nil {
		return nil, r.corrupt(err)
	}

	def, err := r.defaultValue()
	if err != nil {
		return nil, r.corrupt(err)
	}

	c, err := rel.Of(r.Name, dataType, r.Comment, r.Nullable, r.AutoIncrement, def, opts...)
	if err != nil {
		return nil, r.corrupt(err)
	}

	b := audit.NewBuilder().WithCreator(r.Creator).WithCreateTime(r.CreatedAt)
	if r.LastModifier != nil {
		b.WithLastModifier(*r.LastModifier)
	}

	if r.LastModifiedAt != nil {
		b.WithLastModifiedTime(*r.LastModifiedAt)
	}

	info, err := b.Build()
	if err != nil {
		return nil, r.corrupt(err)
	}

	return rel.WithAuditInfo(c, info), nil
}

func (r Record) defaultValue() (rel.Default, error) {
	kind, err := rel.ParseDefaultKind(r.DefaultKind)
	if err != nil {
		return rel.DefaultValueNotSet, err
	}

	switch kind {
	case rel.DefaultLiteral:
		if r.DefaultType == "" {
			return rel.LiteralDefault(rel.NullLiteral()), nil
		}

		litType, err := types.Parse(r.DefaultType)
		if err != nil {
			return rel.DefaultValueNotSet, err
		}

		lit, err := rel.ParseLiteral(litType, r.DefaultText)
		if err != nil {
			return rel.DefaultValueNotSet, err
		}

		return rel.LiteralDefault(lit), nil
	case rel.DefaultExpression:
		return rel.ExpressionDefault(r.DefaultText), nil
	default:
		return rel.DefaultValueNotSet, nil
	}
}

func (r Record) corrupt(err error) error {
	return fmt.Errorf("%w: %s.%s: %w", ErrCorruptRecord, r.Table, r.Name, err)
}
