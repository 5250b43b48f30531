// Package rel defines catalog columns: a name, a data type and the metadata
// that travels with it (comment, nullability, auto increment, default value
// and audit information).
package rel

import (
	"errors"
	"fmt"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/opt"
	"github.com/shibukawa/snapcatalog/types"
)

var (
	ErrInvalidColumnName        = snapcatalog.ErrInvalidColumnName
	ErrIncompatibleDefaultValue = snapcatalog.ErrIncompatibleDefaultValue
	ErrInvalidAutoIncrement     = snapcatalog.ErrInvalidAutoIncrement
	ErrInvalidLiteral           = snapcatalog.ErrInvalidLiteral
	ErrInvalidDataType          = errors.New("invalid column data type")
)

// Column is the read interface of a catalog column.
type Column interface {
	Name() string
	DataType() types.Type
	Comment() string
	Nullable() bool
	AutoIncrement() bool
	DefaultValue() Default
	// AuditInfo is unset until the column has been persisted.
	AuditInfo() opt.Value[audit.Info]
}

type column struct {
	name          string
	dataType      types.Type
	comment       string
	nullable      bool
	autoIncrement bool
	defaultValue  Default
	auditInfo     opt.Value[audit.Info]
}

func (c *column) Name() string                     { return c.name }
func (c *column) DataType() types.Type             { return c.dataType }
func (c *column) Comment() string                  { return c.comment }
func (c *column) Nullable() bool                   { return c.nullable }
func (c *column) AutoIncrement() bool              { return c.autoIncrement }
func (c *column) DefaultValue() Default            { return c.defaultValue }
func (c *column) AuditInfo() opt.Value[audit.Info] { return c.auditInfo }

func (c *column) String() string {
	var b strings.Builder

	b.WriteString(c.name)
	b.WriteByte(' ')
	b.WriteString(c.dataType.String())

	if !c.nullable {
		b.WriteString(" NOT NULL")
	}

	if c.autoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}

	if c.defaultValue.IsSet() {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.defaultValue.String())
	}

	if c.comment != "" {
		fmt.Fprintf(&b, " COMMENT '%s'", strings.ReplaceAll(c.comment, "'", "''"))
	}

	return b.String()
}

type options struct {
	nameValidator NameValidator
}

// Option customizes Of.
type Option func(*options)

// WithNameValidator replaces DefaultIdentifierRules.
func WithNameValidator(v NameValidator) Option {
	return func(o *options) {
		if v != nil {
			o.nameValidator = v
		}
	}
}

// Of validates its arguments and returns an immutable Column without audit info.
func Of(name string, dataType types.Type, comment string, nullable, autoIncrement bool, defaultValue Default, opts ...Option) (Column, error) {
	o := options{nameValidator: DefaultIdentifierRules}
	for _, apply := range opts {
		apply(&o)
	}

	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidColumnName)
	}

	if err := o.nameValidator.ValidateName(name); err != nil {
		if !errors.Is(err, ErrInvalidColumnName) {
			err = fmt.Errorf("%w: %w", ErrInvalidColumnName, err)
		}

		return nil, err
	}

	if !dataType.IsValid() {
		return nil, fmt.Errorf("%w: column %q has no data type", ErrInvalidDataType, name)
	}

	if autoIncrement {
		if !dataType.IsIntegral() {
			return nil, fmt.Errorf("%w: column %q has type %s", ErrInvalidAutoIncrement, name, dataType)
		}

		if defaultValue.IsSet() {
			return nil, fmt.Errorf("%w: auto increment column %q cannot also have default %s", ErrIncompatibleDefaultValue, name, defaultValue)
		}
	}

	switch defaultValue.Kind() {
	case DefaultLiteral:
		lit, _ := defaultValue.Literal()
		if err := lit.AssignableTo(dataType, nullable); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
	case DefaultExpression:
		expr, _ := defaultValue.Expression()
		if err := CheckExpression(expr, dataType); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
	}

	return &column{
		name:          name,
		dataType:      dataType,
		comment:       comment,
		nullable:      nullable,
		autoIncrement: autoIncrement,
		defaultValue:  defaultValue,
		auditInfo:     opt.None[audit.Info](),
	}, nil
}

// Copy re-validates any Column implementation into the immutable form,
// keeping its audit info.
func Copy(c Column, opts ...Option) (Column, error) {
	copied, err := Of(c.Name(), c.DataType(), c.Comment(), c.Nullable(), c.AutoIncrement(), c.DefaultValue(), opts...)
	if err != nil {
		return nil, err
	}

	copied.(*column).auditInfo = c.AuditInfo()

	return copied, nil
}

// WithAuditInfo returns a copy of c carrying info. c itself is unchanged.
func WithAuditInfo(c Column, info audit.Info) Column {
	return &column{
		name:          c.Name(),
		dataType:      c.DataType(),
		comment:       c.Comment(),
		nullable:      c.Nullable(),
		autoIncrement: c.AutoIncrement(),
		defaultValue:  c.DefaultValue(),
		auditInfo:     opt.Some(info),
	}
}

// Equal compares every attribute including audit info.
func Equal(a, b Column) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Name() != b.Name() ||
		a.DataType() != b.DataType() ||
		a.Comment() != b.Comment() ||
		a.Nullable() != b.Nullable() ||
		a.AutoIncrement() != b.AutoIncrement() ||
		!a.DefaultValue().Equal(b.DefaultValue()) {
		return false
	}

	ai, aok := a.AuditInfo().Get()
	bi, bok := b.AuditInfo().Get()

	if aok != bok {
		return false
	}

	return !aok || ai.Equal(bi)
}
