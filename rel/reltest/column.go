// Package reltest provides a plain-struct rel.Column for tests.
package reltest

import (
	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/opt"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// Column implements rel.Column with exported, unvalidated fields.
type Column struct {
	ColumnName      string
	Type            types.Type
	CommentText     string
	IsNullable      bool
	IsAutoIncrement bool
	Default         rel.Default
	Audit           opt.Value[audit.Info]
}

var _ rel.Column = (*Column)(nil)

func (c *Column) Name() string                     { return c.ColumnName }
func (c *Column) DataType() types.Type             { return c.Type }
func (c *Column) Comment() string                  { return c.CommentText }
func (c *Column) Nullable() bool                   { return c.IsNullable }
func (c *Column) AutoIncrement() bool              { return c.IsAutoIncrement }
func (c *Column) DefaultValue() rel.Default        { return c.Default }
func (c *Column) AuditInfo() opt.Value[audit.Info] { return c.Audit }

// Stub returns a nullable integer column named name with no default.
func Stub(name string) *Column {
	return &Column{
		ColumnName: name,
		Type:       types.Integer(),
		IsNullable: true,
		Default:    rel.DefaultValueNotSet,
	}
}

// Must panics when err is non-nil and otherwise returns c.
func Must(c rel.Column, err error) rel.Column {
	if err != nil {
		panic(err)
	}

	return c
}
