package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// ColumnCmd groups the column subcommands
type ColumnCmd struct {
	Create ColumnCreateCmd `cmd:"" help:"Create a column"`
	Alter  ColumnAlterCmd  `cmd:"" help:"Alter a column"`
	List   ColumnListCmd   `cmd:"" help:"List the columns of a table"`
	Audit  ColumnAuditCmd  `cmd:"" help:"Show the audit information of a column"`
	Drop   ColumnDropCmd   `cmd:"" help:"Drop a column"`
}

// ColumnCreateCmd represents the column create command
type ColumnCreateCmd struct {
	Table         string `help:"Table as schema.table or table" required:""`
	Name          string `help:"Column name" required:""`
	Type          string `help:"Column type, e.g. integer, varchar(255), decimal(10,2)" required:""`
	Comment       string `help:"Column comment"`
	Nullable      bool   `help:"Allow NULL values"`
	AutoIncrement bool   `help:"Mark the column as auto increment"`
	Default       string `help:"Literal default value (NULL for a null default)" xor:"default"`
	DefaultExpr   string `help:"Default expression such as current_timestamp()" xor:"default"`
}

// Run executes the column create command
func (cmd *ColumnCreateCmd) Run(ctx *Context) error {
	table, err := catalog.ParseTableIdent(cmd.Table)
	if err != nil {
		return err
	}

	dataType, err := types.Parse(cmd.Type)
	if err != nil {
		return err
	}

	def, err := parseDefault(dataType, cmd.Default, cmd.DefaultExpr, false)
	if err != nil {
		return err
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	col, err := rel.Of(cmd.Name, dataType, cmd.Comment, cmd.Nullable, cmd.AutoIncrement, def, a.Service.ColumnOptions...)
	if err != nil {
		return err
	}

	created, err := a.Service.CreateColumn(ctx.baseContext(), table, col)
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(ctx.out(), "✓ Created %s.%s %s\n", table, created.Name(), created.DataType())
	}

	return nil
}

// ColumnAlterCmd represents the column alter command
type ColumnAlterCmd struct {
	Table           string  `help:"Table as schema.table or table" required:""`
	Name            string  `help:"Column name" required:""`
	Comment         *string `help:"New comment"`
	Nullable        bool    `help:"Allow NULL values" xor:"nullability"`
	NotNull         bool    `help:"Disallow NULL values" xor:"nullability"`
	Type            string  `help:"New column type"`
	Rename          string  `help:"New column name"`
	AutoIncrement   bool    `help:"Mark the column as auto increment" xor:"autoinc"`
	NoAutoIncrement bool    `help:"Clear auto increment" xor:"autoinc"`
	Default         string  `help:"New literal default value (NULL for a null default)"`
	DefaultExpr     string  `help:"New default expression"`
	DropDefault     bool    `help:"Remove the default value"`
}

// changes converts the flags into catalog changes. The literal default is
// parsed against the new type when --type is given, else against current.
func (cmd *ColumnAlterCmd) changes(current types.Type) ([]catalog.Change, error) {
	var changes []catalog.Change

	target := current

	if cmd.Type != "" {
		t, err := types.Parse(cmd.Type)
		if err != nil {
			return nil, err
		}

		target = t
		changes = append(changes, catalog.UpdateType(t))
	}

	if cmd.Comment != nil {
		changes = append(changes, catalog.UpdateComment(*cmd.Comment))
	}

	switch {
	case cmd.Nullable:
		changes = append(changes, catalog.UpdateNullability(true))
	case cmd.NotNull:
		changes = append(changes, catalog.UpdateNullability(false))
	}

	switch {
	case cmd.AutoIncrement:
		changes = append(changes, catalog.UpdateAutoIncrement(true))
	case cmd.NoAutoIncrement:
		changes = append(changes, catalog.UpdateAutoIncrement(false))
	}

	if cmd.Default != "" || cmd.DefaultExpr != "" || cmd.DropDefault {
		def, err := parseDefault(target, cmd.Default, cmd.DefaultExpr, cmd.DropDefault)
		if err != nil {
			return nil, err
		}

		changes = append(changes, catalog.UpdateDefault(def))
	}

	if cmd.Rename != "" {
		changes = append(changes, catalog.RenameColumn(cmd.Rename))
	}

	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	return changes, nil
}

// Run executes the column alter command
func (cmd *ColumnAlterCmd) Run(ctx *Context) error {
	table, err := catalog.ParseTableIdent(cmd.Table)
	if err != nil {
		return err
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	current, err := a.Service.GetColumn(ctx.baseContext(), table, cmd.Name)
	if err != nil {
		return err
	}

	changes, err := cmd.changes(current.DataType())
	if err != nil {
		return err
	}

	altered, err := a.Service.AlterColumn(ctx.baseContext(), table, cmd.Name, changes...)
	if err != nil {
		return err
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(ctx.out(), "✓ Altered %s.%s\n", table, altered.Name())
	}

	return nil
}

// ColumnListCmd represents the column list command
type ColumnListCmd struct {
	Table  string `help:"Table as schema.table or table" required:""`
	Format string `help:"Output format (table, yaml, json, xml, markdown, html). Defaults to output.format" short:"f"`
}

// Run executes the column list command
func (cmd *ColumnListCmd) Run(ctx *Context) error {
	table, err := catalog.ParseTableIdent(cmd.Table)
	if err != nil {
		return err
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	format := cmd.Format
	if format == "" {
		format = a.Config.Output.Format
	}

	renderer, err := newRenderer(format, a.Location, a.Config.Output.ColorEnabled())
	if err != nil {
		return err
	}

	cols, err := a.Service.ListColumns(ctx.baseContext(), table)
	if err != nil {
		return err
	}

	return renderer.Render(ctx.out(), table, cols)
}

// ColumnAuditCmd represents the column audit command
type ColumnAuditCmd struct {
	Table string `help:"Table as schema.table or table" required:""`
	Name  string `help:"Column name" required:""`
}

// Run executes the column audit command
func (cmd *ColumnAuditCmd) Run(ctx *Context) error {
	table, err := catalog.ParseTableIdent(cmd.Table)
	if err != nil {
		return err
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	col, err := a.Service.GetColumn(ctx.baseContext(), table, cmd.Name)
	if err != nil {
		return err
	}

	row := newColumnRow(col, a.Location)
	w := ctx.out()
	label := color.New(color.FgCyan)

	color.New(color.Bold).Fprintf(w, "%s.%s\n", table, col.Name())

	for _, field := range []struct{ name, value string }{
		{"Creator", row.Creator},
		{"Create Time", row.CreateTime},
		{"Last Modifier", row.LastModifier},
		{"Last Modified Time", row.LastModifiedTime},
	} {
		label.Fprintf(w, "  %-19s", field.name+":")
		fmt.Fprintln(w, field.value)
	}

	return nil
}

// ColumnDropCmd represents the column drop command
type ColumnDropCmd struct {
	Table string `help:"Table as schema.table or table" required:""`
	Name  string `help:"Column name" required:""`
}

// Run executes the column drop command
func (cmd *ColumnDropCmd) Run(ctx *Context) error {
	table, err := catalog.ParseTableIdent(cmd.Table)
	if err != nil {
		return err
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Service.DropColumn(ctx.baseContext(), table, cmd.Name); err != nil {
		return err
	}

	if !ctx.Quiet {
		color.New(color.FgGreen).Fprintf(ctx.out(), "✓ Dropped %s.%s\n", table, cmd.Name)
	}

	return nil
}

// parseDefault turns the default flags into a rel.Default for a column of type t.
func parseDefault(t types.Type, literal, expr string, drop bool) (rel.Default, error) {
	set := 0

	for _, present := range []bool{literal != "", expr != "", drop} {
		if present {
			set++
		}
	}

	if set > 1 {
		return rel.Default{}, ErrConflictingDefaults
	}

	switch {
	case expr != "":
		return rel.ExpressionDefault(expr), nil
	case literal == "":
		return rel.DefaultValueNotSet, nil
	case strings.EqualFold(literal, "null"):
		return rel.LiteralDefault(rel.NullLiteral()), nil
	}

	lit, err := rel.ParseLiteral(t, literal)
	if err != nil {
		return rel.Default{}, err
	}

	return rel.LiteralDefault(lit), nil
}
