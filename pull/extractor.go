package pull

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// RawColumn is a column as the database describes it, before type mapping.
// and default conversion.
type RawColumn struct {
	Name          string
	DataType      string
	Nullable      bool
	Default       sql.NullString
	Comment       string
	AutoIncrement bool
}

// TableColumns is one table's columns in ordinal order.
type TableColumns struct {
	Table   catalog.TableIdent
	Columns []rel.Column
}

// Extractor reads table and column metadata from one database dialect.
type Extractor interface {
	Dialect() snapcatalog.Dialect
	ListTables(ctx context.Context, db *sql.DB, filter Filter) ([]catalog.TableIdent, error)
	ListColumns(ctx context.Context, db *sql.DB, table catalog.TableIdent) ([]RawColumn, error)
}

// NewExtractor creates a new extractor for the specified dialect
func NewExtractor(dialect snapcatalog.Dialect) (Extractor, error) {
	switch dialect {
	case snapcatalog.DialectPostgres:
		return NewPostgreSQLExtractor(), nil
	case snapcatalog.DialectMySQL, snapcatalog.DialectMariaDB:
		return NewMySQLExtractor(), nil
	case snapcatalog.DialectSQLite:
		return NewSQLiteExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, dialect)
	}
}

// Converter turns RawColumns into validated rel.Columns.
type Converter struct {
	Mapper        types.Mapper
	Logger        *slog.Logger
	ColumnOptions []rel.Option
}

// NewConverter creates a converter for dialect. A nil logger discards warnings.
func NewConverter(dialect snapcatalog.Dialect, logger *slog.Logger, opts ...rel.Option) (*Converter, error) {
	mapper, err := types.NewMapper(dialect)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Converter{Mapper: mapper, Logger: logger, ColumnOptions: opts}, nil
}

// Convert maps raw's type, converts its default and validates the result.
// A default that cannot be represented is dropped with a warning; the column
// itself is still returned.
func (c *Converter) Convert(ctx context.Context, table catalog.TableIdent, raw RawColumn) (rel.Column, error) {
	dataType := c.Mapper.MapType(raw.DataType)

	def := rel.DefaultValueNotSet

	if raw.Default.Valid && !raw.AutoIncrement {
		converted, err := ConvertDefault(raw.Default.String, dataType, raw.Nullable)
		if err != nil {
			c.warnDroppedDefault(ctx, table, raw, err)
		} else {
			def = converted
		}
	}

	autoIncrement := raw.AutoIncrement && dataType.IsIntegral()

	col, err := rel.Of(raw.Name, dataType, raw.Comment, raw.Nullable, autoIncrement, def, c.ColumnOptions...)
	if err != nil && def.IsSet() && errors.Is(err, rel.ErrIncompatibleDefaultValue) {
		c.warnDroppedDefault(ctx, table, raw, err)
		col, err = rel.Of(raw.Name, dataType, raw.Comment, raw.Nullable, autoIncrement, rel.DefaultValueNotSet, c.ColumnOptions...)
	}

	if err != nil {
		return nil, fmt.Errorf("column %s.%s: %w", table, raw.Name, err)
	}

	return col, nil
}

func (c *Converter) warnDroppedDefault(ctx context.Context, table catalog.TableIdent, raw RawColumn, err error) {
	c.Logger.WarnContext(ctx, "dropping unsupported default",
		slog.String("table", table.String()),
		slog.String("column", raw.Name),
		slog.String("default", raw.Default.String),
		slog.Any("error", err))
}

// Extract lists the filtered tables of db and converts their columns.
// Columns that fail validation are skipped with a warning.
func Extract(ctx context.Context, db *sql.DB, extractor Extractor, filter Filter, converter *Converter) ([]TableColumns, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	tables, err := extractor.ListTables(ctx, db, filter)
	if err != nil {
		return nil, err
	}

	result := make([]TableColumns, 0, len(tables))

	for _, table := range tables {
		raws, err := extractor.ListColumns(ctx, db, table)
		if err != nil {
			return nil, err
		}

		tc := TableColumns{Table: table}

		for _, raw := range raws {
			col, err := converter.Convert(ctx, table, raw)
			if err != nil {
				converter.Logger.WarnContext(ctx, "skipping column", slog.String("table", table.String()), slog.String("column", raw.Name), slog.Any("error", err))
				continue
			}

			tc.Columns = append(tc.Columns, col)
		}

		result = append(result, tc)
	}

	return result, nil
}

func queryFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrQueryExecutionFailed, err)
}
