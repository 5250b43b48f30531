package pull

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
)

// postgresSystemSchemas are never pulled
var postgresSystemSchemas = []string{"information_schema", "pg_catalog", "pg_toast"}

// PostgreSQLExtractor handles PostgreSQL-specific schema extraction
type PostgreSQLExtractor struct{}

// NewPostgreSQLExtractor creates a new PostgreSQL extractor
func NewPostgreSQLExtractor() *PostgreSQLExtractor {
	return &PostgreSQLExtractor{}
}

func (e *PostgreSQLExtractor) Dialect() snapcatalog.Dialect { return snapcatalog.DialectPostgres }

const postgresTablesQuery = `
	SELECT table_schema, table_name
	FROM information_schema.tables
	WHERE table_type = 'BASE TABLE'
	ORDER BY table_schema, table_name`

// ListTables returns base tables outside the system schemas.
func (e *PostgreSQLExtractor) ListTables(ctx context.Context, db *sql.DB, filter Filter) ([]catalog.TableIdent, error) {
	return listInformationSchemaTables(ctx, db, postgresTablesQuery, filter, func(schema string) bool {
		return slices.Contains(postgresSystemSchemas, schema) || strings.HasPrefix(schema, "pg_temp") || strings.HasPrefix(schema, "pg_toast_temp")
	})
}

const postgresColumnsQuery = `
	SELECT
		col.column_name,
		col.data_type,
		col.udt_name,
		col.character_maximum_length,
		col.numeric_precision,
		col.numeric_scale,
		col.is_nullable,
		col.column_default,
		col.is_identity,
		col_description(format('%I.%I', col.table_schema, col.table_name)::regclass, col.ordinal_position) AS comment
	FROM information_schema.columns col
	WHERE col.table_schema = $1
	  AND col.table_name = $2
	ORDER BY col.ordinal_position`

// ListColumns reads information_schema.columns. Identity columns and
// nextval() defaults are reported as auto increment.
func (e *PostgreSQLExtractor) ListColumns(ctx context.Context, db *sql.DB, table catalog.TableIdent) ([]RawColumn, error) {
	rows, err := db.QueryContext(ctx, postgresColumnsQuery, table.Schema, table.Name)
	if err != nil {
		return nil, queryFailed(err)
	}
	defer rows.Close()

	var columns []RawColumn

	for rows.Next() {
		var (
			name, dataType, udtName, isNullable, isIdentity string
			charLength, precision, scale                    sql.NullInt64
			columnDefault, comment                          sql.NullString
		)

		if err := rows.Scan(&name, &dataType, &udtName, &charLength, &precision, &scale, &isNullable, &columnDefault, &isIdentity, &comment); err != nil {
			return nil, queryFailed(err)
		}

		col := RawColumn{
			Name:     name,
			DataType: PostgresTypeText(dataType, udtName, charLength, precision, scale),
			Nullable: isNullable == "YES",
			Default:  columnDefault,
			Comment:  comment.String,
		}

		if isIdentity == "YES" || strings.HasPrefix(strings.TrimSpace(columnDefault.String), "nextval(") {
			col.AutoIncrement = true
			col.Default = sql.NullString{}
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, queryFailed(err)
	}

	return columns, nil
}

// PostgresTypeText rebuilds a parameterized type name from the separate
// information_schema columns, e.g. "character varying" + 255 becomes
// "character varying(255)" and ARRAY + "_int4" becomes "_int4".
func PostgresTypeText(dataType, udtName string, charLength, precision, scale sql.NullInt64) string {
	switch strings.ToLower(dataType) {
	case "array":
		return udtName
	case "user-defined":
		return udtName
	case "character varying", "character", "bit", "bit varying":
		if charLength.Valid {
			return fmt.Sprintf("%s(%d)", dataType, charLength.Int64)
		}
	case "numeric":
		if precision.Valid {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision.Int64, scale.Int64)
		}
	}

	return dataType
}

// listInformationSchemaTables runs a (schema, table) query and applies the
// catalog, system schema and user filters.
func listInformationSchemaTables(ctx context.Context, db *sql.DB, query string, filter Filter, system func(string) bool) ([]catalog.TableIdent, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryFailed(err)
	}
	defer rows.Close()

	var tables []catalog.TableIdent

	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, queryFailed(err)
		}

		if system(schema) || strings.EqualFold(name, catalog.ColumnsTable) {
			continue
		}

		if !filter.IncludeSchema(schema) || !filter.IncludeTable(schema, name) {
			continue
		}

		tables = append(tables, catalog.TableIdent{Schema: schema, Name: name})
	}

	if err := rows.Err(); err != nil {
		return nil, queryFailed(err)
	}

	return tables, nil
}
