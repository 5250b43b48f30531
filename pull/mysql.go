package pull

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
)

// mysqlSystemSchemas are never pulled
var mysqlSystemSchemas = []string{"information_schema", "mysql", "performance_schema", "sys"}

// MySQLExtractor handles MySQL and MariaDB schema extraction. The schema of a
// pulled table is the MySQL database name.
type MySQLExtractor struct{}

// NewMySQLExtractor creates a new MySQL extractor
func NewMySQLExtractor() *MySQLExtractor {
	return &MySQLExtractor{}
}

func (e *MySQLExtractor) Dialect() snapcatalog.Dialect { return snapcatalog.DialectMySQL }

const mysqlTablesQuery = `
	SELECT TABLE_SCHEMA, TABLE_NAME
	FROM information_schema.TABLES
	WHERE TABLE_TYPE = 'BASE TABLE'
	ORDER BY TABLE_SCHEMA, TABLE_NAME`

// ListTables returns base tables outside the system schemas.
func (e *MySQLExtractor) ListTables(ctx context.Context, db *sql.DB, filter Filter) ([]catalog.TableIdent, error) {
	return listInformationSchemaTables(ctx, db, mysqlTablesQuery, filter, func(schema string) bool {
		return slices.Contains(mysqlSystemSchemas, strings.ToLower(schema))
	})
}

const mysqlColumnsQuery = `
	SELECT
		COLUMN_NAME,
		COLUMN_TYPE,
		IS_NULLABLE,
		COLUMN_DEFAULT,
		EXTRA,
		COLUMN_COMMENT
	FROM information_schema.COLUMNS
	WHERE TABLE_SCHEMA = ?
	  AND TABLE_NAME = ?
	ORDER BY ORDINAL_POSITION`

// ListColumns reads information_schema.COLUMNS. COLUMN_TYPE keeps lengths and
// the unsigned modifier, so it is passed to the mapper as is.
func (e *MySQLExtractor) ListColumns(ctx context.Context, db *sql.DB, table catalog.TableIdent) ([]RawColumn, error) {
	rows, err := db.QueryContext(ctx, mysqlColumnsQuery, table.Schema, table.Name)
	if err != nil {
		return nil, queryFailed(err)
	}
	defer rows.Close()

	var columns []RawColumn

	for rows.Next() {
		var (
			col            RawColumn
			isNullable     string
			extra, comment sql.NullString
		)

		if err := rows.Scan(&col.Name, &col.DataType, &isNullable, &col.Default, &extra, &comment); err != nil {
			return nil, queryFailed(err)
		}

		col.Nullable = isNullable == "YES"
		col.Comment = comment.String
		col.Default = MySQLDefault(col.Default, extra.String)
		col.AutoIncrement = strings.Contains(strings.ToLower(extra.String), "auto_increment")

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, queryFailed(err)
	}

	return columns, nil
}

// MySQLDefault normalizes COLUMN_DEFAULT. MySQL reports string literals
// without quotes and flags expression defaults with DEFAULT_GENERATED, so
// plain values are quoted to keep them literal.
func MySQLDefault(columnDefault sql.NullString, extra string) sql.NullString {
	if !columnDefault.Valid {
		return columnDefault
	}

	if strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") {
		return columnDefault
	}

	value := columnDefault.String
	if strings.EqualFold(value, "NULL") || strings.HasPrefix(value, "'") {
		return columnDefault
	}

	// MariaDB reports current_timestamp() without DEFAULT_GENERATED
	if _, ok := defaultFunction(value); ok {
		return columnDefault
	}

	return sql.NullString{String: "'" + strings.ReplaceAll(value, "'", "''") + "'", Valid: true}
}
