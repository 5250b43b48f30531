package pull

import (
	"context"
	"database/sql"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
)

// SQLiteExtractor handles SQLite-specific schema extraction. SQLite has no
// schemas, so tables are reported with an empty schema and schema filters
// are ignored.
type SQLiteExtractor struct{}

// NewSQLiteExtractor creates a new SQLite extractor
func NewSQLiteExtractor() *SQLiteExtractor {
	return &SQLiteExtractor{}
}

func (e *SQLiteExtractor) Dialect() snapcatalog.Dialect { return snapcatalog.DialectSQLite }

// ListTables returns the user tables, skipping SQLite internals and the catalog's own table.
func (e *SQLiteExtractor) ListTables(ctx context.Context, db *sql.DB, filter Filter) ([]catalog.TableIdent, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, queryFailed(err)
	}
	defer rows.Close()

	var tables []catalog.TableIdent

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, queryFailed(err)
		}

		if strings.EqualFold(name, catalog.ColumnsTable) || !filter.IncludeTable("", name) {
			continue
		}

		tables = append(tables, catalog.TableIdent{Name: name})
	}

	if err := rows.Err(); err != nil {
		return nil, queryFailed(err)
	}

	return tables, nil
}

// ListColumns reads PRAGMA table_info. A single-column INTEGER PRIMARY KEY
// declared AUTOINCREMENT is reported as auto increment.
func (e *SQLiteExtractor) ListColumns(ctx context.Context, db *sql.DB, table catalog.TableIdent) ([]RawColumn, error) {
	autoIncrement, err := e.hasAutoIncrement(ctx, db, table.Name)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table.Name)
	if err != nil {
		return nil, queryFailed(err)
	}
	defer rows.Close()

	var (
		columns   []RawColumn
		pkColumns []int
	)

	for rows.Next() {
		var (
			col     RawColumn
			notNull int
			pk      int
		)

		if err := rows.Scan(&col.Name, &col.DataType, &notNull, &col.Default, &pk); err != nil {
			return nil, queryFailed(err)
		}

		col.Nullable = notNull == 0

		if pk > 0 {
			pkColumns = append(pkColumns, len(columns))
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, queryFailed(err)
	}

	if autoIncrement && len(pkColumns) == 1 {
		col := &columns[pkColumns[0]]
		if strings.EqualFold(strings.TrimSpace(col.DataType), "integer") {
			col.AutoIncrement = true
			col.Nullable = false
		}
	}

	return columns, nil
}

func (e *SQLiteExtractor) hasAutoIncrement(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var ddl sql.NullString

	err := db.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName).Scan(&ddl)
	if err != nil {
		return false, queryFailed(err)
	}

	return strings.Contains(strings.ToUpper(ddl.String), "AUTOINCREMENT"), nil
}
