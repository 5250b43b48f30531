package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// ColumnsTable is the table SQLBackend keeps its records in.
const ColumnsTable = "snapcatalog_columns"

const createColumnsTable = `CREATE TABLE IF NOT EXISTS ` + ColumnsTable + ` (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	schema_name VARCHAR(128) NOT NULL,
	table_name VARCHAR(128) NOT NULL,
	table_key VARCHAR(260) NOT NULL,
	ordinal INTEGER NOT NULL,
	column_name VARCHAR(128) NOT NULL,
	name_key VARCHAR(128) NOT NULL,
	data_type VARCHAR(255) NOT NULL,
	column_comment TEXT NOT NULL,
	is_nullable BOOLEAN NOT NULL,
	is_auto_increment BOOLEAN NOT NULL,
	default_kind VARCHAR(16) NOT NULL,
	default_type VARCHAR(255) NOT NULL,
	default_text TEXT NOT NULL,
	creator VARCHAR(255) NOT NULL,
	created_at VARCHAR(64) NOT NULL,
	last_modifier VARCHAR(255),
	last_modified_at VARCHAR(64),
	UNIQUE (table_key, name_key)
)`

const selectColumns = `SELECT id, schema_name, table_name, ordinal, column_name, data_type, column_comment,
	is_nullable, is_auto_increment, default_kind, default_type, default_text,
	creator, created_at, last_modifier, last_modified_at FROM ` + ColumnsTable

// SQLBackend stores records in a relational database through database/sql.
type SQLBackend struct {
	db      *sql.DB
	dialect snapcatalog.Dialect
}

var _ Backend = (*SQLBackend)(nil)

// NewSQLBackend wraps an open database. Call Migrate before first use.
func NewSQLBackend(db *sql.DB, dialect snapcatalog.Dialect) *SQLBackend {
	return &SQLBackend{db: db, dialect: dialect}
}

// Migrate creates the records table if it does not exist.
func (s *SQLBackend) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createColumnsTable); err != nil {
		return fmt.Errorf("failed to create %s: %w", ColumnsTable, err)
	}

	return nil
}

// bind rewrites ? placeholders for dialects that number them.
func (s *SQLBackend) bind(query string) string {
	if s.dialect != snapcatalog.DialectPostgres {
		return query
	}

	var b strings.Builder

	n := 0

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.Placeholder(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func (s *SQLBackend) Insert(ctx context.Context, rec Record) error {
	query := s.bind(`INSERT INTO ` + ColumnsTable + ` (id, schema_name, table_name, table_key, ordinal, column_name, name_key,
	data_type, column_comment, is_nullable, is_auto_increment, default_kind, default_type, default_text,
	creator, created_at, last_modifier, last_modified_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		rec.ID.String(), rec.Table.Schema, rec.Table.Name, rec.Table.key(), rec.Position, rec.Name, rec.NameKey(),
		rec.DataType, rec.Comment, rec.Nullable, rec.AutoIncrement, rec.DefaultKind, rec.DefaultType, rec.DefaultText,
		rec.Creator, formatTime(rec.CreatedAt), nullString(rec.LastModifier), nullTime(rec.LastModifiedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
		}

		return fmt.Errorf("failed to insert column %s.%s: %w", rec.Table, rec.Name, err)
	}

	return nil
}

func (s *SQLBackend) Update(ctx context.Context, rec Record) error {
	query := s.bind(`UPDATE ` + ColumnsTable + ` SET schema_name = ?, table_name = ?, table_key = ?, ordinal = ?,
	column_name = ?, name_key = ?, data_type = ?, column_comment = ?, is_nullable = ?, is_auto_increment = ?,
	default_kind = ?, default_type = ?, default_text = ?, creator = ?, created_at = ?,
	last_modifier = ?, last_modified_at = ? WHERE id = ?`)

	result, err := s.db.ExecContext(ctx, query,
		rec.Table.Schema, rec.Table.Name, rec.Table.key(), rec.Position,
		rec.Name, rec.NameKey(), rec.DataType, rec.Comment, rec.Nullable, rec.AutoIncrement,
		rec.DefaultKind, rec.DefaultType, rec.DefaultText, rec.Creator, formatTime(rec.CreatedAt),
		nullString(rec.LastModifier), nullTime(rec.LastModifiedAt), rec.ID.String())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s.%s", ErrColumnAlreadyExists, rec.Table, rec.Name)
		}

		return fmt.Errorf("failed to update column %s.%s: %w", rec.Table, rec.Name, err)
	}

	return expectOneRow(result, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, rec.Table, rec.Name))
}

func (s *SQLBackend) Get(ctx context.Context, table TableIdent, name string) (Record, error) {
	row := s.db.QueryRowContext(ctx, s.bind(selectColumns+` WHERE table_key = ? AND name_key = ?`), table.key(), nameKey(name))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name)
	}

	return rec, err
}

func (s *SQLBackend) List(ctx context.Context, table TableIdent) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(selectColumns+` WHERE table_key = ? ORDER BY ordinal, name_key`), table.key())
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var result []Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, rec)
	}

	return result, rows.Err()
}

func (s *SQLBackend) Tables(ctx context.Context) ([]TableIdent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT schema_name, table_name FROM `+ColumnsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]TableIdent)

	for rows.Next() {
		var t TableIdent
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, err
		}

		seen[t.key()] = t
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sortedTables(seen), nil
}

func (s *SQLBackend) Delete(ctx context.Context, table TableIdent, name string) error {
	result, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM `+ColumnsTable+` WHERE table_key = ? AND name_key = ?`), table.key(), nameKey(name))
	if err != nil {
		return fmt.Errorf("failed to delete column %s.%s: %w", table, name, err)
	}

	return expectOneRow(result, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table, name))
}

func (s *SQLBackend) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec            Record
		id             string
		createdAt      string
		lastModifier   sql.NullString
		lastModifiedAt sql.NullString
	)

	err := row.Scan(&id, &rec.Table.Schema, &rec.Table.Name, &rec.Position, &rec.Name, &rec.DataType, &rec.Comment,
		&rec.Nullable, &rec.AutoIncrement, &rec.DefaultKind, &rec.DefaultType, &rec.DefaultText,
		&rec.Creator, &createdAt, &lastModifier, &lastModifiedAt)
	if err != nil {
		return Record{}, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return Record{}, rec.corrupt(err)
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Record{}, rec.corrupt(err)
	}

	if lastModifier.Valid {
		rec.LastModifier = &lastModifier.String
	}

	if lastModifiedAt.Valid {
		at, err := time.Parse(time.RFC3339Nano, lastModifiedAt.String)
		if err != nil {
			return Record{}, rec.corrupt(err)
		}

		rec.LastModifiedAt = &at
	}

	return rec, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return notFound
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: formatTime(*t), Valid: true}
}

// isUniqueViolation recognizes unique constraint failures of the supported drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

func (s *SQLBackend) String() string {
	return "sql(" + string(s.dialect) + ")"
}
