package schemaimport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tblsschema "github.com/k1LoW/tbls/schema"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/pull"
)

// Importer loads a tbls schema.json and converts its tables into catalog columns.
type Importer struct {
	cfg          *Config
	schema       *tblsschema.Schema
	schemaLoaded bool
}

// NewImporter constructs an Importer from a Config.
func NewImporter(cfg Config) *Importer {
	copyCfg := cfg
	return &Importer{cfg: &copyCfg}
}

// Config returns the importer's configuration.
func (i *Importer) Config() *Config {
	return i.cfg
}

// LoadSchemaJSON reads and validates schema.json.
func (i *Importer) LoadSchemaJSON(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := strings.TrimSpace(i.cfg.SchemaJSONPath)
	if path == "" {
		return fmt.Errorf("%w: no path configured", ErrSchemaJSONNotFound)
	}

	if !filepath.IsAbs(path) {
		base := i.cfg.WorkingDir
		if base == "" {
			base = "."
		}

		path = filepath.Join(base, path)
	}

	file, err := os.Open(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSchemaJSONNotFound, path)
	} else if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	schema, err := decodeSchemaJSON(file)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchemaJSON, path, err)
	}

	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	i.cfg.logger().InfoContext(ctx, "loaded schema JSON", slog.String("driver", schema.Driver.Name), slog.Int("tables", len(schema.Tables)))

	i.schema = schema
	i.schemaLoaded = true

	return nil
}

// Dialect reports the dialect of the loaded schema. The tbls dsn wins over
// the schema.json driver name, but both must use the same database/sql driver.
func (i *Importer) Dialect() (snapcatalog.Dialect, error) {
	if !i.hasLoadedSchema() {
		return "", ErrSchemaNotLoaded
	}

	driver, err := snapcatalog.ParseDialect(i.schema.Driver.Name)
	if err != nil {
		return "", err
	}

	if i.cfg.Dialect == "" {
		return driver, nil
	}

	if i.cfg.Dialect.DriverName() != driver.DriverName() {
		return "", fmt.Errorf("%w: dsn is %s, schema.json is %s", ErrDialectMismatch, i.cfg.Dialect, driver)
	}

	return i.cfg.Dialect, nil
}

// Convert transforms the loaded base tables into catalog columns. Views are
// skipped, tables are filtered and column types go through the dialect's
// mapper exactly like a live pull.
func (i *Importer) Convert(ctx context.Context) ([]pull.TableColumns, error) {
	dialect, err := i.Dialect()
	if err != nil {
		return nil, err
	}

	converter, err := pull.NewConverter(dialect, i.cfg.logger(), i.cfg.ColumnOptions...)
	if err != nil {
		return nil, err
	}

	var results []pull.TableColumns

	for _, tbl := range i.schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if tbl == nil || strings.Contains(strings.ToUpper(tbl.Type), "VIEW") {
			continue
		}

		schemaName, tableName := splitSchemaAndName(tbl.Name, i.schema.Driver, i.cfg.DefaultSchema)
		if dialect == snapcatalog.DialectSQLite {
			schemaName = ""
		}

		if schemaName != "" && !i.cfg.Filter.IncludeSchema(schemaName) {
			continue
		}

		if !i.cfg.Filter.IncludeTable(schemaName, tableName) {
			continue
		}

		table := catalog.TableIdent{Schema: schemaName, Name: tableName}
		tc := pull.TableColumns{Table: table}

		for _, col := range tbl.Columns {
			if col == nil {
				continue
			}

			c, err := converter.Convert(ctx, table, rawColumn(tbl, col, dialect))
			if err != nil {
				i.cfg.logger().WarnContext(ctx, "skipping column", slog.String("table", table.String()), slog.String("column", col.Name), slog.Any("error", err))
				continue
			}

			tc.Columns = append(tc.Columns, c)
		}

		results = append(results, tc)
	}

	i.cfg.logger().InfoContext(ctx, "converted schema JSON", slog.Int("tables", len(results)))

	return results, nil
}

func (i *Importer) hasLoadedSchema() bool {
	return i.schemaLoaded && i.schema != nil
}

func decodeSchemaJSON(r io.Reader) (*tblsschema.Schema, error) {
	dec := json.NewDecoder(r)

	var schema tblsschema.Schema
	if err := dec.Decode(&schema); err != nil {
		return nil, err
	}

	return &schema, nil
}

func validateSchema(s *tblsschema.Schema) error {
	if s.Driver == nil || strings.TrimSpace(s.Driver.Name) == "" {
		return fmt.Errorf("%w: driver name missing", ErrInvalidSchemaJSON)
	}

	if len(s.Tables) == 0 {
		return fmt.Errorf("%w: no tables", ErrInvalidSchemaJSON)
	}

	return nil
}

// rawColumn describes a tbls column the way a live extractor would. tbls
// records MySQL auto_increment in extra_def, PostgreSQL sequences as nextval()
// defaults and SQLite AUTOINCREMENT only in the table definition.
func rawColumn(tbl *tblsschema.Table, col *tblsschema.Column, dialect snapcatalog.Dialect) pull.RawColumn {
	raw := pull.RawColumn{
		Name:     col.Name,
		DataType: col.Type,
		Nullable: col.Nullable,
		Default:  col.Default,
		Comment:  col.Comment,
	}

	def := strings.TrimSpace(col.Default.String)

	switch {
	case strings.Contains(strings.ToLower(col.ExtraDef), "auto_increment"):
		raw.AutoIncrement = true
	case strings.HasPrefix(def, "nextval("):
		raw.AutoIncrement = true
	case strings.Contains(strings.ToLower(col.ExtraDef), "identity"):
		raw.AutoIncrement = true
	case dialect == snapcatalog.DialectSQLite && col.PK &&
		strings.EqualFold(strings.TrimSpace(col.Type), "integer") &&
		strings.Contains(strings.ToUpper(tbl.Def), "AUTOINCREMENT"):
		raw.AutoIncrement = true
	}

	if raw.AutoIncrement {
		raw.Default = sql.NullString{}
		raw.Nullable = false
	}

	if dialect == snapcatalog.DialectMySQL || dialect == snapcatalog.DialectMariaDB {
		raw.Default = pull.MySQLDefault(raw.Default, col.ExtraDef)
	}

	return raw
}

// splitSchemaAndName qualifies bare table names with the driver's current
// schema, falling back to defaultSchema.
func splitSchemaAndName(fullName string, driver *tblsschema.Driver, defaultSchema string) (string, string) {
	if schemaName, tableName, ok := strings.Cut(fullName, "."); ok {
		return schemaName, tableName
	}

	if driver != nil && driver.Meta != nil && driver.Meta.CurrentSchema != "" {
		return driver.Meta.CurrentSchema, fullName
	}

	return defaultSchema, fullName
}
