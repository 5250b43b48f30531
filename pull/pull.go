// Package pull populates the catalog from the columns of a live database.
package pull

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/connector"
	"github.com/shibukawa/snapcatalog/rel"
)

// ErrNoDatabase indicates neither a URL nor a configured database was given.
var ErrNoDatabase = errors.New("no database to pull from")

// Options contains configuration for the pull operation
type Options struct {
	// DatabaseURL overrides the configured database of the active environment.
	DatabaseURL string
	Filter      Filter
	Logger      *slog.Logger

	// ColumnOptions are applied when pulled columns are validated.
	ColumnOptions []rel.Option
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger
}

// Pull connects to opts.DatabaseURL and extracts the filtered tables.
func Pull(ctx context.Context, opts Options) ([]TableColumns, error) {
	db, dialect, err := connector.Open(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return PullDB(ctx, db, dialect, opts)
}

// PullDB extracts the filtered tables from an open database.
func PullDB(ctx context.Context, db *sql.DB, dialect snapcatalog.Dialect, opts Options) ([]TableColumns, error) {
	extractor, err := NewExtractor(dialect)
	if err != nil {
		return nil, err
	}

	converter, err := NewConverter(dialect, opts.logger(), opts.ColumnOptions...)
	if err != nil {
		return nil, err
	}

	tables, err := Extract(ctx, db, extractor, opts.Filter, converter)
	if err != nil {
		return nil, err
	}

	opts.logger().InfoContext(ctx, "pulled database schema", slog.String("dialect", string(dialect)), slog.Int("tables", len(tables)))

	return tables, nil
}

// Import creates the columns of tables in svc, skipping columns the catalog
// already has.
func Import(ctx context.Context, svc *catalog.Service, tables []TableColumns) ([]catalog.ImportResult, error) {
	results := make([]catalog.ImportResult, 0, len(tables))

	for _, table := range tables {
		result, err := svc.ImportColumns(ctx, table.Table, table.Columns)
		if err != nil {
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

// Execute pulls the database selected by opts or cfg and imports it into svc.
// When opts.Filter is empty the pull section of cfg is used.
func Execute(ctx context.Context, cfg *snapcatalog.Config, svc *catalog.Service, opts Options) ([]catalog.ImportResult, error) {
	if opts.DatabaseURL == "" {
		db, ok := cfg.ActiveDatabase()
		if !ok || db.Connection == "" {
			return nil, fmt.Errorf("%w: environment %q has no connection", ErrNoDatabase, cfg.Environment)
		}

		opts.DatabaseURL = db.Connection
	}

	if opts.Filter.isEmpty() {
		opts.Filter = FilterFromConfig(cfg.Pull)
	}

	if opts.ColumnOptions == nil {
		opts.ColumnOptions = svc.ColumnOptions
	}

	tables, err := Pull(ctx, opts)
	if err != nil {
		return nil, err
	}

	return Import(ctx, svc, tables)
}
