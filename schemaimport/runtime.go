package schemaimport

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/pull"
)

// Runtime holds resolved tbls configuration alongside the converted tables.
type Runtime struct {
	Config Config
	Tables []pull.TableColumns
}

// LoadRuntime resolves tbls configuration from opts, loads schema JSON, and converts it.
func LoadRuntime(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := ResolveConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	importer := NewImporter(cfg)
	if err := importer.LoadSchemaJSON(ctx); err != nil {
		return nil, err
	}

	tables, err := importer.Convert(ctx)
	if err != nil {
		return nil, err
	}

	return &Runtime{Config: cfg, Tables: tables}, nil
}

// TablesByName returns a lookup map keyed by table name and schema-qualified name.
func (r *Runtime) TablesByName() map[string]pull.TableColumns {
	tables := make(map[string]pull.TableColumns)
	if r == nil {
		return tables
	}

	for _, tc := range r.Tables {
		tables[tc.Table.Name] = tc

		if tc.Table.Schema != "" {
			tables[tc.Table.Schema+"."+tc.Table.Name] = tc
		}
	}

	return tables
}

// Import writes the converted tables into svc. In dry-run mode the catalog is
// only read and the results report what an import would create.
func (r *Runtime) Import(ctx context.Context, svc *catalog.Service) ([]catalog.ImportResult, error) {
	if !r.Config.DryRun {
		return pull.Import(ctx, svc, r.Tables)
	}

	results := make([]catalog.ImportResult, 0, len(r.Tables))

	for _, tc := range r.Tables {
		existing, err := svc.ListColumns(ctx, tc.Table)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(existing))
		for _, c := range existing {
			names = append(names, strings.ToLower(c.Name()))
		}

		result := catalog.ImportResult{Table: tc.Table}

		for _, c := range tc.Columns {
			if slices.Contains(names, strings.ToLower(c.Name())) {
				result.Skipped = append(result.Skipped, c.Name())
				continue
			}

			names = append(names, strings.ToLower(c.Name()))
			result.Created = append(result.Created, c.Name())
		}

		results = append(results, result)
	}

	r.Config.logger().InfoContext(ctx, "dry run: catalog left unchanged", slog.Int("tables", len(results)))

	return results, nil
}
