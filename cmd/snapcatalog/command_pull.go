package main

import (
	"fmt"

	"github.com/fatih/color"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/pull"
)

// PullCmd represents the pull command
type PullCmd struct {
	// Database connection options
	DB  string `help:"Database connection string (postgres://, mysql://, sqlite://)" xor:"source"`
	Env string `help:"Environment name from configuration" xor:"source"`

	// Filtering options
	IncludeSchemas []string `help:"Schema patterns to include (can be specified multiple times)"`
	ExcludeSchemas []string `help:"Schema patterns to exclude (can be specified multiple times)"`
	IncludeTables  []string `help:"Table patterns to include (can be specified multiple times)"`
	ExcludeTables  []string `help:"Table patterns to exclude (can be specified multiple times)"`
}

// Run executes the pull command
func (p *PullCmd) Run(ctx *Context) error {
	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dbURL, err := p.resolveDatabaseURL(a.Config)
	if err != nil {
		return fmt.Errorf("failed to resolve database connection: %w", err)
	}

	if ctx.Verbose {
		color.New(color.FgBlue).Fprintf(ctx.out(), "Pulling columns from %s\n", dbURL)
	}

	results, err := pull.Execute(ctx.baseContext(), a.Config, a.Service, pull.Options{
		DatabaseURL: dbURL,
		Filter:      p.filter(),
		Logger:      ctx.logger(),
	})
	if err != nil {
		return fmt.Errorf("failed to pull columns: %w", err)
	}

	if !ctx.Quiet {
		displayImportResults(ctx, "Pull", results)
	}

	return nil
}

// resolveDatabaseURL picks --db, then --env, then the active environment.
// An empty result lets pull.Execute fall back to the configuration.
func (p *PullCmd) resolveDatabaseURL(config *snapcatalog.Config) (string, error) {
	switch {
	case p.DB != "":
		return p.DB, nil
	case p.Env != "":
		db, ok := config.Databases[p.Env]
		if !ok {
			return "", fmt.Errorf("%w: '%s'", ErrEnvironmentNotFound, p.Env)
		}

		if db.Connection == "" {
			return "", fmt.Errorf("%w: databases.%s.connection", ErrEmptyConnection, p.Env)
		}

		return db.Connection, nil
	default:
		return "", nil
	}
}

func (p *PullCmd) filter() pull.Filter {
	return pull.Filter{
		IncludeSchemas: p.IncludeSchemas,
		ExcludeSchemas: p.ExcludeSchemas,
		IncludeTables:  p.IncludeTables,
		ExcludeTables:  p.ExcludeTables,
	}
}

// displayImportResults prints per-table created and skipped counts.
func displayImportResults(ctx *Context, operation string, results []catalog.ImportResult) {
	w := ctx.out()
	created, skipped := 0, 0

	for _, r := range results {
		created += len(r.Created)
		skipped += len(r.Skipped)
	}

	color.New(color.FgGreen).Fprintf(w, "✓ %s completed successfully\n", operation)
	color.New(color.FgGreen).Fprintf(w, "  Tables: %d\n", len(results))
	color.New(color.FgGreen).Fprintf(w, "  Columns created: %d\n", created)

	if skipped > 0 {
		color.New(color.FgYellow).Fprintf(w, "  Columns skipped: %d\n", skipped)
	}

	if !ctx.Verbose {
		return
	}

	for _, r := range results {
		color.New(color.FgCyan).Fprintf(w, "  Table '%s': %d created, %d skipped\n", r.Table, len(r.Created), len(r.Skipped))
	}
}
