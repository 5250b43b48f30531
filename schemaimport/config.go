package schemaimport

import (
	"log/slog"
	"slices"

	tblsconfig "github.com/k1LoW/tbls/config"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/pull"
	"github.com/shibukawa/snapcatalog/rel"
)

// Config is the resolved form of Options.
type Config struct {
	WorkingDir string
	// TblsConfigPath is empty when only a schema.json path was given.
	TblsConfigPath string
	SchemaJSONPath string

	// Dialect comes from the tbls dsn. When empty the schema.json driver decides.
	Dialect snapcatalog.Dialect
	// DefaultSchema qualifies tables schema.json lists without a schema.
	DefaultSchema string

	Filter pull.Filter
	DryRun bool

	Logger        *slog.Logger
	ColumnOptions []rel.Option

	TblsConfig *tblsconfig.Config
}

// NewConfig copies opts into an unresolved Config.
func NewConfig(opts Options) Config {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return Config{
		WorkingDir:     opts.WorkingDir,
		TblsConfigPath: opts.TblsConfigPath,
		SchemaJSONPath: opts.SchemaJSONPath,
		Filter: pull.Filter{
			IncludeSchemas: slices.Clone(opts.IncludeSchemas),
			ExcludeSchemas: slices.Clone(opts.ExcludeSchemas),
			IncludeTables:  slices.Clone(opts.Include),
			ExcludeTables:  slices.Clone(opts.Exclude),
		},
		DryRun:        opts.DryRun,
		Logger:        logger,
		ColumnOptions: opts.ColumnOptions,
	}
}

// DSN returns the dsn of the loaded tbls config, or "".
func (c Config) DSN() string {
	if c.TblsConfig == nil {
		return ""
	}

	return c.TblsConfig.DSN.URL
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return c.Logger
}
