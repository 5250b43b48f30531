package schemaimport

import (
	"log/slog"

	"github.com/shibukawa/snapcatalog/rel"
)

// Options are the caller-supplied inputs of an import. Relative paths are
// resolved against WorkingDir.
type Options struct {
	WorkingDir string
	// TblsConfigPath overrides the .tbls.yml lookup.
	TblsConfigPath string
	// SchemaJSONPath overrides <docPath>/schema.json. When set, a missing tbls
	// config is not an error.
	SchemaJSONPath string
	// Include and Exclude are table patterns with pull's wildcard semantics.
	Include []string
	Exclude []string
	// IncludeSchemas and ExcludeSchemas restrict the schemas imported.
	IncludeSchemas []string
	ExcludeSchemas []string
	DryRun         bool
	// Logger receives progress and skipped-column warnings. Nil discards them.
	Logger        *slog.Logger
	ColumnOptions []rel.Option
}
