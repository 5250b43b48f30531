package main

import (
	"fmt"
	"os"

	"github.com/shibukawa/snapcatalog/schemaimport"
)

// ImportCmd represents the import command
type ImportCmd struct {
	TblsConfig    string   `help:"Path to .tbls.yml (defaults to .tbls.yml or tbls.yml in the working directory)" type:"path"`
	SchemaJSON    string   `help:"Path to tbls schema.json (defaults to <docPath>/schema.json; works without a tbls config)" type:"path"`
	Include       []string `help:"Table patterns to include (can be specified multiple times)"`
	Exclude       []string `help:"Table patterns to exclude (can be specified multiple times)"`
	Schema        []string `help:"Schemas to import (can be specified multiple times)"`
	ExcludeSchema []string `help:"Schemas to skip (can be specified multiple times)"`
	DryRun        bool     `help:"Report what would be imported without writing"`
}

// Run executes the import command
func (cmd *ImportCmd) Run(ctx *Context) error {
	workingDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	a, err := openApp(ctx.baseContext(), ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	runtime, err := schemaimport.LoadRuntime(ctx.baseContext(), schemaimport.Options{
		WorkingDir:     workingDir,
		TblsConfigPath: cmd.TblsConfig,
		SchemaJSONPath: cmd.SchemaJSON,
		Include:        cmd.Include,
		Exclude:        cmd.Exclude,
		IncludeSchemas: cmd.Schema,
		ExcludeSchemas: cmd.ExcludeSchema,
		DryRun:         cmd.DryRun,
		Logger:         ctx.logger(),
		ColumnOptions:  a.Service.ColumnOptions,
	})
	if err != nil {
		return fmt.Errorf("failed to load tbls schema: %w", err)
	}

	results, err := runtime.Import(ctx.baseContext(), a.Service)
	if err != nil {
		return fmt.Errorf("failed to import columns: %w", err)
	}

	if !ctx.Quiet {
		operation := "Import"
		if cmd.DryRun {
			operation = "Import dry run"
		}

		displayImportResults(ctx, operation, results)
	}

	return nil
}
