package schemaimport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/catalog"
)

func writeRuntimeFixture(t *testing.T) string {
	t.Helper()

	tmp := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmp, "doc"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	writeFile(t, tmp, ".tbls.yml", "dsn: postgres://localhost/app\ndocPath: doc\n")
	writeFile(t, filepath.Join(tmp, "doc"), "schema.json", postgresSchemaJSON)

	return tmp
}

func TestLoadRuntimeSuccess(t *testing.T) {
	ctx := context.Background()
	tmp := writeRuntimeFixture(t)

	runtime, err := LoadRuntime(ctx, Options{WorkingDir: tmp})
	if err != nil {
		t.Fatalf("LoadRuntime returned error: %v", err)
	}

	if runtime.Config.TblsConfig == nil {
		t.Fatalf("expected tbls config to be loaded")
	}

	if runtime.Config.DSN() != "postgres://localhost/app" {
		t.Fatalf("unexpected DSN: %s", runtime.Config.DSN())
	}

	if len(runtime.Tables) != 2 {
		t.Fatalf("expected two tables, got %d", len(runtime.Tables))
	}

	tables := runtime.TablesByName()
	if _, ok := tables["users"]; !ok {
		t.Fatalf("expected users table in lookup")
	}

	if _, ok := tables["public.users"]; !ok {
		t.Fatalf("expected schema-qualified users key")
	}
}

func TestRuntimeImport(t *testing.T) {
	ctx := audit.WithUser(context.Background(), "importer")
	tmp := writeRuntimeFixture(t)

	svc := catalog.NewService(catalog.NewMemoryBackend(), audit.NewStamper(audit.ContextPrincipal{}), nil)

	dry, err := LoadRuntime(ctx, Options{WorkingDir: tmp, DryRun: true})
	if err != nil {
		t.Fatalf("LoadRuntime returned error: %v", err)
	}

	results, err := dry.Import(ctx, svc)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	if len(results[0].Created) != 4 {
		t.Fatalf("expected dry run to report four columns, got %v", results[0].Created)
	}

	if tables, _ := svc.ListTables(ctx); len(tables) != 0 {
		t.Fatalf("dry run must not write, found %v", tables)
	}

	real, err := LoadRuntime(ctx, Options{WorkingDir: tmp})
	if err != nil {
		t.Fatalf("LoadRuntime returned error: %v", err)
	}

	if _, err := real.Import(ctx, svc); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	cols, err := svc.ListColumns(ctx, catalog.TableIdent{Schema: "public", Name: "users"})
	if err != nil {
		t.Fatalf("ListColumns failed: %v", err)
	}

	if len(cols) != 4 || cols[0].AuditInfo().MustGet().Creator() != "importer" {
		t.Fatalf("unexpected imported columns: %v", cols)
	}

	again, err := real.Import(ctx, svc)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	if len(again[0].Skipped) != 4 || len(again[0].Created) != 0 {
		t.Fatalf("expected second import to skip everything, got %+v", again[0])
	}
}

func TestLoadRuntimePropagatesErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := LoadRuntime(ctx, Options{WorkingDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error when tbls config missing")
	}
}
