package schemaimport

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tblsconfig "github.com/k1LoW/tbls/config"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/connector"
)

// tblsSchemes maps the short dsn schemes tbls accepts onto connector's.
var tblsSchemes = map[string]string{
	"pg":    "postgres",
	"my":    "mysql",
	"maria": "mariadb",
	"sq":    "sqlite",
}

// ResolveConfig turns opts into a Config: it loads the tbls config, takes the
// dialect and default schema from its dsn and locates schema.json.
func ResolveConfig(ctx context.Context, opts Options) (Config, error) {
	cfg := NewConfig(opts)

	if err := cfg.Filter.Validate(); err != nil {
		return Config{}, err
	}

	base := cfg.WorkingDir
	if base == "" {
		base = "."
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return Config{}, fmt.Errorf("resolve working directory: %w", err)
	}

	cfg.WorkingDir = base

	configPath, err := findTblsConfig(base, cfg.TblsConfigPath)

	switch {
	case errors.Is(err, ErrTblsConfigNotFound) && cfg.TblsConfigPath == "" && cfg.SchemaJSONPath != "":
		cfg.SchemaJSONPath = absPath(base, cfg.SchemaJSONPath)
		cfg.logger().DebugContext(ctx, "no tbls config, using schema.json driver", slog.String("schema", cfg.SchemaJSONPath))

		return cfg, nil
	case err != nil:
		return Config{}, err
	}

	tblsCfg, err := tblsconfig.New()
	if err != nil {
		return Config{}, fmt.Errorf("init tbls config: %w", err)
	}

	if err := tblsCfg.Load(configPath); err != nil {
		return Config{}, fmt.Errorf("load tbls config %s: %w", configPath, err)
	}

	cfg.TblsConfigPath = configPath
	cfg.TblsConfig = tblsCfg

	if dsn := strings.TrimSpace(tblsCfg.DSN.URL); dsn != "" {
		cfg.Dialect, cfg.DefaultSchema, err = dsnDefaults(dsn)
		if err != nil {
			return Config{}, err
		}
	}

	if cfg.SchemaJSONPath != "" {
		cfg.SchemaJSONPath = absPath(base, cfg.SchemaJSONPath)
	} else {
		docPath := strings.TrimSpace(tblsCfg.DocPath)
		if docPath == "" {
			docPath = tblsconfig.DefaultDocPath
		}

		cfg.SchemaJSONPath = filepath.Join(absPath(filepath.Dir(configPath), docPath), tblsconfig.SchemaFileName)
	}

	cfg.logger().DebugContext(ctx, "resolved tbls import",
		slog.String("config", configPath),
		slog.String("schema", cfg.SchemaJSONPath),
		slog.String("dialect", string(cfg.Dialect)),
		slog.String("defaultSchema", cfg.DefaultSchema))

	return cfg, nil
}

func findTblsConfig(base, explicit string) (string, error) {
	if explicit != "" {
		path := absPath(base, explicit)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrTblsConfigNotFound, path, err)
		}

		return path, nil
	}

	for _, name := range tblsconfig.DefaultConfigFilePaths {
		path := filepath.Join(base, name)

		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return "", fmt.Errorf("stat %s: %w", path, err)
		case info.IsDir():
			continue
		}

		return path, nil
	}

	return "", fmt.Errorf("%w in %s", ErrTblsConfigNotFound, base)
}

// dsnDefaults reads the dialect from a tbls dsn. PostgreSQL tables default to
// the public schema and MySQL tables to the database named in the dsn.
func dsnDefaults(dsn string) (snapcatalog.Dialect, string, error) {
	if scheme, rest, ok := strings.Cut(dsn, "://"); ok {
		if alias, found := tblsSchemes[strings.ToLower(scheme)]; found {
			dsn = alias + "://" + rest
		}
	}

	info, err := connector.ParseConnectionInfo(dsn)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUnsupportedDSN, err)
	}

	switch info.Dialect {
	case snapcatalog.DialectPostgres:
		return info.Dialect, "public", nil
	case snapcatalog.DialectMySQL, snapcatalog.DialectMariaDB:
		return info.Dialect, info.Database, nil
	default:
		return info.Dialect, "", nil
	}
}

func absPath(base, path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	return filepath.Clean(path)
}
