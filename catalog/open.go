package catalog

import (
	"context"
	"fmt"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/connector"
)

// OpenBackend creates the backend selected by cfg.Backend. SQL backends are
// migrated before they are returned.
func OpenBackend(ctx context.Context, cfg *snapcatalog.Config) (Backend, error) {
	switch cfg.Backend {
	case snapcatalog.BackendMemory:
		return NewMemoryBackend(), nil
	case snapcatalog.BackendYAML:
		return NewYAMLBackend(cfg.StoreDir)
	case snapcatalog.BackendSQLite, snapcatalog.BackendPostgres, snapcatalog.BackendMySQL:
		db, ok := cfg.ActiveDatabase()
		if !ok || db.Connection == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingDatabase, cfg.Environment)
		}

		return OpenSQLBackend(ctx, db.Connection)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}

// OpenSQLBackend connects to databaseURL and migrates the records table.
func OpenSQLBackend(ctx context.Context, databaseURL string) (*SQLBackend, error) {
	db, dialect, err := connector.Open(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	backend := NewSQLBackend(db, dialect)
	if err := backend.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return backend, nil
}
