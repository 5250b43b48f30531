package catalog

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// TestPostgreSQLBackend runs the backend contract against a real PostgreSQL server
func TestPostgreSQLBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, postgresContainer.Terminate(ctx))
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runBackendSuite(t, func(t *testing.T) Backend {
		db, err := sql.Open("pgx", connStr)
		require.NoError(t, err)

		b := NewSQLBackend(db, snapcatalog.DialectPostgres)
		require.NoError(t, b.Migrate(t.Context()))

		_, err = db.ExecContext(t.Context(), "DELETE FROM "+ColumnsTable)
		require.NoError(t, err)

		t.Cleanup(func() { b.Close() })

		return b
	})

	t.Run("OpenSQLBackend", func(t *testing.T) {
		b, err := OpenSQLBackend(t.Context(), connStr)
		require.NoError(t, err)
		require.NoError(t, b.Close())
	})
}

// TestMySQLBackend runs the backend contract against a real MySQL server
func TestMySQLBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()

	mysqlContainer, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, mysqlContainer.Terminate(ctx))
	}()

	connStr, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	runBackendSuite(t, func(t *testing.T) Backend {
		db, err := sql.Open("mysql", connStr)
		require.NoError(t, err)

		b := NewSQLBackend(db, snapcatalog.DialectMySQL)
		require.NoError(t, b.Migrate(t.Context()))

		_, err = db.ExecContext(t.Context(), "DELETE FROM "+ColumnsTable)
		require.NoError(t, err)

		t.Cleanup(func() { b.Close() })

		return b
	})
}
