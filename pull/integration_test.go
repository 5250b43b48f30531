package pull

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/types"
)

// TestPostgreSQLIntegration pulls columns from a real PostgreSQL database
func TestPostgreSQLIntegration(t *testing.T) {
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
		assert.NoError(t, postgresContainer.Terminate(ctx))
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)

	defer db.Close()

	require.NoError(t, execAll(db,
		`CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			status VARCHAR(20) DEFAULT 'active',
			balance NUMERIC(12,2) DEFAULT 0,
			tags TEXT[],
			token UUID DEFAULT gen_random_uuid(),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`COMMENT ON COLUMN users.email IS 'login address'`,
		`CREATE TABLE posts (
			id BIGINT GENERATED ALWAYS AS IDENTITY,
			title TEXT NOT NULL,
			published BOOLEAN DEFAULT FALSE
		)`,
	))

	t.Run("AllTables", func(t *testing.T) {
		tables, err := PullDB(t.Context(), db, snapcatalog.DialectPostgres, Options{})
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "public", tables[0].Table.Schema)
		assert.Equal(t, "posts", tables[0].Table.Name)

		posts := tables[0].Columns
		require.Len(t, posts, 3)
		assert.True(t, posts[0].AutoIncrement())
		assert.True(t, posts[2].DefaultValue().Equal(rel.LiteralDefault(rel.BooleanLiteral(false))))

		users := tables[1].Columns
		require.Len(t, users, 7)
		assert.True(t, users[0].AutoIncrement())
		assert.Equal(t, types.Integer(), users[0].DataType())
		assert.Equal(t, types.Must(types.VarChar(255)), users[1].DataType())
		assert.Equal(t, "login address", users[1].Comment())
		assert.True(t, users[2].DefaultValue().Equal(rel.LiteralDefault(rel.StringLiteral("active"))))
		assert.Equal(t, types.Must(types.Decimal(12, 2)), users[3].DataType())
		assert.Equal(t, types.Must(types.List(types.String(), true)), users[4].DataType())
		assert.True(t, users[5].DefaultValue().Equal(rel.ExpressionDefault("uuid()")))
		assert.Equal(t, types.TimestampTZ(), users[6].DataType())
		assert.True(t, users[6].DefaultValue().Equal(rel.ExpressionDefault("current_timestamp()")))
	})

	t.Run("Filtered", func(t *testing.T) {
		tables, err := PullDB(t.Context(), db, snapcatalog.DialectPostgres, Options{Filter: Filter{IncludeTables: []string{"users"}}})
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "users", tables[0].Table.Name)
	})
}

// TestMySQLIntegration pulls columns from a real MySQL database
func TestMySQLIntegration(t *testing.T) {
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
		assert.NoError(t, mysqlContainer.Terminate(ctx))
	}()

	connStr, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := sql.Open("mysql", connStr)
	require.NoError(t, err)

	defer db.Close()

	require.NoError(t, execAll(db,
		`CREATE TABLE users (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL COMMENT 'login address',
			status VARCHAR(20) DEFAULT 'active',
			active TINYINT(1) DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	))

	tables, err := PullDB(t.Context(), db, snapcatalog.DialectMySQL, Options{})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "testdb", tables[0].Table.Schema)

	users := tables[0].Columns
	require.Len(t, users, 5)
	assert.True(t, users[0].AutoIncrement())
	assert.Equal(t, types.Long(), users[0].DataType())
	assert.Equal(t, "login address", users[1].Comment())
	assert.True(t, users[2].DefaultValue().Equal(rel.LiteralDefault(rel.StringLiteral("active"))))
	assert.Equal(t, types.Boolean(), users[3].DataType())
	assert.True(t, users[3].DefaultValue().Equal(rel.LiteralDefault(rel.BooleanLiteral(true))))
	assert.True(t, users[4].DefaultValue().Equal(rel.ExpressionDefault("current_timestamp()")))
}

func execAll(db *sql.DB, queries ...string) error {
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %q: %w", query, err)
		}
	}

	return nil
}
