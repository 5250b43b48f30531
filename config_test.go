package snapcatalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), DefaultConfigFile)
	err := os.WriteFile(configPath, []byte(content), 0644)
	assert.NoError(t, err)

	return configPath
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("USER", "catalog-admin")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, BackendYAML, config.Backend)
	assert.Equal(t, "./catalog", config.StoreDir)
	assert.Equal(t, 128, config.Identifiers.MaxLength)
	assert.Equal(t, "catalog-admin", config.Audit.User)
	assert.Equal(t, "table", config.Output.Format)
	assert.True(t, config.Output.ColorEnabled())
}

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
backend: memory
unknown_key: "should cause error"
`)

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	t.Setenv("CATALOG_DB", "sqlite://./catalog.db")

	configPath := writeConfig(t, `
backend: sqlite
environment: development
databases:
  development:
    driver: sqlite
    connection: "${CATALOG_DB}"
identifiers:
  pattern: "^[a-z_][a-z0-9_]*$"
audit:
  user: "ci-bot"
  timezone: "Asia/Tokyo"
output:
  format: json
  color: false
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, BackendSQLite, config.Backend)

	db, ok := config.ActiveDatabase()
	assert.True(t, ok)
	assert.Equal(t, "sqlite://./catalog.db", db.Connection)
	assert.Equal(t, "^[a-z_][a-z0-9_]*$", config.Identifiers.Pattern)
	assert.Equal(t, 128, config.Identifiers.MaxLength)
	assert.Equal(t, "ci-bot", config.Audit.User)
	assert.False(t, config.Output.ColorEnabled())

	loc, err := config.Audit.Location()
	assert.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "unknown backend",
			content: "backend: cassandra\n",
			message: "invalid backend 'cassandra'",
		},
		{
			name:    "sql backend without database",
			content: "backend: postgres\n",
			message: "requires databases.development",
		},
		{
			name: "sql backend without connection",
			content: `
backend: mysql
databases:
  development:
    driver: mysql
`,
			message: "databases.development.connection is required",
		},
		{
			name: "unsupported driver",
			content: `
backend: memory
databases:
  legacy:
    driver: oracle
    connection: "oracle://example"
`,
			message: "unsupported dialect",
		},
		{
			name:    "broken identifier pattern",
			content: "backend: memory\nidentifiers:\n  pattern: \"[a-z\"\n",
			message: "identifiers.pattern",
		},
		{
			name:    "negative identifier length",
			content: "backend: memory\nidentifiers:\n  max_length: -1\n",
			message: "identifiers.max_length must be non-negative",
		},
		{
			name:    "unknown timezone",
			content: "backend: memory\naudit:\n  timezone: Mars/Olympus\n",
			message: "audit.timezone",
		},
		{
			name:    "unknown output format",
			content: "backend: memory\noutput:\n  format: csv\n",
			message: "output.format 'csv' is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigValidation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "catalog")

	assert.Equal(t, "postgres://localhost/catalog", ExpandEnvVars("postgres://${DB_HOST}/$DB_NAME"))
	assert.Equal(t, "no variables", ExpandEnvVars("no variables"))
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input    string
		expected Dialect
		driver   string
	}{
		{"postgresql", DialectPostgres, "pgx"},
		{"pgx", DialectPostgres, "pgx"},
		{"MySQL", DialectMySQL, "mysql"},
		{"mariadb", DialectMariaDB, "mysql"},
		{"sqlite3", DialectSQLite, "sqlite3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dialect, err := ParseDialect(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, dialect)
			assert.Equal(t, tt.driver, dialect.DriverName())
		})
	}

	_, err := ParseDialect("oracle")
	assert.True(t, errors.Is(err, ErrUnsupportedDialect))

	assert.Equal(t, "$2", DialectPostgres.Placeholder(2))
	assert.Equal(t, "?", DialectSQLite.Placeholder(2))
}
