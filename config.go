package snapcatalog

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is the configuration file name looked up by the CLI.
const DefaultConfigFile = "snapcatalog.yaml"

// Backend names accepted in the configuration
const (
	BackendMemory   = "memory"
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Config represents the SnapCatalog configuration
type Config struct {
	Backend     string              `yaml:"backend"`
	Environment string              `yaml:"environment"`
	Databases   map[string]Database `yaml:"databases"`
	StoreDir    string              `yaml:"store_dir"`
	Identifiers IdentifierConfig    `yaml:"identifiers"`
	Audit       AuditConfig         `yaml:"audit"`
	Output      OutputConfig        `yaml:"output"`
	Pull        PullFilterConfig    `yaml:"pull"`
}

// Database represents database connection configuration
type Database struct {
	Driver     string `yaml:"driver"`
	Connection string `yaml:"connection"`
	Schema     string `yaml:"schema"`
	Database   string `yaml:"database"`
}

// IdentifierConfig controls which column names the catalog accepts
type IdentifierConfig struct {
	MaxLength int    `yaml:"max_length"`
	Pattern   string `yaml:"pattern"`
}

// AuditConfig controls how audit information is stamped
type AuditConfig struct {
	// User is the identity recorded as creator / last modifier.
	User string `yaml:"user"`

	// Timezone is the IANA zone used for audit timestamps.
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone, defaulting to UTC.
func (a AuditConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(a.Timezone)
}

// OutputConfig represents CLI output defaults
type OutputConfig struct {
	Format string `yaml:"format"`
	Color  *bool  `yaml:"color"` // Pointer to distinguish between unset and false
}

// ColorEnabled returns true unless color output was explicitly disabled
func (o OutputConfig) ColorEnabled() bool {
	return o.Color == nil || *o.Color
}

// PullFilterConfig represents schema/table filters used when pulling from a live database
type PullFilterConfig struct {
	IncludeSchemas []string `yaml:"include_schemas"`
	ExcludeSchemas []string `yaml:"exclude_schemas"`
	IncludeTables  []string `yaml:"include_tables"`
	ExcludeTables  []string `yaml:"exclude_tables"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&config)

	// Expand environment variables
	expandConfigEnvVars(&config)

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ActiveDatabase returns the database selected by Environment.
func (c *Config) ActiveDatabase() (Database, bool) {
	db, ok := c.Databases[c.Environment]
	return db, ok
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	validBackends := map[string]bool{
		BackendMemory:   true,
		BackendYAML:     true,
		BackendSQLite:   true,
		BackendPostgres: true,
		BackendMySQL:    true,
	}
	if !validBackends[config.Backend] {
		return fmt.Errorf("%w: invalid backend '%s': must be one of memory, yaml, sqlite, postgres, mysql", ErrConfigValidation, config.Backend)
	}

	switch config.Backend {
	case BackendYAML:
		if config.StoreDir == "" {
			return fmt.Errorf("%w: store_dir is required for the yaml backend", ErrConfigValidation)
		}
	case BackendSQLite, BackendPostgres, BackendMySQL:
		db, ok := config.ActiveDatabase()
		if !ok {
			return fmt.Errorf("%w: backend '%s' requires databases.%s", ErrConfigValidation, config.Backend, config.Environment)
		}

		if db.Connection == "" {
			return fmt.Errorf("%w: databases.%s.connection is required", ErrConfigValidation, config.Environment)
		}
	}

	for name, db := range config.Databases {
		if db.Driver == "" {
			continue
		}

		if _, err := ParseDialect(db.Driver); err != nil {
			return fmt.Errorf("%w: databases.%s: %w", ErrConfigValidation, name, err)
		}
	}

	if config.Identifiers.MaxLength < 0 {
		return fmt.Errorf("%w: identifiers.max_length must be non-negative, got %d", ErrConfigValidation, config.Identifiers.MaxLength)
	}

	if config.Identifiers.Pattern != "" {
		if _, err := regexp.Compile(config.Identifiers.Pattern); err != nil {
			return fmt.Errorf("%w: identifiers.pattern: %w", ErrConfigValidation, err)
		}
	}

	if config.Audit.Timezone != "" {
		if _, err := config.Audit.Location(); err != nil {
			return fmt.Errorf("%w: audit.timezone: %w", ErrConfigValidation, err)
		}
	}

	if config.Output.Format != "" {
		validFormats := map[string]bool{
			"table":    true,
			"yaml":     true,
			"json":     true,
			"xml":      true,
			"markdown": true,
			"html":     true,
		}
		if !validFormats[config.Output.Format] {
			return fmt.Errorf("%w: output.format '%s' is invalid: must be one of table, yaml, json, xml, markdown, html", ErrConfigValidation, config.Output.Format)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Backend:     BackendYAML,
		Environment: "development",
		Databases:   make(map[string]Database),
		StoreDir:    "./catalog",
		Identifiers: IdentifierConfig{
			MaxLength: 128,
		},
		Audit: AuditConfig{
			User:     "${USER}",
			Timezone: "UTC",
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Backend == "" {
		config.Backend = defaults.Backend
	}

	if config.Environment == "" {
		config.Environment = defaults.Environment
	}

	if config.Databases == nil {
		config.Databases = make(map[string]Database)
	}

	if config.StoreDir == "" {
		config.StoreDir = defaults.StoreDir
	}

	if config.Identifiers.MaxLength == 0 {
		config.Identifiers.MaxLength = defaults.Identifiers.MaxLength
	}

	if config.Audit.User == "" {
		config.Audit.User = defaults.Audit.User
	}

	if config.Audit.Timezone == "" {
		config.Audit.Timezone = defaults.Audit.Timezone
	}

	if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExpandEnvVars expands environment variables in the format ${VAR} or $VAR
func ExpandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	s = bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars recursively expands environment variables in config
func expandConfigEnvVars(config *Config) {
	// Expand database connections
	for name, db := range config.Databases {
		db.Connection = ExpandEnvVars(db.Connection)
		db.Driver = ExpandEnvVars(db.Driver)
		db.Schema = ExpandEnvVars(db.Schema)
		db.Database = ExpandEnvVars(db.Database)
		config.Databases[name] = db
	}

	config.StoreDir = ExpandEnvVars(config.StoreDir)
	config.Audit.User = ExpandEnvVars(config.Audit.User)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
