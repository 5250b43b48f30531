// Package connector turns database URLs into open *sql.DB handles.
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// Connection errors
var (
	ErrEmptyDatabaseURL      = errors.New("database URL cannot be empty")
	ErrInvalidDatabaseURL    = errors.New("invalid database URL")
	ErrInvalidConnectionInfo = errors.New("invalid connection info")
	ErrConnectionFailed      = errors.New("failed to connect to database")
)

// PoolSettings defines database connection pool configuration
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connector opens database connections with shared pool settings
type Connector struct {
	pool PoolSettings
}

// New creates a connector with default pool settings
func New() *Connector {
	return &Connector{
		pool: PoolSettings{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

func (c *Connector) SetPoolSettings(settings PoolSettings) {
	c.pool = settings
}

func (c *Connector) PoolSettings() PoolSettings {
	return c.pool
}

// ConnectionInfo contains parsed database connection information
type ConnectionInfo struct {
	Dialect  snapcatalog.Dialect
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Options  map[string]string
}

// ParseConnectionInfo parses postgres://, mysql:// and sqlite:// URLs.
func ParseConnectionInfo(databaseURL string) (ConnectionInfo, error) {
	if databaseURL == "" {
		return ConnectionInfo{}, ErrEmptyDatabaseURL
	}

	scheme, rest, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return ConnectionInfo{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidDatabaseURL, redact(databaseURL))
	}

	dialect, err := snapcatalog.ParseDialect(scheme)
	if err != nil {
		return ConnectionInfo{}, err
	}

	info := ConnectionInfo{Dialect: dialect, Options: make(map[string]string)}

	// SQLite paths such as ":memory:" are not valid URL hosts, so they are split by hand.
	if dialect == snapcatalog.DialectSQLite {
		path, query, _ := strings.Cut(rest, "?")
		if path == "" {
			return ConnectionInfo{}, fmt.Errorf("%w: sqlite URL needs a file path", ErrInvalidDatabaseURL)
		}

		info.Database = path

		values, err := url.ParseQuery(query)
		if err != nil {
			return ConnectionInfo{}, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
		}

		copyOptions(info.Options, values)

		return info, nil
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	if u.Hostname() == "" || strings.TrimPrefix(u.Path, "/") == "" {
		return ConnectionInfo{}, fmt.Errorf("%w: host and database name are required", ErrInvalidDatabaseURL)
	}

	info.Host = u.Hostname()
	info.Port = u.Port()
	info.Database = strings.TrimPrefix(u.Path, "/")

	if info.Port == "" {
		if dialect == snapcatalog.DialectPostgres {
			info.Port = "5432"
		} else {
			info.Port = "3306"
		}
	}

	if u.User != nil {
		info.Username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			info.Password = password
		}
	}

	copyOptions(info.Options, u.Query())

	return info, nil
}

func copyOptions(dst map[string]string, values url.Values) {
	for key, v := range values {
		if len(v) > 0 {
			dst[key] = v[0]
		}
	}
}

// DSN converts the connection info into the driver-specific data source name
func (i ConnectionInfo) DSN() (string, error) {
	switch i.Dialect {
	case snapcatalog.DialectPostgres:
		if i.Host == "" || i.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(i.Host, i.Port),
			Path:   "/" + i.Database,
		}

		if i.Username != "" {
			if i.Password != "" {
				u.User = url.UserPassword(i.Username, i.Password)
			} else {
				u.User = url.User(i.Username)
			}
		}

		query := url.Values{}
		for k, v := range i.Options {
			query.Set(k, v)
		}

		// Add SSL mode if not specified
		if query.Get("sslmode") == "" {
			query.Set("sslmode", "disable")
		}

		u.RawQuery = query.Encode()

		return u.String(), nil
	case snapcatalog.DialectMySQL, snapcatalog.DialectMariaDB:
		if i.Host == "" || i.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		cfg := mysql.NewConfig()
		cfg.User = i.Username
		cfg.Passwd = i.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(i.Host, i.Port)
		cfg.DBName = i.Database
		cfg.ParseTime = true

		if len(i.Options) > 0 {
			cfg.Params = make(map[string]string, len(i.Options))
			for k, v := range i.Options {
				cfg.Params[k] = v
			}
		}

		return cfg.FormatDSN(), nil
	case snapcatalog.DialectSQLite:
		if i.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		if len(i.Options) == 0 {
			return i.Database, nil
		}

		query := url.Values{}
		for k, v := range i.Options {
			query.Set(k, v)
		}

		return i.Database + "?" + query.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %q", snapcatalog.ErrUnsupportedDialect, i.Dialect)
	}
}

// IsInMemory reports whether the connection points at a private in-memory SQLite database.
func (i ConnectionInfo) IsInMemory() bool {
	return i.Dialect == snapcatalog.DialectSQLite &&
		(strings.Contains(i.Database, ":memory:") || i.Options["mode"] == "memory")
}

// String renders the info as a URL with the password masked
func (i ConnectionInfo) String() string {
	if i.Dialect == snapcatalog.DialectSQLite {
		return "sqlite://" + i.Database
	}

	auth := i.Username
	if i.Password != "" {
		auth += ":xxxxx"
	}

	if auth != "" {
		auth += "@"
	}

	return fmt.Sprintf("%s://%s%s/%s", i.Dialect, auth, net.JoinHostPort(i.Host, i.Port), i.Database)
}

// Open validates databaseURL, opens a pool and pings it.
func (c *Connector) Open(ctx context.Context, databaseURL string) (*sql.DB, snapcatalog.Dialect, error) {
	info, err := ParseConnectionInfo(databaseURL)
	if err != nil {
		return nil, "", err
	}

	dsn, err := info.DSN()
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(info.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(c.pool.MaxOpenConns)
	db.SetMaxIdleConns(c.pool.MaxIdleConns)
	db.SetConnMaxLifetime(c.pool.ConnMaxLifetime)

	// every new connection would otherwise see its own empty database
	if info.IsInMemory() {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("%w: %s: %w", ErrConnectionFailed, info, err)
	}

	return db, info.Dialect, nil
}

// Open is a convenience wrapper around New().Open.
func Open(ctx context.Context, databaseURL string) (*sql.DB, snapcatalog.Dialect, error) {
	return New().Open(ctx, databaseURL)
}

func redact(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "<unparseable>"
	}

	return u.Redacted()
}
