package pull

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// DatabaseConnector handles database connections and operations
type DatabaseConnector struct {
	poolSettings ConnectionPoolSettings
}

// ConnectionPoolSettings defines database connection pool configuration
type ConnectionPoolSettings struct {
	MaxOpenConns    int // Maximum number of open connections
	MaxIdleConns    int // Maximum number of idle connections
	ConnMaxLifetime int // Maximum lifetime of connections in seconds
}

// ConnectionInfo contains parsed database connection information
type ConnectionInfo struct {
	Type     string
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Options  map[string]string
}

// NewDatabaseConnector creates a new database connector with default settings.
// Catalog reads are sequential, so a small pool is enough.
func NewDatabaseConnector() *DatabaseConnector {
	return &DatabaseConnector{
		poolSettings: ConnectionPoolSettings{
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 300, // 5 minutes
		},
	}
}

// SetPoolSettings configures connection pool settings
func (c *DatabaseConnector) SetPoolSettings(settings ConnectionPoolSettings) {
	c.poolSettings = settings
}

// GetPoolSettings returns current connection pool settings
func (c *DatabaseConnector) GetPoolSettings() ConnectionPoolSettings {
	return c.poolSettings
}

// ParseDatabaseURL extracts database type from connection URL
func (c *DatabaseConnector) ParseDatabaseURL(databaseURL string) (string, error) {
	if databaseURL == "" {
		return "", ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", ErrInvalidDatabaseURL
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return "postgresql", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", ErrUnsupportedDatabase
	}
}

// ValidateConnectionString validates the format of a database connection string
func (c *DatabaseConnector) ValidateConnectionString(databaseURL string) error {
	if databaseURL == "" {
		return ErrEmptyDatabaseURL
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return ErrInvalidDatabaseURL
	}

	switch u.Scheme {
	case "postgres", "postgresql", "mysql":
		if u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
			return ErrInvalidDatabaseURL
		}

		return nil
	case "sqlite", "sqlite3":
		if u.Path == "" && u.Host == "" {
			return ErrInvalidDatabaseURL
		}

		return nil
	default:
		return ErrUnsupportedDatabase
	}
}

// Connect opens a pooled connection and verifies it with a ping.
func (c *DatabaseConnector) Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if err := c.ValidateConnectionString(databaseURL); err != nil {
		return nil, err
	}

	dbType, err := c.ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	connStr, err := c.convertToDriverString(databaseURL, dbType)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(c.getDriverName(dbType), connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(c.poolSettings.MaxOpenConns)
	db.SetMaxIdleConns(c.poolSettings.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(c.poolSettings.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return db, nil
}

// ParseConnectionInfo parses a database URL into connection information
func (c *DatabaseConnector) ParseConnectionInfo(databaseURL string) (ConnectionInfo, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ConnectionInfo{}, ErrInvalidDatabaseURL
	}

	info := ConnectionInfo{
		Options: make(map[string]string),
	}

	switch u.Scheme {
	case "postgres", "postgresql", "mysql":
		info.Type = "postgresql"
		info.Port = "5432"

		if u.Scheme == "mysql" {
			info.Type = "mysql"
			info.Port = "3306"
		}

		info.Host = u.Hostname()
		if u.Port() != "" {
			info.Port = u.Port()
		}

		info.Database = strings.TrimPrefix(u.Path, "/")

		if u.User != nil {
			info.Username = u.User.Username()
			if password, ok := u.User.Password(); ok {
				info.Password = password
			}
		}
	case "sqlite", "sqlite3":
		info.Type = "sqlite"
		if u.Host == "" {
			// sqlite:///path/to/db.db format
			info.Database = u.Path
		} else {
			// sqlite://./db.db format
			info.Database = u.Host + u.Path
		}
	default:
		return ConnectionInfo{}, ErrUnsupportedDatabase
	}

	for key, values := range u.Query() {
		if len(values) > 0 {
			info.Options[key] = values[0]
		}
	}

	return info, nil
}

// BuildConnectionString builds a connection URL from connection info
func (c *DatabaseConnector) BuildConnectionString(info ConnectionInfo) string {
	hostPort := net.JoinHostPort(info.Host, info.Port)

	var userInfo *url.Userinfo

	switch {
	case info.Password != "":
		userInfo = url.UserPassword(info.Username, info.Password)
	case info.Username != "":
		userInfo = url.User(info.Username)
	}

	switch info.Type {
	case "postgresql":
		u := url.URL{Scheme: "postgres", User: userInfo, Host: hostPort, Path: "/" + info.Database}
		return u.String()
	case "mysql":
		u := url.URL{Scheme: "mysql", User: userInfo, Host: hostPort, Path: "/" + info.Database}
		return u.String()
	case "sqlite":
		return "sqlite://" + info.Database
	default:
		return ""
	}
}

// DefaultSchemaName returns the schema name used when none is configured:
// the database name for MySQL, "public" for PostgreSQL and the file base
// name for SQLite.
func (c *DatabaseConnector) DefaultSchemaName(databaseURL string) string {
	info, err := c.ParseConnectionInfo(databaseURL)
	if err != nil {
		return ""
	}

	switch info.Type {
	case "mysql":
		return info.Database
	case "postgresql":
		return "public"
	case "sqlite":
		base := filepath.Base(info.Database)
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return ""
	}
}

func (c *DatabaseConnector) convertToDriverString(databaseURL, dbType string) (string, error) {
	info, err := c.ParseConnectionInfo(databaseURL)
	if err != nil {
		return "", err
	}

	switch dbType {
	case "postgresql":
		if info.Host == "" || info.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		u, err := url.Parse(databaseURL)
		if err != nil {
			return "", ErrInvalidDatabaseURL
		}

		u.Scheme = "postgres"

		query := u.Query()
		if query.Get("sslmode") == "" {
			query.Set("sslmode", "disable")
		}

		u.RawQuery = query.Encode()

		return u.String(), nil

	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = info.Username
		cfg.Passwd = info.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(info.Host, info.Port)
		cfg.DBName = info.Database

		if len(info.Options) > 0 {
			cfg.Params = info.Options
		}

		return cfg.FormatDSN(), nil

	case "sqlite":
		if info.Database == "" {
			return "", ErrInvalidConnectionInfo
		}

		return info.Database, nil

	default:
		return "", ErrUnsupportedDatabase
	}
}

func (c *DatabaseConnector) getDriverName(dbType string) string {
	switch dbType {
	case "postgresql":
		return "pgx"
	case "mysql":
		return "mysql"
	case "sqlite":
		return "sqlite3"
	default:
		return ""
	}
}

// ExecutePull connects to the configured database, extracts one schema and,
// when OutputPath is set, stores it as a YAML snapshot.
func ExecutePull(ctx context.Context, config PullConfig) (*PullResult, error) {
	connector := NewDatabaseConnector()

	if err := connector.ValidateConnectionString(config.DatabaseURL); err != nil {
		return nil, err
	}

	dbType := config.DatabaseType
	if dbType == "" {
		t, err := connector.ParseDatabaseURL(config.DatabaseURL)
		if err != nil {
			return nil, err
		}

		dbType = t
	}

	extractor, err := NewExtractor(dbType)
	if err != nil {
		return nil, err
	}

	extractConfig := ExtractConfig{
		Schema:        config.Schema,
		IncludeTables: config.IncludeTables,
		ExcludeTables: config.ExcludeTables,
	}
	if extractConfig.Schema == "" {
		extractConfig.Schema = connector.DefaultSchemaName(config.DatabaseURL)
	}

	if err := ValidateExtractConfig(extractConfig); err != nil {
		return nil, err
	}

	config.logf("Connecting to %s database", dbType)

	db, err := connector.Connect(ctx, config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	info, err := extractor.GetDatabaseInfo(ctx, db)
	if err != nil {
		return nil, err
	}

	config.logf("Connected to %s %s", info.Type, info.Version)

	schema, err := extractor.ExtractSchema(ctx, db, extractConfig)
	if err != nil {
		return nil, err
	}

	config.logf("Extracted %d tables from schema '%s'", len(schema.Tables), schema.Name)

	result := &PullResult{
		Schema:       schema,
		ExtractedAt:  time.Now(),
		DatabaseInfo: info,
	}

	if config.OutputPath != "" {
		if err := WriteSnapshot(schema, config.OutputPath); err != nil {
			return nil, err
		}

		result.OutputPath = config.OutputPath
		config.logf("Wrote schema snapshot to %s", config.OutputPath)
	}

	return result, nil
}
