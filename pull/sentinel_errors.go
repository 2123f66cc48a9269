package pull

import "errors"

// Connection errors
var (
	ErrConnectionFailed    = errors.New("failed to connect to database")
	ErrInvalidDatabaseURL  = errors.New("invalid database URL")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Schema extraction errors
var (
	ErrSchemaNotFound       = errors.New("schema not found")
	ErrNoDatabaseSelected   = errors.New("no database selected: name one in the URL or pass a schema")
	ErrQueryExecutionFailed = errors.New("query execution failed")
)

// Configuration errors
var (
	ErrEmptyDatabaseURL        = errors.New("database URL cannot be empty")
	ErrEmptyDatabaseType       = errors.New("database type cannot be empty")
	ErrInvalidConnectionInfo   = errors.New("invalid connection info")
	ErrConflictingTableFilters = errors.New("conflicting table filters: same table in both include and exclude lists")
)

// Snapshot errors
var (
	ErrSnapshotWriteFailed = errors.New("failed to write schema snapshot")
	ErrSnapshotReadFailed  = errors.New("failed to read schema snapshot")
)
