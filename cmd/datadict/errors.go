package main

import "errors"

// Sentinel errors for command operations
var (
	ErrConflictingSources    = errors.New("only one of --db, --env, --snapshot, --tbls, --tbls-config, --mwb may be given")
	ErrNoDatabasesConfigured = errors.New("no databases configured")
	ErrMissingDBOrEnv        = errors.New("either --db or --env must be specified")
	ErrEmptyConnectionString = errors.New("empty connection string")
	ErrInvalidDate           = errors.New("invalid --date, expected YYYY-MM-DD")
)
