package datadict

import "errors"

// Common errors used throughout the datadict packages
var (
	// ErrSchemaValidationFailed indicates a schema broke the renderer's input contract.
	ErrSchemaValidationFailed = errors.New("schema validation failed")
	// ErrConfigFileExists indicates init would overwrite an existing configuration file.
	ErrConfigFileExists = errors.New("configuration file already exists")
	// ErrEnvironmentNotFound indicates the named database environment is not configured.
	ErrEnvironmentNotFound = errors.New("environment not found")
)
