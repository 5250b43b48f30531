package catalog

import "errors"

// Storage errors
var (
	ErrColumnNotFound      = errors.New("column not found")
	ErrColumnAlreadyExists = errors.New("column already exists")
	ErrInvalidTableIdent   = errors.New("invalid table identifier")
	ErrCorruptRecord       = errors.New("corrupt column record")
)

// Configuration errors
var (
	ErrUnsupportedBackend = errors.New("unsupported catalog backend")
	ErrMissingDatabase    = errors.New("no database configured for environment")
)
