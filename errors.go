package snapcatalog

import "errors"

// Common errors used throughout the SnapCatalog packages
var (
	// ErrInvalidTypeParameter indicates a type factory received an invalid parameter combination.
	// Type system errors
	ErrInvalidTypeParameter = errors.New("invalid type parameter")
	// ErrUnknownType indicates a type name could not be resolved.
	ErrUnknownType = errors.New("unknown type")
	// ErrUnsupportedDialect indicates a database dialect is not supported.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrMissingRequiredField indicates a builder was finalized without a required field.
	// Audit errors
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrBuilderReused indicates Build was called on a builder that already produced a value.
	ErrBuilderReused = errors.New("builder already built")
	// ErrNoPrincipal indicates no user identity was available for audit stamping.
	ErrNoPrincipal = errors.New("no principal available")

	// ErrInvalidColumnName indicates a column name is empty or violates identifier rules.
	// Column errors
	ErrInvalidColumnName = errors.New("invalid column name")
	// ErrIncompatibleDefaultValue indicates a default value cannot be assigned to the column type.
	ErrIncompatibleDefaultValue = errors.New("incompatible default value")
	// ErrInvalidAutoIncrement indicates auto increment was requested on an unsupported column.
	ErrInvalidAutoIncrement = errors.New("invalid auto increment column")
	// ErrInvalidLiteral indicates a literal text could not be parsed for its type.
	ErrInvalidLiteral = errors.New("invalid literal")

	// ErrConfigValidation is returned when configuration validation fails.
	// Configuration errors
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrConfigFileNotFound indicates a configuration file could not be located.
	ErrConfigFileNotFound = errors.New("configuration file not found")
)
