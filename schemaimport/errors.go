package schemaimport

import "errors"

var (
	// ErrTblsConfigNotFound is returned when neither an explicit nor a default tbls config file exists.
	ErrTblsConfigNotFound = errors.New("tbls config not found")
	// ErrUnsupportedDSN is returned when the tbls dsn names a database no extractor handles.
	ErrUnsupportedDSN = errors.New("unsupported tbls dsn")
	// ErrSchemaJSONNotFound is returned when schema.json does not exist at the resolved path.
	ErrSchemaJSONNotFound = errors.New("schema.json not found")
	// ErrInvalidSchemaJSON is returned when schema.json cannot be decoded or lacks a driver or tables.
	ErrInvalidSchemaJSON = errors.New("invalid schema.json")
	// ErrSchemaNotLoaded is returned by Convert before LoadSchemaJSON succeeded.
	ErrSchemaNotLoaded = errors.New("schema.json not loaded")
	// ErrDialectMismatch is returned when schema.json was generated by a different driver than the tbls dsn names.
	ErrDialectMismatch = errors.New("schema.json driver does not match tbls dsn")
)
