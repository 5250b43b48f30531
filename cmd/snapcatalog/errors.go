package main

import "errors"

// Sentinel errors for command operations
var (
	ErrUnknownFormat       = errors.New("unknown output format")
	ErrConflictingDefaults = errors.New("--default, --default-expr and --drop-default are mutually exclusive")
	ErrNoChanges           = errors.New("no changes requested")
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrEmptyConnection     = errors.New("empty connection string")
)
