package pull

import (
	"errors"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// Extraction errors
var (
	ErrUnsupportedDatabase  = snapcatalog.ErrUnsupportedDialect
	ErrQueryExecutionFailed = errors.New("query execution failed")
	ErrUnsupportedDefault   = errors.New("unsupported default value")
)

// Configuration errors
var (
	ErrConflictingSchemaFilters = errors.New("conflicting schema filters: same schema in both include and exclude lists")
	ErrConflictingTableFilters  = errors.New("conflicting table filters: same table in both include and exclude lists")
	ErrInvalidFilterPattern     = errors.New("invalid filter pattern")
)
