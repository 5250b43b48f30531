package pull

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

// Filter selects the schemas and tables a pull extracts. Entries may use
// filepath.Match wildcards; matching is case-insensitive.
type Filter struct {
	IncludeSchemas []string
	ExcludeSchemas []string
	IncludeTables  []string
	ExcludeTables  []string
}

// FilterFromConfig copies the pull section of the configuration.
func FilterFromConfig(cfg snapcatalog.PullFilterConfig) Filter {
	return Filter{
		IncludeSchemas: slices.Clone(cfg.IncludeSchemas),
		ExcludeSchemas: slices.Clone(cfg.ExcludeSchemas),
		IncludeTables:  slices.Clone(cfg.IncludeTables),
		ExcludeTables:  slices.Clone(cfg.ExcludeTables),
	}
}

// Validate rejects malformed patterns and entries listed as both included and excluded.
func (f Filter) Validate() error {
	for _, list := range [][]string{f.IncludeSchemas, f.ExcludeSchemas, f.IncludeTables, f.ExcludeTables} {
		for _, pattern := range list {
			if _, err := filepath.Match(pattern, ""); err != nil {
				return fmt.Errorf("%w: %q: %w", ErrInvalidFilterPattern, pattern, err)
			}
		}
	}

	if overlaps(f.IncludeSchemas, f.ExcludeSchemas) {
		return ErrConflictingSchemaFilters
	}

	if overlaps(f.IncludeTables, f.ExcludeTables) {
		return ErrConflictingTableFilters
	}

	return nil
}

func overlaps(include, exclude []string) bool {
	for _, in := range include {
		for _, ex := range exclude {
			if strings.EqualFold(in, ex) {
				return true
			}
		}
	}

	return false
}

// IncludeSchema reports whether schemaName passes the schema filters.
func (f Filter) IncludeSchema(schemaName string) bool {
	return included(schemaName, f.IncludeSchemas, f.ExcludeSchemas)
}

// IncludeTable reports whether tableName passes the table filters. Patterns
// containing a dot are matched against "schema.table".
func (f Filter) IncludeTable(schemaName, tableName string) bool {
	qualified := tableName
	if schemaName != "" {
		qualified = schemaName + "." + tableName
	}

	for _, pattern := range f.ExcludeTables {
		if matchTable(pattern, tableName, qualified) {
			return false
		}
	}

	if len(f.IncludeTables) == 0 {
		return true
	}

	for _, pattern := range f.IncludeTables {
		if matchTable(pattern, tableName, qualified) {
			return true
		}
	}

	return false
}

func matchTable(pattern, tableName, qualified string) bool {
	if strings.Contains(pattern, ".") {
		return MatchWildcard(pattern, qualified)
	}

	return MatchWildcard(pattern, tableName)
}

func included(name string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if MatchWildcard(pattern, name) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for _, pattern := range include {
		if MatchWildcard(pattern, name) {
			return true
		}
	}

	return false
}

// MatchWildcard performs case-insensitive wildcard matching with filepath.Match syntax
func MatchWildcard(pattern, text string) bool {
	pattern = strings.ToLower(pattern)
	text = strings.ToLower(text)

	if !strings.ContainsAny(pattern, "*?[") {
		return pattern == text
	}

	matched, err := filepath.Match(pattern, text)
	if err != nil {
		// Validate reports bad patterns; fall back to exact match here
		return pattern == text
	}

	return matched
}

func (f Filter) isEmpty() bool {
	return len(f.IncludeSchemas) == 0 && len(f.ExcludeSchemas) == 0 && len(f.IncludeTables) == 0 && len(f.ExcludeTables) == 0
}
