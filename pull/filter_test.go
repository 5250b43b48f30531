package pull

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	snapcatalog "github.com/shibukawa/snapcatalog"
)

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr error
	}{
		{"Empty", Filter{}, nil},
		{"Disjoint", Filter{IncludeTables: []string{"users"}, ExcludeTables: []string{"temp_*"}}, nil},
		{"ConflictingSchemas", Filter{IncludeSchemas: []string{"public"}, ExcludeSchemas: []string{"PUBLIC"}}, ErrConflictingSchemaFilters},
		{"ConflictingTables", Filter{IncludeTables: []string{"users"}, ExcludeTables: []string{"users"}}, ErrConflictingTableFilters},
		{"BadPattern", Filter{IncludeTables: []string{"users["}}, ErrInvalidFilterPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.IsError(t, err, tt.wantErr)
		})
	}
}

func TestFilterInclude(t *testing.T) {
	filter := Filter{
		IncludeSchemas: []string{"public", "app_*"},
		ExcludeSchemas: []string{"app_archive"},
		IncludeTables:  []string{"users", "order*", "billing.*"},
		ExcludeTables:  []string{"orders_tmp"},
	}

	t.Run("Schemas", func(t *testing.T) {
		assert.True(t, filter.IncludeSchema("public"))
		assert.True(t, filter.IncludeSchema("App_Main"))
		assert.False(t, filter.IncludeSchema("app_archive"))
		assert.False(t, filter.IncludeSchema("other"))
	})

	t.Run("Tables", func(t *testing.T) {
		assert.True(t, filter.IncludeTable("public", "users"))
		assert.True(t, filter.IncludeTable("public", "orders"))
		assert.False(t, filter.IncludeTable("public", "orders_tmp"))
		assert.False(t, filter.IncludeTable("public", "invoices"))
		assert.True(t, filter.IncludeTable("billing", "invoices"))
	})

	t.Run("NoIncludeList", func(t *testing.T) {
		f := Filter{ExcludeTables: []string{"migrations"}}
		assert.True(t, f.IncludeTable("", "users"))
		assert.False(t, f.IncludeTable("", "Migrations"))
		assert.True(t, f.IncludeSchema("anything"))
	})
}

func TestMatchWildcard(t *testing.T) {
	tests := []struct {
		pattern, text string
		want          bool
	}{
		{"users", "users", true},
		{"users", "USERS", true},
		{"users", "user", false},
		{"temp_*", "temp_import", true},
		{"temp_*", "import_temp", false},
		{"log_?", "log_1", true},
		{"[", "[", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchWildcard(tt.pattern, tt.text))
		})
	}
}

func TestFilterFromConfig(t *testing.T) {
	cfg := snapcatalog.PullFilterConfig{IncludeTables: []string{"users"}, ExcludeSchemas: []string{"audit"}}

	f := FilterFromConfig(cfg)
	assert.Equal(t, []string{"users"}, f.IncludeTables)
	assert.Equal(t, []string{"audit"}, f.ExcludeSchemas)
	assert.False(t, f.isEmpty())
	assert.True(t, Filter{}.isEmpty())

	f.IncludeTables[0] = "changed"
	assert.Equal(t, "users", cfg.IncludeTables[0])
}
