package catalog

import (
	"cmp"
	"context"
	"slices"
)

// Backend stores column records. Implementations must be safe for concurrent
// use and must reject a second record with the same table and
// case-insensitive name.
type Backend interface {
	Insert(ctx context.Context, rec Record) error
	// Update replaces the record with the same ID.
	Update(ctx context.Context, rec Record) error
	Get(ctx context.Context, table TableIdent, name string) (Record, error)
	// List returns the table's records ordered by position.
	List(ctx context.Context, table TableIdent) ([]Record, error)
	Tables(ctx context.Context) ([]TableIdent, error)
	Delete(ctx context.Context, table TableIdent, name string) error
	Close() error
}

func sortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.NameKey(), b.NameKey()))
	})
}

func sortedTables(seen map[string]TableIdent) []TableIdent {
	tables := make([]TableIdent, 0, len(seen))
	for _, t := range seen {
		tables = append(tables, t)
	}

	slices.SortFunc(tables, compareTables)

	return tables
}
