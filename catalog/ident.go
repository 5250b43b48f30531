package catalog

import (
	"fmt"
	"strings"

	"github.com/shibukawa/snapcatalog/rel"
)

// TableIdent names the table a column belongs to. Schema may be empty.
type TableIdent struct {
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
	Name   string `yaml:"name" json:"name"`
}

// ParseTableIdent parses "table" or "schema.table".
func ParseTableIdent(s string) (TableIdent, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")

	var ident TableIdent

	switch len(parts) {
	case 1:
		ident = TableIdent{Name: parts[0]}
	case 2:
		if parts[0] == "" {
			return TableIdent{}, fmt.Errorf("%w: %q has an empty schema", ErrInvalidTableIdent, s)
		}

		ident = TableIdent{Schema: parts[0], Name: parts[1]}
	default:
		return TableIdent{}, fmt.Errorf("%w: %q has more than two parts", ErrInvalidTableIdent, s)
	}

	if err := ident.Validate(); err != nil {
		return TableIdent{}, err
	}

	return ident, nil
}

// Validate checks both parts against the default identifier rules.
func (t TableIdent) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: table name is empty", ErrInvalidTableIdent)
	}

	if err := rel.DefaultIdentifierRules.ValidateName(t.Name); err != nil {
		return fmt.Errorf("%w: table %q", ErrInvalidTableIdent, t.Name)
	}

	if t.Schema != "" {
		if err := rel.DefaultIdentifierRules.ValidateName(t.Schema); err != nil {
			return fmt.Errorf("%w: schema %q", ErrInvalidTableIdent, t.Schema)
		}
	}

	return nil
}

func (t TableIdent) String() string {
	if t.Schema == "" {
		return t.Name
	}

	return t.Schema + "." + t.Name
}

// key is the case-insensitive lookup key of the table.
func (t TableIdent) key() string {
	return strings.ToLower(t.String())
}

func compareTables(a, b TableIdent) int {
	return strings.Compare(a.key(), b.key())
}
