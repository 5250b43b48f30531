package catalog

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseTableIdent(t *testing.T) {
	testCases := []struct {
		input    string
		expected TableIdent
	}{
		{"users", TableIdent{Name: "users"}},
		{"app.users", TableIdent{Schema: "app", Name: "users"}},
		{" public.Orders ", TableIdent{Schema: "public", Name: "Orders"}},
	}

	for _, tc := range testCases {
		ident, err := ParseTableIdent(tc.input)
		assert.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, ident)
	}

	for _, input := range []string{"", "a.b.c", ".users", "app.", "bad name", "../etc"} {
		_, err := ParseTableIdent(input)
		assert.True(t, errors.Is(err, ErrInvalidTableIdent), "input %q: %v", input, err)
	}

	assert.Equal(t, "app.users", TableIdent{Schema: "app", Name: "users"}.String())
	assert.Equal(t, "users", TableIdent{Name: "users"}.String())
}
