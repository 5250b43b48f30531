package rel

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// NameValidator decides whether a column name is acceptable.
type NameValidator interface {
	ValidateName(name string) error
}

// NameValidatorFunc adapts a function to NameValidator.
type NameValidatorFunc func(name string) error

func (f NameValidatorFunc) ValidateName(name string) error { return f(name) }

// IdentifierRules limits identifier length (in characters) and shape.
type IdentifierRules struct {
	MaxLength int
	Pattern   *regexp.Regexp
}

// DefaultIdentifierRules accepts up to 128 characters starting with a letter
// or underscore, followed by letters, digits, underscores or dollar signs.
var DefaultIdentifierRules = IdentifierRules{
	MaxLength: 128,
	Pattern:   regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`),
}

// NewIdentifierRules builds rules from configuration values. Zero or empty
// values fall back to DefaultIdentifierRules.
func NewIdentifierRules(maxLength int, pattern string) (IdentifierRules, error) {
	rules := DefaultIdentifierRules

	if maxLength > 0 {
		rules.MaxLength = maxLength
	}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return IdentifierRules{}, fmt.Errorf("invalid identifier pattern: %w", err)
		}

		rules.Pattern = re
	}

	return rules, nil
}

func (r IdentifierRules) ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidColumnName)
	}

	if r.MaxLength > 0 && utf8.RuneCountInString(name) > r.MaxLength {
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidColumnName, name, r.MaxLength)
	}

	if r.Pattern != nil && !r.Pattern.MatchString(name) {
		return fmt.Errorf("%w: %q does not match %s", ErrInvalidColumnName, name, r.Pattern)
	}

	return nil
}
