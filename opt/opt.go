// Package opt provides an explicit optional value used wherever "not set"
// must stay distinguishable from a legitimate zero value.
package opt

import (
	"encoding/json"
	"fmt"
)

// Value holds either a present value or nothing. The zero Value is unset.
type Value[T any] struct {
	value T
	set   bool
}

// Some returns a present Value.
func Some[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// None returns an unset Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// FromPtr converts a nil-able pointer into a Value.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return None[T]()
	}

	return Some(*p)
}

// Get returns the held value and whether it is present.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.set
}

// IsSet reports whether a value is present.
func (v Value[T]) IsSet() bool {
	return v.set
}

// OrElse returns the held value, or def when unset.
func (v Value[T]) OrElse(def T) T {
	if !v.set {
		return def
	}

	return v.value
}

// MustGet returns the held value and panics when unset.
func (v Value[T]) MustGet() T {
	if !v.set {
		panic("opt: MustGet on unset value")
	}

	return v.value
}

// Ptr returns a pointer to a copy of the held value, or nil when unset.
func (v Value[T]) Ptr() *T {
	if !v.set {
		return nil
	}

	c := v.value

	return &c
}

func (v Value[T]) String() string {
	if !v.set {
		return "<unset>"
	}

	return fmt.Sprint(v.value)
}

// MarshalJSON encodes an unset value as null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}

	return json.Marshal(v.value)
}

// UnmarshalJSON decodes null as an unset value.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None[T]()
		return nil
	}

	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*v = Some(decoded)

	return nil
}
