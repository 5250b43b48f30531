package audit

import (
	"fmt"
	"time"

	"github.com/shibukawa/snapcatalog/opt"
)

// Builder accumulates audit fields and produces a single Info.
//
// Setters may be called any number of times; the last value wins. Build may
// fail and be retried after the missing field is supplied, but once it has
// succeeded the builder refuses to build again. A Builder is not safe for
// concurrent use.
type Builder struct {
	creator          opt.Value[string]
	createTime       opt.Value[time.Time]
	lastModifier     opt.Value[string]
	lastModifiedTime opt.Value[time.Time]
	built            bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithCreator sets the required creator.
func (b *Builder) WithCreator(creator string) *Builder {
	b.creator = opt.Some(creator)
	return b
}

// WithCreateTime sets the required creation instant.
func (b *Builder) WithCreateTime(at time.Time) *Builder {
	b.createTime = opt.Some(at)
	return b
}

// WithLastModifier sets the optional last modifier.
func (b *Builder) WithLastModifier(modifier string) *Builder {
	b.lastModifier = opt.Some(modifier)
	return b
}

// WithLastModifiedTime sets the optional last modification instant.
func (b *Builder) WithLastModifiedTime(at time.Time) *Builder {
	b.lastModifiedTime = opt.Some(at)
	return b
}

// Build validates the accumulated fields and returns the Info.
//
// creator and createTime are required. lastModifier and lastModifiedTime are
// optional but must be supplied together. An empty string or a zero
// time.Time counts as missing even when it was set explicitly, so such a
// value fails with ErrMissingRequiredField like an unset one.
func (b *Builder) Build() (Info, error) {
	if b.built {
		return Info{}, ErrBuilderReused
	}

	creator, ok := b.creator.Get()
	if !ok || creator == "" {
		return Info{}, fmt.Errorf("%w: creator", ErrMissingRequiredField)
	}

	createTime, ok := b.createTime.Get()
	if !ok || createTime.IsZero() {
		return Info{}, fmt.Errorf("%w: createTime", ErrMissingRequiredField)
	}

	modifier, hasModifier := b.lastModifier.Get()
	if hasModifier && modifier == "" {
		return Info{}, fmt.Errorf("%w: lastModifier", ErrMissingRequiredField)
	}

	modifiedTime, hasModifiedTime := b.lastModifiedTime.Get()
	if hasModifiedTime && modifiedTime.IsZero() {
		return Info{}, fmt.Errorf("%w: lastModifiedTime", ErrMissingRequiredField)
	}

	switch {
	case hasModifier && !hasModifiedTime:
		return Info{}, fmt.Errorf("%w: lastModifiedTime (required with lastModifier)", ErrMissingRequiredField)
	case hasModifiedTime && !hasModifier:
		return Info{}, fmt.Errorf("%w: lastModifier (required with lastModifiedTime)", ErrMissingRequiredField)
	}

	b.built = true

	return Info{
		creator:          creator,
		createTime:       createTime,
		lastModifier:     b.lastModifier,
		lastModifiedTime: b.lastModifiedTime,
	}, nil
}
