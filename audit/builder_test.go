package audit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

var (
	created  = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	modified = time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
)

func TestBuilder(t *testing.T) {
	t.Run("RequiredFieldsOnly", func(t *testing.T) {
		info, err := NewBuilder().WithCreator("alice").WithCreateTime(created).Build()
		assert.NoError(t, err)

		assert.Equal(t, "alice", info.Creator())
		assert.Equal(t, created, info.CreateTime())
		assert.False(t, info.LastModifier().IsSet())
		assert.False(t, info.LastModifiedTime().IsSet())
		assert.False(t, info.IsZero())
	})

	t.Run("AllFields", func(t *testing.T) {
		info, err := NewBuilder().
			WithCreator("alice").
			WithCreateTime(created).
			WithLastModifier("bob").
			WithLastModifiedTime(modified).
			Build()
		assert.NoError(t, err)

		assert.Equal(t, "alice", info.Creator())
		assert.Equal(t, created, info.CreateTime())
		assert.Equal(t, "bob", info.LastModifier().MustGet())
		assert.Equal(t, modified, info.LastModifiedTime().MustGet())
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		info, err := NewBuilder().
			WithCreator("alice").
			WithCreator("carol").
			WithCreateTime(modified).
			WithCreateTime(created).
			Build()
		assert.NoError(t, err)

		assert.Equal(t, "carol", info.Creator())
		assert.Equal(t, created, info.CreateTime())
	})

	t.Run("RepeatedSetterIsIdempotent", func(t *testing.T) {
		once, err := NewBuilder().WithCreator("alice").WithCreateTime(created).Build()
		assert.NoError(t, err)

		twice, err := NewBuilder().WithCreator("alice").WithCreator("alice").WithCreateTime(created).Build()
		assert.NoError(t, err)

		assert.Equal(t, once, twice)
	})

	t.Run("AllFourFieldsAsSupplied", func(t *testing.T) {
		t0 := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

		info, err := NewBuilder().
			WithCreator("test-user").
			WithCreateTime(t0).
			WithLastModifier("test-user").
			WithLastModifiedTime(t0).
			Build()
		assert.NoError(t, err)

		assert.Equal(t, "test-user", info.Creator())
		assert.Equal(t, t0, info.CreateTime())
		assert.Equal(t, "test-user", info.LastModifier().MustGet())
		assert.Equal(t, t0, info.LastModifiedTime().MustGet())
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		testCases := []struct {
			name    string
			builder *Builder
			field   string
		}{
			{"nothing set", NewBuilder(), "creator"},
			{"no creator", NewBuilder().WithCreateTime(created), "creator"},
			{"empty creator", NewBuilder().WithCreator("").WithCreateTime(created), "creator"},
			{"no create time", NewBuilder().WithCreator("alice"), "createTime"},
			{"zero create time", NewBuilder().WithCreator("alice").WithCreateTime(time.Time{}), "createTime"},
			{"modifier without time", NewBuilder().WithCreator("alice").WithCreateTime(created).WithLastModifier("bob"), "lastModifiedTime"},
			{"time without modifier", NewBuilder().WithCreator("alice").WithCreateTime(created).WithLastModifiedTime(modified), "lastModifier"},
			{"empty modifier", NewBuilder().WithCreator("alice").WithCreateTime(created).WithLastModifier("").WithLastModifiedTime(modified), "lastModifier"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				info, err := tc.builder.Build()
				assert.True(t, errors.Is(err, ErrMissingRequiredField), "got %v", err)
				assert.True(t, strings.Contains(err.Error(), tc.field), "error %q should name %s", err, tc.field)
				assert.True(t, info.IsZero())
			})
		}
	})

	t.Run("FailedBuildCanBeRetried", func(t *testing.T) {
		b := NewBuilder().WithCreator("alice")

		_, err := b.Build()
		assert.True(t, errors.Is(err, ErrMissingRequiredField))

		info, err := b.WithCreateTime(created).Build()
		assert.NoError(t, err)
		assert.Equal(t, "alice", info.Creator())
	})

	t.Run("SecondBuildIsRejected", func(t *testing.T) {
		b := NewBuilder().WithCreator("alice").WithCreateTime(created)

		first, err := b.Build()
		assert.NoError(t, err)

		second, err := b.Build()
		assert.True(t, errors.Is(err, ErrBuilderReused))
		assert.True(t, second.IsZero())
		assert.Equal(t, "alice", first.Creator())
	})

	t.Run("BuiltInfoIsIndependentOfBuilder", func(t *testing.T) {
		b := NewBuilder().WithCreator("alice").WithCreateTime(created)

		info, err := b.Build()
		assert.NoError(t, err)

		b.WithCreator("mallory")
		assert.Equal(t, "alice", info.Creator())
	})
}

func TestInfo(t *testing.T) {
	base, err := NewBuilder().WithCreator("alice").WithCreateTime(created).Build()
	assert.NoError(t, err)

	t.Run("Touch", func(t *testing.T) {
		touched, err := base.Touch("bob", modified)
		assert.NoError(t, err)

		assert.Equal(t, "alice", touched.Creator())
		assert.Equal(t, created, touched.CreateTime())
		assert.Equal(t, "bob", touched.LastModifier().MustGet())
		assert.Equal(t, modified, touched.LastModifiedTime().MustGet())

		// the receiver is unchanged
		assert.False(t, base.LastModifier().IsSet())
	})

	t.Run("TouchRejectsMissingFields", func(t *testing.T) {
		_, err := base.Touch("", modified)
		assert.True(t, errors.Is(err, ErrMissingRequiredField))

		_, err = base.Touch("bob", time.Time{})
		assert.True(t, errors.Is(err, ErrMissingRequiredField))
	})

	t.Run("Equal", func(t *testing.T) {
		same, err := NewBuilder().WithCreator("alice").WithCreateTime(created.In(time.FixedZone("JST", 9*3600))).Build()
		assert.NoError(t, err)
		assert.True(t, base.Equal(same))

		touched, err := base.Touch("bob", modified)
		assert.NoError(t, err)
		assert.False(t, base.Equal(touched))

		again, err := base.Touch("bob", modified.In(time.FixedZone("EST", -5*3600)))
		assert.NoError(t, err)
		assert.True(t, touched.Equal(again))
	})

	t.Run("ZeroInfo", func(t *testing.T) {
		var zero Info
		assert.True(t, zero.IsZero())
		assert.False(t, zero.LastModifier().IsSet())
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "created by alice at 2024-03-01T09:30:00Z, last modified by <unset> at <unset>", base.String())
	})
}
