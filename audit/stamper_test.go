package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestPrincipal(t *testing.T) {
	ctx := context.Background()

	t.Run("Static", func(t *testing.T) {
		user, err := StaticPrincipal("alice").CurrentUser(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "alice", user)

		_, err = StaticPrincipal("").CurrentUser(ctx)
		assert.True(t, errors.Is(err, ErrNoPrincipal))
	})

	t.Run("Context", func(t *testing.T) {
		p := ContextPrincipal{}

		user, err := p.CurrentUser(WithUser(ctx, "bob"))
		assert.NoError(t, err)
		assert.Equal(t, "bob", user)

		_, err = p.CurrentUser(ctx)
		assert.True(t, errors.Is(err, ErrNoPrincipal))
	})

	t.Run("ContextFallback", func(t *testing.T) {
		p := ContextPrincipal{Fallback: StaticPrincipal("system")}

		user, err := p.CurrentUser(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "system", user)

		user, err = p.CurrentUser(WithUser(ctx, "bob"))
		assert.NoError(t, err)
		assert.Equal(t, "bob", user)
	})
}

func TestClock(t *testing.T) {
	fixed := FixedClock(created)
	assert.Equal(t, created, fixed.Now())

	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, tokyo, SystemClock{Location: tokyo}.Now().Location())
}

func TestStamper(t *testing.T) {
	ctx := context.Background()

	t.Run("Created", func(t *testing.T) {
		s := &Stamper{Clock: FixedClock(created), Principal: StaticPrincipal("alice")}

		info, err := s.Created(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "alice", info.Creator())
		assert.Equal(t, created, info.CreateTime())
		assert.Equal(t, "alice", info.LastModifier().MustGet())
		assert.Equal(t, created, info.LastModifiedTime().MustGet())
	})

	t.Run("Modified", func(t *testing.T) {
		s := &Stamper{Clock: FixedClock(created), Principal: ContextPrincipal{}}

		info, err := s.Created(WithUser(ctx, "alice"))
		assert.NoError(t, err)

		s.Clock = FixedClock(modified)

		next, err := s.Modified(WithUser(ctx, "bob"), info)
		assert.NoError(t, err)
		assert.Equal(t, "alice", next.Creator())
		assert.Equal(t, created, next.CreateTime())
		assert.Equal(t, "bob", next.LastModifier().MustGet())
		assert.Equal(t, modified, next.LastModifiedTime().MustGet())
	})

	t.Run("ModifiedRequiresPrevious", func(t *testing.T) {
		s := &Stamper{Clock: FixedClock(created), Principal: StaticPrincipal("alice")}

		_, err := s.Modified(ctx, Info{})
		assert.True(t, errors.Is(err, ErrMissingRequiredField))
	})

	t.Run("NoPrincipal", func(t *testing.T) {
		_, err := (&Stamper{}).Created(ctx)
		assert.True(t, errors.Is(err, ErrNoPrincipal))

		_, err = NewStamper(ContextPrincipal{}).Created(ctx)
		assert.True(t, errors.Is(err, ErrNoPrincipal))
	})

	t.Run("DefaultClock", func(t *testing.T) {
		before := time.Now()

		info, err := NewStamper(StaticPrincipal("alice")).Created(ctx)
		assert.NoError(t, err)
		assert.False(t, info.CreateTime().Before(before.Truncate(time.Second)))
	})
}
