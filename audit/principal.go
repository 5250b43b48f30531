package audit

import (
	"context"
	"fmt"
)

// Principal resolves the identity recorded as creator or last modifier.
type Principal interface {
	CurrentUser(ctx context.Context) (string, error)
}

// StaticPrincipal always reports the same user.
type StaticPrincipal string

func (p StaticPrincipal) CurrentUser(context.Context) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: static principal is empty", ErrNoPrincipal)
	}

	return string(p), nil
}

type userKey struct{}

// WithUser returns a context carrying user for ContextPrincipal.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// ContextPrincipal reads the user stored by WithUser, falling back to Fallback.
type ContextPrincipal struct {
	Fallback Principal
}

func (p ContextPrincipal) CurrentUser(ctx context.Context) (string, error) {
	if user, ok := ctx.Value(userKey{}).(string); ok && user != "" {
		return user, nil
	}

	if p.Fallback != nil {
		return p.Fallback.CurrentUser(ctx)
	}

	return "", fmt.Errorf("%w: no user in context", ErrNoPrincipal)
}
