package audit

import (
	"context"
	"fmt"
	"time"
)

// Stamper produces audit info for create and modify operations.
type Stamper struct {
	Clock     Clock
	Principal Principal
}

// NewStamper returns a Stamper using the system clock in UTC.
func NewStamper(principal Principal) *Stamper {
	return &Stamper{Clock: SystemClock{}, Principal: principal}
}

// Created builds audit info for a newly created object. The creator is also
// recorded as the first modifier.
func (s *Stamper) Created(ctx context.Context) (Info, error) {
	user, now, err := s.current(ctx)
	if err != nil {
		return Info{}, err
	}

	return NewBuilder().
		WithCreator(user).
		WithCreateTime(now).
		WithLastModifier(user).
		WithLastModifiedTime(now).
		Build()
}

// Modified refreshes the last-modified fields of prev.
func (s *Stamper) Modified(ctx context.Context, prev Info) (Info, error) {
	if prev.IsZero() {
		return Info{}, fmt.Errorf("%w: previous audit info is empty", ErrMissingRequiredField)
	}

	user, now, err := s.current(ctx)
	if err != nil {
		return Info{}, err
	}

	return prev.Touch(user, now)
}

func (s *Stamper) current(ctx context.Context) (string, time.Time, error) {
	if s.Principal == nil {
		return "", time.Time{}, fmt.Errorf("%w: stamper has no principal", ErrNoPrincipal)
	}

	user, err := s.Principal.CurrentUser(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return user, clock.Now(), nil
}
