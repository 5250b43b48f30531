package audit

import "time"

// Clock supplies the instants recorded in audit info.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	return time.Now().In(loc)
}

// FixedClock always returns the same instant. Useful in tests.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
