// Package audit records who created a catalog object and when, and who last changed it.
package audit

import (
	"fmt"
	"time"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/opt"
)

var (
	ErrMissingRequiredField = snapcatalog.ErrMissingRequiredField
	ErrBuilderReused        = snapcatalog.ErrBuilderReused
	ErrNoPrincipal          = snapcatalog.ErrNoPrincipal
)

// Info is an immutable audit record. Obtain one from a Builder or a Stamper.
type Info struct {
	creator          string
	createTime       time.Time
	lastModifier     opt.Value[string]
	lastModifiedTime opt.Value[time.Time]
}

// Creator is the user that created the object. Never empty on a built Info.
func (i Info) Creator() string { return i.creator }

// CreateTime is the creation instant. Never zero on a built Info.
func (i Info) CreateTime() time.Time { return i.createTime }

// LastModifier is set exactly when LastModifiedTime is set.
func (i Info) LastModifier() opt.Value[string] { return i.lastModifier }

// LastModifiedTime is set exactly when LastModifier is set.
func (i Info) LastModifiedTime() opt.Value[time.Time] { return i.lastModifiedTime }

// IsZero reports whether i is the zero Info. A built Info is never zero.
func (i Info) IsZero() bool {
	return i.creator == "" && i.createTime.IsZero() && !i.lastModifier.IsSet() && !i.lastModifiedTime.IsSet()
}

// Equal compares field by field, with instants compared by time.Time.Equal.
func (i Info) Equal(other Info) bool {
	if i.creator != other.creator || !i.createTime.Equal(other.createTime) {
		return false
	}

	if i.lastModifier != other.lastModifier {
		return false
	}

	a, aok := i.lastModifiedTime.Get()
	b, bok := other.lastModifiedTime.Get()

	if aok != bok {
		return false
	}

	return !aok || a.Equal(b)
}

// Touch returns a copy of i with the last-modified fields replaced.
func (i Info) Touch(modifier string, at time.Time) (Info, error) {
	if modifier == "" {
		return Info{}, fmt.Errorf("%w: lastModifier", ErrMissingRequiredField)
	}

	if at.IsZero() {
		return Info{}, fmt.Errorf("%w: lastModifiedTime", ErrMissingRequiredField)
	}

	next := i
	next.lastModifier = opt.Some(modifier)
	next.lastModifiedTime = opt.Some(at)

	return next, nil
}

func (i Info) String() string {
	return fmt.Sprintf("created by %s at %s, last modified by %s at %s",
		i.creator, i.createTime.Format(time.RFC3339), i.lastModifier, formatOptTime(i.lastModifiedTime))
}

func formatOptTime(v opt.Value[time.Time]) string {
	t, ok := v.Get()
	if !ok {
		return v.String()
	}

	return t.Format(time.RFC3339)
}
