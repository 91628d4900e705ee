// Package repositories wraps gorm access to the domain tables. Every
// method takes a context and a repository never decides business rules;
// the services do.
package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStaleVersion means a compare-and-swap lost to a concurrent write.
	ErrStaleVersion = errors.New("stale version")
	// ErrDuplicate is returned for unique key violations.
	ErrDuplicate = errors.New("duplicate record")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// Stamp returns now truncated to microseconds, moved past prev when the
// clock has not advanced. Stored timestamps therefore strictly increase
// per row on every backend.
func Stamp(now time.Time, prev time.Time) time.Time {
	t := now.UTC().Truncate(time.Microsecond)
	if !t.After(prev) {
		t = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return t
}
