// Package concurrency is the bounded-concurrency substrate: a worker pool
// with core/max sizing, cancellable futures, a bounded-concurrency driver
// that streams an unbounded task iterator through the pool, and the
// supporting termination and scheduling primitives.
package concurrency

import (
	"fmt"

	"dev.helix.gds/internal/errs"
)

// Concurrency is a validated, immutable parallelism level. Always >= 1.
type Concurrency struct {
	value int
}

// New validates n and returns a Concurrency wrapping it. n must be >= 1.
func New(n int) (Concurrency, error) {
	if n < 1 {
		return Concurrency{}, &errs.InvalidArgumentError{Field: "n", Message: fmt.Sprintf("concurrency must be >= 1, got %d", n)}
	}
	return Concurrency{value: n}, nil
}

// MustNew is New but panics on invalid input; intended for package-level
// constants and tests where n is a compile-time literal.
func MustNew(n int) Concurrency {
	c, err := New(n)
	if err != nil {
		panic(err)
	}
	return c
}

// Value returns the wrapped parallelism level.
func (c Concurrency) Value() int {
	return c.value
}

// Equal reports whether two Concurrency values carry the same level.
func (c Concurrency) Equal(other Concurrency) bool {
	return c.value == other.value
}

func (c Concurrency) String() string {
	return fmt.Sprintf("Concurrency(%d)", c.value)
}
