package rank

import (
	"errors"
	"fmt"
)

// ErrPrecondition is matched by every error caused by invalid ranking input.
var ErrPrecondition = errors.New("rank precondition violated")

// ErrDimensionMismatch indicates a candidate vector whose length differs from
// the query's.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	// Index is the position of the offending candidate in the pool.
	Index int
	ID    string
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d (candidate %q at %d)", e.Expected, e.Actual, e.ID, e.Index)
}

// Is reports whether target is ErrPrecondition.
func (e *ErrDimensionMismatch) Is(target error) bool {
	return target == ErrPrecondition
}
