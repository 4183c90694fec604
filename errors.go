package simili

import (
	"errors"
	"fmt"

	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/rank"
)

var (
	// ErrNotFound is returned when a track is not in the catalog.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when a negative result limit is requested.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrEmptyQuery is returned by Search for blank queries.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrNilSource is returned by New when no catalog source is given.
	ErrNilSource = errors.New("catalog source is nil")
)

// ErrDimensionMismatch indicates a candidate vector whose length differs from
// the query vector.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	// ID of the offending candidate.
	ID    string
	cause error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch for %q: expected %d, got %d", e.ID, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var dm *rank.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, ID: dm.ID, cause: err}
	}

	return err
}
