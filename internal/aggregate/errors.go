package aggregate

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch means tuple arity differs across runs, a series is
	// longer than the unified axis, or series lengths disagree at averaging.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmptyInput means zero runs or zero tuples were supplied.
	ErrEmptyInput = errors.New("empty input")

	// ErrEmptySeriesForReplication means replicate-last padding was asked
	// to extend a series that has no samples.
	ErrEmptySeriesForReplication = errors.New("cannot replicate last sample of empty series")

	// ErrUpstreamParse means a report for some seed was missing or malformed.
	ErrUpstreamParse = errors.New("upstream parse failure")
)

// FamilyError attributes an aggregation failure to a metric family and,
// when known, the seed of the offending run.
type FamilyError struct {
	Family string
	Seed   string
	Err    error
}

func (e *FamilyError) Error() string {
	switch {
	case e.Family != "" && e.Seed != "":
		return fmt.Sprintf("family %s, seed %s: %v", e.Family, e.Seed, e.Err)
	case e.Family != "":
		return fmt.Sprintf("family %s: %v", e.Family, e.Err)
	case e.Seed != "":
		return fmt.Sprintf("seed %s: %v", e.Seed, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *FamilyError) Unwrap() error {
	return e.Err
}

// seedError wraps err for the run with the given seed.
func seedError(seed string, err error) error {
	return &FamilyError{Seed: seed, Err: err}
}

// withFamily stamps family onto err, reusing an existing FamilyError
// so the seed is preserved.
func withFamily(family string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FamilyError
	if errors.As(err, &fe) {
		if fe.Family == "" {
			fe.Family = family
		}
		return fe
	}
	return &FamilyError{Family: family, Err: err}
}

// IsShapeMismatch reports whether err is or wraps ErrShapeMismatch.
func IsShapeMismatch(err error) bool {
	return errors.Is(err, ErrShapeMismatch)
}

// IsUpstreamParse reports whether err is or wraps ErrUpstreamParse.
func IsUpstreamParse(err error) bool {
	return errors.Is(err, ErrUpstreamParse)
}
