package aggregate

import (
	"fmt"
	"strings"

	"github.com/nvandessel/reportsummary/internal/models"
)

// Padding names how a non-axis series is extended to the axis length.
type Padding int

const (
	// PadNone leaves the series untouched. Used for the axis position.
	PadNone Padding = iota
	// PadZero appends zeros.
	PadZero
	// PadReplicate appends copies of the final sample.
	PadReplicate
)

func (p Padding) String() string {
	switch p {
	case PadNone:
		return "none"
	case PadZero:
		return "zero"
	case PadReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("Padding(%d)", int(p))
	}
}

// ParsePadding maps "none", "zero" or "replicate" to a Padding.
func ParsePadding(s string) (Padding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return PadNone, nil
	case "zero", "zero-fill":
		return PadZero, nil
	case "replicate", "replicate-last":
		return PadReplicate, nil
	default:
		return PadNone, fmt.Errorf("unknown padding %q", s)
	}
}

// ZeroFill returns s extended with zeros to length n.
// A series already at length n is returned unchanged.
func ZeroFill(s models.Series, n int) (models.Series, error) {
	if len(s) > n {
		return nil, fmt.Errorf("series length %d exceeds axis length %d: %w", len(s), n, ErrShapeMismatch)
	}
	if len(s) == n {
		return s, nil
	}
	out := make(models.Series, n)
	copy(out, s)
	return out, nil
}

// ReplicateLast returns s extended to length n by repeating its final
// sample. An empty series cannot be replicated unless n is zero.
func ReplicateLast(s models.Series, n int) (models.Series, error) {
	if len(s) > n {
		return nil, fmt.Errorf("series length %d exceeds axis length %d: %w", len(s), n, ErrShapeMismatch)
	}
	if len(s) == n {
		return s, nil
	}
	last, ok := s.Last()
	if !ok {
		return nil, ErrEmptySeriesForReplication
	}
	out := make(models.Series, n)
	copy(out, s)
	for i := len(s); i < n; i++ {
		out[i] = last
	}
	return out, nil
}

// Pad applies policy to a single series.
func (p Padding) Pad(s models.Series, n int) (models.Series, error) {
	switch p {
	case PadZero:
		return ZeroFill(s, n)
	case PadReplicate:
		return ReplicateLast(s, n)
	case PadNone:
		return s, nil
	default:
		return nil, fmt.Errorf("unknown padding %d", int(p))
	}
}

// PadStats counts the samples appended per position across a set.
type PadStats struct {
	Appended []int
}

// PadSet pads every run of a unified set in place according to policy,
// which holds one Padding per tuple position. Position 0 is the axis and
// is never padded.
func PadSet(set models.RunResultSet, policy []Padding) (PadStats, error) {
	arity, err := checkArity(set.Runs)
	if err != nil {
		return PadStats{}, withFamily(set.Family, err)
	}
	if len(policy) != arity {
		return PadStats{}, withFamily(set.Family,
			fmt.Errorf("padding policy has %d positions, runs have %d: %w", len(policy), arity, ErrShapeMismatch))
	}

	stats := PadStats{Appended: make([]int, arity)}
	for i := range set.Runs {
		r := &set.Runs[i]
		n := len(r.Axis())
		for pos := 1; pos < arity; pos++ {
			before := len(r.Values[pos])
			padded, err := policy[pos].Pad(r.Values[pos], n)
			if err != nil {
				return stats, withFamily(set.Family, seedError(r.Seed, fmt.Errorf("position %d: %w", pos, err)))
			}
			r.Values[pos] = padded
			stats.Appended[pos] += len(padded) - before
		}
	}
	return stats, nil
}
