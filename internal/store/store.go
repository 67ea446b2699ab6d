// Package store defines the SummaryStore interface for archiving averaged
// results, with SQLite and in-memory implementations.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/nvandessel/reportsummary/internal/models"
)

// ErrNotFound is returned when no summary has the requested ID.
var ErrNotFound = errors.New("summary not found")

// Summary is one archived averaged result.
type Summary struct {
	ID         string          `json:"id"`
	Family     string          `json:"family"`
	Kind       string          `json:"kind"`
	ReportsDir string          `json:"reports_dir"`
	Seeds      []string        `json:"seeds"`
	Labels     []string        `json:"labels,omitempty"`
	Values     []models.Series `json:"values,omitempty"`
	Scalars    []float64       `json:"scalars,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewSummary builds an archive record for result. The ID is derived from
// the family, seeds and creation time.
func NewSummary(reportsDir string, result models.AveragedResult, createdAt time.Time) Summary {
	createdAt = createdAt.UTC()
	return Summary{
		ID:         summaryID(result.Family, result.Seeds, createdAt),
		Family:     result.Family,
		Kind:       string(result.Kind),
		ReportsDir: reportsDir,
		Seeds:      slices.Clone(result.Seeds),
		Labels:     slices.Clone(result.Labels),
		Values:     result.Values,
		Scalars:    result.Scalars,
		CreatedAt:  createdAt,
	}
}

// Result converts the record back into an averaged result.
func (s Summary) Result() models.AveragedResult {
	return models.AveragedResult{
		Family:  s.Family,
		Kind:    models.ResultKind(s.Kind),
		Seeds:   s.Seeds,
		Labels:  s.Labels,
		Values:  s.Values,
		Scalars: s.Scalars,
	}
}

func summaryID(family string, seeds []string, createdAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(family))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(seeds, " ")))
	h.Write([]byte{0})
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Family string
	Since  time.Time
	Limit  int
}

func (f ListFilter) matches(s Summary) bool {
	if f.Family != "" && s.Family != f.Family {
		return false
	}
	if !f.Since.IsZero() && s.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// SummaryStore archives averaged results.
type SummaryStore interface {
	// Save inserts or replaces a summary and returns its ID.
	Save(ctx context.Context, s Summary) (string, error)

	// Get returns the summary with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Summary, error)

	// List returns matching summaries, newest first.
	List(ctx context.Context, filter ListFilter) ([]Summary, error)

	// Delete removes a summary. Deleting a missing ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}
