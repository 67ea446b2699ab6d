package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// timeLayout is fixed width so created_at compares in time order as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteSummaryStore implements SummaryStore using SQLite for persistence.
type SQLiteSummaryStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteSummaryStore opens or creates the archive at dbPath.
func NewSQLiteSummaryStore(dbPath string) (*SQLiteSummaryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSummaryStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteSummaryStore) Path() string {
	return s.dbPath
}

// Save inserts or replaces a summary.
func (s *SQLiteSummaryStore) Save(ctx context.Context, sum Summary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sum.ID == "" {
		return "", fmt.Errorf("summary ID is required")
	}

	seeds, err := json.Marshal(sum.Seeds)
	if err != nil {
		return "", fmt.Errorf("failed to marshal seeds: %w", err)
	}
	labels, err := json.Marshal(sum.Labels)
	if err != nil {
		return "", fmt.Errorf("failed to marshal labels: %w", err)
	}
	values, err := json.Marshal(sum.Values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal series values: %w", err)
	}
	scalars, err := json.Marshal(sum.Scalars)
	if err != nil {
		return "", fmt.Errorf("failed to marshal scalar values: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO summaries
			(id, family, kind, reports_dir, seeds, labels, series_values, scalar_values, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.Family, sum.Kind, sum.ReportsDir,
		string(seeds), string(labels), string(values), string(scalars),
		sum.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("failed to save summary: %w", err)
	}
	return sum.ID, nil
}

const selectSummary = `SELECT id, family, kind, reports_dir, seeds, labels, series_values, scalar_values, created_at FROM summaries`

// Get retrieves a summary by ID.
func (s *SQLiteSummaryStore) Get(ctx context.Context, id string) (*Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectSummary+` WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// List returns matching summaries, newest first.
func (s *SQLiteSummaryStore) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectSummary + ` WHERE (? = '' OR family = ?)`
	args := []any{filter.Family, filter.Family}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, rows.Err()
}

// Delete removes a summary.
func (s *SQLiteSummaryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSummaryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*Summary, error) {
	var (
		sum                            Summary
		seeds, labels, values, scalars sql.NullString
		createdAt                      string
	)
	if err := row.Scan(&sum.ID, &sum.Family, &sum.Kind, &sum.ReportsDir,
		&seeds, &labels, &values, &scalars, &createdAt); err != nil {
		return nil, err
	}

	if err := unmarshalColumn(seeds, &sum.Seeds); err != nil {
		return nil, fmt.Errorf("summary %s seeds: %w", sum.ID, err)
	}
	if err := unmarshalColumn(labels, &sum.Labels); err != nil {
		return nil, fmt.Errorf("summary %s labels: %w", sum.ID, err)
	}
	if err := unmarshalColumn(values, &sum.Values); err != nil {
		return nil, fmt.Errorf("summary %s values: %w", sum.ID, err)
	}
	if err := unmarshalColumn(scalars, &sum.Scalars); err != nil {
		return nil, fmt.Errorf("summary %s scalars: %w", sum.ID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("summary %s created_at: %w", sum.ID, err)
	}
	sum.CreatedAt = t
	return &sum, nil
}

func unmarshalColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}
