// Package backup writes the summary archive to checksummed, compressed
// backup files and restores it from them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/store"
)

// filePrefix and fileExt name backup files: summaries-backup-<timestamp>.bak
const (
	filePrefix = "summaries-backup-"
	fileExt    = ".bak"
	timeLayout = "20060102-150405"
)

// DefaultBackupDir returns <root>/.reportsummary/backups.
func DefaultBackupDir(root string) string {
	return filepath.Join(store.LocalDataPath(root), constants.BackupDir)
}

// GenerateBackupPath creates a timestamped backup filename in dir.
func GenerateBackupPath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.UTC().Format(timeLayout)+fileExt)
}

func isBackupFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt)
}

// Backup writes every archived summary to outputPath. The file is written
// to a temporary name and renamed into place.
func Backup(ctx context.Context, st store.SummaryStore, outputPath string) (*Header, error) {
	sums, err := st.List(ctx, store.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".backup-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	header, err := Encode(tmp, &Archive{CreatedAt: time.Now().UTC(), Summaries: sums})
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return nil, fmt.Errorf("failed to move backup into place: %w", err)
	}
	return header, nil
}

// RestoreMode controls how restore handles existing data.
type RestoreMode string

const (
	// RestoreMerge skips summaries whose ID already exists (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes every existing summary before restoring.
	RestoreReplace RestoreMode = "replace"
)

// ParseRestoreMode validates a mode name. Empty selects merge.
func ParseRestoreMode(s string) (RestoreMode, error) {
	switch RestoreMode(s) {
	case "", RestoreMerge:
		return RestoreMerge, nil
	case RestoreReplace:
		return RestoreReplace, nil
	default:
		return "", fmt.Errorf("invalid restore mode %q (expected merge or replace)", s)
	}
}

// RestoreResult contains statistics about the restore operation.
type RestoreResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Removed  int `json:"removed"`
}

// Restore imports summaries from a backup file into the store. The file is
// fully verified before the store is touched.
func Restore(ctx context.Context, st store.SummaryStore, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	_, archive, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", filepath.Base(inputPath), err)
	}

	result := &RestoreResult{}

	if mode == RestoreReplace {
		existing, err := st.List(ctx, store.ListFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list existing summaries: %w", err)
		}
		for _, s := range existing {
			if err := st.Delete(ctx, s.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to remove %s: %w", s.ID, err)
			}
			result.Removed++
		}
	}

	for _, s := range archive.Summaries {
		if mode == RestoreMerge {
			_, err := st.Get(ctx, s.ID)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to check existing summary %s: %w", s.ID, err)
			}
		}
		if _, err := st.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to restore summary %s: %w", s.ID, err)
		}
		result.Restored++
	}

	return result, nil
}
