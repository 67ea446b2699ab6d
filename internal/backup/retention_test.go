package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/reportsummary/internal/store"
)

func infos(now time.Time, sizes ...int64) []BackupInfo {
	out := make([]BackupInfo, len(sizes))
	for i, size := range sizes {
		out[i] = BackupInfo{
			Path:      filepath.Join("/b", GenerateBackupPath("", now.Add(-time.Duration(i)*time.Hour))),
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			Size:      size,
		}
	}
	return out
}

func TestCountPolicy_KeepsNewest(t *testing.T) {
	backups := infos(time.Now(), 100, 100, 100, 100, 100)

	keep := (&CountPolicy{MaxCount: 3}).Apply(backups)
	if len(keep) != 3 {
		t.Fatalf("CountPolicy.Apply() kept %d, want 3", len(keep))
	}
	if keep[0].Path != backups[0].Path || keep[2].Path != backups[2].Path {
		t.Errorf("kept %v, want the three newest", keep)
	}

	if got := (&CountPolicy{MaxCount: 9}).Apply(backups[:1]); len(got) != 1 {
		t.Errorf("CountPolicy.Apply() kept %d, want 1", len(got))
	}
}

func TestAgePolicy_RemovesOld(t *testing.T) {
	now := time.Now()
	backups := []BackupInfo{
		{Path: "/b/new", CreatedAt: now.Add(-1 * time.Hour)},
		{Path: "/b/recent", CreatedAt: now.Add(-12 * time.Hour)},
		{Path: "/b/old", CreatedAt: now.Add(-48 * time.Hour)},
	}

	keep := (&AgePolicy{MaxAge: 24 * time.Hour}).Apply(backups)
	if len(keep) != 2 {
		t.Errorf("AgePolicy.Apply() kept %d, want 2", len(keep))
	}
}

func TestSizePolicy_AlwaysKeepsNewest(t *testing.T) {
	backups := infos(time.Now(), 500, 500, 500, 500)

	if keep := (&SizePolicy{MaxTotalBytes: 1200}).Apply(backups); len(keep) != 2 {
		t.Errorf("SizePolicy.Apply() kept %d, want 2", len(keep))
	}
	if keep := (&SizePolicy{MaxTotalBytes: 10}).Apply(backups); len(keep) != 1 {
		t.Errorf("SizePolicy.Apply() with tiny limit kept %d, want 1", len(keep))
	}
}

func TestCompositePolicy_Union(t *testing.T) {
	now := time.Now()
	backups := []BackupInfo{
		{Path: "/b/1", CreatedAt: now, Size: 100},
		{Path: "/b/2", CreatedAt: now.Add(-2 * time.Hour), Size: 100},
		{Path: "/b/3", CreatedAt: now.Add(-72 * time.Hour), Size: 100},
	}

	policy := &CompositePolicy{Policies: []RetentionPolicy{
		&CountPolicy{MaxCount: 1},
		&AgePolicy{MaxAge: 24 * time.Hour},
	}}
	keep := policy.Apply(backups)
	if len(keep) != 2 {
		t.Errorf("CompositePolicy.Apply() kept %d, want 2", len(keep))
	}
}

func TestBuildPolicy(t *testing.T) {
	p, err := BuildPolicy(0, "", "")
	if err != nil || p != nil {
		t.Errorf("BuildPolicy() with no limits = %v, %v; want nil, nil", p, err)
	}

	p, err = BuildPolicy(3, "", "")
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}
	if _, ok := p.(*CountPolicy); !ok {
		t.Errorf("BuildPolicy(3) = %T, want *CountPolicy", p)
	}

	p, err = BuildPolicy(3, "30d", "1GB")
	if err != nil {
		t.Fatalf("BuildPolicy() error = %v", err)
	}
	if c, ok := p.(*CompositePolicy); !ok || len(c.Policies) != 3 {
		t.Errorf("BuildPolicy() = %#v, want composite of 3", p)
	}

	if _, err := BuildPolicy(0, "soon", ""); err == nil {
		t.Error("expected error for invalid age")
	}
	if _, err := BuildPolicy(0, "", "lots"); err == nil {
		t.Error("expected error for invalid size")
	}
}

func TestListBackups_ReadsHeaders(t *testing.T) {
	dir := t.TempDir()
	st := store.NewMemorySummaryStore()
	addSummaries(t, st, 2)
	ctx := context.Background()

	older := GenerateBackupPath(dir, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := GenerateBackupPath(dir, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	for _, p := range []string{older, newer} {
		if _, err := Backup(ctx, st, p); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err := ListBackups(dir)
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("ListBackups() returned %d, want 2", len(backups))
	}
	for _, b := range backups {
		if b.Version != FormatVersion || b.Summaries != 2 {
			t.Errorf("backup %s: version %d, summaries %d", filepath.Base(b.Path), b.Version, b.Summaries)
		}
	}
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "absent"))
	if err != nil || backups != nil {
		t.Errorf("ListBackups() = %v, %v; want nil, nil", backups, err)
	}
}

func TestApplyRetention_DeletesOldest(t *testing.T) {
	dir := t.TempDir()
	st := store.NewMemorySummaryStore()
	addSummaries(t, st, 1)
	ctx := context.Background()

	var paths []string
	for i := 0; i < 4; i++ {
		p := GenerateBackupPath(dir, time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC))
		if _, err := Backup(ctx, st, p); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		paths = append(paths, p)
	}

	deleted, err := ApplyRetention(dir, &CountPolicy{MaxCount: 2})
	if err != nil {
		t.Fatalf("ApplyRetention() error = %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("deleted %d, want 2", len(deleted))
	}
	for _, p := range paths[:2] {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should have been deleted", filepath.Base(p))
		}
	}
	for _, p := range paths[2:] {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should have been kept: %v", filepath.Base(p), err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"720h", 720 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"", 0, true},
		{"x", 0, true},
		{"5y", 0, true},
		{"-3d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100MB", 100 * 1024 * 1024, false},
		{"1gb", 1024 * 1024 * 1024, false},
		{"500KB", 500 * 1024, false},
		{"42B", 42, false},
		{"", 0, true},
		{"12", 0, true},
		{"-1MB", 0, true},
		{"lotsMB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
