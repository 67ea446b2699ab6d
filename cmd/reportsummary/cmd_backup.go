package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/reportsummary/internal/backup"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/pathutil"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the summary archive to a backup file",
		Long: `Backup every archived result to a compressed, checksummed file.

Default location: <root>/.reportsummary/backups/summaries-backup-YYYYMMDD-HHMMSS.bak
Keeps backups according to the retention flags (default: last 10).

Examples:
  reportsummary backup                          # Backup to default location
  reportsummary backup --output my.bak          # Backup to specific file
  reportsummary backup --max-age 30d --max-size 100MB
  reportsummary backup list                     # List all backups
  reportsummary backup verify <file>            # Verify backup integrity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			maxCount, _ := cmd.Flags().GetInt("max-count")
			maxAge, _ := cmd.Flags().GetString("max-age")
			maxSize, _ := cmd.Flags().GetString("max-size")

			policy, err := backup.BuildPolicy(maxCount, maxAge, maxSize)
			if err != nil {
				return fmt.Errorf("invalid retention: %w", err)
			}

			if outputPath == "" {
				outputPath = backup.GenerateBackupPath(backup.DefaultBackupDir(root), time.Now())
			} else if err := validateBackupPath(root, outputPath); err != nil {
				return fmt.Errorf("backup path rejected: %w", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(root, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			header, err := backup.Backup(context.Background(), st, outputPath)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			var pruned []string
			if policy != nil {
				pruned, err = backup.ApplyRetention(filepath.Dir(outputPath), policy)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
				}
			}

			var sizeBytes int64
			if info, err := os.Stat(outputPath); err == nil {
				sizeBytes = info.Size()
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"path":          outputPath,
					"summary_count": header.SummaryCount,
					"families":      header.Families,
					"checksum":      header.Checksum,
					"size_bytes":    sizeBytes,
					"pruned":        pruned,
				})
			}

			p := newPrinter(cmd.OutOrStdout())
			p.ok("Backup created: %d summaries (%s)", header.SummaryCount, formatBytes(sizeBytes))
			p.detail("Path: %s", outputPath)
			if len(pruned) > 0 {
				p.detail("Pruned %d old backup(s)", len(pruned))
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in <root>/.reportsummary/backups/)")
	cmd.Flags().Int("max-count", constants.DefaultBackupRetention, "Keep at most this many backups (0 = no limit)")
	cmd.Flags().String("max-age", "", "Delete backups older than this (e.g. 30d, 2w)")
	cmd.Flags().String("max-size", "", "Keep total backup size under this (e.g. 100MB)")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
	)
	return cmd
}

// validateBackupPath restricts explicit backup paths to the workspace root
// and ~/.reportsummary.
func validateBackupPath(root, path string) error {
	allowed, err := pathutil.AllowedDirs(root, nil)
	if err != nil {
		return err
	}
	return pathutil.ValidatePath(path, allowed)
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups with metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir := backup.DefaultBackupDir(root)
			backups, err := backup.ListBackups(dir)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"backups":     backups,
					"total_count": len(backups),
					"directory":   dir,
				})
			}

			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Backups in %s:\n", dir)
			var totalSize int64
			for _, b := range backups {
				totalSize += b.Size
				fmt.Fprintf(out, "  %s  v%d  %8s  %4d summaries  %s\n",
					b.CreatedAt.Local().Format("2006-01-02 15:04"),
					b.Version,
					formatBytes(b.Size),
					b.Summaries,
					filepath.Base(b.Path),
				)
			}
			fmt.Fprintf(out, "Total: %d backups, %s\n", len(backups), formatBytes(totalSize))
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify backup file integrity",
		Long: `Verify the integrity of a backup file by checking its SHA-256 checksum.

Examples:
  reportsummary backup verify .reportsummary/backups/summaries-backup-20260206-120000.bak`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path := args[0]

			verifyErr := backup.Verify(path)
			if jsonOut {
				out := map[string]any{"path": path, "valid": verifyErr == nil}
				if verifyErr != nil {
					out["error"] = verifyErr.Error()
				}
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				return verifyErr
			}
			if verifyErr != nil {
				return fmt.Errorf("verification failed: %w", verifyErr)
			}

			header, err := backup.ReadHeader(path)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.ok("Backup is valid: %d summaries", header.SummaryCount)
			if len(header.Families) > 0 {
				p.detail("Families: %s", strings.Join(header.Families, ", "))
			}
			p.detail("Checksum: %s", header.Checksum)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the summary archive from a backup file",
		Long: `Restore archived results from a backup file. The file is verified
before the archive is touched.

Modes:
  merge   - Skip results whose ID already exists (default)
  replace - Delete every archived result first, then restore

Examples:
  reportsummary restore .reportsummary/backups/summaries-backup-20260206-120000.bak
  reportsummary restore backup.bak --mode replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			modeFlag, _ := cmd.Flags().GetString("mode")

			mode, err := backup.ParseRestoreMode(modeFlag)
			if err != nil {
				return err
			}
			if err := validateBackupPath(root, inputPath); err != nil {
				return fmt.Errorf("restore path rejected: %w", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(root, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := backup.Restore(context.Background(), st, inputPath, mode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"path":     inputPath,
					"mode":     string(mode),
					"restored": result.Restored,
					"skipped":  result.Skipped,
					"removed":  result.Removed,
				})
			}
			newPrinter(cmd.OutOrStdout()).ok("Restored %d summaries (%d skipped, %d removed, mode %s)",
				result.Restored, result.Skipped, result.Removed, mode)
			return nil
		},
	}

	cmd.Flags().String("mode", "merge", "Restore mode: merge or replace")
	return cmd
}
