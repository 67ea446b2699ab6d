package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nvandessel/reportsummary/internal/backup"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/export"
	"github.com/nvandessel/reportsummary/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the archive of averaged results",
		Long: `Inspect averaged results archived by 'average --store' (or with
store.enabled in the config).

Examples:
  reportsummary history list
  reportsummary history list --family multicast --since 7d
  reportsummary history show 3f2a9c1d0b4e5f67
  reportsummary history delete 3f2a9c1d0b4e5f67`,
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryDeleteCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			familyName, _ := cmd.Flags().GetString("family")
			limit, _ := cmd.Flags().GetInt("limit")
			since, _ := cmd.Flags().GetString("since")

			filter := store.ListFilter{Family: familyName, Limit: limit}
			if since != "" {
				d, err := backup.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
				filter.Since = time.Now().Add(-d)
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

			sums, err := st.List(context.Background(), filter)
			if err != nil {
				return fmt.Errorf("failed to list archive: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"summaries": sums,
					"count":     len(sums),
				})
			}

			if len(sums) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived results.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFAMILY\tSEEDS\tCREATED\tREPORTS")
			for _, s := range sums {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.Family, strings.Join(s.Seeds, ","),
					s.CreatedAt.Local().Format("2006-01-02 15:04"), s.ReportsDir)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("family", "", "Only list results of this family")
	cmd.Flags().Int("limit", 20, "Maximum number of results (0 = all)")
	cmd.Flags().String("since", "", "Only list results newer than this (e.g. 12h, 7d, 2w)")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one archived result as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(root, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := st.Get(context.Background(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no archived result with ID %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read archive: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s  seeds %s  %s\n", sum.Family, strings.Join(sum.Seeds, ","),
				sum.CreatedAt.Local().Format(time.RFC3339))
			return export.Write(out, constants.ExportCSV, sum.Result(), export.DefaultOptions())
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete archived results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(root, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			for _, id := range args {
				if err := st.Delete(ctx, id); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("no archived result with ID %q", id)
					}
					return fmt.Errorf("failed to delete %s: %w", id, err)
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"deleted": args})
			}
			newPrinter(cmd.OutOrStdout()).ok("Deleted %d archived result(s)", len(args))
			return nil
		},
	}
}
