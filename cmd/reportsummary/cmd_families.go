package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/nvandessel/reportsummary/internal/family"
	"github.com/spf13/cobra"
)

func newFamiliesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the metric families that can be averaged",
		Long: `List every metric family with its report file, tuple labels and the
padding applied to runs shorter than the longest run. Families marked
with * are averaged when no --family flag is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			defaults := make(map[string]bool)
			for _, f := range family.Default() {
				defaults[f.Name] = true
			}

			type jsonEntry struct {
				Name    string   `json:"name"`
				Title   string   `json:"title"`
				Kind    string   `json:"kind"`
				Report  string   `json:"report"`
				Arity   int      `json:"arity"`
				Labels  []string `json:"labels"`
				Padding string   `json:"padding"`
				Chart   string   `json:"chart"`
				Default bool     `json:"default"`
			}

			all := family.All()
			if jsonOut {
				entries := make([]jsonEntry, len(all))
				for i, f := range all {
					entries[i] = jsonEntry{
						Name:    f.Name,
						Title:   f.Title,
						Kind:    string(f.Kind),
						Report:  f.Report,
						Arity:   f.Arity(),
						Labels:  f.Labels,
						Padding: f.PaddingSummary(),
						Chart:   string(f.Chart),
						Default: defaults[f.Name],
					}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"families": entries,
					"count":    len(entries),
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tARITY\tPADDING\tLABELS")
			for _, f := range all {
				name := f.Name
				if defaults[name] {
					name += " *"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", name, f.Kind, f.Arity(), f.PaddingSummary(), strings.Join(f.Labels, ", "))
			}
			return tw.Flush()
		},
	}
}
