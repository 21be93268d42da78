package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"launchdash/domain/launch"
	"launchdash/internal/dataset"
	"launchdash/internal/query"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	source string
	asJSON bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	defaultSource := os.Getenv("DATA_SOURCE")
	if defaultSource == "" {
		defaultSource = "spacex_launch_dash.csv"
	}

	rootCmd := &cobra.Command{
		Use:           "launchdash-cli",
		Short:         "Compute the launch dashboard's views from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.source, "source", defaultSource, "Launch table: CSV/XLSX path, postgres:// DSN or sqlite3:<path>")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print views as JSON")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newPieCmd(opts),
		newScatterCmd(opts),
	)
	return rootCmd
}

func loadEngine(cmd *cobra.Command, opts *rootOptions) (*query.Engine, error) {
	ds, err := dataset.Load(cmd.Context(), opts.source)
	if err != nil {
		return nil, err
	}
	return query.NewEngine(ds), nil
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show sites, payload bounds and landing success rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd, opts)
			if err != nil {
				return err
			}
			ds := engine.Dataset()
			out := cmd.OutOrStdout()

			if opts.asJSON {
				return writeJSON(out, map[string]interface{}{
					"source":      ds.Source(),
					"sites":       ds.Sites(),
					"min_payload": ds.MinPayload(),
					"max_payload": ds.MaxPayload(),
					"summary":     ds.Summary(),
				})
			}

			s := ds.Summary()
			fmt.Fprintf(out, "📊 %s\n", ds.Source())
			fmt.Fprintf(out, "Launches: %d (%d successful, %.1f%%)\n", s.RecordCount, s.SuccessCount, s.SuccessRate*100)
			fmt.Fprintf(out, "Payload: %.0f - %.0f kg (mean %.0f, median %.0f)\n", ds.MinPayload(), ds.MaxPayload(), s.MeanPayload, s.MedianPayload)
			fmt.Fprintf(out, "Sites (%d):\n", len(ds.Sites()))
			for i, site := range ds.Sites() {
				fmt.Fprintf(out, "%d. %s\n", i+1, site)
			}
			return nil
		},
	}
}

func newPieCmd(opts *rootOptions) *cobra.Command {
	var site string

	cmd := &cobra.Command{
		Use:   "pie",
		Short: "Success counts per site, or the failure/success split for one site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd, opts)
			if err != nil {
				return err
			}
			view := engine.Pie(site)
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, view)
			}

			fmt.Fprintln(out, view.Title)
			if view.Empty {
				fmt.Fprintln(out, "(no data)")
				return nil
			}
			total := view.Total()
			for _, slice := range view.Slices {
				share := 0.0
				if total > 0 {
					share = slice.Value / total * 100
				}
				color := ""
				if slice.Color != "" {
					color = " [" + slice.Color + "]"
				}
				fmt.Fprintf(out, "  %-14s %4.0f  %5.1f%%%s\n", slice.Label, slice.Value, share, color)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", launch.AllSites, "Launch site, or ALL")
	return cmd
}

func newScatterCmd(opts *rootOptions) *cobra.Command {
	var site string
	var low, high float64

	cmd := &cobra.Command{
		Use:   "scatter",
		Short: "Launches inside a payload range with their landing outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd, opts)
			if err != nil {
				return err
			}
			bounds := engine.Dataset().PayloadBounds()
			if !cmd.Flags().Changed("low") {
				low = bounds.Low
			}
			if !cmd.Flags().Changed("high") {
				high = bounds.High
			}

			view := engine.Scatter(launch.SelectionState{
				SelectedSite: site,
				PayloadRange: launch.PayloadRange{Low: low, High: high},
			})
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, view)
			}

			fmt.Fprintf(out, "%s (%.0f-%.0f kg)\n", view.Title, view.PayloadRange.Low, view.PayloadRange.High)
			fmt.Fprintf(out, "Points: %d  Categories: %s\n", len(view.Points), strings.Join(view.Categories, ", "))
			if view.Correlation != nil {
				fmt.Fprintf(out, "Pearson r: %.3f\n", *view.Correlation)
			}
			for _, p := range view.Points {
				fmt.Fprintf(out, "  %8.1f kg  class=%d  %s\n", p.PayloadMassKg, p.OutcomeClass, p.BoosterVersionCategory)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&site, "site", launch.AllSites, "Launch site, or ALL")
	cmd.Flags().Float64Var(&low, "low", 0, "Lower payload bound in kg (default: dataset minimum)")
	cmd.Flags().Float64Var(&high, "high", 0, "Upper payload bound in kg (default: dataset maximum)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
