package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/shroomtrack/internal/domain/models"
)

// NewSyncCommand creates the sync command group.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull or push the full legacy dataset",
	}

	pull := &cobra.Command{
		Use:   "pull",
		Short: "Print every table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := opts.client().Pull(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}

	push := &cobra.Command{
		Use:   "push <file.json>",
		Short: "Upsert a dataset file into the spreadsheet",
		Long: `Upload a JSON document with any of the batches, inventory,
finishedGoods, dailyCosts and customers arrays. Absent arrays are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}
			var payload models.SyncPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("parse dataset %s: %w", args[0], err)
			}
			summary, err := opts.client().Push(cmd.Context(), payload)
			if err != nil {
				return err
			}

			sheets := make([]string, 0, len(summary))
			for name := range summary {
				sheets = append(sheets, name)
			}
			sort.Strings(sheets)
			for _, name := range sheets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s updated=%d appended=%d\n",
					name, summary[name].Updated, summary[name].Appended)
			}
			return nil
		},
	}

	cmd.AddCommand(pull, push)
	return cmd
}

// NewRatesCommand creates the rates command group.
func NewRatesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show or change costing rates",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the labor and raw-material rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rates, err := opts.client().Rates(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rates)
		},
	}

	var labor, raw float64
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the labor and raw-material rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			current, err := client.Rates(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("labor") {
				current.LaborRate = labor
			}
			if cmd.Flags().Changed("raw") {
				current.RawMaterialRate = raw
			}
			saved, err := client.SetRates(cmd.Context(), current)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), saved)
		},
	}
	set.Flags().Float64Var(&labor, "labor", 0, "labor rate per hour")
	set.Flags().Float64Var(&raw, "raw", 0, "raw material rate per kg")
	set.MarkFlagsOneRequired("labor", "raw")

	cmd.AddCommand(get, set)
	return cmd
}

// NewBatchCommand creates the batch command group.
func NewBatchCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Inspect processing batches",
	}

	stage := &cobra.Command{
		Use:   "stage <batch-id>",
		Short: "Show the live processing stage of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.client().Stage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %3.0f%%  %ds remaining\n",
				args[0], view.Stage, view.Progress, view.RemainingSeconds)
			if view.Warning != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", view.Warning)
			}
			return nil
		},
	}

	cmd.AddCommand(stage)
	return cmd
}
