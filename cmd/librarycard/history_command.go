package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/librarycard/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent renders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "History is disabled")
				return nil
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No renders recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				detail := r.Error
				if detail == "" && len(r.Warnings) > 0 {
					detail = fmt.Sprintf("%d warnings", len(r.Warnings))
				}
				elapsed := "-"
				if d := r.Duration(); d > 0 {
					elapsed = d.Round(time.Second).String()
				}
				rows = append(rows, []string{
					r.ID[:8],
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Library,
					r.Animation,
					string(r.Status),
					strconv.Itoa(r.Frames),
					elapsed,
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Started", "Library", "Animation", "Status", "Frames", "Took", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
