package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/librarycard/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		flags planFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the jobs a generate run would render, optionally saving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p, err := flags.build(cmd, cfg)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(p.Jobs))
			for _, job := range p.Jobs {
				rows = append(rows, []string{job.Library, job.Animation, job.Outputs.Video, fmt.Sprint(len(job.Outputs.All()))})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(
				[]string{"Library", "Animation", "Video", "Outputs"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(w, "%dx%d at %d fps for %.1fs, seed %d\n",
				p.Canvas.Width, p.Canvas.Height, p.Canvas.FPS, p.Canvas.Duration, p.Seed)

			if out == "" {
				return nil
			}
			if err := plan.Write(p, out); err != nil {
				return err
			}
			fmt.Fprintf(w, "Plan written to %s\n", out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Write the plan as YAML to this path")
	return cmd
}
