package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ivlev/librarycard/internal/source"
	"github.com/ivlev/librarycard/internal/system"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, encoders, poster libraries and host resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := system.CheckBinaries(system.Requirements(""))
			rows := make([][]string, 0, len(statuses))
			missing := false
			for _, st := range statuses {
				state, detail := "ok", st.Path
				if !st.Available {
					state, detail = "missing", st.Detail
					missing = missing || !st.Optional
				}
				rows = append(rows, []string{st.Name, state, detail, st.Description})
			}
			fmt.Fprintln(out, renderTable([]string{"Binary", "Status", "Path", "Used for"}, rows, nil))

			if !missing {
				fmt.Fprintf(out, "H.264 encoder: %s\n", system.BestH264Encoder(cmd.Context(), ""))
			}

			libs, err := source.Discover(cfg.PosterDirectory)
			if err != nil {
				fmt.Fprintf(out, "Poster directory %s: %v\n", cfg.PosterDirectory, err)
			} else {
				fmt.Fprintf(out, "Poster libraries in %s: %d\n", cfg.PosterDirectory, len(libs))
			}

			if mem, err := system.MemoryStats(); err == nil {
				fmt.Fprintf(out, "Memory: %.0f MiB available of %.0f MiB, process %.1f MiB\n",
					system.MiB(mem.Available), system.MiB(mem.Total), system.MiB(mem.RSS))
			}
			if limit, err := system.RaiseOpenFileLimit(); err == nil && limit > 0 {
				fmt.Fprintf(out, "Open file limit: %d\n", limit)
			}
			fmt.Fprintf(out, "CPUs: %d\n", runtime.NumCPU())

			if missing {
				return fmt.Errorf("required binaries are missing")
			}
			return nil
		},
	}
}
