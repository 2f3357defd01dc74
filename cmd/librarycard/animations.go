package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/librarycard/internal/animation"
)

func newAnimationsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "animations",
		Short: "List available animations and per-library settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			render := cfg.RenderConfig()

			rows := make([][]string, 0, len(animation.Names()))
			for _, c := range animation.Describe() {
				// A poster-less instance is enough to read the stage list.
				anim := animation.Create(c.Name, "", nil, animation.Options{
					Canvas: render.Canvas,
					Rand:   rand.New(rand.NewSource(render.Seed)),
				})
				stages := make([]string, 0, len(anim.Machine().Stages))
				for _, st := range anim.Machine().Stages {
					stages = append(stages, st.Name)
				}
				name := c.Name
				if name == cfg.DefaultAnimation {
					name += " *"
				}
				rows = append(rows, []string{
					name,
					strings.Join(stages, " > "),
					strconv.Itoa(len(anim.Sprites())),
					fmt.Sprintf("%.2f", c.FadeStart),
					c.Description,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Animation", "Stages", "Sprites", "Fade", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))

			if len(cfg.LibraryAnimations) == 0 {
				return nil
			}
			libs := make([]string, 0, len(cfg.LibraryAnimations))
			for lib := range cfg.LibraryAnimations {
				libs = append(libs, lib)
			}
			sort.Strings(libs)
			libRows := make([][]string, 0, len(libs))
			for _, lib := range libs {
				libRows = append(libRows, []string{lib, strings.Join(cfg.AnimationsFor(lib, ""), ", ")})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]string{"Library", "Animations"}, libRows, nil))
			return nil
		},
	}
}
