package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ivlev/librarycard/internal/animation"
	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/engine"
	"github.com/ivlev/librarycard/internal/history"
	"github.com/ivlev/librarycard/internal/plan"
	"github.com/ivlev/librarycard/internal/source"
	"github.com/ivlev/librarycard/internal/system"
	"github.com/ivlev/librarycard/internal/video"
)

const lockName = ".librarycard.lock"

type planFlags struct {
	animation      string
	libraries      []string
	outputDir      string
	seed           int64
	skipLowRes     bool
	skipThumbnails bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.animation, "animation", "a", "", "Animation for every library, overriding the configuration")
	cmd.Flags().StringSliceVarP(&f.libraries, "library", "l", nil, "Library to render (repeatable); defaults to the configured or discovered libraries")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for videos and thumbnails")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed for layouts and sprite jitter")
	cmd.Flags().BoolVar(&f.skipLowRes, "skip-low-res", false, "Do not produce the low-resolution video")
	cmd.Flags().BoolVar(&f.skipThumbnails, "skip-thumbnails", false, "Do not write thumbnails")
}

// build expands the flags against cfg. cfg is updated in place with flag
// overrides that later stages read.
func (f *planFlags) build(cmd *cobra.Command, cfg *config.File) (*plan.Plan, error) {
	if cmd.Flags().Changed("seed") {
		cfg.Render.Seed = f.seed
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.animation != "" {
		if _, ok := animation.Lookup(f.animation); !ok {
			return nil, fmt.Errorf("unknown animation %q", f.animation)
		}
	}

	libraries := f.libraries
	if len(libraries) == 0 {
		libraries = cfg.Libraries
	}
	if len(libraries) == 0 {
		found, err := source.Discover(cfg.PosterDirectory)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		libraries = found
	}
	if len(libraries) == 0 {
		return nil, fmt.Errorf("no libraries found in %s", cfg.PosterDirectory)
	}

	p := plan.Build(cfg, libraries, plan.Options{
		OutputDir:      cfg.OutputDir,
		Override:       f.animation,
		SkipLowRes:     f.skipLowRes,
		SkipThumbnails: f.skipThumbnails,
	})
	if len(p.Jobs) == 0 {
		return nil, errors.New("plan has no jobs")
	}
	return &p, nil
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    planFlags
		planPath string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render videos and thumbnails for each library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Render.Workers = workers
			}

			var p *plan.Plan
			if planPath != "" {
				if p, err = plan.Read(planPath); err != nil {
					return err
				}
				cfg.Render.Seed = p.Seed
				cfg.Render.Width, cfg.Render.Height = p.Canvas.Width, p.Canvas.Height
				cfg.Render.FPS, cfg.Render.Duration = p.Canvas.FPS, p.Canvas.Duration
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("plan %s: %w", planPath, err)
				}
			} else if p, err = flags.build(cmd, cfg); err != nil {
				return err
			}

			if limit, err := system.RaiseOpenFileLimit(); err != nil {
				logger.Warn("could not raise open file limit", slog.Any("error", err))
			} else if limit > 0 {
				logger.Debug("open file limit", slog.Uint64("limit", limit))
			}
			if err := system.CheckFFmpeg(""); err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			lock := flock.New(filepath.Join(cfg.OutputDir, lockName))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another librarycard run is writing to %s", cfg.OutputDir)
			}
			defer func() { _ = lock.Unlock() }()

			render := cfg.RenderConfig()
			if render.Encoder == "" || render.Encoder == video.EncoderAuto {
				render.Encoder = system.BestH264Encoder(cmd.Context(), "")
			}
			logger.Info("encoder selected", slog.String("encoder", render.Encoder))

			var store *history.Store
			if cfg.History.Enabled {
				if store, err = history.Open(cfg.History.Path); err != nil {
					logger.Warn("history disabled", slog.Any("error", err))
					store = nil
				} else {
					defer store.Close()
				}
			}

			project := &engine.Project{
				Pipeline: &engine.Pipeline{
					Config:     render,
					Sink:       &video.FFmpegSink{Encoder: render.Encoder, Quality: render.Quality, Logger: logger},
					Stills:     video.PNGWriter{},
					Transcoder: &video.FFmpegTranscoder{Logger: logger},
					Logger:     logger,
					Progress:   cmd.OutOrStdout(),
				},
				PosterDir:    cfg.PosterDirectory,
				PosterHeight: cfg.PosterHeight,
				History:      store,
				Logger:       logger,
			}

			start := time.Now()
			failed := 0
			for i, job := range p.Jobs {
				logger.Info("job started",
					slog.Int("job", i+1),
					slog.Int("jobs", len(p.Jobs)),
					slog.String("library", job.Library),
					slog.String("animation", job.Animation))
				res, err := project.Run(cmd.Context(), job)
				if err != nil {
					if cmd.Context().Err() != nil {
						return cmd.Context().Err()
					}
					failed++
					logger.Error("job failed",
						slog.String("library", job.Library),
						slog.String("animation", job.Animation),
						slog.Any("error", err))
					continue
				}
				logger.Info("job finished",
					slog.String("library", job.Library),
					slog.String("animation", job.Animation),
					slog.Int("frames", res.Frames),
					slog.Int("warnings", len(res.Warnings)),
					slog.Duration("elapsed", res.Elapsed.Round(time.Millisecond)))
			}

			logger.Info("generation complete",
				slog.Int("jobs", len(p.Jobs)),
				slog.Int("failed", failed),
				slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(p.Jobs))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&planPath, "plan", "", "Render the jobs from a plan file instead of the configuration")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel poster decode and sprite update workers")
	return cmd
}
