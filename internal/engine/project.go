package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ivlev/librarycard/internal/animation"
	"github.com/ivlev/librarycard/internal/compositor"
	"github.com/ivlev/librarycard/internal/history"
	"github.com/ivlev/librarycard/internal/plan"
	"github.com/ivlev/librarycard/internal/source"
)

// Project turns plan jobs into videos: it loads the library's posters,
// builds the animation and hands both to the pipeline.
type Project struct {
	Pipeline     *Pipeline
	PosterDir    string
	PosterHeight int
	// History is optional.
	History *history.Store
	Logger  *slog.Logger
}

func (p *Project) logger() *slog.Logger {
	if p.Logger == nil {
		return p.Pipeline.logger()
	}
	return p.Logger
}

// Run renders one job and records the outcome.
func (p *Project) Run(ctx context.Context, job plan.Job) (*Result, error) {
	logger := p.logger().With(slog.String("library", job.Library), slog.String("animation", job.Animation))

	var run *history.Run
	if p.History != nil {
		var err error
		if run, err = p.History.Start(ctx, job.Library, job.Animation, p.Pipeline.Config.Seed); err != nil {
			logger.Warn("history unavailable", slog.Any("error", err))
		}
	}

	res, err := p.render(ctx, job, logger)

	if run != nil {
		if res != nil {
			run.Frames = res.Frames
			run.Outputs = res.Outputs
			run.Warnings = res.Warnings
		}
		if herr := p.History.Finish(context.WithoutCancel(ctx), run, err); herr != nil {
			logger.Warn("history update failed", slog.Any("error", herr))
		}
	}
	return res, err
}

func (p *Project) render(ctx context.Context, job plan.Job, logger *slog.Logger) (*Result, error) {
	cfg := p.Pipeline.Config

	src, err := source.Open(p.PosterDir, job.Library)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	posters, err := source.Load(ctx, src, source.LoadOptions{
		Height:  p.PosterHeight,
		Workers: cfg.Workers,
		Skip: func(name string, err error) {
			logger.Warn("skipping poster", slog.String("poster", name), slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("library %q: %w", job.Library, err)
	}
	logger.Info("posters loaded", slog.Int("count", len(posters)), slog.Int("height", p.PosterHeight))

	anim := animation.Create(job.Animation, job.Library, posters, animation.Options{
		Canvas:  cfg.Canvas,
		Rand:    rand.New(rand.NewSource(cfg.Seed)),
		Workers: cfg.Workers,
		Logger:  logger,
	})
	comp := compositor.New(anim, posters, compositor.Options{
		Logger: logger,
		Text: compositor.TextOptions{
			Text:       job.Library,
			FontPath:   cfg.FontPath,
			FontSize:   cfg.FontSize,
			Capitalize: cfg.Capitalize,
			Start:      anim.TextStart(),
		},
	})
	return p.Pipeline.Render(ctx, job, anim, comp)
}
