// Package engine drives an animation frame by frame into a video sink and
// writes the thumbnails and low-resolution copy that go with it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"runtime"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/librarycard/internal/animation"
	"github.com/ivlev/librarycard/internal/compositor"
	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/logging"
	"github.com/ivlev/librarycard/internal/plan"
	"github.com/ivlev/librarycard/internal/system"
	"github.com/ivlev/librarycard/internal/video"
)

// ErrEncoderFailed wraps frame write and encoder shutdown errors.
var ErrEncoderFailed = errors.New("encoder failed")

type State int

const (
	Idle State = iota
	Encoding
	Finalizing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Encoding:
		return "encoding"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result describes one rendered video.
type Result struct {
	Library   string
	Animation string
	Frames    int
	Chunks    int
	Fallbacks int
	Outputs   []string
	Warnings  []string
	Elapsed   time.Duration
}

// Pipeline renders one job at a time. Reuse it across jobs; it is not
// safe for concurrent use.
type Pipeline struct {
	Config     config.Render
	Sink       video.Sink
	Stills     video.StillWriter
	Transcoder video.Transcoder
	Logger     *slog.Logger
	// Progress gets a live bar when it is a terminal. Otherwise progress
	// is logged every few frames.
	Progress io.Writer

	state State
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.Discard()
	}
	return p.Logger
}

// Chunks splits total frames into runs of at most size. A non-positive
// size yields one chunk.
func Chunks(total, size int) []int {
	if total <= 0 {
		return nil
	}
	if size <= 0 || size > total {
		size = total
	}
	out := make([]int, 0, (total+size-1)/size)
	for left := total; left > 0; left -= size {
		out = append(out, min(size, left))
	}
	return out
}

// Render encodes every frame of anim, drawn by comp, to job.Outputs.Video
// and then writes the optional outputs. Only sink failures are fatal.
func (p *Pipeline) Render(ctx context.Context, job plan.Job, anim *animation.Animation, comp *compositor.Compositor) (*Result, error) {
	logger := p.logger().With(slog.String("library", job.Library), slog.String("animation", anim.Name))
	canvas := p.Config.Canvas
	total := canvas.TotalFrames()
	chunks := Chunks(total, p.Config.ChunkSize)
	res := &Result{Library: job.Library, Animation: anim.Name, Chunks: len(chunks)}
	start := time.Now()

	p.state = Encoding
	logger.Info("encoding",
		slog.String("output", job.Outputs.Video),
		slog.String("size", fmt.Sprintf("%dx%d", canvas.Width, canvas.Height)),
		slog.Int("fps", canvas.FPS),
		slog.Int("frames", total),
		slog.Int("chunks", len(chunks)),
		slog.Int("sprites", len(anim.Sprites())))

	stream, err := p.Sink.Open(ctx, job.Outputs.Video, canvas.FPS, canvas.Width, canvas.Height)
	if err != nil {
		p.state = Failed
		if !errors.Is(err, video.ErrSinkOpen) {
			err = fmt.Errorf("%w: %w", video.ErrSinkOpen, err)
		}
		return res, err
	}

	prog := p.reporter(logger, job, total)
	last, err := p.encode(ctx, stream, anim, comp, chunks, res, prog, logger)
	closeErr := stream.Close()
	prog.Finish(err == nil && closeErr == nil)
	if err != nil {
		p.state = Failed
		return res, err
	}
	if closeErr != nil {
		p.state = Failed
		return res, fmt.Errorf("%w: %w", ErrEncoderFailed, closeErr)
	}
	res.Outputs = append(res.Outputs, job.Outputs.Video)

	p.state = Finalizing
	p.finalize(ctx, job, last, res, logger)

	p.state = Done
	res.Elapsed = time.Since(start)
	logger.Info("video ready",
		slog.String("output", job.Outputs.Video),
		slog.Duration("elapsed", res.Elapsed.Round(time.Millisecond)),
		slog.Float64("fps", float64(res.Frames)/max(res.Elapsed.Seconds(), 1e-9)),
		slog.Int("warnings", len(res.Warnings)))
	return res, nil
}

// encode runs the frame loop and returns a copy of the final frame.
func (p *Pipeline) encode(
	ctx context.Context,
	stream video.Stream,
	anim *animation.Animation,
	comp *compositor.Compositor,
	chunks []int,
	res *Result,
	prog reporter,
	logger *slog.Logger,
) (*image.RGBA, error) {
	canvas := p.Config.Canvas
	total := canvas.TotalFrames()
	rect := image.Rect(0, 0, canvas.Width, canvas.Height)
	frame := system.GetImage(rect)
	defer func() { system.PutImage(frame) }()

	var last *image.RGBA
	index := 0
	for c, n := range chunks {
		for k := 0; k < n; k++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t := float64(index) / float64(canvas.FPS)
			xdraw.Draw(frame, rect, image.Black, image.Point{}, xdraw.Src)
			anim.Update(t)
			comp.Draw(frame, t)
			if err := stream.WriteFrame(frame); err != nil {
				return nil, fmt.Errorf("%w: frame %d: %w", ErrEncoderFailed, index, err)
			}
			res.Frames++
			prog.Frame(index, total)
			index++
		}
		if index == total {
			last = image.NewRGBA(rect)
			copy(last.Pix, frame.Pix)
		}

		stats := comp.Stats()
		comp.ResetStats()
		res.Fallbacks += stats.Fallbacks
		system.PutImage(frame)
		system.ReleaseFrames()
		runtime.GC()
		frame = system.GetImage(rect)

		attrs := []any{
			slog.Int("chunk", c+1),
			slog.Int("of", len(chunks)),
			slog.Int("drawn", stats.Drawn),
			slog.Int("culled", stats.Culled),
		}
		if rss, err := system.ProcessRSS(); err == nil {
			attrs = append(attrs, slog.String("rss", fmt.Sprintf("%.1fMiB", system.MiB(rss))))
		}
		logger.Debug("chunk done", attrs...)
		if stats.Fallbacks > 0 {
			logger.Warn("degenerate transforms in chunk",
				slog.Int("chunk", c+1), slog.Int("fallbacks", stats.Fallbacks))
		}
	}
	return last, nil
}

// finalize writes thumbnails and the low-res copy. Failures here are
// recorded as warnings.
func (p *Pipeline) finalize(ctx context.Context, job plan.Job, last *image.RGBA, res *Result, logger *slog.Logger) {
	warn := func(msg string, err error, path string) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", msg, err))
		logger.Warn(msg, slog.String("output", path), slog.Any("error", err))
	}
	stills := p.Stills
	if stills == nil {
		stills = video.PNGWriter{}
	}

	if last != nil {
		if path := job.Outputs.Thumbnail; path != "" {
			if err := stills.WriteImage(path, last); err != nil {
				warn("thumbnail failed", err, path)
			} else {
				res.Outputs = append(res.Outputs, path)
			}
		}
		if path := job.Outputs.ThumbnailLowRes; path != "" {
			size := p.Config.Thumbnail
			if size.Width <= 0 || size.Height <= 0 {
				size = config.Size{Width: config.DefaultThumbnailWidth, Height: config.DefaultThumbnailHeight}
			}
			if err := stills.WriteImage(path, video.Resize(last, size)); err != nil {
				warn("low-res thumbnail failed", err, path)
			} else {
				res.Outputs = append(res.Outputs, path)
			}
		}
	}

	path := job.Outputs.VideoLowRes
	if path == "" || p.Transcoder == nil || p.Config.LowRes.Width <= 0 || p.Config.LowRes.Height <= 0 {
		return
	}
	logger.Info("transcoding low-res copy", slog.String("output", path))
	if err := p.Transcoder.Transcode(ctx, job.Outputs.Video, path, p.Config.LowRes); err != nil {
		warn("low-res transcode failed", err, path)
		return
	}
	res.Outputs = append(res.Outputs, path)
}
