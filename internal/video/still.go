package video

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/librarycard/internal/config"
)

// StillWriter saves a single image.
type StillWriter interface {
	WriteImage(path string, img image.Image) error
}

// PNGWriter writes PNG files, creating parent directories.
type PNGWriter struct{}

func (PNGWriter) WriteImage(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Resize scales img to exactly size with CatmullRom.
func Resize(img image.Image, size config.Size) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(1, size.Width), max(1, size.Height)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Transcoder produces a smaller copy of an encoded video.
type Transcoder interface {
	Transcode(ctx context.Context, in, out string, size config.Size) error
}

// FFmpegTranscoder rescales with libx264, copying any audio.
type FFmpegTranscoder struct {
	Binary string
	Logger *slog.Logger
}

func (t *FFmpegTranscoder) Transcode(ctx context.Context, in, out string, size config.Size) error {
	bin := t.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, TranscodeArgs(in, out, size)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg transcode %s: %w, output: %s", filepath.Base(in), err, string(output))
	}
	if t.Logger != nil {
		t.Logger.Debug("transcoded", slog.String("input", in), slog.String("output", out))
	}
	return nil
}

// TranscodeArgs builds the low-resolution transcode command line.
func TranscodeArgs(in, out string, size config.Size) []string {
	return []string{
		"-y",
		"-loglevel", "error",
		"-i", in,
		"-vf", "scale=" + strconv.Itoa(size.Width) + ":" + strconv.Itoa(size.Height),
		"-c:v", EncoderX264,
		"-crf", "23",
		"-preset", "medium",
		"-c:a", "copy",
		out,
	}
}
