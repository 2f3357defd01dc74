// Package video writes rendered frames to ffmpeg and still images to disk.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrSinkOpen is returned when the encoder process cannot be started.
var ErrSinkOpen = errors.New("open video sink")

const (
	EncoderAuto         = "auto"
	EncoderX264         = "libx264"
	EncoderVideoToolbox = "h264_videotoolbox"
	EncoderNVENC        = "h264_nvenc"

	stderrTail = 2048
)

// Sink opens one encoded stream per video.
type Sink interface {
	Open(ctx context.Context, path string, fps, width, height int) (Stream, error)
}

// Stream accepts frames of exactly the size it was opened with.
type Stream interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// FFmpegSink pipes rgb24 frames into an ffmpeg subprocess.
type FFmpegSink struct {
	Binary  string
	Encoder string
	Quality int
	Logger  *slog.Logger
}

func (s *FFmpegSink) binary() string {
	if s.Binary == "" {
		return "ffmpeg"
	}
	return s.Binary
}

func (s *FFmpegSink) Open(ctx context.Context, path string, fps, width, height int) (Stream, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("%w: invalid stream %dx%d@%d", ErrSinkOpen, width, height, fps)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSinkOpen, err)
		}
	}

	args := EncodeArgs(path, fps, width, height, s.Encoder, s.Quality)
	cmd := exec.CommandContext(ctx, s.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrSinkOpen, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg start: %v", ErrSinkOpen, err)
	}
	if s.Logger != nil {
		s.Logger.Debug("ffmpeg started",
			slog.String("output", path),
			slog.String("args", strings.Join(args, " ")))
	}
	return &ffmpegStream{
		cmd:    cmd,
		stdin:  stdin,
		stderr: &stderr,
		width:  width,
		height: height,
		buf:    make([]byte, width*height*3),
	}, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	width  int
	height int
	buf    []byte
	closed bool
}

func (st *ffmpegStream) WriteFrame(frame *image.RGBA) error {
	if b := frame.Bounds(); b.Dx() != st.width || b.Dy() != st.height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d", b.Dx(), b.Dy(), st.width, st.height)
	}
	writeRGB24(st.buf, frame)
	if _, err := st.stdin.Write(st.buf); err != nil {
		return fmt.Errorf("write frame: %w%s", err, tail(st.stderr))
	}
	return nil
}

// Close flushes stdin and waits for ffmpeg to finish the file.
func (st *ffmpegStream) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	closeErr := st.stdin.Close()
	if err := st.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait: %w%s", err, tail(st.stderr))
	}
	return closeErr
}

func tail(buf *bytes.Buffer) string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return ""
	}
	if len(out) > stderrTail {
		out = out[len(out)-stderrTail:]
	}
	return "\nffmpeg: " + out
}

// EncodeArgs builds the ffmpeg command line for a rawvideo rgb24 stdin
// stream encoded to yuv420p H.264.
func EncodeArgs(path string, fps, width, height int, encoder string, quality int) []string {
	encoder = ResolveEncoder(encoder)
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-an",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}
	args = append(args, QualityArgs(encoder, quality)...)
	args = append(args, "-movflags", "+faststart", path)
	return args
}

// ResolveEncoder maps an empty or "auto" name to libx264. Probing for a
// hardware encoder happens before a sink is built.
func ResolveEncoder(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == EncoderAuto {
		return EncoderX264
	}
	return name
}

// QualityArgs returns encoder-specific rate control. Quality 0 uses the
// encoder default: 75 (bitrate x100k) for VideoToolbox, cq 28 for NVENC
// and crf 23 for everything else.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case EncoderVideoToolbox:
		if quality <= 0 {
			quality = 75
		}
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case EncoderNVENC:
		if quality <= 0 {
			quality = 28
		}
		return []string{"-cq", strconv.Itoa(quality)}
	default:
		if quality <= 0 {
			quality = 23
		}
		return []string{"-crf", strconv.Itoa(quality), "-preset", "medium"}
	}
}

// writeRGB24 packs frame into dst, dropping alpha. Frames are opaque.
func writeRGB24(dst []byte, frame *image.RGBA) {
	b := frame.Bounds()
	w := b.Dx()
	o := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := frame.Pix[frame.PixOffset(b.Min.X, y):]
		for x := 0; x < w; x++ {
			dst[o] = row[x*4]
			dst[o+1] = row[x*4+1]
			dst[o+2] = row[x*4+2]
			o += 3
		}
	}
}
