package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalid is returned by Validate for any out-of-range setting.
var ErrInvalid = errors.New("invalid configuration")

// Canvas is fixed for the duration of a run.
type Canvas struct {
	Width    int
	Height   int
	FPS      int
	Duration float64
}

// TotalFrames returns duration*fps rounded to the nearest frame.
func (c Canvas) TotalFrames() int {
	return int(math.Round(c.Duration * float64(c.FPS)))
}

type Size struct {
	Width  int `yaml:"width" toml:"width"`
	Height int `yaml:"height" toml:"height"`
}

// Render is the immutable per-run value handed to every component.
type Render struct {
	Canvas    Canvas
	ChunkSize int
	Seed      int64
	Workers   int

	Encoder string
	// Quality 0 picks the encoder's own default.
	Quality int

	Thumbnail Size
	// LowRes is zero when the low-resolution copy is disabled.
	LowRes Size

	FontPath   string
	FontSize   float64
	Capitalize bool
}

// File mirrors the on-disk YAML/TOML configuration.
type File struct {
	PosterDirectory   string                      `yaml:"poster_directory" toml:"poster_directory"`
	PosterHeight      int                         `yaml:"poster_height" toml:"poster_height"`
	OutputDir         string                      `yaml:"output_dir" toml:"output_dir"`
	Libraries         []string                    `yaml:"libraries" toml:"libraries"`
	DefaultAnimation  string                      `yaml:"default_animation" toml:"default_animation"`
	LibraryAnimations map[string]LibraryAnimation `yaml:"library_animations" toml:"library_animations"`

	Text    Text    `yaml:"text" toml:"text"`
	Render  Frames  `yaml:"render" toml:"render"`
	Video   Video   `yaml:"video" toml:"video"`
	Logging Logging `yaml:"logging" toml:"logging"`
	History History `yaml:"history" toml:"history"`
}

// LibraryAnimation accepts either a single type or a list.
type LibraryAnimation struct {
	AnimationType  string   `yaml:"animation_type,omitempty" toml:"animation_type,omitempty"`
	AnimationTypes []string `yaml:"animation_types,omitempty" toml:"animation_types,omitempty"`
}

// Types returns the configured animation names, list first.
func (l LibraryAnimation) Types() []string {
	var out []string
	for _, name := range l.AnimationTypes {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	if len(out) == 0 && strings.TrimSpace(l.AnimationType) != "" {
		out = append(out, strings.TrimSpace(l.AnimationType))
	}
	return out
}

type Text struct {
	FontPath   string  `yaml:"font_path" toml:"font_path"`
	FontSize   float64 `yaml:"font_size" toml:"font_size"`
	Capitalize bool    `yaml:"capitalize" toml:"capitalize"`
}

type Frames struct {
	Width     int     `yaml:"width" toml:"width"`
	Height    int     `yaml:"height" toml:"height"`
	FPS       int     `yaml:"fps" toml:"fps"`
	Duration  float64 `yaml:"duration" toml:"duration"`
	ChunkSize int     `yaml:"chunk_size" toml:"chunk_size"`
	Seed      int64   `yaml:"seed" toml:"seed"`
	Workers   int     `yaml:"workers" toml:"workers"`
}

type Video struct {
	Encoder   string `yaml:"encoder" toml:"encoder"`
	Quality   int    `yaml:"quality" toml:"quality"`
	Thumbnail Size   `yaml:"thumbnail" toml:"thumbnail"`
	LowRes    LowRes `yaml:"low_res" toml:"low_res"`
}

type LowRes struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	Width   int  `yaml:"width" toml:"width"`
	Height  int  `yaml:"height" toml:"height"`
}

type Logging struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type History struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// AnimationsFor resolves the animation list for a library. An explicit
// override wins over per-library settings, which win over the default.
func (f *File) AnimationsFor(library, override string) []string {
	if override = strings.TrimSpace(override); override != "" {
		return []string{override}
	}
	if la, ok := f.LibraryAnimations[library]; ok {
		if types := la.Types(); len(types) > 0 {
			return types
		}
	}
	return []string{f.DefaultAnimation}
}

// RenderConfig derives the immutable run value.
func (f *File) RenderConfig() Render {
	var lowRes Size
	if f.Video.LowRes.Enabled {
		lowRes = Size{Width: f.Video.LowRes.Width, Height: f.Video.LowRes.Height}
	}
	return Render{
		Canvas: Canvas{
			Width:    f.Render.Width,
			Height:   f.Render.Height,
			FPS:      f.Render.FPS,
			Duration: f.Render.Duration,
		},
		ChunkSize:  f.Render.ChunkSize,
		Seed:       f.Render.Seed,
		Workers:    f.Render.Workers,
		Encoder:    f.Video.Encoder,
		Quality:    f.Video.Quality,
		Thumbnail:  f.Video.Thumbnail,
		LowRes:     lowRes,
		FontPath:   f.Text.FontPath,
		FontSize:   f.Text.FontSize,
		Capitalize: f.Text.Capitalize,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalid.
func (f *File) Validate() error {
	switch {
	case strings.TrimSpace(f.PosterDirectory) == "":
		return fmt.Errorf("%w: poster_directory is empty", ErrInvalid)
	case f.PosterHeight <= 0:
		return fmt.Errorf("%w: poster_height must be positive, got %d", ErrInvalid, f.PosterHeight)
	case f.Render.Width <= 0 || f.Render.Height <= 0:
		return fmt.Errorf("%w: render size %dx%d", ErrInvalid, f.Render.Width, f.Render.Height)
	case f.Render.Width%2 != 0 || f.Render.Height%2 != 0:
		return fmt.Errorf("%w: render size %dx%d must be even for yuv420p", ErrInvalid, f.Render.Width, f.Render.Height)
	case f.Render.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, f.Render.FPS)
	case f.Render.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalid, f.Render.Duration)
	case f.Render.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalid, f.Render.ChunkSize)
	case f.Render.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, f.Render.Workers)
	case f.Video.Quality < 0:
		return fmt.Errorf("%w: quality must not be negative, got %d", ErrInvalid, f.Video.Quality)
	case f.Video.Thumbnail.Width <= 0 || f.Video.Thumbnail.Height <= 0:
		return fmt.Errorf("%w: thumbnail size %dx%d", ErrInvalid, f.Video.Thumbnail.Width, f.Video.Thumbnail.Height)
	case f.Video.LowRes.Enabled && (f.Video.LowRes.Width <= 0 || f.Video.LowRes.Height <= 0):
		return fmt.Errorf("%w: low_res size %dx%d", ErrInvalid, f.Video.LowRes.Width, f.Video.LowRes.Height)
	case f.Text.FontSize <= 0:
		return fmt.Errorf("%w: font_size must be positive, got %v", ErrInvalid, f.Text.FontSize)
	case strings.TrimSpace(f.DefaultAnimation) == "":
		return fmt.Errorf("%w: default_animation is empty", ErrInvalid)
	}
	return nil
}
