// Package plan expands libraries and animation types into render jobs and
// names their outputs.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ivlev/librarycard/internal/config"
)

const Version = "1.0"

// Plan is the full list of videos a run will produce.
type Plan struct {
	Version string `yaml:"version"`
	Seed    int64  `yaml:"seed"`
	Canvas  Canvas `yaml:"canvas"`
	Jobs    []Job  `yaml:"jobs"`
}

type Canvas struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FPS      int     `yaml:"fps"`
	Duration float64 `yaml:"duration"`
}

// Job renders one library with one animation.
type Job struct {
	Library   string  `yaml:"library"`
	Animation string  `yaml:"animation"`
	Outputs   Outputs `yaml:"outputs"`
}

// Outputs are the files a job writes. Empty paths are skipped.
type Outputs struct {
	Video           string `yaml:"video"`
	VideoLowRes     string `yaml:"video_low_res,omitempty"`
	Thumbnail       string `yaml:"thumbnail,omitempty"`
	ThumbnailLowRes string `yaml:"thumbnail_low_res,omitempty"`
}

// All lists the non-empty output paths.
func (o Outputs) All() []string {
	var out []string
	for _, p := range []string{o.Video, o.VideoLowRes, o.Thumbnail, o.ThumbnailLowRes} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Options narrows what Build produces.
type Options struct {
	OutputDir      string
	Override       string
	SkipLowRes     bool
	SkipThumbnails bool
}

// NewOutputs names the files for one library and animation:
// {lib}_{anim}_video_2k.mp4, _video_480p.mp4, _thumbnail_2k.png and
// _thumbnail_480p.png.
func NewOutputs(dir, library, animation string) Outputs {
	base := filepath.Join(dir, library+"_"+animation)
	return Outputs{
		Video:           base + "_video_2k.mp4",
		VideoLowRes:     base + "_video_480p.mp4",
		Thumbnail:       base + "_thumbnail_2k.png",
		ThumbnailLowRes: base + "_thumbnail_480p.png",
	}
}

// Build expands libraries in order, each into every animation configured
// for it. Duplicate library/animation pairs are dropped.
func Build(cfg *config.File, libraries []string, opts Options) Plan {
	dir := opts.OutputDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	p := Plan{
		Version: Version,
		Seed:    cfg.Render.Seed,
		Canvas: Canvas{
			Width:    cfg.Render.Width,
			Height:   cfg.Render.Height,
			FPS:      cfg.Render.FPS,
			Duration: cfg.Render.Duration,
		},
	}
	seen := make(map[[2]string]bool)
	for _, lib := range libraries {
		lib = strings.TrimSpace(lib)
		if lib == "" {
			continue
		}
		for _, anim := range cfg.AnimationsFor(lib, opts.Override) {
			anim = strings.ToLower(strings.TrimSpace(anim))
			key := [2]string{lib, anim}
			if anim == "" || seen[key] {
				continue
			}
			seen[key] = true

			out := NewOutputs(dir, lib, anim)
			if opts.SkipLowRes || !cfg.Video.LowRes.Enabled {
				out.VideoLowRes = ""
			}
			if opts.SkipThumbnails {
				out.Thumbnail, out.ThumbnailLowRes = "", ""
			}
			p.Jobs = append(p.Jobs, Job{Library: lib, Animation: anim, Outputs: out})
		}
	}
	return p
}

// Validate checks a plan read from disk.
func (p *Plan) Validate() error {
	if p.Version != Version {
		return fmt.Errorf("plan version %q, want %q", p.Version, Version)
	}
	for i, j := range p.Jobs {
		if j.Library == "" || j.Animation == "" || j.Outputs.Video == "" {
			return fmt.Errorf("plan job %d is incomplete", i)
		}
	}
	return nil
}
