// Package compositor paints an animation's sprites onto RGBA frames.
package compositor

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ivlev/librarycard/internal/animation"
	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/logging"
	"github.com/ivlev/librarycard/internal/source"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	// mipLevels holds 1, 1/2 and 1/4 copies of each poster.
	mipLevels = 3
	// mipTolerance lets a level be up to 5% smaller than the target.
	mipTolerance = 0.95

	trailGhosts  = 5
	trailSpread  = 0.2
	glowRings    = 5
	glowMaxAlpha = 30
)

var glowColor = color.RGBA{R: 200, G: 220, B: 255}

// Stats counts what happened while drawing since the last ResetStats.
type Stats struct {
	Drawn     int
	Culled    int
	Fallbacks int
}

type placement struct {
	level int
	m     f64.Aff3
	alpha uint8
	ok    bool
}

// Compositor draws one animation. It is not safe for concurrent use.
type Compositor struct {
	anim    *animation.Animation
	canvas  config.Canvas
	logger  *slog.Logger
	posters [][mipLevels]*image.RGBA
	overlay *Overlay

	last   []placement
	warned []bool
	stats  Stats
}

// Options for New.
type Options struct {
	Logger *slog.Logger
	Text   TextOptions
}

// New prepares the poster pyramids for anim.
func New(anim *animation.Animation, posters []source.Poster, opts Options) *Compositor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Compositor{
		anim:    anim,
		canvas:  anim.Canvas(),
		logger:  logger,
		posters: make([][mipLevels]*image.RGBA, len(posters)),
		last:    make([]placement, len(anim.Sprites())),
		warned:  make([]bool, len(anim.Sprites())),
	}
	for i, p := range posters {
		c.posters[i] = pyramid(p.Image)
	}
	if opts.Text.Text != "" {
		c.overlay = NewOverlay(opts.Text, c.canvas, logger)
	}
	return c
}

func pyramid(img *image.RGBA) [mipLevels]*image.RGBA {
	var levels [mipLevels]*image.RGBA
	levels[0] = img
	for l := 1; l < mipLevels; l++ {
		prev := levels[l-1]
		b := prev.Bounds()
		w, h := b.Dx()/2, b.Dy()/2
		if w < 1 || h < 1 {
			levels[l] = prev
			continue
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), prev, b, xdraw.Src, nil)
		levels[l] = dst
	}
	return levels
}

// Draw paints every started sprite of the animation at its current state,
// then the text overlay for elapsed time t. The animation must already be
// updated to t.
func (c *Compositor) Draw(dst *image.RGBA, t float64) {
	if g := c.anim.Glow(t); g > 0 {
		c.drawGlow(dst, g)
	}
	for _, i := range c.anim.Order() {
		s := c.anim.Sprite(i)
		if d, ok := c.anim.Trail(i); ok {
			c.drawTrail(dst, s, d.X, d.Y)
		}
		c.drawSprite(dst, s)
	}
	if c.overlay != nil {
		c.overlay.Draw(dst, t)
	}
}

// Stats returns counters accumulated since the last ResetStats.
func (c *Compositor) Stats() Stats { return c.stats }

func (c *Compositor) ResetStats() { c.stats = Stats{} }

func (c *Compositor) drawSprite(dst *image.RGBA, s *sprite.Sprite) {
	if s.Poster < 0 || s.Poster >= len(c.posters) {
		return
	}
	p, ok := c.place(s.Poster, s.Transform)
	if !ok {
		p = c.last[s.Index]
		if !p.ok {
			return
		}
		c.stats.Fallbacks++
		if !c.warned[s.Index] {
			c.warned[s.Index] = true
			c.logger.Warn("degenerate sprite transform, reusing last placement",
				slog.Int("sprite", s.Index),
				slog.Float64("x", s.Transform.X),
				slog.Float64("y", s.Transform.Y),
				slog.Float64("scale", s.Transform.Scale))
		}
	} else {
		c.last[s.Index] = p
	}
	p.alpha = s.Transform.Opacity
	c.paint(dst, s.Poster, p)
}

// drawTrail smears fading copies of the sprite behind its direction of
// travel (dx, dy).
func (c *Compositor) drawTrail(dst *image.RGBA, s *sprite.Sprite, dx, dy float64) {
	if s.Poster < 0 || s.Poster >= len(c.posters) {
		return
	}
	for k := trailGhosts - 1; k >= 0; k-- {
		back := float64(k+1) / float64(trailGhosts+1) * trailSpread
		tr := s.Transform
		tr.X -= dx * back
		tr.Y -= dy * back
		p, ok := c.place(s.Poster, tr)
		if !ok {
			continue
		}
		p.alpha = uint8(int(100-20*k) * int(s.Transform.Opacity) / 255)
		c.paint(dst, s.Poster, p)
	}
}

// place computes the source-to-canvas matrix for a transform. It returns
// false for transforms that cannot be drawn.
func (c *Compositor) place(poster int, tr sprite.Transform) (placement, bool) {
	for _, v := range []float64{tr.X, tr.Y, tr.Scale, tr.Rotation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return placement{}, false
		}
	}
	levels := c.posters[poster]
	full := levels[0].Bounds()
	w, h := float64(full.Dx())*tr.Scale, float64(full.Dy())*tr.Scale
	if w < 1 || h < 1 {
		return placement{}, false
	}

	level := 0
	for l := mipLevels - 1; l > 0; l-- {
		if float64(levels[l].Bounds().Dx()) >= w*mipTolerance {
			level = l
			break
		}
	}
	src := levels[level].Bounds()
	k := w / float64(src.Dx())
	hw, hh := float64(src.Dx())/2, float64(src.Dy())/2

	sin, cos := math.Sincos(tr.Rotation * math.Pi / 180)
	m := f64.Aff3{
		k * cos, k * sin, tr.X - k*(cos*hw+sin*hh),
		-k * sin, k * cos, tr.Y - k*(-sin*hw+cos*hh),
	}
	return placement{level: level, m: m, ok: true}, true
}

func (c *Compositor) paint(dst *image.RGBA, poster int, p placement) {
	if p.alpha == 0 {
		return
	}
	src := c.posters[poster][p.level]
	if !c.visible(src.Bounds(), p.m) {
		c.stats.Culled++
		return
	}
	var opts *xdraw.Options
	if p.alpha < 255 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: p.alpha})}
	}
	xdraw.ApproxBiLinear.Transform(dst, p.m, src, src.Bounds(), xdraw.Over, opts)
	c.stats.Drawn++
}

// visible reports whether the transformed source rectangle touches the
// canvas.
func (c *Compositor) visible(src image.Rectangle, m f64.Aff3) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range [4][2]float64{
		{0, 0},
		{float64(src.Dx()), 0},
		{0, float64(src.Dy())},
		{float64(src.Dx()), float64(src.Dy())},
	} {
		x := m[0]*pt[0] + m[1]*pt[1] + m[2]
		y := m[3]*pt[0] + m[4]*pt[1] + m[5]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return maxX >= 0 && maxY >= 0 && minX < float64(c.canvas.Width) && minY < float64(c.canvas.Height)
}

// drawGlow paints concentric translucent discs around the canvas centre,
// widest and faintest first.
func (c *Compositor) drawGlow(dst *image.RGBA, strength float64) {
	center := c.anim.Center()
	maxR := math.Min(float64(c.canvas.Width), float64(c.canvas.Height)) * 0.5 * strength
	for i := glowRings; i >= 1; i-- {
		f := float64(i) / glowRings
		r := maxR * f
		alpha := uint8(glowMaxAlpha * f * strength)
		if r < 1 || alpha == 0 {
			continue
		}
		col := color.NRGBA{R: glowColor.R, G: glowColor.G, B: glowColor.B, A: alpha}
		disc := &circle{x: center.X, y: center.Y, r: r}
		xdraw.DrawMask(dst, disc.Bounds(), image.NewUniform(col), image.Point{}, disc, disc.Bounds().Min, xdraw.Over)
	}
}

// circle is an opaque disc mask.
type circle struct {
	x, y, r float64
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(c.x-c.r)), int(math.Floor(c.y-c.r)),
		int(math.Ceil(c.x+c.r)), int(math.Ceil(c.y+c.r)),
	)
}

func (c *circle) At(x, y int) color.Color {
	dx, dy := float64(x)+0.5-c.x, float64(y)+0.5-c.y
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
