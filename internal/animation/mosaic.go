package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	mosaicTiles    = 35
	mosaicZoomTime = 4.0
	mosaicReveal   = 0.3
	mosaicMaxDelay = 0.8
)

// mosaicZoom is the whole-canvas zoom at elapsed time t: 2x at the start,
// easing out to 1x.
func mosaicZoom(t float64) float64 {
	return 2 - easing.OutCubic(easing.Clamp01(t/mosaicZoomTime))
}

func mosaicChoreography() *Choreography {
	return &Choreography{
		Name:        "mosaic",
		Description: "small tiles pop in from the centre outwards while the wall zooms out",
		FadeStart:   4.0,
		TextStart:   defaultTextStart,
		Layout: func(poster layout.Size, _ int, canvas config.Canvas) layout.Params {
			tile := float64(canvas.Width) / mosaicTiles
			return layout.Params{Scale: tile / poster.W, Coverage: 1.5, Shape: layout.ShapeWide}
		},
		Stages: func(env *Env) []sprite.Stage {
			place := func(s *sprite.Sprite, t, pop float64) sprite.Transform {
				z := mosaicZoom(t)
				p := scaleAbout(s.Final.Point(), env.Center, z)
				return sprite.Transform{X: p.X, Y: p.Y, Scale: s.Final.Scale * z * pop}
			}
			return []sprite.Stage{
				{
					Name:     "reveal",
					Duration: mosaicReveal,
					Ease:     easing.OutBack,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return place(s, c.Elapsed, easing.Lerp(0.6, 1, c.Eased))
					},
				},
				{
					Name: "zoom",
					Span: func(s *sprite.Sprite) float64 { return mosaicZoomTime - s.Delay - mosaicReveal },
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return place(s, c.Elapsed, 1)
					},
				},
				rest("settled", 0.5, 0.01),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			if env.Posters > 0 {
				s.Poster = env.Rand.Intn(env.Posters)
			}
			s.Final = sprite.At(env.Grid.CellCenter(s.Row, s.Col), env.Grid.Scale, 0)
			s.Start = s.Final
			dx := float64(s.Col) - float64(env.Grid.Cols)/2
			dy := float64(s.Row) - float64(env.Grid.Rows)/2
			s.Delay = math.Min(mosaicMaxDelay, 0.05*math.Hypot(dx, dy))
		},
		Order: func(_ *Env, s *sprite.Sprite) Key {
			return Key{Primary: -s.Delay, Secondary: float64(s.Index)}
		},
	}
}
