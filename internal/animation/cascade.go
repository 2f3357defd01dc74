package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	cascadeTime   = 2.0
	cascadeLanded = 0.95
)

func cascadeChoreography() *Choreography {
	const landing sprite.Phase = 1
	return &Choreography{
		Name:        "cascade",
		Description: "rows sweep in from alternating sides along curved paths and bounce into place",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{Scale: 2, Spacing: 20, ExtraCols: 2, ExtraRows: 1}
		},
		Stages: func(*Env) []sprite.Stage {
			// Flight and landing share one curve; the split only marks the
			// last 5% as landed for paint order.
			return []sprite.Stage{
				{Name: "cascade", Duration: cascadeTime * cascadeLanded, Eval: cascadeFlight},
				{Name: "landing", Duration: cascadeTime * (1 - cascadeLanded), Eval: cascadeFlight},
				rest("settled", 2, 0.02),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			rng := env.Rand
			g := env.Grid
			W, H := float64(env.Canvas.Width), float64(env.Canvas.Height)

			startX := -g.CellW
			if s.Row%2 == 1 {
				s.Col = g.Cols - 1 - s.Col
				startX = W + g.CellW
			}
			final := g.CellCenter(s.Row, s.Col)
			s.Final = sprite.At(final, g.Scale, 0)

			start := layout.Point{
				X: startX + layout.Jitter(rng, 50),
				Y: -200 + float64(s.Row)*100 + layout.Jitter(rng, 20),
			}
			s.Start = sprite.At(start, layout.Uniform(rng, 0.7, 1.1), layout.Uniform(rng, -15, 15))

			row := float64(s.Row)
			s.C1 = layout.Point{X: start.X + (final.X-start.X)*0.3, Y: 0.4*H + row*40}
			s.C2 = layout.Point{X: start.X + (final.X-start.X)*0.7, Y: 0.6*H + row*30}

			s.Delay = row*0.3 + math.Abs(float64(s.Col-g.Cols/2))*0.02
		},
		Order: func(_ *Env, s *sprite.Sprite) Key {
			moving := 1.0
			if s.Phase >= landing {
				moving = 0
			}
			return Key{Tier: s.Row, Primary: moving, Secondary: float64(s.Col)}
		},
	}
}

// cascadeFlight follows the sprite's Bezier path with an overshooting ease
// and a small vertical bounce during the final fifth of the curve.
func cascadeFlight(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
	e := easing.OutBack(easing.Clamp01(c.Local / cascadeTime))
	p := layout.Bezier(s.Start.Point(), s.C1, s.C2, s.Final.Point(), e)
	if e > 0.8 {
		bf := math.Min(1, (e-0.8)/0.2)
		p.Y += 10 * math.Sin(bf*math.Pi) * (1 - bf)
	}
	return sprite.Transform{
		X:        p.X,
		Y:        p.Y,
		Scale:    easing.Lerp(s.Start.Scale, s.Final.Scale, e),
		Rotation: s.Start.Rotation * (1 - e),
	}
}
