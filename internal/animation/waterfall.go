package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

func waterfallChoreography() *Choreography {
	const landed sprite.Phase = 1
	return &Choreography{
		Name:        "waterfall",
		Description: "posters rain down from above and land row by row",
		FadeStart:   4.0,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{Scale: 1, Spacing: 10}
		},
		Stages: func(*Env) []sprite.Stage {
			return []sprite.Stage{
				{
					Name: "falling",
					Span: func(s *sprite.Sprite) float64 { return s.Lag },
					Ease: easing.OutCubic,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						p := layout.Lerp(s.Start.Point(), s.Final.Point(), c.Eased)
						rot := (s.Start.Rotation + s.Spin*math.Sin(3*c.Local)) * (1 - c.Eased)
						return sprite.Transform{X: p.X, Y: p.Y, Scale: s.Final.Scale, Rotation: rot}
					},
				},
				rest("landed", 1, 0),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			final := env.Grid.CellCenter(s.Row, s.Col)
			h := env.Poster.H * env.Grid.Scale
			s.Final = sprite.At(final, env.Grid.Scale, 0)
			start := layout.Above(env.Rand, final.X, h, 1.5*float64(env.Canvas.Height))
			s.Start = sprite.At(start, env.Grid.Scale, layout.Uniform(env.Rand, -15, 15))
			s.Spin = layout.Uniform(env.Rand, -3, 3)
			s.Lag = layout.Uniform(env.Rand, 2, 3)
			s.Delay = float64(s.Col)*0.03 + float64(s.Row)*0.1
		},
		Order: func(_ *Env, s *sprite.Sprite) Key {
			tier := 0
			if s.Phase == landed {
				tier = 1
			}
			return Key{Tier: tier, Primary: s.Transform.Y}
		},
	}
}
