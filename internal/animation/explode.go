package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	explodeCompress = 1.0
	explodeFlight   = 2.5
	explodeSpin     = 30
)

// compressedPose is the pulsing, slowly spinning pose held at the centre.
func compressedPose(s *sprite.Sprite, local float64) sprite.Transform {
	return sprite.Transform{
		X:        s.Hub.X,
		Y:        s.Hub.Y,
		Scale:    s.Hub.Scale * (1 + 0.1*math.Sin(10*local)),
		Rotation: s.Hub.Rotation + explodeSpin*local*s.Spin,
	}
}

func explodeChoreography() *Choreography {
	const exploding sprite.Phase = 1
	return &Choreography{
		Name:        "explode",
		Description: "posters pulse in a tight cluster, burst outwards and spring into a grid",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{Scale: 2, Spacing: 20, Shape: layout.ShapeCanvas, BaseCols: 10}
		},
		Stages: func(*Env) []sprite.Stage {
			return []sprite.Stage{
				{
					Name: "compressed",
					Span: func(s *sprite.Sprite) float64 { return explodeCompress + s.Lag },
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return compressedPose(s, c.Local)
					},
				},
				{
					Name: "exploding",
					Span: func(s *sprite.Sprite) float64 { return explodeFlight - s.Lag },
					Ease: easing.OutQuart,
					Eval: tween(via2Anchor, via1Anchor),
				},
				{
					Name:     "settling",
					Duration: 1.0,
					Ease:     easing.OutElastic,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						tr := s.Via1.Lerp(s.Final, c.Eased).Pose()
						tr.Rotation = normalizeDegrees(s.Via1.Rotation) * (1 - easing.InOutQuad(c.Progress))
						return tr
					},
				},
				{
					Name: "settled",
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						seed := float64(s.Row)*0.5 + float64(s.Col)*0.5
						return sprite.Wobble(s.Final, c.Since(), 2, 2, 1.5, 0.03, 1.2, seed)
					},
				},
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			rng := env.Rand
			final := env.Grid.CellCenter(s.Row, s.Col)
			s.Final = sprite.At(final, env.Grid.Scale, 0)

			hub := env.Center.Add(layout.Point{X: layout.Jitter(rng, 20), Y: layout.Jitter(rng, 20)})
			s.Hub = sprite.At(hub, 0.2+layout.Uniform(rng, 0, 0.1), layout.Uniform(rng, -30, 30))
			s.Start = s.Hub
			s.Spin = layout.Sign(rng) * layout.Uniform(rng, 0.8, 1.2)
			s.Lag = layout.Uniform(rng, 0, 0.3)

			// Via2 is where the compressed stage leaves off; Via1 is the
			// overshoot the explosion flies to.
			held := compressedPose(s, explodeCompress+s.Lag)
			s.Via2 = sprite.Anchor{X: held.X, Y: held.Y, Scale: held.Scale, Rotation: held.Rotation}

			overshoot := env.Center.Add(final.Sub(env.Center).Mul(1.3 + layout.Uniform(rng, 0, 0.3)))
			s.Via1 = sprite.At(overshoot, env.Grid.Scale*1.1, s.Via2.Rotation+120*s.Spin)
		},
		Order: func(env *Env, s *sprite.Sprite) Key {
			if s.Phase <= exploding {
				return Key{Tier: 0, Primary: -distance(env, s)}
			}
			return Key{Tier: 1, Primary: gridKey(s)}
		},
	}
}
