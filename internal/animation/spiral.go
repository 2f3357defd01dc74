package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	spiralTurns     = 12
	spiralLineScale = 1.5
	spiralGridScale = 2.0
	spiralMaxLine   = 1000
)

func spiralChoreography() *Choreography {
	return &Choreography{
		Name:        "spiral",
		Description: "a line of posters winds into a spiral, then unrolls into a grid",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{
				Scale:     spiralGridScale,
				Spacing:   20,
				Margin:    1,
				ExtraCols: 1,
				ExtraRows: 1,
				ShiftY:    -0.05,
			}
		},
		Stages: func(*Env) []sprite.Stage {
			return []sprite.Stage{
				{
					Name:     "spiral",
					Duration: 3,
					Ease:     easing.InOutQuad,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						p := layout.Lerp(s.Start.Point(), s.Via1.Point(), c.Eased)
						return sprite.Transform{X: p.X, Y: p.Y, Scale: spiralLineScale, Rotation: s.Via1.Rotation * c.Eased}
					},
				},
				{
					Name:     "transition",
					Duration: 2,
					Ease:     easing.InOutQuad,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						tr := s.Via1.Lerp(s.Final, c.Eased).Pose()
						if c.Progress > 0.8 {
							damping := 1 - (c.Progress-0.8)/0.2
							osc := math.Sin(c.Local*20) * 3 * damping
							tr.X += osc
							tr.Y += osc * 0.5
						}
						return tr
					},
				},
				rest("settled", 1.5, 0.01),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			W, H := float64(env.Canvas.Width), float64(env.Canvas.Height)
			n := min(spiralMaxLine, env.Grid.Cells())

			spacing := 80.0
			switch {
			case n > 300:
				spacing = 40
			case n > 100:
				spacing = 60
			}
			lineStart := (1.5*W-float64(n)*spacing)/2 - 0.25*W

			s.Start = sprite.Anchor{X: lineStart + float64(s.Index)*spacing, Y: H / 2, Scale: spiralLineScale}

			b := 0.6 * math.Min(W, H) / (2 * math.Pi * 15)
			theta := float64(s.Index) / float64(n) * 2 * math.Pi * spiralTurns
			s.Angle = theta
			s.Via1 = sprite.At(layout.Spiral(env.Center, 10, b, theta), spiralLineScale, degrees(theta))
			s.Final = sprite.At(env.Grid.CellCenter(s.Row, s.Col), spiralGridScale, 0)
		},
		Order: func(_ *Env, s *sprite.Sprite) Key {
			return Key{Tier: int(s.Phase), Primary: float64(s.Index)}
		},
	}
}
