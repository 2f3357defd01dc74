package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	vortexIntro sprite.Phase = iota
	vortexPath1
	vortexPath2
	vortexExpanding
	vortexGrid
)

// vortexTrailMin is the shortest stage vector that gets motion trails.
const vortexTrailMin = 50

func vortexChoreography() *Choreography {
	return &Choreography{
		Name:        "vortex",
		Description: "posters fly in from the edges, swirl into a vortex and burst out to a grid",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{
				Scale:     1.8,
				Spacing:   25,
				Shape:     layout.ShapeGolden,
				BaseCols:  9,
				ExtraRows: 2,
			}
		},
		Stages: func(*Env) []sprite.Stage {
			return []sprite.Stage{
				{
					Name:     "intro",
					Duration: 0.5,
					Ease:     easing.OutCubic,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						tr := s.Start.Lerp(s.Via1, c.Eased).Pose()
						tr.Rotation = s.Start.Rotation + 360*c.Progress
						return tr
					},
				},
				{Name: "path1", Duration: 0.8, Ease: easing.InOutCubic, Eval: tween(via1Anchor, via2Anchor)},
				{Name: "path2", Duration: 1.2, Ease: easing.InOutElastic, Eval: tween(via2Anchor, hubAnchor)},
				{
					Name:     "expanding",
					Duration: 2.0,
					Ease:     easing.OutBounce,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						tr := s.Hub.Lerp(s.Final, c.Eased).Pose()
						level := s.Hub.Rotation - normalizeDegrees(s.Hub.Rotation)
						swing := 360 * c.Eased * (1 - c.Eased) * math.Sin(s.Angle+c.Local)
						tr.Rotation = easing.Lerp(s.Hub.Rotation, level, c.Eased) + swing
						return tr
					},
				},
				{
					Name: "grid",
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return sprite.Wobble(s.Final, c.Since(), 3, 1.5, 1.5, 0.03, 1.5, float64(s.Index)*0.2)
					},
				},
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			rng := env.Rand
			i := float64(s.Index)
			s.Angle = i * layout.GoldenAngle

			start, _ := layout.EdgeEntry(rng, env.Canvas)
			s.Start = sprite.At(start, layout.Uniform(rng, 0.3, 0.6), layout.Uniform(rng, -180, 180))

			via1 := layout.Lerp(start, env.Center, layout.Uniform(rng, 0.3, 0.5))
			via1 = via1.Add(layout.Point{X: layout.Jitter(rng, 100), Y: layout.Jitter(rng, 100)})
			s.Via1 = sprite.At(via1, layout.Uniform(rng, 0.5, 0.8), s.Start.Rotation+360)

			ring := 150 + layout.Jitter(rng, 30)
			s.Via2 = sprite.At(layout.Polar(env.Center, ring, s.Angle), layout.Uniform(rng, 0.6, 0.9), s.Via1.Rotation+540)

			s.Hub = sprite.At(layout.Polar(env.Center, 30+float64(s.Index%20)*4, s.Angle), layout.Uniform(rng, 0.7, 0.9), s.Via2.Rotation+360)
			s.Final = sprite.At(env.Grid.CellCenter(s.Row, s.Col), env.Grid.Scale, 0)
			s.Delay = layout.Uniform(rng, 0, 0.4)
		},
		Order: func(env *Env, s *sprite.Sprite) Key {
			d := distance(env, s)
			i := float64(s.Index)
			switch s.Phase {
			case vortexIntro:
				return Key{Tier: 0, Primary: d}
			case vortexPath1:
				return Key{Tier: 1, Primary: 0.8*d + 0.2*i}
			case vortexPath2:
				return Key{Tier: 2, Primary: 0.3*d + 0.7*i}
			case vortexExpanding:
				return Key{Tier: 3, Primary: 0.5*d + 0.5*i}
			default:
				return Key{Tier: 4, Primary: gridKey(s)}
			}
		},
		Trail: func(_ *Env, s *sprite.Sprite) (layout.Point, bool) {
			var d layout.Point
			switch s.Phase {
			case vortexIntro:
				d = s.Via1.Point().Sub(s.Start.Point())
			case vortexPath1:
				d = s.Via2.Point().Sub(s.Via1.Point())
			default:
				return layout.Point{}, false
			}
			if d.Len() <= vortexTrailMin {
				return layout.Point{}, false
			}
			return d, true
		},
	}
}
