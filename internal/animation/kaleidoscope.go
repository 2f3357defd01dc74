package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const kaleidoTime = 3.0

// kaleidoRings holds the sprite count of each ring, innermost first.
var kaleidoRings = []int{5, 8, 12, 18, 24}

// orbit is the ring pose at local time t: counter-rotating rings with a
// breathing radius and scale.
func orbit(center layout.Point, s *sprite.Sprite, t float64) sprite.Transform {
	theta := s.Angle + t*s.Speed*2*math.Pi
	p := layout.Polar(center, s.Radius+math.Sin(2*t)*15, theta)
	return sprite.Transform{
		X:        p.X,
		Y:        p.Y,
		Scale:    s.Hub.Scale + 0.05*math.Sin(3*t+float64(s.Ring)*0.5),
		Rotation: s.Hub.Rotation + 30*t*s.Speed,
	}
}

func kaleidoscopeChoreography() *Choreography {
	const (
		kaleido sprite.Phase = iota
		transform
	)
	return &Choreography{
		Name:        "kaleidoscope",
		Description: "rings of posters counter-rotate around the centre, then unfold into a grid",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(_ layout.Size, posters int, _ config.Canvas) layout.Params {
			return layout.Params{
				Scale:     1.8,
				Spacing:   10,
				Shape:     layout.ShapeSquare,
				Count:     max(1, posters),
				ExtraCols: 2,
			}
		},
		Stages: func(env *Env) []sprite.Stage {
			return []sprite.Stage{
				{
					Name:     "kaleido",
					Duration: kaleidoTime,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return orbit(env.Center, s, c.Local)
					},
				},
				{
					Name:     "transform",
					Duration: 1.5,
					Ease:     easing.OutCubic,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						from := orbit(env.Center, s, kaleidoTime)
						p := layout.Lerp(from.Point(), s.Final.Point(), c.Eased)
						return sprite.Transform{
							X:        p.X,
							Y:        p.Y,
							Scale:    easing.Lerp(from.Scale, s.Final.Scale, c.Eased),
							Rotation: from.Rotation * (1 - c.Eased),
						}
					},
				},
				rest("grid", 2, 0.02),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			s.Final = sprite.At(env.Grid.CellCenter(s.Row, s.Col), env.Grid.Scale, 0)

			i := s.Index
			for ring, n := range kaleidoRings {
				if i >= n {
					i -= n
					continue
				}
				s.Ring = ring
				s.Angle = float64(i) * 2 * math.Pi / float64(n)
				s.Radius = 50 + float64(ring)*60
				s.Speed = 0.8 - float64(ring)*0.1
				if ring%2 == 1 {
					s.Speed = -s.Speed
				}
				s.Hub = sprite.Anchor{Scale: 0.8 + float64(ring)*0.1, Rotation: degrees(s.Angle)}
				return
			}

			W, H := float64(env.Canvas.Width), float64(env.Canvas.Height)
			s.Ring = len(kaleidoRings)
			s.Angle = layout.Uniform(env.Rand, 0, 2*math.Pi)
			s.Radius = 1.2 * math.Max(W, H)
			s.Speed = 0.5 * layout.Sign(env.Rand)
			s.Hub = sprite.Anchor{Scale: 0.7, Rotation: degrees(s.Angle)}
		},
		Order: func(env *Env, s *sprite.Sprite) Key {
			switch s.Phase {
			case kaleido:
				return Key{Tier: 0, Primary: -float64(s.Ring), Secondary: distance(env, s)}
			case transform:
				return Key{Tier: 1, Primary: distance(env, s)}
			default:
				return Key{Tier: 2, Primary: gridKey(s)}
			}
		},
	}
}
