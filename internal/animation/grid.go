package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

// The grid choreography moves one camera over a large static wall: a
// damped figure-eight drift, a tilt that levels out, then a zoom into the
// centre.
func gridChoreography() *Choreography {
	return &Choreography{
		Name:        "grid",
		Description: "camera drifts over a poster wall, levels out and zooms in",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(_ layout.Size, posters int, _ config.Canvas) layout.Params {
			return layout.Params{
				Scale:    1,
				Coverage: 2.5,
				Shape:    layout.ShapeStep,
				BaseCols: 25,
				Count:    max(1, posters),
				Step:     5,
			}
		},
		Stages: func(env *Env) []sprite.Stage {
			follow := func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
				return gridCamera(env, s, c.Local)
			}
			return []sprite.Stage{
				{Name: "drift", Duration: 1.5, Eval: follow},
				{Name: "normalize", Duration: 1.5, Eval: follow},
				{Name: "focus", Duration: 1.5, Eval: follow},
				{Name: "settled", Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
					tr := gridCamera(env, s, c.Start)
					z := 1 + 0.004*math.Sin(0.8*c.Since())
					p := scaleAbout(tr.Point(), env.Center, z)
					tr.X, tr.Y = p.X, p.Y
					tr.Scale *= z
					return tr
				}},
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			s.Final = sprite.At(env.Grid.CellCenter(s.Row, s.Col), env.Grid.Scale, 0)
			s.Start = s.Final
		},
		Order: func(_ *Env, s *sprite.Sprite) Key {
			return Key{Primary: float64(s.Row), Secondary: float64(s.Col)}
		},
	}
}

// gridCamera places a cell under the camera at time t. The camera offset
// is applied to the grid centre and every cell is rotated and zoomed about
// it.
func gridCamera(env *Env, s *sprite.Sprite, t float64) sprite.Transform {
	W, H := float64(env.Canvas.Width), float64(env.Canvas.Height)
	settle := easing.Smooth(t, 1.5, 4.5)
	level := easing.Smooth(t, 1.5, 3.0)
	focus := easing.Smooth(t, 3.0, 4.5)

	movement := 1 - 0.9*settle
	offset := layout.Point{
		X: 0.2*W*math.Sin(0.13*t)*movement + 0.08*W*movement*math.Cos(0.18*t),
		Y: 0.2*H*math.Sin(0.22*t)*movement + 0.08*W*movement*math.Sin(0.15*t),
	}.Mul(1 - focus)

	angle := 12 * math.Sin(0.3*t) * (1 - level)

	zoom := 2 + 1.5*focus
	if t < 3 {
		zoom = 1 + easing.InOutQuad(t/3)
	}
	zoom *= 1 + 0.02*math.Sin(0.4*t)*(1-focus)

	center := env.Center.Add(offset.Mul(zoom))
	cell := s.Final.Point().Sub(env.Center).Mul(zoom)
	p := center.Add(layout.Rotate(cell, angle))
	return sprite.Transform{X: p.X, Y: p.Y, Scale: s.Final.Scale * zoom, Rotation: angle}
}
