package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const (
	shockGather     = 1.0
	shockPulses     = 4
	shockPeriod     = 0.6
	shockBurst      = 0.6
	shockSettle     = 0.5
	shockOvershoot  = 1.08
	shockHubScale   = 0.7
	shockPulseScale = 0.1
)

const (
	shockEntry sprite.Phase = iota
	shockPulse
	shockBurstPhase
)

// pulseDisplacement is how far along its centre-to-cell vector a sprite
// sits, since seconds into the pulse stage. Each pulse pushes out over 40%
// of its period and falls back over the rest, stronger every time.
func pulseDisplacement(s *sprite.Sprite, since float64) float64 {
	pt := since - s.Offset
	if pt < 0 {
		return 0
	}
	k := min(shockPulses-1, int(pt/shockPeriod))
	u := easing.Clamp01((pt - float64(k)*shockPeriod) / shockPeriod)
	strength := 0.2 + 0.8*float64(k)/shockPulses
	if u <= 0.4 {
		return strength * easing.OutCubic(u/0.4)
	}
	return strength * (1 - easing.InCubic((u-0.4)/0.6))
}

func pulsePose(s *sprite.Sprite, since float64) sprite.Transform {
	d := pulseDisplacement(s, since)
	p := s.Hub.Point().Add(s.Final.Point().Sub(s.Hub.Point()).Mul(d))
	return sprite.Transform{
		X:        p.X,
		Y:        p.Y,
		Scale:    s.Hub.Scale + shockPulseScale*d,
		Rotation: 10 * math.Sin(5*since+float64(s.Index)*0.2) * d,
	}
}

func shockwaveChoreography() *Choreography {
	return &Choreography{
		Name:        "shockwave",
		Description: "posters gather at the centre, pulse outwards in growing waves and burst into a grid",
		FadeStart:   4.5,
		TextStart:   defaultTextStart,
		Layout: func(layout.Size, int, config.Canvas) layout.Params {
			return layout.Params{
				Scale:     1.8,
				Spacing:   20,
				Shape:     layout.ShapeCanvas,
				BaseCols:  9,
				ExtraRows: 2,
			}
		},
		Stages: func(*Env) []sprite.Stage {
			pulseTime := shockPulses * shockPeriod
			return []sprite.Stage{
				{
					Name:     "gather",
					Duration: shockGather,
					Ease:     easing.OutCubic,
					Eval:     tween(startAnchor, hubAnchor),
				},
				{
					Name:     "pulse",
					Duration: pulseTime,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						return pulsePose(s, c.Since())
					},
				},
				{
					Name:     "burst",
					Duration: shockBurst,
					Ease:     easing.OutBack,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						from := pulsePose(s, pulseTime)
						to := s.Final.Pose()
						to.Scale *= shockOvershoot
						p := layout.Lerp(from.Point(), to.Point(), c.Eased)
						return sprite.Transform{
							X:        p.X,
							Y:        p.Y,
							Scale:    easing.Lerp(from.Scale, to.Scale, c.Eased),
							Rotation: from.Rotation * (1 - c.Eased),
						}
					},
				},
				{
					Name:     "settle",
					Duration: shockSettle,
					Ease:     easing.OutBounce,
					Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
						tr := s.Final.Pose()
						tr.Scale = easing.Lerp(s.Final.Scale*shockOvershoot, s.Final.Scale, c.Eased)
						return tr
					},
				},
				rest("grid", 2, 0.02),
			}
		},
		Seed: func(env *Env, s *sprite.Sprite) {
			rng := env.Rand
			W, H := float64(env.Canvas.Width), float64(env.Canvas.Height)
			final := env.Grid.CellCenter(s.Row, s.Col)
			s.Final = sprite.At(final, env.Grid.Scale, 0)
			s.Hub = sprite.At(env.Center, shockHubScale, 0)

			dir := final.Sub(env.Center).Unit()
			if dir.Len() == 0 {
				dir = layout.Polar(layout.Point{}, 1, float64(s.Index)*layout.GoldenAngle)
			}
			start := layout.Point{
				X: env.Center.X - dir.X*W*1.5 + layout.Jitter(rng, 100),
				Y: env.Center.Y - dir.Y*H*1.5 + layout.Jitter(rng, 100),
			}
			s.Start = sprite.At(start, layout.Uniform(rng, 0.3, 0.6), layout.Uniform(rng, -180, 180))
			s.Delay = layout.Uniform(rng, 0, 0.5)
			s.Offset = layout.Uniform(rng, 0, 0.1)
		},
		Order: func(env *Env, s *sprite.Sprite) Key {
			switch s.Phase {
			case shockEntry:
				return Key{Tier: 1, Primary: distance(env, s), Secondary: float64(s.Index)}
			case shockPulse:
				return Key{Tier: 2, Primary: -distance(env, s), Secondary: float64(s.Index)}
			default:
				return Key{Tier: 3, Primary: float64(s.Row), Secondary: float64(s.Col)}
			}
		},
		Glow: func(_ *Env, s *sprite.Sprite, t float64) float64 {
			since := t - s.Delay - shockGather
			switch s.Phase {
			case shockPulse:
				return pulseDisplacement(s, since)
			case shockBurstPhase:
				return 1 - easing.Clamp01((since-shockPulses*shockPeriod)/shockBurst)
			}
			return 0
		},
	}
}
