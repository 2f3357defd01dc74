package animation

import (
	"math"

	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

const defaultTextStart = 4.5

// tween moves linearly in eased time between two anchors.
func tween(from, to func(s *sprite.Sprite) sprite.Anchor) func(*sprite.Sprite, sprite.Clock) sprite.Transform {
	return func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
		return from(s).Lerp(to(s), c.Eased).Pose()
	}
}

func startAnchor(s *sprite.Sprite) sprite.Anchor { return s.Start }
func via1Anchor(s *sprite.Sprite) sprite.Anchor  { return s.Via1 }
func via2Anchor(s *sprite.Sprite) sprite.Anchor  { return s.Via2 }
func hubAnchor(s *sprite.Sprite) sprite.Anchor   { return s.Hub }
func finalAnchor(s *sprite.Sprite) sprite.Anchor { return s.Final }

// rest is a terminal stage that breathes around the final anchor.
// Row and column shift the phase so neighbours do not move in lockstep.
func rest(name string, amp, pulse float64) sprite.Stage {
	return sprite.Stage{
		Name: name,
		Eval: func(s *sprite.Sprite, c sprite.Clock) sprite.Transform {
			seed := float64(s.Row)*0.5 + float64(s.Col)*0.3
			return sprite.Wobble(s.Final, c.Since(), amp, 1.5, 1.2, pulse, 1.1, seed)
		},
	}
}

func distance(env *Env, s *sprite.Sprite) float64 {
	return layout.Dist(s.Transform.Point(), env.Center)
}

func gridKey(s *sprite.Sprite) float64 {
	return float64(s.Row*1000 + s.Col)
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeDegrees maps d into (-180, 180].
func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func scaleAbout(p, center layout.Point, zoom float64) layout.Point {
	return center.Add(p.Sub(center).Mul(zoom))
}
