// Package sprite holds the per-poster animation record and the table-driven
// phase machine that advances it.
package sprite

import (
	"github.com/ivlev/librarycard/internal/easing"
	"github.com/ivlev/librarycard/internal/layout"
)

// Phase indexes a choreography's stage table. Higher values are later.
type Phase uint8

// Anchor is a waypoint pose.
type Anchor struct {
	X, Y     float64
	Scale    float64
	Rotation float64
}

func At(p layout.Point, scale, rotation float64) Anchor {
	return Anchor{X: p.X, Y: p.Y, Scale: scale, Rotation: rotation}
}

func (a Anchor) Point() layout.Point {
	return layout.Point{X: a.X, Y: a.Y}
}

// Lerp interpolates every field of the pose.
func (a Anchor) Lerp(b Anchor, t float64) Anchor {
	return Anchor{
		X:        easing.Lerp(a.X, b.X, t),
		Y:        easing.Lerp(a.Y, b.Y, t),
		Scale:    easing.Lerp(a.Scale, b.Scale, t),
		Rotation: easing.Lerp(a.Rotation, b.Rotation, t),
	}
}

// Pose converts the anchor into a transform; opacity is filled in later.
func (a Anchor) Pose() Transform {
	return Transform{X: a.X, Y: a.Y, Scale: a.Scale, Rotation: a.Rotation}
}

// Transform is the per-frame output: centre position, scale relative to the
// poster asset, counter-clockwise rotation in degrees and opacity.
type Transform struct {
	X, Y     float64
	Scale    float64
	Rotation float64
	Opacity  uint8
}

func (t Transform) Point() layout.Point {
	return layout.Point{X: t.X, Y: t.Y}
}

// Sprite is one animated poster. Everything above Phase is fixed at
// construction; Phase, Started and Transform are rewritten by Update.
type Sprite struct {
	Index  int
	Poster int
	Row    int
	Col    int
	Ring   int

	Delay float64
	Lag   float64

	Start Anchor
	Via1  Anchor
	Via2  Anchor
	Hub   Anchor
	Final Anchor

	C1, C2 layout.Point

	Angle  float64
	Radius float64
	Spin   float64
	Speed  float64
	Offset float64

	Phase     Phase
	Started   bool
	Transform Transform
}
