package layout

import (
	"math"
	"math/rand"

	"github.com/ivlev/librarycard/internal/config"
)

// GoldenAngle in radians, about 137.5 degrees.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func Dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }
func Lerp(a, b Point, t float64) Point { return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t} }
func Center(canvas config.Canvas) Point { return Point{float64(canvas.Width) / 2, float64(canvas.Height) / 2} }
func Polar(c Point, r, angle float64) Point { return Point{c.X + r*math.Cos(angle), c.Y + r*math.Sin(angle)} }

// Unit returns p scaled to length 1, or zero for the zero vector.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return Point{}
	}
	return Point{p.X / l, p.Y / l}
}

// Bezier evaluates a cubic Bezier curve at t.
func Bezier(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// Spiral samples the Archimedean spiral r = a + b*theta around c.
func Spiral(c Point, a, b, theta float64) Point {
	return Polar(c, a+b*theta, theta)
}

// Rotate turns p about the origin by deg degrees, counter-clockwise as seen
// on a y-down canvas.
func Rotate(p Point, deg float64) Point {
	s, c := math.Sincos(deg * math.Pi / 180)
	return Point{X: p.X*c + p.Y*s, Y: -p.X*s + p.Y*c}
}

// Uniform draws from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Jitter draws from [-amount, amount).
func Jitter(rng *rand.Rand, amount float64) float64 {
	return Uniform(rng, -amount, amount)
}

// Sign returns +1 or -1 with equal probability.
func Sign(rng *rand.Rand) float64 {
	if rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Edge of the canvas.
type Edge int

const (
	Top Edge = iota
	Right
	Bottom
	Left
)

// Zone is a band just beyond one canvas edge. Along positions the point
// on that edge (x for Top/Bottom, y for Left/Right) and is jittered by
// Spread. Extent keeps a sprite of that size hidden and Depth is the
// random extra distance past it.
type Zone struct {
	Side   Edge
	Along  float64
	Spread float64
	Extent float64
	Depth  float64
}

// Offscreen draws a random point inside zone.
func Offscreen(rng *rand.Rand, canvas config.Canvas, zone Zone) Point {
	along := zone.Along + Jitter(rng, zone.Spread)
	d := zone.Extent + Uniform(rng, 0, zone.Depth)
	W, H := float64(canvas.Width), float64(canvas.Height)
	switch zone.Side {
	case Top:
		return Point{along, -d}
	case Right:
		return Point{W + d, along}
	case Bottom:
		return Point{along, H + d}
	default:
		return Point{-d, along}
	}
}

// EdgeEntry picks a random point just outside a random canvas edge and the
// unit vector pointing from it to the canvas centre.
func EdgeEntry(rng *rand.Rand, canvas config.Canvas) (Point, Point) {
	W, H := float64(canvas.Width), float64(canvas.Height)
	side := Edge(rng.Intn(4))
	span := W
	if side == Left || side == Right {
		span = H
	}
	p := Offscreen(rng, canvas, Zone{Side: side, Along: span / 2, Spread: span / 2, Extent: 50, Depth: 100})
	return p, Center(canvas).Sub(p).Unit()
}

// Above returns a point horizontally near x and somewhere in the band
// [depth, 0) above the canvas, keeping a sprite of height h fully hidden.
func Above(rng *rand.Rand, x, h, depth float64) Point {
	return Offscreen(rng, config.Canvas{}, Zone{Side: Top, Along: x, Spread: 50, Extent: h, Depth: depth})
}
