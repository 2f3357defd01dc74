// Package easing maps normalized progress onto eased progress.
//
// The standard curves come from gween's Penner implementations and are
// pinned to exact values at both ends, so f(0) == 0 and f(1) == 1 for every
// curve even where the body overshoots (back, elastic).
package easing

import (
	"math"
	"sort"

	"github.com/tanema/gween/ease"
)

// Func remaps progress in [0,1].
type Func func(t float64) float64

func fromTween(fn ease.TweenFunc) Func {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return float64(fn(float32(t), 0, 1, 1))
	}
}

var (
	Linear = fromTween(ease.Linear)

	InQuad    = fromTween(ease.InQuad)
	OutQuad   = fromTween(ease.OutQuad)
	InOutQuad = fromTween(ease.InOutQuad)

	InCubic    = fromTween(ease.InCubic)
	OutCubic   = fromTween(ease.OutCubic)
	InOutCubic = fromTween(ease.InOutCubic)

	InQuart    = fromTween(ease.InQuart)
	OutQuart   = fromTween(ease.OutQuart)
	InOutQuart = fromTween(ease.InOutQuart)

	InElastic    = fromTween(ease.InElastic)
	OutElastic   = fromTween(ease.OutElastic)
	InOutElastic = fromTween(ease.InOutElastic)

	OutBack   = fromTween(ease.OutBack)
	OutBounce = fromTween(ease.OutBounce)
)

var registry = map[string]Func{
	"linear":         Linear,
	"in-quad":        InQuad,
	"out-quad":       OutQuad,
	"in-out-quad":    InOutQuad,
	"in-cubic":       InCubic,
	"out-cubic":      OutCubic,
	"in-out-cubic":   InOutCubic,
	"in-quart":       InQuart,
	"out-quart":      OutQuart,
	"in-out-quart":   InOutQuart,
	"in-elastic":     InElastic,
	"out-elastic":    OutElastic,
	"in-out-elastic": InOutElastic,
	"out-back":       OutBack,
	"out-bounce":     OutBounce,
	"smoothstep":     Smoothstep,
}

// ByName returns a curve by its kebab-case name.
func ByName(name string) (Func, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names lists the registered curves in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Smoothstep is the cubic Hermite ramp x*x*(3-2x) on clamped input.
func Smoothstep(x float64) float64 {
	x = Clamp01(x)
	return x * x * (3 - 2*x)
}

// Smooth ramps from 0 at start to 1 at end with a Hermite curve.
func Smooth(t, start, end float64) float64 {
	if t <= start {
		return 0
	}
	if t >= end {
		return 1
	}
	return Smoothstep((t - start) / (end - start))
}

// Progress returns clamp((t-start)/duration). A non-positive duration
// completes immediately once start is reached.
func Progress(t, start, duration float64) float64 {
	if duration <= 0 {
		if t >= start {
			return 1
		}
		return 0
	}
	return Clamp01((t - start) / duration)
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
