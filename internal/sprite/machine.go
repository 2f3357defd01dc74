package sprite

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/librarycard/internal/easing"
)

const (
	OpaqueAlpha = 255
	FloorAlpha  = 51
)

// Clock is what a stage sees when evaluated. Local is elapsed time minus the
// sprite's entry delay; Start is where the active stage begins on that clock.
type Clock struct {
	Elapsed  float64
	Local    float64
	Start    float64
	Progress float64
	Eased    float64
}

// Since returns local time spent in the active stage.
func (c Clock) Since() float64 {
	return c.Local - c.Start
}

// Stage is one row of a choreography table. The last stage of a Machine is
// terminal: it has no end and is evaluated with Progress pinned at 1.
type Stage struct {
	Name     string
	Duration float64
	// Span overrides Duration per sprite.
	Span func(s *Sprite) float64
	Ease easing.Func
	Eval func(s *Sprite, c Clock) Transform
}

func (st Stage) span(s *Sprite) float64 {
	d := st.Duration
	if st.Span != nil {
		d = st.Span(s)
	}
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// Machine classifies sprites into stages and evaluates them. Breakpoints sit
// on the sprite's local clock, so an entry delay shifts every stage.
type Machine struct {
	Stages    []Stage
	FadeStart float64
	Duration  float64
}

func (m *Machine) Validate() error {
	if len(m.Stages) == 0 {
		return errors.New("machine has no stages")
	}
	for i, st := range m.Stages {
		if st.Eval == nil {
			return fmt.Errorf("stage %d (%s) has no evaluator", i, st.Name)
		}
	}
	return nil
}

// Terminal is the settled phase.
func (m *Machine) Terminal() Phase {
	return Phase(len(m.Stages) - 1)
}

func (m *Machine) PhaseName(p Phase) string {
	if int(p) < len(m.Stages) {
		return m.Stages[p].Name
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Classify returns the active phase and clock at elapsed time t. started is
// false while t is before the sprite's entry delay.
func (m *Machine) Classify(s *Sprite, t float64) (Phase, Clock, bool) {
	local := t - s.Delay
	if local < 0 {
		return 0, Clock{Elapsed: t, Local: local}, false
	}

	start := 0.0
	last := len(m.Stages) - 1
	for i := 0; i < last; i++ {
		st := m.Stages[i]
		d := st.span(s)
		if local < start+d {
			p := easing.Progress(local, start, d)
			ease := st.Ease
			if ease == nil {
				ease = easing.Linear
			}
			return Phase(i), Clock{Elapsed: t, Local: local, Start: start, Progress: p, Eased: ease(p)}, true
		}
		start += d
	}
	return Phase(last), Clock{Elapsed: t, Local: local, Start: start, Progress: 1, Eased: 1}, true
}

// Update rewrites the sprite's phase and transform for elapsed time t. The
// result depends only on the sprite's construction parameters and t.
func (m *Machine) Update(s *Sprite, t float64) {
	phase, clock, started := m.Classify(s, t)
	s.Phase = phase
	s.Started = started
	if !started {
		return
	}
	tr := m.Stages[phase].Eval(s, clock)
	tr.Opacity = Opacity(t, m.FadeStart, m.Duration)
	s.Transform = tr
}

// Opacity is 255 until fadeStart, then falls linearly to 51 at duration.
func Opacity(t, fadeStart, duration float64) uint8 {
	if t <= fadeStart {
		return OpaqueAlpha
	}
	p := 1.0
	if duration > fadeStart {
		p = easing.Clamp01((t - fadeStart) / (duration - fadeStart))
	}
	v := math.Round(OpaqueAlpha - (OpaqueAlpha-FloorAlpha)*p)
	if v < FloorAlpha {
		v = FloorAlpha
	}
	if v > OpaqueAlpha {
		v = OpaqueAlpha
	}
	return uint8(v)
}

// Wobble is the low-motion breathing used by settled stages. It is zero at
// the moment the stage begins.
func Wobble(a Anchor, since, amp, fx, fy, pulse, fs, seed float64) Transform {
	return Transform{
		X:        a.X + amp*(math.Sin(fx*since+seed)-math.Sin(seed)),
		Y:        a.Y + amp*(math.Cos(fy*since+seed)-math.Cos(seed)),
		Scale:    a.Scale * (1 + pulse*math.Sin(fs*since)),
		Rotation: a.Rotation,
	}
}
