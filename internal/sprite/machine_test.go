package sprite

import (
	"math"
	"testing"

	"github.com/ivlev/librarycard/internal/easing"
)

func testMachine() *Machine {
	move := func(s *Sprite, c Clock) Transform {
		return s.Start.Lerp(s.Final, c.Eased).Pose()
	}
	return &Machine{
		Stages: []Stage{
			{Name: "entry", Duration: 1, Ease: easing.OutCubic, Eval: move},
			{Name: "hold", Span: func(s *Sprite) float64 { return s.Lag }, Eval: func(s *Sprite, c Clock) Transform { return s.Final.Pose() }},
			{Name: "skip", Duration: 0, Eval: move},
			{Name: "settled", Eval: func(s *Sprite, c Clock) Transform {
				return Wobble(s.Final, c.Since(), 2, 1.5, 1.5, 0.02, 1.2, 0)
			}},
		},
		FadeStart: 4.5,
		Duration:  6,
	}
}

func TestOpacityScenario(t *testing.T) {
	tests := []struct {
		t    float64
		want uint8
	}{
		{0, 255},
		{4.5, 255},
		{5.25, 153},
		{6.0, 51},
		{9.0, 51},
	}
	for _, tt := range tests {
		if got := Opacity(tt.t, 4.5, 6.0); got != tt.want {
			t.Errorf("Opacity(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestOpacityNonIncreasing(t *testing.T) {
	prev := uint8(255)
	for i := 0; i <= 720; i++ {
		ts := float64(i) / 120
		o := Opacity(ts, 4.0, 6.0)
		if o > prev {
			t.Fatalf("opacity rose at %.3f: %d > %d", ts, o, prev)
		}
		if o < FloorAlpha {
			t.Fatalf("opacity below floor at %.3f: %d", ts, o)
		}
		if ts <= 4.0 && o != OpaqueAlpha {
			t.Fatalf("opacity %d before fade start at %.3f", o, ts)
		}
		prev = o
	}
}

func TestOpacityDegenerateWindow(t *testing.T) {
	if got := Opacity(5, 6, 6); got != 255 {
		t.Errorf("before fade start: %d", got)
	}
	if got := Opacity(6.5, 6, 6); got != 51 {
		t.Errorf("after a zero-length window: %d", got)
	}
}

func TestPhaseMonotonic(t *testing.T) {
	m := testMachine()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	s := &Sprite{Delay: 0.4, Lag: 0.7, Start: Anchor{Scale: 0.5}, Final: Anchor{X: 100, Y: 50, Scale: 1}}

	var prev Phase
	seen := map[Phase]bool{}
	for i := 0; i <= 360; i++ {
		ts := float64(i) / 60
		m.Update(s, ts)
		if ts < 0.4 {
			if s.Started {
				t.Fatalf("sprite started before its delay at %.3f", ts)
			}
			continue
		}
		if !s.Started {
			t.Fatalf("sprite not started at %.3f", ts)
		}
		if s.Phase < prev {
			t.Fatalf("phase went back from %s to %s at %.3f", m.PhaseName(prev), m.PhaseName(s.Phase), ts)
		}
		prev = s.Phase
		seen[s.Phase] = true
	}
	if seen[2] {
		t.Error("zero-length stage should never be active")
	}
	if prev != m.Terminal() {
		t.Errorf("expected terminal phase at the end, got %s", m.PhaseName(prev))
	}
}

func TestBreakpointsOffsetByDelay(t *testing.T) {
	m := testMachine()
	s := &Sprite{Delay: 0.5, Lag: 1}

	tests := []struct {
		t    float64
		want Phase
	}{
		{0.5, 0},
		{1.49, 0},
		{1.5, 1},
		{2.49, 1},
		{2.5, 3},
	}
	for _, tt := range tests {
		phase, _, started := m.Classify(s, tt.t)
		if !started || phase != tt.want {
			t.Errorf("t=%v: got phase %d (started=%v), want %d", tt.t, phase, started, tt.want)
		}
	}
}

func TestTerminalIdempotentPhase(t *testing.T) {
	m := testMachine()
	s := &Sprite{Lag: 0.5, Final: Anchor{X: 10, Y: 10, Scale: 1}}
	for _, ts := range []float64{2, 3, 10, 100} {
		phase, c, _ := m.Classify(s, ts)
		if phase != m.Terminal() || c.Progress != 1 {
			t.Errorf("t=%v: phase %d progress %v", ts, phase, c.Progress)
		}
	}
}

func TestWobbleContinuousAtStageStart(t *testing.T) {
	a := Anchor{X: 100, Y: 200, Scale: 1.8, Rotation: 0}
	got := Wobble(a, 0, 3, 1.5, 1.5, 0.03, 1.2, 0.7)
	if math.Abs(got.X-a.X) > 1e-9 || math.Abs(got.Y-a.Y) > 1e-9 || math.Abs(got.Scale-a.Scale) > 1e-9 {
		t.Errorf("wobble jumps at stage start: %+v", got)
	}
}

func TestUpdateDeterministic(t *testing.T) {
	m := testMachine()
	a := Sprite{Delay: 0.2, Lag: 0.3, Start: Anchor{X: -50, Scale: 0.3}, Final: Anchor{X: 300, Y: 40, Scale: 2}}
	b := a
	for i := 0; i < 360; i++ {
		ts := float64(i) / 60
		m.Update(&a, ts)
		m.Update(&b, ts)
		if a.Transform != b.Transform || a.Phase != b.Phase {
			t.Fatalf("divergence at frame %d", i)
		}
	}
	// Re-evaluating an earlier time must not depend on history.
	m.Update(&a, 0.7)
	fresh := b
	m.Update(&fresh, 0.7)
	if a.Transform != fresh.Transform {
		t.Errorf("update depends on history: %+v vs %+v", a.Transform, fresh.Transform)
	}
}
