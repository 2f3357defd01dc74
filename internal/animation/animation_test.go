package animation

import (
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/source"
	"github.com/ivlev/librarycard/internal/sprite"
)

var testCanvas = config.Canvas{Width: 960, Height: 540, FPS: 30, Duration: 6}

func testPosters(n int) []source.Poster {
	posters := make([]source.Poster, n)
	for i := range posters {
		posters[i] = source.Poster{Name: "p", Image: image.NewRGBA(image.Rect(0, 0, 140, 210))}
	}
	return posters
}

func create(name string, seed int64, canvas config.Canvas) *Animation {
	return Create(name, "Movies", testPosters(12), Options{
		Canvas: canvas,
		Rand:   rand.New(rand.NewSource(seed)),
	})
}

func TestRegistryListsNineAnimations(t *testing.T) {
	want := []string{"grid", "spiral", "waterfall", "mosaic", "vortex", "cascade", "explode", "kaleidoscope", "shockwave"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], name)
		}
		c, ok := Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) failed", name)
			continue
		}
		if c.Description == "" || c.TextStart <= 0 {
			t.Errorf("%s: incomplete table %+v", name, c)
		}
	}
	if _, ok := Lookup("  Vortex "); !ok {
		t.Error("lookup should ignore case and surrounding space")
	}
}

func TestSpritesFillEveryCell(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			a := create(name, 1, testCanvas)
			g := a.Grid()
			if len(a.Sprites()) != g.Cells() {
				t.Fatalf("sprites=%d cells=%d", len(a.Sprites()), g.Cells())
			}
			if !g.Covers(testCanvas, 1) {
				t.Errorf("grid %dx%d does not cover the canvas", g.Cols, g.Rows)
			}
			seen := make(map[[2]int]bool)
			for _, s := range a.Sprites() {
				if s.Poster < 0 || s.Poster >= 12 {
					t.Fatalf("sprite %d uses poster %d", s.Index, s.Poster)
				}
				seen[[2]int{s.Row, s.Col}] = true
			}
			if len(seen) != g.Cells() {
				t.Errorf("%d distinct cells for %d sprites", len(seen), g.Cells())
			}
			if err := a.Machine().Validate(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestPhasesAdvanceMonotonically(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			a := create(name, 7, testCanvas)
			last := make([]sprite.Phase, len(a.Sprites()))
			total := testCanvas.TotalFrames()
			for f := 0; f < total; f++ {
				tm := float64(f) / float64(testCanvas.FPS)
				a.Update(tm)
				wantAlpha := sprite.Opacity(tm, a.FadeStart(), testCanvas.Duration)
				for i, s := range a.Sprites() {
					if !s.Started {
						continue
					}
					if s.Phase < last[i] {
						t.Fatalf("t=%.3f sprite %d went back from %s to %s",
							tm, i, a.PhaseName(last[i]), a.PhaseName(s.Phase))
					}
					last[i] = s.Phase
					tr := s.Transform
					if math.IsNaN(tr.X) || math.IsNaN(tr.Y) || math.IsInf(tr.X, 0) || math.IsInf(tr.Y, 0) {
						t.Fatalf("t=%.3f sprite %d has position %v,%v", tm, i, tr.X, tr.Y)
					}
					if !(tr.Scale > 0) {
						t.Fatalf("t=%.3f sprite %d has scale %v in %s", tm, i, tr.Scale, a.PhaseName(s.Phase))
					}
					if tr.Opacity != wantAlpha {
						t.Fatalf("t=%.3f opacity %d, want %d", tm, tr.Opacity, wantAlpha)
					}
				}
			}

			terminal := a.Machine().Terminal()
			for i, s := range a.Sprites() {
				if !s.Started || s.Phase != terminal {
					t.Errorf("sprite %d ended in %s (started=%v)", i, a.PhaseName(s.Phase), s.Started)
					break
				}
			}
		})
	}
}

func TestSettledSpritesStayNearTheirCell(t *testing.T) {
	for _, name := range Names() {
		if name == "grid" || name == "mosaic" {
			// Both keep a whole-canvas zoom in their final pose.
			continue
		}
		t.Run(name, func(t *testing.T) {
			a := create(name, 3, testCanvas)
			a.Update(testCanvas.Duration)
			for _, s := range a.Sprites() {
				if d := layout.Dist(s.Transform.Point(), s.Final.Point()); d > 9 {
					t.Fatalf("sprite %d is %.1fpx from its cell", s.Index, d)
				}
				if math.Abs(s.Transform.Rotation) > 1e-9 {
					t.Fatalf("sprite %d still rotated %.3f", s.Index, s.Transform.Rotation)
				}
			}
		})
	}
}

func TestSameSeedSameFrames(t *testing.T) {
	for _, name := range Names() {
		a := create(name, 42, testCanvas)
		b := create(name, 42, testCanvas)
		for _, tm := range []float64{0, 0.7, 2.2, 3.9, 5.5} {
			a.Update(tm)
			b.Update(tm)
			for i := range a.Sprites() {
				if a.Sprites()[i].Transform != b.Sprites()[i].Transform {
					t.Fatalf("%s: sprite %d differs at t=%v", name, i, tm)
				}
			}
		}
	}
}

func TestUpdateIsPureInTime(t *testing.T) {
	a := create("explode", 5, testCanvas)
	a.Update(2.0)
	want := a.Sprites()[3].Transform
	a.Update(5.0)
	a.Update(0.5)
	a.Update(2.0)
	if got := a.Sprites()[3].Transform; got != want {
		t.Errorf("revisiting t=2.0 gave %+v, want %+v", got, want)
	}
}

func TestParallelUpdateMatchesSerial(t *testing.T) {
	canvas := config.Canvas{Width: 2880, Height: 1620, FPS: 60, Duration: 6}
	serial := create("grid", 9, canvas)
	parallel := Create("grid", "Movies", testPosters(12), Options{
		Canvas:  canvas,
		Rand:    rand.New(rand.NewSource(9)),
		Workers: 4,
	})
	if n := len(parallel.Sprites()); n < 512 {
		t.Fatalf("expected a large arena, got %d sprites", n)
	}
	for _, tm := range []float64{0.1, 2.5, 4.9} {
		serial.Update(tm)
		parallel.Update(tm)
		for i := range serial.Sprites() {
			if serial.Sprites()[i].Transform != parallel.Sprites()[i].Transform {
				t.Fatalf("sprite %d differs at t=%v", i, tm)
			}
		}
	}
}

func TestUnknownAnimationFallsBackToGrid(t *testing.T) {
	a := create("does-not-exist", 1, testCanvas)
	if a.Name != DefaultName {
		t.Errorf("got %q, want %q", a.Name, DefaultName)
	}
}

func TestNoPostersUsesDefaultSize(t *testing.T) {
	a := Create("spiral", "Empty", nil, Options{Canvas: testCanvas})
	if got := a.Grid().Poster; got != layout.DefaultPoster {
		t.Errorf("poster size %+v, want %+v", got, layout.DefaultPoster)
	}
	if len(a.Sprites()) == 0 {
		t.Error("no sprites created")
	}
	a.Update(1)
}

func TestDegeneratePostersStayBounded(t *testing.T) {
	full := config.Canvas{Width: 2880, Height: 1620, FPS: 60, Duration: 6}
	sizes := []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 3000, 50),
		image.Rect(0, 0, 20, 900),
	}
	for _, name := range Names() {
		for _, r := range sizes {
			posters := []source.Poster{{Name: "p", Image: image.NewRGBA(r)}}
			a := Create(name, "Tiny", posters, Options{Canvas: full, Rand: rand.New(rand.NewSource(1))})
			if n := len(a.Sprites()); n > layout.MaxCells {
				t.Errorf("%s %dx%d: %d sprites, want at most %d", name, r.Dx(), r.Dy(), n, layout.MaxCells)
			}
			a.Update(3)
		}
	}
}

func TestOrderIsTotal(t *testing.T) {
	for _, name := range Names() {
		a := create(name, 11, testCanvas)
		for _, tm := range []float64{0.2, 1.3, 3.1, 5.9} {
			a.Update(tm)
			order := a.Order()
			started := 0
			for _, s := range a.Sprites() {
				if s.Started {
					started++
				}
			}
			if len(order) != started {
				t.Fatalf("%s t=%v: order has %d of %d started sprites", name, tm, len(order), started)
			}
			seen := make(map[int]bool, len(order))
			for k, i := range order {
				if seen[i] {
					t.Fatalf("%s: sprite %d drawn twice", name, i)
				}
				seen[i] = true
				if k == 0 {
					continue
				}
				prev := order[k-1]
				c := compareKeys(a.keys[prev], a.keys[i])
				if c > 0 || (c == 0 && prev > i) {
					t.Fatalf("%s t=%v: order broken between %d and %d", name, tm, prev, i)
				}
			}
		}
	}
}

func TestWaterfallDrawsLandedOnTop(t *testing.T) {
	a := create("waterfall", 2, testCanvas)
	a.Update(2.4)
	order := a.Order()
	landed := false
	for _, i := range order {
		if a.Sprite(i).Phase == 1 {
			landed = true
		} else if landed {
			t.Fatalf("falling sprite %d drawn after a landed one", i)
		}
	}
}

func TestVortexTrailsOnlyWhileFast(t *testing.T) {
	a := create("vortex", 4, testCanvas)
	a.Update(0.45)
	trails := 0
	for _, i := range a.Order() {
		if d, ok := a.Trail(i); ok {
			trails++
			if d.Len() <= vortexTrailMin {
				t.Errorf("trail vector too short: %v", d)
			}
		}
	}
	if trails == 0 {
		t.Error("expected motion trails during the intro")
	}

	a.Update(5.5)
	for i := range a.Sprites() {
		if _, ok := a.Trail(i); ok {
			t.Fatalf("sprite %d still trails after settling", i)
		}
	}
	if _, ok := create("grid", 1, testCanvas).Trail(0); ok {
		t.Error("grid has no trails")
	}
}

func TestShockwaveGlowFollowsPulses(t *testing.T) {
	a := create("shockwave", 6, testCanvas)
	a.Update(0.2)
	if g := a.Glow(0.2); g != 0 {
		t.Errorf("glow during gather = %v", g)
	}
	peak := 0.0
	for tm := 1.5; tm < 4.0; tm += 1.0 / 30 {
		a.Update(tm)
		peak = math.Max(peak, a.Glow(tm))
	}
	if peak <= 0.5 || peak > 1 {
		t.Errorf("pulse glow peak %v", peak)
	}
	a.Update(5.9)
	if g := a.Glow(5.9); g != 0 {
		t.Errorf("glow after settling = %v", g)
	}
}

func TestPulseDisplacementShape(t *testing.T) {
	s := &sprite.Sprite{}
	if d := pulseDisplacement(s, 0); d != 0 {
		t.Errorf("start displacement %v", d)
	}
	for k := 0; k < shockPulses; k++ {
		peak := pulseDisplacement(s, float64(k)*shockPeriod+0.4*shockPeriod)
		want := 0.2 + 0.8*float64(k)/shockPulses
		if math.Abs(peak-want) > 1e-9 {
			t.Errorf("pulse %d peak %v, want %v", k, peak, want)
		}
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{720 + 45, 45},
		{-450, -90},
	}
	for _, tt := range tests {
		if got := normalizeDegrees(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
