// Package animation defines the nine choreographies as configuration tables
// over the shared sprite machine, and the Animation arena that runs one of
// them against a poster list.
package animation

import (
	"cmp"
	"log/slog"
	"math/rand"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/layout"
	"github.com/ivlev/librarycard/internal/sprite"
)

// Key orders sprites for painting: lower keys are drawn first. Ties fall
// back to the sprite index.
type Key struct {
	Tier      int
	Primary   float64
	Secondary float64
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Primary, b.Primary); c != 0 {
		return c
	}
	return cmp.Compare(a.Secondary, b.Secondary)
}

// Env is the shared, read-only context a choreography is built against.
type Env struct {
	Canvas  config.Canvas
	Grid    layout.Grid
	Poster  layout.Size
	Posters int
	Center  layout.Point
	Rand    *rand.Rand
}

// Choreography is one animation expressed as data plus small evaluators.
type Choreography struct {
	Name        string
	Description string
	FadeStart   float64
	TextStart   float64

	Layout func(poster layout.Size, posters int, canvas config.Canvas) layout.Params
	Stages func(env *Env) []sprite.Stage
	Seed   func(env *Env, s *sprite.Sprite)
	Order  func(env *Env, s *sprite.Sprite) Key

	// Trail returns the motion vector to smear ghosts along, if any.
	Trail func(env *Env, s *sprite.Sprite) (layout.Point, bool)
	// Glow returns a sprite's contribution to the backdrop glow.
	Glow func(env *Env, s *sprite.Sprite, t float64) float64
}

// Animation is a running choreography: the sprite arena plus its machine.
type Animation struct {
	Name    string
	Library string

	chor    *Choreography
	env     Env
	machine sprite.Machine
	sprites []sprite.Sprite
	keys    []Key
	order   []int
	workers int
}

func newAnimation(c *Choreography, library string, sizes []layout.Size, opts Options) *Animation {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	poster := layout.PosterSize(sizes)
	posters := len(sizes)

	env := Env{
		Canvas:  opts.Canvas,
		Poster:  poster,
		Posters: posters,
		Center:  layout.Center(opts.Canvas),
		Rand:    rng,
	}
	env.Grid = layout.New(poster, opts.Canvas, c.Layout(poster, posters, opts.Canvas))

	a := &Animation{
		Name:    c.Name,
		Library: library,
		chor:    c,
		env:     env,
		machine: sprite.Machine{
			Stages:    c.Stages(&env),
			FadeStart: c.FadeStart,
			Duration:  opts.Canvas.Duration,
		},
		workers: opts.Workers,
	}

	n := env.Grid.Cells()
	a.sprites = make([]sprite.Sprite, n)
	a.keys = make([]Key, n)
	a.order = make([]int, 0, n)
	for i := range a.sprites {
		s := &a.sprites[i]
		s.Index = i
		s.Row, s.Col = env.Grid.RowCol(i)
		s.Poster = i % max(1, posters)
		c.Seed(&a.env, s)
	}
	return a
}

// Update advances every sprite to elapsed time t. Sprites are independent,
// so large arenas are split across workers.
func (a *Animation) Update(t float64) {
	const minBatch = 256
	if a.workers <= 1 || len(a.sprites) < 2*minBatch {
		for i := range a.sprites {
			a.machine.Update(&a.sprites[i], t)
		}
		return
	}

	batch := max(minBatch, (len(a.sprites)+a.workers-1)/a.workers)
	var g errgroup.Group
	g.SetLimit(a.workers)
	for lo := 0; lo < len(a.sprites); lo += batch {
		hi := min(lo+batch, len(a.sprites))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				a.machine.Update(&a.sprites[i], t)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Order returns the started sprites in paint order. The slice is reused on
// the next call.
func (a *Animation) Order() []int {
	a.order = a.order[:0]
	for i := range a.sprites {
		s := &a.sprites[i]
		if !s.Started {
			continue
		}
		a.keys[i] = a.chor.Order(&a.env, s)
		a.order = append(a.order, i)
	}
	slices.SortFunc(a.order, func(i, j int) int {
		if c := compareKeys(a.keys[i], a.keys[j]); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})
	return a.order
}

// Trail reports the ghost vector for sprite i, if its choreography draws
// motion trails in the current phase.
func (a *Animation) Trail(i int) (layout.Point, bool) {
	if a.chor.Trail == nil {
		return layout.Point{}, false
	}
	return a.chor.Trail(&a.env, &a.sprites[i])
}

// Glow is the strongest backdrop glow contribution at t, in [0, 1].
func (a *Animation) Glow(t float64) float64 {
	if a.chor.Glow == nil {
		return 0
	}
	peak := 0.0
	for i := range a.sprites {
		if s := &a.sprites[i]; s.Started {
			peak = max(peak, a.chor.Glow(&a.env, s, t))
		}
	}
	return min(peak, 1)
}

func (a *Animation) Sprites() []sprite.Sprite { return a.sprites }
func (a *Animation) Sprite(i int) *sprite.Sprite { return &a.sprites[i] }
func (a *Animation) Grid() layout.Grid { return a.env.Grid }
func (a *Animation) Canvas() config.Canvas { return a.env.Canvas }
func (a *Animation) Center() layout.Point { return a.env.Center }
func (a *Animation) FadeStart() float64 { return a.chor.FadeStart }
func (a *Animation) TextStart() float64 { return a.chor.TextStart }
func (a *Animation) Machine() *sprite.Machine { return &a.machine }

func (a *Animation) PhaseName(p sprite.Phase) string {
	return a.machine.PhaseName(p)
}

// Options for Create.
type Options struct {
	Canvas  config.Canvas
	Rand    *rand.Rand
	Workers int
	Logger  *slog.Logger
}
