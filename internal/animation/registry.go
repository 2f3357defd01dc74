package animation

import (
	"log/slog"
	"strings"

	"github.com/ivlev/librarycard/internal/logging"
	"github.com/ivlev/librarycard/internal/source"
)

// DefaultName is used for unknown animation names.
const DefaultName = "grid"

var choreographies = []*Choreography{
	gridChoreography(),
	spiralChoreography(),
	waterfallChoreography(),
	mosaicChoreography(),
	vortexChoreography(),
	cascadeChoreography(),
	explodeChoreography(),
	kaleidoscopeChoreography(),
	shockwaveChoreography(),
}

var byName = func() map[string]*Choreography {
	m := make(map[string]*Choreography, len(choreographies))
	for _, c := range choreographies {
		m[c.Name] = c
	}
	return m
}()

// Names lists the registered animations in presentation order.
func Names() []string {
	names := make([]string, len(choreographies))
	for i, c := range choreographies {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a choreography by case-insensitive name.
func Lookup(name string) (*Choreography, bool) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Describe returns every choreography in presentation order.
func Describe() []*Choreography {
	return append([]*Choreography(nil), choreographies...)
}

// Create builds the named animation for posters. Unknown names fall back to
// the grid with a warning. An empty poster list still produces a full grid
// sized for a 100x150 poster.
func Create(name, library string, posters []source.Poster, opts Options) *Animation {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	c, ok := Lookup(name)
	if !ok {
		logger.Warn("unknown animation, using default",
			slog.String("animation", name),
			slog.String("default", DefaultName))
		c = byName[DefaultName]
	}
	if len(posters) == 0 {
		logger.Warn("no posters for layout sizing, using default poster size",
			slog.String("library", library))
	}

	a := newAnimation(c, library, source.Sizes(posters), opts)
	logger.Debug("animation created",
		slog.String("animation", a.Name),
		slog.String("library", library),
		slog.Int("sprites", len(a.sprites)),
		slog.Int("cols", a.env.Grid.Cols),
		slog.Int("rows", a.env.Grid.Rows),
		slog.Float64("aspect", a.env.Grid.Aspect()),
		slog.Float64("scale", a.env.Grid.Scale))
	return a
}
