package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/librarycard/internal/layout"
)

// ErrNoPosters means a library produced nothing to animate.
var ErrNoPosters = errors.New("no posters found")

// Source enumerates decodable poster images.
type Source interface {
	Count() int
	Name(index int) string
	Decode(index int) (image.Image, error)
	Close() error
}

// Poster is an immutable bitmap shared read-only by every sprite using it.
type Poster struct {
	Name  string
	Image *image.RGBA
}

// Size returns the poster dimensions, at least 1px on each axis.
func (p Poster) Size() layout.Size {
	if p.Image == nil {
		return layout.Size{W: 1, H: 1}
	}
	b := p.Image.Bounds()
	return layout.Size{W: float64(max(1, b.Dx())), H: float64(max(1, b.Dy()))}
}

// Sizes lists poster dimensions for layout sizing.
func Sizes(posters []Poster) []layout.Size {
	out := make([]layout.Size, len(posters))
	for i, p := range posters {
		out[i] = p.Size()
	}
	return out
}

// Open picks the source for a library: <dir>/<library>/ when it is a
// directory, otherwise <dir>/<library>.pdf.
func Open(dir, library string) (Source, error) {
	libDir := filepath.Join(dir, library)
	if fi, err := os.Stat(libDir); err == nil && fi.IsDir() {
		return NewImageSource(libDir)
	}
	pdf := libDir + ".pdf"
	if _, err := os.Stat(pdf); err == nil {
		return NewPDFSource(pdf)
	}
	return nil, fmt.Errorf("library %q: %w in %s", library, ErrNoPosters, dir)
}

// Discover lists the libraries under dir: every subdirectory holding at
// least one image and every PDF file, named without extension, sorted.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case entry.IsDir():
			src, err := NewImageSource(filepath.Join(dir, name))
			if err == nil && src.Count() > 0 {
				seen[name] = true
			}
		case hasExt(name, ".pdf"):
			seen[strings.TrimSuffix(name, filepath.Ext(name))] = true
		}
	}
	libs := make([]string, 0, len(seen))
	for name := range seen {
		libs = append(libs, name)
	}
	sort.Strings(libs)
	return libs, nil
}

// LoadOptions controls decoding.
type LoadOptions struct {
	Height  int
	Workers int
	// Skip is called for posters that fail to decode.
	Skip func(name string, err error)
}

// Load decodes every poster in src, normalising each to opts.Height while
// keeping its aspect ratio. Order follows the source. Posters that fail to
// decode are reported through opts.Skip and dropped; if none survive the
// result is ErrNoPosters.
func Load(ctx context.Context, src Source, opts LoadOptions) ([]Poster, error) {
	n := src.Count()
	if n == 0 {
		return nil, ErrNoPosters
	}

	var skipMu sync.Mutex
	decoded := make([]*Poster, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.Decode(i)
			if err != nil {
				if opts.Skip != nil {
					skipMu.Lock()
					opts.Skip(src.Name(i), err)
					skipMu.Unlock()
				}
				return nil
			}
			decoded[i] = &Poster{Name: src.Name(i), Image: Normalize(img, opts.Height)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	posters := make([]Poster, 0, n)
	for _, p := range decoded {
		if p != nil {
			posters = append(posters, *p)
		}
	}
	if len(posters) == 0 {
		return nil, ErrNoPosters
	}
	return posters, nil
}

// Normalize scales img to the given height keeping the aspect ratio. A
// non-positive height only converts to RGBA.
func Normalize(img image.Image, height int) *image.RGBA {
	b := img.Bounds()
	w, h := max(1, b.Dx()), max(1, b.Dy())
	if height <= 0 || height == h {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	nw := max(1, int(float64(w)*float64(height)/float64(h)+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, nw, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
