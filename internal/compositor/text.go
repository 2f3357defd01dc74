package compositor

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/easing"
)

const (
	textMinScale   = 0.01
	textMinPixels  = 10
	textMaxWidth   = 0.9
	overlayAlpha   = 80
	defaultTextDur = 1.5
)

// TextOptions describes the library-name title.
type TextOptions struct {
	Text       string
	FontPath   string
	FontSize   float64
	Capitalize bool
	Start      float64
	Duration   float64
}

// Overlay is the pre-rendered title that grows in over a darkening veil.
type Overlay struct {
	block  *image.RGBA
	fit    float64
	start  float64
	dur    float64
	canvas config.Canvas
}

// NewOverlay renders the title once. Font problems degrade to the bundled
// Go Bold face and then to the fixed bitmap face.
func NewOverlay(opts TextOptions, canvas config.Canvas, logger *slog.Logger) *Overlay {
	text := opts.Text
	if opts.Capitalize {
		text = cases.Upper(language.Und).String(text)
	}
	lines := strings.Fields(text)
	if len(lines) == 0 {
		lines = []string{text}
	}

	face := loadFace(opts.FontPath, opts.FontSize, logger)
	block := renderLines(lines, face)

	fit := 1.0
	if w := float64(block.Bounds().Dx()); w > textMaxWidth*float64(canvas.Width) {
		fit = textMaxWidth * float64(canvas.Width) / w
	}
	dur := opts.Duration
	if dur <= 0 {
		dur = defaultTextDur
	}
	return &Overlay{block: block, fit: fit, start: opts.Start, dur: dur, canvas: canvas}
}

func loadFace(path string, size float64, logger *slog.Logger) font.Face {
	if size <= 0 {
		size = config.DefaultFontSize
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var face font.Face
			face, err = newFace(data, size)
			if err == nil {
				return face
			}
		}
		logger.Warn("font unavailable, using bundled bold face",
			slog.String("path", path), slog.Any("error", err))
	}
	face, err := newFace(gobold.TTF, size)
	if err != nil {
		logger.Warn("bundled font failed, using bitmap face", slog.Any("error", err))
		return basicfont.Face7x13
	}
	return face
}

func newFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// renderLines draws white, horizontally centred lines onto a transparent
// block just large enough to hold them.
func renderLines(lines []string, face font.Face) *image.RGBA {
	m := face.Metrics()
	lineH := max(1, m.Height.Ceil())
	width := 1
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	block := image.NewRGBA(image.Rect(0, 0, width, lineH*len(lines)))
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  block,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P((width-w)/2, i*lineH+m.Ascent.Ceil()),
		}
		d.DrawString(line)
	}
	return block
}

// Progress is the eased growth of the title at elapsed time t.
func (o *Overlay) Progress(t float64) float64 {
	if t < o.start {
		return 0
	}
	return easing.InOutQuad(easing.Clamp01((t - o.start) / o.dur))
}

// Draw veils dst and paints the title centred, scaled for time t.
func (o *Overlay) Draw(dst *image.RGBA, t float64) {
	if t < o.start {
		return
	}
	p := o.Progress(t)
	if a := uint8(math.Round(overlayAlpha * p)); a > 0 {
		veil := image.NewUniform(color.NRGBA{A: a})
		xdraw.Draw(dst, dst.Bounds(), veil, image.Point{}, xdraw.Over)
	}

	scale := (textMinScale + (1-textMinScale)*p) * o.fit
	b := o.block.Bounds()
	w := int(math.Round(float64(b.Dx()) * scale))
	h := int(math.Round(float64(b.Dy()) * scale))
	w = max(w, textMinPixels)
	h = max(h, textMinPixels)
	x := (o.canvas.Width - w) / 2
	y := (o.canvas.Height - h) / 2
	xdraw.ApproxBiLinear.Scale(dst, image.Rect(x, y, x+w, y+h), o.block, b, xdraw.Over, nil)
}
