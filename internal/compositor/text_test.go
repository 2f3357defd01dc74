package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"testing"

	"github.com/ivlev/librarycard/internal/config"
	"github.com/ivlev/librarycard/internal/logging"
)

func newTestOverlay(text string, size float64, canvas config.Canvas) *Overlay {
	return NewOverlay(TextOptions{
		Text:       text,
		FontSize:   size,
		Capitalize: true,
		Start:      4.5,
		Duration:   1.5,
	}, canvas, logging.Discard())
}

func TestOverlayProgress(t *testing.T) {
	o := newTestOverlay("Movies", 40, smallCanvas)
	tests := []struct {
		t, want float64
	}{
		{0, 0},
		{4.4, 0},
		{4.5, 0},
		{5.25, 0.5},
		{6.0, 1},
		{9, 1},
	}
	for _, tt := range tests {
		if got := o.Progress(tt.t); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("Progress(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestOverlayOneLinePerWord(t *testing.T) {
	one := newTestOverlay("Movies", 40, smallCanvas)
	two := newTestOverlay("TV Shows", 40, smallCanvas)
	if two.block.Bounds().Size().Y != 2*one.block.Bounds().Size().Y {
		t.Errorf("two-word block height %d, one-word %d", two.block.Bounds().Size().Y, one.block.Bounds().Size().Y)
	}
}

func TestOverlayFitsCanvasWidth(t *testing.T) {
	o := newTestOverlay("Documentaries", 500, smallCanvas)
	if got := float64(o.block.Bounds().Size().X) * o.fit; got > textMaxWidth*float64(smallCanvas.Width)+1 {
		t.Errorf("scaled width %v exceeds %v", got, textMaxWidth*float64(smallCanvas.Width))
	}
}

func TestOverlayVeilAndText(t *testing.T) {
	o := newTestOverlay("Music", 60, smallCanvas)
	grey := color.RGBA{100, 100, 100, 255}
	dst := image.NewRGBA(image.Rect(0, 0, smallCanvas.Width, smallCanvas.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(grey), image.Point{}, draw.Src)

	before := image.NewRGBA(dst.Bounds())
	copy(before.Pix, dst.Pix)
	o.Draw(before, 4.0)
	if before.RGBAAt(0, 0) != grey {
		t.Error("overlay drawn before its start")
	}

	o.Draw(dst, 6.0)
	corner := dst.RGBAAt(0, 0)
	if corner.R >= grey.R || corner.R < 60 {
		t.Errorf("veil corner %v", corner)
	}
	white := 0
	for y := 0; y < smallCanvas.Height; y++ {
		for x := 0; x < smallCanvas.Width; x++ {
			if dst.RGBAAt(x, y).R > 200 {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no title pixels drawn")
	}
}

func TestOverlayFallsBackOnMissingFont(t *testing.T) {
	o := NewOverlay(TextOptions{
		Text:     "Anime",
		FontPath: filepath.Join(t.TempDir(), "missing.ttf"),
		FontSize: 30,
		Start:    0,
	}, smallCanvas, logging.Discard())
	if o.block.Bounds().Size().X == 0 || o.block.Bounds().Size().Y == 0 {
		t.Errorf("empty block %v", o.block.Bounds().Size())
	}
}

func TestOverlayDrawsAtMinimumSize(t *testing.T) {
	o := newTestOverlay("Movies", 40, smallCanvas)
	dst := image.NewRGBA(image.Rect(0, 0, smallCanvas.Width, smallCanvas.Height))
	o.Draw(dst, 4.5)

	lit := image.Rectangle{}
	for y := 0; y < smallCanvas.Height; y++ {
		for x := 0; x < smallCanvas.Width; x++ {
			if dst.RGBAAt(x, y).R > 0 {
				lit = lit.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	if lit.Empty() {
		t.Fatal("title not drawn at its smallest scale")
	}
	if lit.Dx() > textMinPixels || lit.Dy() > textMinPixels {
		t.Errorf("title spans %v, want at most %dpx", lit, textMinPixels)
	}
}
