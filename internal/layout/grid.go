// Package layout computes oversized tiling grids and the waypoint geometry
// that choreographies place sprites along.
package layout

import (
	"math"

	"github.com/ivlev/librarycard/internal/config"
)

// Size is a width/height pair in pixels.
type Size struct {
	W, H float64
}

// DefaultPoster is used for sizing when no posters are available.
var DefaultPoster = Size{W: 100, H: 150}

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// PosterSize returns the largest width and height over sizes, or
// DefaultPoster when sizes is empty. Each axis is at least 1px.
func PosterSize(sizes []Size) Size {
	if len(sizes) == 0 {
		return DefaultPoster
	}
	var out Size
	for _, s := range sizes {
		out.W = math.Max(out.W, s.W)
		out.H = math.Max(out.H, s.H)
	}
	return out.safe()
}

func (s Size) safe() Size {
	if math.IsNaN(s.W) || s.W < 1 {
		s.W = 1
	}
	if math.IsNaN(s.H) || s.H < 1 {
		s.H = 1
	}
	return s
}

// Shape selects the initial column/row heuristic before coverage growth.
type Shape int

const (
	// ShapeFill fills the canvas plus Margin cells on every side and
	// ExtraCols/ExtraRows.
	ShapeFill Shape = iota
	// ShapeSquare uses a side of ceil(sqrt(Count)) + ExtraCols.
	ShapeSquare
	// ShapeGolden uses BaseCols and rows = int(BaseCols/Phi) + ExtraRows.
	ShapeGolden
	// ShapeCanvas uses BaseCols and rows following the canvas aspect.
	ShapeCanvas
	// ShapeStep starts at BaseCols x ceil(Count/BaseCols) and grows both
	// axes Step cells at a time.
	ShapeStep
	// ShapeWide sizes both axes straight from Coverage, for tilings wider
	// than the canvas.
	ShapeWide
)

// Params configures New.
type Params struct {
	Scale    float64
	Spacing  float64
	Coverage float64
	Shape    Shape

	BaseCols  int
	Count     int
	ExtraCols int
	ExtraRows int
	Step      int

	// Margin is measured in cells; ShiftY in canvas heights.
	Margin float64
	ShiftY float64
}

// Grid is an oversized tiling centred on the canvas.
type Grid struct {
	Cols, Rows       int
	CellW, CellH     float64
	Width, Height    float64
	OriginX, OriginY float64
	Poster           Size
	Scale            float64
	Coverage         float64
}

// MaxCells bounds Cols*Rows. Tiny or extremely flat posters would
// otherwise need millions of cells to reach coverage.
const MaxCells = 10000

// New computes a grid that satisfies
// Cols*CellW >= Coverage*canvas.Width and Rows*CellH >= Coverage*canvas.Height.
// When that takes more than MaxCells cells the poster scale grows instead
// of the count.
func New(poster Size, canvas config.Canvas, p Params) Grid {
	poster = poster.safe()
	if p.Scale <= 0 {
		p.Scale = 1
	}
	if p.Coverage < 1 {
		p.Coverage = 1
	}
	W, H := float64(canvas.Width), float64(canvas.Height)

	var cols, rows int
	var cellW, cellH float64
	for attempt := 0; ; attempt++ {
		cellW = math.Max(1, poster.W*p.Scale+p.Spacing)
		cellH = math.Max(1, poster.H*p.Scale+p.Spacing)
		cols, rows = dims(cellW, cellH, W, H, p)
		n := cols * rows
		if n <= MaxCells || attempt >= 32 {
			break
		}
		p.Scale *= math.Sqrt(float64(n)/MaxCells) * 1.05
	}

	g := Grid{
		Cols:     cols,
		Rows:     rows,
		CellW:    cellW,
		CellH:    cellH,
		Width:    float64(cols) * cellW,
		Height:   float64(rows) * cellH,
		Poster:   poster,
		Scale:    p.Scale,
		Coverage: p.Coverage,
	}
	g.OriginX = (W - g.Width) / 2
	g.OriginY = (H-g.Height)/2 + p.ShiftY*H
	return g
}

// dims picks the starting shape, shrinks it under MaxCells and then grows
// each axis until it covers.
func dims(cellW, cellH, W, H float64, p Params) (cols, rows int) {
	switch p.Shape {
	case ShapeSquare:
		side := int(math.Ceil(math.Sqrt(float64(p.Count)))) + p.ExtraCols
		cols, rows = side, side
	case ShapeGolden:
		cols = p.BaseCols
		rows = int(float64(p.BaseCols)/Phi) + p.ExtraRows
	case ShapeCanvas:
		cols = p.BaseCols
		rows = int(math.Ceil(float64(p.BaseCols)/(W/H))) + p.ExtraRows
	case ShapeStep:
		cols = p.BaseCols
		if cols > 0 {
			rows = int(math.Ceil(float64(p.Count) / float64(cols)))
		}
	case ShapeWide:
		cols = int(math.Ceil(p.Coverage*W/cellW)) + p.ExtraCols
		rows = int(math.Ceil(p.Coverage*H/cellH)) + p.ExtraRows
	default:
		margin := p.Margin * 2
		cols = int(math.Ceil((W+margin*cellW)/cellW)) + p.ExtraCols
		rows = int(math.Ceil((H+margin*cellH)/cellH)) + p.ExtraRows
	}
	cols = max(cols, 1)
	rows = max(rows, 1)
	if n := cols * rows; n > MaxCells {
		f := math.Sqrt(MaxCells / float64(n))
		cols = max(1, int(float64(cols)*f))
		rows = max(1, int(float64(rows)*f))
	}

	step := 1
	if p.Shape == ShapeStep && p.Step > 0 {
		step = p.Step
	}
	for float64(cols)*cellW < p.Coverage*W {
		cols += step
	}
	for float64(rows)*cellH < p.Coverage*H {
		rows += step
	}
	return cols, rows
}

// Aspect is the grid's width over its height.
func (g Grid) Aspect() float64 {
	if g.Height == 0 {
		return 0
	}
	return g.Width / g.Height
}

// Cells is the number of sprites the grid holds.
func (g Grid) Cells() int {
	return g.Cols * g.Rows
}

// RowCol maps a row-major cell index.
func (g Grid) RowCol(i int) (row, col int) {
	return i / g.Cols, i % g.Cols
}

// Center returns the centre of cell i in canvas coordinates.
func (g Grid) Center(i int) Point {
	row, col := g.RowCol(i)
	return g.CellCenter(row, col)
}

func (g Grid) CellCenter(row, col int) Point {
	return Point{
		X: g.OriginX + float64(col)*g.CellW + g.CellW/2,
		Y: g.OriginY + float64(row)*g.CellH + g.CellH/2,
	}
}

// Covers reports whether the grid meets coverage against canvas.
func (g Grid) Covers(canvas config.Canvas, coverage float64) bool {
	return g.Width >= coverage*float64(canvas.Width) && g.Height >= coverage*float64(canvas.Height)
}
