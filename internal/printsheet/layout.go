// Package printsheet lays QR codes out on A4 pages and renders them as PDF.
//
// Layout works on a 300 dpi pixel grid (A4 = 2480 x 3508 px) with integer
// arithmetic; rendering converts the grid back to millimetres.
package printsheet

import (
	"errors"
	"fmt"
	"math"
)

// Page geometry at 300 dpi.
const (
	DPI          = 300
	PageWidthPx  = 2480
	PageHeightPx = 3508
	mmPerInch    = 25.4
)

// Fixed distances inside a cell.
const (
	labelSpaceMM = 5.0 // strip below the code holding "Eintrag NNN"
	qrPaddingMM  = 3.0 // subtracted from the code's side
	minQRSidePx  = 10
)

// ErrGridTooLarge is returned when a grid does not fit on the page.
var ErrGridTooLarge = errors.New("label grid does not fit on A4")

// MMToPx converts millimetres to pixels at DPI, rounding to nearest.
func MMToPx(mm float64) int {
	return int(math.Round(mm * DPI / mmPerInch))
}

// PxToMM converts pixels at DPI to millimetres.
func PxToMM(px int) float64 {
	return float64(px) * mmPerInch / DPI
}

// Rect is an axis aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H int
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Within reports whether r lies inside o.
func (r Rect) Within(o Rect) bool {
	return r.X >= o.X && r.Y >= o.Y && r.X+r.W <= o.X+o.W && r.Y+r.H <= o.Y+o.H
}

// Grid is a regular arrangement of cells on a page.
type Grid struct {
	Cols, Rows   int
	CellW, CellH int
	MarginLeft   int
	MarginTop    int
	HGap, VGap   int
	Labels       bool // reserve a label strip below each code
}

// OverviewGrid is the 3 x 5 grid with a 100 px margin used for the
// overview sheet. Cells share the space left by the margins.
func OverviewGrid(labels bool) Grid {
	const cols, rows, margin = 3, 5, 100
	return Grid{
		Cols:       cols,
		Rows:       rows,
		CellW:      (PageWidthPx - 2*margin) / cols,
		CellH:      (PageHeightPx - 2*margin) / rows,
		MarginLeft: margin,
		MarginTop:  margin,
		Labels:     labels,
	}
}

// LabelOptions describes a sticker sheet in millimetres.
type LabelOptions struct {
	Cols, Rows   int
	CellMM       float64 // side of a square label
	MarginLeftMM float64
	MarginTopMM  float64
	HGapMM       float64
	VGapMM       float64
	Labels       bool
}

// DefaultLabelOptions returns the 4 x 6 sheet of 45 mm labels.
func DefaultLabelOptions() LabelOptions {
	return LabelOptions{
		Cols:         4,
		Rows:         6,
		CellMM:       45,
		MarginLeftMM: 8,
		MarginTopMM:  8,
		HGapMM:       3,
		VGapMM:       3,
		Labels:       true,
	}
}

// LabelGrid converts opts to a pixel grid.
func LabelGrid(opts LabelOptions) Grid {
	cell := MMToPx(opts.CellMM)
	return Grid{
		Cols:       opts.Cols,
		Rows:       opts.Rows,
		CellW:      cell,
		CellH:      cell,
		MarginLeft: MMToPx(opts.MarginLeftMM),
		MarginTop:  MMToPx(opts.MarginTopMM),
		HGap:       MMToPx(opts.HGapMM),
		VGap:       MMToPx(opts.VGapMM),
		Labels:     opts.Labels,
	}
}

// Validate checks that the grid has cells and fits on the page.
func (g Grid) Validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("grid needs at least one row and column, got %dx%d", g.Cols, g.Rows)
	}
	if g.CellW <= 0 || g.CellH <= 0 {
		return fmt.Errorf("cell size must be positive, got %dx%d px", g.CellW, g.CellH)
	}
	if g.MarginLeft < 0 || g.MarginTop < 0 || g.HGap < 0 || g.VGap < 0 {
		return errors.New("margins and gaps must not be negative")
	}
	right := g.MarginLeft + g.Cols*g.CellW + (g.Cols-1)*g.HGap
	bottom := g.MarginTop + g.Rows*g.CellH + (g.Rows-1)*g.VGap
	if right > PageWidthPx || bottom > PageHeightPx {
		return fmt.Errorf("%w: needs %dx%d px, page is %dx%d px",
			ErrGridTooLarge, right, bottom, PageWidthPx, PageHeightPx)
	}
	return nil
}

// PerPage is the number of cells on one page.
func (g Grid) PerPage() int {
	return g.Cols * g.Rows
}

// Cell returns the rectangle of cell idx (row-major) on a page.
func (g Grid) Cell(idx int) Rect {
	r, c := idx/g.Cols, idx%g.Cols
	return Rect{
		X: g.MarginLeft + c*(g.CellW+g.HGap),
		Y: g.MarginTop + r*(g.CellH+g.VGap),
		W: g.CellW,
		H: g.CellH,
	}
}

// Placement is one code placed on a page.
type Placement struct {
	Num   string
	Page  int // 0-based
	Cell  Rect
	QR    Rect
	Label Rect // zero when the grid has no labels
}

// Place assigns nums to cells row-major, page by page. The code is a
// square centered in the area above the label strip; the label strip
// spans the cell's bottom.
func (g Grid) Place(nums []string) (pages int, placements []Placement) {
	labelSpace := 0
	if g.Labels {
		labelSpace = MMToPx(labelSpaceMM)
	}
	side := max(minQRSidePx, min(g.CellW, g.CellH-labelSpace)-MMToPx(qrPaddingMM))

	per := g.PerPage()
	for i, num := range nums {
		cell := g.Cell(i % per)
		p := Placement{
			Num:  num,
			Page: i / per,
			Cell: cell,
			QR: Rect{
				X: cell.X + (cell.W-side)/2,
				Y: cell.Y + (cell.H-labelSpace-side)/2,
				W: side,
				H: side,
			},
		}
		if g.Labels {
			p.Label = Rect{X: cell.X, Y: cell.Y + cell.H - labelSpace, W: cell.W, H: labelSpace}
		}
		placements = append(placements, p)
	}
	pages = (len(nums) + per - 1) / per
	return max(1, pages), placements
}
