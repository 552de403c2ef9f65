package printsheet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nums(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%03d", i+1)
	}
	return out
}

func TestMMToPx(t *testing.T) {
	tests := []struct {
		mm   float64
		want int
	}{
		{0, 0},
		{3, 35},
		{5, 59},
		{8, 94},
		{25.4, 300},
		{45, 531},
		{210, 2480},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MMToPx(tt.mm), "%.1f mm", tt.mm)
	}
}

func TestOverviewGrid(t *testing.T) {
	g := OverviewGrid(true)
	require.NoError(t, g.Validate())
	assert.Equal(t, 760, g.CellW)
	assert.Equal(t, 661, g.CellH)
	assert.Equal(t, 15, g.PerPage())

	pages, placed := g.Place(nums(1))
	assert.Equal(t, 1, pages)
	require.Len(t, placed, 1)
	p := placed[0]
	assert.Equal(t, Rect{X: 100, Y: 100, W: 760, H: 661}, p.Cell)
	assert.Equal(t, 567, p.QR.W)
	assert.Equal(t, p.QR.W, p.QR.H)
	assert.Equal(t, Rect{X: 100, Y: 100 + 661 - 59, W: 760, H: 59}, p.Label)
}

func TestLabelGridDefaults(t *testing.T) {
	g := LabelGrid(DefaultLabelOptions())
	require.NoError(t, g.Validate())
	assert.Equal(t, 531, g.CellW)
	assert.Equal(t, 94, g.MarginLeft)
	assert.Equal(t, 35, g.HGap)

	_, placed := g.Place(nums(2))
	assert.Equal(t, 437, placed[0].QR.W)
	assert.Equal(t, 94+531+35, placed[1].Cell.X)
}

func TestLabelGridWithoutLabels(t *testing.T) {
	opts := DefaultLabelOptions()
	opts.Labels = false
	_, placed := LabelGrid(opts).Place(nums(1))
	assert.Equal(t, 531-35, placed[0].QR.W)
	assert.Equal(t, Rect{}, placed[0].Label)
}

func TestValidateRejectsOversizedGrid(t *testing.T) {
	opts := DefaultLabelOptions()
	opts.Cols = 5
	err := LabelGrid(opts).Validate()
	assert.ErrorIs(t, err, ErrGridTooLarge)

	opts = DefaultLabelOptions()
	opts.Rows = 0
	assert.Error(t, LabelGrid(opts).Validate())
}

func TestQRSideHasFloor(t *testing.T) {
	g := Grid{Cols: 1, Rows: 1, CellW: 40, CellH: 40, Labels: true}
	_, placed := g.Place(nums(1))
	assert.Equal(t, minQRSidePx, placed[0].QR.W)
}

func TestPlacementsFitAndNeverOverlap(t *testing.T) {
	page := Rect{W: PageWidthPx, H: PageHeightPx}
	grids := map[string]Grid{
		"overview": OverviewGrid(true),
		"labels":   LabelGrid(DefaultLabelOptions()),
	}
	for name, g := range grids {
		t.Run(name, func(t *testing.T) {
			pages, placed := g.Place(nums(40))
			assert.Equal(t, (40+g.PerPage()-1)/g.PerPage(), pages)

			for i, a := range placed {
				assert.True(t, a.Cell.Within(page), "cell %s outside page", a.Num)
				assert.True(t, a.QR.Within(a.Cell), "code %s outside its cell", a.Num)
				if g.Labels {
					assert.True(t, a.Label.Within(a.Cell), "label %s outside its cell", a.Num)
					assert.False(t, a.QR.Overlaps(a.Label), "code %s covers its label", a.Num)
				}
				for _, b := range placed[i+1:] {
					if a.Page == b.Page {
						assert.False(t, a.Cell.Overlaps(b.Cell), "%s overlaps %s", a.Num, b.Num)
					}
				}
			}
		})
	}
}

func TestPlaceFillsRowMajorAcrossPages(t *testing.T) {
	g := OverviewGrid(false)
	pages, placed := g.Place(nums(16))
	assert.Equal(t, 2, pages)
	assert.Equal(t, 0, placed[1].Page)
	assert.Greater(t, placed[1].Cell.X, placed[0].Cell.X)
	assert.Equal(t, placed[0].Cell.Y, placed[2].Cell.Y)
	assert.Greater(t, placed[3].Cell.Y, placed[0].Cell.Y)
	assert.Equal(t, 1, placed[15].Page)
	assert.Equal(t, placed[0].Cell, placed[15].Cell)
}

func TestPlaceEmptyStillHasOnePage(t *testing.T) {
	pages, placed := OverviewGrid(true).Place(nil)
	assert.Equal(t, 1, pages)
	assert.Empty(t, placed)
}
