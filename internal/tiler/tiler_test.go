package tiler

import (
	"math"
	"testing"

	"github.com/kallio-maps/cogtile/internal/cog"
)

func approxEqual(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", what, got, want, tol)
	}
}

func TestResolution(t *testing.T) {
	approxEqual(t, Resolution(17), 1.194, 1e-2, "Resolution(17)")
	approxEqual(t, Resolution(20), 0.149, 1e-2, "Resolution(20)")
}

func TestTileBounds3857Zoom0(t *testing.T) {
	tile := TMSTileCoords{X: 0, Y: 0, Z: 0}
	b := tile.TileBounds3857()
	approxEqual(t, b.XMin, -20037508.342789244, 1e-5, "XMin")
	approxEqual(t, b.YMin, -20037508.342789244, 1e-5, "YMin")
	approxEqual(t, b.XMax, 20037508.342789244, 1e-5, "XMax")
	approxEqual(t, b.YMax, 20037508.342789244, 1e-5, "YMax")
}

func TestTileBounds3857Zoom5(t *testing.T) {
	tile := TMSTileCoords{X: 17, Y: 18, Z: 5}
	b := tile.TileBounds3857()
	// Cross-checked against a z=5 world split into 32 tiles per side.
	width := (20037508.342789244 * 2) / 32
	wantXMin := -20037508.342789244 + 17*width
	wantYMin := -20037508.342789244 + 18*width
	approxEqual(t, b.XMin, wantXMin, 1.0, "XMin")
	approxEqual(t, b.YMin, wantYMin, 1.0, "YMin")
	approxEqual(t, b.XMax, wantXMin+width, 1.0, "XMax")
	approxEqual(t, b.YMax, wantYMin+width, 1.0, "YMax")
}

func TestFromZXY(t *testing.T) {
	tms := FromZXY(1, 0, 1)
	if tms.X != 0 || tms.Y != 0 || tms.Z != 1 {
		t.Errorf("FromZXY(1,0,1) = %+v, want X=0 Y=0 Z=1", tms)
	}
	tms = FromZXY(1, 1, 0)
	if tms.X != 1 || tms.Y != 1 {
		t.Errorf("FromZXY(1,1,0) = %+v, want X=1 Y=1", tms)
	}
}

// buildFakeOverviewCOG constructs a COG with a full-resolution overview at
// 1.0 m/px and three progressively coarser overviews at 2.0/4.0/8.0 m/px,
// for exercising BestOverview without parsing a real file.
func buildFakeOverviewCOG() *cog.COG {
	georef := cog.Georeference{
		CRS:  cog.CRSPseudoMercator,
		Unit: cog.UnitLinearMeter,
		Geotransform: cog.Geotransform{
			UlX: 0, UlY: 0, XRes: 1.0, YRes: -1.0,
		},
	}
	return &cog.COG{
		Georeference: georef,
		Overviews: []cog.Overview{
			{Width: 800, Height: 800},
			{Width: 400, Height: 400},
			{Width: 200, Height: 200},
			{Width: 100, Height: 100},
		},
	}
}

// BestOverview picks the coarsest overview still finer than a zoom-15
// tile's ~4.777 m/px resolution: 4.0 m/px, at index 2 of the full
// (full-res-included) overview array this client keeps.
func TestBestOverview(t *testing.T) {
	c := buildFakeOverviewCOG()
	got := BestOverview(c, 15)
	if got != 2 {
		t.Errorf("BestOverview(zoom=15) = %d, want 2 (4.0 m/px overview)", got)
	}
}

func TestBestOverviewPicksFullResAtHighZoom(t *testing.T) {
	c := buildFakeOverviewCOG()
	got := BestOverview(c, 25)
	if got != 0 {
		t.Errorf("BestOverview(zoom=25) = %d, want 0 (full resolution)", got)
	}
}
