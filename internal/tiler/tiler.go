// Package tiler implements the TMS/XYZ tile grid over EPSG:3857, overview
// selection, and the warp from a tile's pixel grid into a COG overview's
// pixel grid needed to extract one 256x256 output tile.
package tiler

import (
	"math"

	"github.com/kallio-maps/cogtile/internal/cog"
	"github.com/kallio-maps/cogtile/internal/coord"
)

// TileSize is the standard web map tile dimension, in pixels per side.
const TileSize = 256

// TMSTileCoords addresses a tile using the TMS convention: y grows
// northward, unlike the XYZ convention most tile URLs use (y grows
// southward).
type TMSTileCoords struct {
	X, Y int64
	Z    int
}

// FromZXY converts XYZ tile coordinates (y growing south, as used by
// Google/Bing/OSM-style tile URLs) to TMS coordinates.
func FromZXY(z int, x, y int64) TMSTileCoords {
	n := int64(1) << uint(z)
	return TMSTileCoords{X: x, Y: n - y - 1, Z: z}
}

// Resolution is the ground resolution, in meters/pixel, of a full-world
// EPSG:3857 tile grid at zoom. Unlike coord.ResolutionAtLat, this does not
// depend on latitude — within one tile, 3857's distortion is constant
// enough that a single resolution value per zoom level is what the
// best-overview and extract-tile math both need.
func Resolution(zoom int) float64 {
	return coord.EarthCircumference / (TileSize * math.Pow(2, float64(zoom)))
}

// PixelToMeters converts a global pixel coordinate at zoom (x=0,y=0 being
// the northwest corner of the whole world) to EPSG:3857 meters.
func PixelToMeters(x, y float64, zoom int) (mx, my float64) {
	res := Resolution(zoom)
	return x*res - coord.OriginShift, y*res - coord.OriginShift
}

// TileBounds3857 returns the tile's bounding box in EPSG:3857 meters.
func (t TMSTileCoords) TileBounds3857() BBox {
	xmin, ymin := PixelToMeters(float64(t.X*TileSize), float64(t.Y*TileSize), t.Z)
	xmax, ymax := PixelToMeters(float64((t.X+1)*TileSize), float64((t.Y+1)*TileSize), t.Z)
	return BBox{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}

// PixelToMeters3857 converts a pixel position (px,py) within this tile to
// EPSG:3857 meters. py=0 corresponds to this TMS tile's south edge — the
// caller is responsible for flipping to a north-up raster row order (see
// ExtractTile's output row flip).
func (t TMSTileCoords) PixelToMeters3857(px, py float64) (mx, my float64) {
	gx := float64(t.X)*TileSize + px
	gy := float64(t.Y)*TileSize + py
	return PixelToMeters(gx, gy, t.Z)
}

// bestOverviewIndex implements the coarsest-still-finer-than-the-tile
// selection rule: among overviews, the one whose resolution is the
// largest value still smaller than the requested tile's resolution.
func bestOverviewIndex(c *cog.COG, overviews []cog.Overview, zoom int) int {
	tileRes := Resolution(zoom)
	selected := 0
	selectedRes := c.Georeference.PixelResolutionInMeters()
	for i := range overviews {
		ovrGeoref := c.ComputeGeoreferenceForOverview(&overviews[i])
		ovrRes := ovrGeoref.PixelResolutionInMeters()
		if ovrRes < tileRes && ovrRes > selectedRes {
			selected = i
			selectedRes = ovrRes
		}
	}
	return selected
}

// BestOverview returns the index into c.Overviews of the coarsest overview
// whose resolution is still finer than the tile resolution at zoom.
func BestOverview(c *cog.COG, zoom int) int {
	return bestOverviewIndex(c, c.Overviews, zoom)
}

// BestMaskOverview is BestOverview for c's mask pyramid, selected by
// resolution independently of the image pyramid (the two pyramids need
// not have the same depth).
func BestMaskOverview(c *cog.COG, zoom int) int {
	return bestOverviewIndex(c, c.MaskOverviews, zoom)
}
