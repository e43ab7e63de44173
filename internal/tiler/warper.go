package tiler

import (
	"github.com/kallio-maps/cogtile/internal/cog"
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/coord"
)

// edgeSamples is how many intermediate points ComputeImageBoundingBox
// samples along each of a tile's four EPSG:3857 edges, so a non-linear
// raster CRS (e.g. Swiss LV95) that bows a straight 3857 edge doesn't
// clip the source-area read short.
const edgeSamples = 21

// Warper projects points between a tile's EPSG:3857 pixel grid and one
// overview's pixel grid, through the overview's own CRS.
type Warper struct {
	proj   coord.Projection
	georef cog.Georeference
}

// NewWarper builds a Warper for reprojecting into georef's CRS.
func NewWarper(georef cog.Georeference) (*Warper, error) {
	proj := coord.ForEPSG(georef.CRS.EPSG())
	if proj == nil {
		return nil, cogerr.New(cogerr.KindUnsupportedProjection, "no projection available for EPSG:%d", georef.CRS.EPSG())
	}
	return &Warper{proj: proj, georef: georef}, nil
}

// Project3857Meters projects an EPSG:3857 point into the overview's pixel
// space: reproject to the overview's CRS via WGS84, then invert the
// overview's geotransform.
func (w *Warper) Project3857Meters(mx, my float64) Vec2 {
	webMerc := coord.WebMercatorProj{}
	lon, lat := webMerc.ToWGS84(mx, my)
	x, y := w.proj.FromWGS84(lon, lat)
	gt := w.georef.Geotransform
	return Vec2{
		X: (x - gt.UlX) / gt.XRes,
		Y: (y - gt.UlY) / gt.YRes,
	}
}

// ProjectTilePixel projects a pixel position within tile into the
// overview's pixel space.
func (w *Warper) ProjectTilePixel(tile TMSTileCoords, px, py float64) Vec2 {
	mx, my := tile.PixelToMeters3857(px, py)
	return w.Project3857Meters(mx, my)
}

// ComputeImageBoundingBox projects tile's four EPSG:3857 edges into the
// overview's pixel space, sampling edgeSamples intermediate points along
// each edge, and returns the bounding box of every projected point.
func (w *Warper) ComputeImageBoundingBox(tile TMSTileCoords) BBox {
	bounds3857 := tile.TileBounds3857()
	var points []Vec2
	for _, edge := range bounds3857.Edges() {
		c1, c2 := edge[0], edge[1]
		dir := c2.Sub(c1)
		for k := 0; k < edgeSamples; k++ {
			p := c1.Add(dir.Scale(float64(k) / float64(edgeSamples-1)))
			points = append(points, w.Project3857Meters(p.X, p.Y))
		}
	}
	return BBoxFromPoints(points)
}
