package tiler

import (
	"math"

	"github.com/kallio-maps/cogtile/internal/cog"
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/imagebuf"
)

// marginPx is the slack, in overview pixels, ComputeImageBoundingBox's
// sampled bounding box is allowed to miss a projected output pixel by
// before that pixel is left unpainted. Guards against the bounding box
// falling a hair short of the true projected area due to floating point
// rounding at its edges.
const marginPx = 1.0

func clampInt(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// clampRange floors/ceils a float bounding range to an integer pixel range
// clamped to [0,limit].
func clampRange(lo, hi float64, limit int) (int, int) {
	from := int(math.Floor(lo))
	to := int(math.Ceil(hi))
	if from < 0 {
		from = 0
	}
	if to > limit {
		to = limit
	}
	if from > to {
		from = to
	}
	return from, to
}

// warpOverview reads the source area of ovr a tile's bounding box covers
// and resamples it, nearest-neighbour, into a TileSize x TileSize output
// buffer in ovr's own band layout.
func warpOverview(c *cog.COG, ovr *cog.Overview, tile TMSTileCoords) (*imagebuf.ImageBuffer, error) {
	ovrGeoref := c.ComputeGeoreferenceForOverview(ovr)
	warper, err := NewWarper(ovrGeoref)
	if err != nil {
		return nil, err
	}

	bbox := warper.ComputeImageBoundingBox(tile)
	jFrom, jTo := clampRange(bbox.XMin, bbox.XMax, ovr.Width)
	iFrom, iTo := clampRange(bbox.YMin, bbox.YMax, ovr.Height)

	dtype := ovr.DataType.Unpacked()
	out := imagebuf.New(TileSize, TileSize, ovr.Bands.NBands, ovr.Bands.HasAlpha, dtype)
	if jTo <= jFrom || iTo <= iFrom {
		return out, nil
	}

	reader, err := c.NewOverviewDataReader(ovr)
	if err != nil {
		return nil, err
	}
	area, err := reader.ReadImagePart(imagebuf.ImageRect{JFrom: jFrom, JTo: jTo, IFrom: iFrom, ITo: iTo})
	if err != nil {
		return nil, err
	}

	pixelBytes := out.PixelBytes()
	for i := 0; i < TileSize; i++ {
		for j := 0; j < TileSize; j++ {
			p := warper.ProjectTilePixel(tile, float64(j), float64(i))
			if p.X < float64(jFrom)-marginPx || p.X > float64(jTo)+marginPx {
				continue
			}
			if p.Y < float64(iFrom)-marginPx || p.Y > float64(iTo)+marginPx {
				continue
			}
			areaX := clampInt(int(p.X)-jFrom, 0, area.Width-1)
			areaY := clampInt(int(p.Y)-iFrom, 0, area.Height-1)

			// py grows south within the tile (see PixelToMeters3857); flip
			// to produce a north-up output raster.
			outRow := TileSize - 1 - i
			srcOff := (areaY*area.Width + areaX) * pixelBytes
			dstOff := (outRow*TileSize + j) * pixelBytes
			copy(out.Data[dstOff:dstOff+pixelBytes], area.Data[srcOff:srcOff+pixelBytes])
		}
	}
	return out, nil
}

// ExtractTile reads, warps and resamples the requested TMS tile out of c,
// selecting the best-fitting overview and, if c has a parallel mask
// pyramid, compositing a mask-derived alpha band.
func ExtractTile(c *cog.COG, tile TMSTileCoords) (*imagebuf.ImageBuffer, error) {
	ovrIndex := BestOverview(c, tile.Z)
	out, err := warpOverview(c, &c.Overviews[ovrIndex], tile)
	if err != nil {
		return nil, err
	}

	if len(c.MaskOverviews) == 0 {
		return out, nil
	}
	if out.HasAlpha {
		return nil, cogerr.New(cogerr.KindOther, "cannot composite a mask overview onto an image overview that already carries an alpha band")
	}

	maskIndex := BestMaskOverview(c, tile.Z)
	maskOut, err := warpOverview(c, &c.MaskOverviews[maskIndex], tile)
	if err != nil {
		return nil, err
	}
	return imagebuf.Stack(out, maskOut)
}
