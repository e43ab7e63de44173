package cog

import (
	"math"

	"github.com/kallio-maps/cogtile/internal/coord"
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// CRS is an EPSG code identifying the coordinate reference system a
// Georeference's geotransform is expressed in.
type CRS uint16

// CRSPseudoMercator is EPSG:3857, the only CRS extract_tile tiles can be
// requested against without reprojection of the tile grid itself — the
// raster's own CRS may still be anything coord.ForEPSG recognizes.
const CRSPseudoMercator CRS = 3857

// EPSG returns the numeric EPSG code.
func (c CRS) EPSG() int { return int(c) }

// Unit is the linear or angular unit of measure a geotransform's
// resolution is expressed in (GeoTIFF §6.3.1.3).
type Unit int

const (
	UnitLinearMeter Unit = iota
	UnitDegree
)

func decodeUnit(code uint16) (Unit, error) {
	switch code {
	case 9001:
		return UnitLinearMeter, nil
	case 9102:
		return UnitDegree, nil
	default:
		return 0, cogerr.New(cogerr.KindUnsupportedUnit, "unit of measure %d", code)
	}
}

// epsilon bounds the "close enough to zero" check decodeGeotransform uses
// to reject non-north-up and vertical-CRS tie points.
const epsilon = 1e-15

func closeToZero(v float64) bool {
	return v > -epsilon && v < epsilon
}

// Geotransform is the affine map from pixel space to CRS coordinates of a
// north-up raster: x = UlX + px*XRes, y = UlY + py*YRes.
type Geotransform struct {
	UlX, UlY   float64
	XRes, YRes float64
}

// decodeGeotransform builds a Geotransform from a ModelTiepointTag (6
// doubles: i,j,k,x,y,z) and ModelPixelScaleTag (3 doubles: sx,sy,sz),
// rejecting anything that isn't a simple north-up raster.
func decodeGeotransform(tiePoints, pixelScale []float64) (Geotransform, error) {
	if len(tiePoints) != 6 {
		return Geotransform{}, cogerr.New(cogerr.KindUnsupportedProjection,
			"ModelTiepointTag must have exactly one tie point (6 values), got %d", len(tiePoints))
	}
	if len(pixelScale) != 3 {
		return Geotransform{}, cogerr.New(cogerr.KindUnsupportedProjection,
			"ModelPixelScaleTag must have exactly 3 values, got %d", len(pixelScale))
	}
	if !closeToZero(tiePoints[0]) || !closeToZero(tiePoints[1]) || !closeToZero(tiePoints[2]) {
		return Geotransform{}, cogerr.New(cogerr.KindUnsupportedProjection,
			"only rasters tied at pixel (0,0) are supported, got tie point (%g,%g,%g)",
			tiePoints[0], tiePoints[1], tiePoints[2])
	}
	if !closeToZero(tiePoints[5]) || !closeToZero(pixelScale[2]) {
		return Geotransform{}, cogerr.New(cogerr.KindUnsupportedProjection, "vertical CRS is not supported")
	}
	return Geotransform{
		UlX:  tiePoints[3],
		UlY:  tiePoints[4],
		XRes: pixelScale[0],
		YRes: -pixelScale[1],
	}, nil
}

// PixelResolution is the mean of the absolute x and y pixel resolutions.
func (g Geotransform) PixelResolution() float64 {
	return (math.Abs(g.XRes) + math.Abs(g.YRes)) / 2.0
}

// Georeference is a raster's full spatial reference: its CRS, the unit its
// geotransform is expressed in, and the geotransform itself.
type Georeference struct {
	CRS          CRS
	Unit         Unit
	Geotransform Geotransform
}

// decodeGeoreference reads GTModelType out of geoKeys to decide whether to
// look up a ProjectedCRS or a GeodeticCRS, requires GTRasterType==1
// (RasterPixelIsArea — anything else changes the tie point semantics this
// client doesn't implement), and decodes the geotransform.
func decodeGeoreference(ifd *tiff.IFD, src tiff.Source, geoKeys *tiff.GeoKeyDirectory) (Georeference, error) {
	modelType, err := geoKeys.RequireShort(tiff.KeyGTModelType)
	if err != nil {
		return Georeference{}, err
	}

	var crsCode, unitCode uint16
	switch modelType {
	case 1: // Projected
		crsCode, err = geoKeys.RequireShort(tiff.KeyProjectedCRS)
		if err != nil {
			return Georeference{}, err
		}
		unitCode, err = geoKeys.RequireShort(tiff.KeyProjLinearUnits)
		if err != nil {
			return Georeference{}, err
		}
	case 2: // Geographic
		crsCode, err = geoKeys.RequireShort(tiff.KeyGeodeticCRS)
		if err != nil {
			return Georeference{}, err
		}
		unitCode, err = geoKeys.RequireShort(tiff.KeyGeodeticAngularUnits)
		if err != nil {
			return Georeference{}, err
		}
	default:
		return Georeference{}, cogerr.New(cogerr.KindUnsupportedProjection, "unsupported GTModelType %d", modelType)
	}

	rasterType, err := geoKeys.RequireShort(tiff.KeyGTRasterType)
	if err != nil {
		return Georeference{}, err
	}
	if rasterType != 1 {
		return Georeference{}, cogerr.New(cogerr.KindUnsupportedProjection, "unsupported GTRasterType %d", rasterType)
	}

	unit, err := decodeUnit(unitCode)
	if err != nil {
		return Georeference{}, err
	}

	tiePoints, err := ifd.RequireFloat64Slice(src, tiff.TagModelTiepointTag)
	if err != nil {
		return Georeference{}, err
	}
	pixelScale, err := ifd.RequireFloat64Slice(src, tiff.TagModelPixelScaleTag)
	if err != nil {
		return Georeference{}, err
	}
	gt, err := decodeGeotransform(tiePoints, pixelScale)
	if err != nil {
		return Georeference{}, err
	}

	return Georeference{CRS: CRS(crsCode), Unit: unit, Geotransform: gt}, nil
}

// lonToMetersEquator converts a longitude extent (in degrees) to meters
// measured along the equator, for rasters whose resolution is expressed
// in degrees rather than meters.
func lonToMetersEquator(lon float64) float64 {
	return lon * coord.EarthCircumference / 360.0
}

// PixelResolutionInMeters is the raster's ground resolution, converting
// from degrees if necessary.
func (g Georeference) PixelResolutionInMeters() float64 {
	if g.Unit == UnitLinearMeter {
		return g.Geotransform.PixelResolution()
	}
	return lonToMetersEquator(g.Geotransform.PixelResolution())
}
