// Package cog implements the Cloud Optimized GeoTIFF model: parsing a
// TIFF/BigTIFF directory chain into a validated overview pyramid plus its
// georeference, and reading decompressed pixel data out of one overview.
package cog

import (
	"math"

	"github.com/kallio-maps/cogtile/internal/compress"
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/coord"
	"github.com/kallio-maps/cogtile/internal/source"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// Overview is one level of the image (or mask) pyramid: a single IFD's
// worth of geometry, band layout and compression, plus the IFD itself so
// a reader can later resolve TileOffsets/TileByteCounts.
type Overview struct {
	Width, Height         int
	TileWidth, TileHeight int
	Bands                 BandsInterpretation
	Photometric           uint64
	IsFullResolution       bool
	Compression            *compress.Compression
	DataType               InternalDataType

	ifd *tiff.IFD
}

// overviewFromIFD validates and extracts one Overview from a parsed IFD.
func overviewFromIFD(ifd *tiff.IFD, src tiff.Source) (Overview, error) {
	planar, err := ifd.RequireUint64(src, tiff.TagPlanarConfig)
	if err != nil {
		return Overview{}, err
	}
	if planar != 1 {
		return Overview{}, cogerr.New(cogerr.KindUnsupportedTagValue, "PlanarConfiguration must be 1 (chunky), got %d", planar)
	}

	orientation, err := ifd.OptionalUint64(src, tiff.TagOrientation, 1)
	if err != nil {
		return Overview{}, err
	}
	if orientation != 1 {
		return Overview{}, cogerr.New(cogerr.KindUnsupportedTagValue, "Orientation must be 1 (top-left), got %d", orientation)
	}

	subfileType, err := ifd.OptionalUint64(src, tiff.TagNewSubfileType, 0)
	if err != nil {
		return Overview{}, err
	}
	isFullRes := subfileType&0x1 == 0

	width, err := ifd.RequireUint64(src, tiff.TagImageWidth)
	if err != nil {
		return Overview{}, err
	}
	height, err := ifd.RequireUint64(src, tiff.TagImageLength)
	if err != nil {
		return Overview{}, err
	}
	tileWidth, err := ifd.RequireUint64(src, tiff.TagTileWidth)
	if err != nil {
		return Overview{}, err
	}
	tileHeight, err := ifd.RequireUint64(src, tiff.TagTileLength)
	if err != nil {
		return Overview{}, err
	}
	samplesPerPixel, err := ifd.RequireUint64(src, tiff.TagSamplesPerPixel)
	if err != nil {
		return Overview{}, err
	}

	var extraSamples []uint64
	if _, ok := ifd.Get(tiff.TagExtraSamples); ok {
		extraSamples, err = ifd.RequireUint64Slice(src, tiff.TagExtraSamples)
		if err != nil {
			return Overview{}, err
		}
	}

	photometric, err := ifd.RequireUint64(src, tiff.TagPhotometric)
	if err != nil {
		return Overview{}, err
	}
	bands, err := deriveBands(photometric, int(samplesPerPixel), extraSamples)
	if err != nil {
		return Overview{}, err
	}

	sampleFormat, err := ifd.OptionalUint64(src, tiff.TagSampleFormat, tiff.SampleFormatUint)
	if err != nil {
		return Overview{}, err
	}
	bitsPerSample, err := ifd.RequireUint64Slice(src, tiff.TagBitsPerSample)
	if err != nil {
		return Overview{}, err
	}
	if len(bitsPerSample) == 0 {
		return Overview{}, cogerr.New(cogerr.KindInvalidData, "BitsPerSample has no entries")
	}
	dataType, err := deriveInternalDataType(sampleFormat, bitsPerSample[0])
	if err != nil {
		return Overview{}, err
	}

	comp, err := compress.FromIFD(ifd, src)
	if err != nil {
		return Overview{}, err
	}

	return Overview{
		Width:            int(width),
		Height:           int(height),
		TileWidth:        int(tileWidth),
		TileHeight:       int(tileHeight),
		Bands:            bands,
		Photometric:      photometric,
		IsFullResolution: isFullRes,
		Compression:      comp,
		DataType:         dataType,
		ifd:              ifd,
	}, nil
}

// COG is a fully parsed and validated Cloud Optimized GeoTIFF: an
// overview pyramid, an optional parallel mask pyramid, and the
// georeference derived from the full-resolution overview.
type COG struct {
	Overviews     []Overview
	MaskOverviews []Overview
	GeoKeys       *tiff.GeoKeyDirectory
	Georeference  Georeference

	Source *source.Source
}

// Open opens a path or /vsis3//vsigs spec and parses it as a COG.
func Open(spec string) (*COG, error) {
	src, err := source.Open(spec)
	if err != nil {
		return nil, err
	}
	c, err := openSource(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return c, nil
}

// OpenSource parses an already-opened Source as a COG (used by tests and
// by callers that want to control Source lifetime themselves).
func OpenSource(src *source.Source) (*COG, error) {
	return openSource(src)
}

func openSource(src *source.Source) (*COG, error) {
	ifds, err := tiff.ParseAll(src)
	if err != nil {
		return nil, err
	}
	if len(ifds) == 0 {
		return nil, cogerr.New(cogerr.KindNotACOG, "no image file directories found")
	}

	var overviews, maskOverviews []Overview
	for i := range ifds {
		ifd := &ifds[i]
		photometric, err := ifd.RequireUint64(src, tiff.TagPhotometric)
		if err != nil {
			return nil, err
		}
		switch photometric {
		case uint64(tiff.PhotometricBlackIsZero), uint64(tiff.PhotometricRGB), uint64(tiff.PhotometricYCbCr):
			ovr, err := overviewFromIFD(ifd, src)
			if err != nil {
				return nil, err
			}
			overviews = append(overviews, ovr)
		case uint64(tiff.PhotometricMask):
			ovr, err := overviewFromIFD(ifd, src)
			if err != nil {
				return nil, err
			}
			maskOverviews = append(maskOverviews, ovr)
		default:
			return nil, cogerr.New(cogerr.KindUnsupportedTagValue, "unsupported PhotometricInterpretation %d", photometric)
		}
	}

	if len(overviews) == 0 {
		return nil, cogerr.New(cogerr.KindNotACOG, "no image overviews found (only mask overviews present)")
	}
	if !overviews[0].IsFullResolution {
		return nil, cogerr.New(cogerr.KindNotACOG, "first overview is not full resolution")
	}
	for i := 1; i < len(overviews); i++ {
		prev, cur := overviews[i-1], overviews[i]
		if cur.Width >= prev.Width || cur.Height >= prev.Height {
			return nil, cogerr.New(cogerr.KindNotACOG,
				"overview %d (%dx%d) is not strictly smaller than overview %d (%dx%d)",
				i, cur.Width, cur.Height, i-1, prev.Width, prev.Height)
		}
		if cur.Bands != overviews[0].Bands {
			return nil, cogerr.New(cogerr.KindNotACOG, "overview %d has a band layout inconsistent with overview 0", i)
		}
		if cur.IsFullResolution {
			return nil, cogerr.New(cogerr.KindNotACOG, "overview %d is a second full-resolution image; multi-image files are not supported", i)
		}
	}

	geoKeys, err := tiff.ParseGeoKeyDirectory(overviews[0].ifd, src)
	if err != nil {
		return nil, err
	}
	georef, err := decodeGeoreference(overviews[0].ifd, src, geoKeys)
	if err != nil {
		return nil, err
	}

	return &COG{
		Overviews:     overviews,
		MaskOverviews: maskOverviews,
		GeoKeys:       geoKeys,
		Georeference:  georef,
		Source:        src,
	}, nil
}

// Close releases the underlying Source.
func (c *COG) Close() error { return c.Source.Close() }

// Width is the full-resolution overview's width in pixels.
func (c *COG) Width() int { return c.Overviews[0].Width }

// Height is the full-resolution overview's height in pixels.
func (c *COG) Height() int { return c.Overviews[0].Height }

// NBands is the number of samples per pixel of the full-resolution overview.
func (c *COG) NBands() int { return c.Overviews[0].Bands.NBands }

// ComputeGeoreferenceForOverview scales the full-resolution georeference's
// pixel resolution down to a lower-resolution overview, keeping the same
// upper-left origin (every overview in the pyramid shares it).
func (c *COG) ComputeGeoreferenceForOverview(ovr *Overview) Georeference {
	scale := float64(ovr.Width) / float64(c.Width())
	gt := c.Georeference.Geotransform
	return Georeference{
		CRS:  c.Georeference.CRS,
		Unit: c.Georeference.Unit,
		Geotransform: Geotransform{
			UlX:  gt.UlX,
			UlY:  gt.UlY,
			XRes: gt.XRes / scale,
			YRes: gt.YRes / scale,
		},
	}
}

// LngLatBounds projects the full-resolution image's four corners into
// WGS84 and returns their bounding box.
func (c *COG) LngLatBounds() (minLon, minLat, maxLon, maxLat float64, err error) {
	proj := coord.ForEPSG(c.Georeference.CRS.EPSG())
	if proj == nil {
		return 0, 0, 0, 0, cogerr.New(cogerr.KindUnsupportedProjection, "no projection available for EPSG:%d", c.Georeference.CRS.EPSG())
	}
	gt := c.Georeference.Geotransform
	w, h := float64(c.Width()), float64(c.Height())
	corners := [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}

	minLon, minLat = math.Inf(1), math.Inf(1)
	maxLon, maxLat = math.Inf(-1), math.Inf(-1)
	for _, pt := range corners {
		x := gt.UlX + pt[0]*gt.XRes
		y := gt.UlY + pt[1]*gt.YRes
		lon, lat := proj.ToWGS84(x, y)
		minLon, maxLon = math.Min(minLon, lon), math.Max(maxLon, lon)
		minLat, maxLat = math.Min(minLat, lat), math.Max(maxLat, lat)
	}
	return minLon, minLat, maxLon, maxLat, nil
}
