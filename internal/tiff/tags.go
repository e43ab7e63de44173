package tiff

// Tag is a TIFF/GeoTIFF tag ID. Only the tags this package cares about are
// named; everything else is carried around as a raw uint16.
type Tag uint16

const (
	TagNewSubfileType      Tag = 254
	TagImageWidth          Tag = 256
	TagImageLength         Tag = 257
	TagBitsPerSample       Tag = 258
	TagCompression         Tag = 259
	TagPhotometric         Tag = 262
	TagStripOffsets        Tag = 273
	TagOrientation         Tag = 274
	TagSamplesPerPixel     Tag = 277
	TagRowsPerStrip        Tag = 278
	TagStripByteCounts     Tag = 279
	TagPlanarConfig        Tag = 284
	TagTileWidth           Tag = 322
	TagTileLength          Tag = 323
	TagTileOffsets         Tag = 324
	TagTileByteCounts      Tag = 325
	TagExtraSamples        Tag = 338
	TagSampleFormat        Tag = 339
	TagJPEGTables          Tag = 347
	TagModelPixelScaleTag  Tag = 33550
	TagModelTiepointTag    Tag = 33922
	TagGeoKeyDirectoryTag  Tag = 34735
	TagGeoDoubleParamsTag  Tag = 34736
	TagGeoAsciiParamsTag   Tag = 34737
	TagGDALNoData          Tag = 42113
)

// PhotometricInterpretation values this package understands (spec.md §6).
const (
	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
	PhotometricMask        = 4
	PhotometricYCbCr       = 6
)

// Compression codes this package understands (spec.md §6).
const (
	CompressionRaw     = 1
	CompressionJPEG    = 7
	CompressionDeflate = 8
)

// SampleFormat codes.
const (
	SampleFormatUint  = 1
	SampleFormatFloat = 3
)
