package cog

import (
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/imagebuf"
	"github.com/kallio-maps/cogtile/internal/source"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// OverviewDataReader resolves and reads the raw tile grid of one overview:
// TileOffsets/TileByteCounts plus enough geometry to locate and paste
// tiles into an output buffer.
type OverviewDataReader struct {
	ovr            *Overview
	src            *source.Source
	tileOffsets    []uint64
	tileByteCounts []uint64
}

// NewOverviewDataReader resolves ovr's TileOffsets/TileByteCounts tags.
func (c *COG) NewOverviewDataReader(ovr *Overview) (*OverviewDataReader, error) {
	offsets, err := ovr.ifd.RequireUint64Slice(c.Source, tiff.TagTileOffsets)
	if err != nil {
		return nil, err
	}
	counts, err := ovr.ifd.RequireUint64Slice(c.Source, tiff.TagTileByteCounts)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(counts) {
		return nil, cogerr.New(cogerr.KindInvalidData, "TileOffsets has %d entries but TileByteCounts has %d", len(offsets), len(counts))
	}
	return &OverviewDataReader{ovr: ovr, src: c.Source, tileOffsets: offsets, tileByteCounts: counts}, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// unpackBitmask expands one bit-packed (MSB-first) byte per 8 samples
// into one output byte per sample, 0 or 255.
func unpackBitmask(data []byte) []byte {
	out := make([]byte, len(data)*8)
	for i, b := range data {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>uint(bit)) != 0 {
				out[i*8+bit] = 255
			}
		}
	}
	return out
}

// pasteTile copies the overlap between outRect and tileRect from tileData
// into out, one scanline at a time.
func pasteTile(out *imagebuf.ImageBuffer, tileData []byte, outRect, tileRect imagebuf.ImageRect, tileWidth, pixelBytes int) {
	iFrom, iTo := max(outRect.IFrom, tileRect.IFrom), min(outRect.ITo, tileRect.ITo)
	jFrom, jTo := max(outRect.JFrom, tileRect.JFrom), min(outRect.JTo, tileRect.JTo)
	if iFrom >= iTo || jFrom >= jTo {
		return
	}
	rowBytes := (jTo - jFrom) * pixelBytes
	for i := iFrom; i < iTo; i++ {
		outStart := ((i-outRect.IFrom)*outRect.Width() + (jFrom - outRect.JFrom)) * pixelBytes
		tileStart := ((i-tileRect.IFrom)*tileWidth + (jFrom - tileRect.JFrom)) * pixelBytes
		copy(out.Data[outStart:outStart+rowBytes], tileData[tileStart:tileStart+rowBytes])
	}
}

// ReadImagePart reads, decompresses and assembles every tile overlapping
// rect into a single packed ImageBuffer covering exactly rect.
func (r *OverviewDataReader) ReadImagePart(rect imagebuf.ImageRect) (*imagebuf.ImageBuffer, error) {
	ovr := r.ovr
	if rect.JFrom < 0 || rect.IFrom < 0 || rect.JTo > ovr.Width || rect.ITo > ovr.Height || rect.JFrom > rect.JTo || rect.IFrom > rect.ITo {
		return nil, cogerr.New(cogerr.KindOutOfBoundsRead, "rect [%d,%d)x[%d,%d) out of bounds for overview %dx%d",
			rect.JFrom, rect.JTo, rect.IFrom, rect.ITo, ovr.Width, ovr.Height)
	}

	nbands := ovr.Bands.NBands
	unpackedDType := ovr.DataType.Unpacked()
	out := imagebuf.New(rect.Width(), rect.Height(), nbands, ovr.Bands.HasAlpha, unpackedDType)
	if rect.Area() == 0 {
		return out, nil
	}

	tilesAcross := ceilDiv(ovr.Width, ovr.TileWidth)
	startTileJ, endTileJ := rect.JFrom/ovr.TileWidth, ceilDiv(rect.JTo, ovr.TileWidth)
	startTileI, endTileI := rect.IFrom/ovr.TileHeight, ceilDiv(rect.ITo, ovr.TileHeight)

	pixelBytes := nbands * unpackedDType.Size()

	for ti := startTileI; ti < endTileI; ti++ {
		for tj := startTileJ; tj < endTileJ; tj++ {
			tileIndex := ti*tilesAcross + tj
			if tileIndex < 0 || tileIndex >= len(r.tileOffsets) {
				return nil, cogerr.New(cogerr.KindInvalidData, "tile (%d,%d) index %d out of range of %d tiles", ti, tj, tileIndex, len(r.tileOffsets))
			}

			compressed := make([]byte, r.tileByteCounts[tileIndex])
			if err := r.src.ReadExactDirect(int64(r.tileOffsets[tileIndex]), compressed); err != nil {
				return nil, err
			}

			var tileData []byte
			if ovr.DataType == Mask {
				packed, err := ovr.Compression.DecompressPacked(compressed, ovr.DataType.packedTileBytes(ovr.TileWidth, ovr.TileHeight, nbands))
				if err != nil {
					return nil, err
				}
				tileData = unpackBitmask(packed)
			} else {
				decoded, err := ovr.Compression.Decompress(compressed, ovr.TileWidth, ovr.TileHeight, nbands, unpackedDType.Size())
				if err != nil {
					return nil, err
				}
				tileData = decoded
			}

			tileRect := imagebuf.ImageRect{
				JFrom: tj * ovr.TileWidth, JTo: (tj + 1) * ovr.TileWidth,
				IFrom: ti * ovr.TileHeight, ITo: (ti + 1) * ovr.TileHeight,
			}
			pasteTile(out, tileData, rect, tileRect, ovr.TileWidth, pixelBytes)
		}
	}
	return out, nil
}
