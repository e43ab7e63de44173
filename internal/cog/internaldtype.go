package cog

import (
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/imagebuf"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// InternalDataType is the on-disk sample representation of an overview:
// a single packed bit per sample for Mask overviews, one byte for Uint8,
// four bytes for Float32.
type InternalDataType int

const (
	Mask InternalDataType = iota
	Uint8
	Float32
)

// deriveInternalDataType maps (SampleFormat, BitsPerSample) to the one
// on-disk representation this client supports for each.
func deriveInternalDataType(sampleFormat, bitsPerSample uint64) (InternalDataType, error) {
	switch {
	case sampleFormat == tiff.SampleFormatUint && bitsPerSample == 1:
		return Mask, nil
	case sampleFormat == tiff.SampleFormatUint && bitsPerSample == 8:
		return Uint8, nil
	case sampleFormat == tiff.SampleFormatFloat && bitsPerSample == 32:
		return Float32, nil
	default:
		return 0, cogerr.New(cogerr.KindUnsupportedDataType,
			"unsupported (SampleFormat=%d, BitsPerSample=%d)", sampleFormat, bitsPerSample)
	}
}

// Unpacked returns the decompressed, bit-unpacked representation this type
// is expanded to before it can be pasted into an ImageBuffer.
func (t InternalDataType) Unpacked() imagebuf.DataType {
	if t == Float32 {
		return imagebuf.Float32
	}
	return imagebuf.Uint8
}

// packedTileBytes is the on-disk size, in bytes, of one width x height x
// nbands tile before decompression's bit-unpacking step (if any).
func (t InternalDataType) packedTileBytes(width, height, nbands int) int {
	samples := width * height * nbands
	switch t {
	case Mask:
		return (samples + 7) / 8
	case Float32:
		return samples * 4
	default:
		return samples
	}
}
