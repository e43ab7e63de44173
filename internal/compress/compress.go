// Package compress decompresses TIFF tile payloads. Only the codecs a
// Cloud Optimized GeoTIFF actually uses are implemented: Raw, Adobe
// Deflate, and JPEG with shared abbreviated tables.
package compress

import (
	"github.com/kallio-maps/cogtile/internal/cogerr"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

// Codec identifies which decompressor a tile's bytes need.
type Codec int

const (
	Raw Codec = iota
	Deflate
	JPEG
)

// Compression pairs a codec with whatever side data it needs to decode a
// tile — JPEG needs the shared huffman tables read once from the IFD.
type Compression struct {
	codec      Codec
	jpegTables []byte
}

// FromIFD reads the Compression tag and, for JPEG, the shared JpegTables
// tag and the PhotometricInterpretation tag (JPEG tiles in a COG are
// always YCbCr; anything else is a format this client doesn't support).
func FromIFD(ifd *tiff.IFD, src tiff.Source) (*Compression, error) {
	v, err := ifd.RequireUint64(src, tiff.TagCompression)
	if err != nil {
		return nil, err
	}
	switch v {
	case uint64(tiff.CompressionRaw):
		return &Compression{codec: Raw}, nil
	case uint64(tiff.CompressionDeflate):
		return &Compression{codec: Deflate}, nil
	case uint64(tiff.CompressionJPEG):
		photo, err := ifd.RequireUint64(src, tiff.TagPhotometric)
		if err != nil {
			return nil, err
		}
		if photo != uint64(tiff.PhotometricYCbCr) {
			return nil, cogerr.New(cogerr.KindUnsupportedTagValue,
				"JPEG compression requires YCbCr photometric interpretation, got %d", photo)
		}
		tables, err := ifd.RawUndefined(src, tiff.TagJPEGTables)
		if err != nil {
			return nil, err
		}
		return &Compression{codec: JPEG, jpegTables: tables}, nil
	default:
		return nil, cogerr.New(cogerr.KindUnsupportedCompression, "unsupported compression %d", v)
	}
}

// Decompress turns one tile's on-disk bytes into nbands*dtypeBytes
// interleaved sample data for a width x height tile.
func (c *Compression) Decompress(data []byte, width, height, nbands, dtypeBytes int) ([]byte, error) {
	switch c.codec {
	case Raw:
		return decompressRaw(data, width, height, nbands, dtypeBytes)
	case Deflate:
		return decompressDeflate(data, width, height, nbands, dtypeBytes)
	case JPEG:
		return decompressJPEG(c.jpegTables, data, width, height, nbands)
	default:
		return nil, cogerr.New(cogerr.KindUnsupportedCompression, "unknown codec %d", c.codec)
	}
}

// DecompressPacked decompresses a tile whose samples are bit-packed (one
// bit per sample, as used by Mask overviews) rather than byte-aligned.
// wantBytes is the packed payload size, ceil(width*height*nbands/8).
func (c *Compression) DecompressPacked(data []byte, wantBytes int) ([]byte, error) {
	switch c.codec {
	case Raw:
		if len(data) != wantBytes {
			return nil, cogerr.New(cogerr.KindInvalidData, "packed tile size mismatch: got %d bytes, want %d", len(data), wantBytes)
		}
		return data, nil
	case Deflate:
		return decompressDeflateRaw(data, wantBytes)
	default:
		return nil, cogerr.New(cogerr.KindUnsupportedCompression, "codec %d cannot decode packed bitmask tiles", c.codec)
	}
}

func checkSize(out []byte, width, height, nbands, dtypeBytes int) error {
	want := width * height * nbands * dtypeBytes
	if len(out) != want {
		return cogerr.New(cogerr.KindInvalidData,
			"decompressed tile size mismatch: got %d bytes, want %d (w=%d h=%d bands=%d dtype_bytes=%d)",
			len(out), want, width, height, nbands, dtypeBytes)
	}
	return nil
}

func decompressRaw(data []byte, width, height, nbands, dtypeBytes int) ([]byte, error) {
	if err := checkSize(data, width, height, nbands, dtypeBytes); err != nil {
		return nil, err
	}
	return data, nil
}
