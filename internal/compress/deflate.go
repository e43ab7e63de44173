package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// decompressDeflate decodes an Adobe Deflate tile. GDAL prefixes the raw
// deflate stream with a two-byte zlib header (RFC 1950 §2.2); we check
// just enough of it to catch a mismatched codec and then hand the rest
// to a bare deflate reader.
func decompressDeflate(data []byte, width, height, nbands, dtypeBytes int) ([]byte, error) {
	return decompressDeflateRaw(data, width*height*nbands*dtypeBytes)
}

// decompressDeflateRaw inflates an Adobe Deflate payload, checking the
// decompressed size against an already-computed expected byte count — used
// both for byte-aligned samples and for bit-packed Mask tiles, whose
// expected size isn't a simple width*height*nbands*dtypeBytes product.
func decompressDeflateRaw(data []byte, wantBytes int) ([]byte, error) {
	if len(data) < 2 {
		return nil, cogerr.New(cogerr.KindDecompressionError, "deflate payload too short: %d bytes", len(data))
	}
	if data[0]&0xF != 8 {
		return nil, cogerr.New(cogerr.KindDecompressionError, "invalid deflate header: %x", data[:2])
	}

	r := flate.NewReader(bytes.NewReader(data[2:]))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindDecompressionError, err, "deflate decompression failed")
	}
	if len(out) != wantBytes {
		return nil, cogerr.New(cogerr.KindInvalidData, "deflate decompressed size mismatch: got %d bytes, want %d", len(out), wantBytes)
	}
	return out, nil
}
