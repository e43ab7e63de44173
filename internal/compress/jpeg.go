package compress

import (
	"bytes"
	goimage "image"
	"image/jpeg"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// markerSOI and markerEOI are the JPEG Start-Of-Image and End-Of-Image
// markers: https://www.disktuna.com/list-of-jpeg-markers/
var markerSOI = [2]byte{0xff, 0xd8}
var markerEOI = [2]byte{0xff, 0xd9}

// decompressJPEG decodes one tile stored as a JPEG "abbreviated image":
// a COG keeps the huffman tables once, in the JpegTables tag, and stores
// each tile as image data alone. We splice the two streams back into one
// ordinary JPEG (tables minus their trailing EOI, followed by the tile's
// data minus its leading SOI) and decode with the standard library.
func decompressJPEG(jpegTables, data []byte, width, height, nbands int) ([]byte, error) {
	if len(jpegTables) < 2 || jpegTables[len(jpegTables)-2] != markerEOI[0] || jpegTables[len(jpegTables)-1] != markerEOI[1] {
		return nil, cogerr.New(cogerr.KindDecompressionError, "JPEG tables missing trailing EOI marker")
	}
	if len(data) < 2 || data[0] != markerSOI[0] || data[1] != markerSOI[1] {
		return nil, cogerr.New(cogerr.KindDecompressionError, "JPEG tile missing leading SOI marker")
	}

	full := make([]byte, 0, len(jpegTables)-2+len(data)-2)
	full = append(full, jpegTables[:len(jpegTables)-2]...)
	full = append(full, data[2:]...)

	img, err := jpeg.Decode(bytes.NewReader(full))
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindDecompressionError, err, "JPEG tile decode failed")
	}

	ycbcr, ok := img.(*goimage.YCbCr)
	if !ok {
		return nil, cogerr.New(cogerr.KindDecompressionError, "expected YCbCr JPEG image, got %T", img)
	}
	b := ycbcr.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, cogerr.New(cogerr.KindInvalidData, "decoded JPEG tile is %dx%d, expected %dx%d", b.Dx(), b.Dy(), width, height)
	}
	if nbands != 3 {
		return nil, cogerr.New(cogerr.KindUnsupportedTagValue, "JPEG decoding only supports 3-band YCbCr output, got %d bands", nbands)
	}

	out := make([]byte, width*height*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := ycbcr.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return out, nil
}
