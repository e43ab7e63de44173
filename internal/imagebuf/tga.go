package imagebuf

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// tgaDescriptor sets the alpha channel depth to 8 bits (bits 0-3) and the
// image-origin bit (bit 5) to upper-left, so readers don't need to flip
// rows.
const tgaDescriptor = 8 | (1 << 5)

// WriteTGA writes img to path as an uncompressed 32bpp BGRA TGA. img must
// be Uint8 with 3 (alpha forced to 255) or 4 bands.
func WriteTGA(path string, img *ImageBuffer) error {
	if img.DType != Uint8 {
		return cogerr.New(cogerr.KindOther, "TGA only supports uint8 images, got %v", img.DType)
	}
	if img.NBands != 3 && img.NBands != 4 {
		return cogerr.New(cogerr.KindOther, "TGA only supports 3- or 4-band images, got %d bands", img.NBands)
	}
	if img.Width > 0xFFFF || img.Height > 0xFFFF {
		return cogerr.New(cogerr.KindOther, "image %dx%d exceeds TGA's 16-bit dimension fields", img.Width, img.Height)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 18)
	header[2] = 2 // uncompressed true-color
	binary.LittleEndian.PutUint16(header[12:14], uint16(img.Width))
	binary.LittleEndian.PutUint16(header[14:16], uint16(img.Height))
	header[16] = 32
	header[17] = tgaDescriptor
	if _, err := f.Write(header); err != nil {
		return err
	}

	row := make([]byte, img.Width*4)
	for i := 0; i < img.Height; i++ {
		for j := 0; j < img.Width; j++ {
			off := (i*img.Width + j) * img.NBands
			r, g, b := img.Data[off], img.Data[off+1], img.Data[off+2]
			a := byte(255)
			if img.NBands == 4 {
				a = img.Data[off+3]
			}
			o := j * 4
			row[o], row[o+1], row[o+2], row[o+3] = b, g, r, a
		}
		if _, err := f.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// ReadTGA reads an uncompressed 32bpp BGRA, upper-left-origin TGA from
// path, converting the pixel data back to RGBA.
func ReadTGA(path string) (*ImageBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, 18)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, err
	}
	if header[2] != 2 {
		return nil, cogerr.New(cogerr.KindInvalidData, "unsupported TGA image type %d, only uncompressed true-color is supported", header[2])
	}
	width := int(binary.LittleEndian.Uint16(header[12:14]))
	height := int(binary.LittleEndian.Uint16(header[14:16]))
	if header[16] != 32 {
		return nil, cogerr.New(cogerr.KindInvalidData, "unsupported TGA bits-per-pixel %d, only 32 is supported", header[16])
	}
	if header[17] != tgaDescriptor {
		return nil, cogerr.New(cogerr.KindInvalidData, "unsupported TGA image descriptor %#x", header[17])
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	want := width * height * 4
	if len(data) != want {
		return nil, cogerr.New(cogerr.KindInvalidData, "TGA pixel data is %d bytes, want %d", len(data), want)
	}

	out := make([]byte, len(data))
	for i := 0; i < width*height; i++ {
		b, g, r, a := data[i*4], data[i*4+1], data[i*4+2], data[i*4+3]
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = r, g, b, a
	}
	return &ImageBuffer{Width: width, Height: height, NBands: 4, HasAlpha: true, DType: Uint8, Data: out}, nil
}
