package imagebuf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kallio-maps/cogtile/internal/cogerr"
)

// WritePPM writes img to path as a binary (P6) PPM. Only Uint8, 3-band
// images can be represented.
func WritePPM(path string, img *ImageBuffer) error {
	if img.DType != Uint8 {
		return cogerr.New(cogerr.KindOther, "PPM only supports uint8 images, got %v", img.DType)
	}
	if img.NBands != 3 {
		return cogerr.New(cogerr.KindOther, "PPM only supports 3-band (RGB) images, got %d bands", img.NBands)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "P6 %d %d 255\n", img.Width, img.Height); err != nil {
		return err
	}
	_, err = f.Write(img.Data)
	return err
}

// ReadPPM reads a binary (P6) PPM from path.
func ReadPPM(path string) (*ImageBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, 2)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if magic[0] != 'P' || magic[1] != '6' {
		return nil, cogerr.New(cogerr.KindInvalidData, "unexpected PPM magic %q, want P6", magic)
	}

	line, err := r.ReadString('\n')
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "reading PPM header line")
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return nil, cogerr.New(cogerr.KindInvalidData, "malformed PPM header %q", line)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "parsing PPM width")
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "parsing PPM height")
	}
	maxVal, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "parsing PPM max value")
	}
	if maxVal != 255 {
		return nil, cogerr.New(cogerr.KindInvalidData, "unsupported PPM max value %d, only 255 is supported", maxVal)
	}

	data := make([]byte, width*height*3)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "reading PPM pixel data")
	}
	return &ImageBuffer{Width: width, Height: height, NBands: 3, DType: Uint8, Data: data}, nil
}
