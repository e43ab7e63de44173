// Command extract_tile extracts one 256x256 TMS/XYZ tile from a Cloud
// Optimized GeoTIFF and writes it out as a PPM.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kallio-maps/cogtile/internal/cog"
	"github.com/kallio-maps/cogtile/internal/imagebuf"
	"github.com/kallio-maps/cogtile/internal/tiler"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "Usage: extract_tile <file.tif> <z> <x> <y>\n")
		os.Exit(1)
	}

	z, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid z %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}
	x, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid x %q: %v\n", os.Args[3], err)
		os.Exit(1)
	}
	y, err := strconv.ParseInt(os.Args[4], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid y %q: %v\n", os.Args[4], err)
		os.Exit(1)
	}

	c, err := cog.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	tile := tiler.FromZXY(z, x, y)
	img, err := tiler.ExtractTile(c, tile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := img
	if img.NBands != 3 || img.DType != imagebuf.Uint8 {
		fmt.Fprintf(os.Stderr, "Error: extracted tile has %d bands of type %v; writing PPM requires a 3-band uint8 image\n", img.NBands, img.DType)
		os.Exit(1)
	}

	const outPath = "img.ppm"
	if err := imagebuf.WritePPM(outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", outPath)
	fmt.Printf("%s\n", c.Source.GetStats())
}
