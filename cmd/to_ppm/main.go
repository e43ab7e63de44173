// Command to_ppm reads one rectangle out of a COG overview and writes it
// out as a PPM.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kallio-maps/cogtile/internal/cog"
	"github.com/kallio-maps/cogtile/internal/imagebuf"
)

func main() {
	if len(os.Args) != 3 && len(os.Args) != 7 {
		fmt.Fprintf(os.Stderr, "Usage: to_ppm <file.tif> <overview> [i_from j_from i_to j_to]\n")
		os.Exit(1)
	}

	overviewIdx, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid overview index %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}

	c, err := cog.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if overviewIdx < 0 || overviewIdx >= len(c.Overviews) {
		fmt.Fprintf(os.Stderr, "Error: overview %d out of range [0,%d)\n", overviewIdx, len(c.Overviews))
		os.Exit(1)
	}
	ovr := &c.Overviews[overviewIdx]
	fmt.Printf("Overview %d: %dx%d, tile %dx%d, bands=%d\n", overviewIdx, ovr.Width, ovr.Height, ovr.TileWidth, ovr.TileHeight, ovr.Bands.NBands)

	rect := imagebuf.ImageRect{JFrom: 0, JTo: ovr.Width, IFrom: 0, ITo: ovr.Height}
	if len(os.Args) == 7 {
		vals := make([]int, 4)
		for i, arg := range os.Args[3:7] {
			v, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid integer %q: %v\n", arg, err)
				os.Exit(1)
			}
			vals[i] = v
		}
		rect = imagebuf.ImageRect{IFrom: vals[0], JFrom: vals[1], ITo: vals[2], JTo: vals[3]}
	}

	reader, err := c.NewOverviewDataReader(ovr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	img, err := reader.ReadImagePart(rect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if img.NBands != 3 || img.DType != imagebuf.Uint8 {
		fmt.Fprintf(os.Stderr, "Error: overview has %d bands of type %v; writing PPM requires a 3-band uint8 image\n", img.NBands, img.DType)
		os.Exit(1)
	}

	const outPath = "img.ppm"
	if err := imagebuf.WritePPM(outPath, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", outPath)
	fmt.Printf("%s\n", c.Source.GetStats())
}
