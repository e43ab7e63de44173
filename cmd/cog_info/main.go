// Command cog_info prints a Cloud Optimized GeoTIFF's overview pyramid,
// georeference and geokey directory.
package main

import (
	"fmt"
	"os"

	"github.com/kallio-maps/cogtile/internal/cog"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: cog_info <file.tif>\n")
		os.Exit(1)
	}

	c, err := cog.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Printf("File: %s\n", os.Args[1])
	fmt.Printf("Size: %dx%d, %d bands\n", c.Width(), c.Height(), c.NBands())
	fmt.Printf("Overviews: %d\n", len(c.Overviews))
	for i, ovr := range c.Overviews {
		fmt.Printf("  [%d] %dx%d, tile %dx%d, bands=%d alpha=%v full_res=%v\n",
			i, ovr.Width, ovr.Height, ovr.TileWidth, ovr.TileHeight, ovr.Bands.NBands, ovr.Bands.HasAlpha, ovr.IsFullResolution)
	}
	if len(c.MaskOverviews) > 0 {
		fmt.Printf("Mask overviews: %d\n", len(c.MaskOverviews))
		for i, ovr := range c.MaskOverviews {
			fmt.Printf("  [%d] %dx%d, tile %dx%d\n", i, ovr.Width, ovr.Height, ovr.TileWidth, ovr.TileHeight)
		}
	}

	fmt.Printf("CRS: EPSG:%d\n", c.Georeference.CRS.EPSG())
	fmt.Printf("Geotransform: UL=(%f,%f), res=(%f,%f)\n",
		c.Georeference.Geotransform.UlX, c.Georeference.Geotransform.UlY,
		c.Georeference.Geotransform.XRes, c.Georeference.Geotransform.YRes)
	fmt.Printf("Pixel resolution: %f m\n", c.Georeference.PixelResolutionInMeters())

	if minLon, minLat, maxLon, maxLat, err := c.LngLatBounds(); err != nil {
		fmt.Printf("LngLatBounds: ERROR: %v\n", err)
	} else {
		fmt.Printf("LngLatBounds: [%f,%f] to [%f,%f]\n", minLon, minLat, maxLon, maxLat)
	}

	fmt.Printf("GeoKeys: %d entries\n", len(c.GeoKeys.Entries))
	for _, e := range c.GeoKeys.Entries {
		fmt.Printf("  %d: %+v\n", e.ID, e.Value)
	}

	fmt.Printf("%s\n", c.Source.GetStats())
}
