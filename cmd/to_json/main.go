// Command to_json dumps a TIFF file's parsed IFD chain as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kallio-maps/cogtile/internal/source"
	"github.com/kallio-maps/cogtile/internal/tiff"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: to_json <file.tif> <out.json>\n")
		os.Exit(1)
	}

	src, err := source.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	ifds, err := tiff.ParseAll(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	dump, err := tiff.DumpAll(ifds, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(os.Args[2], data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d IFDs)\n", os.Args[2], len(ifds))
}
