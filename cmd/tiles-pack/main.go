package main

import (
	"flag"
	"log"
	"os"

	"github.com/deckfamilyfarm/site-tiler/tileset"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func main() {
	tileDir := flag.String("tiles", "", "The XYZ tile directory to read from")
	outputFilename := flag.String("output", "", "The output mbtiles to write to")
	name := flag.String("name", "site imagery", "The tile set name to record in the metadata")
	quiet := flag.Bool("quiet", false, "Disable the progress bar")
	flag.Parse()

	if *tileDir == "" {
		log.Fatalf("Must specify -tiles directory")
	}

	if *outputFilename == "" {
		log.Fatalf("Must specify -output path")
	}

	// If the output file exists already we shouldn't overwrite it
	if pathExists(*outputFilename) {
		log.Fatalf("Output path %s already exists and cannot be overwritten", *outputFilename)
	}

	err := tileset.PackTileDirectory(*tileDir, *outputFilename, *name, !*quiet)
	if err != nil {
		log.Fatalf("Couldn't pack %s: %+v", *tileDir, err)
	}

	log.Printf("Packed %s into %s", *tileDir, *outputFilename)
}
