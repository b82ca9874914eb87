package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/deckfamilyfarm/site-tiler/tileset"
)

const DEM string = `dem`
const IMAGERY string = `imagery`
const OUTPUT string = `output`
const HEIGHTMAPMAXSIZE string = `heightmap-max-size`
const ZOOMS string = `zooms`
const KEEPREPROJECTED string = `keep-reprojected`

var zoomRangeRe = regexp.MustCompile(`^(\d+)-(\d+)$`)

func parseZoomRange(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}

	m := zoomRangeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("zoom range must look like MIN-MAX, got %q", s)
	}

	minZoom, _ := strconv.Atoi(m[1])
	maxZoom, _ := strconv.Atoi(m[2])
	if minZoom > maxZoom {
		return 0, 0, fmt.Errorf("invalid zoom range %q", s)
	}

	return minZoom, maxZoom, nil
}

func main() {
	// Ambient configuration comes from a .env file when one is around,
	// the same way the CLI flags read their env var fallbacks.
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Overload(path); err != nil {
			log.Fatalf("Couldn't load env file %s: %v", path, err)
		}
	} else {
		_ = godotenv.Load()
	}

	app := cli.NewApp()
	app.Name = "site-tiler"
	app.Usage = "Build web terrain and imagery tile sets from a DEM and an orthoimagery raster"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     DEM,
			Aliases:  []string{"d"},
			Usage:    "Path to the DEM raster",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(DEM)},
		},
		&cli.StringFlag{
			Name:     IMAGERY,
			Aliases:  []string{"i"},
			Usage:    "Path to the orthoimagery raster",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(IMAGERY)},
		},
		&cli.StringFlag{
			Name:     OUTPUT,
			Aliases:  []string{"o"},
			Usage:    "Output directory for the terrain and imagery tile sets",
			Value:    "./tiles",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(OUTPUT)},
		},
		&cli.IntFlag{
			Name:     HEIGHTMAPMAXSIZE,
			Usage:    "Maximum pixel dimension of the fallback heightmap. 0 disables downsampling",
			Value:    0,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(HEIGHTMAPMAXSIZE)},
		},
		&cli.StringFlag{
			Name:     ZOOMS,
			Aliases:  []string{"z"},
			Usage:    "Imagery zoom range as '{MIN_ZOOM}-{MAX_ZOOM}'. Empty lets the tile generator decide",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(ZOOMS)},
		},
		&cli.BoolFlag{
			Name:     KEEPREPROJECTED,
			Usage:    "Keep a debug copy of the reprojected imagery raster",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(KEEPREPROJECTED)},
		},
	}

	app.Action = func(c *cli.Context) error {
		minZoom, maxZoom, err := parseZoomRange(strings.TrimSpace(c.String(ZOOMS)))
		if err != nil {
			return err
		}

		cfg := tileset.Config{
			DEMPath:          c.String(DEM),
			ImageryPath:      c.String(IMAGERY),
			OutputDir:        c.String(OUTPUT),
			MaxHeightmapSize: c.Int(HEIGHTMAPMAXSIZE),
			MinZoom:          minZoom,
			MaxZoom:          maxZoom,
			KeepReprojected:  c.Bool(KEEPREPROJECTED),
		}

		return tileset.New(cfg).Run(context.Background())
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
